package yamlcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheduler.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultAndRoutines(t *testing.T) {
	path := writeConfig(t, `
default:
  mode: idem
  role: kernel
  strict: true
  blacklist: [abor1]
routines:
  compute_l1:
    role: driver
    expand: false
`)

	cfg, err := Loader{}.Load(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, cfg.Default.Strict)

	opts := cfg.ForRoutine("Compute_L1")
	assert.Equal(t, "driver", opts.Role)
	assert.False(t, opts.Expand)
	assert.Equal(t, []string{"abor1"}, opts.Blacklist)

	assert.True(t, cfg.ForRoutine("other").Expand)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, `
default:
  moode: idem
`)

	_, err := Loader{}.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoad_EmptyListOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
default:
  blacklist: [abor1]
routines:
  driver:
    blacklist: []
`)

	cfg, err := Loader{}.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, cfg.ForRoutine("driver").Blacklist)
	assert.Equal(t, []string{"abor1"}, cfg.ForRoutine("other").Blacklist)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Loader{}.Load(context.Background(), filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
