package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig is a test helper that writes content to a temp .hcl file.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheduler.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultAndRoutineBlocks(t *testing.T) {
	path := writeConfig(t, `
default {
  mode      = "idem"
  role      = "kernel"
  expand    = true
  strict    = true
  blacklist = ["abor1"]
}

routine "compute_l1" {
  role   = "driver"
  expand = false
  ignore = ["ext_kernel"]
}
`)

	cfg, err := Loader{}.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "idem", cfg.Default.Mode)
	assert.True(t, cfg.Default.Strict)
	assert.Equal(t, []string{"abor1"}, cfg.Default.Blacklist)

	opts := cfg.ForRoutine("COMPUTE_L1")
	assert.Equal(t, "driver", opts.Role)
	assert.False(t, opts.Expand)
	assert.Equal(t, []string{"abor1"}, opts.Blacklist)
	assert.Equal(t, []string{"ext_kernel"}, opts.Ignore)

	other := cfg.ForRoutine("unconfigured")
	assert.Equal(t, "kernel", other.Role)
	assert.True(t, other.Expand)
}

func TestLoad_EmptyListOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
default {
  blacklist = ["abor1"]
}

routine "driver" {
  blacklist = []
}
`)

	cfg, err := Loader{}.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, cfg.ForRoutine("driver").Blacklist)
	assert.Equal(t, []string{"abor1"}, cfg.ForRoutine("other").Blacklist)
}

func TestLoad_RejectsUnknownAttribute(t *testing.T) {
	path := writeConfig(t, `
default {
  moode = "idem"
}
`)

	_, err := Loader{}.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoad_RejectsNonListValue(t *testing.T) {
	path := writeConfig(t, `
default {
  blacklist = "abor1"
}
`)

	_, err := Loader{}.Load(context.Background(), path)
	assert.ErrorContains(t, err, "blacklist")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Loader{}.Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}
