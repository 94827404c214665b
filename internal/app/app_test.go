package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fortloom/internal/hclcfg"
	"github.com/vk/fortloom/internal/testutil"
	"github.com/vk/fortloom/internal/yamlcfg"
)

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(Config{RootRoutines: []string{"driverA"}})
	assert.ErrorContains(t, err, "source root")

	_, err = NewConfig(Config{SourceRoots: []string{"src"}})
	assert.ErrorContains(t, err, "root routine")

	_, err = NewConfig(Config{
		SourceRoots:  []string{"src"},
		RootRoutines: []string{"driverA"},
		ConfigPath:   "cfg.toml",
	})
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestParseLogLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"Error": slog.LevelError,
	} {
		level, err := ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}

	_, err := ParseLogLevel("loud")
	assert.ErrorContains(t, err, "loud")
}

func TestParseLogFormat(t *testing.T) {
	format, err := ParseLogFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", format)

	_, err = ParseLogFormat("xml")
	assert.ErrorContains(t, err, "xml")
}

func TestLoaderFor(t *testing.T) {
	l, err := loaderFor("scheduler.hcl")
	require.NoError(t, err)
	assert.IsType(t, hclcfg.Loader{}, l)

	l, err = loaderFor("scheduler.YAML")
	require.NoError(t, err)
	assert.IsType(t, yamlcfg.Loader{}, l)

	l, err = loaderFor("scheduler.yml")
	require.NoError(t, err)
	assert.IsType(t, yamlcfg.Loader{}, l)

	_, err = loaderFor("scheduler.json")
	assert.Error(t, err)
}

func TestRun_EndToEnd(t *testing.T) {
	root := testutil.WriteTree(t, testutil.ProjA())
	cfgPath := filepath.Join(t.TempDir(), "scheduler.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
default {
  mode = "idem"
  role = "kernel"
}

routine "driverA" {
  role = "driver"
}
`), 0644))
	dotPath := filepath.Join(t.TempDir(), "graph.dot")

	cfg, err := NewConfig(Config{
		ConfigPath:    cfgPath,
		SourceRoots:   []string{root},
		RootRoutines:  []string{"driverA"},
		CallGraphPath: dotPath,
		Mode:          "roles",
		LogFormat:     "text",
		LogLevel:      "debug",
	})
	require.NoError(t, err)

	var logs strings.Builder
	require.NoError(t, New(&logs, cfg).Run(context.Background()))

	dot, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"DRIVERA"`)
	assert.Contains(t, string(dot), `"DRIVERA" -> "KERNELA"`)
	assert.Contains(t, logs.String(), "Run complete")
}

func TestRun_UnknownMode(t *testing.T) {
	root := testutil.WriteTree(t, testutil.ProjA())

	cfg, err := NewConfig(Config{
		SourceRoots:  []string{root},
		RootRoutines: []string{"driverA"},
		Mode:         "bogus",
		LogFormat:    "text",
		LogLevel:     "error",
	})
	require.NoError(t, err)

	var logs strings.Builder
	err = New(&logs, cfg).Run(context.Background())
	assert.ErrorContains(t, err, "bogus")
}

func TestRun_UnresolvableRoot(t *testing.T) {
	root := testutil.WriteTree(t, testutil.ProjA())

	cfg, err := NewConfig(Config{
		SourceRoots:  []string{root},
		RootRoutines: []string{"no_such"},
		LogFormat:    "text",
		LogLevel:     "error",
	})
	require.NoError(t, err)

	var logs strings.Builder
	err = New(&logs, cfg).Run(context.Background())
	assert.ErrorContains(t, err, "no_such")
}
