package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "branchbound", cfg.Solver.Backend)
	assert.Equal(t, 60*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 2*time.Second, cfg.Solver.CancelGrace)
	assert.Equal(t, 100000, cfg.Solver.MaxNodes)
	assert.Equal(t, 1e-6, cfg.Solver.FeasibilityTolerance)
	assert.Equal(t, 4, cfg.Sweep.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blend.yaml")
	content := `
solver:
  time_limit: 5s
  max_nodes: 500
sweep:
  workers: 2
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("BLEND_SWEEP_WORKERS", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("time-limit", 0, "")
	flags.Int("max-nodes", 0, "")
	require.NoError(t, flags.Parse([]string{"--time-limit=750ms"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Solver.TimeLimit)
	assert.Equal(t, 500, cfg.Solver.MaxNodes)
	assert.Equal(t, 8, cfg.Sweep.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("BLEND_SOLVER_BACKEND", "cplex")
	t.Setenv("BLEND_SOLVER_MAX_NODES", "0")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "cplex"`)
	assert.Contains(t, err.Error(), "solver.max_nodes")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "example", "data", "config.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 50000, cfg.Solver.MaxNodes)
	assert.Equal(t, 2*time.Second, cfg.Solver.CancelGrace)
	assert.True(t, cfg.Logging.Development)
}
