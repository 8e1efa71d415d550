package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "submit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_directory: /tmp/dispatch-log
memory_mb: 4000
n_cpus: 2
n_gpus: 1
loadavg_max: 1.5
groupsize: 10
wrapper: "/usr/bin/time -v"
environment:
  PATH: /usr/bin:/bin
`), 0o644))

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/dispatch-log", fc.LogDirectory)
	require.Equal(t, 4000, fc.MemoryMB)
	require.Equal(t, 2, fc.NCPUs)
	require.Equal(t, 1, fc.NGPUs)
	require.Equal(t, 1.5, fc.LoadAvgMax)
	require.Equal(t, 10, fc.GroupSize)
	require.Equal(t, "/usr/bin/time -v", fc.Wrapper)
	require.Equal(t, "/usr/bin:/bin", fc.Environment["PATH"])

	cfg := fc.ToSubmitConfig()
	require.Equal(t, fc.MemoryMB, cfg.MemoryMB)
	require.Equal(t, fc.NCPUs, cfg.NCPUs)
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
