package renconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ren-core/ren/internal/renconfig"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	f, err := renconfig.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, renconfig.File{}, f)
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ren.yaml")
	contents := "dev_log: true\nforce_gc: true\nmetrics_addr: :9090\nstack_limit: 5000\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := renconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, renconfig.File{
		DevLog:      true,
		ForceGC:     true,
		MetricsAddr: ":9090",
		StackLimit:  5000,
	}, f)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ren.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev_log: [this is not a bool"), 0o644))

	_, err := renconfig.Load(path)
	require.Error(t, err)
}
