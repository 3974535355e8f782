package plugin_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/plugin"
)

func TestWatcherInvokesOnLoadOnManifestWrite(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "drag")
	require.NoError(t, os.Mkdir(pluginDir, 0o755))
	manifestPath := filepath.Join(pluginDir, "plugin.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("name: drag\nversion: 1.0.0\nrequired_api_version: 1.0.0\n"), 0o644))

	loaded := make(chan string, 4)
	w, err := plugin.NewWatcher(dir, func(path string) { loaded <- path }, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(manifestPath, []byte("name: drag\nversion: 1.1.0\nrequired_api_version: 1.0.0\n"), 0o644))

	select {
	case path := <-loaded:
		require.Equal(t, manifestPath, path)
	case <-time.After(5 * time.Second):
		t.Fatal("onLoad was never invoked after plugin.yaml was written")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "drag")
	require.NoError(t, os.Mkdir(pluginDir, 0o755))

	loaded := make(chan string, 4)
	w, err := plugin.NewWatcher(dir, func(path string) { loaded <- path }, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "notes.txt"), []byte("hello"), 0o644))

	select {
	case path := <-loaded:
		t.Fatalf("onLoad fired for a non-manifest file: %s", path)
	case <-time.After(500 * time.Millisecond):
	}
}
