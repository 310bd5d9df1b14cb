package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDefaultsToInMemoryHistory(t *testing.T) {
	w, err := Build(Config{DataDir: t.TempDir(), DeviceName: "laptop"})
	require.NoError(t, err)
	defer w.Close()

	require.NotEmpty(t, w.Node.PeerID())
	id := w.Hist.Record("hello", "local")
	entries := w.Hist.List(10)
	require.Len(t, entries, 1)
	require.Equal(t, id, entries[0].ID)
}

func TestBuildWithHistoryPersistOpensBoltStore(t *testing.T) {
	dir := t.TempDir()
	w, err := Build(Config{DataDir: dir, DeviceName: "desktop", HistoryPersist: true})
	require.NoError(t, err)
	w.Hist.Record("persisted", "local")
	require.NoError(t, w.Close())

	w2, err := Build(Config{DataDir: dir, DeviceName: "desktop", HistoryPersist: true})
	require.NoError(t, err)
	defer w2.Close()
	entries := w2.Hist.List(10)
	require.Len(t, entries, 1)
	require.Equal(t, "persisted", entries[0].Content)
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}
	require.Equal(t, ".", c.dataDir())
	require.Equal(t, 50, c.historyLimit())
}
