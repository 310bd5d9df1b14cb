package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/domain/types"
)

func TestRecordAndRetrieveNewestFirst(t *testing.T) {
	h := New(100)
	h.Record("hello", "local")
	h.Record("world", "phone")

	all := h.List(10)
	require.Len(t, all, 2)
	require.Equal(t, "world", all[0].Content)
	require.Equal(t, "hello", all[1].Content)
}

func TestFilterByPeer(t *testing.T) {
	h := New(100)
	h.Record("a", "local")
	h.Record("b", "phone")
	h.Record("c", "local")

	local := h.ListForPeer("local", 10)
	require.Len(t, local, 2)
	require.Equal(t, "c", local[0].Content)
	require.Equal(t, "a", local[1].Content)

	phone := h.ListForPeer("phone", 10)
	require.Len(t, phone, 1)
	require.Equal(t, "b", phone[0].Content)
}

func TestEvictionWhenFull(t *testing.T) {
	h := New(types.MinHistoryLimit)
	for i := 0; i < types.MinHistoryLimit+1; i++ {
		h.Record(string(rune('a'+i)), "local")
	}
	require.Len(t, h.entries, types.MinHistoryLimit)
	all := h.List(100)
	require.Equal(t, string(rune('a'+types.MinHistoryLimit)), all[0].Content)
}

func TestFindByID(t *testing.T) {
	h := New(100)
	id := h.Record("findme", "local")
	entry, ok := h.Find(id)
	require.True(t, ok)
	require.Equal(t, "findme", entry.Content)

	_, ok = h.Find("nonexistent")
	require.False(t, ok)
}

func TestLimitIsClamped(t *testing.T) {
	h := New(1)
	require.Equal(t, types.MinHistoryLimit, h.limit)

	h2 := New(10_000)
	require.Equal(t, types.MaxHistoryLimit, h2.limit)
}

func TestSetLimitTrimsImmediately(t *testing.T) {
	h := New(types.DefaultHistoryLimit)
	for i := 0; i < 20; i++ {
		h.Record(string(rune('a'+i)), "local")
	}
	h.SetLimit(types.MinHistoryLimit)
	require.Len(t, h.entries, types.MinHistoryLimit)
}

func TestPersistentStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	ps, err := OpenPersistent(path, types.DefaultHistoryLimit)
	require.NoError(t, err)
	ps.Record("first", "local")
	ps.Record("second", "phone")
	require.NoError(t, ps.Close())

	reopened, err := OpenPersistent(path, types.DefaultHistoryLimit)
	require.NoError(t, err)
	defer reopened.Close()

	all := reopened.List(10)
	require.Len(t, all, 2)
	require.Equal(t, "second", all[0].Content)
	require.Equal(t, "first", all[1].Content)
}
