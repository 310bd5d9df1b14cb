package trust

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)
	require.Empty(t, s.List())
}

func TestAddGetRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)

	require.NoError(t, s.Add("peer-a", "cGs=", "Alice"))
	rec, ok := s.Get("peer-a")
	require.True(t, ok)
	require.Equal(t, "Alice", rec.DisplayName)

	require.True(t, s.Remove("peer-a"))
	_, ok = s.Get("peer-a")
	require.False(t, ok)
}

func TestAddReplacesByPeerID(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)

	require.NoError(t, s.Add("peer-a", "old", "Old Name"))
	require.NoError(t, s.Add("peer-a", "new", "New Name"))

	require.Len(t, s.List(), 1)
	rec, _ := s.Get("peer-a")
	require.Equal(t, "New Name", rec.DisplayName)
}

func TestListSortedByDisplayName(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)

	require.NoError(t, s.Add("p2", "pk2", "Zebra"))
	require.NoError(t, s.Add("p1", "pk1", "Apple"))

	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, "Apple", list[0].DisplayName)
	require.Equal(t, "Zebra", list[1].DisplayName)
}

func TestPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.json")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Add("peer-a", "pk", "Alice"))

	reloaded, err := Open(path)
	require.NoError(t, err)
	rec, ok := reloaded.Get("peer-a")
	require.True(t, ok)
	require.Equal(t, "Alice", rec.DisplayName)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)

	require.NoError(t, s.Add("peer-a", "pk", "Alice"))
	s.Clear()
	require.Empty(t, s.List())
}

func TestRemoveNonexistentReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "trust.json"))
	require.NoError(t, err)
	require.False(t, s.Remove("nope"))
}
