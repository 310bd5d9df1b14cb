package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/nodeerr"
)

func TestPeerIDDerivation(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	sum := sha256.Sum256(id.Public[:])
	want := hex.EncodeToString(sum[:16])
	require.Equal(t, want, PeerID(id))
}

func TestLoadMissingIsNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "identity.json"))
	require.ErrorIs(t, err, nodeerr.ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")

	id, err := Generate()
	require.NoError(t, err)
	require.NoError(t, Save(path, id))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, id.Public, loaded.Public)
	require.Equal(t, id.Private, loaded.Private)
	require.Equal(t, PeerID(id), PeerID(loaded))
}

func TestLoadOrGenerateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")

	first, err := LoadOrGenerate(path)
	require.NoError(t, err)

	second, err := LoadOrGenerate(path)
	require.NoError(t, err)

	require.Equal(t, first.Public, second.Public)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sk": "not-base64!!", "pk": "AA=="}`), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, nodeerr.ErrCorruptFile)
}

func TestLoadRejectsLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sk": "AAAA", "pk": "AAAA"}`), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, nodeerr.ErrCorruptFile)
}
