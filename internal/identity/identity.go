// Package identity implements the node's long-term signing identity (C1, spec §4.1).
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/logging"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/util/memzero"
)

var log = logging.Get("identity")

// Generate creates a fresh Ed25519 signing identity.
func Generate() (types.Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return types.Identity{}, fmt.Errorf("generate identity: %w", err)
	}
	var id types.Identity
	copy(id.Private[:], priv)
	copy(id.Public[:], pub)
	return id, nil
}

// PeerID derives the stable PeerId from an identity's public key:
// hex(sha256(public_key)[0..16]) (spec §3, §4.1 invariant 1).
func PeerID(id types.Identity) string {
	return PeerIDFromPublic(id.Public[:])
}

// PeerIDFromPublic derives a PeerId from a raw Ed25519 public key.
func PeerIDFromPublic(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:16])
}

// PublicKeyB64 returns the base64-standard encoding of the public key.
func PublicKeyB64(id types.Identity) string {
	return base64.StdEncoding.EncodeToString(id.Public[:])
}

// Load reads an identity from disk, generating nothing on its own.
// Returns nodeerr.ErrNotFound if the file is absent and nodeerr.ErrCorruptFile
// on any parse/length failure (spec §4.1).
func Load(path string) (types.Identity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Identity{}, nodeerr.ErrNotFound
		}
		return types.Identity{}, fmt.Errorf("read identity file: %w", nodeerr.ErrIO)
	}

	var f types.IdentityFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return types.Identity{}, fmt.Errorf("parse identity file: %w", nodeerr.ErrCorruptFile)
	}

	sk, err := base64.StdEncoding.DecodeString(f.SK)
	if err != nil {
		return types.Identity{}, fmt.Errorf("decode sk: %w", nodeerr.ErrCorruptFile)
	}
	pk, err := base64.StdEncoding.DecodeString(f.PK)
	if err != nil {
		return types.Identity{}, fmt.Errorf("decode pk: %w", nodeerr.ErrCorruptFile)
	}
	if len(sk) != ed25519.PrivateKeySize || len(pk) != ed25519.PublicKeySize {
		return types.Identity{}, fmt.Errorf("identity key length mismatch: %w", nodeerr.ErrCorruptFile)
	}

	var id types.Identity
	copy(id.Private[:], sk)
	copy(id.Public[:], pk)
	memzero.Zero(sk)
	return id, nil
}

// Save atomically writes the identity to disk as JSON {"sk": b64, "pk": b64}
// (spec §4.1, §6).
func Save(path string, id types.Identity) error {
	f := types.IdentityFile{
		SK: base64.StdEncoding.EncodeToString(id.Private[:]),
		PK: base64.StdEncoding.EncodeToString(id.Public[:]),
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s", nodeerr.ErrIO, dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp identity file", nodeerr.ErrIO)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp identity file", nodeerr.ErrIO)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod identity file", nodeerr.ErrIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp identity file", nodeerr.ErrIO)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename identity file", nodeerr.ErrIO)
	}
	log.Infof("identity saved to %s", path)
	return nil
}

// LoadOrGenerate loads the identity at path, creating and persisting a new
// one if absent (spec §2 "generates C1 if absent").
func LoadOrGenerate(path string) (types.Identity, error) {
	id, err := Load(path)
	if err == nil {
		return id, nil
	}
	if err != nodeerr.ErrNotFound {
		return types.Identity{}, err
	}

	id, err = Generate()
	if err != nil {
		return types.Identity{}, err
	}
	if err := Save(path, id); err != nil {
		return types.Identity{}, err
	}
	log.Infof("generated new identity, peer_id=%s", PeerID(id))
	return id, nil
}
