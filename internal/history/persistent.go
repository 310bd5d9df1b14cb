package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

var bucketName = []byte("history")

// PersistentStore is the opt-in, bbolt-backed variant of Store (spec §9:
// "MUST NOT persist history without an explicit configuration flag"). It
// keeps the same bounded in-memory view as Store, but durably records every
// entry so it survives a restart.
type PersistentStore struct {
	db   *bbolt.DB
	mem  *Store
	seq  uint64
	seqMu chan struct{} // 1-buffered mutex, kept distinct from mem.mu
}

// OpenPersistent opens (creating if absent) a bbolt database at path and
// replays up to limit most-recent entries into memory.
func OpenPersistent(path string, limit int) (*PersistentStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open history database %s: %v", nodeerr.ErrIO, path, err)
	}

	ps := &PersistentStore{db: db, mem: New(limit), seqMu: make(chan struct{}, 1)}
	ps.seqMu <- struct{}{}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init history bucket: %v", nodeerr.ErrIO, err)
	}

	if err := ps.replay(); err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("persistent clipboard history opened at %s (%d entries replayed)", path, len(ps.mem.entries))
	return ps, nil
}

func (ps *PersistentStore) replay() error {
	return ps.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		c := b.Cursor()
		var last uint64
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec persistedEntry
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // skip corrupt individual records rather than fail the whole store
			}
			ps.mem.entries = append(ps.mem.entries, rec.Entry)
			if len(ps.mem.entries) > ps.mem.limit {
				ps.mem.entries = ps.mem.entries[len(ps.mem.entries)-ps.mem.limit:]
			}
			last = binary.BigEndian.Uint64(k)
		}
		ps.seq = last
		return nil
	})
}

type persistedEntry struct {
	Entry types.HistoryEntry `json:"entry"`
}

// Record appends a new entry both to the in-memory view and to disk.
func (ps *PersistentStore) Record(content, sourcePeer string) string {
	id := uuid.NewString()
	entry := types.HistoryEntry{ID: id, Content: content, SourcePeer: sourcePeer, TimestampMS: time.Now().UnixMilli()}

	<-ps.seqMu
	ps.seq++
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, ps.seq)
	ps.seqMu <- struct{}{}

	raw, _ := json.Marshal(persistedEntry{Entry: entry})
	if err := ps.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, raw)
	}); err != nil {
		log.Errorf("persist history entry %s: %v", id, err)
	}

	ps.mem.mu.Lock()
	ps.mem.entries = append(ps.mem.entries, entry)
	if len(ps.mem.entries) > ps.mem.limit {
		ps.mem.entries = ps.mem.entries[len(ps.mem.entries)-ps.mem.limit:]
	}
	ps.mem.mu.Unlock()

	return id
}

func (ps *PersistentStore) List(limit int) []types.HistoryEntry                    { return ps.mem.List(limit) }
func (ps *PersistentStore) ListForPeer(peer string, limit int) []types.HistoryEntry { return ps.mem.ListForPeer(peer, limit) }
func (ps *PersistentStore) Find(id string) (types.HistoryEntry, bool)              { return ps.mem.Find(id) }
func (ps *PersistentStore) SetLimit(n int)                                          { ps.mem.SetLimit(n) }

// Close releases the underlying bbolt database.
func (ps *PersistentStore) Close() error {
	return ps.db.Close()
}
