package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
)

// SearchRecord is one completed "go" command, the unit of the session
// ledger.
type SearchRecord struct {
	TPS       string        `json:"tps"`
	BestMove  string        `json:"best_move"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

const keyPrefixSearch = "search/"
const keyPrefixPosition = "seen/"

// Store wraps a BadgerDB session ledger with a ristretto read cache in
// front of it, the same "LSM store plus hot-entry cache" pairing badger
// itself uses internally for block data, applied here one layer up for
// repeated LookupSearch reads of the same position. RecordPosition writes
// straight to badger and does not touch the cache.
type Store struct {
	db    *badger.DB
	cache *ristretto.Cache[string, []byte]
}

// Open opens (creating if absent) the session ledger in the platform data
// directory.
func Open() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // keep stdout/stderr clear for the TEI protocol stream

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: cache}, nil
}

func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// searchKey derives a ledger key from a TPS string's xxhash digest so the
// key is a fixed 8 bytes regardless of how long the position string is.
func searchKey(tps string) []byte {
	h := xxhash.Sum64String(tps)
	key := make([]byte, len(keyPrefixSearch)+8)
	copy(key, keyPrefixSearch)
	binary.BigEndian.PutUint64(key[len(keyPrefixSearch):], h)
	return key
}

// RecordSearch persists one completed search, keyed by the position it
// was run on, and primes the read cache with the freshly written record.
func (s *Store) RecordSearch(rec SearchRecord) error {
	rec.Timestamp = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := searchKey(rec.TPS)
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return err
	}

	s.cache.Set(string(key), data, int64(len(data)))
	s.cache.Wait()
	return nil
}

// LookupSearch returns the most recently recorded search for tps, if any.
func (s *Store) LookupSearch(tps string) (SearchRecord, bool) {
	key := searchKey(tps)

	if cached, ok := s.cache.Get(string(key)); ok {
		var rec SearchRecord
		if json.Unmarshal(cached, &rec) == nil {
			return rec, true
		}
	}

	var rec SearchRecord
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	return rec, found
}

// RecordPosition notes that tps was the subject of a "d" command, for
// session history purposes; failures are intentionally not surfaced since
// this is best-effort bookkeeping, not protocol-critical state.
func (s *Store) RecordPosition(tps string) {
	key := make([]byte, 0, len(keyPrefixPosition)+8)
	key = append(key, keyPrefixPosition...)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64String(tps))
	key = append(key, buf[:]...)

	_ = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(tps))
	})
}
