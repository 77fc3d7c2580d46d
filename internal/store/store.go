package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCatalog = []byte("catalog")
	bucketTitles  = []byte("titles")

	allBuckets = [][]byte{bucketCatalog, bucketTitles}
)

const catalogKey = "all"

type catalogRecord struct {
	Titles    []domain.Title `json:"titles"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

type titleRecord struct {
	Title     domain.Title `json:"title"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// SnapshotStore implements domain.Snapshot using BoltDB.
type SnapshotStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewSnapshotStore opens the snapshot database under baseCacheDir, in a
// subdirectory per server. An empty baseCacheDir keeps everything in memory.
func NewSnapshotStore(baseCacheDir, serverURL string) (*SnapshotStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &SnapshotStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SnapshotStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SnapshotStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SnapshotStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// === Catalog ===

func (s *SnapshotStore) GetCatalog() ([]domain.Title, time.Time, bool) {
	var rec catalogRecord
	if !s.get(bucketCatalog, catalogKey, &rec) {
		return nil, time.Time{}, false
	}
	return rec.Titles, rec.FetchedAt, true
}

func (s *SnapshotStore) SaveCatalog(titles []domain.Title, fetchedAt time.Time) error {
	return s.set(bucketCatalog, catalogKey, catalogRecord{Titles: titles, FetchedAt: fetchedAt})
}

// === Titles ===

func (s *SnapshotStore) GetTitle(id string) (domain.Title, time.Time, bool) {
	var rec titleRecord
	if !s.get(bucketTitles, id, &rec) {
		return domain.Title{}, time.Time{}, false
	}
	return rec.Title, rec.FetchedAt, true
}

func (s *SnapshotStore) SaveTitle(title domain.Title, fetchedAt time.Time) error {
	if title.ID == "" {
		return fmt.Errorf("title has no id")
	}
	return s.set(bucketTitles, title.ID, titleRecord{Title: title, FetchedAt: fetchedAt})
}

// InvalidateAll wipes every saved snapshot
func (s *SnapshotStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			var keys [][]byte
			b.ForEach(func(k, _ []byte) error {
				keys = append(keys, append([]byte(nil), k...))
				return nil
			})
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var _ domain.Snapshot = (*SnapshotStore)(nil)
