package store

import (
	"fmt"
	"io"
	"sync"

	"github.com/desertthunder/boletim/internal/shared"
)

// Store is a string key/value store.
//
// Get reports ok=false for absent keys.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryStore is a [Store] backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the [Store] selected by cfg along with a closer for its resources.
func Open(cfg *shared.Config) (Store, io.Closer, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemoryStore(), nopCloser{}, nil
	case "file":
		s, err := NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "sqlite":
		db, err := shared.NewDatabase(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

		s, err := NewSQLiteStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrUnknownDriver, cfg.Storage.Driver)
	}
}
