package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/boletim/internal/shared"
	th "github.com/desertthunder/boletim/internal/testing"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	return s
}

func newFileStore(t *testing.T) *FileStore {
	t.Helper()

	s, err := NewFileStore(filepath.Join(t.TempDir(), "state", "boletim.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file":   func(t *testing.T) Store { return newFileStore(t) },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("absent key", func(t *testing.T) {
				s := newStore(t)

				v, ok, err := s.Get("missing")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if ok || v != "" {
					t.Errorf("expected absent key, got %q (ok=%v)", v, ok)
				}
			})

			t.Run("set then get", func(t *testing.T) {
				s := newStore(t)

				if err := s.Set("k", `{"a":1}`); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				v, ok, err := s.Get("k")
				if err != nil || !ok {
					t.Fatalf("Get() = %q, %v, %v", v, ok, err)
				}
				if v != `{"a":1}` {
					t.Errorf("expected stored value, got %q", v)
				}
			})

			t.Run("overwrite", func(t *testing.T) {
				s := newStore(t)

				s.Set("k", "first")
				s.Set("other", "untouched")
				if err := s.Set("k", "second"); err != nil {
					t.Fatalf("Set() error = %v", err)
				}

				if v, _, _ := s.Get("k"); v != "second" {
					t.Errorf("expected overwritten value, got %q", v)
				}
				if v, _, _ := s.Get("other"); v != "untouched" {
					t.Errorf("expected other key kept, got %q", v)
				}
			})
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Run("persists across instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "boletim.json")

		first, _ := NewFileStore(path)
		if err := first.Set(StateKey, "value"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		second, _ := NewFileStore(path)
		if v, ok, _ := second.Get(StateKey); !ok || v != "value" {
			t.Errorf("expected value from disk, got %q (ok=%v)", v, ok)
		}
		if second.Path() != path {
			t.Errorf("expected path %s, got %s", path, second.Path())
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "boletim.json")
		th.MustWriteFile(t, path, "{oops")

		s, _ := NewFileStore(path)
		if _, _, err := s.Get("k"); !errors.Is(err, shared.ErrCorruptState) {
			t.Errorf("Get() error = %v, want ErrCorruptState", err)
		}

		if err := s.Set("k", "v"); err != nil {
			t.Fatalf("Set() should replace a corrupt file, got %v", err)
		}
		if v, ok, err := s.Get("k"); err != nil || !ok || v != "v" {
			t.Errorf("Get() after repair = %q, %v, %v", v, ok, err)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		dir := t.TempDir()
		s, _ := NewFileStore(filepath.Join(dir, "boletim.json"))
		s.Set("a", "1")
		s.Set("b", "2")

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the state file, got %d entries", len(entries))
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	t.Run("migrations are idempotent", func(t *testing.T) {
		s := newSQLiteStore(t)
		s.Set("k", "v")

		if _, err := NewSQLiteStore(s.db); err != nil {
			t.Fatalf("second NewSQLiteStore() error = %v", err)
		}
		if v, _, _ := s.Get("k"); v != "v" {
			t.Errorf("expected data kept across migration run, got %q", v)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		s := newSQLiteStore(t)
		s.db.Close()

		if _, _, err := s.Get("k"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("Get() error = %v, want ErrStorage", err)
		}
		if err := s.Set("k", "v"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("Set() error = %v, want ErrStorage", err)
		}
	})
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		path    string
		wantErr error
	}{
		{name: "memory", driver: "memory"},
		{name: "file", driver: "file", path: "state.json"},
		{name: "sqlite", driver: "sqlite", path: "boletim.db"},
		{name: "unknown", driver: "redis", wantErr: shared.ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := shared.DefaultConfig()
			cfg.Storage.Driver = tt.driver
			if tt.path != "" {
				cfg.Storage.Path = filepath.Join(t.TempDir(), tt.path)
			}

			s, closer, err := Open(cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer closer.Close()

			if err := s.Set("k", "v"); err != nil {
				t.Errorf("Set() error = %v", err)
			}
			if tt.path != "" {
				th.AssertFileExists(t, cfg.Storage.Path)
			}
		})
	}
}

func TestOpenErrorMentionsDriver(t *testing.T) {
	cfg := shared.DefaultConfig()
	cfg.Storage.Driver = "postgres"

	_, _, err := Open(cfg)
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Errorf("expected error naming the driver, got %v", err)
	}
}
