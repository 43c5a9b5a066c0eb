// Package sqlite implements the clinic data store on an embedded SQLite
// database: patients, prescriptions and their items, certificates, the
// medicine inventory, templates, and settings.
//
// A Store is opened explicitly with Open and owned by whatever layer serves
// UI requests. Reads share a read lock; every mutation takes the write lock
// and runs in a single transaction, so overlapping requests are serialized
// and a failed operation leaves nothing behind.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// Store is the clinic data store.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string

	// now supplies local timestamps; replaced in tests.
	now func() time.Time
}

// connection pragmas applied to every pooled connection.
const dsnPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Open opens (creating if needed) the database file at path and migrates the
// schema to the current version. The caller must Close the store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("opening store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?"+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}

	s := newStore(db, path)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// newStore wraps an already-open database without touching its schema.
func newStore(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path, now: time.Now}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. Close is idempotent; after Close every
// operation returns types.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// timestamp returns the current local time in the persisted layout.
func (s *Store) timestamp() string {
	return types.FormatTimestamp(s.now())
}

// withTx runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise. The caller must hold s.mu for writing.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return types.ErrStoreClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// storedTime scans a nullable timestamp column. The driver returns columns
// declared DATETIME as time.Time carrying the stored wall clock in UTC, and
// computed columns as text; both are read as local time. NULL and empty
// values leave Valid false.
type storedTime struct {
	Time  time.Time
	Valid bool
}

func (st *storedTime) Scan(src any) error {
	st.Time, st.Valid = time.Time{}, false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		st.Time = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.Local)
	case string:
		return st.parse(v)
	case []byte:
		return st.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp value %T", src)
	}
	st.Valid = true
	return nil
}

func (st *storedTime) parse(s string) error {
	if s == "" {
		return nil
	}
	t, err := types.ParseTimestamp(s)
	if err != nil {
		return err
	}
	st.Time, st.Valid = t, true
	return nil
}
