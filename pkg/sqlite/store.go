// Package sqlite provides the public API for the SQLite clinic data store.
// It exposes the constructor and store type while keeping the schema and
// query code internal.
package sqlite

import (
	"context"
	"time"

	"github.com/mesh-intelligence/clinic/internal/sqlite"
)

// Store is the clinic data store. See Open.
type Store = sqlite.Store

// Open opens (creating if needed) the database file at path and migrates it
// to the current schema. The caller must Close the store.
//
// Example:
//
//	store, err := sqlite.Open(ctx, filepath.Join(dataDir, types.DatabaseFileName))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(ctx context.Context, path string) (*Store, error) {
	return sqlite.Open(ctx, path)
}

// DefaultBackupName returns the suggested backup file name for a backup
// taken at t.
func DefaultBackupName(t time.Time) string {
	return sqlite.DefaultBackupName(t)
}
