// This file implements database export: a checkpointed copy of the live
// database file written with the temp-file, fsync, rename pattern.
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// DefaultBackupName returns the suggested file name for a backup taken at t.
func DefaultBackupName(t time.Time) string {
	return fmt.Sprintf("Clinic_Backup_%s.db", t.Format(types.DateLayout))
}

// Export copies the database file to dst. An empty dst means the user
// cancelled the destination picker; the result is marked Cancelled and no
// error is returned. Writes are blocked for the duration of the copy.
func (s *Store) Export(ctx context.Context, dst string) (types.ExportResult, error) {
	if dst == "" {
		return types.ExportResult{Cancelled: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ExportResult{}, types.ErrStoreClosed
	}
	if s.path == "" {
		return types.ExportResult{}, types.ErrExportSourceMissing
	}
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return types.ExportResult{}, types.ErrExportSourceMissing
		}
		return types.ExportResult{}, fmt.Errorf("checking database file: %w", err)
	}

	// Fold the write-ahead log into the main file so the copy is complete.
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return types.ExportResult{}, fmt.Errorf("checkpointing database: %w", err)
	}

	n, err := copyFileAtomic(s.path, dst)
	if err != nil {
		return types.ExportResult{}, err
	}
	return types.ExportResult{Path: dst, Bytes: n}, nil
}

// copyFileAtomic copies src to dst through a temp file in dst's directory,
// syncing before the rename so dst is either complete or untouched.
func copyFileAtomic(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".clinic-backup-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("copying database: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
