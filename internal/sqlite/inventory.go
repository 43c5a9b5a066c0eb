// This file implements the medicine inventory: strict add, overwrite update,
// delete, and insert-if-absent bulk loading.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// ListInventory returns every inventory item ordered by name.
func (s *Store) ListInventory(ctx context.Context) ([]types.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, default_dosage, default_duration, default_instruction FROM inventory ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	items := []types.InventoryItem{}
	for rows.Next() {
		var (
			it                            types.InventoryItem
			dosage, duration, instruction sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Name, &dosage, &duration, &instruction); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		it.DefaultDosage = dosage.String
		it.DefaultDuration = duration.String
		it.DefaultInstruction = instruction.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory: %w", err)
	}
	return items, nil
}

// AddMedicine inserts a new inventory item. It returns
// types.ErrDuplicateMedicine if an item with exactly that name exists; it
// never overwrites.
func (s *Store) AddMedicine(ctx context.Context, item types.InventoryItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM inventory WHERE name = ?", item.Name).Scan(&existing)
		if err == nil {
			return types.ErrDuplicateMedicine
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking medicine %q: %w", item.Name, err)
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO inventory (name, default_dosage, default_duration, default_instruction) VALUES (?, ?, ?, ?)",
			item.Name, item.DefaultDosage, item.DefaultDuration, item.DefaultInstruction,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateMedicine
			}
			return fmt.Errorf("inserting medicine %q: %w", item.Name, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading medicine id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateMedicine overwrites the name and defaults of the item with item.ID.
// It reports false when no item has that id, and returns
// types.ErrDuplicateMedicine when renaming onto another item's name.
func (s *Store) UpdateMedicine(ctx context.Context, item types.InventoryItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE inventory SET name = ?, default_dosage = ?, default_duration = ?, default_instruction = ? WHERE id = ?",
			item.Name, item.DefaultDosage, item.DefaultDuration, item.DefaultInstruction, item.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrDuplicateMedicine
			}
			return fmt.Errorf("updating medicine %d: %w", item.ID, err)
		}
		updated, err = affected(res)
		return err
	})
	return updated, err
}

// DeleteMedicine removes an inventory item. Prescription items that used the
// medicine keep their own text.
func (s *Store) DeleteMedicine(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM inventory WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting medicine %d: %w", id, err)
		}
		deleted, err = affected(res)
		return err
	})
	return deleted, err
}

// BulkAddMedicines upper-cases and trims each name, skips blanks, and inserts
// the names not already present with empty dosage and duration and the
// default instruction. It returns how many rows were actually inserted.
func (s *Store) BulkAddMedicines(ctx context.Context, names []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR IGNORE INTO inventory (name, default_dosage, default_duration, default_instruction) VALUES (?, '', '', ?)")
		if err != nil {
			return fmt.Errorf("preparing bulk insert: %w", err)
		}
		defer stmt.Close()

		for _, name := range names {
			clean := NormalizeMedicineName(name)
			if clean == "" {
				continue
			}
			res, err := stmt.ExecContext(ctx, clean, types.DefaultInstruction)
			if err != nil {
				return fmt.Errorf("inserting medicine %q: %w", clean, err)
			}
			ok, err := affected(res)
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// NormalizeMedicineName returns the canonical stored form of a medicine name.
func NormalizeMedicineName(name string) string {
	return strings.TrimSpace(strings.ToUpper(name))
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
