// This file implements diagnosis templates. The medicine list is persisted
// as an opaque JSON blob; see types.EncodeMedicines.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// ListTemplates returns all templates ordered by name. A template whose
// medicine blob cannot be decoded is returned with an empty medicine list.
func (s *Store) ListTemplates(ctx context.Context) ([]types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, diagnosis, medicines FROM templates ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	templates := []types.Template{}
	for rows.Next() {
		var (
			t                          types.Template
			name, diagnosis, medicines sql.NullString
		)
		if err := rows.Scan(&t.ID, &name, &diagnosis, &medicines); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		t.Name = name.String
		t.Diagnosis = diagnosis.String
		t.Medicines, err = types.DecodeMedicines(medicines.String)
		if err != nil {
			t.Medicines = []types.Medicine{}
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

// SaveTemplate inserts t when t.ID is zero and otherwise updates it in
// place. It returns the template id and false when updating an id that does
// not exist.
func (s *Store) SaveTemplate(ctx context.Context, t types.Template) (int64, bool, error) {
	blob, err := types.EncodeMedicines(t.Medicines)
	if err != nil {
		return 0, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := t.ID
	found := true
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if id != 0 {
			res, err := tx.ExecContext(ctx,
				"UPDATE templates SET name = ?, diagnosis = ?, medicines = ? WHERE id = ?",
				t.Name, t.Diagnosis, blob, id,
			)
			if err != nil {
				return fmt.Errorf("updating template %d: %w", id, err)
			}
			found, err = affected(res)
			return err
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO templates (name, diagnosis, medicines) VALUES (?, ?, ?)",
			t.Name, t.Diagnosis, blob,
		)
		if err != nil {
			return fmt.Errorf("inserting template: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading template id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, found, nil
}

// DeleteTemplate removes a template, reporting false if it did not exist.
func (s *Store) DeleteTemplate(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting template %d: %w", id, err)
		}
		deleted, err = affected(res)
		return err
	})
	return deleted, err
}
