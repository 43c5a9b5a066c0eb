// This file implements prescription issuance with inventory learning, and
// the prescription read paths used for history and reprinting.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

const upsertInventorySQL = `INSERT INTO inventory (name, default_dosage, default_duration, default_instruction)
VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
    default_dosage = excluded.default_dosage,
    default_duration = excluded.default_duration,
    default_instruction = excluded.default_instruction`

// SavePrescription stores a prescription dated now, one item per medicine in
// input order, and records each medicine's dosage, duration, and instruction
// as the new inventory defaults for that name. Everything commits together
// or not at all; a missing patient or an invalid item fails the whole call.
func (s *Store) SavePrescription(ctx context.Context, d types.PrescriptionDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO prescriptions (patient_id, diagnosis, date) VALUES (?, ?, ?)",
			d.PatientID, d.Diagnosis, s.timestamp(),
		)
		if err != nil {
			return fmt.Errorf("inserting prescription: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading prescription id: %w", err)
		}

		insertItem, err := tx.PrepareContext(ctx,
			"INSERT INTO prescription_items (prescription_id, medicine, dosage, duration, instruction) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing item insert: %w", err)
		}
		defer insertItem.Close()

		upsert, err := tx.PrepareContext(ctx, upsertInventorySQL)
		if err != nil {
			return fmt.Errorf("preparing inventory upsert: %w", err)
		}
		defer upsert.Close()

		for i, m := range d.Medicines {
			if _, err := insertItem.ExecContext(ctx, id, m.Name, m.Dosage, m.Duration, m.Instruction); err != nil {
				return fmt.Errorf("inserting item %d (%q): %w", i, m.Name, err)
			}
			if _, err := upsert.ExecContext(ctx, m.Name, m.Dosage, m.Duration, m.Instruction); err != nil {
				return fmt.Errorf("updating inventory for %q: %w", m.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetPrescription returns the prescription header with the given id, or
// types.ErrNotFound.
func (s *Store) GetPrescription(ctx context.Context, id int64) (types.Prescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.Prescription{}, types.ErrStoreClosed
	}
	var (
		rx        types.Prescription
		diagnosis sql.NullString
		date      storedTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, patient_id, diagnosis, date FROM prescriptions WHERE id = ?", id,
	).Scan(&rx.ID, &rx.PatientID, &diagnosis, &date)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Prescription{}, types.ErrNotFound
		}
		return types.Prescription{}, fmt.Errorf("getting prescription %d: %w", id, err)
	}
	rx.Diagnosis = diagnosis.String
	rx.Date = date.Time
	return rx, nil
}

// PrescriptionItems returns the items of a prescription in the order they
// were saved. An unknown prescription yields an empty list.
func (s *Store) PrescriptionItems(ctx context.Context, prescriptionID int64) ([]types.PrescriptionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, prescription_id, medicine, dosage, duration, instruction FROM prescription_items WHERE prescription_id = ? ORDER BY id ASC",
		prescriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items of prescription %d: %w", prescriptionID, err)
	}
	defer rows.Close()

	items := []types.PrescriptionItem{}
	for rows.Next() {
		var (
			it                            types.PrescriptionItem
			dosage, duration, instruction sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.Medicine, &dosage, &duration, &instruction); err != nil {
			return nil, fmt.Errorf("scanning prescription item: %w", err)
		}
		it.Dosage = dosage.String
		it.Duration = duration.String
		it.Instruction = instruction.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prescription items: %w", err)
	}
	return items, nil
}
