// This file implements the patient registry: add, update, cascade delete,
// lookup, and last-visit-ordered search.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// recentPatientsLimit caps the unfiltered patient list.
const recentPatientsLimit = 30

// AddPatient inserts a patient stamped with the current local time and
// returns its id. Duplicate names or phones are allowed.
func (s *Store) AddPatient(ctx context.Context, in types.PatientInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO patients (name, age, gender, phone, created_at) VALUES (?, ?, ?, ?, ?)",
			in.Name, in.Age, string(in.Gender), in.Phone, s.timestamp(),
		)
		if err != nil {
			return fmt.Errorf("inserting patient: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading patient id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePatient overwrites name, age, gender, and phone. created_at is never
// touched. It reports false when no patient has that id.
func (s *Store) UpdatePatient(ctx context.Context, id int64, in types.PatientInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE patients SET name = ?, age = ?, gender = ?, phone = ? WHERE id = ?",
			in.Name, in.Age, string(in.Gender), in.Phone, id,
		)
		if err != nil {
			return fmt.Errorf("updating patient %d: %w", id, err)
		}
		updated, err = affected(res)
		return err
	})
	return updated, err
}

// DeletePatient removes a patient together with its prescription items,
// prescriptions, and certificates in one transaction. It reports false when
// no patient has that id.
func (s *Store) DeletePatient(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM prescription_items WHERE prescription_id IN (SELECT id FROM prescriptions WHERE patient_id = ?)", id,
		); err != nil {
			return fmt.Errorf("deleting prescription items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM prescriptions WHERE patient_id = ?", id); err != nil {
			return fmt.Errorf("deleting prescriptions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM certificates WHERE patient_id = ?", id); err != nil {
			return fmt.Errorf("deleting certificates: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM patients WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting patient: %w", err)
		}
		deleted, err = affected(res)
		return err
	})
	return deleted, err
}

// GetPatient returns the patient with the given id, or types.ErrNotFound.
func (s *Store) GetPatient(ctx context.Context, id int64) (types.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.Patient{}, types.ErrStoreClosed
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, age, gender, phone, created_at FROM patients WHERE id = ?", id)

	var (
		p             types.Patient
		age           sql.NullInt64
		gender, phone sql.NullString
		created       storedTime
	)
	if err := row.Scan(&p.ID, &p.Name, &age, &gender, &phone, &created); err != nil {
		if err == sql.ErrNoRows {
			return types.Patient{}, types.ErrNotFound
		}
		return types.Patient{}, fmt.Errorf("getting patient %d: %w", id, err)
	}
	p.Age = int(age.Int64)
	p.Gender = types.Gender(gender.String)
	p.Phone = phone.String
	p.CreatedAt = created.Time
	return p, nil
}

// lastVisitExpr computes a patient's latest prescription date or certificate
// issue time, NULL when neither exists.
const lastVisitExpr = `NULLIF(MAX(
        COALESCE((SELECT MAX(date) FROM prescriptions WHERE patient_id = p.id), ''),
        COALESCE((SELECT MAX(created_at) FROM certificates WHERE patient_id = p.id), '')
    ), '')`

// SearchPatients lists patients ordered by most recent activity: the later
// of last visit and creation, newest first. A blank query returns the 30
// most recently active patients. Otherwise names are matched by
// case-insensitive prefix and phones by substring, with no limit. Case
// folding covers non-ASCII names.
func (s *Store) SearchPatients(ctx context.Context, query string) ([]types.PatientSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}

	inner := "SELECT p.id, p.name, p.age, p.gender, p.phone, p.created_at, " + lastVisitExpr + " AS last_visit FROM patients p"
	query = strings.TrimSpace(query)

	stmt := "SELECT id, name, age, gender, phone, created_at, last_visit FROM (" + inner + ")" +
		" ORDER BY MAX(COALESCE(last_visit, ''), COALESCE(created_at, '')) DESC, id DESC"
	if query == "" {
		stmt += fmt.Sprintf(" LIMIT %d", recentPatientsLimit)
	}

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("searching patients: %w", err)
	}
	defer rows.Close()

	results := []types.PatientSummary{}
	for rows.Next() {
		var (
			ps             types.PatientSummary
			age            sql.NullInt64
			gender, phone  sql.NullString
			created, visit storedTime
		)
		if err := rows.Scan(&ps.ID, &ps.Name, &age, &gender, &phone, &created, &visit); err != nil {
			return nil, fmt.Errorf("scanning patient: %w", err)
		}
		if query != "" && !matchesPatient(ps.Name, phone.String, query) {
			continue
		}
		ps.Age = int(age.Int64)
		ps.Gender = types.Gender(gender.String)
		ps.Phone = phone.String
		ps.CreatedAt = created.Time
		if visit.Valid {
			lv := visit.Time
			ps.LastVisit = &lv
		}
		results = append(results, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating patients: %w", err)
	}
	return results, nil
}

// matchesPatient reports whether name starts with query, ignoring case, or
// phone contains it.
func matchesPatient(name, phone, query string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(query)) ||
		strings.Contains(phone, query)
}

// affected reports whether a statement changed at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}
