// This file implements certificate issuance and the merged visit history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// SaveCertificate stores a certificate issued now and returns its id.
func (s *Store) SaveCertificate(ctx context.Context, d types.CertificateDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO certificates (patient_id, diagnosis, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?)",
			d.PatientID, d.Diagnosis, d.StartDate, d.EndDate, s.timestamp(),
		)
		if err != nil {
			return fmt.Errorf("inserting certificate: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading certificate id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetCertificate returns the certificate with the given id, or
// types.ErrNotFound.
func (s *Store) GetCertificate(ctx context.Context, id int64) (types.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.Certificate{}, types.ErrStoreClosed
	}
	var (
		c                     types.Certificate
		diagnosis, start, end sql.NullString
		createdAt             storedTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, patient_id, diagnosis, start_date, end_date, created_at FROM certificates WHERE id = ?", id,
	).Scan(&c.ID, &c.PatientID, &diagnosis, &start, &end, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Certificate{}, types.ErrNotFound
		}
		return types.Certificate{}, fmt.Errorf("getting certificate %d: %w", id, err)
	}
	c.Diagnosis = diagnosis.String
	c.StartDate = start.String
	c.EndDate = end.String
	c.CreatedAt = createdAt.Time
	return c, nil
}

const historySQL = `SELECT id, diagnosis, date, 'RX' AS type, NULL AS start_date, NULL AS end_date
    FROM prescriptions WHERE patient_id = ?
UNION ALL
SELECT id, diagnosis, created_at AS date, 'CERT' AS type, start_date, end_date
    FROM certificates WHERE patient_id = ?
ORDER BY date DESC, id DESC, type DESC`

// PatientHistory merges a patient's prescriptions and certificates into one
// feed, newest first.
func (s *Store) PatientHistory(ctx context.Context, patientID int64) ([]types.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, historySQL, patientID, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying history of patient %d: %w", patientID, err)
	}
	defer rows.Close()

	visits := []types.Visit{}
	for rows.Next() {
		var (
			id                    int64
			kind                  string
			diagnosis, start, end sql.NullString
			date                  storedTime
		)
		if err := rows.Scan(&id, &diagnosis, &date, &kind, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		when := date.Time
		switch types.VisitKind(kind) {
		case types.VisitCertificate:
			visits = append(visits, types.CertVisit{
				ID:        id,
				Diagnosis: diagnosis.String,
				Date:      when,
				StartDate: start.String,
				EndDate:   end.String,
			})
		default:
			visits = append(visits, types.RxVisit{ID: id, Diagnosis: diagnosis.String, Date: when})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return visits, nil
}
