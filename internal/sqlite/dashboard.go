// This file implements the dashboard aggregation. Visits are bucketed by
// local-time string prefix (YYYY-MM-DD for days, YYYY-MM for months).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// weekDays is the number of daily buckets ending today.
const weekDays = 7

// visitsByPrefixSQL counts prescriptions and certificates grouped by the
// first n characters of their timestamp, restricted to timestamps that start
// with the given prefix.
const visitsByPrefixSQL = `SELECT substr(d, 1, ?) AS bucket, COUNT(*) FROM (
    SELECT date AS d FROM prescriptions WHERE date LIKE ? || '%'
    UNION ALL
    SELECT created_at AS d FROM certificates WHERE created_at LIKE ? || '%'
) GROUP BY bucket`

// visitsSinceSQL counts visits per calendar day from a start day onwards.
const visitsSinceSQL = `SELECT substr(d, 1, 10) AS bucket, COUNT(*) FROM (
    SELECT date AS d FROM prescriptions WHERE date >= ?
    UNION ALL
    SELECT created_at AS d FROM certificates WHERE created_at >= ?
) GROUP BY bucket`

// DashboardStats computes patient totals and visit counts for today, this
// month, each of the last seven days (oldest first), and each month of the
// current year. All reads happen in one transaction.
func (s *Store) DashboardStats(ctx context.Context) (types.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return types.DashboardStats{}, types.ErrStoreClosed
	}
	now := s.now().In(time.Local)
	today := now.Format(types.DateLayout)
	month := now.Format(types.MonthLayout)
	weekStart := now.AddDate(0, 0, -(weekDays - 1)).Format(types.DateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.DashboardStats{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var stats types.DashboardStats
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients").Scan(&stats.TotalPatients); err != nil {
		return types.DashboardStats{}, fmt.Errorf("counting patients: %w", err)
	}

	daily, err := countBuckets(ctx, tx, visitsSinceSQL, weekStart, weekStart)
	if err != nil {
		return types.DashboardStats{}, fmt.Errorf("counting daily visits: %w", err)
	}
	year := now.Format("2006")
	monthly, err := countBuckets(ctx, tx, visitsByPrefixSQL, len(types.MonthLayout), year+"-", year+"-")
	if err != nil {
		return types.DashboardStats{}, fmt.Errorf("counting monthly visits: %w", err)
	}

	stats.WeeklyStats = make([]types.Bucket, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		stats.WeeklyStats = append(stats.WeeklyStats, types.Bucket{
			Label: d.Weekday().String()[:3],
			Count: daily[d.Format(types.DateLayout)],
		})
	}

	stats.YearlyStats = make([]types.Bucket, 0, 12)
	for m := time.January; m <= time.December; m++ {
		key := fmt.Sprintf("%s-%02d", year, int(m))
		stats.YearlyStats = append(stats.YearlyStats, types.Bucket{
			Label: m.String()[:3],
			Count: monthly[key],
		})
	}

	stats.TodayCount = daily[today]
	stats.MonthCount = monthly[month]
	return stats, nil
}

// countBuckets runs a grouping query returning (bucket, count) rows.
func countBuckets(ctx context.Context, tx *sql.Tx, query string, args ...any) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			bucket sql.NullString
			n      int
		)
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		counts[bucket.String] += n
	}
	return counts, rows.Err()
}
