package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func local(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func saveRxAt(t *testing.T, s *Store, pid int64, at time.Time) {
	t.Helper()
	fixClock(s, at)
	_, err := s.SavePrescription(context.Background(), types.PrescriptionDraft{
		PatientID: pid, Diagnosis: "Checkup", Medicines: []types.Medicine{{Name: "VITAMIN C"}},
	})
	require.NoError(t, err)
}

func bucketLabels(b []types.Bucket) []string {
	out := make([]string, len(b))
	for i, x := range b {
		out[i] = x.Label
	}
	return out
}

func bucketCounts(b []types.Bucket) []int {
	out := make([]int, len(b))
	for i, x := range b {
		out[i] = x.Count
	}
	return out
}

func TestDashboardStats_Empty(t *testing.T) {
	s := setupStore(t)
	fixClock(s, local(2026, 10, 17, 12))

	stats, err := s.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPatients)
	assert.Equal(t, 0, stats.TodayCount)
	assert.Equal(t, 0, stats.MonthCount)
	assert.Len(t, stats.WeeklyStats, 7)
	assert.Len(t, stats.YearlyStats, 12)
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		bucketLabels(stats.YearlyStats))
}

func TestDashboardStats_Counts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	fixClock(s, local(2025, 1, 5, 9))
	pid := addPatient(t, s, "Asha", "1")
	addPatient(t, s, "Ravi", "2")

	saveRxAt(t, s, pid, local(2025, 10, 17, 10)) // same day last year
	saveRxAt(t, s, pid, local(2026, 9, 20, 10))
	saveRxAt(t, s, pid, local(2026, 10, 15, 10))
	saveRxAt(t, s, pid, local(2026, 10, 16, 10))
	saveRxAt(t, s, pid, local(2026, 10, 17, 9))

	fixClock(s, local(2026, 10, 17, 12))
	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPatients)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, 3, stats.MonthCount)

	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, bucketLabels(stats.WeeklyStats))
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1}, bucketCounts(stats.WeeklyStats))

	weekly := 0
	for _, b := range stats.WeeklyStats {
		weekly += b.Count
	}
	assert.Equal(t, stats.MonthCount, weekly)

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 3, 0, 0}, bucketCounts(stats.YearlyStats))
}

func TestDashboardStats_CertificatesCountAsVisits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	pid := addPatient(t, s, "Asha", "1")

	saveRxAt(t, s, pid, local(2026, 10, 17, 9))
	fixClock(s, local(2026, 10, 17, 10))
	_, err := s.SaveCertificate(ctx, types.CertificateDraft{
		PatientID: pid, Diagnosis: "Fever", StartDate: "2026-10-17", EndDate: "2026-10-18",
	})
	require.NoError(t, err)

	fixClock(s, local(2026, 10, 17, 12))
	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodayCount)
	assert.Equal(t, 2, stats.MonthCount)
	assert.Equal(t, 2, stats.WeeklyStats[6].Count)
	assert.Equal(t, 2, stats.YearlyStats[9].Count)
}

func TestDashboardStats_WeekSpansMonthBoundary(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	pid := addPatient(t, s, "Asha", "1")

	saveRxAt(t, s, pid, local(2026, 2, 27, 10))
	saveRxAt(t, s, pid, local(2026, 3, 1, 10))
	saveRxAt(t, s, pid, local(2026, 3, 2, 8))

	fixClock(s, local(2026, 3, 2, 10))
	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun", "Mon"}, bucketLabels(stats.WeeklyStats))
	assert.Equal(t, []int{0, 0, 0, 1, 0, 1, 1}, bucketCounts(stats.WeeklyStats))
	assert.Equal(t, 2, stats.MonthCount)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, 1, stats.YearlyStats[1].Count)
	assert.Equal(t, 2, stats.YearlyStats[2].Count)
}
