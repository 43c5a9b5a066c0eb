package types

// Bucket is the visit count for one labelled day or month.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardStats summarizes registry size and visit volume. A visit is a
// prescription or a certificate; both count on the same day.
type DashboardStats struct {
	TotalPatients int      `json:"totalPatients"`
	TodayCount    int      `json:"todayCount"`
	MonthCount    int      `json:"monthCount"`
	WeeklyStats   []Bucket `json:"weeklyStats"`
	YearlyStats   []Bucket `json:"yearlyStats"`
}
