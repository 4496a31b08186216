package dto

// DashboardResponse is the full aggregated dashboard payload.
type DashboardResponse struct {
	Summary        DashboardSummary `json:"summary"`
	Categories     CategoryStats    `json:"categories"`
	Charts         DashboardCharts  `json:"charts"`
	Alerts         []Alert          `json:"alerts"`
	RecentActivity []ActivityItem   `json:"recentActivity"`
}

// DashboardSummary holds the headline counters.
type DashboardSummary struct {
	TotalSchools    int     `json:"totalSchools"`
	ActiveSchools   int     `json:"activeSchools"`
	TotalStudents   int     `json:"totalStudents"`
	ActiveStudents  int     `json:"activeStudents"`
	TotalTeachers   int     `json:"totalTeachers"`
	ActiveTeachers  int     `json:"activeTeachers"`
	TotalClasses    int     `json:"totalClasses"`
	ActiveClasses   int     `json:"activeClasses"`
	TotalUsers      int     `json:"totalUsers"`
	ActiveUsers     int     `json:"activeUsers"`
	AttendanceRate  float64 `json:"attendanceRate"`
	QuarterAverage  float64 `json:"quarterAverage"`
	CurrentQuarter  int     `json:"currentQuarter"`
	PendingPayments int     `json:"pendingPayments"`
}

// CategoryStat summarises how much of an entity population is active.
type CategoryStat struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	Inactive      int     `json:"inactive"`
	PercentActive float64 `json:"percentActive"`
}

// CategoryStats breaks each entity population into active vs inactive,
// with the raw shift distribution kept for the class chart.
type CategoryStats struct {
	Students       CategoryStat   `json:"students"`
	Teachers       CategoryStat   `json:"teachers"`
	Classes        CategoryStat   `json:"classes"`
	Payments       CategoryStat   `json:"payments"`
	ClassesByShift map[string]int `json:"classesByShift"`
}

// DashboardCharts carries the time-series chart data.
type DashboardCharts struct {
	EnrollmentsByMonth []MonthCount     `json:"enrollmentsByMonth"`
	AttendanceByMonth  []MonthRate      `json:"attendanceByMonth"`
	QuarterAverages    []QuarterAverage `json:"quarterAverages"`
}

// MonthCount is one point on a monthly count series.
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// MonthRate is one point on a monthly percentage series.
type MonthRate struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Rate  float64 `json:"rate"`
}

// QuarterAverage is the mean grade for an academic quarter.
type QuarterAverage struct {
	Quarter int     `json:"quarter"`
	Average float64 `json:"average"`
}

// Alert is a prioritised operational warning shown on the dashboard.
type Alert struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	RefID    string `json:"refId,omitempty"`
}

// Alert severities, ordered from most to least urgent.
const (
	AlertSeverityHigh   = "HIGH"
	AlertSeverityMedium = "MEDIUM"
	AlertSeverityLow    = "LOW"
)

// Alert kinds emitted by the dashboard aggregator.
const (
	AlertKindLowAttendance       = "LOW_ATTENDANCE"
	AlertKindOverduePayment      = "OVERDUE_PAYMENT"
	AlertKindExpiredAnnouncement = "EXPIRED_ANNOUNCEMENT"
)

// ActivityItem is one entry in the recent activity feed.
type ActivityItem struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	RefID      string `json:"refId"`
	OccurredAt string `json:"occurredAt"`
}

// Activity kinds merged into the recent feed.
const (
	ActivityKindEnrollment   = "ENROLLMENT"
	ActivityKindGrade        = "GRADE"
	ActivityKindPayment      = "PAYMENT"
	ActivityKindAnnouncement = "ANNOUNCEMENT"
)
