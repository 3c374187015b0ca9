package domain

import "time"

// AnalyticsSummary holds the headline counters of the dashboard
type AnalyticsSummary struct {
	TotalVisits    int64 `json:"total_visits"`
	UniqueVisitors int64 `json:"unique_visitors"`
	VisitsLast24h  int64 `json:"visits_last_24h"`
	VisitsLast7d   int64 `json:"recent_visits_7d"`
	VisitsLast30d  int64 `json:"visits_last_30d"`
	VisitsToday    int64 `json:"today_visits"`
}

// GroupCount is one bucket of a GROUP BY over a visit column
type GroupCount struct {
	Label string
	Count int64
}

// TopIP is a visitor address ranked by visit count
type TopIP struct {
	IPAddress string
	Visits    int64
	LastVisit *time.Time
}

// DailyVisits is the visit count of one calendar day (UTC)
type DailyVisits struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Visits int64  `json:"visits"`
}

// AnalyticsReport is everything GET /api/analytics renders
type AnalyticsReport struct {
	Summary     AnalyticsSummary
	TopBrowsers []GroupCount
	TopIPs      []TopIP
	Devices     []GroupCount
	TopOS       []GroupCount
	Daily       []DailyVisits
}
