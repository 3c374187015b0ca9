package handler

import (
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/timezone"
)

// Wire shapes of the analytics endpoints. Timestamps leave here in the
// display zone; lists are never null.

type browserCount struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type deviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int64  `json:"count"`
}

type osCount struct {
	OS    string `json:"os"`
	Count int64  `json:"count"`
}

type topIPResponse struct {
	IPAddress string     `json:"ip_address"`
	Visits    int64      `json:"visits"`
	LastVisit *time.Time `json:"last_visit"`
}

type analyticsResponse struct {
	Summary     domain.AnalyticsSummary `json:"summary"`
	TopBrowsers []browserCount          `json:"top_browsers"`
	TopIPs      []topIPResponse         `json:"top_ips"`
	DeviceStats []deviceCount           `json:"device_stats"`
	OSStats     []osCount               `json:"os_stats"`
	DailyVisits []domain.DailyVisits    `json:"daily_visits"`
}

type recentVisit struct {
	IPAddress  string    `json:"ip_address"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	DeviceType string    `json:"device_type"`
	Referer    *string   `json:"referer"`
	Language   *string   `json:"language"`
	VisitedAt  time.Time `json:"visited_at"`
}

type recentResponse struct {
	Visits []recentVisit `json:"visits"`
}

func newAnalyticsResponse(rep *domain.AnalyticsReport) analyticsResponse {
	resp := analyticsResponse{
		Summary:     rep.Summary,
		TopBrowsers: make([]browserCount, 0, len(rep.TopBrowsers)),
		TopIPs:      make([]topIPResponse, 0, len(rep.TopIPs)),
		DeviceStats: make([]deviceCount, 0, len(rep.Devices)),
		OSStats:     make([]osCount, 0, len(rep.TopOS)),
		DailyVisits: make([]domain.DailyVisits, 0, len(rep.Daily)),
	}
	for _, g := range rep.TopBrowsers {
		resp.TopBrowsers = append(resp.TopBrowsers, browserCount{Browser: g.Label, Count: g.Count})
	}
	for _, ip := range rep.TopIPs {
		resp.TopIPs = append(resp.TopIPs, topIPResponse{
			IPAddress: ip.IPAddress,
			Visits:    ip.Visits,
			LastVisit: timezone.ToDisplay(ip.LastVisit),
		})
	}
	for _, g := range rep.Devices {
		resp.DeviceStats = append(resp.DeviceStats, deviceCount{DeviceType: g.Label, Count: g.Count})
	}
	for _, g := range rep.TopOS {
		resp.OSStats = append(resp.OSStats, osCount{OS: g.Label, Count: g.Count})
	}
	resp.DailyVisits = append(resp.DailyVisits, rep.Daily...)
	return resp
}

func newRecentResponse(visits []domain.Visit) recentResponse {
	resp := recentResponse{Visits: make([]recentVisit, 0, len(visits))}
	for _, v := range visits {
		resp.Visits = append(resp.Visits, recentVisit{
			IPAddress:  v.IPAddress,
			Browser:    v.Browser,
			OS:         v.OS,
			DeviceType: v.DeviceType,
			Referer:    v.Referer,
			Language:   v.Language,
			VisitedAt:  timezone.Display(v.VisitedAt),
		})
	}
	return resp
}
