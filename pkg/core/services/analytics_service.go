package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

const (
	TopBrowsersLimit   = 5
	TopIPsLimit        = 10
	TopOSLimit         = 5
	DailyWindowDays    = 30
	DefaultRecentLimit = 20
)

type AnalyticsService struct {
	repo     ports.VisitRepository
	snapshot bool
}

// NewAnalyticsService builds the read side. With snapshot set, a report is
// read inside one read-only transaction instead of independent queries.
func NewAnalyticsService(repo ports.VisitRepository, snapshot bool) *AnalyticsService {
	return &AnalyticsService{repo: repo, snapshot: snapshot}
}

func (s *AnalyticsService) Report(ctx context.Context) (*domain.AnalyticsReport, error) {
	if !s.snapshot {
		return buildReport(ctx, s.repo)
	}

	var report *domain.AnalyticsReport
	err := s.repo.ReadSnapshot(ctx, func(r ports.VisitReader) error {
		var err error
		report, err = buildReport(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func buildReport(ctx context.Context, r ports.VisitReader) (*domain.AnalyticsReport, error) {
	summary, err := buildSummary(ctx, r)
	if err != nil {
		return nil, err
	}

	report := &domain.AnalyticsReport{Summary: *summary}

	if report.TopBrowsers, err = r.TopGroups(ctx, ports.GroupByBrowser, TopBrowsersLimit); err != nil {
		return nil, err
	}
	if report.TopIPs, err = r.TopIPs(ctx, TopIPsLimit); err != nil {
		return nil, err
	}
	if report.Devices, err = r.TopGroups(ctx, ports.GroupByDevice, 0); err != nil {
		return nil, err
	}
	if report.TopOS, err = r.TopGroups(ctx, ports.GroupByOS, TopOSLimit); err != nil {
		return nil, err
	}
	if report.Daily, err = r.DailyVisits(ctx, DailyWindowDays); err != nil {
		return nil, err
	}
	return report, nil
}

func buildSummary(ctx context.Context, r ports.VisitReader) (*domain.AnalyticsSummary, error) {
	var s domain.AnalyticsSummary
	var err error

	if s.TotalVisits, err = r.CountAll(ctx); err != nil {
		return nil, err
	}
	if s.UniqueVisitors, err = r.CountDistinctIP(ctx); err != nil {
		return nil, err
	}
	if s.VisitsLast24h, err = r.CountSince(ctx, 24*time.Hour); err != nil {
		return nil, err
	}
	if s.VisitsLast7d, err = r.CountSince(ctx, 7*24*time.Hour); err != nil {
		return nil, err
	}
	if s.VisitsLast30d, err = r.CountSince(ctx, 30*24*time.Hour); err != nil {
		return nil, err
	}
	if s.VisitsToday, err = r.CountToday(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// Recent returns the newest visits; the store clamps limit
func (s *AnalyticsService) Recent(ctx context.Context, limit int) ([]domain.Visit, error) {
	return s.repo.RecentVisits(ctx, limit)
}

func (s *AnalyticsService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)
