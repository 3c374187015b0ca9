package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
)

// GroupColumn names a visit column that aggregate reads may group by
type GroupColumn string

const (
	GroupByBrowser  GroupColumn = "browser"
	GroupByOS       GroupColumn = "os"
	GroupByDevice   GroupColumn = "device_type"
	GroupByLanguage GroupColumn = "language"
)

// VisitReader defines the aggregate read operations over stored visits
type VisitReader interface {
	CountAll(ctx context.Context) (int64, error)
	CountDistinctIP(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, d time.Duration) (int64, error)
	CountToday(ctx context.Context) (int64, error)
	TopGroups(ctx context.Context, column GroupColumn, limit int) ([]domain.GroupCount, error)
	TopIPs(ctx context.Context, limit int) ([]domain.TopIP, error)
	DailyVisits(ctx context.Context, windowDays int) ([]domain.DailyVisits, error)
	RecentVisits(ctx context.Context, limit int) ([]domain.Visit, error)
}

// VisitRepository defines storage operations for visits
type VisitRepository interface {
	VisitReader

	InsertVisit(ctx context.Context, visit *domain.Visit) error
	Ping(ctx context.Context) error

	// ReadSnapshot runs fn against a single read-only transaction
	ReadSnapshot(ctx context.Context, fn func(r VisitReader) error) error
}

// TrackingService records visits; it reports failures in the result and never returns an error
type TrackingService interface {
	Track(ctx context.Context, req domain.TrackRequest) domain.TrackResult
}

// AnalyticsService defines the read side used by the dashboard
type AnalyticsService interface {
	Report(ctx context.Context) (*domain.AnalyticsReport, error)
	Recent(ctx context.Context, limit int) ([]domain.Visit, error)
	Health(ctx context.Context) error
}
