package services

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/useragent"
	"github.com/wadjakorntonsri/cv-analytics/pkg/metrics"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

type TrackingService struct {
	repo ports.VisitRepository
	now  func() time.Time
}

func NewTrackingService(repo ports.VisitRepository) *TrackingService {
	return &TrackingService{repo: repo, now: time.Now}
}

// Track records one visit. Failures are logged and reported in the result;
// tracking must never surface as an error on the instrumented page.
func (s *TrackingService) Track(ctx context.Context, req domain.TrackRequest) domain.TrackResult {
	var visit *domain.Visit
	err := BestEffort(ctx, "track visit", func(ctx context.Context) error {
		visit = s.NewVisit(req)
		return s.repo.InsertVisit(ctx, visit)
	})
	if err != nil {
		metrics.RecordTrack(domain.TrackStatusError)
		return domain.TrackResult{Status: domain.TrackStatusError, Message: err.Error()}
	}

	metrics.RecordTrack(domain.TrackStatusTracked)
	ts := visit.VisitedAt
	return domain.TrackResult{Status: domain.TrackStatusTracked, Timestamp: &ts}
}

// NewVisit derives the stored attributes of a visit from request metadata
func (s *TrackingService) NewVisit(req domain.TrackRequest) *domain.Visit {
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = domain.Unknown
	}
	info := useragent.Classify(userAgent)
	language := PrimaryLanguage(req.AcceptLanguage)

	visit := &domain.Visit{
		IPAddress:  ClientIP(req.ForwardedFor, req.RemoteAddr),
		UserAgent:  &userAgent,
		Browser:    info.Browser,
		OS:         info.OS,
		DeviceType: info.DeviceType,
		Language:   &language,
		VisitedAt:  s.now().UTC(),
	}
	if req.Referer != "" {
		referer := req.Referer
		visit.Referer = &referer
	}
	return visit
}

// ClientIP prefers the first X-Forwarded-For entry (set by the proxy),
// falling back to the host part of the socket peer address.
func ClientIP(forwardedFor, remoteAddr string) string {
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return domain.Unknown
}

// PrimaryLanguage keeps the first entry of an Accept-Language header
func PrimaryLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return domain.Unknown
}

var _ ports.TrackingService = (*TrackingService)(nil)
