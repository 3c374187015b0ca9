package services

import (
	"context"
	"errors"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

var errStore = errors.New("store unavailable")

// fakeRepo keeps visits in memory and counts calls by kind
type fakeRepo struct {
	visits    []*domain.Visit
	insertErr error
	readErr   error
	panicOn   bool
	snapshots int
	groups    map[ports.GroupColumn]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{groups: map[ports.GroupColumn]int{}}
}

func (f *fakeRepo) InsertVisit(_ context.Context, v *domain.Visit) error {
	if f.panicOn {
		panic("driver exploded")
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	v.ID = int64(len(f.visits) + 1)
	f.visits = append(f.visits, v)
	return nil
}

func (f *fakeRepo) Ping(context.Context) error { return f.readErr }

func (f *fakeRepo) ReadSnapshot(_ context.Context, fn func(r ports.VisitReader) error) error {
	f.snapshots++
	return fn(f)
}

func (f *fakeRepo) CountAll(context.Context) (int64, error) {
	return int64(len(f.visits)), f.readErr
}

func (f *fakeRepo) CountDistinctIP(context.Context) (int64, error) {
	seen := map[string]bool{}
	for _, v := range f.visits {
		seen[v.IPAddress] = true
	}
	return int64(len(seen)), f.readErr
}

func (f *fakeRepo) CountSince(_ context.Context, d time.Duration) (int64, error) {
	return int64(d / time.Hour), f.readErr
}

func (f *fakeRepo) CountToday(context.Context) (int64, error) { return 1, f.readErr }

func (f *fakeRepo) TopGroups(_ context.Context, column ports.GroupColumn, limit int) ([]domain.GroupCount, error) {
	f.groups[column] = limit
	return []domain.GroupCount{{Label: string(column), Count: int64(limit)}}, f.readErr
}

func (f *fakeRepo) TopIPs(_ context.Context, limit int) ([]domain.TopIP, error) {
	return []domain.TopIP{{IPAddress: "203.0.113.5", Visits: int64(limit)}}, f.readErr
}

func (f *fakeRepo) DailyVisits(_ context.Context, windowDays int) ([]domain.DailyVisits, error) {
	return []domain.DailyVisits{{Date: "2026-10-14", Visits: int64(windowDays)}}, f.readErr
}

func (f *fakeRepo) RecentVisits(_ context.Context, limit int) ([]domain.Visit, error) {
	out := []domain.Visit{}
	for i := len(f.visits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.visits[i])
	}
	return out, f.readErr
}
