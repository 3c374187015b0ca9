// Package sqlrepo is the visit store: it owns the cv_visits schema and runs
// every insert and aggregate read over database/sql.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"                                // Postgres driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
	"github.com/wadjakorntonsri/cv-analytics/pkg/metrics"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

// MaxRecentLimit caps RecentVisits
const MaxRecentLimit = 100

// ErrUnknownColumn is returned by TopGroups for columns that cannot be grouped
var ErrUnknownColumn = errors.New("sqlrepo: unknown group column")

var groupColumns = map[ports.GroupColumn]bool{
	ports.GroupByBrowser:  true,
	ports.GroupByOS:       true,
	ports.GroupByDevice:   true,
	ports.GroupByLanguage: true,
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Options struct {
	// Driver is postgres, sqlite or libsql; empty detects it from DSN
	Driver string
	DSN    string

	MinConns int
	MaxConns int

	// Now defaults to time.Now
	Now func() time.Time
}

type SQLRepository struct {
	db      *sql.DB
	q       querier
	dialect *dialect
	now     func() time.Time
}

func NewSQLRepository(ctx context.Context, opts Options) (*SQLRepository, error) {
	d, err := dialectFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	configurePool(db, d, opts)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logging.Info().Str("dialect", d.name).Msg("Database pool created")
	return &SQLRepository{db: db, q: db, dialect: d, now: now}, nil
}

func configurePool(db *sql.DB, d *dialect, opts Options) {
	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = config.PoolMaxConns
	}
	minConns := opts.MinConns
	if minConns <= 0 {
		minConns = config.PoolMinConns
	}
	// SQLite allows a single writer and :memory: databases live per connection
	if d == sqliteDialect {
		maxConns, minConns = 1, 1
	}
	db.SetMaxOpenConns(maxConns)
	// database/sql has no minimum; idle connections are kept so the warm
	// connection opened by Ping stays in the pool
	db.SetMaxIdleConns(max(minConns, maxConns))
	db.SetConnMaxIdleTime(0)
}

func (r *SQLRepository) Dialect() string {
	return r.dialect.name
}

func (r *SQLRepository) Close() error {
	logging.Info().Str("dialect", r.dialect.name).Msg("Database pool closed")
	return r.db.Close()
}

// InitSchema creates the table, indexes and summary view if they are
// missing. Every statement is attempted; failures are logged and joined.
func (r *SQLRepository) InitSchema(ctx context.Context) error {
	var errs []error
	for _, stmt := range r.dialect.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			logging.Warn().Err(err).Str("dialect", r.dialect.name).Msg("Schema statement failed")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("init schema: %w", errors.Join(errs...))
	}
	logging.Info().Str("dialect", r.dialect.name).Msg("Database schema initialized")
	return nil
}

func (r *SQLRepository) observe(op string, start time.Time, err *error) {
	metrics.RecordDBQuery(op, time.Since(start), *err)
}

func (r *SQLRepository) InsertVisit(ctx context.Context, visit *domain.Visit) (err error) {
	defer r.observe("insert_visit", time.Now(), &err)

	now := r.now().UTC()
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = now
	}
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = now
	}

	query := r.dialect.rebind(`INSERT INTO cv_visits (
		ip_address, user_agent, browser, os, device_type, referer, language, visited_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err = r.q.QueryRowContext(ctx, query,
		visit.IPAddress,
		nullString(visit.UserAgent),
		visit.Browser,
		visit.OS,
		visit.DeviceType,
		nullString(visit.Referer),
		nullString(visit.Language),
		r.dialect.timeArg(visit.VisitedAt),
		r.dialect.timeArg(visit.CreatedAt),
	).Scan(&visit.ID)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (r *SQLRepository) count(ctx context.Context, op, query string, args ...any) (n int64, err error) {
	defer r.observe(op, time.Now(), &err)

	if err = r.q.QueryRowContext(ctx, r.dialect.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *SQLRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, "count_all", `SELECT COUNT(*) FROM cv_visits`)
}

func (r *SQLRepository) CountDistinctIP(ctx context.Context) (int64, error) {
	return r.count(ctx, "count_distinct_ip", `SELECT COUNT(DISTINCT ip_address) FROM cv_visits`)
}

func (r *SQLRepository) CountSince(ctx context.Context, d time.Duration) (int64, error) {
	since := r.now().UTC().Add(-d)
	return r.count(ctx, "count_since", `SELECT COUNT(*) FROM cv_visits WHERE visited_at > ?`, r.dialect.timeArg(since))
}

// CountToday counts visits of the current UTC calendar day
func (r *SQLRepository) CountToday(ctx context.Context) (int64, error) {
	start := r.now().UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)
	return r.count(ctx, "count_today",
		`SELECT COUNT(*) FROM cv_visits WHERE visited_at >= ? AND visited_at < ?`,
		r.dialect.timeArg(start), r.dialect.timeArg(end))
}

// TopGroups returns visit counts per value of column, largest first. A
// limit <= 0 returns every group. NULL values are reported as Unknown.
func (r *SQLRepository) TopGroups(ctx context.Context, column ports.GroupColumn, limit int) (groups []domain.GroupCount, err error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	defer r.observe("top_"+string(column), time.Now(), &err)

	// column is whitelisted above
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) AS count FROM cv_visits GROUP BY %[1]s ORDER BY count DESC, %[1]s`, column)
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	groups = []domain.GroupCount{}
	for rows.Next() {
		var label sql.NullString
		var g domain.GroupCount
		if err := rows.Scan(&label, &g.Count); err != nil {
			return nil, err
		}
		g.Label = domain.Unknown
		if label.Valid {
			g.Label = label.String
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *SQLRepository) TopIPs(ctx context.Context, limit int) (ips []domain.TopIP, err error) {
	defer r.observe("top_ips", time.Now(), &err)

	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`
		SELECT ip_address, COUNT(*) AS visits, MAX(visited_at) AS last_visit
		FROM cv_visits
		GROUP BY ip_address
		ORDER BY visits DESC, ip_address
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("top ips: %w", err)
	}
	defer rows.Close()

	ips = []domain.TopIP{}
	for rows.Next() {
		var ip domain.TopIP
		var last nullTime
		if err := rows.Scan(&ip.IPAddress, &ip.Visits, &last); err != nil {
			return nil, err
		}
		ip.LastVisit = last.ptr()
		ips = append(ips, ip)
	}
	return ips, rows.Err()
}

// DailyVisits buckets the trailing windowDays by UTC date, newest first
func (r *SQLRepository) DailyVisits(ctx context.Context, windowDays int) (days []domain.DailyVisits, err error) {
	defer r.observe("daily_visits", time.Now(), &err)

	since := r.now().UTC().AddDate(0, 0, -windowDays)
	query := fmt.Sprintf(`
		SELECT %s AS visit_date, COUNT(*) AS visits
		FROM cv_visits
		WHERE visited_at > ?
		GROUP BY visit_date
		ORDER BY visit_date DESC`, r.dialect.dayExpr)

	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(query), r.dialect.timeArg(since))
	if err != nil {
		return nil, fmt.Errorf("daily visits: %w", err)
	}
	defer rows.Close()

	days = []domain.DailyVisits{}
	for rows.Next() {
		var dv domain.DailyVisits
		if err := rows.Scan(&dv.Date, &dv.Visits); err != nil {
			return nil, err
		}
		days = append(days, dv)
	}
	return days, rows.Err()
}

const visitColumns = `id, ip_address, user_agent, browser, os, device_type, referer, language, visited_at, created_at`

// RecentVisits returns the newest visits. limit is clamped to
// [0, MaxRecentLimit]; 0 yields an empty list.
func (r *SQLRepository) RecentVisits(ctx context.Context, limit int) ([]domain.Visit, error) {
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	if limit <= 0 {
		return []domain.Visit{}, nil
	}
	return r.listVisits(ctx, "recent_visits",
		`SELECT `+visitColumns+` FROM cv_visits ORDER BY visited_at DESC, id DESC LIMIT ?`, limit)
}

// Dump returns every stored visit in id order, for export
func (r *SQLRepository) Dump(ctx context.Context) ([]domain.Visit, error) {
	return r.listVisits(ctx, "dump", `SELECT `+visitColumns+` FROM cv_visits ORDER BY id`)
}

func (r *SQLRepository) listVisits(ctx context.Context, op, query string, args ...any) (visits []domain.Visit, err error) {
	defer r.observe(op, time.Now(), &err)

	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	visits = []domain.Visit{}
	for rows.Next() {
		var v domain.Visit
		var userAgent, referer, language sql.NullString
		var browser, osName, device sql.NullString
		var visitedAt, createdAt nullTime
		if err := rows.Scan(&v.ID, &v.IPAddress, &userAgent, &browser, &osName, &device,
			&referer, &language, &visitedAt, &createdAt); err != nil {
			return nil, err
		}
		v.UserAgent = stringPtr(userAgent)
		v.Referer = stringPtr(referer)
		v.Language = stringPtr(language)
		v.Browser = orUnknown(browser)
		v.OS = orUnknown(osName)
		v.DeviceType = device.String
		if v.DeviceType == "" {
			v.DeviceType = domain.DeviceDesktop
		}
		v.VisitedAt = visitedAt.Time
		v.CreatedAt = createdAt.Time
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func orUnknown(ns sql.NullString) string {
	if !ns.Valid || ns.String == "" {
		return domain.Unknown
	}
	return ns.String
}

// SummaryView reads the precomputed cv_analytics_summary view
func (r *SQLRepository) SummaryView(ctx context.Context) (s *domain.AnalyticsSummary, err error) {
	defer r.observe("summary_view", time.Now(), &err)

	s = &domain.AnalyticsSummary{}
	err = r.q.QueryRowContext(ctx, `
		SELECT total_visits, unique_visitors, visits_last_24h, visits_last_7d, visits_last_30d, visits_today
		FROM cv_analytics_summary`).Scan(
		&s.TotalVisits, &s.UniqueVisitors, &s.VisitsLast24h, &s.VisitsLast7d, &s.VisitsLast30d, &s.VisitsToday,
	)
	if err != nil {
		return nil, fmt.Errorf("summary view: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) Ping(ctx context.Context) (err error) {
	defer r.observe("ping", time.Now(), &err)

	var one int
	if err = r.q.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ReadSnapshot runs fn with a reader bound to one read-only transaction.
// Dialects without transaction support run fn directly on the pool.
func (r *SQLRepository) ReadSnapshot(ctx context.Context, fn func(ports.VisitReader) error) error {
	if !r.dialect.snapshots {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, r.dialect.snapshotOpts)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	bound := *r
	bound.q = tx
	if err := fn(&bound); err != nil {
		return err
	}
	return tx.Commit()
}

// Ensure interface compliance
var _ ports.VisitRepository = (*SQLRepository)(nil)
