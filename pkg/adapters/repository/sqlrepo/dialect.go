package sqlrepo

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sqliteTimeLayout keeps stored text comparable with datetime('now')
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

type dialect struct {
	name   string
	driver string

	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool

	// dayExpr renders visited_at as YYYY-MM-DD
	dayExpr string

	schema []string

	// snapshots reports whether ReadSnapshot opens a transaction
	snapshots    bool
	snapshotOpts *sql.TxOptions

	timeArg func(t time.Time) any
}

var postgresDialect = &dialect{
	name:     "postgres",
	driver:   "postgres",
	numbered: true,
	dayExpr:  "TO_CHAR(visited_at, 'YYYY-MM-DD')",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS cv_visits (
			id SERIAL PRIMARY KEY,
			ip_address VARCHAR(45) NOT NULL,
			user_agent TEXT,
			browser VARCHAR(100),
			os VARCHAR(100),
			device_type VARCHAR(20),
			referer TEXT,
			language VARCHAR(50),
			visited_at TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC'),
			created_at TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC')
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cv_visits_ip ON cv_visits(ip_address)`,
		`CREATE INDEX IF NOT EXISTS idx_cv_visits_visited_at ON cv_visits(visited_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_cv_visits_device ON cv_visits(device_type)`,
		`CREATE INDEX IF NOT EXISTS idx_cv_visits_browser ON cv_visits(browser)`,
		`CREATE OR REPLACE VIEW cv_analytics_summary AS
		SELECT
			COUNT(*) AS total_visits,
			COUNT(DISTINCT ip_address) AS unique_visitors,
			COUNT(*) FILTER (WHERE visited_at > (NOW() AT TIME ZONE 'UTC') - INTERVAL '1 day') AS visits_last_24h,
			COUNT(*) FILTER (WHERE visited_at > (NOW() AT TIME ZONE 'UTC') - INTERVAL '7 days') AS visits_last_7d,
			COUNT(*) FILTER (WHERE visited_at > (NOW() AT TIME ZONE 'UTC') - INTERVAL '30 days') AS visits_last_30d,
			COUNT(*) FILTER (WHERE visited_at::date = (NOW() AT TIME ZONE 'UTC')::date) AS visits_today
		FROM cv_visits`,
	},
	snapshots:    true,
	snapshotOpts: &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
	timeArg:      func(t time.Time) any { return t.UTC() },
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS cv_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address VARCHAR(45) NOT NULL,
		user_agent TEXT,
		browser VARCHAR(100),
		os VARCHAR(100),
		device_type VARCHAR(20),
		referer TEXT,
		language VARCHAR(50),
		visited_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cv_visits_ip ON cv_visits(ip_address)`,
	`CREATE INDEX IF NOT EXISTS idx_cv_visits_visited_at ON cv_visits(visited_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_cv_visits_device ON cv_visits(device_type)`,
	`CREATE INDEX IF NOT EXISTS idx_cv_visits_browser ON cv_visits(browser)`,
	`CREATE VIEW IF NOT EXISTS cv_analytics_summary AS
	SELECT
		COUNT(*) AS total_visits,
		COUNT(DISTINCT ip_address) AS unique_visitors,
		COUNT(*) FILTER (WHERE visited_at > datetime('now', '-1 day')) AS visits_last_24h,
		COUNT(*) FILTER (WHERE visited_at > datetime('now', '-7 days')) AS visits_last_7d,
		COUNT(*) FILTER (WHERE visited_at > datetime('now', '-30 days')) AS visits_last_30d,
		COUNT(*) FILTER (WHERE date(visited_at) = date('now')) AS visits_today
	FROM cv_visits`,
}

func sqliteTimeArg(t time.Time) any {
	return t.UTC().Format(sqliteTimeLayout)
}

var sqliteDialect = &dialect{
	name:      "sqlite",
	driver:    "sqlite",
	dayExpr:   "strftime('%Y-%m-%d', visited_at)",
	schema:    sqliteSchema,
	snapshots: true,
	timeArg:   sqliteTimeArg,
}

// libsqlDialect speaks SQLite SQL to a remote Turso/libSQL server
var libsqlDialect = &dialect{
	name:    "libsql",
	driver:  "libsql",
	dayExpr: "strftime('%Y-%m-%d', visited_at)",
	schema:  sqliteSchema,
	timeArg: sqliteTimeArg,
}

func dialectFor(driver, dsn string) (*dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return postgresDialect, nil
	case "sqlite", "sqlite3":
		return sqliteDialect, nil
	case "libsql", "turso":
		return libsqlDialect, nil
	case "":
		return detectDialect(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (supported: postgres, sqlite, libsql)", driver)
	}
}

func detectDialect(dsn string) *dialect {
	switch {
	case strings.Contains(dsn, "libsql://") || strings.Contains(dsn, "wss://"):
		return libsqlDialect
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.HasPrefix(dsn, "host="):
		return postgresDialect
	default:
		return sqliteDialect
	}
}

// rebind rewrites ? placeholders for dialects with numbered parameters.
// Queries in this package never contain a literal '?'.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
