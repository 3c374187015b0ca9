package sqlrepo

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/timezone"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// nullTime scans timestamps from any of the supported drivers. SQLite hands
// back text for aggregates such as MAX(visited_at); zone-less values are UTC.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (nt *nullTime) Scan(value any) error {
	nt.Time, nt.Valid = time.Time{}, false
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		nt.Time = timezone.AssumeUTC(v)
	case string:
		return nt.parse(v)
	case []byte:
		return nt.parse(string(v))
	case int64:
		nt.Time = time.Unix(v, 0).UTC()
	default:
		return fmt.Errorf("sqlrepo: cannot scan %T into timestamp", value)
	}
	nt.Valid = true
	return nil
}

func (nt *nullTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			nt.Time, nt.Valid = timezone.AssumeUTC(t), true
			return nil
		}
	}
	return fmt.Errorf("sqlrepo: unrecognised timestamp %q", s)
}

func (nt nullTime) ptr() *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
