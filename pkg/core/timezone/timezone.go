// Package timezone converts stored UTC timestamps to the dashboard's display zone.
package timezone

import "time"

// DisplayOffset is the fixed display offset (Venezuela, no DST)
const DisplayOffset = -4 * time.Hour

// DisplayZone is a fixed zone so no tzdata lookup is needed
var DisplayZone = time.FixedZone("UTC-4", int(DisplayOffset/time.Second))

// Display returns t in the display zone. The zero time is left unchanged.
func Display(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(DisplayZone)
}

// ToDisplay is Display for nullable columns; nil stays nil.
func ToDisplay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Display(*t)
	return &d
}

// AssumeUTC reinterprets a wall clock read without zone information as UTC.
func AssumeUTC(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	_, offset := t.Zone()
	if offset == 0 {
		return t.UTC()
	}
	return t
}
