package domain

import "time"

// Device classes stored in device_type
const (
	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
)

// Unknown is stored for any classifier field or header that could not be derived
const Unknown = "Unknown"

// Visit represents one tracked load of the CV page
type Visit struct {
	ID         int64     `json:"id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  *string   `json:"user_agent"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	DeviceType string    `json:"device_type"`
	Referer    *string   `json:"referer"`
	Language   *string   `json:"language"`
	VisitedAt  time.Time `json:"visited_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TrackRequest carries the request metadata a visit is derived from
type TrackRequest struct {
	ForwardedFor   string
	RemoteAddr     string
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// Track statuses
const (
	TrackStatusTracked = "tracked"
	TrackStatusError   = "error"
)

// TrackResult is always returned to the page, even when recording failed
type TrackResult struct {
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Tracked reports whether the visit reached the store
func (r TrackResult) Tracked() bool {
	return r.Status == TrackStatusTracked
}
