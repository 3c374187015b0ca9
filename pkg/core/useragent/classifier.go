// Package useragent derives coarse browser, OS and device labels from a
// User-Agent header using ordered substring rules.
//
// Categories overlap (Chrome on iOS also says "safari", Edge also says
// "chrome"), so every rule list is evaluated in order and the first match
// wins. Reordering a list changes which label old and new rows get.
package useragent

import (
	"strings"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
)

// Info is the classification of one User-Agent string
type Info struct {
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"device_type"`
}

type rule struct {
	label string
	match func(ua string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(ua string) bool {
		for _, s := range subs {
			if strings.Contains(ua, s) {
				return true
			}
		}
		return false
	}
}

func containsBut(sub, not string) func(string) bool {
	return func(ua string) bool {
		return strings.Contains(ua, sub) && !strings.Contains(ua, not)
	}
}

var browserRules = []rule{
	{"Edge", containsAny("edg")},
	{"Chrome", containsBut("chrome", "edg")},
	{"Firefox", containsAny("firefox")},
	{"Safari", containsBut("safari", "chrome")},
	{"Opera", containsAny("opera", "opr")},
}

var osRules = []rule{
	{"Windows", containsAny("windows")},
	{"macOS", containsAny("mac", "darwin")},
	{"Linux", containsAny("linux")},
	{"Android", containsAny("android")},
	{"iOS", containsAny("iphone", "ipad")},
}

var isMobile = containsAny("mobile", "android", "iphone", "ipad", "phone", "tablet")

// Classify never fails; unrecognised input yields Unknown/Unknown/Desktop.
func Classify(userAgent string) Info {
	ua := strings.ToLower(userAgent)

	device := domain.DeviceDesktop
	if isMobile(ua) {
		device = domain.DeviceMobile
	}

	return Info{
		Browser:    firstMatch(browserRules, ua),
		OS:         firstMatch(osRules, ua),
		DeviceType: device,
	}
}

func firstMatch(rules []rule, ua string) string {
	for _, r := range rules {
		if r.match(ua) {
			return r.label
		}
	}
	return domain.Unknown
}

// BrowserLabels lists browser labels in precedence order
func BrowserLabels() []string {
	return labels(browserRules)
}

// OSLabels lists OS labels in precedence order
func OSLabels() []string {
	return labels(osRules)
}

func labels(rules []rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.label)
	}
	return out
}
