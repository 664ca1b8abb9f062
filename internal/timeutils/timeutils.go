// Package timeutils normalizes the date/time strings found in statement
// exports into a single comparable representation. Source documents carry
// naive local civil times without offsets, so every layout parses in UTC and
// comparisons stay consistent across platforms.
package timeutils

import (
	"regexp"
	"strings"
	"time"

	"ledgerunify/internal/ledgererror"
)

// Layout constants for the formats that show up in statement exports.
const (
	LayoutISO        = "2006-01-02"
	LayoutISOFull    = "2006-01-02 15:04:05"
	LayoutISOMinute  = "2006-01-02 15:04"
	LayoutSlash      = "2006/01/02"
	LayoutSlashFull  = "2006/01/02 15:04:05"
	LayoutEuropean   = "02.01.2006"
	LayoutUS         = "01/02/2006"
	LayoutCNDate     = "2006年01月02日"
	LayoutCNDateTime = "2006年01月02日 15:04:05"
)

// GenericLayouts is the fallback ladder tried after any platform-specific
// hints. Order matters: the first successful parse wins, so layouts with a
// time component come before their date-only variants.
var GenericLayouts = []string{
	time.RFC3339,
	LayoutISOFull,
	LayoutISOMinute,
	LayoutISO,
	LayoutSlashFull,
	LayoutSlash,
	LayoutCNDateTime,
	LayoutCNDate,
	"2006年1月2日 15:04:05",
	"2006年1月2日",
	"02/01/2006 15:04:05",
	"02/01/2006",
	LayoutUS,
	LayoutEuropean,
	"02-01-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanTimestampString trims and collapses whitespace in a raw timestamp.
func CleanTimestampString(raw string) string {
	raw = strings.TrimSpace(raw)
	return whitespaceRe.ReplaceAllString(raw, " ")
}

// ParseTimestamp parses a raw timestamp string, trying the platform-specific
// hint layouts first and the generic ladder last. Returns TimeParseError when
// every layout fails. There is no ambiguity resolution beyond layout order.
func ParseTimestamp(raw string, hints []string) (time.Time, error) {
	cleaned := CleanTimestampString(raw)
	if cleaned == "" {
		return time.Time{}, &ledgererror.TimeParseError{Raw: raw}
	}

	tried := 0
	for _, layout := range hints {
		tried++
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	for _, layout := range GenericLayouts {
		tried++
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &ledgererror.TimeParseError{Raw: raw, Layouts: tried}
}

// SameCalendarDay reports whether two timestamps fall on the same civil day.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WithinTolerance reports whether two timestamps are at most tolerance apart.
func WithinTolerance(a, b time.Time, tolerance time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
