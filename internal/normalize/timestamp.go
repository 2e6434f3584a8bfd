package normalize

import (
	"strings"
	"time"
)

// timestampLayouts is the ordered fallback chain for raw timestamps.
// Order matters: a raw string can partially satisfy more than one
// layout, and the first successful parse in this order wins. New
// layouts go at the end unless they must shadow an existing one.
var timestampLayouts = []string{
	time.RFC3339,             // 2024-05-17T10:00:00+08:00 (offset or Z)
	"01/02/2006 03:04:05 PM", // US month/day/year with AM/PM
	"2006-01-02 15:04:05",    // ISO without offset, assumed UTC
	"20060102T150405Z",       // compact ISO, always UTC
	"2006-01-02",             // date only
}

// Timestamp parses a raw timestamp value into a canonical UTC instant.
// Missing or empty input returns nil immediately without attempting any
// layout. If every layout fails the result is nil as well: bad
// timestamps become absent data rather than aborting the pipeline, and
// the null propagates to the reconciled output for later auditing.
func Timestamp(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return utc(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return utc(*t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return utc(parsed)
			}
		}
		return nil
	default:
		return nil
	}
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
