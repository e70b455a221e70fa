package shift

import (
	"time"
	_ "time/tzdata" // academy clock must resolve on hosts without zoneinfo
)

const (
	DefaultTimezone        = "Asia/Jerusalem"
	DefaultFreshnessWindow = 2 * time.Hour
	DefaultFutureTolerance = 60 * time.Second
	DefaultReviewThreshold = 12 * time.Hour
	DefaultMaxBatchSize    = 10
)

// Policy holds the academy's attendance rules.
type Policy struct {
	// Location is the academy's wall clock, used for the saturday and closing hour rules
	Location *time.Location

	// FreshnessWindow is the maximum age of a clock action; older ones are expired
	FreshnessWindow time.Duration

	// FutureTolerance is how far ahead of server time a client timestamp may be
	FutureTolerance time.Duration

	// ReviewThreshold flags clocked-out shifts longer than this
	ReviewThreshold time.Duration

	// MaxBatchSize caps the number of actions processed per request
	MaxBatchSize int

	// ExcludedTrainerIDs self-manage their hours and are skipped by the sweep
	ExcludedTrainerIDs map[string]struct{}
}

// DefaultPolicy returns the academy's standing rules in the given location.
func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		Location:           loc,
		FreshnessWindow:    DefaultFreshnessWindow,
		FutureTolerance:    DefaultFutureTolerance,
		ReviewThreshold:    DefaultReviewThreshold,
		MaxBatchSize:       DefaultMaxBatchSize,
		ExcludedTrainerIDs: map[string]struct{}{},
	}
}

// ExcludedIDs returns the allow-list as a slice for query parameters.
func (p Policy) ExcludedIDs() []string {
	ids := make([]string, 0, len(p.ExcludedTrainerIDs))
	for id := range p.ExcludedTrainerIDs {
		ids = append(ids, id)
	}
	return ids
}

// NewTrainerSet builds an allow-list from ids, ignoring blanks.
func NewTrainerSet(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// clientLayouts are tried in order. Layouts without an offset are read in the policy location.
var clientLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseClientTimestamp parses an ISO-8601 client timestamp.
func ParseClientTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range clientLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveTimestamp decides which time an action is recorded at.
//
// Unparseable timestamps and timestamps more than FutureTolerance ahead of
// now resolve to now. Timestamps more than FreshnessWindow before now are
// rejected with ErrActionExpired; exactly FreshnessWindow is still accepted.
func ResolveTimestamp(raw string, now time.Time, p Policy) (time.Time, error) {
	parsed, ok := ParseClientTimestamp(raw, p.Location)
	if !ok {
		return now, nil
	}
	if parsed.Sub(now) > p.FutureTolerance {
		return now, nil
	}
	if now.Sub(parsed) > p.FreshnessWindow {
		return time.Time{}, ErrActionExpired
	}
	return parsed, nil
}

// LocalClock decomposes t on the academy wall clock.
func (p Policy) LocalClock(t time.Time) (weekday time.Weekday, hour, minute int) {
	local := t.In(p.Location)
	return local.Weekday(), local.Hour(), local.Minute()
}

// IsSaturday reports whether t falls on saturday on the academy wall clock.
func (p Policy) IsSaturday(t time.Time) bool {
	weekday, _, _ := p.LocalClock(t)
	return weekday == time.Saturday
}

// ClosingHour returns the hour after which open shifts are auto-ended.
// ok is false on saturday, when nothing is auto-ended.
func ClosingHour(weekday time.Weekday) (hour int, ok bool) {
	switch weekday {
	case time.Saturday:
		return 0, false
	case time.Friday:
		return 15, true
	default:
		return 20, true
	}
}

// ShouldFlag reports whether a shift of the given length needs review.
func (p Policy) ShouldFlag(d time.Duration) bool {
	return d > p.ReviewThreshold
}
