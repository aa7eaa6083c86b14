package period

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"posu-analytics/internal/model"
)

const (
	Today       = "today"
	Yesterday   = "yesterday"
	Last7Days   = "last_7_days"
	Last30Days  = "last_30_days"
	Last3Months = "last_3_months"
	Last6Months = "last_6_months"
	LastYear    = "last_year"
	YearToDate  = "year_to_date"
	Custom      = "custom"
)

var keywords = []string{Today, Yesterday, Last7Days, Last30Days, Last3Months, Last6Months, LastYear, YearToDate, Custom}

func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

func IsKeyword(s string) bool {
	for _, k := range keywords {
		if k == s {
			return true
		}
	}
	return false
}

// InvalidRangeError reports a bad custom range, keyed by the offending input field.
type InvalidRangeError struct {
	Fields map[string]string
}

func (e *InvalidRangeError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, field := range names {
		parts[i] = field + " " + e.Fields[field]
	}
	return "invalid range: " + strings.Join(parts, "; ")
}

type Resolver struct {
	clock Clock
	loc   *time.Location
}

func NewResolver(clock Clock, loc *time.Location) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{clock: clock, loc: loc}
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

func (r *Resolver) Now() time.Time {
	return r.clock.Now().In(r.loc)
}

// Resolve maps a period keyword to a concrete range. Unknown keywords fall back to the last seven days.
func (r *Resolver) Resolve(keyword string, start, end *time.Time) (model.DateRange, error) {
	now := r.Now()
	today := StartOfDay(now)

	switch keyword {
	case Today:
		return model.DateRange{From: today, To: EndOfDay(now)}, nil
	case Yesterday:
		y := today.AddDate(0, 0, -1)
		return model.DateRange{From: y, To: EndOfDay(y)}, nil
	case Last7Days:
		return model.DateRange{From: today.AddDate(0, 0, -6), To: EndOfDay(now)}, nil
	case Last30Days:
		return model.DateRange{From: today.AddDate(0, 0, -29), To: EndOfDay(now)}, nil
	case Last3Months:
		return model.DateRange{From: today.AddDate(0, -3, 0), To: EndOfDay(now)}, nil
	case Last6Months:
		return model.DateRange{From: today.AddDate(0, -6, 0), To: EndOfDay(now)}, nil
	case LastYear:
		return model.DateRange{From: today.AddDate(-1, 0, 0), To: EndOfDay(now)}, nil
	case YearToDate:
		return model.DateRange{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, r.loc), To: now}, nil
	case Custom:
		return r.custom(start, end)
	default:
		return model.DateRange{From: today.AddDate(0, 0, -6), To: EndOfDay(now)}, nil
	}
}

func (r *Resolver) custom(start, end *time.Time) (model.DateRange, error) {
	fields := map[string]string{}
	if start == nil {
		fields["start_date"] = "is required when period is custom"
	}
	if end == nil {
		fields["end_date"] = "is required when period is custom"
	}
	if len(fields) > 0 {
		return model.DateRange{}, &InvalidRangeError{Fields: fields}
	}

	from := StartOfDay(start.In(r.loc))
	to := EndOfDay(end.In(r.loc))
	if to.Before(from) {
		return model.DateRange{}, &InvalidRangeError{Fields: map[string]string{
			"end_date": "must be on or after start_date",
		}}
	}
	return model.DateRange{From: from, To: to}, nil
}

// ParseDate reads a YYYY-MM-DD or RFC3339 value in the business location.
func (r *Resolver) ParseDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, r.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t.In(r.loc), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}
