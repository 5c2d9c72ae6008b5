// Package timeconv converts civil dates and wall-clock times between IANA
// time zones.  Availability windows are stored as a weekday plus wall-clock
// range in the mentor's zone; this package turns them into absolute instants
// and renders them in the viewer's zone.
//
// DST handling is delegated to time.Date: a wall time that falls inside a
// spring-forward gap is normalized forward, and an ambiguous fall-back time
// resolves to its first occurrence.
package timeconv

import (
	"strings"
	"time"
	_ "time/tzdata" // embed the zone database so validity does not depend on the host

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
)

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Weekday reports the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.utcNoon().Before(o.utcNoon())
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string { return d.utcNoon().Format("2006-01-02") }

// Compact formats d as YYYYMMDD.
func (d Date) Compact() string { return d.utcNoon().Format("20060102") }

func (d Date) utcNoon() time.Time { return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC) }

// DaysBetween returns the number of days from a to b (negative when b < a).
func DaysBetween(a, b Date) int {
	return int(b.utcNoon().Sub(a.utcNoon()).Hours() / 24)
}

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// String formats c as HH:MM.
func (c Clock) String() string {
	return time.Date(2000, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// LoadZone resolves an IANA zone name.  Empty names and "Local" are rejected
// because they would silently depend on the server's configuration.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("time zone is required")
	}
	if name == "Local" {
		return nil, apperr.Validationf("time zone %q is not allowed", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Validationf("unknown time zone %q", name)
	}
	return loc, nil
}

// ParseDate parses YYYY-MM-DD.  RFC3339 timestamps are accepted as well and
// keep only their date part as written.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, apperr.Validationf("invalid date %q, want YYYY-MM-DD", s)
}

// ParseClock parses HH:MM in 24 hour notation.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, apperr.Validationf("invalid time %q, want HH:MM", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLocal parses value as a wall-clock timestamp in loc.  A value that
// carries an explicit offset (RFC3339) is taken as an absolute instant.
func ParseLocal(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Validationf("timestamp is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validationf("invalid timestamp %q", value)
}

// At returns the instant of wall clock c on date d in loc.
func At(d Date, c Clock, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}

// Convert returns the wall-clock date and time in zone `to` that corresponds
// to (d, c) in zone `from`.  The conversion is pure: the same tuple always
// yields the same result.  Converting back with the zones swapped restores
// the original value except when (d, c) lies in a DST gap of `from`, where
// time.Date has already moved it forward.
func Convert(d Date, c Clock, from, to string) (Date, Clock, error) {
	src, err := LoadZone(from)
	if err != nil {
		return Date{}, Clock{}, err
	}
	dst, err := LoadZone(to)
	if err != nil {
		return Date{}, Clock{}, err
	}
	t := At(d, c, src).In(dst)
	return DateOf(t), Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}
