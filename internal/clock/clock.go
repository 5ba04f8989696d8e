// Package clock resolves calendar-date keys ("YYYY-MM-DD") in a single zone.
//
// Every date string the engines compare is derived from one Day value, computed
// from one instant in one location, so "today" and "yesterday" can never
// disagree about the offset in effect.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the layout of every stored calendar date.
const DateLayout = "2006-01-02"

// Calendar turns instants into local calendar dates.
type Calendar struct {
	now func() time.Time
	loc *time.Location
}

// New returns a calendar reading the given clock in loc. A nil now uses
// time.Now and a nil loc uses time.Local.
func New(now func() time.Time, loc *time.Location) *Calendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{now: now, loc: loc}
}

// Fixed returns a calendar frozen at t, in t's location.
func Fixed(t time.Time) *Calendar {
	return New(func() time.Time { return t }, t.Location())
}

// Location is the calendar's default zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant.
func (c *Calendar) Now() time.Time { return c.now() }

// Day is a snapshot of the calendar at one instant.
type Day struct {
	Now       time.Time
	Today     string
	Yesterday string
	loc       *time.Location
}

// Day snapshots the calendar in loc, falling back to the calendar's zone.
func (c *Calendar) Day(loc *time.Location) Day {
	if loc == nil {
		loc = c.loc
	}
	now := c.now().In(loc)
	return Day{
		Now:       now,
		Today:     DateString(now),
		Yesterday: DateString(AddDays(now, -1)),
		loc:       loc,
	}
}

// Today is shorthand for c.Day(nil).Today.
func (c *Calendar) Today() string { return c.Day(nil).Today }

// Yesterday is shorthand for c.Day(nil).Yesterday.
func (c *Calendar) Yesterday() string { return c.Day(nil).Yesterday }

// Location reports the zone the snapshot was taken in.
func (d Day) Location() *time.Location { return d.loc }

// DaysBack returns the n dates before today, most recent first.
func (d Day) DaysBack(n int) []string {
	dates := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		dates = append(dates, DateString(AddDays(d.Now, -i)))
	}
	return dates
}

// DaysAgo returns the date n days before today.
func (d Day) DaysAgo(n int) string {
	return DateString(AddDays(d.Now, -n))
}

// DateString formats t as a calendar date in t's own location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts t by whole calendar days. Arithmetic is done on the date at
// noon so a DST transition never lands the result on the wrong day.
func AddDays(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 12, 0, 0, 0, t.Location())
}

// ParseDate validates a calendar date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name, using fallback for an empty or
// unknown name.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.Local
	}
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
