package services

import "time"

// Calendar maps instants to calendar days in one fixed zone. A day is encoded
// as UTC midnight of that date so day arithmetic never crosses a DST change.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendar(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

func (c *Calendar) Now() time.Time {
	return c.now()
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Day truncates t to its calendar day in the canonical zone.
func (c *Calendar) Day(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Calendar) Today() time.Time {
	return c.Day(c.now())
}
