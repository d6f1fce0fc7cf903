// Package clock centralizes time for the turn pipeline: the current zoned
// timestamp and every date/time parse or format goes through here, so all
// comparisons happen in one deployment-wide location.
package clock

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock supplies the current timestamp in the deployment's zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a Clock backed by the wall clock, pinned to loc.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c *systemClock) Location() *time.Location { return c.loc }

// Fixed is a Clock frozen at one instant, for tests.
type Fixed struct {
	T time.Time
}

func NewFixed(t time.Time) *Fixed         { return &Fixed{T: t} }
func (f *Fixed) Now() time.Time           { return f.T }
func (f *Fixed) Location() *time.Location { return f.T.Location() }

// ParseDate parses a 2006-01-02 date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// ParseDateTime combines a 2006-01-02 date with a 15:04 time of day in loc.
func ParseDateTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date-time %q %q: %w", date, hhmm, err)
	}
	return t, nil
}

// ValidTime reports whether s is a well-formed 24h HH:MM time of day.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// DateOf truncates an instant to its calendar date in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}
