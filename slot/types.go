package slot

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"doctor-booking/apperr"

	"github.com/google/uuid"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Slot is a single bookable instant of a doctor's availability.
type Slot struct {
	ID       uuid.UUID `json:"id"`
	DoctorID uuid.UUID `json:"doctorId"`
	Time     time.Time `json:"time"`
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock accepts "HH:MM" and, for browser time inputs with seconds, "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		t, err = time.Parse(time.TimeOnly, s)
	}
	if err != nil {
		return Clock{}, apperr.Validation(fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// NormalizeTimes parses, dedupes and sorts times of day.
func NormalizeTimes(times []string) ([]Clock, error) {
	clocks := make([]Clock, 0, len(times))
	for _, raw := range times {
		c, err := ParseClock(raw)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(clocks, c) {
			clocks = append(clocks, c)
		}
	}
	slices.SortFunc(clocks, func(a, b Clock) int {
		return (a.Hour*60 + a.Minute) - (b.Hour*60 + b.Minute)
	})
	return clocks, nil
}

// Compose combines a calendar date with each time of day in loc and returns
// the resulting instants in ascending order. A nil loc means UTC.
func Compose(date string, times []string, loc *time.Location) ([]time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	clocks, err := NormalizeTimes(times)
	if err != nil {
		return nil, err
	}
	if len(clocks) == 0 {
		return nil, apperr.Validation("at least one time is required")
	}

	instants := make([]time.Time, len(clocks))
	for i, c := range clocks {
		instant := time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
		// time.Date shifts wall clocks skipped by a DST change; refuse them instead.
		if instant.Hour() != c.Hour || instant.Minute() != c.Minute {
			return nil, apperr.Validation(fmt.Sprintf("time %s does not exist on %s in %s", c, day.Format(DateLayout), loc))
		}
		instants[i] = instant
	}
	return instants, nil
}
