package client

import (
	"slices"

	"doctor-booking/apperr"
	"doctor-booking/slot"
)

// TimeSet is the admin-curated list of times of day for one date. Values are
// unique and kept sorted. It is caller-local state and never persisted.
type TimeSet struct {
	times []string
}

func NewTimeSet(times ...string) (*TimeSet, error) {
	ts := &TimeSet{}
	for _, t := range times {
		if err := ts.Add(t); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// DefaultTimeSet mirrors the dashboard's initial selection.
func DefaultTimeSet() *TimeSet {
	return &TimeSet{times: []string{"09:00", "10:00"}}
}

func (ts *TimeSet) Add(raw string) error {
	c, err := slot.ParseClock(raw)
	if err != nil {
		return err
	}
	t := c.String()
	if slices.Contains(ts.times, t) {
		return apperr.Validation("time already added")
	}
	ts.times = append(ts.times, t)
	slices.Sort(ts.times)
	return nil
}

// Remove reports whether raw was present.
func (ts *TimeSet) Remove(raw string) bool {
	c, err := slot.ParseClock(raw)
	if err != nil {
		return false
	}
	i := slices.Index(ts.times, c.String())
	if i < 0 {
		return false
	}
	ts.times = slices.Delete(ts.times, i, i+1)
	return true
}

func (ts *TimeSet) Values() []string {
	return slices.Clone(ts.times)
}

func (ts *TimeSet) Len() int {
	return len(ts.times)
}
