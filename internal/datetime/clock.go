package datetime

import "time"

// Clock is the source of "now" for every booking rule.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns wall-clock time projected into loc.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// FixedClock always reports the same instant. Used by tests.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time           { return c.T }
func (c *FixedClock) Location() *time.Location { return c.T.Location() }

func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
