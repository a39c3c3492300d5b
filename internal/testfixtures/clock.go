package testfixtures

import (
	"sync"
	"time"
)

// ClubZone is the fixed wall-clock zone used by fixtures. It matches
// America/Santiago in winter without depending on the tz database.
var ClubZone = time.FixedZone("CLT", -4*60*60)

// Clock provides a controllable time source for tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now as a function suitable for dependency injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set updates the clock to the provided time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// SetWallClock moves the clock to the given club wall-clock time on the
// current day.
func (c *Clock) SetWallClock(hour, minute, second int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	local := c.current.In(ClubZone)
	c.current = time.Date(local.Year(), local.Month(), local.Day(), hour, minute, second, 0, ClubZone)
	return c.current
}

// Advance moves the clock forward by the provided duration and returns the
// updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}
