package attendance

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cooldown remembers the last recorded check-in per employee. An employee is
// cooling down while a new timestamp falls within window of that check-in, in
// either direction, so out-of-order samples are deduplicated too.
//
// Entries expire from memory after the window; a miss means the caller has to
// consult the attendance log before deciding.
type Cooldown struct {
	window time.Duration
	// mu serializes check-and-record sequences of the recorder.
	mu   sync.Mutex
	last *cache.Cache
}

// NewCooldown creates a tracker for the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   cache.New(window, 2*window),
	}
}

// Lock serializes a check-and-record sequence for the recorder.
func (c *Cooldown) Lock() {
	c.mu.Lock()
}

func (c *Cooldown) Unlock() {
	c.mu.Unlock()
}

// Window returns the deduplication window.
func (c *Cooldown) Window() time.Duration {
	return c.window
}

// Last returns the cached last check-in of an employee.
func (c *Cooldown) Last(employeeID string) (time.Time, bool) {
	v, ok := c.last.Get(employeeID)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// Mark stores at as the employee's last check-in unless a later one is known.
func (c *Cooldown) Mark(employeeID string, at time.Time) {
	if prev, ok := c.Last(employeeID); ok && prev.After(at) {
		return
	}
	c.last.Set(employeeID, at, cache.DefaultExpiration)
}

// Suppresses reports whether a check-in at `at` falls inside the window of the
// previous one.
func (c *Cooldown) Suppresses(prev, at time.Time) bool {
	if c.window <= 0 || prev.IsZero() {
		return false
	}
	d := at.Sub(prev)
	if d < 0 {
		d = -d
	}
	return d < c.window
}
