package sim

import (
	"math/rand"
)

// Context is created once per simulation and passed to every system on
// every frame. It carries the frame clock, the RNG and the event log so no
// system depends on hidden globals.
type Context struct {
	Tick    int     // frames stepped so far
	DT      float64 // seconds covered by the current frame
	Elapsed float64 // simulated seconds since start
	Rand    *rand.Rand
	Log     *EventLog

	lastAnim float64
}

// NewContext returns a context seeded with seed. A nil log is replaced by a
// non-verbose unbounded one.
func NewContext(seed int64, log *EventLog) *Context {
	if log == nil {
		log = NewEventLog(false, 0)
	}
	return &Context{
		Rand: rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation only
		Log:  log,
	}
}

// advance moves the clock forward by one frame of dt seconds.
func (c *Context) advance(dt float64) {
	c.Tick++
	c.DT = dt
	c.Elapsed += dt
}

// animDue reports whether interval seconds have passed since the last
// animation tick and, if so, restarts the interval.
func (c *Context) animDue(interval float64) bool {
	if c.Elapsed-c.lastAnim <= interval {
		return false
	}
	c.lastAnim = c.Elapsed
	return true
}
