package testutil

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a hand-driven clock. Every read of Now moves it forward by
// tick, so a zero tick freezes it. Safe for concurrent use.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

// NewStubClock creates a frozen StubClock reading start.
func NewStubClock(start time.Time) *StubClock {
	return &StubClock{now: start}
}

// FixedClock returns a frozen StubClock at 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(epoch)
}

// TickingClock returns a StubClock at 2024-01-15 10:30:00 UTC that advances
// by tick after every read.
func TickingClock(tick time.Duration) *StubClock {
	return &StubClock{now: epoch, tick: tick}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.tick)
	return t
}

// Advance moves the clock forward by d without counting as a read.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StubIDGenerator hands out "<prefix>-1", "<prefix>-2", ... in call order.
type StubIDGenerator struct {
	prefix string
	n      atomic.Int64
}

func NewStubIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	return g.prefix + "-" + strconv.FormatInt(g.n.Add(1), 10)
}
