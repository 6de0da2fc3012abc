// Package sim provides simulated module slot peripherals for running the
// driver off target. Every peripheral shares one Clock so pin edges,
// interrupt masking and DMA completions land on a single tick timeline.
package sim

// Clock is the simulated 2 MHz timeline
type Clock struct {
	now uint64
}

// Now returns the current tick
func (c *Clock) Now() uint64 {
	return c.now
}

// Advance moves the clock forward by n ticks
func (c *Clock) Advance(n uint64) {
	c.now += n
}

// AdvanceTo moves the clock to t. The clock never runs backwards.
func (c *Clock) AdvanceTo(t uint64) {
	if t > c.now {
		c.now = t
	}
}

// Counter is the free-running 16-bit counter used by the bit-bang sender.
// Every read costs one tick, which is what makes busy-wait loops progress.
type Counter struct {
	clock *Clock
}

// NewCounter returns a counter on clock
func NewCounter(clock *Clock) *Counter {
	return &Counter{clock: clock}
}

// Ticks implements core.TickCounter
func (c *Counter) Ticks() uint16 {
	t := uint16(c.clock.now)
	c.clock.Advance(1)
	return t
}
