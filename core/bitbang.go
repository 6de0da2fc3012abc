package core

// Inverted serial bit timing in 2 MHz counter ticks
const (
	bitbangStartTicks = 34 // start bit, 17 µs
	bitbangBitTicks   = 35 // data bit, 17.5 µs
	bitbangStopTicks  = 34 // stop bit, 17 µs
)

// SendInvertedByte bit-bangs one byte on the TX pin: start bit high, eight
// data bits LSB first with inverted levels, stop bit low. The pin must be a
// plain output (slot stopped or never started on a timer function).
//
// Interrupts are masked from the start bit to the end of the last data bit;
// the stop bit is timed with interrupts enabled since no edge follows it.
// The call blocks for the whole byte (~170 µs).
func (m *Module) SendInvertedByte(b byte) {
	pin := m.hw.Pin
	counter := m.hw.Counter
	if counter == nil {
		return
	}

	state := m.hw.Interrupts.Disable()
	t := counter.Ticks()
	pin.Set(true)
	waitTicks(counter, t, bitbangStartTicks)
	t += bitbangStartTicks
	for i := 0; i < 8; i++ {
		pin.Set(b&1 == 0)
		b >>= 1
		waitTicks(counter, t, bitbangBitTicks)
		t += bitbangBitTicks
	}
	pin.Set(false)
	m.hw.Interrupts.Restore(state)

	waitTicks(counter, t, bitbangStopTicks)
}

// SendInvertedBytes bit-bangs every byte of data back to back
func (m *Module) SendInvertedBytes(data []byte) {
	for _, b := range data {
		m.SendInvertedByte(b)
	}
}

// waitTicks spins until n ticks have passed since since. The subtraction
// wraps with the 16-bit counter.
func waitTicks(c TickCounter, since, n uint16) {
	for c.Ticks()-since < n {
	}
}
