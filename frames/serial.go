package frames

import "extmod/core"

// SerialFormat is the character format of a timer driven serial protocol
type SerialFormat struct {
	BaudRate   uint32
	EvenParity bool
	StopBits   int
}

// Character formats of the timer serial protocols
var (
	FormatSBUS = SerialFormat{BaudRate: 100000, EvenParity: true, StopBits: 2}
	FormatDSM  = SerialFormat{BaudRate: 125000, StopBits: 1}
	FormatMPM  = SerialFormat{BaudRate: 100000, EvenParity: true, StopBits: 2}
)

// TicksPerBit returns the bit length in timer ticks
func (f SerialFormat) TicksPerBit() uint16 {
	return uint16(core.TickRate / f.BaudRate)
}

// SerialPulses converts bytes into the run lengths of a toggling timer
// output. The line idles at the stop level, so the stream starts with the
// start bit run and always ends back at idle. dst is reused when large
// enough.
func SerialPulses(dst []uint16, data []byte, f SerialFormat) []uint16 {
	bit := f.TicksPerBit()
	out := dst[:0]

	run := uint16(0)
	level := true // idle
	emit := func(b bool) {
		if b != level {
			if run > 0 {
				out = append(out, run)
			}
			run = 0
			level = b
		}
		run += bit
	}

	for _, c := range data {
		emit(false)
		parity := false
		for i := 0; i < 8; i++ {
			b := c&(1<<i) != 0
			parity = parity != b
			emit(b)
		}
		if f.EvenParity {
			emit(parity)
		}
		for i := 0; i < f.StopBits; i++ {
			emit(true)
		}
	}
	if run > 0 {
		out = append(out, run)
	}
	return out
}
