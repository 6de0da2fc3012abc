package sim

import "extmod/core"

// Edge is one sample of the pin trace
type Edge struct {
	At     uint64
	High   bool
	Fn     core.PinFunction
	Masked bool // interrupts were masked when the level was set
}

// Pin is the module TX pin. It records every level write and function change.
type Pin struct {
	clock *Clock
	irq   *Interrupts

	fn    core.PinFunction
	high  bool
	trace []Edge
}

// NewPin returns a low output pin on clock. irq may be nil.
func NewPin(clock *Clock, irq *Interrupts) *Pin {
	return &Pin{clock: clock, irq: irq}
}

// Configure implements core.OutputPin
func (p *Pin) Configure(fn core.PinFunction) {
	p.fn = fn
}

// Set implements core.OutputPin
func (p *Pin) Set(high bool) {
	p.drive(p.clock.Now(), high)
}

func (p *Pin) drive(at uint64, high bool) {
	p.high = high
	masked := p.irq != nil && p.irq.Masked()
	p.trace = append(p.trace, Edge{At: at, High: high, Fn: p.fn, Masked: masked})
}

// Function returns the selected pin function
func (p *Pin) Function() core.PinFunction {
	return p.fn
}

// High returns the current level
func (p *Pin) High() bool {
	return p.high
}

// Trace returns the recorded samples in write order
func (p *Pin) Trace() []Edge {
	return p.trace
}

// TraceSince returns the samples taken at or after t
func (p *Pin) TraceSince(t uint64) []Edge {
	for i, e := range p.trace {
		if e.At >= t {
			return p.trace[i:]
		}
	}
	return nil
}

// LevelAt returns the pin level at tick t, low before the first sample
func (p *Pin) LevelAt(t uint64) bool {
	level := false
	for _, e := range p.trace {
		if e.At > t {
			break
		}
		level = e.High
	}
	return level
}

// ResetTrace drops the recorded samples
func (p *Pin) ResetTrace() {
	p.trace = p.trace[:0]
}

// Power is the module supply switch
type Power struct {
	On       bool
	Switches int
}

// SetPower implements core.ModulePower
func (p *Power) SetPower(on bool) {
	if p.On != on {
		p.Switches++
	}
	p.On = on
}
