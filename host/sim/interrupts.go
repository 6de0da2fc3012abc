package sim

import "extmod/core"

// Interrupts records the NVIC lines and the global mask
type Interrupts struct {
	enabled  map[core.IRQLine]uint8
	masked   bool
	maskOps  int
	restores int
}

// NewInterrupts returns a controller with every line disabled
func NewInterrupts() *Interrupts {
	return &Interrupts{enabled: make(map[core.IRQLine]uint8)}
}

// EnableIRQ implements core.InterruptController
func (i *Interrupts) EnableIRQ(line core.IRQLine, priority uint8) {
	i.enabled[line] = priority
}

// DisableIRQ implements core.InterruptController
func (i *Interrupts) DisableIRQ(line core.IRQLine) {
	delete(i.enabled, line)
}

// Disable implements core.InterruptController
func (i *Interrupts) Disable() core.InterruptState {
	var prev core.InterruptState
	if i.masked {
		prev = 1
	}
	i.masked = true
	i.maskOps++
	return prev
}

// Restore implements core.InterruptController
func (i *Interrupts) Restore(state core.InterruptState) {
	i.masked = state != 0
	i.restores++
}

// Enabled reports whether line is enabled and its priority
func (i *Interrupts) Enabled(line core.IRQLine) (uint8, bool) {
	prio, ok := i.enabled[line]
	return prio, ok
}

// EnabledCount returns the number of enabled lines
func (i *Interrupts) EnabledCount() int {
	return len(i.enabled)
}

// Masked reports whether the global mask is set
func (i *Interrupts) Masked() bool {
	return i.masked
}

// Balanced reports whether every Disable was paired with a Restore
func (i *Interrupts) Balanced() bool {
	return i.maskOps == i.restores && !i.masked
}
