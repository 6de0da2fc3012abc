//go:build tinygo

package core

import "runtime/interrupt"

// InterruptState is the saved PRIMASK of the running core
type InterruptState = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() InterruptState {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state InterruptState) {
	interrupt.Restore(state)
}
