//go:build !tinygo

package core

// InterruptState is a placeholder for interrupt state on regular Go
type InterruptState uintptr

// disableInterrupts is a no-op on regular Go (for testing)
func disableInterrupts() InterruptState {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing)
func restoreInterrupts(state InterruptState) {
	// No-op
}
