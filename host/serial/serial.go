// Package serial connects the module bench to a real serial adapter, so
// frames produced by the simulated module UART can be watched on a scope
// or fed to a module on the bench.
package serial

import (
	"io"
)

// Port is the adapter the mirror writes module frames to. Tests substitute
// a loopback.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the module protocol being mirrored
	Baud int

	// Line format, 8N1 unless set
	EvenParity bool
	StopBits   int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a configuration for mirroring a module line at baud
func DefaultConfig(device string, baud int) *Config {
	if baud == 0 {
		baud = 115200
	}
	return &Config{
		Device:      device,
		Baud:        baud,
		ReadTimeout: 10, // short timeout so Poll never stalls the bench loop
	}
}
