//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

var errNoConfig = errors.New("serial: nil config")

// NativePort is a Port on a host serial device
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// lineConfig maps the mirrored line format onto tarm/serial
func lineConfig(cfg *Config) *serial.Config {
	c := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	}
	if cfg.EvenParity {
		c.Parity = serial.ParityEven
	}
	if cfg.StopBits == 2 {
		c.StopBits = serial.Stop2
	}
	return c
}

// Open opens the adapter named by cfg.Device
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errNoConfig
	}
	port, err := serial.OpenPort(lineConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w", cfg.Device, cfg.Baud, err)
	}
	return &NativePort{port: port, cfg: cfg}, nil
}

func (p *NativePort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *NativePort) Write(b []byte) (int, error) { return p.port.Write(b) }

// Close releases the device
func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// Flush discards unread input and unsent output
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
