//go:build rp2040

package main

import (
	"machine"

	"extmod/core"
)

// Module bay wiring. GPIO4/5 are UART1 TX/RX.
const (
	moduleTXPin    = machine.GPIO4
	moduleRXPin    = machine.GPIO5
	modulePowerPin = machine.GPIO3
)

// txPin implements core.OutputPin. Switching function also drops any
// polarity override left by the pulse timer.
type txPin struct {
	pin     machine.Pin
	pioMode machine.PinMode
}

func (p *txPin) Configure(fn core.PinFunction) {
	setOutputInverted(p.pin, false)
	switch fn {
	case core.PinTimer:
		p.pin.Configure(machine.PinConfig{Mode: p.pioMode})
	case core.PinUART:
		p.pin.Configure(machine.PinConfig{Mode: machine.PinUART})
		moduleRXPin.Configure(machine.PinConfig{Mode: machine.PinUART})
	default:
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
}

func (p *txPin) Set(high bool) {
	p.pin.Set(high)
}

type powerPin machine.Pin

func (p powerPin) SetPower(on bool) {
	machine.Pin(p).Set(on)
}
