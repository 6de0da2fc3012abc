//go:build rp2040

package main

import (
	"unsafe"

	"device/rp"
	"machine"

	"extmod/core"
)

const rxErrorBits = rp.UART0_UARTDR_OE | rp.UART0_UARTDR_BE | rp.UART0_UARTDR_PE | rp.UART0_UARTDR_FE

// pl011 implements core.UARTPort on a PL011. Line errors travel with each
// received byte in the data register, so Status pops the next entry and
// ReadData hands it out.
type pl011 struct {
	bus   *rp.UART0_Type
	reset uint32

	pending bool
	entry   uint32
}

func newPL011(bus *rp.UART0_Type, reset uint32) *pl011 {
	return &pl011{bus: bus, reset: reset}
}

func (u *pl011) Reset() {
	resetPeripheral(u.reset)
	u.pending = false
}

func (u *pl011) Configure(cfg core.UARTConfig) {
	u.bus.UARTCR.ClearBits(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)
	u.setBaudRate(cfg.BaudRate)
	u.setFormat(cfg.DataBits, cfg.StopBits, cfg.Parity)

	var cr uint32
	if cfg.TX {
		cr |= rp.UART0_UARTCR_TXE
	}
	if cfg.RX {
		cr |= rp.UART0_UARTCR_RXE
	}
	u.bus.UARTCR.Set(cr)
	u.bus.UARTICR.Set(0x7FF)
	u.bus.UARTIFLS.Set(0)
}

// setBaudRate programs the integer and fractional divisors. PL011 latches
// them on the next LCR_H write.
func (u *pl011) setBaudRate(br uint32) {
	div := 8 * machine.CPUFrequency() / br
	ibrd := div >> 7
	var fbrd uint32
	switch {
	case ibrd == 0:
		ibrd = 1
	case ibrd >= 65535:
		ibrd = 65535
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}
	u.bus.UARTIBRD.Set(ibrd)
	u.bus.UARTFBRD.Set(fbrd)
	u.bus.UARTLCR_H.Set(u.bus.UARTLCR_H.Get())
}

func (u *pl011) setFormat(dataBits, stopBits uint8, parity core.ParityMode) {
	if dataBits < 5 || dataBits > 8 {
		dataBits = 8
	}
	if stopBits != 2 {
		stopBits = 1
	}
	v := uint32(dataBits-5)<<rp.UART0_UARTLCR_H_WLEN_Pos |
		uint32(stopBits-1)<<rp.UART0_UARTLCR_H_STP2_Pos |
		rp.UART0_UARTLCR_H_FEN
	switch parity {
	case core.ParityEven:
		v |= rp.UART0_UARTLCR_H_PEN | rp.UART0_UARTLCR_H_EPS
	case core.ParityOdd:
		v |= rp.UART0_UARTLCR_H_PEN
	}
	u.bus.UARTLCR_H.Set(v)
}

func (u *pl011) SetEnabled(on bool) {
	if on {
		u.bus.UARTCR.SetBits(rp.UART0_UARTCR_UARTEN)
	} else {
		u.bus.UARTCR.ClearBits(rp.UART0_UARTCR_UARTEN)
	}
}

func (u *pl011) SetRxInterrupt(on bool) {
	const rx = rp.UART0_UARTIMSC_RXIM | rp.UART0_UARTIMSC_RTIM
	if on {
		u.bus.UARTIMSC.SetBits(rx)
	} else {
		u.bus.UARTIMSC.ClearBits(rx)
	}
}

func (u *pl011) SetTxDMA(on bool) {
	if on {
		u.bus.UARTDMACR.SetBits(rp.UART0_UARTDMACR_TXDMAE)
	} else {
		u.bus.UARTDMACR.ClearBits(rp.UART0_UARTDMACR_TXDMAE)
	}
}

func (u *pl011) Status() core.UARTStatus {
	if !u.pending {
		if u.bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE) {
			u.bus.UARTICR.Set(rp.UART0_UARTICR_RXIC | rp.UART0_UARTICR_RTIC)
			u.entry = 0
			return 0
		}
		u.entry = u.bus.UARTDR.Get()
		u.pending = true
	}
	status := core.UARTRxNotEmpty
	if u.entry&rp.UART0_UARTDR_OE != 0 {
		status |= core.UARTOverrun
	}
	// PL011 has no noise flag; a break is the closest line fault
	if u.entry&rp.UART0_UARTDR_BE != 0 {
		status |= core.UARTNoise
	}
	if u.entry&rp.UART0_UARTDR_PE != 0 {
		status |= core.UARTParity
	}
	if u.entry&rp.UART0_UARTDR_FE != 0 {
		status |= core.UARTFraming
	}
	return status
}

func (u *pl011) ReadData() byte {
	if !u.pending {
		u.Status()
	}
	u.pending = false
	if u.entry&rxErrorBits != 0 {
		u.bus.UARTRSR.Set(0)
	}
	return byte(u.entry)
}

func (u *pl011) dataRegister() *uint32 {
	return (*uint32)(unsafe.Pointer(&u.bus.UARTDR))
}
