//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"device/rp"

	"extmod/core"
)

// RP2040 timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime returns the low 32 bits of the 1 MHz microsecond timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime publishes the hardware time in module ticks. The
// microsecond timer gives every other tick; the event clock does not need
// more.
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime() * (core.TickRate / 1000000))
}

// PWM slice 7 is not routed to any pin we use; it free-runs as the 2 MHz
// bit-bang counter.
const (
	counterDivInt  = 62 // 125 MHz / 62.5 = 2 MHz
	counterDivFrac = 8  // sixteenths
)

// pwmCounter implements core.TickCounter on a PWM slice counter
type pwmCounter struct{}

// InitCounter releases the PWM block from reset and starts slice 7 wrapping
// at 0xFFFF
func InitCounter() core.TickCounter {
	resetPeripheral(rp.RESETS_RESET_PWM)
	rp.PWM.CH7_CSR.Set(0)
	rp.PWM.CH7_DIV.Set(counterDivInt<<rp.PWM_CH7_DIV_INT_Pos | counterDivFrac)
	rp.PWM.CH7_TOP.Set(0xFFFF)
	rp.PWM.CH7_CTR.Set(0)
	rp.PWM.CH7_CSR.SetBits(rp.PWM_CH7_CSR_EN)
	return pwmCounter{}
}

func (pwmCounter) Ticks() uint16 {
	return uint16(rp.PWM.CH7_CTR.Get())
}

// resetPeripheral asserts and releases the reset of one peripheral block
func resetPeripheral(bits uint32) {
	rp.RESETS.RESET.SetBits(bits)
	rp.RESETS.RESET.ClearBits(bits)
	for !rp.RESETS.RESET_DONE.HasBits(bits) {
	}
}
