//go:build rp2040

package main

import (
	"runtime/interrupt"

	"device/rp"

	"extmod/core"
)

// Both DMA streams complete on DMA_IRQ_0. The gap compare needs the PIO
// slot interrupt and the timer alarm.
var (
	dmaIRQ   interrupt.Interrupt
	pioIRQ   interrupt.Interrupt
	alarmIRQ interrupt.Interrupt
	uartIRQ  interrupt.Interrupt
)

// nvic implements core.InterruptController. The M0+ implements the top two
// priority bits only, so the module priorities are mapped onto them.
type nvic struct {
	core.InterruptController
	enabled uint8 // bit per core.IRQLine
}

func newNVIC() *nvic {
	dmaIRQ = interrupt.New(rp.IRQ_DMA_IRQ_0, handleDMA)
	pioIRQ = interrupt.New(rp.IRQ_PIO0_IRQ_0, handleSlot)
	alarmIRQ = interrupt.New(rp.IRQ_TIMER_IRQ_0, handleAlarm)
	uartIRQ = interrupt.New(rp.IRQ_UART1_IRQ, handleUART)
	return &nvic{InterruptController: core.CPUInterrupts()}
}

func nvicPriority(p uint8) uint8 {
	if p < 4 {
		return 0
	}
	if p > 7 {
		p = 7
	}
	return (p - 4) << 6
}

func (n *nvic) EnableIRQ(line core.IRQLine, priority uint8) {
	n.enabled |= 1 << line
	prio := nvicPriority(priority)
	switch line {
	case core.IRQTimerDMA:
		dmaIRQ.SetPriority(prio)
		dmaIRQ.Enable()
	case core.IRQTimerCompare:
		pioIRQ.SetPriority(prio)
		pioIRQ.Enable()
		alarmIRQ.SetPriority(prio)
		alarmIRQ.Enable()
	case core.IRQUART:
		uartIRQ.SetPriority(prio)
		uartIRQ.Enable()
		// UART TX DMA shares the DMA line
		dmaIRQ.SetPriority(prio)
		dmaIRQ.Enable()
	}
}

func (n *nvic) DisableIRQ(line core.IRQLine) {
	n.enabled &^= 1 << line
	switch line {
	case core.IRQTimerCompare:
		pioIRQ.Disable()
		alarmIRQ.Disable()
	case core.IRQUART:
		uartIRQ.Disable()
	}
	if n.enabled&(1<<core.IRQTimerDMA|1<<core.IRQUART) == 0 {
		dmaIRQ.Disable()
	}
}

func handleDMA(interrupt.Interrupt) {
	module.OnTimerDMAComplete()
	module.OnUARTDMAComplete()
	rp.DMA.INTS0.Set(rp.DMA.INTS0.Get())
}

func handleSlot(interrupt.Interrupt) {
	pulseTimer.onSlotIRQ()
}

func handleAlarm(interrupt.Interrupt) {
	if pulseTimer.onAlarm() {
		module.OnTimerCompare()
	}
}

func handleUART(interrupt.Interrupt) {
	module.OnUARTInterrupt()
}
