//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	"device/rp"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"extmod/core"
)

// Every word pushed to the pulse state machine is one slot:
//
//	bit 0      last element of the transfer, raises PIO IRQ 0
//	bits 1-15  mark length, output active
//	bits 16-31 space length, output idle
//
// Both paths through the flag test take four cycles, so a slot lasts
// mark+space+slotOverhead state machine cycles.
const (
	slotFlag      = 1
	markShift     = 1
	spaceShift    = 16
	markOverhead  = 3 // set, loop exit, out
	spaceOverhead = 7 // set, loop exit, pull, out, jmp, jmp/irq, out
	maxMark       = 0x7FFF
	maxSpace      = 0xFFFF

	pioIRQ0 = 0xC000 // irq nowait 0, not covered by AssemblerV0
)

const pulsePIOOrigin = 0 // jump targets are absolute

func pulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),            // 0: pull block
		asm.Out(rp2pio.OutDestY, 1).Encode(),      // 1: out y, 1 (last element flag)
		asm.Jmp(4, rp2pio.JmpYNZeroDec).Encode(),  // 2: jmp y--, 4
		asm.Jmp(5, rp2pio.JmpAlways).Encode(),     // 3: jmp 5
		pioIRQ0,                                   // 4: irq nowait 0
		asm.Out(rp2pio.OutDestX, 15).Encode(),     // 5: out x, 15 (mark)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),   // 6: set pins, 1
		asm.Jmp(7, rp2pio.JmpXNZeroDec).Encode(),  // 7: jmp x--, 7
		asm.Out(rp2pio.OutDestX, 16).Encode(),     // 8: out x, 16 (space)
		asm.Set(rp2pio.SetDestPins, 0).Encode(),   // 9: set pins, 0
		asm.Jmp(10, rp2pio.JmpXNZeroDec).Encode(), // 10: jmp x--, 10
	}
}

// GPIO control register, output override field
const (
	ioBank0Base      = 0x40014000
	gpioOutoverPos   = 8
	gpioOutoverMsk   = 0x3 << gpioOutoverPos
	gpioOutoverInv   = 0x1 << gpioOutoverPos
	gpioCtrlStride   = 8
	gpioCtrlOffset   = 4
	pioIRQ0InteSM0   = 1 << 8
	timerAlarm0      = 1 << 0
	usPerTimerTick   = 1000000
	pioClockDivFrac8 = 256
)

func gpioCtrl(pin machine.Pin) *volatile.Register32 {
	addr := uintptr(ioBank0Base + gpioCtrlOffset + gpioCtrlStride*uint32(pin))
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// setOutputInverted swaps the pad level of pin regardless of the function
// driving it
func setOutputInverted(pin machine.Pin, inverted bool) {
	ctrl := gpioCtrl(pin)
	v := ctrl.Get() &^ gpioOutoverMsk
	if inverted {
		v |= gpioOutoverInv
	}
	ctrl.Set(v)
}

// pioPulseTimer implements core.PulseTimer on one PIO state machine.
//
// The gap compare has no PIO equivalent: the state machine raises IRQ 0 as
// it starts the flagged last slot, and that interrupt arms timer alarm 0
// gapCompare ticks later.
type pioPulseTimer struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8

	hz       uint32
	running  bool
	inverted bool
	mode     core.OutputMode
	compare  uint16
	reload   uint16
	gap      uint16

	gapIRQ    volatile.Register8
	updateDMA bool
}

func newPIOPulseTimer(pin machine.Pin) (*pioPulseTimer, error) {
	t := &pioPulseTimer{
		pio: rp2pio.PIO0,
		pin: pin,
		hz:  core.TickRate,
	}
	t.sm = t.pio.StateMachine(0)
	t.sm.TryClaim()

	offset, err := t.pio.AddProgram(pulseProgram(), pulsePIOOrigin)
	if err != nil {
		return nil, err
	}
	t.offset = offset
	t.init()

	rp.PIO0.IRQ0_INTE.SetBits(pioIRQ0InteSM0)
	rp.TIMER.INTE.SetBits(timerAlarm0)
	return t, nil
}

// init loads the state machine configuration. The state machine must be
// stopped.
func (t *pioPulseTimer) init() {
	n := len(pulseProgram())
	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(t.pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(t.offset+uint8(n)-1, t.offset)

	div := uint64(machine.CPUFrequency()) * pioClockDivFrac8 / uint64(t.hz)
	cfg.SetClkDivIntFrac(uint16(div/pioClockDivFrac8), uint8(div%pioClockDivFrac8))

	t.sm.Init(t.offset, cfg)
	t.sm.SetPindirsConsecutive(t.pin, 1, true)
	t.sm.SetPinsConsecutive(t.pin, 1, false)
}

func (t *pioPulseTimer) SetRunning(on bool) {
	if on == t.running {
		return
	}
	t.running = on
	if !on {
		t.sm.SetEnabled(false)
		t.sm.ClearFIFOs()
		t.sm.Restart()
		return
	}
	// A PWM slot with the gap compare armed gets one idle slot so the first
	// frame is scheduled the same way as every following one.
	if t.mode == core.OutputPWM && t.gapIRQ.Get() != 0 && t.sm.IsTxFIFOEmpty() {
		t.sm.TxPut(t.pwmWord(t.reload, true))
	}
	t.sm.SetEnabled(true)
}

func (t *pioPulseTimer) Running() bool {
	return t.running
}

func (t *pioPulseTimer) SetTickRate(hz uint32) {
	if hz == 0 || hz == t.hz {
		return
	}
	t.hz = hz
	if !t.running {
		t.init()
	}
}

// SetOutput applies the polarity. RP2040 pads have no complementary
// output and no main output enable.
func (t *pioPulseTimer) SetOutput(cfg core.OutputConfig) {
	t.inverted = cfg.Inverted
	t.applyPolarity()
}

// SetMode selects how slots are encoded. Toggle streams begin with the
// inactive level while the program always marks first, so in toggle mode
// the pad is inverted and the pin rests on the forced level.
func (t *pioPulseTimer) SetMode(mode core.OutputMode) {
	t.mode = mode
	if mode == core.OutputToggle {
		t.sm.SetPinsConsecutive(t.pin, 1, false)
	}
	t.applyPolarity()
}

func (t *pioPulseTimer) applyPolarity() {
	setOutputInverted(t.pin, t.inverted != (t.mode == core.OutputToggle))
}

func (t *pioPulseTimer) SetCompare(ticks uint16) {
	t.compare = ticks
}

func (t *pioPulseTimer) SetReload(ticks uint16) {
	t.reload = ticks
}

func (t *pioPulseTimer) SetGapCompare(ticks uint16) {
	t.gap = ticks
}

func (t *pioPulseTimer) ClearGapFlag() {
	rp.TIMER.INTR.Set(timerAlarm0)
}

func (t *pioPulseTimer) SetGapInterrupt(on bool) {
	if on {
		t.gapIRQ.Set(1)
	} else {
		t.gapIRQ.Set(0)
	}
}

func (t *pioPulseTimer) GapInterruptEnabled() bool {
	return t.gapIRQ.Get() != 0
}

func (t *pioPulseTimer) SetUpdateDMA(on bool) {
	t.updateDMA = on
}

// ForceUpdate drives the pin to its active level in forced mode. Other
// modes take effect with the next slot.
func (t *pioPulseTimer) ForceUpdate() {
	if t.mode == core.OutputForcedActive {
		t.sm.SetPinsConsecutive(t.pin, 1, true)
	}
}

// pwmWord encodes one PWM slot: active for the compare value, idle for
// the rest of width
func (t *pioPulseTimer) pwmWord(width uint16, last bool) uint32 {
	mark := overheadTrim(uint32(t.compare), markOverhead, maxMark)
	space := uint32(0)
	if width > t.compare {
		space = overheadTrim(uint32(width-t.compare), spaceOverhead, maxSpace)
	}
	return slotWord(mark, space, last)
}

// toggleWord encodes two consecutive runs of a level stream
func toggleWord(active, idle uint16, last bool) uint32 {
	return slotWord(
		overheadTrim(uint32(active), markOverhead, maxMark),
		overheadTrim(uint32(idle), spaceOverhead, maxSpace),
		last)
}

func slotWord(mark, space uint32, last bool) uint32 {
	w := mark<<markShift | space<<spaceShift
	if last {
		w |= slotFlag
	}
	return w
}

func overheadTrim(v, overhead, max uint32) uint32 {
	if v <= overhead {
		return 0
	}
	v -= overhead
	if v > max {
		return max
	}
	return v
}

// onSlotIRQ runs when the state machine starts the last slot of a
// transfer. It arms the gap alarm.
func (t *pioPulseTimer) onSlotIRQ() {
	rp.PIO0.IRQ.Set(1)
	us := uint32(t.gap) * usPerTimerTick / t.hz
	rp.TIMER.ALARM0.Set(GetHardwareTime() + us)
}

// onAlarm reports whether the gap compare interrupt is due
func (t *pioPulseTimer) onAlarm() bool {
	if !rp.TIMER.INTS.HasBits(timerAlarm0) {
		return false
	}
	rp.TIMER.INTR.Set(timerAlarm0)
	return t.gapIRQ.Get() != 0
}

func (t *pioPulseTimer) txFIFO() *uint32 {
	return (*uint32)(unsafe.Pointer(&rp.PIO0.TXF0))
}
