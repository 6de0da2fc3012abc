package sim

import "extmod/core"

// Bench is a complete simulated module slot
type Bench struct {
	Clock      *Clock
	Pin        *Pin
	Power      *Power
	Timer      *Timer
	TimerDMA   *DMA
	UART       *UART
	UARTDMA    *DMA
	Interrupts *Interrupts
	Counter    *Counter
	Telemetry  *Sender

	profile core.HardwareProfile
}

// NewBench builds the peripherals that profile calls for
func NewBench(profile core.HardwareProfile) *Bench {
	clock := &Clock{}
	irq := NewInterrupts()
	b := &Bench{
		Clock:      clock,
		Pin:        NewPin(clock, irq),
		Power:      &Power{},
		Timer:      &Timer{},
		TimerDMA:   &DMA{},
		Interrupts: irq,
		Counter:    NewCounter(clock),
		Telemetry:  &Sender{},
		profile:    profile,
	}
	if profile.HasUART {
		b.UART = &UART{}
		b.UARTDMA = &DMA{}
	}
	return b
}

// Hardware returns the bench as a core.Hardware
func (b *Bench) Hardware() core.Hardware {
	hw := core.Hardware{
		Profile:    b.profile,
		Pin:        b.Pin,
		Power:      b.Power,
		Timer:      b.Timer,
		TimerDMA:   b.TimerDMA,
		Interrupts: b.Interrupts,
		Counter:    b.Counter,
		Telemetry:  b.Telemetry,
	}
	if b.UART != nil {
		hw.UART = b.UART
		hw.UARTDMA = b.UARTDMA
	}
	return hw
}

// FrameTiming is one PPM frame as it appeared on the wire
type FrameTiming struct {
	Start      uint64   // tick at which the first channel slot began
	Slots      []uint16 // channel slots followed by the rest slot
	Compare    uint16   // pulse mark length
	GapCompare uint16
}

// Period returns the frame length in ticks
func (f FrameTiming) Period() uint32 {
	var sum uint32
	for _, s := range f.Slots {
		sum += uint32(s)
	}
	return sum
}

// PPMRun is the result of RunPPM
type PPMRun struct {
	Frames  []FrameTiming
	Skipped int // gap interrupts that did not arm a transfer
}

// RunPPM runs a started PPM module through cycles gap interrupts. The
// timer reloads one DMA element per update event, so a transfer armed in
// one rest slot starts going out when that slot ends. The pin trace gets
// the mark of every slot.
func (b *Bench) RunPPM(m *core.Module, cycles int) PPMRun {
	var run PPMRun
	slotStart := b.Clock.Now()
	slotLen := uint64(b.Timer.Reload())

	for i := 0; i < cycles; i++ {
		b.Clock.AdvanceTo(slotStart + uint64(b.Timer.GapCompare()))
		if !b.Timer.raiseGap() {
			break
		}
		m.OnTimerCompare()

		next := slotStart + slotLen
		if !b.TimerDMA.Enabled() {
			// The reload register keeps its value and the same slot repeats.
			run.Skipped++
			b.markSlot(next, slotLen)
			slotStart = next
			continue
		}

		words := b.TimerDMA.Transfer().Words
		frame := FrameTiming{
			Start:   next,
			Slots:   append([]uint16(nil), words...),
			Compare: b.Timer.Compare(),
		}
		t := next
		for j, w := range words {
			b.markSlot(t, uint64(w))
			if j < len(words)-1 {
				t += uint64(w)
			}
		}

		b.Clock.AdvanceTo(t)
		if b.TimerDMA.Complete() {
			m.OnTimerDMAComplete()
		}
		frame.GapCompare = b.Timer.GapCompare()
		run.Frames = append(run.Frames, frame)

		b.Timer.SetReload(words[len(words)-1])
		slotStart = t
		slotLen = uint64(words[len(words)-1])
	}
	return run
}

// markSlot drives the pulse mark at the start of a slot
func (b *Bench) markSlot(start, length uint64) {
	active := !b.Timer.output.Inverted
	if b.profile.InvertedPolarityBit {
		active = !active
	}
	mark := uint64(b.Timer.Compare())
	if mark > length {
		mark = length
	}
	b.Pin.drive(start, active)
	b.Pin.drive(start+mark, !active)
}

// CompleteTimerTransfer finishes the timer DMA transfer and runs the
// handler. It reports whether a transfer was in flight.
func (b *Bench) CompleteTimerTransfer(m *core.Module) bool {
	if !b.TimerDMA.Enabled() {
		return false
	}
	if b.TimerDMA.Complete() {
		m.OnTimerDMAComplete()
	}
	return true
}

// CompleteUARTTransfer finishes the UART DMA transfer and runs the handler
func (b *Bench) CompleteUARTTransfer(m *core.Module) bool {
	if b.UARTDMA == nil || !b.UARTDMA.Enabled() {
		return false
	}
	if b.UARTDMA.Complete() {
		m.OnUARTDMAComplete()
	}
	return true
}

// Receive queues a burst on the UART and runs the receive interrupt when
// it is enabled. status[i] holds the line errors reported with data[i].
func (b *Bench) Receive(m *core.Module, data []byte, status []core.UARTStatus) {
	fire := false
	for i, d := range data {
		var s core.UARTStatus
		if i < len(status) {
			s = status[i]
		}
		fire = b.UART.Inject(d, s)
	}
	if fire {
		m.OnUARTInterrupt()
	}
}

// RunPeriodic drives the transmission opportunity of a started byte or
// timer serial module for cycles periods. Every armed transfer completes
// before the next opportunity and is handed to sent when it is not nil.
// It returns the number of transfers that went out.
func (b *Bench) RunPeriodic(m *core.Module, period uint32, cycles int, sent func(core.DMATransfer)) int {
	start := core.GetTime()
	m.SchedulePeriodic(period)

	n := 0
	for i := 1; i <= cycles; i++ {
		now := start + uint32(i)*period
		core.SetTime(now)
		b.Clock.Advance(uint64(period))
		core.ProcessTimers()

		for _, ch := range []*DMA{b.TimerDMA, b.UARTDMA} {
			if ch == nil || !ch.Enabled() {
				continue
			}
			t := ch.Transfer()
			if ch == b.TimerDMA {
				b.CompleteTimerTransfer(m)
			} else {
				b.CompleteUARTTransfer(m)
			}
			if sent != nil {
				sent(t)
			}
			n++
		}
	}
	return n
}
