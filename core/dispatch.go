package core

// OnTimerCompare is the gap compare-match interrupt handler. The next frame
// is computed and armed; without a frame the compare interrupt stays armed
// and the cycle is retried on the next match. A match while the previous
// transfer is still enabled leaves the scheduler state untouched.
func (m *Module) OnTimerCompare() {
	t := m.hw.Timer
	t.SetGapInterrupt(false)
	t.ClearGapFlag()

	if m.protocol == ProtocolNone {
		return
	}
	if m.transferInFlight() {
		// The DMA-complete handler re-enables the compare interrupt
		m.noteCollision()
		return
	}
	if !m.produce() {
		m.state = StateIdle
		t.SetGapInterrupt(true)
		return
	}
	m.SendNextFrame()
}

// OnTimerDMAComplete is the transfer-complete interrupt handler of the
// timer DMA stream
func (m *Module) OnTimerDMAComplete() {
	ch := m.hw.TimerDMA
	if !ch.TransferComplete() {
		return
	}
	ch.ClearTransferComplete()

	switch m.protocol {
	case ProtocolNone:
		return
	case ProtocolPPM:
		t := m.hw.Timer
		t.ClearGapFlag()
		t.SetGapInterrupt(true)
		m.state = StateGapWait
	default:
		m.state = StateIdle
	}
	RecordEvent(EvtTransferEnd, m.protocol, 0, 0)
}

// OnUARTDMAComplete is the transfer-complete interrupt handler of the UART
// TX DMA stream
func (m *Module) OnUARTDMAComplete() {
	ch := m.hw.UARTDMA
	if ch == nil || !ch.TransferComplete() {
		return
	}
	ch.ClearTransferComplete()
	if m.protocol != ProtocolNone {
		m.state = StateIdle
		RecordEvent(EvtTransferEnd, m.protocol, 0, 0)
	}
}

// OnTransmitOpportunity is the periodic hook of the calling context. Every
// protocol except PPM is paced by it; PPM frames follow the gap interrupt.
func (m *Module) OnTransmitOpportunity() {
	switch TransportFor(m.protocol, m.hw.Profile) {
	case TransportNone, TransportPulseTrain:
		return
	}
	state := m.hw.Interrupts.Disable()
	inFlight := m.transferInFlight()
	m.hw.Interrupts.Restore(state)
	if inFlight {
		m.noteCollision()
		return
	}
	// The producer runs with interrupts enabled; nothing references its
	// buffer until SendNextFrame arms it.
	frame, ok := m.producer.SetupFrame(m.protocol)
	if !ok {
		m.noteUnderrun()
		return
	}
	m.frame = frame
	m.SendNextFrame()
}

// SchedulePeriodic registers the transmission opportunity on the timer list
// every period ticks. ProcessTimers runs it.
func (m *Module) SchedulePeriodic(period uint32) {
	CancelTimer(&m.sendTimer)
	m.sendPeriod = period
	m.sendTimer.WakeTime = GetTime() + period
	m.sendTimer.Handler = m.periodicEvent
	ScheduleTimer(&m.sendTimer)
}

func (m *Module) periodicEvent(t *Timer) uint8 {
	if m.protocol == ProtocolNone {
		return SF_DONE
	}
	m.OnTransmitOpportunity()
	t.WakeTime += m.sendPeriod
	return SF_RESCHEDULE
}

// DefaultSendPeriod returns the transmission period of p in ticks, zero for
// PPM which is paced by its own frame timer
func DefaultSendPeriod(p Protocol) uint32 {
	switch p {
	case ProtocolPXX1Pulses, ProtocolPXX1Serial:
		return TicksFromUS(9000)
	case ProtocolPXX2HighSpeed, ProtocolPXX2LowSpeed, ProtocolCrossfire, ProtocolGhost:
		return TicksFromUS(4000)
	case ProtocolSBUS, ProtocolMultimodule:
		return TicksFromUS(7000)
	case ProtocolDSM2LP45, ProtocolDSM2, ProtocolDSMX:
		return TicksFromUS(22000)
	case ProtocolAFHDS3:
		return TicksFromUS(14000)
	}
	return 0
}

// produce asks the producer for the next frame. Callers check that no
// transfer still references the previous one.
func (m *Module) produce() bool {
	frame, ok := m.producer.SetupFrame(m.protocol)
	if !ok {
		m.noteUnderrun()
		return false
	}
	m.frame = frame
	return true
}

// SendNextFrame hands the produced frame to the transport of the active
// protocol
func (m *Module) SendNextFrame() {
	state := m.hw.Interrupts.Disable()
	defer m.hw.Interrupts.Restore(state)

	switch m.protocol {
	case ProtocolPPM:
		m.sendPulseTrain()

	case ProtocolPXX1Pulses, ProtocolDSM2LP45, ProtocolDSM2, ProtocolDSMX, ProtocolMultimodule:
		m.sendTimerPulses()

	case ProtocolSBUS:
		if m.hw.TimerDMA.Enabled() {
			m.noteCollision()
			return
		}
		m.hw.Timer.SetOutput(OutputConfig{
			Inverted:   m.hw.Profile.polarityBit(m.settings.SBUSInverted),
			MainOutput: true,
		})
		m.sendTimerPulses()

	case ProtocolPXX1Serial, ProtocolPXX2HighSpeed, ProtocolPXX2LowSpeed:
		if TransportFor(m.protocol, m.hw.Profile) != TransportUART {
			m.unsupported()
			return
		}
		m.sendBuffer(m.frame.Bytes)

	case ProtocolAFHDS3:
		if TransportFor(m.protocol, m.hw.Profile) == TransportUART {
			m.sendBuffer(m.frame.Bytes)
		} else {
			m.sendTimerPulses()
		}

	case ProtocolCrossfire, ProtocolGhost:
		if m.hw.Telemetry == nil {
			m.unsupported()
			return
		}
		m.hw.Telemetry.SendBuffer(m.frame.Bytes)
		m.noteFrameSent()

	default:
		m.unsupported()
	}
}

// sendPulseTrain arms the next PPM frame. The timer keeps running; the
// first element loads on the update event that ends the current rest slot.
func (m *Module) sendPulseTrain() {
	train := m.frame.Train
	if train == nil {
		m.noteUnderrun()
		m.hw.Timer.SetGapInterrupt(true)
		return
	}
	t := m.hw.Timer
	t.SetCompare(train.Compare())
	t.SetOutput(OutputConfig{
		Inverted:   m.hw.Profile.polarityBit(train.Inverted),
		MainOutput: m.hw.Profile.AdvancedOutput,
	})
	gap := train.GapCompare()
	t.SetGapCompare(gap)
	m.stats.LastGapCompare = gap
	m.armTransfer(m.hw.TimerDMA, DMATransfer{Target: DMAToTimerReload, Words: train.transfer()}, false)
}

// sendTimerPulses restarts the timer on a fresh DMA stream
func (m *Module) sendTimerPulses() {
	if m.hw.TimerDMA.Enabled() {
		m.noteCollision()
		return
	}
	t := m.hw.Timer
	t.SetRunning(false)
	m.armTransfer(m.hw.TimerDMA, DMATransfer{Target: DMAToTimerReload, Words: m.frame.Pulses}, true)
	t.SetRunning(true)
}

// unsupported is the dispatch branch for a protocol this slot cannot send.
// The hardware stays idle except for the compare interrupt.
func (m *Module) unsupported() {
	m.hw.Timer.SetGapInterrupt(true)
	m.stats.Unsupported++
	RecordEvent(EvtUnsupported, m.protocol, 0, 0)
}

// noteFrameSent counts a frame handed to the hardware and ends any
// underrun streak
func (m *Module) noteFrameSent() {
	m.stats.Frames++
	m.stats.ConsecutiveUnderruns = 0
}

func (m *Module) noteCollision() {
	m.stats.Collisions++
	RecordEvent(EvtCollision, m.protocol, 0, 0)
}

func (m *Module) noteUnderrun() {
	m.stats.Underruns++
	m.stats.ConsecutiveUnderruns++
	RecordEvent(EvtUnderrun, m.protocol, m.stats.ConsecutiveUnderruns, 0)
	if m.stats.ConsecutiveUnderruns == UnderrunAlarmThreshold {
		m.stats.UnderrunAlarms++
		RecordEvent(EvtUnderrunAlarm, m.protocol, m.stats.ConsecutiveUnderruns, 0)
	}
}

// UnderrunAlarm reports whether the producer has missed at least
// UnderrunAlarmThreshold consecutive cycles
func (m *Module) UnderrunAlarm() bool {
	return m.stats.ConsecutiveUnderruns >= UnderrunAlarmThreshold
}
