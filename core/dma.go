package core

// armTransfer programs ch with t and enables it with the transfer-complete
// interrupt. It does nothing while ch is still enabled: the channel has a
// single buffer pointer and the in-flight buffer must not be replaced.
// reload forces an update event so the first timer element takes effect
// without waiting out the current period.
func (m *Module) armTransfer(ch DMAChannel, t DMATransfer, reload bool) bool {
	if ch.Enabled() {
		m.noteCollision()
		return false
	}
	if t.Len() == 0 {
		m.noteUnderrun()
		return false
	}

	ch.Disable()
	ch.ClearTransferComplete()
	ch.Load(t)
	ch.Enable(true)
	if reload {
		m.hw.Timer.ForceUpdate()
	}

	m.state = StateTransferArmed
	m.noteFrameSent()
	RecordEvent(EvtFrameArmed, m.protocol, uint32(t.Len()), uint32(m.stats.LastGapCompare))
	return true
}

// transferInFlight reports whether the transport of the active protocol
// still has an enabled DMA transfer
func (m *Module) transferInFlight() bool {
	switch TransportFor(m.protocol, m.hw.Profile) {
	case TransportPulseTrain, TransportTimerPulses:
		return m.hw.TimerDMA.Enabled()
	case TransportUART:
		return m.hw.UARTDMA != nil && m.hw.UARTDMA.Enabled()
	}
	return false
}
