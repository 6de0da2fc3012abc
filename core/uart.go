package core

// SendBuffer queues one DMA transfer of data on the module UART. It returns
// false when the slot has no UART or a transfer is still in flight. data
// must stay untouched until the transfer completes.
func (m *Module) SendBuffer(data []byte) bool {
	state := m.hw.Interrupts.Disable()
	defer m.hw.Interrupts.Restore(state)
	return m.sendBuffer(data)
}

func (m *Module) sendBuffer(data []byte) bool {
	if m.hw.UART == nil {
		m.unsupported()
		return false
	}
	if !m.armTransfer(m.hw.UARTDMA, DMATransfer{Target: DMAToUARTData, Bytes: data}, false) {
		return false
	}
	m.hw.UART.SetTxDMA(true)
	return true
}

// OnUARTInterrupt is the module UART interrupt handler. It drains the data
// register while a byte or a line error is pending; bytes received with a
// line error are counted and discarded.
func (m *Module) OnUARTInterrupt() {
	u := m.hw.UART
	if u == nil {
		return
	}
	status := u.Status()
	for status&(UARTRxNotEmpty|UARTLineErrors) != 0 {
		data := u.ReadData()
		if status&UARTLineErrors != 0 {
			m.rx.CountError()
			RecordEvent(EvtRxError, m.protocol, uint32(status), 0)
		} else {
			m.rx.Push(data)
		}
		status = u.Status()
	}
}
