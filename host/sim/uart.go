package sim

import "extmod/core"

type rxEntry struct {
	data   byte
	status core.UARTStatus
}

// UART is the module UART. Received bytes are queued with Inject together
// with the line error flags the hardware would report alongside them.
type UART struct {
	cfg     core.UARTConfig
	enabled bool
	rxIRQ   bool
	txDMA   bool
	resets  int
	rx      []rxEntry
}

func (u *UART) Reset() {
	*u = UART{resets: u.resets + 1, rx: u.rx[:0]}
}

func (u *UART) Configure(cfg core.UARTConfig) { u.cfg = cfg }
func (u *UART) SetEnabled(on bool)            { u.enabled = on }
func (u *UART) SetRxInterrupt(on bool)        { u.rxIRQ = on }
func (u *UART) SetTxDMA(on bool)              { u.txDMA = on }

// Status implements core.UARTPort
func (u *UART) Status() core.UARTStatus {
	if len(u.rx) == 0 {
		return 0
	}
	return core.UARTRxNotEmpty | u.rx[0].status
}

// ReadData implements core.UARTPort
func (u *UART) ReadData() byte {
	if len(u.rx) == 0 {
		return 0
	}
	e := u.rx[0]
	u.rx = u.rx[1:]
	return e.data
}

// Inject queues one received byte with its line error flags. It reports
// whether the receive interrupt would fire.
func (u *UART) Inject(b byte, status core.UARTStatus) bool {
	u.rx = append(u.rx, rxEntry{data: b, status: status})
	return u.enabled && u.rxIRQ
}

// InjectBytes queues data without errors
func (u *UART) InjectBytes(data []byte) bool {
	fire := false
	for _, b := range data {
		fire = u.Inject(b, 0)
	}
	return fire
}

// Pending returns the number of unread bytes
func (u *UART) Pending() int { return len(u.rx) }

func (u *UART) Config() core.UARTConfig { return u.cfg }
func (u *UART) Enabled() bool           { return u.enabled }
func (u *UART) RxInterrupt() bool       { return u.rxIRQ }
func (u *UART) TxDMA() bool             { return u.txDMA }
func (u *UART) Resets() int             { return u.resets }

// Sender is the telemetry port
type Sender struct {
	Sent [][]byte
}

// SendBuffer implements core.ByteSender
func (s *Sender) SendBuffer(data []byte) {
	s.Sent = append(s.Sent, append([]byte(nil), data...))
}
