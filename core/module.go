package core

// SchedulerState is the frame scheduler state of a module slot
type SchedulerState uint8

const (
	StateIdle          SchedulerState = iota // nothing in flight
	StateTransferArmed                       // DMA transfer enabled, timer running
	StateGapWait                             // PPM: pulses out, counting down the gap
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTransferArmed:
		return "armed"
	case StateGapWait:
		return "gap-wait"
	}
	return "unknown"
}

// Stats are the scheduler counters of a module slot
type Stats struct {
	Frames               uint32 // transfers armed
	Underruns            uint32 // cycles skipped because no frame was ready
	ConsecutiveUnderruns uint32
	UnderrunAlarms       uint32
	Collisions           uint32 // arm attempts refused, transfer still enabled
	Unsupported          uint32 // dispatch reached the unsupported branch
	LastGapCompare       uint16
}

// Summary formats the counters for the debug writer
func (s Stats) Summary() string {
	return "frames=" + utoa(s.Frames) +
		" underruns=" + utoa(s.Underruns) +
		" collisions=" + utoa(s.Collisions) +
		" unsupported=" + utoa(s.Unsupported) +
		" gap=" + utoa(uint32(s.LastGapCompare))
}

// Module drives one external module slot
type Module struct {
	hw       Hardware
	settings ModuleSettings
	producer FrameProducer

	protocol Protocol
	state    SchedulerState
	frame    Frame // owned by the scheduler while a transfer is armed
	stats    Stats
	rx       RxFIFO

	sendTimer  Timer
	sendPeriod uint32
}

// NewModule binds a module slot to its peripherals and leaves it stopped
func NewModule(hw Hardware, settings ModuleSettings, producer FrameProducer) (*Module, error) {
	if err := hw.Validate(); err != nil {
		return nil, err
	}
	if producer == nil {
		return nil, ErrNoProducer
	}
	m := &Module{
		hw:       hw,
		settings: settings,
		producer: producer,
	}
	m.Stop()
	return m, nil
}

// Protocol returns the active protocol, ProtocolNone when stopped
func (m *Module) Protocol() Protocol {
	return m.protocol
}

// State returns the frame scheduler state
func (m *Module) State() SchedulerState {
	return m.state
}

// Stats returns a copy of the scheduler counters
func (m *Module) Stats() Stats {
	return m.stats
}

// Settings returns the module settings
func (m *Module) Settings() ModuleSettings {
	return m.settings
}

// SetSettings replaces the module settings. PPM and SBUS pick the new
// values up on their next frame.
func (m *Module) SetSettings(s ModuleSettings) {
	m.settings = s
}

// Profile returns the hardware profile of the slot
func (m *Module) Profile() HardwareProfile {
	return m.hw.Profile
}

// RxFIFO returns the receive ring of the module UART
func (m *Module) RxFIFO() *RxFIFO {
	return &m.rx
}

// Drain moves received bytes into dst and returns the count and the line
// error counter
func (m *Module) Drain(dst []byte) (int, uint32) {
	return m.rx.Drain(dst)
}

// Activate starts p with the start routine and line speed it needs
func (m *Module) Activate(p Protocol) error {
	switch TransportFor(p, m.hw.Profile) {
	case TransportPulseTrain:
		return m.StartPulsePosition()
	case TransportTimerPulses:
		if p == ProtocolPXX1Pulses {
			return m.StartFramedSerial()
		}
		return m.StartLegacySerial(p)
	case TransportUART:
		return m.StartInvertedUARTSerial(p, BaudRate(p))
	case TransportTelemetry:
		return m.StartTelemetryLink(p)
	}
	return ErrUnsupportedProtocol
}

func (m *Module) checkStopped() error {
	if m.protocol != ProtocolNone {
		return ErrModuleActive
	}
	return nil
}

// commit publishes the protocol and resets the scheduler for it
func (m *Module) commit(p Protocol, state SchedulerState) {
	m.protocol = p
	m.state = state
	m.stats.ConsecutiveUnderruns = 0
	RecordEvent(EvtStart, p, uint32(TransportFor(p, m.hw.Profile)), 0)
}

func (m *Module) setPower(on bool) {
	if m.hw.Power != nil {
		m.hw.Power.SetPower(on)
	}
}

func (m *Module) enableTimerIRQs(compare bool) {
	m.hw.Interrupts.EnableIRQ(IRQTimerDMA, TimerIRQPriority)
	if compare {
		m.hw.Interrupts.EnableIRQ(IRQTimerCompare, TimerIRQPriority)
	}
}

// StartPulsePosition activates PPM.
//
// The timer runs in PWM mode: the output is active while the counter is
// below the compare value (the pulse delay), the reload register holds the
// current slot width and is fed by DMA on every update event. The gap
// compare interrupt computes the next train once the current one is out.
func (m *Module) StartPulsePosition() error {
	if err := m.checkStopped(); err != nil {
		return err
	}
	profile := m.hw.Profile
	t := m.hw.Timer

	m.setPower(true)
	m.hw.Pin.Configure(PinTimer)

	t.SetRunning(false)
	t.SetTickRate(TickRate)
	t.SetCompare(m.settings.PPMCompare())
	t.SetOutput(OutputConfig{
		Inverted:   profile.polarityBit(m.settings.PPMInverted),
		MainOutput: profile.AdvancedOutput,
	})
	t.SetMode(OutputForcedActive)
	t.ForceUpdate()
	t.SetMode(OutputPWM)

	t.SetReload(PPMDefaultPeriod)
	t.SetGapCompare(PPMFirstCompare)
	t.ClearGapFlag()
	t.SetUpdateDMA(true)
	t.SetGapInterrupt(true)
	t.SetRunning(true)

	m.commit(ProtocolPPM, StateGapWait)
	m.enableTimerIRQs(true)
	return nil
}

// StartFramedSerial activates PXX1 in pulse form: a fixed 9 µs mark per
// element with the complementary output driven for differential lines.
// Frames are sent from the periodic transmission opportunity.
func (m *Module) StartFramedSerial() error {
	if err := m.checkStopped(); err != nil {
		return err
	}
	t := m.hw.Timer

	m.setPower(true)
	m.hw.Pin.Configure(PinTimer)

	t.SetRunning(false)
	t.SetTickRate(TickRate)
	t.SetCompare(PXX1PulseCompare)
	t.SetOutput(OutputConfig{
		Inverted:      m.hw.Profile.polarityBit(true),
		Complementary: true,
		MainOutput:    true,
	})
	t.SetMode(OutputForcedActive)
	t.ForceUpdate()
	t.SetMode(OutputPWM)

	t.SetReload(PXX1Reload)
	t.ClearGapFlag()
	t.SetUpdateDMA(true)
	t.SetRunning(true)

	m.commit(ProtocolPXX1Pulses, StateIdle)
	m.enableTimerIRQs(true)
	return nil
}

// StartLegacySerial activates one of the timer driven serial protocols
// (SBUS, DSM2, DSMX, multi-protocol module, AFHDS3 without an inverted
// UART). The output toggles on every update event, so the DMA stream holds
// the run length of each level.
func (m *Module) StartLegacySerial(p Protocol) error {
	if err := m.checkStopped(); err != nil {
		return err
	}
	if p == ProtocolPXX1Pulses || TransportFor(p, m.hw.Profile) != TransportTimerPulses {
		return ErrUnsupportedProtocol
	}
	t := m.hw.Timer

	m.setPower(true)
	m.hw.Pin.Configure(PinTimer)

	t.SetRunning(false)
	t.SetTickRate(TickRate)
	t.SetCompare(0)
	t.SetOutput(OutputConfig{
		Inverted:   m.hw.Profile.polarityBit(true),
		MainOutput: true,
	})
	t.SetMode(OutputForcedActive)
	t.ForceUpdate()
	t.SetMode(OutputToggle)

	t.SetReload(SerialIdleReload)
	t.ClearGapFlag()
	t.SetUpdateDMA(true)
	t.SetRunning(true)

	m.commit(p, StateIdle)
	m.enableTimerIRQs(false)
	return nil
}

// StartInvertedUARTSerial activates a UART backed protocol at baudRate,
// 8 data bits, no parity, one stop bit, with DMA transmit and interrupt
// driven receive.
func (m *Module) StartInvertedUARTSerial(p Protocol, baudRate uint32) error {
	if err := m.checkStopped(); err != nil {
		return err
	}
	if !m.hw.Profile.HasUART || m.hw.UART == nil {
		return ErrNoUART
	}
	if TransportFor(p, m.hw.Profile) != TransportUART {
		return ErrUnsupportedProtocol
	}
	u := m.hw.UART

	m.setPower(true)
	m.hw.Pin.Configure(PinUART)

	u.Reset()
	u.Configure(UARTConfig{
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
		TX:       true,
		RX:       true,
	})
	u.SetEnabled(true)

	m.rx.Clear()
	u.SetRxInterrupt(true)

	m.commit(p, StateIdle)
	m.hw.Interrupts.EnableIRQ(IRQUART, UARTIRQPriority)
	return nil
}

// StartTelemetryLink activates Crossfire or Ghost, whose frames go out on
// the telemetry port. The module timer stays off.
func (m *Module) StartTelemetryLink(p Protocol) error {
	if err := m.checkStopped(); err != nil {
		return err
	}
	if TransportFor(p, m.hw.Profile) != TransportTelemetry {
		return ErrUnsupportedProtocol
	}
	if m.hw.Telemetry == nil {
		return ErrMissingPeripheral
	}
	m.setPower(true)
	m.commit(p, StateIdle)
	return nil
}

// Stop deactivates the slot. Interrupt sources and DMA are disabled with
// the CPU interrupts masked, so no handler can run between the teardown
// steps, and the TX pin is left driven low.
func (m *Module) Stop() {
	hw := &m.hw
	state := hw.Interrupts.Disable()

	m.setPower(false)

	hw.Interrupts.DisableIRQ(IRQTimerDMA)
	hw.Interrupts.DisableIRQ(IRQTimerCompare)
	hw.Interrupts.DisableIRQ(IRQUART)

	hw.TimerDMA.Disable()
	hw.TimerDMA.ClearTransferComplete()
	hw.Timer.SetGapInterrupt(false)
	hw.Timer.SetUpdateDMA(false)
	hw.Timer.SetRunning(false)
	hw.Timer.ClearGapFlag()

	if hw.UART != nil {
		hw.UART.SetRxInterrupt(false)
		hw.UART.SetTxDMA(false)
		hw.UARTDMA.Disable()
		hw.UARTDMA.ClearTransferComplete()
		hw.UART.SetEnabled(false)
	}

	hw.Pin.Configure(PinOutput)
	hw.Pin.Set(false)

	CancelTimer(&m.sendTimer)

	prev := m.protocol
	m.protocol = ProtocolNone
	m.state = StateIdle
	m.frame = Frame{}

	hw.Interrupts.Restore(state)

	if prev != ProtocolNone {
		RecordEvent(EvtStop, prev, 0, 0)
	}
}
