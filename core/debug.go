package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// ModuleEvent captures a scheduler event for post-mortem analysis
type ModuleEvent struct {
	EventType uint8    // Event type code
	Protocol  Protocol // Active protocol when recorded
	Clock     uint32   // Event clock
	Value1    uint32   // Context-dependent value
	Value2    uint32   // Context-dependent value
}

// Event type codes
const (
	EvtStart         = 1 // module slot activated, v1=transport
	EvtStop          = 2 // module slot stopped
	EvtFrameArmed    = 3 // transfer armed, v1=element count, v2=gap compare
	EvtTransferEnd   = 4 // DMA transfer complete
	EvtUnderrun      = 5 // producer had no frame, v1=consecutive count
	EvtCollision     = 6 // arm refused, transfer still enabled
	EvtUnsupported   = 7 // dispatch reached the unsupported branch
	EvtRxError       = 8 // UART line error, v1=status flags
	EvtUnderrunAlarm = 9 // consecutive underruns reached the alarm threshold
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled gates DebugPrintln, off by default
	debugEnabled bool = false

	eventRing     [EventRingSize]ModuleEvent
	eventRingHead uint8
	eventsEnabled bool = true
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Not for interrupt context; ISRs use RecordEvent.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures an event in the ring buffer. Safe from interrupt
// context: no allocation, no blocking.
func RecordEvent(eventType uint8, p Protocol, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = ModuleEvent{
		EventType: eventType,
		Protocol:  p,
		Clock:     GetTime(),
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first
func Events() []ModuleEvent {
	out := make([]ModuleEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType != 0 {
			out = append(out, evt)
		}
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtStart:
		return "START"
	case EvtStop:
		return "STOP"
	case EvtFrameArmed:
		return "FRAME_ARMED"
	case EvtTransferEnd:
		return "TRANSFER_END"
	case EvtUnderrun:
		return "UNDERRUN"
	case EvtCollision:
		return "COLLISION"
	case EvtUnsupported:
		return "UNSUPPORTED!"
	case EvtRxError:
		return "RX_ERROR"
	case EvtUnderrunAlarm:
		return "UNDERRUN_ALARM!"
	}
	return "UNKNOWN"
}

// DumpEventRing outputs the event ring (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EXTMOD] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EXTMOD] " + eventName(evt.EventType) +
			" proto=" + evt.Protocol.String() +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EXTMOD] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = ModuleEvent{}
	}
	eventRingHead = 0
}
