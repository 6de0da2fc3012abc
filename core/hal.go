package core

import "errors"

// Activation and construction errors
var (
	ErrNoProducer          = errors.New("module needs a frame producer")
	ErrMissingPeripheral   = errors.New("module hardware is missing a required peripheral")
	ErrNoUART              = errors.New("module slot has no UART wired")
	ErrModuleActive        = errors.New("module slot already active, call Stop first")
	ErrUnsupportedProtocol = errors.New("protocol not supported on this hardware")
)

// PinFunction selects what drives the module TX pin
type PinFunction uint8

const (
	PinOutput PinFunction = iota // plain low-speed push-pull output
	PinTimer                     // alternate function: timer output channel
	PinUART                      // alternate function: UART TX/RX with pull-up
)

// OutputPin is the module TX pin
type OutputPin interface {
	Configure(fn PinFunction)
	Set(high bool)
}

// ModulePower switches the external module supply
type ModulePower interface {
	SetPower(on bool)
}

// OutputMode is the timer output compare mode
type OutputMode uint8

const (
	OutputForcedActive OutputMode = iota // output held at its active level
	OutputPWM                            // active while counter < compare
	OutputToggle                         // toggle on every compare match
)

// OutputConfig is the electrical setup of the timer output channel
type OutputConfig struct {
	Inverted      bool // swap active level
	Complementary bool // drive the complementary output too (differential)
	MainOutput    bool // advanced timers need the main output enable bit
}

// PulseTimer is the shared 16-bit module timer. All values are in ticks of
// the prescaled clock (0.5 µs once SetTickRate(TickRate) is called).
//
// Channel "compare" is the pulse compare register (pulse delay / first mark),
// "gap compare" is the second channel used only to raise the frame
// scheduling interrupt.
type PulseTimer interface {
	SetRunning(on bool)
	Running() bool
	SetTickRate(hz uint32)
	SetOutput(cfg OutputConfig)
	SetMode(mode OutputMode)
	SetCompare(ticks uint16)
	SetReload(ticks uint16)
	SetGapCompare(ticks uint16)
	ClearGapFlag()
	SetGapInterrupt(on bool)
	GapInterruptEnabled() bool
	SetUpdateDMA(on bool)
	// ForceUpdate generates an update event so preloaded registers take
	// effect immediately.
	ForceUpdate()
}

// DMATarget is the peripheral register a transfer writes into
type DMATarget uint8

const (
	DMAToTimerReload DMATarget = iota // 16-bit elements into the auto-reload register
	DMAToUARTData                     // 8-bit elements into the UART data register
)

// DMATransfer describes one one-shot memory to peripheral transfer. Exactly
// one of Words or Bytes is set, matching Target.
type DMATransfer struct {
	Target DMATarget
	Words  []uint16
	Bytes  []byte
}

// Len returns the element count
func (t DMATransfer) Len() int {
	if t.Target == DMAToTimerReload {
		return len(t.Words)
	}
	return len(t.Bytes)
}

// DMAChannel is one DMA stream. The enable bit clears by itself when the
// transfer completes.
type DMAChannel interface {
	Enabled() bool
	Disable()
	// Load programs source, destination and count. The channel must be
	// disabled.
	Load(t DMATransfer)
	Enable(completeInterrupt bool)
	TransferComplete() bool
	ClearTransferComplete()
}

// UARTStatus mirrors the UART status register flags used by the driver
type UARTStatus uint16

const (
	UARTRxNotEmpty UARTStatus = 1 << iota
	UARTOverrun
	UARTNoise
	UARTFraming
	UARTParity
)

// UARTLineErrors is any receive line error
const UARTLineErrors = UARTOverrun | UARTNoise | UARTFraming | UARTParity

// ParityMode selects parity generation/checking
type ParityMode uint8

const (
	ParityNone ParityMode = iota
	ParityEven
	ParityOdd
)

// UARTConfig is the frame format of the module UART
type UARTConfig struct {
	BaudRate uint32
	DataBits uint8
	StopBits uint8
	Parity   ParityMode
	TX       bool
	RX       bool
}

// UARTPort is the module UART
type UARTPort interface {
	Reset()
	Configure(cfg UARTConfig)
	SetEnabled(on bool)
	SetRxInterrupt(on bool)
	SetTxDMA(on bool)
	Status() UARTStatus
	// ReadData reads the data register, which also clears RXNE and the
	// line error flags.
	ReadData() byte
}

// IRQLine names the interrupt sources owned by a module slot
type IRQLine uint8

const (
	IRQTimerDMA IRQLine = iota
	IRQTimerCompare
	IRQUART
)

// Interrupt priorities, lower is more urgent
const (
	TimerIRQPriority = 7
	UARTIRQPriority  = 6
)

// InterruptController covers the NVIC lines and the global interrupt mask
type InterruptController interface {
	EnableIRQ(line IRQLine, priority uint8)
	DisableIRQ(line IRQLine)
	Disable() InterruptState
	Restore(state InterruptState)
}

// TickCounter is a free-running 16-bit counter at TickRate
type TickCounter interface {
	Ticks() uint16
}

// ByteSender transmits a buffer on another port (the telemetry UART)
type ByteSender interface {
	SendBuffer(data []byte)
}

// Hardware is the set of peripherals behind one module slot
type Hardware struct {
	Profile    HardwareProfile
	Pin        OutputPin
	Power      ModulePower
	Timer      PulseTimer
	TimerDMA   DMAChannel
	UART       UARTPort   // nil when Profile.HasUART is false
	UARTDMA    DMAChannel // nil when Profile.HasUART is false
	Interrupts InterruptController
	Counter    TickCounter
	Telemetry  ByteSender // optional, used by Crossfire and Ghost
}

// Validate checks that the peripherals required by the profile are present
func (hw *Hardware) Validate() error {
	if hw.Pin == nil || hw.Timer == nil || hw.TimerDMA == nil || hw.Interrupts == nil {
		return ErrMissingPeripheral
	}
	if hw.Profile.HasUART && (hw.UART == nil || hw.UARTDMA == nil) {
		return ErrMissingPeripheral
	}
	return nil
}

// cpuInterrupts is an InterruptController that only knows the global mask.
// Targets wrap it with their NVIC handling.
type cpuInterrupts struct{}

func (cpuInterrupts) EnableIRQ(IRQLine, uint8) {}
func (cpuInterrupts) DisableIRQ(IRQLine)       {}

func (cpuInterrupts) Disable() InterruptState {
	return disableInterrupts()
}

func (cpuInterrupts) Restore(state InterruptState) {
	restoreInterrupts(state)
}

// CPUInterrupts returns the global interrupt mask of the running core
func CPUInterrupts() InterruptController {
	return cpuInterrupts{}
}
