//go:build rp2040

package main

import (
	"machine"
	"strings"
	"time"

	"device/rp"

	"extmod/core"
	"extmod/frames"
	"extmod/protocol"
)

// defaultProtocol is started at boot. Override with
// -ldflags "-X main.defaultProtocol=sbus".
var defaultProtocol = "ppm"

var boardProfile = core.HardwareProfile{
	Name:    "pico",
	HasUART: true,
}

var (
	module     *core.Module
	pulseTimer *pioPulseTimer

	commands *protocol.FifoBuffer
	rxBuf    [core.RxFIFOSize]byte
	rxBytes  uint32
	alarmed  bool
)

func main() {
	InitUSB()
	core.SetDebugWriter(func(s string) {
		USBWriteBytes([]byte(s + "\r\n"))
	})
	core.SetDebugEnabled(true)
	core.TimerInit()

	counter := InitCounter()
	modulePowerPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	pt, err := newPIOPulseTimer(moduleTXPin)
	if err != nil {
		halt("pio: " + err.Error())
	}
	pulseTimer = pt

	timerDMA := newDMAStream(timerDMAChannel, _DREQ_PIO0_TX0, pt.txFIFO())
	timerDMA.timer = pt
	uart := newPL011(rp.UART1, rp.RESETS_RESET_UART1)
	uartDMA := newDMAStream(uartDMAChannel, _DREQ_UART1_TX, uart.dataRegister())

	telemetry := machine.UART0
	if err := telemetry.Configure(machine.UARTConfig{BaudRate: core.BaudCrossfire}); err != nil {
		halt("telemetry uart: " + err.Error())
	}

	hw := core.Hardware{
		Profile:    boardProfile,
		Pin:        &txPin{pin: moduleTXPin, pioMode: pt.pio.PinMode()},
		Power:      powerPin(modulePowerPin),
		Timer:      pt,
		TimerDMA:   timerDMA,
		UART:       uart,
		UARTDMA:    uartDMA,
		Interrupts: newNVIC(),
		Counter:    counter,
		Telemetry:  uartSender{telemetry},
	}

	channels := make(frames.Static, 8)
	settings := core.DefaultModuleSettings()
	mux := frames.NewMux()
	mux.Handle(frames.NewPPMProducer(channels, settings), core.ProtocolPPM)
	mux.Handle(frames.NewSBUSEncoder(channels), core.ProtocolSBUS)
	mux.Handle(frames.NewCRSFEncoder(channels), core.ProtocolCrossfire, core.ProtocolGhost)
	mux.Handle(frames.NewPXX2Encoder(channels), core.ProtocolPXX2HighSpeed, core.ProtocolPXX2LowSpeed)

	module, err = core.NewModule(hw, settings, mux)
	if err != nil {
		halt("module: " + err.Error())
	}
	startProtocol(defaultProtocol)

	commands = protocol.NewFifoBuffer(64)
	go usbReaderLoop()

	for {
		UpdateSystemTime()
		core.ProcessTimers()

		n, _ := module.Drain(rxBuf[:])
		rxBytes += uint32(n)

		if module.UnderrunAlarm() != alarmed {
			alarmed = !alarmed
			if alarmed {
				core.DebugPrintln("[EXTMOD] underrun alarm " + module.Stats().Summary())
			}
		}

		if line, ok := nextCommand(); ok {
			runCommand(line)
		}

		time.Sleep(100 * time.Microsecond)
	}
}

func startProtocol(name string) {
	p, ok := core.ParseProtocol(name)
	if !ok {
		core.DebugPrintln("[EXTMOD] unknown protocol " + name)
		return
	}
	module.Stop()
	if baud := core.BaudRate(p); baud != 0 && core.TransportFor(p, boardProfile) == core.TransportTelemetry {
		machine.UART0.SetBaudRate(baud)
	}
	if err := module.Activate(p); err != nil {
		core.DebugPrintln("[EXTMOD] start " + name + ": " + err.Error())
		return
	}
	if period := core.DefaultSendPeriod(p); period != 0 {
		module.SchedulePeriodic(period)
	}
}

// runCommand handles one line from the USB console
func runCommand(line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
	case "stop":
		module.Stop()
	case "stats":
		core.DebugPrintln("[EXTMOD] " + module.Protocol().String() + " " +
			module.State().String() + " " + module.Stats().Summary())
	case "events":
		core.DumpEventRing()
	case "bitbang":
		if module.Protocol() != core.ProtocolNone {
			core.DebugPrintln("[EXTMOD] bitbang needs a stopped slot")
			return
		}
		module.SendInvertedBytes([]byte(arg))
	default:
		startProtocol(cmd)
	}
}

// nextCommand pops one newline terminated line from the console buffer
func nextCommand() (string, bool) {
	var line [64]byte
	n := 0
	for n < len(line) {
		b, ok := commands.ReadByte()
		if !ok {
			break
		}
		if b == '\n' || b == '\r' {
			return string(line[:n]), true
		}
		line[n] = b
		n++
	}
	if n == len(line) {
		core.DebugPrintln("[EXTMOD] command too long")
		return "", false
	}
	// The partial line was the whole buffer; put it back until the
	// terminator arrives
	commands.Write(line[:n])
	return "", false
}

func usbReaderLoop() {
	var b [1]byte
	for {
		if USBAvailable() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		c, err := USBRead()
		if err != nil {
			continue
		}
		b[0] = c
		commands.Write(b[:])
	}
}

// uartSender implements core.ByteSender on a machine UART
type uartSender struct {
	uart *machine.UART
}

func (s uartSender) SendBuffer(data []byte) {
	s.uart.Write(data)
}

func halt(msg string) {
	for {
		core.DebugPrintln("[EXTMOD] " + msg)
		time.Sleep(time.Second)
	}
}
