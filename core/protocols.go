package core

// Protocol selects the wire protocol of a module slot
type Protocol uint8

const (
	ProtocolNone Protocol = iota
	ProtocolPPM
	ProtocolPXX1Pulses
	ProtocolPXX1Serial
	ProtocolPXX2HighSpeed
	ProtocolPXX2LowSpeed
	ProtocolSBUS
	ProtocolDSM2LP45
	ProtocolDSM2
	ProtocolDSMX
	ProtocolMultimodule
	ProtocolAFHDS3
	ProtocolCrossfire
	ProtocolGhost

	protocolCount
)

var protocolNames = [protocolCount]string{
	ProtocolNone:          "none",
	ProtocolPPM:           "ppm",
	ProtocolPXX1Pulses:    "pxx1",
	ProtocolPXX1Serial:    "pxx1-serial",
	ProtocolPXX2HighSpeed: "pxx2-high",
	ProtocolPXX2LowSpeed:  "pxx2-low",
	ProtocolSBUS:          "sbus",
	ProtocolDSM2LP45:      "dsm2-lp45",
	ProtocolDSM2:          "dsm2",
	ProtocolDSMX:          "dsmx",
	ProtocolMultimodule:   "multi",
	ProtocolAFHDS3:        "afhds3",
	ProtocolCrossfire:     "crossfire",
	ProtocolGhost:         "ghost",
}

func (p Protocol) String() string {
	if p < protocolCount {
		return protocolNames[p]
	}
	return "unknown(" + itoa(int(p)) + ")"
}

// ParseProtocol looks a protocol up by its String name
func ParseProtocol(name string) (Protocol, bool) {
	for i, n := range protocolNames {
		if n == name {
			return Protocol(i), true
		}
	}
	return ProtocolNone, false
}

// Transport is how a protocol's frames reach the wire
type Transport uint8

const (
	TransportNone        Transport = iota
	TransportPulseTrain            // PPM: timer DMA plus gap compare interrupt
	TransportTimerPulses           // timer DMA into the reload register, toggle or PWM output
	TransportUART                  // module UART with TX DMA
	TransportTelemetry             // telemetry port sender
)

// TransportFor returns the transport used for p on the given hardware
func TransportFor(p Protocol, profile HardwareProfile) Transport {
	switch p {
	case ProtocolPPM:
		return TransportPulseTrain
	case ProtocolPXX1Pulses, ProtocolSBUS, ProtocolDSM2LP45, ProtocolDSM2,
		ProtocolDSMX, ProtocolMultimodule:
		return TransportTimerPulses
	case ProtocolPXX1Serial:
		if profile.SmallModuleBay && profile.HasUART {
			return TransportUART
		}
	case ProtocolPXX2HighSpeed, ProtocolPXX2LowSpeed:
		if profile.HasUART {
			return TransportUART
		}
	case ProtocolAFHDS3:
		if profile.HasUART && profile.HasTxInverter {
			return TransportUART
		}
		return TransportTimerPulses
	case ProtocolCrossfire, ProtocolGhost:
		return TransportTelemetry
	}
	return TransportNone
}

// Baud rates of the UART backed protocols
const (
	BaudPXX1Serial    = 420000
	BaudPXX2HighSpeed = 450000
	BaudPXX2LowSpeed  = 115200
	BaudAFHDS3        = 115200
	BaudCrossfire     = 400000
	BaudGhost         = 420000
)

// BaudRate returns the line speed of a byte oriented protocol, zero for the
// timer driven ones
func BaudRate(p Protocol) uint32 {
	switch p {
	case ProtocolPXX1Serial:
		return BaudPXX1Serial
	case ProtocolPXX2HighSpeed:
		return BaudPXX2HighSpeed
	case ProtocolPXX2LowSpeed:
		return BaudPXX2LowSpeed
	case ProtocolAFHDS3:
		return BaudAFHDS3
	case ProtocolCrossfire:
		return BaudCrossfire
	case ProtocolGhost:
		return BaudGhost
	}
	return 0
}
