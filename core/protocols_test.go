package core

import "testing"

func TestTransportFor(t *testing.T) {
	tests := []struct {
		p       Protocol
		profile HardwareProfile
		want    Transport
	}{
		{ProtocolPPM, ProfileHorusLegacy, TransportPulseTrain},
		{ProtocolSBUS, ProfileX10, TransportTimerPulses},
		{ProtocolPXX2HighSpeed, ProfileX10, TransportUART},
		{ProtocolPXX2HighSpeed, ProfileHorusLegacy, TransportNone},
		{ProtocolPXX1Serial, ProfileX10, TransportNone},
		{ProtocolPXX1Serial, ProfileNV14, TransportUART},
		{ProtocolAFHDS3, ProfileX10, TransportUART},
		{ProtocolAFHDS3, ProfileHorusRev13, TransportTimerPulses},
		{ProtocolCrossfire, ProfileHorusLegacy, TransportTelemetry},
		{ProtocolNone, ProfileX10, TransportNone},
	}
	for _, tc := range tests {
		if got := TransportFor(tc.p, tc.profile); got != tc.want {
			t.Errorf("TransportFor(%s, %s) = %d, expected %d", tc.p, tc.profile.Name, got, tc.want)
		}
	}
}

func TestParseProtocol(t *testing.T) {
	for p := ProtocolNone; p < protocolCount; p++ {
		got, ok := ParseProtocol(p.String())
		if !ok || got != p {
			t.Errorf("ParseProtocol(%q) = %d, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParseProtocol("pxx3"); ok {
		t.Error("Unknown name should not parse")
	}
	if Protocol(200).String() != "unknown(200)" {
		t.Errorf("Unexpected name %q", Protocol(200).String())
	}
}

func TestPolarityBit(t *testing.T) {
	if ProfileX10.polarityBit(true) != true || ProfileNV14.polarityBit(true) != false {
		t.Error("Polarity bit not flipped for inverted-bit boards")
	}
}
