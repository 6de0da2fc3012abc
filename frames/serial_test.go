package frames

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"extmod/core"
	"extmod/protocol"
)

// levels expands run lengths back into one level per bit, starting with
// the start bit level
func levels(runs []uint16, bit uint16) []bool {
	var out []bool
	level := false
	for _, r := range runs {
		for i := uint16(0); i < r/bit; i++ {
			out = append(out, level)
		}
		level = !level
	}
	return out
}

func TestSerialPulsesRoundTrip(t *testing.T) {
	c := qt.New(t)

	f := FormatSBUS
	bit := f.TicksPerBit()
	c.Assert(bit, qt.Equals, uint16(20))

	runs := SerialPulses(nil, []byte{0xA5}, f)
	// Even run count: the stream ends at the idle level
	c.Assert(len(runs)%2, qt.Equals, 0)

	// start, 8 data bits LSB first, even parity, 2 stop bits
	want := []bool{false, true, false, true, false, false, true, false, true, false, true, true}
	c.Assert(levels(runs, bit), qt.DeepEquals, want)
}

func TestSerialPulsesLength(t *testing.T) {
	c := qt.New(t)

	data := []byte{0x00, 0xFF, 0x55}
	for _, f := range []SerialFormat{FormatSBUS, FormatDSM} {
		runs := SerialPulses(nil, data, f)
		var total uint32
		for _, r := range runs {
			total += uint32(r)
		}
		bitsPerChar := 1 + 8 + f.StopBits
		if f.EvenParity {
			bitsPerChar++
		}
		c.Assert(total, qt.Equals, uint32(len(data)*bitsPerChar)*uint32(f.TicksPerBit()))
	}
}

func TestSBUSFrame(t *testing.T) {
	c := qt.New(t)

	e := NewSBUSEncoder(Static{0, 1024, -1024})
	frame := e.Encode()
	c.Assert(frame, qt.HasLen, SBUSFrameSize)
	c.Assert(frame[0], qt.Equals, byte(SBUSHeader))
	c.Assert(frame[24], qt.Equals, byte(SBUSFooter))

	// channel 1 = 992 = 0x3E0
	ch1 := uint16(frame[1]) | uint16(frame[2]&0x07)<<8
	c.Assert(ch1, qt.Equals, uint16(992))
	// channel 2 = 992 + 819 = 1811
	ch2 := uint16(frame[2])>>3 | uint16(frame[3]&0x3F)<<5
	c.Assert(ch2, qt.Equals, uint16(1811))

	out, ok := e.SetupFrame(core.ProtocolSBUS)
	c.Assert(ok, qt.IsTrue)
	c.Assert(out.Pulses, qt.Not(qt.HasLen), 0)
	c.Assert(out.Bytes, qt.IsNil)
}

func TestCRSFFrame(t *testing.T) {
	c := qt.New(t)

	e := NewCRSFEncoder(Static{0})
	frame := e.Encode()
	c.Assert(frame, qt.HasLen, CRSFRCFrameSize)
	c.Assert(frame[0], qt.Equals, byte(CRSFModuleAddress))
	c.Assert(frame[1], qt.Equals, byte(24))
	c.Assert(frame[2], qt.Equals, byte(CRSFFrameRCChannels))
	c.Assert(frame[25], qt.Equals, protocol.CRC8(frame[2:25]))

	_, ok := e.SetupFrame(core.ProtocolGhost)
	c.Assert(ok, qt.IsFalse)
}

func TestPXX2Frame(t *testing.T) {
	c := qt.New(t)

	e := NewPXX2Encoder(Static{0, 1023})
	frame := e.Encode()
	payload := 2 + PXX2Channels/2*3
	c.Assert(frame, qt.HasLen, 2+payload+2)
	c.Assert(frame[0], qt.Equals, byte(PXX2Start))
	c.Assert(int(frame[1]), qt.Equals, payload)

	a := uint16(frame[4]) | uint16(frame[5]&0x0F)<<8
	b := uint16(frame[5])>>4 | uint16(frame[6])<<4
	c.Assert(a, qt.Equals, uint16(1024))
	c.Assert(b, qt.Equals, uint16(2047))

	crc := protocol.CRC16(frame[1 : len(frame)-2])
	c.Assert(frame[len(frame)-2], qt.Equals, byte(crc>>8))
	c.Assert(frame[len(frame)-1], qt.Equals, byte(crc))
}

func TestMux(t *testing.T) {
	c := qt.New(t)

	m := NewMux()
	m.Handle(NewPXX2Encoder(Static{}), core.ProtocolPXX2HighSpeed, core.ProtocolPXX2LowSpeed)

	f, ok := m.SetupFrame(core.ProtocolPXX2LowSpeed)
	c.Assert(ok, qt.IsTrue)
	c.Assert(f.Bytes, qt.Not(qt.HasLen), 0)

	_, ok = m.SetupFrame(core.ProtocolDSMX)
	c.Assert(ok, qt.IsFalse)
}
