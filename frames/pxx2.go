package frames

import (
	"extmod/core"
	"extmod/protocol"
)

// PXX2 frame constants
const (
	PXX2Start        = 0x7E
	PXX2TypeChannels = 0x01
	PXX2Channels     = 8
	pxx2Center       = 1024
)

// PXX2Encoder builds channel frames: start byte, length, type, flags, the
// channels packed as 12-bit pairs, and a CRC16 over length to payload end
type PXX2Encoder struct {
	Source Source
	Flags  byte

	fb protocol.FrameBuilder
}

// NewPXX2Encoder creates a PXX2 encoder for source
func NewPXX2Encoder(source Source) *PXX2Encoder {
	return &PXX2Encoder{Source: source}
}

func pxx2Value(v int32) uint16 {
	return uint16(clamp(pxx2Center+v, 0, 2047))
}

// Encode builds the frame. The result aliases the encoder.
func (e *PXX2Encoder) Encode() []byte {
	var chans []int16
	if e.Source != nil {
		chans = e.Source.Channels()
	}

	fb := &e.fb
	fb.Reset()
	fb.Byte(PXX2Start)
	fb.Byte(0) // length, patched below
	fb.Byte(PXX2TypeChannels)
	fb.Byte(e.Flags)
	for i := 0; i < PXX2Channels; i += 2 {
		a := pxx2Value(channel(chans, i))
		b := pxx2Value(channel(chans, i+1))
		fb.Byte(byte(a))
		fb.Byte(byte(a>>8) | byte(b<<4))
		fb.Byte(byte(b >> 4))
	}
	fb.Update(1, byte(len(fb.DataSince(2))))
	fb.Uint16BE(protocol.CRC16(fb.DataSince(1)))
	return fb.Result()
}

// SetupFrame implements core.FrameProducer
func (e *PXX2Encoder) SetupFrame(p core.Protocol) (core.Frame, bool) {
	switch p {
	case core.ProtocolPXX2HighSpeed, core.ProtocolPXX2LowSpeed:
		return core.Frame{Bytes: e.Encode()}, true
	}
	return core.Frame{}, false
}
