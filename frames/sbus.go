package frames

import "extmod/core"

// SBUS frame layout
const (
	SBUSFrameSize = 25
	SBUSHeader    = 0x0F
	SBUSFooter    = 0x00
	SBUSChannels  = 16
	SBUSCenter    = 992
)

// SBUSEncoder packs 16 channels of 11 bits into a 25-byte frame and sends
// it as a timer pulse stream
type SBUSEncoder struct {
	Source Source

	frame  [SBUSFrameSize]byte
	pulses []uint16
}

// NewSBUSEncoder creates an SBUS encoder for source
func NewSBUSEncoder(source Source) *SBUSEncoder {
	return &SBUSEncoder{
		Source: source,
		pulses: make([]uint16, 0, SBUSFrameSize*12),
	}
}

// sbusValue maps a channel output onto the 11-bit SBUS range
func sbusValue(v int32) uint32 {
	return uint32(clamp(SBUSCenter+v*4/5, 0, 2047))
}

// Encode builds the frame. The result aliases the encoder.
func (e *SBUSEncoder) Encode() []byte {
	var chans []int16
	if e.Source != nil {
		chans = e.Source.Channels()
	}

	f := &e.frame
	*f = [SBUSFrameSize]byte{}
	f[0] = SBUSHeader

	var bits uint32
	var nbits uint
	pos := 1
	for i := 0; i < SBUSChannels; i++ {
		bits |= sbusValue(channel(chans, i)) << nbits
		nbits += 11
		for nbits >= 8 {
			f[pos] = byte(bits)
			pos++
			bits >>= 8
			nbits -= 8
		}
	}
	f[23] = 0 // flags: no failsafe, no frame lost
	f[24] = SBUSFooter
	return f[:]
}

// SetupFrame implements core.FrameProducer
func (e *SBUSEncoder) SetupFrame(p core.Protocol) (core.Frame, bool) {
	if p != core.ProtocolSBUS {
		return core.Frame{}, false
	}
	e.pulses = SerialPulses(e.pulses, e.Encode(), FormatSBUS)
	return core.Frame{Pulses: e.pulses}, true
}
