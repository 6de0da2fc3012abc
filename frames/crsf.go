package frames

import (
	"extmod/core"
	"extmod/protocol"
)

// Crossfire frame constants
const (
	CRSFModuleAddress      = 0xEE
	CRSFFrameRCChannels    = 0x16
	CRSFRCPayloadSize      = 22
	CRSFRCFrameSize        = 26 // address, length, type, payload, crc
	CRSFChannelCenter      = 992
	CRSFChannelValueMin    = 172
	CRSFChannelValueMax    = 1811
	crsfChannelCount       = 16
	crsfLengthExcludingCRC = 2 // address and length bytes are not counted
)

// CRSFEncoder builds RC channel frames for a Crossfire module
type CRSFEncoder struct {
	Source Source

	fb protocol.FrameBuilder
}

// NewCRSFEncoder creates a Crossfire encoder for source
func NewCRSFEncoder(source Source) *CRSFEncoder {
	return &CRSFEncoder{Source: source}
}

func crsfValue(v int32) uint32 {
	return uint32(clamp(CRSFChannelCenter+v*4/5, CRSFChannelValueMin, CRSFChannelValueMax))
}

// Encode builds the frame. The result aliases the encoder.
func (e *CRSFEncoder) Encode() []byte {
	var chans []int16
	if e.Source != nil {
		chans = e.Source.Channels()
	}

	fb := &e.fb
	fb.Reset()
	fb.Byte(CRSFModuleAddress)
	fb.Byte(CRSFRCFrameSize - crsfLengthExcludingCRC)
	fb.Byte(CRSFFrameRCChannels)

	var bits uint32
	var nbits uint
	for i := 0; i < crsfChannelCount; i++ {
		bits |= crsfValue(channel(chans, i)) << nbits
		nbits += 11
		for nbits >= 8 {
			fb.Byte(byte(bits))
			bits >>= 8
			nbits -= 8
		}
	}
	fb.Byte(protocol.CRC8(fb.DataSince(2)))
	return fb.Result()
}

// SetupFrame implements core.FrameProducer
func (e *CRSFEncoder) SetupFrame(p core.Protocol) (core.Frame, bool) {
	if p != core.ProtocolCrossfire {
		return core.Frame{}, false
	}
	return core.Frame{Bytes: e.Encode()}, true
}
