package frames

import "extmod/core"

// PPM slot timing in ticks
const (
	PPMCenter        = 3000 // 1.5 ms slot for a centered channel
	PPMRange         = 1024 // ±512 µs for full stick travel
	PPMExtendedRange = 1280 // ±640 µs with extended limits
	PPMMinChannels   = 4
)

// PPMProducer builds pulse-position trains. Each channel is one slot whose
// width encodes the channel value; the sync slot is sized by the train so
// the frame period stays constant.
type PPMProducer struct {
	Source         Source
	Settings       core.ModuleSettings
	ExtendedLimits bool

	train core.PulseTrain
}

// NewPPMProducer creates a PPM producer for source
func NewPPMProducer(source Source, settings core.ModuleSettings) *PPMProducer {
	return &PPMProducer{Source: source, Settings: settings}
}

// Width returns the slot width for a channel output
func (p *PPMProducer) Width(v int16) uint16 {
	r := int32(PPMRange)
	if p.ExtendedLimits {
		r = PPMExtendedRange
	}
	return uint16(PPMCenter + clamp(int32(v), -r, r))
}

func (p *PPMProducer) channelCount() int {
	n := int(p.Settings.PPMChannels)
	if n < PPMMinChannels {
		n = PPMMinChannels
	}
	if n > core.MaxPPMChannels {
		n = core.MaxPPMChannels
	}
	return n
}

// Train computes the next pulse train
func (p *PPMProducer) Train() *core.PulseTrain {
	s := p.Settings
	p.train.Reset(s.PPMDelay, s.PPMInverted, s.PPMPeriod())

	var chans []int16
	if p.Source != nil {
		chans = p.Source.Channels()
	}
	for i := 0; i < p.channelCount(); i++ {
		p.train.Add(p.Width(int16(channel(chans, i))))
	}
	return &p.train
}

// SetupFrame implements core.FrameProducer
func (p *PPMProducer) SetupFrame(proto core.Protocol) (core.Frame, bool) {
	if proto != core.ProtocolPPM {
		return core.Frame{}, false
	}
	return core.Frame{Train: p.Train()}, true
}
