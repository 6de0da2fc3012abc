package core

// MaxPPMChannels is the largest pulse train a frame can carry
const MaxPPMChannels = 16

// PulseTrain is one PPM frame: a pulse per channel followed by the sync
// rest slot that pads the frame to Period.
//
// Each slot starts with the pulse mark (Delay) and the output idles for the
// remainder of the slot, so the delay is part of every width.
type PulseTrain struct {
	Delay    uint16 // mark length in µs
	Inverted bool
	Period   uint32 // total frame period in ticks

	slots [MaxPPMChannels + 1]uint16
	count int
}

// Reset empties the train and sets its timing parameters
func (p *PulseTrain) Reset(delay uint16, inverted bool, period uint32) {
	p.Delay = delay
	p.Inverted = inverted
	p.Period = period
	p.count = 0
}

// Add appends one channel slot. Returns false when the train is full.
func (p *PulseTrain) Add(width uint16) bool {
	if p.count >= MaxPPMChannels {
		return false
	}
	p.slots[p.count] = width
	p.count++
	return true
}

// Pulses returns the channel slots, without the rest slot
func (p *PulseTrain) Pulses() []uint16 {
	return p.slots[:p.count]
}

// End returns the tick at which the last channel slot ends
func (p *PulseTrain) End() uint32 {
	var end uint32
	for _, w := range p.slots[:p.count] {
		end += uint32(w)
	}
	return end
}

// Rest returns the sync slot length that completes the period
func (p *PulseTrain) Rest() uint16 {
	end := p.End()
	if end+PPMMinRest > p.Period {
		return PPMMinRest
	}
	if rest := p.Period - end; rest < PPMMaxRest {
		return uint16(rest)
	}
	return PPMMaxRest
}

// Compare returns the pulse compare register value (delay in ticks)
func (p *PulseTrain) Compare() uint16 {
	return p.Delay * 2
}

// GapCompare returns the compare value that raises the scheduling interrupt
// PPMGapMargin ticks before the rest slot ends
func (p *PulseTrain) GapCompare() uint16 {
	return p.Rest() - PPMGapMargin
}

// transfer writes the rest slot and returns the full DMA element stream
func (p *PulseTrain) transfer() []uint16 {
	p.slots[p.count] = p.Rest()
	return p.slots[:p.count+1]
}

// Frame is one cycle's output as produced for the active protocol.
// Exactly one field is used, matching the protocol's Transport.
type Frame struct {
	Train  *PulseTrain // pulse-position framing
	Pulses []uint16    // timer reload stream of the serial pulse protocols
	Bytes  []byte      // UART or telemetry payload
}

// FrameProducer computes the next frame. It returns false when no frame is
// ready this cycle. It is never called while a transfer referencing its
// previous buffer is in flight.
type FrameProducer interface {
	SetupFrame(p Protocol) (Frame, bool)
}

// ProducerFunc adapts a function to FrameProducer
type ProducerFunc func(p Protocol) (Frame, bool)

// SetupFrame implements FrameProducer
func (f ProducerFunc) SetupFrame(p Protocol) (Frame, bool) {
	return f(p)
}
