// Package frames holds reference frame producers for the module driver:
// they turn channel outputs into the pulse trains, timer pulse streams and
// byte frames the scheduler transmits. Channel outputs use the -1024..1024
// range of the mixer.
package frames

import "extmod/core"

// Channel output limits
const (
	ChannelMin = -1024
	ChannelMax = 1024
)

// Source supplies the current channel outputs
type Source interface {
	Channels() []int16
}

// Static is a fixed set of channel outputs
type Static []int16

// Channels implements Source
func (s Static) Channels() []int16 {
	return s
}

// SourceFunc adapts a function to Source
type SourceFunc func() []int16

// Channels implements Source
func (f SourceFunc) Channels() []int16 {
	return f()
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// channel returns output i of chans, centered when missing
func channel(chans []int16, i int) int32 {
	if i < len(chans) {
		return clamp(int32(chans[i]), ChannelMin, ChannelMax)
	}
	return 0
}

// Mux routes SetupFrame to the producer registered for each protocol
type Mux struct {
	producers map[core.Protocol]core.FrameProducer
}

// NewMux creates an empty Mux
func NewMux() *Mux {
	return &Mux{producers: make(map[core.Protocol]core.FrameProducer)}
}

// Handle registers producer for the given protocols
func (m *Mux) Handle(producer core.FrameProducer, protocols ...core.Protocol) {
	for _, p := range protocols {
		m.producers[p] = producer
	}
}

// SetupFrame implements core.FrameProducer. Protocols without a producer
// have no frame.
func (m *Mux) SetupFrame(p core.Protocol) (core.Frame, bool) {
	producer, ok := m.producers[p]
	if !ok {
		return core.Frame{}, false
	}
	return producer.SetupFrame(p)
}
