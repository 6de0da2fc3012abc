package frames

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"extmod/core"
)

func TestPPMWidth(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		value    int16
		extended bool
		width    uint16
	}{
		{0, false, 3000},
		{1024, false, 4024},
		{-1024, false, 1976},
		{2000, false, 4024},
		{-2000, false, 1976},
		{1280, true, 4280},
		{1500, true, 4280},
	}
	for _, test := range tests {
		c.Run(fmt.Sprintf("v=%d,ext=%v", test.value, test.extended), func(c *qt.C) {
			p := &PPMProducer{ExtendedLimits: test.extended}
			c.Assert(p.Width(test.value), qt.Equals, test.width)
		})
	}
}

func TestPPMTrainKeepsPeriod(t *testing.T) {
	c := qt.New(t)

	settings := core.DefaultModuleSettings()
	for _, chans := range [][]int16{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{1024, 1024, 1024, 1024, 1024, 1024, 1024, 1024},
		{-1024, 512, -512, 1024, 0, 100, -100, 7},
	} {
		c.Run(fmt.Sprint(chans), func(c *qt.C) {
			p := NewPPMProducer(Static(chans), settings)
			frame, ok := p.SetupFrame(core.ProtocolPPM)
			c.Assert(ok, qt.IsTrue)

			train := frame.Train
			c.Assert(train.Pulses(), qt.HasLen, 8)
			c.Assert(train.End()+uint32(train.Rest()), qt.Equals, settings.PPMPeriod())
			c.Assert(train.Compare(), qt.Equals, uint16(600))
		})
	}
}

func TestPPMChannelCount(t *testing.T) {
	c := qt.New(t)

	settings := core.DefaultModuleSettings()
	settings.PPMChannels = 2
	p := NewPPMProducer(Static{100}, settings)
	c.Assert(p.Train().Pulses(), qt.HasLen, PPMMinChannels)

	p.Settings.PPMChannels = 40
	c.Assert(p.Train().Pulses(), qt.HasLen, core.MaxPPMChannels)
	// Missing channels are centered
	c.Assert(p.Train().Pulses()[5], qt.Equals, uint16(PPMCenter))
}

func TestPPMOnlyForPPM(t *testing.T) {
	c := qt.New(t)
	p := NewPPMProducer(Static{}, core.DefaultModuleSettings())
	_, ok := p.SetupFrame(core.ProtocolSBUS)
	c.Assert(ok, qt.IsFalse)
}
