package core

import "testing"

func TestPulseTrainRest(t *testing.T) {
	var p PulseTrain
	p.Reset(300, false, PPMDefaultPeriod)
	for i := 0; i < 8; i++ {
		p.Add(1000)
	}

	if p.End() != 8000 {
		t.Errorf("Expected end 8000, got %d", p.End())
	}
	if p.Rest() != 37000 {
		t.Errorf("Expected rest 37000, got %d", p.Rest())
	}
	if p.GapCompare() != 33000 {
		t.Errorf("Expected gap compare 33000, got %d", p.GapCompare())
	}

	words := p.transfer()
	if len(words) != 9 || words[8] != 37000 {
		t.Errorf("Transfer should carry 8 slots and the rest, got %v", words)
	}
}

func TestPulseTrainMinRest(t *testing.T) {
	var p PulseTrain
	p.Reset(300, false, PPMDefaultPeriod)
	for p.Add(4000) {
	}
	if len(p.Pulses()) != MaxPPMChannels {
		t.Fatalf("Expected a full train, got %d slots", len(p.Pulses()))
	}
	if p.Rest() != PPMMinRest {
		t.Errorf("Overlong train should get the minimum rest, got %d", p.Rest())
	}
}

func TestModuleSettingsPeriod(t *testing.T) {
	s := DefaultModuleSettings()
	if s.PPMPeriod() != 45000 || s.PPMCompare() != 600 {
		t.Errorf("Unexpected defaults: period %d compare %d", s.PPMPeriod(), s.PPMCompare())
	}
	s.PPMFrameLength = -5
	if s.PPMPeriod() != 40000 {
		t.Errorf("Expected 40000, got %d", s.PPMPeriod())
	}
}

func TestModuleSettingsPeriodBounds(t *testing.T) {
	for _, tc := range []struct {
		ext    int8
		period uint32
	}{
		{PPMFrameLengthMax, 65000},
		{PPMFrameLengthMax + 1, 65000},
		{35, 65000},
		{127, 65000},
		{PPMFrameLengthMin, 25000},
		{-50, 25000},
		{-128, 25000},
	} {
		s := DefaultModuleSettings()
		s.PPMFrameLength = tc.ext
		if got := s.PPMPeriod(); got != tc.period {
			t.Errorf("Frame length %d: expected period %d, got %d", tc.ext, tc.period, got)
		}
	}
}

func TestPulseTrainMaxRest(t *testing.T) {
	s := DefaultModuleSettings()
	s.PPMFrameLength = 127
	var p PulseTrain
	p.Reset(300, false, s.PPMPeriod())
	p.Add(1000)
	if p.Rest() != 64000 {
		t.Errorf("Expected rest 64000, got %d", p.Rest())
	}

	// Periods past the reload register are cut at its width
	p.Reset(300, false, 0x20000)
	p.Add(1000)
	if p.Rest() != PPMMaxRest {
		t.Errorf("Expected rest %d, got %d", PPMMaxRest, p.Rest())
	}
	if p.GapCompare() != PPMMaxRest-PPMGapMargin {
		t.Errorf("Unexpected gap compare %d", p.GapCompare())
	}
	if words := p.transfer(); words[len(words)-1] != PPMMaxRest {
		t.Errorf("Transfer rest slot wrapped: %v", words)
	}
}
