package core

// PPM frame timing, in ticks
const (
	PPMDefaultPeriod = 45000 // 22.5 ms
	PPMFirstCompare  = 40000 // first frame is computed 20 ms after start
	PPMGapMargin     = 4000  // gap interrupt fires 2 ms before the frame ends
	PPMMinRest       = 9000  // shortest sync gap the producer may emit
	PPMMaxRest       = 0xFFFF
)

// PPM frame length extension bounds, in 0.5 ms steps. The longest period
// still fits the 16-bit reload register.
const (
	PPMFrameLengthMin = -20
	PPMFrameLengthMax = 20
)

// Fixed timer values of the serial protocols
const (
	PXX1PulseCompare = 18 // 9 µs initial pulse
	PXX1Reload       = 45000
	SerialIdleReload = 40000 // dummy period until the first DMA request
)

// UnderrunAlarmThreshold is the number of consecutive skipped frames that
// raises an underrun alarm
const UnderrunAlarmThreshold = 50

// ModuleSettings is the per-model configuration consumed by the driver
type ModuleSettings struct {
	PPMDelay       uint16 // pulse delay in µs
	PPMInverted    bool   // negative PPM polarity
	PPMFrameLength int8   // frame length extension in 0.5 ms steps
	PPMChannels    uint8
	SBUSInverted   bool
}

// DefaultModuleSettings returns the stock PPM configuration
func DefaultModuleSettings() ModuleSettings {
	return ModuleSettings{
		PPMDelay:    300,
		PPMChannels: 8,
	}
}

// PPMPeriod returns the total PPM frame period in ticks. The frame length
// extension is clamped to [PPMFrameLengthMin, PPMFrameLengthMax].
func (s ModuleSettings) PPMPeriod() uint32 {
	ext := int32(s.PPMFrameLength)
	if ext < PPMFrameLengthMin {
		ext = PPMFrameLengthMin
	} else if ext > PPMFrameLengthMax {
		ext = PPMFrameLengthMax
	}
	return uint32(int32(PPMDefaultPeriod) + ext*1000)
}

// PPMCompare returns the pulse compare value in ticks
func (s ModuleSettings) PPMCompare() uint16 {
	return s.PPMDelay * 2
}
