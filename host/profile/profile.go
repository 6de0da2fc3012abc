// Package profile loads module bench profiles from TOML files. A profile
// names the board, the protocol and the channel data a bench run uses.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"extmod/core"
)

// Bench is one bench profile
type Bench struct {
	Name         string        `toml:"name"`
	Hardware     string        `toml:"hardware"`
	Protocol     string        `toml:"protocol"`
	Frames       int           `toml:"frames"`
	SendPeriodUS uint32        `toml:"send_period_us"`
	Channels     []int16       `toml:"channels"`
	PPM          PPMConfig     `toml:"ppm"`
	SBUS         SBUSConfig    `toml:"sbus"`
	Capabilities *Capabilities `toml:"capabilities"`
	Mirror       MirrorConfig  `toml:"mirror"`
}

// PPMConfig holds the pulse-position settings
type PPMConfig struct {
	DelayUS     uint16 `toml:"delay_us"`
	Inverted    bool   `toml:"inverted"`
	FrameLength int8   `toml:"frame_length"`
	Channels    uint8  `toml:"channels"`
}

// SBUSConfig holds the SBUS settings
type SBUSConfig struct {
	Inverted bool `toml:"inverted"`
}

// Capabilities overrides flags of the built-in hardware profile
type Capabilities struct {
	AdvancedOutput      *bool `toml:"advanced_output"`
	InvertedPolarityBit *bool `toml:"inverted_polarity_bit"`
	HasUART             *bool `toml:"has_uart"`
	HasTxInverter       *bool `toml:"has_tx_inverter"`
	SmallModuleBay      *bool `toml:"small_module_bay"`
}

// MirrorConfig selects a serial adapter that receives the module UART frames
type MirrorConfig struct {
	Device     string `toml:"device"`
	Baud       int    `toml:"baud"`
	EvenParity bool   `toml:"even_parity"`
	StopBits   int    `toml:"stop_bits"`
}

// Load reads and validates a profile file
func Load(path string) (*Bench, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile load failed (%s): %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a profile, fills defaults and validates it
func Parse(data []byte) (*Bench, error) {
	var b Bench
	meta, err := toml.Decode(string(data), &b)
	if err != nil {
		return nil, fmt.Errorf("profile parse failed: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown profile key %q", undecoded[0].String())
	}

	applyDefaults(&b)

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// applyDefaults fills in missing values with the stock settings
func applyDefaults(b *Bench) {
	defaults := core.DefaultModuleSettings()

	if b.Name == "" {
		b.Name = "bench"
	}
	if b.Hardware == "" {
		b.Hardware = core.ProfileX10.Name
	}
	if b.Protocol == "" {
		b.Protocol = core.ProtocolPPM.String()
	}
	if b.Frames == 0 {
		b.Frames = 100
	}
	if b.PPM.DelayUS == 0 {
		b.PPM.DelayUS = defaults.PPMDelay
	}
	if b.PPM.Channels == 0 {
		b.PPM.Channels = defaults.PPMChannels
	}
	b.Hardware = strings.ToLower(strings.TrimSpace(b.Hardware))
	b.Protocol = strings.ToLower(strings.TrimSpace(b.Protocol))
}

// Validate checks the profile against the built-in tables
func (b *Bench) Validate() error {
	if _, ok := core.ProfileByName(b.Hardware); !ok {
		return fmt.Errorf("unknown hardware %q", b.Hardware)
	}
	p, ok := core.ParseProtocol(b.Protocol)
	if !ok || p == core.ProtocolNone {
		return fmt.Errorf("unknown protocol %q", b.Protocol)
	}
	if b.Frames < 0 {
		return fmt.Errorf("frames must be positive, got %d", b.Frames)
	}
	if int(b.PPM.Channels) > core.MaxPPMChannels {
		return fmt.Errorf("ppm channels %d exceeds %d", b.PPM.Channels, core.MaxPPMChannels)
	}
	if fl := b.PPM.FrameLength; fl < core.PPMFrameLengthMin || fl > core.PPMFrameLengthMax {
		return fmt.Errorf("ppm frame_length %d outside [%d, %d]", fl, core.PPMFrameLengthMin, core.PPMFrameLengthMax)
	}
	if len(b.Channels) > core.MaxPPMChannels {
		return fmt.Errorf("%d channel values, at most %d", len(b.Channels), core.MaxPPMChannels)
	}
	if b.Mirror.StopBits < 0 || b.Mirror.StopBits > 2 {
		return fmt.Errorf("mirror stop_bits must be 1 or 2, got %d", b.Mirror.StopBits)
	}
	return nil
}

// HardwareProfile returns the built-in profile with the overrides applied
func (b *Bench) HardwareProfile() core.HardwareProfile {
	hp, _ := core.ProfileByName(b.Hardware)
	c := b.Capabilities
	if c == nil {
		return hp
	}
	override := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	override(&hp.AdvancedOutput, c.AdvancedOutput)
	override(&hp.InvertedPolarityBit, c.InvertedPolarityBit)
	override(&hp.HasUART, c.HasUART)
	override(&hp.HasTxInverter, c.HasTxInverter)
	override(&hp.SmallModuleBay, c.SmallModuleBay)
	return hp
}

// ModuleProtocol returns the parsed protocol
func (b *Bench) ModuleProtocol() core.Protocol {
	p, _ := core.ParseProtocol(b.Protocol)
	return p
}

// Settings returns the module settings of the profile
func (b *Bench) Settings() core.ModuleSettings {
	return core.ModuleSettings{
		PPMDelay:       b.PPM.DelayUS,
		PPMInverted:    b.PPM.Inverted,
		PPMFrameLength: b.PPM.FrameLength,
		PPMChannels:    b.PPM.Channels,
		SBUSInverted:   b.SBUS.Inverted,
	}
}

// SendPeriod returns the transmission period in ticks
func (b *Bench) SendPeriod() uint32 {
	if b.SendPeriodUS != 0 {
		return core.TicksFromUS(b.SendPeriodUS)
	}
	return core.DefaultSendPeriod(b.ModuleProtocol())
}
