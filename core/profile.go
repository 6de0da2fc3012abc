package core

// HardwareProfile describes the board revision behind a module slot. It is
// selected once at startup and read by every hardware-facing routine.
type HardwareProfile struct {
	Name string

	// AdvancedOutput boards route the TX pin to timer channel 3 of an
	// advanced timer and need the main output enable bit.
	AdvancedOutput bool

	// InvertedPolarityBit boards have the output polarity bit wired the
	// other way round, so "normal" PPM/SBUS polarity sets it.
	InvertedPolarityBit bool

	HasUART        bool // dedicated module UART with TX DMA
	HasTxInverter  bool // hardware inverter in front of the UART TX pin
	SmallModuleBay bool // small form factor bay, PXX1 runs over the UART
}

// Built-in profiles
var (
	ProfileX10 = HardwareProfile{
		Name:           "x10",
		AdvancedOutput: true,
		HasUART:        true,
		HasTxInverter:  true,
	}
	ProfileHorusRev13 = HardwareProfile{
		Name:           "horus-rev13",
		AdvancedOutput: true,
		HasUART:        true,
	}
	ProfileHorusLegacy = HardwareProfile{
		Name: "horus",
	}
	ProfileNV14 = HardwareProfile{
		Name:                "nv14",
		InvertedPolarityBit: true,
		HasUART:             true,
		HasTxInverter:       true,
		SmallModuleBay:      true,
	}
)

var builtinProfiles = []HardwareProfile{
	ProfileX10, ProfileHorusRev13, ProfileHorusLegacy, ProfileNV14,
}

// ProfileByName returns a built-in profile
func ProfileByName(name string) (HardwareProfile, bool) {
	for _, p := range builtinProfiles {
		if p.Name == name {
			return p, true
		}
	}
	return HardwareProfile{}, false
}

// polarityBit converts a logical "inverted" request into the value of the
// hardware polarity bit
func (p HardwareProfile) polarityBit(inverted bool) bool {
	if p.InvertedPolarityBit {
		return !inverted
	}
	return inverted
}
