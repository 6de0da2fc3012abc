package sim

import "extmod/core"

// DMA is one DMA stream
type DMA struct {
	enabled     bool
	completeIRQ bool
	tc          bool
	transfer    core.DMATransfer

	loads           int
	enables         int
	loadWhileActive int // Load called on an enabled channel
}

func (d *DMA) Enabled() bool { return d.enabled }
func (d *DMA) Disable()      { d.enabled = false }

func (d *DMA) Load(t core.DMATransfer) {
	if d.enabled {
		d.loadWhileActive++
	}
	d.transfer = t
	d.loads++
}

func (d *DMA) Enable(completeInterrupt bool) {
	d.enabled = true
	d.completeIRQ = completeInterrupt
	d.enables++
}

func (d *DMA) TransferComplete() bool { return d.tc }
func (d *DMA) ClearTransferComplete() { d.tc = false }

// Transfer returns the last loaded transfer
func (d *DMA) Transfer() core.DMATransfer {
	return d.transfer
}

// Complete finishes the enabled transfer: the enable bit drops and the
// complete flag is set. It reports whether the complete interrupt fires.
func (d *DMA) Complete() bool {
	if !d.enabled {
		return false
	}
	d.enabled = false
	d.tc = true
	return d.completeIRQ
}

// Loads returns the number of Load calls
func (d *DMA) Loads() int { return d.loads }

// Enables returns the number of Enable calls
func (d *DMA) Enables() int { return d.enables }

// LoadWhileActive returns the number of loads that replaced a live transfer
func (d *DMA) LoadWhileActive() int { return d.loadWhileActive }
