package sim

import "extmod/core"

// Timer is the module pulse timer. It only holds register state; the
// Bench moves time and fires its interrupts.
type Timer struct {
	running    bool
	tickRate   uint32
	output     core.OutputConfig
	mode       core.OutputMode
	modes      []core.OutputMode
	compare    uint16
	reload     uint16
	gapCompare uint16
	gapFlag    bool
	gapIRQ     bool
	updateDMA  bool
	updates    int
}

func (t *Timer) SetRunning(on bool)              { t.running = on }
func (t *Timer) Running() bool                   { return t.running }
func (t *Timer) SetTickRate(hz uint32)           { t.tickRate = hz }
func (t *Timer) SetOutput(cfg core.OutputConfig) { t.output = cfg }
func (t *Timer) SetCompare(ticks uint16)         { t.compare = ticks }
func (t *Timer) SetReload(ticks uint16)          { t.reload = ticks }
func (t *Timer) SetGapCompare(ticks uint16)      { t.gapCompare = ticks }
func (t *Timer) ClearGapFlag()                   { t.gapFlag = false }
func (t *Timer) SetGapInterrupt(on bool)         { t.gapIRQ = on }
func (t *Timer) GapInterruptEnabled() bool       { return t.gapIRQ }
func (t *Timer) SetUpdateDMA(on bool)            { t.updateDMA = on }
func (t *Timer) ForceUpdate()                    { t.updates++ }

func (t *Timer) SetMode(mode core.OutputMode) {
	t.mode = mode
	t.modes = append(t.modes, mode)
}

// Accessors for assertions
func (t *Timer) TickRate() uint32          { return t.tickRate }
func (t *Timer) Output() core.OutputConfig { return t.output }
func (t *Timer) Mode() core.OutputMode     { return t.mode }
func (t *Timer) Compare() uint16           { return t.compare }
func (t *Timer) Reload() uint16            { return t.reload }
func (t *Timer) GapCompare() uint16        { return t.gapCompare }
func (t *Timer) UpdateDMA() bool           { return t.updateDMA }
func (t *Timer) Updates() int              { return t.updates }

// ModeHistory returns every mode written since the last reset
func (t *Timer) ModeHistory() []core.OutputMode {
	return t.modes
}

// raiseGap sets the compare flag and reports whether the interrupt would fire
func (t *Timer) raiseGap() bool {
	t.gapFlag = true
	return t.gapIRQ
}
