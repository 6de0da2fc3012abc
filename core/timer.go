package core

import "sync/atomic"

// The module timer and the bit-bang counter both run at 2 MHz
const (
	TickRate = 2000000 // 0.5 µs ticks
)

var (
	systemTicks uint32 // updated by the target from its hardware timer
	bootTime    uint64
)

// GetTime returns the current system time in ticks. It timestamps event
// ring entries.
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// GetUptime returns 64-bit uptime in ticks
func GetUptime() uint64 {
	return uint64(GetTime()) - bootTime
}

// TicksFromUS converts microseconds to ticks
func TicksFromUS(us uint32) uint32 {
	return us * (TickRate / 1000000)
}

// TicksToUS converts ticks to microseconds
func TicksToUS(ticks uint32) uint32 {
	return ticks / (TickRate / 1000000)
}

// TimerInit initializes the event clock
func TimerInit() {
	bootTime = uint64(GetTime())
}

// ProcessTimers runs due timers. Called from the calling context loop.
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
