package core

import "testing"

func TestTimerListOrder(t *testing.T) {
	resetTimers()
	defer resetTimers()

	var order []uint32
	handler := func(tm *Timer) uint8 {
		order = append(order, tm.WakeTime)
		return SF_DONE
	}

	timers := []*Timer{
		{WakeTime: 300, Handler: handler},
		{WakeTime: 100, Handler: handler},
		{WakeTime: 200, Handler: handler},
	}
	for _, tm := range timers {
		ScheduleTimer(tm)
	}

	currentTime = 250
	TimerDispatch()
	if len(order) != 2 || order[0] != 100 || order[1] != 200 {
		t.Fatalf("Expected timers 100 and 200 to run in order, got %v", order)
	}

	currentTime = 300
	TimerDispatch()
	if len(order) != 3 || order[2] != 300 {
		t.Errorf("Expected timer 300 to run last, got %v", order)
	}
	if timerList != nil {
		t.Error("Timer list should be empty")
	}
}

func TestTimerReschedule(t *testing.T) {
	resetTimers()
	defer resetTimers()

	runs := 0
	tm := &Timer{WakeTime: 1000}
	tm.Handler = func(tm *Timer) uint8 {
		runs++
		tm.WakeTime += 1000
		return SF_RESCHEDULE
	}
	ScheduleTimer(tm)

	for now := uint32(0); now <= 5500; now += 500 {
		currentTime = now
		TimerDispatch()
	}
	if runs != 5 {
		t.Errorf("Expected 5 runs, got %d", runs)
	}
	if timerList != tm || tm.WakeTime != 6000 {
		t.Errorf("Expected timer requeued for 6000, got %d", tm.WakeTime)
	}
}

func TestTimerWrap(t *testing.T) {
	resetTimers()
	defer resetTimers()

	ran := false
	late := &Timer{WakeTime: 0xFFFFFF00, Handler: func(*Timer) uint8 { return SF_DONE }}
	wrapped := &Timer{WakeTime: 0x100, Handler: func(*Timer) uint8 { ran = true; return SF_DONE }}
	ScheduleTimer(wrapped)
	ScheduleTimer(late)

	if timerList != late {
		t.Fatal("Timer before the wrap should be first")
	}

	currentTime = 0x10
	TimerDispatch()
	if ran {
		t.Error("Wrapped timer ran early")
	}
	currentTime = 0x100
	TimerDispatch()
	if !ran {
		t.Error("Wrapped timer did not run")
	}
}

func TestCancelTimer(t *testing.T) {
	resetTimers()
	defer resetTimers()

	a := &Timer{WakeTime: 10, Handler: func(*Timer) uint8 { return SF_DONE }}
	b := &Timer{WakeTime: 20, Handler: func(*Timer) uint8 {
		t.Error("Cancelled timer ran")
		return SF_DONE
	}}
	ScheduleTimer(a)
	ScheduleTimer(b)
	CancelTimer(b)
	CancelTimer(b)

	currentTime = 100
	TimerDispatch()
	if timerList != nil {
		t.Error("Timer list should be empty")
	}
}
