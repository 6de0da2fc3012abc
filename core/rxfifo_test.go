package core

import (
	"sync"
	"testing"
)

func TestRxFIFOFullRejectsNew(t *testing.T) {
	var f RxFIFO
	for i := 0; i < RxFIFOSize; i++ {
		if !f.Push(byte(i)) {
			t.Fatalf("Push %d failed before the ring was full", i)
		}
	}
	if f.Push(0xFF) {
		t.Error("Push on a full ring should fail")
	}

	b, ok := f.Pop()
	if !ok || b != 0 {
		t.Errorf("Expected oldest byte 0, got %d (%v)", b, ok)
	}
	stats := f.Stats()
	if stats.Bytes != RxFIFOSize || stats.Dropped != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestRxFIFODrain(t *testing.T) {
	var f RxFIFO
	for _, b := range []byte{1, 2, 3} {
		f.Push(b)
	}
	f.CountError()

	dst := make([]byte, 2)
	n, errs := f.Drain(dst)
	if n != 2 || dst[0] != 1 || dst[1] != 2 || errs != 1 {
		t.Errorf("Drain returned %d %v errors=%d", n, dst, errs)
	}
	if f.Len() != 1 {
		t.Errorf("Expected 1 byte left, got %d", f.Len())
	}

	f.Clear()
	if f.Len() != 0 || f.Stats() != (LineStats{}) {
		t.Errorf("Clear left %d bytes, stats %+v", f.Len(), f.Stats())
	}
}

func TestRxFIFOConcurrent(t *testing.T) {
	var f RxFIFO
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if f.Push(byte(i)) {
				i++
			}
		}
	}()

	next := 0
	for next < total {
		b, ok := f.Pop()
		if !ok {
			continue
		}
		if b != byte(next) {
			t.Fatalf("Byte %d: expected %d, got %d", next, byte(next), b)
		}
		next++
	}
	wg.Wait()
}
