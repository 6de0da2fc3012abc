package core

import "sync/atomic"

// RxFIFOSize is the receive ring capacity, a power of two
const RxFIFOSize = 128

// LineStats are the receive counters of a module UART
type LineStats struct {
	Bytes   uint32 // bytes accepted into the FIFO
	Errors  uint32 // overrun, noise, framing and parity errors
	Dropped uint32 // good bytes rejected because the FIFO was full
}

// RxFIFO is a single-producer/single-consumer byte ring. The UART interrupt
// is the only producer, the telemetry task the only consumer. A full ring
// rejects new bytes; stored bytes are never overwritten.
type RxFIFO struct {
	buf  [RxFIFOSize]byte
	head uint32 // next write, owned by the producer
	tail uint32 // next read, owned by the consumer

	bytes   uint32
	errors  uint32
	dropped uint32
}

// Push stores one byte. Returns false and counts a drop when full.
func (f *RxFIFO) Push(b byte) bool {
	head := atomic.LoadUint32(&f.head)
	if head-atomic.LoadUint32(&f.tail) >= RxFIFOSize {
		atomic.AddUint32(&f.dropped, 1)
		return false
	}
	f.buf[head%RxFIFOSize] = b
	atomic.StoreUint32(&f.head, head+1)
	atomic.AddUint32(&f.bytes, 1)
	return true
}

// CountError records one line error
func (f *RxFIFO) CountError() {
	atomic.AddUint32(&f.errors, 1)
}

// Pop removes the oldest byte
func (f *RxFIFO) Pop() (byte, bool) {
	tail := atomic.LoadUint32(&f.tail)
	if tail == atomic.LoadUint32(&f.head) {
		return 0, false
	}
	b := f.buf[tail%RxFIFOSize]
	atomic.StoreUint32(&f.tail, tail+1)
	return b, true
}

// Drain moves up to len(dst) bytes out of the ring and returns the count
// together with the current error counter
func (f *RxFIFO) Drain(dst []byte) (int, uint32) {
	n := 0
	for n < len(dst) {
		b, ok := f.Pop()
		if !ok {
			break
		}
		dst[n] = b
		n++
	}
	return n, atomic.LoadUint32(&f.errors)
}

// Len returns the number of buffered bytes
func (f *RxFIFO) Len() int {
	return int(atomic.LoadUint32(&f.head) - atomic.LoadUint32(&f.tail))
}

// Stats returns a snapshot of the line counters
func (f *RxFIFO) Stats() LineStats {
	return LineStats{
		Bytes:   atomic.LoadUint32(&f.bytes),
		Errors:  atomic.LoadUint32(&f.errors),
		Dropped: atomic.LoadUint32(&f.dropped),
	}
}

// Clear empties the ring and resets the counters. Only call while the
// receive interrupt is disabled (line restart).
func (f *RxFIFO) Clear() {
	atomic.StoreUint32(&f.head, 0)
	atomic.StoreUint32(&f.tail, 0)
	atomic.StoreUint32(&f.bytes, 0)
	atomic.StoreUint32(&f.errors, 0)
	atomic.StoreUint32(&f.dropped, 0)
}
