package protocol

import "testing"

func TestFrameBuilder(t *testing.T) {
	fb := NewFrameBuilder()

	fb.Byte(0xC8)
	fb.Byte(0)
	fb.Output([]byte{0x16, 1, 2})

	if fb.CurPosition() != 5 {
		t.Errorf("Expected position 5, got %d", fb.CurPosition())
	}

	// Patch the length byte once the payload is known
	fb.Update(1, byte(len(fb.DataSince(2))))
	result := fb.Result()
	if result[1] != 3 {
		t.Errorf("Expected length byte 3, got %d", result[1])
	}

	fb.Uint16BE(0x1234)
	since := fb.DataSince(5)
	if len(since) != 2 || since[0] != 0x12 || since[1] != 0x34 {
		t.Errorf("Uint16BE wrote %v, expected [0x12 0x34]", since)
	}

	fb.Reset()
	if fb.CurPosition() != 0 || fb.Overflowed() {
		t.Errorf("After reset, expected empty builder, got pos %d overflow %v", fb.CurPosition(), fb.Overflowed())
	}
}

func TestFrameBuilderOverflow(t *testing.T) {
	fb := NewFrameBuilder()
	fb.Output(make([]byte, FrameMax-1))
	fb.Output([]byte{1, 2})

	if !fb.Overflowed() {
		t.Error("Expected overflow after writing past FrameMax")
	}
	if fb.CurPosition() != FrameMax {
		t.Errorf("Expected position %d, got %d", FrameMax, fb.CurPosition())
	}

	fb.Byte(3)
	if fb.CurPosition() != FrameMax {
		t.Errorf("Byte on a full builder moved position to %d", fb.CurPosition())
	}
}

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	written := fifo.Write([]byte{1, 2, 3, 4, 5})
	if written != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", written)
	}

	readBuf := make([]byte, 3)
	read := fifo.Read(readBuf)
	if read != 3 {
		t.Errorf("Expected to read 3 bytes, read %d", read)
	}
	if readBuf[0] != 1 || readBuf[1] != 2 || readBuf[2] != 3 {
		t.Errorf("Read data mismatch: got %v", readBuf)
	}

	b, ok := fifo.ReadByte()
	if !ok || b != 4 {
		t.Errorf("ReadByte returned %d, %v; expected 4, true", b, ok)
	}
	if fifo.Available() != 1 {
		t.Errorf("Expected 1 available, got %d", fifo.Available())
	}

	fifo.Reset()
	written = fifo.Write(make([]byte, 12))
	if written != 9 { // one slot reserved
		t.Errorf("Expected to write 9 bytes to size-10 FIFO, wrote %d", written)
	}
	if fifo.Free() != 0 {
		t.Errorf("Full FIFO should have 0 free, got %d", fifo.Free())
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})
	fifo.Read(make([]byte, 2))

	written := fifo.Write([]byte{5, 6})
	if written != 2 {
		t.Fatalf("Expected to write 2 bytes across the wrap, wrote %d", written)
	}

	out := make([]byte, 4)
	n := fifo.Read(out)
	if n != 4 {
		t.Fatalf("Expected 4 bytes, got %d", n)
	}
	for i, want := range []byte{3, 4, 5, 6} {
		if out[i] != want {
			t.Errorf("Byte %d: expected %d, got %d", i, want, out[i])
		}
	}
	if _, ok := fifo.ReadByte(); ok {
		t.Error("FIFO should be empty after reading everything")
	}
}
