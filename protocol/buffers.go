package protocol

// FrameBuilder assembles one outgoing frame in a fixed buffer. Writes past
// FrameMax are dropped and reported by Overflowed.
type FrameBuilder struct {
	buf      [FrameMax]byte
	pos      int
	overflow bool
}

// NewFrameBuilder creates an empty FrameBuilder
func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{}
}

// Output appends data
func (f *FrameBuilder) Output(data []byte) {
	n := copy(f.buf[f.pos:], data)
	f.pos += n
	if n < len(data) {
		f.overflow = true
	}
}

// Byte appends one byte
func (f *FrameBuilder) Byte(b byte) {
	if f.pos >= len(f.buf) {
		f.overflow = true
		return
	}
	f.buf[f.pos] = b
	f.pos++
}

// Uint16BE appends v most significant byte first
func (f *FrameBuilder) Uint16BE(v uint16) {
	f.Byte(byte(v >> 8))
	f.Byte(byte(v))
}

// CurPosition returns the current write position
func (f *FrameBuilder) CurPosition() int {
	return f.pos
}

// Update modifies a byte at a specific position
func (f *FrameBuilder) Update(pos int, val byte) {
	if pos < f.pos {
		f.buf[pos] = val
	}
}

// DataSince returns data from a specific position to current
func (f *FrameBuilder) DataSince(pos int) []byte {
	if pos > f.pos {
		return nil
	}
	return f.buf[pos:f.pos]
}

// Result returns the assembled frame. The slice aliases the builder.
func (f *FrameBuilder) Result() []byte {
	return f.buf[:f.pos]
}

// Overflowed reports whether any write was truncated since Reset
func (f *FrameBuilder) Overflowed() bool {
	return f.overflow
}

// Reset clears the buffer
func (f *FrameBuilder) Reset() {
	f.pos = 0
	f.overflow = false
}

// FifoBuffer is a circular byte buffer for serial I/O. One slot stays free
// to tell full from empty; writes to a full buffer are truncated.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data and returns the number of bytes stored
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read reads up to len(data) bytes
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

// ReadByte removes the oldest byte
func (f *FifoBuffer) ReadByte() (byte, bool) {
	if f.read == f.write {
		return 0, false
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, true
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
