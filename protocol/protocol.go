// Package protocol holds the byte-level framing helpers shared by the frame
// encoders and the host tools: frame assembly buffers, a byte FIFO and the
// checksums used on the module link.
package protocol

// Version is the driver version reported by the bench tools
const Version = "0.1.0"

// Frame size limits
const (
	FrameMax = 64 // largest frame any module protocol sends in one transfer
	FrameMin = 4  // header, length, type, checksum
)
