package serial

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"tinygo.org/x/drivers"

	"extmod/core"
	"extmod/protocol"
)

// MirrorBufferSize is the receive buffer of a Mirror
const MirrorBufferSize = 256

// Injector takes bytes into a simulated receive path
type Injector interface {
	Inject(b byte, status core.UARTStatus) bool
}

// Mirror copies module UART transfers onto a real port and buffers what the
// port receives until it is fed back into the simulated UART. It satisfies
// drivers.UART, which RelayFrames and DrainReplies are written against.
type Mirror struct {
	port Port
	rx   *protocol.FifoBuffer
	log  zerolog.Logger

	sent    int
	dropped int
}

var _ drivers.UART = (*Mirror)(nil)

// NewMirror wraps port
func NewMirror(port Port, log zerolog.Logger) *Mirror {
	return &Mirror{
		port: port,
		rx:   protocol.NewFifoBuffer(MirrorBufferSize),
		log:  log,
	}
}

// Transmit writes the bytes of a UART DMA transfer to the port
func (m *Mirror) Transmit(t core.DMATransfer) error {
	if t.Target != core.DMAToUARTData {
		return fmt.Errorf("mirror: transfer targets the timer, not the UART")
	}
	if _, err := m.Write(t.Bytes); err != nil {
		return err
	}
	m.log.Debug().Int("len", len(t.Bytes)).Hex("frame", t.Bytes).Msg("mirrored frame")
	return nil
}

// Write implements io.Writer
func (m *Mirror) Write(p []byte) (int, error) {
	n, err := m.port.Write(p)
	m.sent += n
	if err != nil {
		return n, fmt.Errorf("mirror write: %w", err)
	}
	return n, nil
}

// Poll moves whatever the port has received into the receive buffer.
// A read timeout is not an error.
func (m *Mirror) Poll() (int, error) {
	var buf [64]byte
	n, err := m.port.Read(buf[:])
	if n > 0 {
		stored := m.rx.Write(buf[:n])
		if stored < n {
			m.dropped += n - stored
			m.log.Warn().Int("dropped", n-stored).Msg("mirror receive buffer full")
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("mirror read: %w", err)
	}
	return n, nil
}

// Read implements io.Reader on the receive buffer
func (m *Mirror) Read(p []byte) (int, error) {
	return m.rx.Read(p), nil
}

// Buffered implements drivers.UART
func (m *Mirror) Buffered() int {
	return m.rx.Available()
}

// Feed injects the buffered bytes into dst and reports whether the receive
// interrupt should run
func (m *Mirror) Feed(dst Injector) bool {
	fire := false
	for {
		b, ok := m.rx.ReadByte()
		if !ok {
			return fire
		}
		if dst.Inject(b, 0) {
			fire = true
		}
	}
}

// Sent returns the number of bytes written to the port
func (m *Mirror) Sent() int { return m.sent }

// Dropped returns the number of received bytes lost to a full buffer
func (m *Mirror) Dropped() int { return m.dropped }
