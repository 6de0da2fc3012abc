package serial

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"extmod/core"
	"extmod/host/sim"
)

// loopPort is an in-memory Port: writes are captured, reads come from in
type loopPort struct {
	out bytes.Buffer
	in  bytes.Buffer
}

func (p *loopPort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *loopPort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *loopPort) Close() error                { return nil }
func (p *loopPort) Flush() error                { return nil }

func TestMirrorTransmit(t *testing.T) {
	port := &loopPort{}
	m := NewMirror(port, zerolog.Nop())

	frame := []byte{0x7E, 3, 1, 2, 3}
	require.NoError(t, m.Transmit(core.DMATransfer{Target: core.DMAToUARTData, Bytes: frame}))
	require.Equal(t, frame, port.out.Bytes())
	require.Equal(t, len(frame), m.Sent())

	err := m.Transmit(core.DMATransfer{Target: core.DMAToTimerReload, Words: []uint16{1}})
	require.Error(t, err)
}

func TestMirrorReceive(t *testing.T) {
	port := &loopPort{}
	m := NewMirror(port, zerolog.Nop())

	port.in.Write([]byte{1, 2, 3})
	n, err := m.Poll()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, m.Buffered())

	// An empty port reports io.EOF, which is not an error for Poll
	_, err = m.Poll()
	require.NoError(t, err)

	uart := &sim.UART{}
	uart.SetEnabled(true)
	uart.SetRxInterrupt(true)
	require.True(t, m.Feed(uart))
	require.Equal(t, 3, uart.Pending())
	require.Zero(t, m.Buffered())
	require.Equal(t, byte(1), uart.ReadData())
}

func TestMirrorDropsWhenFull(t *testing.T) {
	port := &loopPort{}
	m := NewMirror(port, zerolog.Nop())

	port.in.Write(make([]byte, MirrorBufferSize+10))
	for {
		n, err := m.Poll()
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	require.Equal(t, MirrorBufferSize-1, m.Buffered())
	require.Equal(t, 11, m.Dropped())

	buf, err := io.ReadAll(io.LimitReader(m, int64(m.Buffered())))
	require.NoError(t, err)
	require.Len(t, buf, MirrorBufferSize-1)
}

func TestRelayFrames(t *testing.T) {
	port := &loopPort{}
	m := NewMirror(port, zerolog.Nop())

	frames := [][]byte{{0xEE, 2, 0x16, 0xAA}, {0xEE, 3, 0x16, 1, 2}}
	n, err := RelayFrames(m, frames)
	require.NoError(t, err)
	require.Equal(t, 9, n)
	require.Equal(t, []byte{0xEE, 2, 0x16, 0xAA, 0xEE, 3, 0x16, 1, 2}, port.out.Bytes())
	require.Equal(t, 9, m.Sent())

	buf := make([]byte, 4)
	n, err = DrainReplies(m, buf)
	require.NoError(t, err)
	require.Zero(t, n)

	port.in.Write([]byte{0xEA, 4, 0x14, 9, 9, 9})
	_, err = m.Poll()
	require.NoError(t, err)
	n, err = DrainReplies(m, buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0xEA, 4, 0x14, 9}, buf)
	require.Equal(t, 2, m.Buffered())
}
