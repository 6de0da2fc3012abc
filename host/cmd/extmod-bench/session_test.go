package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"extmod/core"
	"extmod/frames"
	"extmod/host/profile"
	"extmod/host/serial"
)

// bufPort is an in-memory serial.Port
type bufPort struct {
	out bytes.Buffer
	in  bytes.Buffer
}

func (p *bufPort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *bufPort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *bufPort) Close() error                { return nil }
func (p *bufPort) Flush() error                { return nil }

func newTestSession(t *testing.T, data string) *session {
	t.Helper()
	cfg, err := profile.Parse([]byte(data))
	require.NoError(t, err)
	s, err := newSession(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func TestSessionPPM(t *testing.T) {
	s := newTestSession(t, "protocol = \"ppm\"\nchannels = [100, -100]\n")
	require.NoError(t, s.start(core.ProtocolPPM))

	s.run(50)
	require.Equal(t, uint32(50), s.module.Stats().Frames)
	require.Zero(t, s.module.Stats().Underruns)
}

func TestSessionPXX2(t *testing.T) {
	s := newTestSession(t, "protocol = \"pxx2-high\"\nframes = 8\n")
	require.NoError(t, s.start(s.cfg.ModuleProtocol()))

	s.run(s.cfg.Frames)
	require.Equal(t, uint32(8), s.module.Stats().Frames)
	require.Equal(t, core.StateIdle, s.module.State())
}

func TestSessionTelemetryRelay(t *testing.T) {
	s := newTestSession(t, "protocol = \"crossfire\"\nframes = 4\n")
	port := &bufPort{}
	port.in.Write([]byte{0xEA, 2, 0x28, 0x00})
	mirror := serial.NewMirror(port, zerolog.Nop())
	s.attachMirror(mirror, port)
	require.NoError(t, s.start(core.ProtocolCrossfire))

	s.run(s.cfg.Frames)
	require.Equal(t, uint32(4), s.module.Stats().Frames)
	require.Nil(t, s.bench.Telemetry.Sent)
	require.Equal(t, mirror.Sent(), port.out.Len())
	require.Equal(t, 4*frames.CRSFRCFrameSize, port.out.Len())
	require.Equal(t, byte(frames.CRSFModuleAddress), port.out.Bytes()[0])
	// The reply was drained, not left for the next run
	require.Zero(t, mirror.Buffered())
}

func TestSessionNoProducer(t *testing.T) {
	s := newTestSession(t, "protocol = \"dsmx\"\n")
	require.NoError(t, s.start(core.ProtocolDSMX))

	s.run(3)
	require.Equal(t, uint32(3), s.module.Stats().Underruns)
	require.Zero(t, s.module.Stats().Frames)
}

func TestInteractive(t *testing.T) {
	s := newTestSession(t, "hardware = \"x10\"\n")

	script := strings.Join([]string{
		"bitbang a5",
		"start pxx2-low",
		"rx 01 02 !03 04",
		"drain",
		"set 1 512",
		"run 4",
		"stats",
		"bogus",
		`start "no such"`,
		"quit",
		"stop",
	}, "\n")
	var out strings.Builder
	require.NoError(t, s.interact(strings.NewReader(script), &out))

	text := out.String()
	require.Contains(t, text, "A5: H34 L35 H35 L35 H35 H35 L35 H35 L35 L34")
	require.Contains(t, text, "01 02 04 (errors=1)")
	require.Contains(t, text, "protocol=pxx2-low state=idle frames=4")
	require.Contains(t, text, `unknown command "bogus"`)
	require.Contains(t, text, `unknown protocol "no such"`)
	require.Equal(t, int16(512), s.channels[0])
	// quit ends the session before "stop"
	require.Equal(t, core.ProtocolPXX2LowSpeed, s.module.Protocol())
}
