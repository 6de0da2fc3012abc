package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"extmod/core"
	"extmod/frames"
	"extmod/host/profile"
	"extmod/host/serial"
	"extmod/host/sim"
)

// session is one simulated module slot with its producers
type session struct {
	cfg      *profile.Bench
	log      zerolog.Logger
	bench    *sim.Bench
	module   *core.Module
	channels []int16

	mirror *serial.Mirror
	port   serial.Port
}

func newSession(cfg *profile.Bench, log zerolog.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		log:      log,
		bench:    sim.NewBench(cfg.HardwareProfile()),
		channels: make([]int16, core.MaxPPMChannels),
	}
	copy(s.channels, cfg.Channels)

	source := frames.SourceFunc(func() []int16 { return s.channels })
	mux := frames.NewMux()
	mux.Handle(frames.NewPPMProducer(source, cfg.Settings()), core.ProtocolPPM)
	mux.Handle(frames.NewSBUSEncoder(source), core.ProtocolSBUS)
	mux.Handle(frames.NewCRSFEncoder(source), core.ProtocolCrossfire)
	mux.Handle(frames.NewPXX2Encoder(source), core.ProtocolPXX2HighSpeed, core.ProtocolPXX2LowSpeed)

	m, err := core.NewModule(s.bench.Hardware(), cfg.Settings(), mux)
	if err != nil {
		return nil, fmt.Errorf("module: %w", err)
	}
	s.module = m
	return s, nil
}

func (s *session) attachMirror(m *serial.Mirror, port serial.Port) {
	s.mirror = m
	s.port = port
}

func (s *session) close() {
	s.module.Stop()
	if s.port != nil {
		s.port.Close()
	}
}

func (s *session) start(p core.Protocol) error {
	if err := s.module.Activate(p); err != nil {
		return fmt.Errorf("activate %s on %s: %w", p, s.module.Profile().Name, err)
	}
	s.log.Info().
		Str("protocol", p.String()).
		Uint8("transport", uint8(core.TransportFor(p, s.module.Profile()))).
		Msg("module started")
	return nil
}

// run advances the slot by n frames of the active protocol
func (s *session) run(n int) {
	p := s.module.Protocol()
	switch p {
	case core.ProtocolNone:
		s.log.Warn().Msg("module stopped, nothing to run")
		return
	case core.ProtocolPPM:
		s.runPPM(n)
		return
	}

	period := s.cfg.SendPeriod()
	if period == 0 {
		period = core.DefaultSendPeriod(p)
	}
	sent := s.bench.RunPeriodic(s.module, period, n, s.transmitted)
	if p == core.ProtocolCrossfire || p == core.ProtocolGhost {
		sent = len(s.bench.Telemetry.Sent)
		s.relayTelemetry(s.bench.Telemetry.Sent)
		s.bench.Telemetry.Sent = nil
	}
	s.log.Info().Int("cycles", n).Int("frames", sent).Uint32("period_us", core.TicksToUS(period)).Msg("run complete")
}

func (s *session) runPPM(n int) {
	run := s.bench.RunPPM(s.module, n)
	if len(run.Frames) == 0 {
		s.log.Warn().Int("skipped", run.Skipped).Msg("no PPM frames")
		return
	}
	minP, maxP := run.Frames[0].Period(), run.Frames[0].Period()
	for _, f := range run.Frames {
		if p := f.Period(); p < minP {
			minP = p
		} else if p > maxP {
			maxP = p
		}
	}
	last := run.Frames[len(run.Frames)-1]
	s.log.Info().
		Int("frames", len(run.Frames)).
		Int("skipped", run.Skipped).
		Uint32("period_min_us", core.TicksToUS(minP)).
		Uint32("period_max_us", core.TicksToUS(maxP)).
		Uint16("gap_compare", last.GapCompare).
		Int("slots", len(last.Slots)-1).
		Msg("PPM run complete")
}

// transmitted is called for every completed transfer of a periodic run
func (s *session) transmitted(t core.DMATransfer) {
	if t.Target != core.DMAToUARTData {
		s.log.Debug().Int("pulses", len(t.Words)).Msg("timer transfer")
		return
	}
	s.log.Debug().Int("len", len(t.Bytes)).Hex("frame", t.Bytes).Msg("uart transfer")
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Transmit(t); err != nil {
		s.log.Error().Err(err).Msg("mirror")
		return
	}
	if _, err := s.mirror.Poll(); err != nil {
		s.log.Error().Err(err).Msg("mirror")
		return
	}
	if s.bench.UART != nil && s.mirror.Feed(s.bench.UART) {
		s.module.OnUARTInterrupt()
	}
}

// relayTelemetry copies telemetry-link frames onto the mirror port and logs
// whatever the far end answered
func (s *session) relayTelemetry(out [][]byte) {
	if s.mirror == nil || len(out) == 0 {
		return
	}
	n, err := serial.RelayFrames(s.mirror, out)
	if err != nil {
		s.log.Error().Err(err).Msg("telemetry relay")
		return
	}
	if _, err := s.mirror.Poll(); err != nil {
		s.log.Error().Err(err).Msg("telemetry relay")
		return
	}
	reply := make([]byte, serial.MirrorBufferSize)
	r, err := serial.DrainReplies(s.mirror, reply)
	if err != nil {
		s.log.Error().Err(err).Msg("telemetry relay")
		return
	}
	ev := s.log.Debug().Int("frames", len(out)).Int("bytes", n)
	if r > 0 {
		ev = ev.Hex("reply", reply[:r])
	}
	ev.Msg("telemetry relayed")
}

func (s *session) report() {
	st := s.module.Stats()
	s.log.Info().
		Uint32("frames", st.Frames).
		Uint32("underruns", st.Underruns).
		Uint32("collisions", st.Collisions).
		Uint32("unsupported", st.Unsupported).
		Msg("scheduler")
	if s.module.UnderrunAlarm() {
		s.log.Warn().Uint32("consecutive", st.ConsecutiveUnderruns).Msg("producer is not keeping up")
	}
	if s.bench.UART != nil {
		ls := s.module.RxFIFO().Stats()
		s.log.Info().
			Uint32("bytes", ls.Bytes).
			Uint32("errors", ls.Errors).
			Uint32("dropped", ls.Dropped).
			Int("buffered", s.module.RxFIFO().Len()).
			Msg("line")
	}
	if s.log.GetLevel() <= zerolog.DebugLevel {
		core.DumpEventRing()
	}
}

// interact reads commands from in until quit or EOF
func (s *session) interact(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" || args[0] == "q" {
			return nil
		}
		if err := s.command(args, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (s *session) command(args []string, out io.Writer) error {
	switch args[0] {
	case "help", "?":
		printHelp(out)

	case "start":
		if len(args) != 2 {
			return fmt.Errorf("usage: start <protocol>")
		}
		p, ok := core.ParseProtocol(args[1])
		if !ok {
			return fmt.Errorf("unknown protocol %q", args[1])
		}
		return s.start(p)

	case "stop":
		s.module.Stop()

	case "run":
		n := s.cfg.Frames
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v <= 0 {
				return fmt.Errorf("bad frame count %q", args[1])
			}
			n = v
		}
		s.run(n)

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: set <channel> <value>")
		}
		ch, err := strconv.Atoi(args[1])
		if err != nil || ch < 1 || ch > len(s.channels) {
			return fmt.Errorf("bad channel %q", args[1])
		}
		v, err := strconv.ParseInt(args[2], 10, 16)
		if err != nil {
			return fmt.Errorf("bad value %q", args[2])
		}
		s.channels[ch-1] = int16(v)

	case "rx":
		return s.receive(args[1:])

	case "bitbang":
		return s.bitbang(args[1:], out)

	case "stats":
		st := s.module.Stats()
		fmt.Fprintf(out, "protocol=%s state=%s frames=%d underruns=%d collisions=%d unsupported=%d\n",
			s.module.Protocol(), s.module.State(), st.Frames, st.Underruns, st.Collisions, st.Unsupported)
		ls := s.module.RxFIFO().Stats()
		fmt.Fprintf(out, "rx bytes=%d errors=%d dropped=%d buffered=%d\n", ls.Bytes, ls.Errors, ls.Dropped, s.module.RxFIFO().Len())

	case "drain":
		buf := make([]byte, core.RxFIFOSize)
		n, errs := s.module.Drain(buf)
		fmt.Fprintf(out, "% X (errors=%d)\n", buf[:n], errs)

	case "events":
		for _, e := range core.Events() {
			fmt.Fprintf(out, "%8d type=%d proto=%s v1=%d v2=%d\n", e.Clock, e.EventType, e.Protocol, e.Value1, e.Value2)
		}

	default:
		return fmt.Errorf("unknown command %q (type 'help' for available commands)", args[0])
	}
	return nil
}

// receive injects bytes into the simulated UART. A byte written as "!xx"
// arrives with a framing error.
func (s *session) receive(args []string) error {
	if s.bench.UART == nil {
		return core.ErrNoUART
	}
	data := make([]byte, 0, len(args))
	status := make([]core.UARTStatus, 0, len(args))
	for _, a := range args {
		var st core.UARTStatus
		if strings.HasPrefix(a, "!") {
			st = core.UARTFraming
			a = a[1:]
		}
		v, err := strconv.ParseUint(a, 16, 8)
		if err != nil {
			return fmt.Errorf("bad byte %q", a)
		}
		data = append(data, byte(v))
		status = append(status, st)
	}
	s.bench.Receive(s.module, data, status)
	return nil
}

func (s *session) bitbang(args []string, out io.Writer) error {
	if s.module.Protocol() != core.ProtocolNone {
		return core.ErrModuleActive
	}
	for _, a := range args {
		v, err := strconv.ParseUint(a, 16, 8)
		if err != nil {
			return fmt.Errorf("bad byte %q", a)
		}
		s.bench.Pin.ResetTrace()
		s.module.SendInvertedByte(byte(v))
		var cells []string
		trace := s.bench.Pin.Trace()
		for i, e := range trace {
			level := "L"
			if e.High {
				level = "H"
			}
			end := s.bench.Clock.Now()
			if i+1 < len(trace) {
				end = trace[i+1].At
			}
			cells = append(cells, fmt.Sprintf("%s%d", level, end-e.At))
		}
		fmt.Fprintf(out, "%02X: %s\n", v, strings.Join(cells, " "))
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nAvailable commands:")
	fmt.Fprintln(out, "  help               - Show this help message")
	fmt.Fprintln(out, "  start <protocol>   - Activate a protocol (ppm, sbus, pxx2-high, crossfire, ...)")
	fmt.Fprintln(out, "  stop               - Stop the module slot")
	fmt.Fprintln(out, "  run [n]            - Run n frames")
	fmt.Fprintln(out, "  set <ch> <value>   - Set channel output (-1024..1024)")
	fmt.Fprintln(out, "  rx <hex>...        - Receive bytes on the module UART, !xx for a framing error")
	fmt.Fprintln(out, "  drain              - Drain the receive FIFO")
	fmt.Fprintln(out, "  bitbang <hex>...   - Bit-bang bytes on the stopped slot and print the cells")
	fmt.Fprintln(out, "  stats              - Print scheduler and line counters")
	fmt.Fprintln(out, "  events             - Print the event ring")
	fmt.Fprintln(out, "  quit/exit/q        - Exit the program")
	fmt.Fprintln(out)
}
