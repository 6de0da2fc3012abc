// Command extmod-bench runs the external module driver against simulated
// peripherals and reports frame timing and line statistics. Frames sent on
// the module UART can be mirrored to a real serial adapter.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"extmod/core"
	"extmod/host/profile"
	"extmod/host/serial"
	"extmod/protocol"
)

var (
	profilePath = flag.String("profile", "", "Bench profile (TOML)")
	hardware    = flag.String("hardware", "", "Override the profile hardware (x10, horus-rev13, horus, nv14)")
	proto       = flag.String("protocol", "", "Override the profile protocol")
	frameCount  = flag.Int("frames", 0, "Override the number of frames to run")
	mirrorDev   = flag.String("mirror", "", "Serial device that receives module UART frames")
	interactive = flag.Bool("i", false, "Interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
)

func initLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "extmod-bench").Logger()
	log.Logger = logger
	return logger
}

func loadProfile() (*profile.Bench, error) {
	var b *profile.Bench
	var err error
	if *profilePath != "" {
		b, err = profile.Load(*profilePath)
	} else {
		b, err = profile.Parse(nil)
	}
	if err != nil {
		return nil, err
	}
	if *hardware != "" {
		b.Hardware = *hardware
	}
	if *proto != "" {
		b.Protocol = *proto
	}
	if *frameCount != 0 {
		b.Frames = *frameCount
	}
	if *mirrorDev != "" {
		b.Mirror.Device = *mirrorDev
	}
	return b, b.Validate()
}

func main() {
	flag.Parse()
	logger := initLogger()

	core.SetDebugWriter(func(s string) { logger.Debug().Msg(s) })
	core.SetDebugEnabled(*verbose)

	cfg, err := loadProfile()
	if err != nil {
		logger.Fatal().Err(err).Msg("profile")
	}
	logger.Info().
		Str("version", protocol.Version).
		Str("profile", cfg.Name).
		Str("hardware", cfg.Hardware).
		Str("protocol", cfg.Protocol).
		Msg("starting bench")

	s, err := newSession(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bench setup")
	}
	defer s.close()

	if cfg.Mirror.Device != "" {
		baud := cfg.Mirror.Baud
		if baud == 0 {
			baud = int(core.BaudRate(cfg.ModuleProtocol()))
		}
		line := serial.DefaultConfig(cfg.Mirror.Device, baud)
		line.EvenParity = cfg.Mirror.EvenParity
		line.StopBits = cfg.Mirror.StopBits
		port, err := serial.Open(line)
		if err != nil {
			logger.Fatal().Err(err).Msg("mirror")
		}
		s.attachMirror(serial.NewMirror(port, logger), port)
		logger.Info().Str("device", cfg.Mirror.Device).Int("baud", baud).Msg("mirroring module UART")
	}

	if *interactive {
		if err := s.interact(os.Stdin, os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("interactive")
		}
		return
	}

	if err := s.start(cfg.ModuleProtocol()); err != nil {
		logger.Fatal().Err(err).Msg("start")
	}
	s.run(cfg.Frames)
	s.report()
}
