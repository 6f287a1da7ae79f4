//go:build !tinygo

// Command rower runs the rowing core against a synthetic impulse source,
// for host development and bench testing. The tinygo build
// (main_tinygo.go) runs the identical session/engine wiring against a
// real flywheel sensor.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/rowengine/internal/logger"
	"github.com/itohio/rowengine/pkg/rowing/hw"
	"github.com/itohio/rowengine/pkg/rowing/impulse"
	"github.com/itohio/rowengine/pkg/rowing/observe"
	"github.com/itohio/rowengine/pkg/rowing/session"
	"github.com/itohio/rowengine/pkg/rowing/settings"
)

func main() {
	configPath := flag.String("config", "", "optional YAML settings override")
	simRate := flag.Duration("sim-rate", 20*time.Millisecond, "synthetic impulse interval")
	flag.Parse()

	cfg := settings.Default()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			logger.Log.Error().Err(err).Msg("opening config")
			os.Exit(1)
		}
		defer f.Close()
		cfg, err = settings.LoadYAML(f)
		if err != nil {
			logger.Log.Error().Err(err).Msg("loading config")
			os.Exit(1)
		}
	}

	pin := hw.NewSimPin(*simRate, 0.1, time.Now().UnixNano())
	defer pin.Close()
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 64)

	rower := session.New(cfg, src)
	rower.AddObserver(observe.NewFTMSNotifier(250*time.Millisecond, nil))
	rower.AddObserver(observe.NewSessionRecorder(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rower.StartSession(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("starting session")
		os.Exit(1)
	}

	<-ctx.Done()
	if err := rower.EndSession(); err != nil {
		logger.Log.Error().Err(err).Msg("ending session")
	}
}
