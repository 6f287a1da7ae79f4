//go:build tinygo

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/rowengine/internal/logger"
	"github.com/itohio/rowengine/pkg/rowing/hw"
	"github.com/itohio/rowengine/pkg/rowing/impulse"
	"github.com/itohio/rowengine/pkg/rowing/observe"
	"github.com/itohio/rowengine/pkg/rowing/session"
	"github.com/itohio/rowengine/pkg/rowing/settings"
)

// Hardware configuration - adjust for your board.
const sensorPin = machine.GPIO2

func main() {
	sensorPin.Configure(machine.PinConfig{Mode: machine.PinInputPullUp})

	pin := hw.NewMachinePin(sensorPin)
	src := impulse.NewSource(pin, impulse.NewMonotonicClock(), 32)

	rower := session.New(settings.Default(), src)
	rower.AddObserver(observe.NewFTMSNotifier(250*time.Millisecond, nil))

	if err := rower.StartSession(context.Background()); err != nil {
		logger.Log.Error().Err(err).Msg("starting session")
		return
	}

	for {
		time.Sleep(time.Second)
	}
}
