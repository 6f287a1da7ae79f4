//go:build !tinygo

package hw

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// SimPin is a synthetic edge generator for host development and testing:
// it fires its callback at a configurable interval, optionally jittered,
// standing in for a real flywheel magnet sensor.
type SimPin struct {
	interval atomic.Int64 // nanoseconds
	jitter   float64
	rng      *rand.Rand

	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
}

// NewSimPin creates a SimPin that would fire roughly every interval, with
// jitter in [0,1) applied as a fractional +/- spread around interval.
func NewSimPin(interval time.Duration, jitter float64, seed int64) *SimPin {
	p := &SimPin{
		jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	p.interval.Store(int64(interval))
	return p
}

// SetInterrupt starts the generator goroutine, calling callback on every
// synthetic edge until Close is called.
func (p *SimPin) SetInterrupt(change PinChange, callback func()) error {
	p.started.Store(true)
	go p.run(callback)
	return nil
}

func (p *SimPin) run(callback func()) {
	defer close(p.done)
	for {
		d := p.nextInterval()
		t := time.NewTimer(d)
		select {
		case <-p.stop:
			t.Stop()
			return
		case <-t.C:
			callback()
		}
	}
}

func (p *SimPin) nextInterval() time.Duration {
	base := time.Duration(p.interval.Load())
	if p.jitter <= 0 {
		return base
	}
	spread := float64(base) * p.jitter
	offset := (p.rng.Float64()*2 - 1) * spread
	d := time.Duration(float64(base) + offset)
	if d <= 0 {
		d = time.Nanosecond
	}
	return d
}

// SetRate changes the simulated edge interval, e.g. to model the athlete
// speeding up or slowing down.
func (p *SimPin) SetRate(interval time.Duration) {
	p.interval.Store(int64(interval))
}

// Close stops the generator goroutine.
func (p *SimPin) Close() error {
	close(p.stop)
	if p.started.Load() {
		<-p.done
	}
	return nil
}
