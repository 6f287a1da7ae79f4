package impulse

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/itohio/rowengine/internal/logger"
	"github.com/itohio/rowengine/pkg/rowing/hw"
)

// Handler is the single consumer of converted inter-impulse intervals.
// *engine.Engine satisfies this.
type Handler interface {
	HandleRotationImpulse(dt float64)
}

// Source owns one GPIO pin and feeds a Handler with Δt derived from raw
// hardware edges, entirely off interrupt context.
type Source struct {
	pin   hw.Pin
	clock Clock
	ring  *Ring

	running  atomic.Bool
	firstPin atomic.Bool

	lastCycles uint32
	notify     chan struct{}
}

// NewSource creates a Source with a ring of the given queue capacity.
func NewSource(pin hw.Pin, clock Clock, queueCapacity int) *Source {
	return &Source{
		pin:    pin,
		clock:  clock,
		ring:   NewRing(queueCapacity),
		notify: make(chan struct{}, 1),
	}
}

// Start arms the hardware interrupt and begins accepting edges.
func (s *Source) Start() error {
	s.firstPin.Store(true)
	s.running.Store(true)
	return s.pin.SetInterrupt(hw.PinRising, s.edge)
}

// Pause detaches processing and drains any queued samples. No samples are
// emitted and no handler work occurs until Resume.
func (s *Source) Pause() {
	s.running.Store(false)
	s.ring.Drain()
}

// Resume clears the edge-to-edge baseline and resumes accepting edges.
func (s *Source) Resume() {
	s.firstPin.Store(true)
	s.running.Store(true)
}

// edge is the interrupt-context handler: integer-only, no allocation, no
// floating point. It primes the baseline on the first edge after
// start/resume and otherwise enqueues the wrapping-safe cycle delta.
func (s *Source) edge() {
	if !s.running.Load() {
		return
	}
	now := s.clock.Cycles()

	if s.firstPin.CompareAndSwap(true, false) {
		s.lastCycles = now
		return
	}

	delta := now - s.lastCycles // unsigned subtraction: wraparound-safe
	s.lastCycles = now

	if s.ring.TryPush(delta) {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// Run drains the queue in FIFO order, converting cycles to seconds in
// float64 only here, and feeds h until ctx is done. It is woken by the
// edge handler's scheduling hint and by a periodic fallback tick, both of
// which preserve ordering since the ring itself is the single source of
// truth.
func (s *Source) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	cps := float64(s.clock.CyclesPerSecond())
	var lastDropped uint64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.notify:
		case <-ticker.C:
		}

		for {
			v, ok := s.ring.Pop()
			if !ok {
				break
			}
			dt := float64(v) / cps
			h.HandleRotationImpulse(dt)
		}
		if dropped := s.ring.Dropped(); dropped > lastDropped {
			logger.Log.Debug().Int("dropped", int(dropped-lastDropped)).Msg("impulse queue overflow")
			lastDropped = dropped
		}
	}
}
