// Package session is the composition root: it owns one Settings, one
// Engine, one impulse Source, and the registered observers, and runs the
// impulse worker under a cancellable context.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/itohio/rowengine/internal/logger"
	"github.com/itohio/rowengine/pkg/rowing/engine"
	"github.com/itohio/rowengine/pkg/rowing/impulse"
	"github.com/itohio/rowengine/pkg/rowing/settings"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

// Rower composes the engine with its impulse source and runs the worker
// goroutine for the lifetime of a session. mu guards sessionID/active,
// which StartSession/EndSession write and Snapshot reads, potentially
// from a different goroutine than the worker.
type Rower struct {
	engine *engine.Engine
	source *impulse.Source

	mu        sync.Mutex
	sessionID string
	active    bool

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New constructs a Rower from settings and a ready-to-arm impulse source.
// Observers must be registered with AddObserver before StartSession.
func New(s settings.Settings, src *impulse.Source) *Rower {
	return &Rower{
		engine: engine.New(s),
		source: src,
	}
}

// AddObserver registers an engine.Observer.
func (r *Rower) AddObserver(o engine.Observer) {
	r.engine.AddObserver(o)
}

// StartSession mints a session ID, resets the engine, arms the impulse
// source, and starts the worker goroutine under ctx.
func (r *Rower) StartSession(ctx context.Context) error {
	r.mu.Lock()
	r.sessionID = uuid.NewString()
	sessionID := r.sessionID
	r.mu.Unlock()

	r.engine.Reset()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.group, runCtx = errgroup.WithContext(runCtx)

	if err := r.source.Start(); err != nil {
		cancel()
		return err
	}

	r.group.Go(func() error {
		err := r.source.Run(runCtx, r.engine)
		if err != nil && err != context.Canceled {
			logger.Log.Error().Err(err).Msg("impulse worker exited")
		}
		return err
	})

	r.mu.Lock()
	r.active = true
	r.mu.Unlock()

	logger.Log.Info().Str("session_id", sessionID).Msg("session started")
	return nil
}

// EndSession stops the worker and marks the session inactive. It does not
// reset the engine: the final snapshot remains readable until the next
// StartSession.
func (r *Rower) EndSession() error {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	r.active = false
	sessionID := r.sessionID
	r.mu.Unlock()

	r.cancel()
	err := r.group.Wait()
	if err == context.Canceled {
		err = nil
	}
	logger.Log.Info().Str("session_id", sessionID).Msg("session ended")
	return err
}

// Pause detaches the impulse interrupt without ending the session.
func (r *Rower) Pause() {
	r.source.Pause()
}

// Resume re-arms the impulse interrupt.
func (r *Rower) Resume() {
	r.source.Resume()
}

// Reset returns the engine to its initial RECOVERY state, independent of
// the current session's active flag.
func (r *Rower) Reset() {
	r.engine.Reset()
}

// Snapshot returns a by-value copy of the current rowing state, with the
// active session ID and active flag attached. Safe to call concurrently
// with the running worker.
func (r *Rower) Snapshot() snapshot.Snapshot {
	r.mu.Lock()
	sessionID, active := r.sessionID, r.active
	r.mu.Unlock()

	s := r.engine.Snapshot()
	s.SessionID = sessionID
	s.Active = active
	return s
}
