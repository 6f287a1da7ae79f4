// Package observe provides thin, illustrative Observer implementations
// that exercise the engine's callback contract without reimplementing the
// collaborators that sit outside this module's scope: the BLE GATT stack
// and the flash-backed session logger.
package observe

import (
	"sync"
	"time"

	"github.com/itohio/rowengine/pkg/rowing/engine"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

// FTMSNotifier holds the latest snapshot behind a mutex. Metrics updates
// are re-published no more often than minInterval; stroke starts and ends
// are always published. A real Fitness Machine Service
// characteristic writer polls Snapshot and formats the FTMS rower-data
// payload; that formatting is out of scope here.
type FTMSNotifier struct {
	mu          sync.Mutex
	last        snapshot.Snapshot
	minInterval time.Duration
	lastPublish time.Time
	onPublish   func(snapshot.Snapshot)
}

var _ engine.Observer = (*FTMSNotifier)(nil)

// NewFTMSNotifier creates a notifier re-publishing metrics updates at most
// once per minInterval (2-4 Hz is the typical BLE notification rate for
// FTMS rower data). onPublish may be nil; when set, it is invoked with the
// published snapshot on every stroke start and end, and on a metrics
// update whenever the rate limit allows a publish.
func NewFTMSNotifier(minInterval time.Duration, onPublish func(snapshot.Snapshot)) *FTMSNotifier {
	return &FTMSNotifier{minInterval: minInterval, onPublish: onPublish}
}

// OnStrokeStart stores the snapshot unconditionally: a phase transition
// is always worth republishing.
func (n *FTMSNotifier) OnStrokeStart(s snapshot.Snapshot) { n.store(s, true) }

// OnStrokeEnd stores the snapshot unconditionally.
func (n *FTMSNotifier) OnStrokeEnd(s snapshot.Snapshot) { n.store(s, true) }

// OnMetricsUpdate stores the snapshot, publishing only if minInterval has
// elapsed since the last publish.
func (n *FTMSNotifier) OnMetricsUpdate(s snapshot.Snapshot) { n.store(s, false) }

func (n *FTMSNotifier) store(s snapshot.Snapshot, force bool) {
	n.mu.Lock()
	n.last = s
	now := time.Now()
	publish := force || now.Sub(n.lastPublish) >= n.minInterval
	if publish {
		n.lastPublish = now
	}
	n.mu.Unlock()

	if publish && n.onPublish != nil {
		n.onPublish(s)
	}
}

// Snapshot returns the most recently stored snapshot, for pull consumers
// polling at their own rate.
func (n *FTMSNotifier) Snapshot() snapshot.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
