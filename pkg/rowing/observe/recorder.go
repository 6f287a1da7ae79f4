package observe

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/itohio/rowengine/pkg/rowing/engine"
	"github.com/itohio/rowengine/pkg/rowing/snapshot"
)

// SessionRecorder writes one CSV row per completed stroke, standing in
// for the out-of-scope flash-backed FIT-file emitter. It only reacts to
// OnStrokeEnd: per-impulse metrics updates are too fine-grained for a
// session log.
type SessionRecorder struct {
	w         *csv.Writer
	wroteHead bool
}

var _ engine.Observer = (*SessionRecorder)(nil)

// NewSessionRecorder wraps w in a csv.Writer and writes the header row on
// the first stroke.
func NewSessionRecorder(w io.Writer) *SessionRecorder {
	return &SessionRecorder{w: csv.NewWriter(w)}
}

// OnStrokeStart does nothing: the recorder logs completed strokes.
func (r *SessionRecorder) OnStrokeStart(snapshot.Snapshot) {}

// OnMetricsUpdate does nothing: the recorder logs completed strokes.
func (r *SessionRecorder) OnMetricsUpdate(snapshot.Snapshot) {}

// OnStrokeEnd appends one row for the stroke just completed.
func (r *SessionRecorder) OnStrokeEnd(s snapshot.Snapshot) {
	if !r.wroteHead {
		r.w.Write([]string{"session_id", "stroke", "total_time", "distance", "speed", "power", "drag_factor", "spm"})
		r.wroteHead = true
	}
	r.w.Write([]string{
		s.SessionID,
		fmt.Sprintf("%d", s.StrokeCount),
		fmt.Sprintf("%.4f", s.TotalTime),
		fmt.Sprintf("%.4f", s.Distance),
		fmt.Sprintf("%.4f", s.Speed),
		fmt.Sprintf("%.2f", s.Power),
		fmt.Sprintf("%.6f", s.DragFactor),
		fmt.Sprintf("%.2f", s.StrokesPerMinute),
	})
	r.w.Flush()
}
