//go:build logless

package logger

// Log is a zero-cost no-op logger for size-constrained firmware builds.
var Log = EmptyLog{}

// EmptyLog discards every call; every method returns itself so call
// chains compile unchanged.
type EmptyLog struct{}

func (l EmptyLog) Debug() EmptyLog { return l }
func (l EmptyLog) Info() EmptyLog  { return l }
func (l EmptyLog) Warn() EmptyLog  { return l }
func (l EmptyLog) Error() EmptyLog { return l }

func (l EmptyLog) Msg(string)           {}
func (l EmptyLog) Err(error) EmptyLog   { return l }
func (l EmptyLog) Str(string, string) EmptyLog   { return l }
func (l EmptyLog) Int(string, int) EmptyLog      { return l }
func (l EmptyLog) Float64(string, float64) EmptyLog { return l }
