package pipeline

import "time"

// State describes where a file currently is in the transformation.
type State uint8

const (
	// StateNotStarted marks files the fast filter skipped.
	StateNotStarted State = iota
	// StatePreprocessing is the syntax-extension rewrite phase.
	StatePreprocessing
	// StateExpanding is the opaque expander phase.
	StateExpanding
	// StateComposing is map composition and diagnostic remapping.
	StateComposing
	// StateCached means the result is served from or stored in the cache.
	StateCached
	// StateFailed is reachable from any state.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StatePreprocessing:
		return "preprocess"
	case StateExpanding:
		return "expand"
	case StateComposing:
		return "compose"
	case StateCached:
		return "cached"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Status captures progress within a state.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the phase is running.
	StatusWorking Status = "working"
	// StatusDone indicates the phase finished.
	StatusDone Status = "done"
	// StatusError indicates the phase failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or the overall run when File is empty).
type Event struct {
	File    string
	State   State
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; TransformAll emits from multiple goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
