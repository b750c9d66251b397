package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// State of the recorder. Unsupported is terminal.
type State string

const (
	StateIdle        State = "idle"
	StateRecording   State = "recording"
	StateUnsupported State = "unsupported"
)

var (
	// ErrUnsupported means no transcription engine is available.
	ErrUnsupported = errors.New("transcription not supported")
)

const defaultLocale = "en-US"

// HandoffFunc receives the finished transcript exactly once per session
// that produced one.
type HandoffFunc func(transcript string)

// Recorder drives the Idle -> Recording -> Idle state machine over an
// Engine. At most one session is active at a time; Start while recording
// is a guarded no-op.
type Recorder struct {
	engine  Engine
	opts    Options
	handoff HandoffFunc

	mu         sync.Mutex
	state      State
	session    Session
	transcript string
}

// NewRecorder builds a recorder. The handoff callback may be nil.
func NewRecorder(engine Engine, handoff HandoffFunc) *Recorder {
	return &Recorder{
		engine: engine,
		opts: Options{
			Locale:          defaultLocale,
			InterimResults:  true,
			SingleUtterance: true,
		},
		handoff: handoff,
		state:   StateIdle,
	}
}

// Supported reports whether the engine capability is present. Callers must
// check this before offering the recording control.
func (r *Recorder) Supported() bool {
	return r.engine != nil && r.engine.Supported()
}

// State returns the current recorder state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Transcript returns the last finished transcript still awaiting hand-off.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

// Start opens a capture session. If the capability is absent the recorder
// transitions to Unsupported and takes no further action. Starting while
// already recording is a no-op.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUnsupported:
		return ErrUnsupported
	case StateRecording:
		return nil
	}
	if r.engine == nil || !r.engine.Supported() {
		r.state = StateUnsupported
		return ErrUnsupported
	}

	session, err := r.engine.Start(ctx, r.opts)
	if err != nil {
		slog.Error("transcription start failed", "err", err)
		return err
	}
	r.transcript = ""
	r.session = session
	r.state = StateRecording
	go r.consume(session)
	return nil
}

// Stop requests the active session to end. The engine may also end the
// session on its own; both paths converge on the Recording -> Idle
// transition inside consume.
func (r *Recorder) Stop() {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// consume accumulates finalized fragments in event order until the session
// ends, then performs the edge-triggered hand-off.
func (r *Recorder) consume(session Session) {
	var sb strings.Builder
	for result := range session.Results() {
		if result.Final {
			sb.WriteString(result.Text)
		}
	}

	transcript := sb.String()
	if err := session.Err(); err != nil {
		slog.Error("transcription session error", "err", err)
		transcript = ""
	}

	r.mu.Lock()
	if r.session != session {
		// A stale session finishing after a newer one started.
		r.mu.Unlock()
		return
	}
	r.session = nil
	r.state = StateIdle
	r.transcript = transcript
	handoff := r.handoff
	if transcript == "" {
		handoff = nil
	}
	r.mu.Unlock()

	if handoff != nil {
		handoff(transcript)
	}
}

// ClearTranscript drops a pending transcript after the consumer adopts it.
func (r *Recorder) ClearTranscript() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = ""
}
