// Package speech adapts an external streaming speech-to-text engine into an
// explicit recording state machine. Only finalized result fragments are
// kept; interim fragments exist so callers can show live feedback but are
// never part of the transcript.
package speech

import "context"

// Result is one streamed transcription event.
type Result struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Options configure a capture session.
type Options struct {
	Locale          string
	InterimResults  bool
	SingleUtterance bool
}

// Session is one active capture stream. Results is closed when the session
// ends, whether by Stop, by the engine deciding the utterance is over, or
// by an engine error; Err reports the failure after the channel closes.
type Session interface {
	Results() <-chan Result
	Err() error
	Stop()
}

// Engine is the speech-to-text capability. Supported is checked before the
// recording control is offered at all.
type Engine interface {
	Supported() bool
	Start(ctx context.Context, opts Options) (Session, error)
}

// UnsupportedEngine is the engine variant used when no transcription
// capability is configured.
type UnsupportedEngine struct{}

// Supported implements Engine.
func (UnsupportedEngine) Supported() bool { return false }

// Start implements Engine.
func (UnsupportedEngine) Start(context.Context, Options) (Session, error) {
	return nil, ErrUnsupported
}
