// Package notify publishes conversation events so interested consumers can
// refresh their message view after the pipeline writes to the log. The
// pipeline itself never depends on these events; they are a caller-driven
// refresh trigger, not a delivery guarantee.
package notify

import (
	"context"

	"readerapp/pkg/chatlog"
)

// Notifier announces an appended conversation message.
type Notifier interface {
	MessageAppended(ctx context.Context, msg chatlog.Message) error
	Close() error
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

// MessageAppended implements Notifier.
func (NopNotifier) MessageAppended(context.Context, chatlog.Message) error { return nil }

// Close implements Notifier.
func (NopNotifier) Close() error { return nil }
