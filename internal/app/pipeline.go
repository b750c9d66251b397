package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"readerapp/pkg/ai"
	"readerapp/pkg/chatlog"
	"readerapp/pkg/notify"
)

// PipelineState tracks one request through the assistant pipeline.
type PipelineState string

const (
	PipelineIdle               PipelineState = "idle"
	PipelineSending            PipelineState = "sending"
	PipelineAwaitingGeneration PipelineState = "awaitingGeneration"
)

const systemPromptTemplate = `You are a helpful reading assistant for %q.
The user is currently on page %d.

Current page content:
---
%s
---

Help the user understand this content. Be concise and helpful. Reference specific parts of the text when relevant.
If the question isn't about this page, politely mention you only have context for the current page.`

// Pipeline sequences a chat exchange: append the user message, issue one
// generation request scoped to the current page, append the assistant
// reply. At most one request is in flight at a time; a submit while one is
// outstanding is rejected without issuing a second request.
type Pipeline struct {
	session   *Session
	log       chatlog.Store
	generator ai.TextGenerator
	notifier  notify.Notifier

	mu      sync.Mutex
	state   PipelineState
	pending string
}

// NewPipeline wires the pipeline. The notifier may be nil.
func NewPipeline(session *Session, log chatlog.Store, generator ai.TextGenerator, notifier notify.Notifier) *Pipeline {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Pipeline{
		session:   session,
		log:       log,
		generator: generator,
		notifier:  notifier,
		state:     PipelineIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submit runs one full exchange and returns the assistant's answer, or the
// fixed fallback string when generation fails. The user message is durably
// appended before the generation request is issued, so a failed request
// never loses the question from the log.
func (p *Pipeline) Submit(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	p.mu.Lock()
	if p.state != PipelineIdle {
		p.mu.Unlock()
		return "", ErrBusy
	}
	p.state = PipelineSending
	p.mu.Unlock()
	defer p.setState(PipelineIdle)

	page := p.session.CurrentPage()
	userMsg, err := p.log.Append(ctx, question, chatlog.RoleUser, page)
	if err != nil {
		return "", fmt.Errorf("append user message: %w", err)
	}
	p.announce(ctx, userMsg)

	p.setState(PipelineAwaitingGeneration)
	doc := p.session.Document()
	systemPrompt := fmt.Sprintf(systemPromptTemplate, doc.Title, page, p.session.PageContent())
	answer, err := p.generator.GenerateText(ctx, systemPrompt, question)
	if err != nil {
		slog.Error("generation request failed", "page", page, "err", err)
		return FallbackAnswer, nil
	}

	assistantMsg, err := p.log.Append(ctx, answer, chatlog.RoleAssistant, page)
	if err != nil {
		// The answer was generated; losing the log entry is not worth
		// hiding it from the caller.
		slog.Error("append assistant message failed", "err", err)
		return answer, nil
	}
	p.announce(ctx, assistantMsg)
	return answer, nil
}

func (p *Pipeline) setState(state PipelineState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func (p *Pipeline) announce(ctx context.Context, msg chatlog.Message) {
	if err := p.notifier.MessageAppended(ctx, msg); err != nil {
		slog.Warn("message notification failed", "err", err)
	}
}

// Recent returns the most recent conversation window in creation order.
func (p *Pipeline) Recent(ctx context.Context) ([]chatlog.Message, error) {
	return p.log.Recent(ctx, chatlog.RecentLimit)
}

// Clear deletes the whole conversation log. Irreversible; confirmation is
// the caller's concern.
func (p *Pipeline) Clear(ctx context.Context) error {
	return p.log.Clear(ctx)
}

// AdoptTranscript stores a finished voice transcript as pending input. The
// recorder hands each transcript off exactly once.
func (p *Pipeline) AdoptTranscript(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}
	p.mu.Lock()
	p.pending = transcript
	p.mu.Unlock()
}

// ConsumePendingInput returns the pending transcript and clears it, so the
// hand-off is observed at most once.
func (p *Pipeline) ConsumePendingInput() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == "" {
		return "", false
	}
	transcript := p.pending
	p.pending = ""
	return transcript, true
}
