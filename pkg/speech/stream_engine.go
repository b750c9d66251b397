package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StreamEngine talks to a speech-to-text service that streams transcription
// events as newline-delimited JSON over a chunked HTTP response.
type StreamEngine struct {
	url        string
	httpClient *http.Client
}

// NewStreamEngine builds the engine. An empty URL means the capability is
// absent and Supported reports false.
func NewStreamEngine(url string) *StreamEngine {
	return &StreamEngine{
		url: strings.TrimSpace(url),
		// No timeout: the response streams for the length of the utterance.
		httpClient: &http.Client{},
	}
}

// Supported implements Engine.
func (e *StreamEngine) Supported() bool {
	return e.url != ""
}

// Start implements Engine.
func (e *StreamEngine) Start(ctx context.Context, opts Options) (Session, error) {
	if !e.Supported() {
		return nil, ErrUnsupported
	}
	body, err := json.Marshal(map[string]any{
		"locale":           opts.Locale,
		"interim_results":  opts.InterimResults,
		"single_utterance": opts.SingleUtterance,
	})
	if err != nil {
		return nil, err
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(sessionCtx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("transcription api error: %s", resp.Status)
	}

	s := &streamSession{
		cancel:  cancel,
		results: make(chan Result),
	}
	go s.read(resp)
	return s, nil
}

type streamSession struct {
	cancel  context.CancelFunc
	results chan Result
	err     error
}

func (s *streamSession) Results() <-chan Result { return s.results }

func (s *streamSession) Err() error { return s.err }

// Stop cancels the streaming request; read observes the closed body and
// finishes the session.
func (s *streamSession) Stop() { s.cancel() }

func (s *streamSession) read(resp *http.Response) {
	defer close(s.results)
	defer resp.Body.Close()
	defer s.cancel()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event struct {
			Text  string `json:"text"`
			Final bool   `json:"final"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(line, &event); err != nil {
			s.err = fmt.Errorf("transcription decode: %w", err)
			return
		}
		if event.Error != "" {
			s.err = fmt.Errorf("transcription engine: %s", event.Error)
			return
		}
		s.results <- Result{Text: event.Text, Final: event.Final}
	}
	// A canceled request surfaces a read error here; Stop is a normal way
	// for the session to end, not a failure.
	if err := scanner.Err(); err != nil && !isCanceled(err) {
		s.err = fmt.Errorf("transcription stream: %w", err)
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		strings.Contains(err.Error(), "request canceled")
}
