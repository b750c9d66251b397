package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"readerapp/internal/app"
	"readerapp/internal/util"
	"readerapp/pkg/book"
	"readerapp/pkg/chatlog"
	"readerapp/pkg/speech"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Session  *app.Session
	Pipeline *app.Pipeline
	Recorder *speech.Recorder
}

// Server exposes the reading session over HTTP.
type Server struct {
	session  *app.Session
	pipeline *app.Pipeline
	recorder *speech.Recorder
	mux      *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		session:  cfg.Session,
		pipeline: cfg.Pipeline,
		recorder: cfg.Recorder,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in middleware.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(
		util.WithCORS(
			util.WithRequestID(
				util.WithRequestLog("reader", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/book", s.handleBook)
	s.mux.HandleFunc("/page", s.handlePage)
	s.mux.HandleFunc("/page/goto", s.handleGoto)
	s.mux.HandleFunc("/page/next", s.handleNext)
	s.mux.HandleFunc("/page/prev", s.handlePrev)
	s.mux.HandleFunc("/page/jump", s.handleJump)
	s.mux.HandleFunc("/search", s.handleSearch)
	s.mux.HandleFunc("/bookmarks", s.handleBookmarks)
	s.mux.HandleFunc("/bookmarks/toggle", s.handleToggleBookmark)
	s.mux.HandleFunc("/prefs", s.handlePrefs)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/chat/messages", s.handleMessages)
	s.mux.HandleFunc("/speech", s.handleSpeech)
	s.mux.HandleFunc("/speech/start", s.handleSpeechStart)
	s.mux.HandleFunc("/speech/stop", s.handleSpeechStop)
	s.mux.HandleFunc("/speech/transcript", s.handleSpeechTranscript)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type bookResponse struct {
	Title           string `json:"title"`
	TotalPages      int    `json:"totalPages"`
	CurrentPage     int    `json:"currentPage"`
	Bookmarked      bool   `json:"bookmarked"`
	DarkMode        bool   `json:"darkMode"`
	BionicMode      bool   `json:"bionicMode"`
	SpeechSupported bool   `json:"speechSupported"`
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	doc := s.session.Document()
	writeJSON(w, http.StatusOK, bookResponse{
		Title:           doc.Title,
		TotalPages:      doc.TotalPages,
		CurrentPage:     s.session.CurrentPage(),
		Bookmarked:      s.session.IsBookmarked(),
		DarkMode:        s.session.DarkMode(),
		BionicMode:      s.session.BionicMode(),
		SpeechSupported: s.recorder != nil && s.recorder.Supported(),
	})
}

type pageResponse struct {
	Page        int            `json:"page"`
	TotalPages  int            `json:"totalPages"`
	Content     string         `json:"content"`
	Segments    []book.Segment `json:"segments,omitempty"`
	Bookmarked  bool           `json:"bookmarked"`
	ScrollToTop bool           `json:"scrollToTop,omitempty"`
}

func (s *Server) pageView(scrolled bool) pageResponse {
	raw, segments := s.session.RenderedPage()
	return pageResponse{
		Page:        s.session.CurrentPage(),
		TotalPages:  s.session.Document().TotalPages,
		Content:     raw,
		Segments:    segments,
		Bookmarked:  s.session.IsBookmarked(),
		ScrollToTop: scrolled,
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.pageView(false))
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Page int `json:"page"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	moved := s.session.GoTo(r.Context(), req.Page)
	writeJSON(w, http.StatusOK, s.pageView(moved))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	moved := s.session.Next(r.Context())
	writeJSON(w, http.StatusOK, s.pageView(moved))
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	moved := s.session.Prev(r.Context())
	writeJSON(w, http.StatusOK, s.pageView(moved))
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Input string `json:"input"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	moved := s.session.JumpTo(r.Context(), req.Input)
	writeJSON(w, http.StatusOK, s.pageView(moved))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	results := s.session.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []book.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": s.session.Bookmarks()})
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	bookmarked := s.session.ToggleBookmark(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"bookmarked": bookmarked,
		"bookmarks":  s.session.Bookmarks(),
	})
}

type prefsResponse struct {
	DarkMode   bool `json:"darkMode"`
	BionicMode bool `json:"bionicMode"`
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req struct {
			DarkMode   *bool `json:"darkMode"`
			BionicMode *bool `json:"bionicMode"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.DarkMode != nil {
			s.session.SetDarkMode(r.Context(), *req.DarkMode)
		}
		if req.BionicMode != nil {
			s.session.SetBionicMode(r.Context(), *req.BionicMode)
		}
	default:
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, prefsResponse{
		DarkMode:   s.session.DarkMode(),
		BionicMode: s.session.BionicMode(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	answer, err := s.pipeline.Submit(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, app.ErrBusy):
			writeError(w, http.StatusConflict, "a request is already in flight")
		default:
			writeError(w, http.StatusBadGateway, "conversation log unavailable")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		msgs, err := s.pipeline.Recent(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, "conversation log unavailable")
			return
		}
		if msgs == nil {
			msgs = []chatlog.Message{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	case http.MethodDelete:
		if err := s.pipeline.Clear(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, "conversation log unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		methodNotAllowed(w)
	}
}

type speechResponse struct {
	Supported bool         `json:"supported"`
	State     speech.State `json:"state"`
}

func (s *Server) speechView() speechResponse {
	return speechResponse{
		Supported: s.recorder.Supported(),
		State:     s.recorder.State(),
	}
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.speechView())
}

func (s *Server) handleSpeechStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	// The capture session outlives this request, so it must not inherit
	// the request context.
	if err := s.recorder.Start(context.Background()); err != nil {
		if errors.Is(err, speech.ErrUnsupported) {
			writeError(w, http.StatusConflict, "transcription not supported")
			return
		}
		writeError(w, http.StatusBadGateway, "transcription engine unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.speechView())
}

func (s *Server) handleSpeechStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.recorder.Stop()
	writeJSON(w, http.StatusOK, s.speechView())
}

// handleSpeechTranscript hands a finished voice transcript to the caller
// exactly once; a second request finds nothing pending.
func (s *Server) handleSpeechTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	input, ok := s.pipeline.ConsumePendingInput()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"input": input})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
