// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/user/barka/internal/consolidate"
	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/poll"
	"github.com/user/barka/internal/transcript"
	"github.com/user/barka/internal/types"
	"github.com/user/barka/pkg/provider"
)

// CompletionHandler is invoked when a poll started over HTTP completes.
type CompletionHandler func(id types.ConversationID, result *types.Consolidation)

// Server exposes the polling service and transcript archive over HTTP for
// dashboards and scripting.
type Server struct {
	polls      *poll.Service
	provider   provider.Provider
	store      types.TranscriptStore
	onComplete CompletionHandler
	mux        *http.ServeMux
}

// NewServer creates the control server. onComplete may be nil.
func NewServer(polls *poll.Service, p provider.Provider, store types.TranscriptStore, onComplete CompletionHandler) *Server {
	s := &Server{
		polls:      polls,
		provider:   p,
		store:      store,
		onComplete: onComplete,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/polls", s.handlePollList)
	s.mux.HandleFunc("POST /api/polls", s.handlePollStart)
	s.mux.HandleFunc("DELETE /api/polls/", s.handlePollStop)
	s.mux.HandleFunc("GET /api/transcripts/", s.handleTranscript)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type pollInfo struct {
	PollID         string `json:"poll_id"`
	ConversationID string `json:"conversation_id"`
	IntervalMS     int64  `json:"interval_ms"`
}

func (s *Server) handlePollList(w http.ResponseWriter, r *http.Request) {
	sessions := s.polls.ActiveSessions()
	infos := make([]pollInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, pollInfo{
			PollID:         string(sess.ID()),
			ConversationID: string(sess.ConversationID()),
			IntervalMS:     sess.CurrentInterval().Milliseconds(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"active": len(infos),
		"polls":  infos,
	})
}

// pollStartRequest is the JSON body for POST /api/polls.
type pollStartRequest struct {
	ConversationID string `json:"conversation_id"`
	AdminMode      bool   `json:"admin_mode"`
	IncludeDebug   bool   `json:"include_debug"`
	MaxDurationMS  int    `json:"max_duration_ms"`
}

func (s *Server) handlePollStart(w http.ResponseWriter, r *http.Request) {
	var req pollStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" {
		http.Error(w, `{"error":"conversation_id is required"}`, http.StatusBadRequest)
		return
	}

	conversationID := types.ConversationID(req.ConversationID)
	opts := poll.SessionOptions{
		ConversationID: conversationID,
		Consolidate: consolidate.Options{
			IncludeDebugInfo: req.IncludeDebug,
			AdminMode:        req.AdminMode,
		},
		Callbacks: poll.Callbacks{
			OnComplete: func(result *types.Consolidation) {
				s.archive(conversationID)
				if s.onComplete != nil {
					s.onComplete(conversationID, result)
				}
			},
			OnTimeout: func() {
				slog.Warn("poll timed out", "conversation_id", req.ConversationID)
			},
		},
	}
	if req.MaxDurationMS > 0 {
		opts.MaxDuration = time.Duration(req.MaxDurationMS) * time.Millisecond
	}

	id, err := s.polls.StartPolling(opts)
	if err != nil {
		slog.Error("start polling failed", "conversation_id", req.ConversationID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"poll_id": string(id)})
}

func (s *Server) handlePollStop(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/polls/")
	if id == "" {
		http.Error(w, `{"error":"poll id required"}`, http.StatusBadRequest)
		return
	}

	// Unknown ids are a no-op; report what remains.
	s.polls.StopPolling(types.PollID(id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"active": s.polls.ActiveCount()})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transcripts/")
	if id == "" {
		http.Error(w, `{"error":"conversation id required"}`, http.StatusBadRequest)
		return
	}

	filter, err := format.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, `{"error":"unknown filter"}`, http.StatusBadRequest)
		return
	}
	opts := format.Options{
		Filter:                filter,
		IncludeDebugInfo:      r.URL.Query().Get("debug") == "true",
		IncludeSystemMessages: r.URL.Query().Get("system") == "true",
		SortOrder:             format.SortAsc,
	}
	if r.URL.Query().Get("order") == "desc" {
		opts.SortOrder = format.SortDesc
	}

	snapshot, err := s.provider.FetchSession(r.Context(), types.ConversationID(id))
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNoSession):
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		case errors.Is(err, provider.ErrUnavailable):
			http.Error(w, `{"error":"session provider unavailable"}`, http.StatusBadGateway)
		default:
			slog.Error("transcript fetch failed", "conversation_id", id, "error", err)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		}
		return
	}

	messages := format.Format(snapshot, opts)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"conversation_id": id,
		"count":           len(messages),
		"messages":        messages,
	})
}

// archive refreshes the stored transcript after a completed turn.
func (s *Server) archive(id types.ConversationID) {
	if s.store == nil {
		return
	}
	opts := format.DefaultOptions()
	opts.IncludeDebugInfo = true
	opts.IncludeSystemMessages = true
	if _, err := transcript.Sync(context.Background(), s.provider, s.store, id, opts); err != nil {
		slog.Warn("transcript archive failed", "conversation_id", string(id), "error", err)
	}
}
