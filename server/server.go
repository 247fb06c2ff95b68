package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/submit"
	"github.com/tbxark/voiceagent/types"
)

// MissingKeyReply is returned by POST /api/agent when no classifier is configured.
const MissingKeyReply = "I am missing my brain (API Key). Please check server configuration."

const maxBodyBytes = 1 << 20

// Inbox lists stored contact messages.
type Inbox interface {
	List(ctx context.Context, limit int) ([]submit.Message, error)
}

type Options struct {
	AllowedOrigins []string
	Inbox          Inbox
	Logger         *slog.Logger
}

type Server struct {
	router     *chi.Mux
	classifier classifier.Classifier
	inbox      Inbox
	logger     *slog.Logger
}

// New builds the HTTP surface of the classifier contract. A nil classifier
// makes every classification answer with MissingKeyReply.
func New(c classifier.Classifier, opts Options) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s := &Server{
		router:     r,
		classifier: c,
		inbox:      opts.Inbox,
		logger:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/agent", s.handleAgent)
	s.router.Get("/api/messages", s.handleMessages)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"classifier": s.classifier != nil,
	})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}
	var req types.ClassifyRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	if s.classifier == nil {
		s.logger.Error("classifier not configured")
		writeJSON(w, http.StatusInternalServerError, &types.AgentResponse{
			AgentSays: MissingKeyReply,
			Intent:    types.IntentInfo,
		})
		return
	}

	resp, err := s.classifier.Classify(r.Context(), &req)
	if err == nil {
		err = classifier.Validate(resp)
	}
	if err != nil {
		s.logger.Error("classify request failed", "error", err)
		fallback := classifier.Fallback(err)
		status := http.StatusOK
		if fallback.AgentSays == classifier.ConnectionApology {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, fallback)
		return
	}
	s.logger.Debug("classified", "intent", resp.Intent)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "inbox not configured"})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	messages, err := s.inbox.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list messages", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list messages"})
		return
	}
	if messages == nil {
		messages = []submit.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
