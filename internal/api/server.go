// ABOUTME: HTTP server for the connectx backend API
// ABOUTME: Routes, JWT auth middleware, and service error mapping

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/denisee27/connectx-be/internal/agent"
	"github.com/denisee27/connectx-be/internal/auth"
	"github.com/denisee27/connectx-be/internal/conversation"
	"github.com/denisee27/connectx-be/internal/store"
)

// ConversationService is the orchestration surface the API exposes.
type ConversationService interface {
	CreateConversation(ctx context.Context, userID string) (*conversation.CreateResult, error)
	StreamConversation(ctx context.Context, userID, sessionID, message string) (*conversation.StreamResult, error)
	GetAllConversationDetail(ctx context.Context, userID, conversationID string) ([]*store.ConversationDetail, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// Server handles HTTP API requests.
type Server struct {
	users         store.UserStore
	conversations ConversationService
	verifier      *auth.JWTVerifier
	tokenTTL      time.Duration
	logger        *slog.Logger
}

// NewServer creates an API server.
func NewServer(users store.UserStore, conversations ConversationService, verifier *auth.JWTVerifier, tokenTTL time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:         users,
		conversations: conversations,
		verifier:      verifier,
		tokenTTL:      tokenTTL,
		logger:        logger.With("component", "api"),
	}
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.Handle("POST /api/v1/conversation", s.requireAuth(s.handleCreateConversation))
	mux.Handle("POST /api/v1/conversation/{id}/message", s.requireAuth(s.handleStreamConversation))
	mux.Handle("GET /api/v1/conversation/{id}/detail", s.requireAuth(s.handleListDetails))
	mux.Handle("DELETE /api/v1/conversation/{id}", s.requireAuth(s.handleDeleteConversation))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// contextKey is a private type for request context values.
type contextKey string

const userIDKey contextKey = "userID"

// userIDFromContext returns the authenticated user ID, or empty.
func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// requireAuth extracts and validates the bearer JWT, adding the user ID to
// the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
		if errMsg != "" {
			s.sendJSONError(w, http.StatusUnauthorized, errMsg)
			return
		}

		userID, err := s.verifier.Verify(token)
		if err != nil {
			s.sendJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// sendJSON writes a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

// sendServiceError maps service-layer errors onto HTTP statuses. Transport
// detail stays in the logs; callers get generic messages.
func (s *Server) sendServiceError(w http.ResponseWriter, err error) {
	var validationErr *conversation.ValidationError
	var upstreamErr *agent.UpstreamError
	var refreshErr *agent.TokenRefreshError

	switch {
	case errors.As(err, &validationErr):
		s.sendJSONError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, agent.ErrEmptyMessage):
		s.sendJSONError(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, "not found")
	case errors.As(err, &upstreamErr):
		s.logger.Error("upstream agent failure", "status", upstreamErr.StatusCode, "reason", upstreamErr.Reason)
		s.sendJSONError(w, http.StatusBadGateway, "agent service unavailable")
	case errors.As(err, &refreshErr):
		s.logger.Error("agent token refresh failure", "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "agent service unavailable")
	default:
		s.logger.Error("internal error", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
