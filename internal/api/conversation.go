// ABOUTME: HTTP handlers for conversation create/stream/detail operations
// ABOUTME: Renders recorded detail markdown to HTML via goldmark

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
)

// StreamMessageRequest is the JSON request body for sending a message.
type StreamMessageRequest struct {
	Message string `json:"message"`
}

// DetailResponse is the JSON shape for one recorded detail entry.
type DetailResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	Detail         string `json:"detail"`
	HTML           string `json:"html,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ListDetailsResponse is the JSON response for the detail listing.
type ListDetailsResponse struct {
	Details []DetailResponse `json:"details"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	result, err := s.conversations.CreateConversation(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, result)
}

func (s *Server) handleStreamConversation(w http.ResponseWriter, r *http.Request) {
	var req StreamMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.conversations.StreamConversation(
		r.Context(),
		userIDFromContext(r.Context()),
		r.PathValue("id"),
		req.Message,
	)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.conversations.GetAllConversationDetail(
		r.Context(),
		userIDFromContext(r.Context()),
		r.PathValue("id"),
	)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	resp := ListDetailsResponse{Details: make([]DetailResponse, 0, len(details))}
	for _, d := range details {
		entry := DetailResponse{
			ID:             d.ID,
			ConversationID: d.ConversationID,
			Title:          d.Title,
			Detail:         d.Detail,
			CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		}

		// Details hold markdown (or raw JSON, which renders as a code-ish
		// paragraph); conversion failures just omit the HTML.
		var htmlBuf bytes.Buffer
		if err := goldmark.Convert([]byte(d.Detail), &htmlBuf); err != nil {
			s.logger.Error("failed to convert detail markdown", "id", d.ID, "error", err)
		} else {
			entry.HTML = htmlBuf.String()
		}

		resp.Details = append(resp.Details, entry)
	}

	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	err := s.conversations.DeleteConversation(
		r.Context(),
		userIDFromContext(r.Context()),
		r.PathValue("id"),
	)
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeJSON decodes a request body, rejecting oversized payloads.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	return json.Unmarshal(body, dst)
}
