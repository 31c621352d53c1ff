// ABOUTME: Conversation orchestrator composing the agent gateway and extractor
// ABOUTME: Creates sessions, streams messages, and records extracted details

package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/denisee27/connectx-be/internal/agent"
	"github.com/denisee27/connectx-be/internal/store"
)

// ValidationError indicates bad caller input: an empty message or a missing
// identifier. It maps to a 400 at the API boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AgentClient is the gateway surface the orchestrator needs.
type AgentClient interface {
	CreateSession(ctx context.Context, userID string) (string, error)
	SendMessage(ctx context.Context, userID, sessionID, message string) (string, error)
}

// Service orchestrates conversations between users and the external agent.
type Service struct {
	users   store.UserStore
	details store.DetailStore
	gateway AgentClient
	logger  *slog.Logger
}

// NewService creates a conversation service.
func NewService(users store.UserStore, details store.DetailStore, gateway AgentClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:   users,
		details: details,
		gateway: gateway,
		logger:  logger.With("component", "conversation"),
	}
}

// CreateResult is the outcome of CreateConversation.
type CreateResult struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
}

// StreamResult carries the agent's reply split into an optional structured
// payload and the remaining plain text.
type StreamResult struct {
	StructuredPayload any    `json:"structuredPayload"`
	PlainText         string `json:"plainText"`
}

// CreateConversation verifies the user exists and asks the agent for a new
// session. The agent is authoritative for session identity; this system only
// records the mapping through the details it later persists.
func (s *Service) CreateConversation(ctx context.Context, userID string) (*CreateResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	sessionID, err := s.gateway.CreateSession(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to create agent conversation", "user_id", userID, "error", err)
		return nil, err
	}

	return &CreateResult{OK: true, SessionID: sessionID}, nil
}

// StreamConversation sends a message on an existing session, extracts any
// structured payload from the reply, and records its detail sections.
func (s *Service) StreamConversation(ctx context.Context, userID, sessionID, message string) (*StreamResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Message: "message is required"}
	}

	reply, err := s.gateway.SendMessage(ctx, userID, sessionID, message)
	if err != nil {
		s.logger.Error("failed to stream agent conversation", "session_id", sessionID, "error", err)
		return nil, err
	}

	extracted := agent.ExtractStructuredPayload(reply)
	if extracted.Structured == nil {
		return &StreamResult{StructuredPayload: nil, PlainText: extracted.PlainText}, nil
	}

	if _, err := s.PushConversationDetail(ctx, userID, sessionID, detailSections(extracted.Structured)); err != nil {
		return nil, fmt.Errorf("recording conversation details: %w", err)
	}

	return &StreamResult{StructuredPayload: extracted.Structured, PlainText: extracted.PlainText}, nil
}

// PushConversationDetail maps raw detail entries to persistent records,
// silently discarding entries without a usable title (a data-quality policy,
// not an error). Returns false when nothing was worth persisting.
func (s *Service) PushConversationDetail(ctx context.Context, userID, conversationID string, details []any) (bool, error) {
	if conversationID == "" {
		return false, &ValidationError{Message: "conversationId is required"}
	}
	if userID == "" {
		return false, &ValidationError{Message: "userId is required"}
	}
	if len(details) == 0 {
		return false, nil
	}

	var records []*store.ConversationDetail
	for _, entry := range details {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		title, _ := m["title"].(string)
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		detail, ok := m["markdown"].(string)
		if !ok {
			serialized, err := json.Marshal(m)
			if err != nil {
				s.logger.Warn("failed to serialize detail entry", "title", title, "error", err)
				continue
			}
			detail = string(serialized)
		}

		records = append(records, &store.ConversationDetail{
			ConversationID: conversationID,
			UserID:         userID,
			Title:          title,
			Detail:         detail,
		})
	}

	if len(records) == 0 {
		return false, nil
	}

	if err := s.details.CreateDetails(ctx, records); err != nil {
		return false, fmt.Errorf("persisting details: %w", err)
	}

	s.logger.Debug("recorded conversation details", "conversation_id", conversationID, "count", len(records))
	return true, nil
}

// GetAllConversationDetail returns the recorded detail entries for a
// conversation owned by the user.
func (s *Service) GetAllConversationDetail(ctx context.Context, userID, conversationID string) ([]*store.ConversationDetail, error) {
	if conversationID == "" {
		return nil, &ValidationError{Message: "conversationId is required"}
	}
	return s.details.ListDetails(ctx, userID, conversationID)
}

// DeleteConversation removes a conversation's recorded details.
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if conversationID == "" {
		return &ValidationError{Message: "conversationId is required"}
	}
	return s.details.DeleteConversation(ctx, userID, conversationID)
}

// detailSections normalizes a structured payload to its list of detail
// entries, accepting either {"data": [...]} or a bare list.
func detailSections(payload any) []any {
	switch v := payload.(type) {
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			return data
		}
	case []any:
		return v
	}
	return nil
}
