// ABOUTME: Store interfaces and data models for the connectx backend
// ABOUTME: Defines user, credential-record, and conversation-detail storage

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// User represents a registered end user.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// ConversationDetail is one extracted detail section recorded from a
// structured agent payload.
type ConversationDetail struct {
	ID             string
	ConversationID string
	UserID         string
	Title          string
	Detail         string
	CreatedAt      time.Time
}

// UserStore defines methods for managing users.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// SessionStore holds the single encrypted agent credential record.
// GetCurrentSession returns an empty string when no record exists; writes
// are upserts against the one row.
type SessionStore interface {
	GetCurrentSession(ctx context.Context) (string, error)
	SaveEncryptedSession(ctx context.Context, ciphertext string) error
}

// DetailStore defines methods for conversation detail persistence.
type DetailStore interface {
	CreateDetails(ctx context.Context, details []*ConversationDetail) error
	ListDetails(ctx context.Context, userID, conversationID string) ([]*ConversationDetail, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// Store combines all storage interfaces.
type Store interface {
	UserStore
	SessionStore
	DetailStore
	Close() error
}
