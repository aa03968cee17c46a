package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a dialogue session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

// Session is one user's conversation with a character.
//
// Sessions are created lazily by the session resolver. The message counters
// are recomputed from durable rows on every flush, so they may trail the hot
// tier between flushes.
type Session struct {
	SessionID string        `json:"session_id"`
	UserName  string        `json:"user_name"`
	Title     string        `json:"title"`
	Status    SessionStatus `json:"status"`

	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastMessageAt time.Time `json:"last_message_at"`

	TotalMessages int `json:"total_messages"`
	UserMessages  int `json:"user_messages"`
	AgentMessages int `json:"agent_messages"`
}

// NewSession creates an active session for a user with the given title.
func NewSession(userName, title string) *Session {
	now := time.Now()
	return &Session{
		SessionID:     uuid.NewString(),
		UserName:      userName,
		Title:         title,
		Status:        SessionActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}
}

// Touch advances the session's activity timestamps.
func (s *Session) Touch() {
	now := time.Now()
	s.UpdatedAt = now
	s.LastMessageAt = now
}
