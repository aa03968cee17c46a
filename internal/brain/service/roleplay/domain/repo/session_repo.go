package repo

import (
	"context"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// SessionRepository persists chat_sessions rows.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	// Get returns the session or errno.ErrSessionNotFound (wrapped).
	Get(ctx context.Context, sessionID string) (*entity.Session, error)
	// ListByUser returns the user's sessions ordered by last_message_at
	// descending.
	ListByUser(ctx context.Context, userName string) ([]*entity.Session, error)
	// ListActive returns every session still in the active state.
	ListActive(ctx context.Context) ([]*entity.Session, error)
	// UpdateStats rewrites the counters and activity timestamp.
	UpdateStats(ctx context.Context, sessionID string, total, user, agent int, lastMessageAt time.Time) error
	Delete(ctx context.Context, sessionID string) error
}

// MessageRepository persists chat_messages rows.
type MessageRepository interface {
	// Insert writes one row. Inserting an existing message_id is an error;
	// callers check Exists first (the flush dedup path).
	Insert(ctx context.Context, m *entity.Message) error
	Exists(ctx context.Context, messageID string) (bool, error)
	// ListBySession returns up to limit rows ordered by message_order
	// ascending; limit <= 0 returns all.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*entity.Message, error)
	// MaxOrder returns the highest message_order in the session, 0 when
	// empty.
	MaxOrder(ctx context.Context, sessionID string) (int, error)
	// CountBySender returns (total, user, agent) message counts.
	CountBySender(ctx context.Context, sessionID string) (total, user, agent int, err error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
