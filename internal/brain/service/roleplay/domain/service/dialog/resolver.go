package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// SessionResolver decides which session a turn belongs to.
type SessionResolver struct {
	sessions repo.SessionRepository
}

// NewSessionResolver creates a SessionResolver.
func NewSessionResolver(sessions repo.SessionRepository) *SessionResolver {
	return &SessionResolver{sessions: sessions}
}

// Resolve returns the session for a turn, creating one when needed.
//
// An explicit session id wins; an unknown id is an error, not a silent
// create. With forceNew a fresh session is always created. Otherwise the
// user's most recent session mentioning the role in its title is reused.
func (r *SessionResolver) Resolve(ctx context.Context, userName, roleID, roleName, sessionID string, forceNew bool) (*entity.Session, error) {
	if sessionID != "" {
		s, err := r.sessions.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, errno.ErrSessionNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to resolve session %q: %w", sessionID, err)
		}
		return s, nil
	}

	if forceNew {
		return r.create(ctx, userName, fmt.Sprintf("与%s的新对话", roleName))
	}

	existing, err := r.sessions.ListByUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user %q: %w", userName, err)
	}
	for _, s := range existing {
		if s.Status != entity.SessionActive {
			continue
		}
		if strings.Contains(s.Title, roleName) || strings.Contains(s.Title, roleID) {
			return s, nil
		}
	}

	return r.create(ctx, userName, fmt.Sprintf("与%s的对话", roleName))
}

func (r *SessionResolver) create(ctx context.Context, userName, title string) (*entity.Session, error) {
	s := entity.NewSession(userName, title)
	if err := r.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session for user %q: %w", userName, err)
	}
	logger.Info("[Dialog] created session %s (%s) for user %s", s.SessionID, title, userName)
	return s, nil
}
