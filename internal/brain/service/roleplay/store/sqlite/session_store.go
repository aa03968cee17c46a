package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
)

const timeLayout = time.RFC3339Nano

// SessionStore implements repo.SessionRepository on sqlite.
type SessionStore struct {
	db *DB
}

var _ repo.SessionRepository = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore over an open database.
func NewSessionStore(db *DB) *SessionStore { return &SessionStore{db: db} }

func (s *SessionStore) Create(ctx context.Context, sess *entity.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+TableSessions+`
		 (session_id, user_name, title, status, created_at, updated_at, last_message_at,
		  total_messages, user_messages, agent_messages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SessionID, sess.UserName, sess.Title, string(sess.Status),
		sess.CreatedAt.Format(timeLayout), sess.UpdatedAt.Format(timeLayout),
		sess.LastMessageAt.Format(timeLayout),
		sess.TotalMessages, sess.UserMessages, sess.AgentMessages)
	if err != nil {
		return fmt.Errorf("failed to create session %q: %w", sess.SessionID, err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, title, status, created_at, updated_at, last_message_at,
		        total_messages, user_messages, agent_messages
		 FROM `+TableSessions+` WHERE session_id = ?`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", errno.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	return sess, nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userName string) ([]*entity.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_name, title, status, created_at, updated_at, last_message_at,
		        total_messages, user_messages, agent_messages
		 FROM `+TableSessions+` WHERE user_name = ? ORDER BY last_message_at DESC`, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for %q: %w", userName, err)
	}
	defer rows.Close()

	var sessions []*entity.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) ListActive(ctx context.Context) ([]*entity.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_name, title, status, created_at, updated_at, last_message_at,
		        total_messages, user_messages, agent_messages
		 FROM `+TableSessions+` WHERE status = ? ORDER BY last_message_at DESC`,
		string(entity.SessionActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) UpdateStats(ctx context.Context, sessionID string, total, user, agent int, lastMessageAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+TableSessions+`
		 SET total_messages = ?, user_messages = ?, agent_messages = ?,
		     last_message_at = ?, updated_at = ?
		 WHERE session_id = ?`,
		total, user, agent,
		lastMessageAt.Format(timeLayout), time.Now().Format(timeLayout), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update stats for session %q: %w", sessionID, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+TableSessions+` WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %q: %w", sessionID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*entity.Session, error) {
	sess := &entity.Session{}
	var status, createdAt, updatedAt, lastMessageAt string
	var title sql.NullString
	if err := row.Scan(&sess.SessionID, &sess.UserName, &title, &status,
		&createdAt, &updatedAt, &lastMessageAt,
		&sess.TotalMessages, &sess.UserMessages, &sess.AgentMessages); err != nil {
		return nil, err
	}
	sess.Title = title.String
	sess.Status = entity.SessionStatus(status)
	sess.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	sess.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	sess.LastMessageAt, _ = time.Parse(timeLayout, lastMessageAt)
	return sess, nil
}
