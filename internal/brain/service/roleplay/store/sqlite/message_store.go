package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// MessageStore implements repo.MessageRepository on sqlite.
type MessageStore struct {
	db *DB
}

var _ repo.MessageRepository = (*MessageStore)(nil)

// NewMessageStore creates a MessageStore over an open database.
func NewMessageStore(db *DB) *MessageStore { return &MessageStore{db: db} }

func (s *MessageStore) Insert(ctx context.Context, m *entity.Message) error {
	var metadata string
	if len(m.Metadata) > 0 {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for message %q: %w", m.MessageID, err)
		}
		metadata = string(b)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+TableMessages+`
		 (message_id, session_id, user_name, sender_type, message_content,
		  is_tool_query, tool_name, tool_parameters, tool_query_result,
		  message_order, created_at, extra_metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MessageID, m.SessionID, m.UserName, string(m.Sender), m.Content,
		boolToInt(m.IsToolQuery), m.ToolName, m.ToolParameters, m.ToolResult,
		m.Order, m.CreatedAt.Format(timeLayout), metadata)
	if err != nil {
		return fmt.Errorf("failed to insert message %q: %w", m.MessageID, err)
	}
	return nil
}

func (s *MessageStore) Exists(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+TableMessages+` WHERE message_id = ?`, messageID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check message %q: %w", messageID, err)
	}
	return true, nil
}

func (s *MessageStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entity.Message, error) {
	q := `SELECT message_id, session_id, user_name, sender_type, message_content,
	             is_tool_query, tool_name, tool_parameters, tool_query_result,
	             message_order, created_at, extra_metadata
	      FROM ` + TableMessages + ` WHERE session_id = ? ORDER BY message_order ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for session %q: %w", sessionID, err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		m := &entity.Message{Persisted: true}
		var sender, createdAt string
		var userName, toolName, toolParams, toolResult, metadata sql.NullString
		var isToolQuery int
		if err := rows.Scan(&m.MessageID, &m.SessionID, &userName, &sender, &m.Content,
			&isToolQuery, &toolName, &toolParams, &toolResult,
			&m.Order, &createdAt, &metadata); err != nil {
			return nil, err
		}
		m.UserName = userName.String
		m.Sender = entity.SenderType(sender)
		m.IsToolQuery = isToolQuery != 0
		m.ToolName = toolName.String
		m.ToolParameters = toolParams.String
		m.ToolResult = toolResult.String
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		if metadata.Valid && metadata.String != "" {
			_ = json.Unmarshal([]byte(metadata.String), &m.Metadata)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *MessageStore) MaxOrder(ctx context.Context, sessionID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(message_order) FROM `+TableMessages+` WHERE session_id = ?`, sessionID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max order for session %q: %w", sessionID, err)
	}
	return int(max.Int64), nil
}

func (s *MessageStore) CountBySender(ctx context.Context, sessionID string) (total, user, agent int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN sender_type = 'user' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN sender_type = 'agent' THEN 1 ELSE 0 END), 0)
		 FROM `+TableMessages+` WHERE session_id = ?`, sessionID).Scan(&total, &user, &agent)
	if err != nil {
		err = fmt.Errorf("failed to count messages for session %q: %w", sessionID, err)
	}
	return
}

func (s *MessageStore) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+TableMessages+` WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete messages for session %q: %w", sessionID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
