// Package dialog is the two-tier dialogue log: a hot list holding the live
// tail of a session and durable rows behind it, reconciled by a periodic
// flush that is idempotent on message id.
package dialog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

const (
	// HotTTL is the hot-list lifetime while a session is active.
	HotTTL = 24 * time.Hour
	// FlushedTTL replaces HotTTL right after a flush; a quiet session ages
	// out of the hot tier quickly once its rows are durable.
	FlushedTTL = 2 * time.Hour

	// flushEvery triggers a flush when the hot length hits a multiple of it.
	flushEvery = 6
	// flushOver triggers a flush whenever the hot length exceeds it.
	flushOver = 10
)

// HotKey returns the hot-store key for a session's message list.
func HotKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// Log is the dialogue log service.
type Log struct {
	hot      repo.HotStore
	messages repo.MessageRepository
	sessions repo.SessionRepository
}

// NewLog creates a Log over the two tiers.
func NewLog(hot repo.HotStore, messages repo.MessageRepository, sessions repo.SessionRepository) *Log {
	return &Log{hot: hot, messages: messages, sessions: sessions}
}

// Append records one message at the head of the hot list and flushes when
// the list crosses a flush threshold. The hot tier being down degrades to
// an immediate durable write.
func (l *Log) Append(ctx context.Context, m *entity.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode message %q: %w", m.MessageID, err)
	}

	key := HotKey(m.SessionID)
	if err := l.hot.LPush(ctx, key, string(payload)); err != nil {
		logger.Warn("[Dialog] hot append failed for session %q, writing durable directly: %v", m.SessionID, err)
		return l.insertDirect(ctx, m)
	}
	if err := l.hot.Expire(ctx, key, HotTTL); err != nil {
		logger.Warn("[Dialog] failed to refresh TTL for session %q: %v", m.SessionID, err)
	}

	n, err := l.hot.LLen(ctx, key)
	if err != nil {
		return nil
	}
	if n > 0 && (n%flushEvery == 0 || n > flushOver) {
		if err := l.Flush(ctx, m.SessionID); err != nil {
			logger.Error("[Dialog] flush failed for session %q: %v", m.SessionID, err)
		}
	}
	return nil
}

// Flush reconciles the hot list into durable rows.
//
// Entries are walked oldest first; rows already persisted (by flag or by
// an existing message_id) are skipped, the rest get consecutive orders
// after the current durable maximum. Flushed entries are rewritten in
// place with the persisted flag set and the list TTL drops to FlushedTTL.
// Session counters are recomputed from durable rows at the end.
func (l *Log) Flush(ctx context.Context, sessionID string) error {
	key := HotKey(sessionID)
	raw, err := l.hot.LRange(ctx, key, 0, -1)
	if err != nil {
		return fmt.Errorf("failed to read hot list for session %q: %w", sessionID, err)
	}
	if len(raw) == 0 {
		return nil
	}

	maxOrder, err := l.messages.MaxOrder(ctx, sessionID)
	if err != nil {
		return err
	}

	order := maxOrder
	// raw is newest first; walk from the tail for chronological order.
	for i := len(raw) - 1; i >= 0; i-- {
		var m entity.Message
		if err := json.Unmarshal([]byte(raw[i]), &m); err != nil {
			logger.Warn("[Dialog] dropping corrupt hot entry in session %q: %v", sessionID, err)
			continue
		}
		if m.Persisted {
			continue
		}
		exists, err := l.messages.Exists(ctx, m.MessageID)
		if err != nil {
			return err
		}
		if !exists {
			order++
			m.Order = order
			if err := l.messages.Insert(ctx, &m); err != nil {
				return err
			}
		}
		m.Persisted = true
		rewritten, err := json.Marshal(&m)
		if err != nil {
			continue
		}
		if err := l.hot.LSet(ctx, key, int64(i), string(rewritten)); err != nil {
			logger.Warn("[Dialog] failed to mark entry persisted in session %q: %v", sessionID, err)
		}
	}

	if err := l.hot.Expire(ctx, key, FlushedTTL); err != nil {
		logger.Warn("[Dialog] failed to shorten TTL for session %q: %v", sessionID, err)
	}
	return l.refreshStats(ctx, sessionID)
}

// FlushAll reconciles every active session's hot list into durable rows.
// Called at shutdown, before the hot tier is closed, so no tail of any
// session is lost with it.
func (l *Log) FlushAll(ctx context.Context) error {
	sessions, err := l.sessions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active sessions for flush: %w", err)
	}

	var firstErr error
	for _, sess := range sessions {
		if err := l.Flush(ctx, sess.SessionID); err != nil {
			logger.Error("[Dialog] shutdown flush failed for session %q: %v", sess.SessionID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Recent returns the last n messages of a session in chronological order,
// merging both tiers and deduplicating by message id.
func (l *Log) Recent(ctx context.Context, sessionID string, n int) ([]*entity.Message, error) {
	durable, err := l.messages.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}

	merged := make([]*entity.Message, 0, len(durable))
	seen := make(map[string]bool, len(durable))
	for _, m := range durable {
		merged = append(merged, m)
		seen[m.MessageID] = true
	}

	raw, err := l.hot.LRange(ctx, HotKey(sessionID), 0, -1)
	if err != nil {
		logger.Warn("[Dialog] hot read failed for session %q, durable only: %v", sessionID, err)
		raw = nil
	}
	for _, entry := range raw {
		var m entity.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			continue
		}
		if seen[m.MessageID] {
			continue
		}
		seen[m.MessageID] = true
		merged = append(merged, &m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	if n > 0 && len(merged) > n {
		merged = merged[len(merged)-n:]
	}
	return merged, nil
}

// Cleanup removes a session from both tiers.
func (l *Log) Cleanup(ctx context.Context, sessionID string) error {
	if err := l.hot.Del(ctx, HotKey(sessionID)); err != nil {
		logger.Warn("[Dialog] failed to drop hot list for session %q: %v", sessionID, err)
	}
	if err := l.messages.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	return l.sessions.Delete(ctx, sessionID)
}

func (l *Log) insertDirect(ctx context.Context, m *entity.Message) error {
	maxOrder, err := l.messages.MaxOrder(ctx, m.SessionID)
	if err != nil {
		return err
	}
	m.Order = maxOrder + 1
	m.Persisted = true
	if err := l.messages.Insert(ctx, m); err != nil {
		return err
	}
	return l.refreshStats(ctx, m.SessionID)
}

func (l *Log) refreshStats(ctx context.Context, sessionID string) error {
	total, user, agent, err := l.messages.CountBySender(ctx, sessionID)
	if err != nil {
		return err
	}
	return l.sessions.UpdateStats(ctx, sessionID, total, user, agent, time.Now())
}
