// Package moodengine keeps each role's current mood and composes the next
// one from the plot baseline and the latest user impact.
package moodengine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// HotTTL bounds how long a hot mood survives without refresh.
const HotTTL = 24 * time.Hour

const hotKeyPrefix = "role_mood:"

// HotKey returns the hot-store key for a role's mood hash.
func HotKey(roleID string) string { return hotKeyPrefix + roleID }

// Store is the two-tier mood store. The durable row is the source of
// truth; the hot hash is a read cache refreshed on every write.
type Store struct {
	hot   repo.HotStore
	roles repo.RoleRepository
}

// NewStore creates a Store over the two tiers.
func NewStore(hot repo.HotStore, roles repo.RoleRepository) *Store {
	return &Store{hot: hot, roles: roles}
}

// Current returns the role's mood: hot tier first, durable row second,
// the given seed last. Hot-tier failures degrade silently to durable.
func (s *Store) Current(ctx context.Context, roleID string, seed entity.Mood) (entity.Mood, error) {
	if fields, err := s.hot.HGetAll(ctx, HotKey(roleID)); err == nil && len(fields) > 0 {
		if m, ok := decodeHash(fields); ok {
			return m, nil
		}
		logger.Warn("[MoodStore] corrupt hot mood for role %q, falling back to durable", roleID)
	}

	detail, err := s.roles.GetDetail(ctx, roleID)
	if err != nil {
		return seed, nil
	}
	m := detail.Mood
	m.Clamp()
	if m.Tags == "" {
		return seed, nil
	}
	// Refill the hot tier so the next read is cheap.
	s.cacheHot(ctx, roleID, m)
	return m, nil
}

// Save writes a mood durable-first, then refreshes the hot tier. A hot
// failure is logged, never surfaced; the durable write decides the error.
func (s *Store) Save(ctx context.Context, roleID string, m entity.Mood) error {
	m.Clamp()
	if err := s.roles.UpdateMood(ctx, roleID, m); err != nil {
		return fmt.Errorf("failed to persist mood for role %q: %w", roleID, err)
	}
	s.cacheHot(ctx, roleID, m)
	return nil
}

// Reset writes the seed mood to both tiers.
func (s *Store) Reset(ctx context.Context, roleID string, seed entity.Mood) error {
	return s.Save(ctx, roleID, seed)
}

func (s *Store) cacheHot(ctx context.Context, roleID string, m entity.Mood) {
	key := HotKey(roleID)
	if err := s.hot.HSet(ctx, key, encodeHash(m)); err != nil {
		logger.Warn("[MoodStore] failed to cache mood for role %q: %v", roleID, err)
		return
	}
	if err := s.hot.Expire(ctx, key, HotTTL); err != nil {
		logger.Warn("[MoodStore] failed to refresh mood TTL for role %q: %v", roleID, err)
	}
}

func encodeHash(m entity.Mood) map[string]string {
	return map[string]string{
		"my_valence":                  strconv.FormatFloat(m.Valence, 'f', -1, 64),
		"my_arousal":                  strconv.FormatFloat(m.Arousal, 'f', -1, 64),
		"my_tags":                     m.Tags,
		"my_intensity":                strconv.Itoa(m.Intensity),
		"my_mood_description_for_llm": m.Description,
	}
}

func decodeHash(fields map[string]string) (entity.Mood, bool) {
	v, errV := strconv.ParseFloat(fields["my_valence"], 64)
	a, errA := strconv.ParseFloat(fields["my_arousal"], 64)
	i, errI := strconv.Atoi(fields["my_intensity"])
	if errV != nil || errA != nil || errI != nil {
		return entity.Mood{}, false
	}
	m := entity.Mood{
		Valence:     v,
		Arousal:     a,
		Tags:        fields["my_tags"],
		Intensity:   i,
		Description: fields["my_mood_description_for_llm"],
	}
	m.Clamp()
	if m.Tags == "" {
		return entity.Mood{}, false
	}
	return m, true
}
