// Package inmemory implements the hot-store contract with process-local
// maps. It backs tests and the degraded mode used when redis is disabled or
// unreachable.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
)

// HotStore is a map-backed repo.HotStore with lazy TTL expiry.
type HotStore struct {
	mu      sync.RWMutex
	strings map[string]string
	hashes  map[string]map[string]string
	lists   map[string][]string
	expires map[string]time.Time

	// now is swappable so TTL behaviour is testable.
	now func() time.Time
}

var _ repo.HotStore = (*HotStore)(nil)

// NewHotStore creates an empty in-memory hot store.
func NewHotStore() *HotStore {
	return &HotStore{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		lists:   make(map[string][]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Test helper.
func (s *HotStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// expired reports and reaps an expired key. Caller holds the write lock.
func (s *HotStore) expired(key string) bool {
	exp, ok := s.expires[key]
	if !ok || s.now().Before(exp) {
		return false
	}
	delete(s.strings, key)
	delete(s.hashes, key)
	delete(s.lists, key)
	delete(s.expires, key)
	return true
}

func (s *HotStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(key) {
		return "", repo.ErrKeyNotFound
	}
	v, ok := s.strings[key]
	if !ok {
		return "", repo.ErrKeyNotFound
	}
	return v, nil
}

func (s *HotStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	s.applyTTL(key, ttl)
	return nil
}

func (s *HotStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(key) {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(s.hashes[key]))
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (s *HotStore) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired(key)
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *HotStore) LPush(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired(key)
	list := s.lists[key]
	for _, v := range values {
		list = append([]string{v}, list...)
	}
	s.lists[key] = list
	return nil
}

func (s *HotStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(key) {
		return nil, nil
	}
	list := s.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	out := make([]string, 0, stop-start+1)
	out = append(out, list[start:stop+1]...)
	return out, nil
}

func (s *HotStore) LLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(key) {
		return 0, nil
	}
	return int64(len(s.lists[key])), nil
}

func (s *HotStore) LSet(_ context.Context, key string, index int64, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired(key)
	list := s.lists[key]
	n := int64(len(list))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return fmt.Errorf("index %d out of range for list %q (len %d)", index, key, n)
	}
	list[index] = value
	return nil
}

func (s *HotStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyTTL(key, ttl)
	return nil
}

func (s *HotStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.hashes, key)
		delete(s.lists, key)
		delete(s.expires, key)
	}
	return nil
}

func (s *HotStore) applyTTL(key string, ttl time.Duration) {
	if ttl > 0 {
		s.expires[key] = s.now().Add(ttl)
	} else {
		delete(s.expires, key)
	}
}
