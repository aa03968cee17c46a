// Package persona loads character persona blobs from the persona root.
//
// A persona is the character's ground truth; a missing file disables the
// role rather than degrading to a generic prompt.
package persona

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Service loads and caches persona and past-experience blobs.
type Service struct {
	personaRoot string
	summaryRoot string

	mu    sync.RWMutex
	cache map[string]string
}

// New creates a persona Service over the two blob roots.
func New(personaRoot, summaryRoot string) *Service {
	return &Service{
		personaRoot: personaRoot,
		summaryRoot: summaryRoot,
		cache:       make(map[string]string),
	}
}

// Load returns the persona text for a role. The blob lives at
// <persona-root>/<role_id>_L0_prompt.txt; its absence is an error wrapping
// errno.ErrPersonaMissing.
func (s *Service) Load(ctx context.Context, roleID string) (string, error) {
	path := filepath.Join(s.personaRoot, roleID+"_L0_prompt.txt")

	s.mu.RLock()
	cached, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: role %q (%s)", errno.ErrPersonaMissing, roleID, path)
		}
		return "", fmt.Errorf("failed to read persona for role %q: %w", roleID, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: role %q persona file is empty", errno.ErrPersonaMissing, roleID)
	}

	s.mu.Lock()
	s.cache[path] = text
	s.mu.Unlock()
	logger.Info("[Persona] loaded persona for role %s (%d bytes)", roleID, len(text))
	return text, nil
}

// PastSummary returns the role's past-experience summary, or "" when none
// has been written yet. Summaries are optional and live at
// <summary-root>/<role_id>/<role_name>_summary.txt.
func (s *Service) PastSummary(ctx context.Context, roleID, roleName string) string {
	path := filepath.Join(s.summaryRoot, roleID, roleName+"_summary.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Invalidate drops the cached persona for a role, forcing a re-read.
func (s *Service) Invalidate(roleID string) {
	path := filepath.Join(s.personaRoot, roleID+"_L0_prompt.txt")
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}
