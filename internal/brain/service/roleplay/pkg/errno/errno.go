// Package errno defines the sentinel errors of the roleplay domain.
package errno

import "errors"

var (
	// ErrAnalysisFailed means the model returned an unparseable
	// intent/emotion record. Callers proceed with neutral defaults.
	ErrAnalysisFailed = errors.New("analysis response unparseable")

	// ErrModelTimeout means a bounded model call exceeded its deadline.
	// Each step selects its own fallback.
	ErrModelTimeout = errors.New("model call timed out")

	// ErrToolInvocationFailed means a tool-augmented call raised.
	ErrToolInvocationFailed = errors.New("tool invocation failed")

	// ErrGenerationFailed is the terminal failure of a life-story
	// generation step after all retries.
	ErrGenerationFailed = errors.New("generation failed after retries")

	// ErrLeakDetected means the output scanner flagged inner-OS content.
	ErrLeakDetected = errors.New("inner monologue leak detected")

	// ErrStoreUnavailable means a hot or durable store access failed.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRoleNotConfigured means the requested role_id is unknown.
	ErrRoleNotConfigured = errors.New("role not configured")

	// ErrPersonaMissing means the role's persona blob could not be read.
	// Fatal for the request; no synthetic persona is substituted.
	ErrPersonaMissing = errors.New("persona file missing")

	// ErrSessionNotFound means the referenced session does not exist in
	// either tier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrOutlineMissing means a role has no life-plot outline to advance.
	ErrOutlineMissing = errors.New("life outline missing")
)
