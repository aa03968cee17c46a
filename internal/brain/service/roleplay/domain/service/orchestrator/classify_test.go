package orchestrator

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want failureKind
	}{
		{"nil", nil, failureUnknown},
		{"geo block", errors.New("User location is not supported for the API use"), failureUnreachable},
		{"refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), failureUnreachable},
		{"deadline", fmt.Errorf("generate: %w", errors.New("context deadline exceeded")), failureUnreachable},
		{"rate limit", errors.New("429 Too Many Requests"), failureQuota},
		{"quota", errors.New("insufficient_quota: please check your plan"), failureQuota},
		{"quota beats unreachable", errors.New("timeout waiting for rate limit"), failureQuota},
		{"unknown", errors.New("invalid response schema"), failureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyFailure(tt.err); got != tt.want {
				t.Errorf("classifyFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailureSystemMessage(t *testing.T) {
	t.Parallel()

	for _, kind := range []failureKind{failureUnknown, failureUnreachable, failureQuota} {
		if failureSystemMessage(kind) == "" {
			t.Errorf("failureSystemMessage(%v) is empty", kind)
		}
	}
}
