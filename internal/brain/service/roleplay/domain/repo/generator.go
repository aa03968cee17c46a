package repo

import "context"

// TextGenerator produces one completion for a system+user prompt pair.
//
// Domain services depend on this narrow interface instead of a concrete
// chat model so tests can inject canned generators.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GenerateFunc adapts a function to TextGenerator.
type GenerateFunc func(ctx context.Context, system, user string) (string, error)

// Generate implements TextGenerator.
func (f GenerateFunc) Generate(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
