// Package entity holds the model-layer value types shared by the provider
// plugins and the manager.
package entity

// ModelProvider is one configured upstream (OpenAI, Gemini, a local
// Ollama, ...).
type ModelProvider struct {
	ID      string
	BaseURL string
	APIKey  string
	Enabled bool
}

// ModelInstance is one usable model offered by a provider.
type ModelInstance struct {
	ModelID     string
	ProviderID  string
	DisplayName string

	BaseURL string
	APIKey  string

	ContextWindow int
	MaxTokens     int
}

// Key is the registry key of an instance.
func (m *ModelInstance) Key() string { return m.ProviderID + "/" + m.ModelID }

// LLMParams are per-call sampling parameters. Nil pointers mean provider
// defaults.
type LLMParams struct {
	Temperature *float32
	TopP        *float32
	MaxTokens   int
}
