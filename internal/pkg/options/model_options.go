package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ModelOptions selects the model providers and the default model used for
// every generation step. The default is Gemini-class; any registered
// provider can replace it without touching the core.
type ModelOptions struct {
	DefaultProvider string                     `json:"default-provider" mapstructure:"default-provider"`
	DefaultModel    string                     `json:"default-model"    mapstructure:"default-model"`
	Temperature     float32                    `json:"temperature"      mapstructure:"temperature"`
	TimeoutSeconds  int                        `json:"timeout-seconds"  mapstructure:"timeout-seconds"`
	Providers       map[string]*ProviderConfig `json:"providers"        mapstructure:"providers"`
}

// ProviderConfig configures one model provider.
type ProviderConfig struct {
	BaseURL string            `json:"base-url" mapstructure:"base-url"`
	APIKey  string            `json:"api-key"  mapstructure:"api-key"`
	Models  []ModelDefinition `json:"models"   mapstructure:"models"`
}

// ModelDefinition describes one model offered by a provider.
type ModelDefinition struct {
	ID            string `json:"id"             mapstructure:"id"`
	Name          string `json:"name"           mapstructure:"name"`
	ContextWindow int    `json:"context-window" mapstructure:"context-window"`
	MaxTokens     int    `json:"max-tokens"     mapstructure:"max-tokens"`
}

// NewModelOptions creates ModelOptions with defaults.
func NewModelOptions() *ModelOptions {
	return &ModelOptions{
		DefaultProvider: "gemini",
		DefaultModel:    "gemini-2.0-flash",
		Temperature:     0.8,
		TimeoutSeconds:  30,
		Providers:       make(map[string]*ProviderConfig),
	}
}

// Validate checks the options.
func (o *ModelOptions) Validate() []error {
	var errs []error
	if o.DefaultProvider == "" {
		errs = append(errs, fmt.Errorf("models.default-provider is required"))
	}
	if o.DefaultModel == "" {
		errs = append(errs, fmt.Errorf("models.default-model is required"))
	}
	if o.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("models.timeout-seconds must be positive, got %d", o.TimeoutSeconds))
	}
	for id, p := range o.Providers {
		for _, m := range p.Models {
			if m.ID == "" {
				errs = append(errs, fmt.Errorf("provider %q: model id is required", id))
			}
		}
	}
	return errs
}

// AddFlags adds flags for the model options to the given flag set.
func (o *ModelOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.DefaultProvider, "models.default-provider", o.DefaultProvider, "Default model provider ID.")
	fs.StringVar(&o.DefaultModel, "models.default-model", o.DefaultModel, "Default model ID.")
	fs.Float32Var(&o.Temperature, "models.temperature", o.Temperature, "Sampling temperature for character replies.")
	fs.IntVar(&o.TimeoutSeconds, "models.timeout-seconds", o.TimeoutSeconds, "Per-call model timeout in seconds.")
}
