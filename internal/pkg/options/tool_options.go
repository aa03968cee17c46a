package options

import (
	"github.com/spf13/pflag"
)

// ToolOptions controls which tools the orchestrator may expose to the model.
// The model still decides whether to invoke an exposed tool; these options
// only gate availability.
type ToolOptions struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled"`
	Expose  []string `json:"expose"  mapstructure:"expose"`
}

// NewToolOptions creates ToolOptions with defaults.
func NewToolOptions() *ToolOptions {
	return &ToolOptions{
		Enabled: true,
	}
}

// Validate checks the options.
func (o *ToolOptions) Validate() []error { return nil }

// AddFlags adds flags for the tool options to the given flag set.
func (o *ToolOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "tools.enabled", o.Enabled, "Allow tool-augmented model invocations.")
	fs.StringSliceVar(&o.Expose, "tools.expose", o.Expose, "Tool names to expose; empty exposes every discovered tool.")
}
