package config

import (
	"github.com/Missonix/SSAI-brain/internal/brain/options"
)

// Config is the running configuration structure of the braind service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
