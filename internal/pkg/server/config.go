package server

import (
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Config holds the generic HTTP server configuration.
type Config struct {
	BindAddress     string
	BindPort        int
	Mode            string
	Middlewares     []string
	Healthz         bool
	EnableProfiling bool
}

// CompletedConfig is a Config with defaults applied.
type CompletedConfig struct {
	*Config
}

// NewConfig returns a Config with sane defaults.
func NewConfig() *Config {
	return &Config{
		BindAddress: "127.0.0.1",
		BindPort:    8010,
		Mode:        gin.ReleaseMode,
		Healthz:     true,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (c *Config) Complete() CompletedConfig {
	if c.Mode == "" {
		c.Mode = gin.ReleaseMode
	}
	return CompletedConfig{c}
}

// New returns a GenericAPIServer instance from the completed configuration.
func (c CompletedConfig) New() (*GenericAPIServer, error) {
	gin.SetMode(c.Mode)

	s := &GenericAPIServer{
		Engine:          gin.New(),
		address:         net.JoinHostPort(c.BindAddress, strconv.Itoa(c.BindPort)),
		healthz:         c.Healthz,
		enableProfiling: c.EnableProfiling,
		middlewares:     c.Middlewares,
	}
	s.setup()
	return s, nil
}
