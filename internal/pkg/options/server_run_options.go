package options

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/Missonix/SSAI-brain/internal/pkg/server"
)

// ServerRunOptions contains the options while running the generic API server.
type ServerRunOptions struct {
	BindAddress     string   `json:"bind-address"     mapstructure:"bind-address"`
	BindPort        int      `json:"bind-port"        mapstructure:"bind-port"`
	Mode            string   `json:"mode"             mapstructure:"mode"`
	Healthz         bool     `json:"healthz"          mapstructure:"healthz"`
	EnableProfiling bool     `json:"profiling"        mapstructure:"profiling"`
	Middlewares     []string `json:"middlewares"      mapstructure:"middlewares"`
}

// NewServerRunOptions creates ServerRunOptions with defaults.
func NewServerRunOptions() *ServerRunOptions {
	defaults := server.NewConfig()
	return &ServerRunOptions{
		BindAddress: defaults.BindAddress,
		BindPort:    defaults.BindPort,
		Mode:        defaults.Mode,
		Healthz:     defaults.Healthz,
	}
}

// ApplyTo applies the run options to the server config.
func (o *ServerRunOptions) ApplyTo(c *server.Config) error {
	c.BindAddress = o.BindAddress
	c.BindPort = o.BindPort
	c.Mode = o.Mode
	c.Healthz = o.Healthz
	c.EnableProfiling = o.EnableProfiling
	c.Middlewares = o.Middlewares
	return nil
}

// Validate checks the options.
func (o *ServerRunOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("bind-port %d must be between 1 and 65535", o.BindPort))
	}
	switch o.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("invalid server mode %q", o.Mode))
	}
	return errs
}

// AddFlags adds flags for the server run options to the given flag set.
func (o *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "server.bind-address", o.BindAddress, "IP address the HTTP server listens on.")
	fs.IntVar(&o.BindPort, "server.bind-port", o.BindPort, "Port the HTTP server listens on.")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Server mode: debug, release or test.")
	fs.BoolVar(&o.Healthz, "server.healthz", o.Healthz, "Install the /healthz route.")
	fs.BoolVar(&o.EnableProfiling, "server.profiling", o.EnableProfiling, "Install pprof routes.")
}
