// Package mcp connects to external MCP servers and exposes their tools to
// the turn pipeline. Characters use them for realtime lookups (weather,
// news, search) they could not know in-world.
package mcp

import (
	"fmt"
	"os"

	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// FileConfig is the on-disk MCP configuration, compatible with the Claude
// Desktop / VS Code format:
//
//	{
//	  "mcpServers": {
//	    "search": {
//	      "transport": "stdio",
//	      "command": "npx",
//	      "args": ["-y", "mcp-server-brave-search"]
//	    }
//	  }
//	}
type FileConfig struct {
	MCPServers map[string]*ServerConfig `json:"mcpServers"`
}

// ServerConfig configures one MCP server connection.
type ServerConfig struct {
	// Transport is "stdio" (subprocess, the default) or "sse".
	Transport string `json:"transport,omitempty"`

	// Command, Args and Env describe the subprocess for stdio transport.
	// Env entries use "KEY=VALUE" form.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Env     []string `json:"env,omitempty"`

	// URL is the endpoint for sse transport.
	URL string `json:"url,omitempty"`

	// ToolFilter limits which tools the server exposes; empty means all.
	ToolFilter []string `json:"toolFilter,omitempty"`
}

// LoadFileConfig reads the MCP configuration. A missing file is an empty
// config, not an error.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewFileConfig(), nil
		}
		return nil, fmt.Errorf("failed to read MCP config %q: %w", path, err)
	}

	cfg := &FileConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config %q: %w", path, err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*ServerConfig)
	}
	return cfg, nil
}

// NewFileConfig creates an empty configuration.
func NewFileConfig() *FileConfig {
	return &FileConfig{MCPServers: make(map[string]*ServerConfig)}
}

// Validate checks the configuration and fills transport defaults.
func (c *FileConfig) Validate() []error {
	var errs []error
	for name, srv := range c.MCPServers {
		if srv.Transport == "" {
			srv.Transport = "stdio"
		}
		switch srv.Transport {
		case "stdio":
			if srv.Command == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: command is required for stdio transport", name))
			}
		case "sse":
			if srv.URL == "" {
				errs = append(errs, fmt.Errorf("mcpServers.%s: url is required for sse transport", name))
			}
		default:
			errs = append(errs, fmt.Errorf("mcpServers.%s: unsupported transport %q", name, srv.Transport))
		}
	}
	return errs
}
