package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/tool"

	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Config holds the MCP module configuration.
type Config struct {
	FileConfig *FileConfig
}

// CompletedConfig is the completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.FileConfig == nil {
		c.FileConfig = NewFileConfig()
	}
	for _, srv := range c.FileConfig.MCPServers {
		if srv.Transport == "" {
			srv.Transport = "stdio"
		}
	}
	return CompletedConfig{c}
}

// Module holds the connected MCP servers.
type Module struct {
	Manager *Manager
}

// New creates the MCP module and connects its servers. Connection failures
// are tolerated unless every server fails.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	mgr := newManager(c.FileConfig)
	if err := mgr.Initialize(ctx); err != nil {
		logger.Warn("[MCP] initialization incomplete: %v", err)
	}
	logger.Info("[MCP] module initialized (%d servers configured)", len(c.FileConfig.MCPServers))
	return &Module{Manager: mgr}, nil
}

// Close releases every server connection.
func (m *Module) Close() error {
	if m.Manager != nil {
		return m.Manager.Close()
	}
	return nil
}

// Manager owns the configured servers and aggregates their tools.
type Manager struct {
	mu      sync.RWMutex
	servers map[string]*Server
	order   []string
}

func newManager(cfg *FileConfig) *Manager {
	m := &Manager{
		servers: make(map[string]*Server, len(cfg.MCPServers)),
		order:   make([]string, 0, len(cfg.MCPServers)),
	}
	for name, srvCfg := range cfg.MCPServers {
		m.servers[name] = NewServer(name, srvCfg)
		m.order = append(m.order, name)
	}
	return m
}

// Initialize connects every configured server concurrently. A single
// failure is logged; the error return fires only when all servers failed.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.servers) == 0 {
		logger.Info("[MCP] no servers configured")
		return nil
	}

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs []error
	for _, srv := range m.servers {
		wg.Add(1)
		go func(s *Server) {
			defer wg.Done()
			if err := s.Connect(ctx); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				logger.Warn("[MCP] %v", err)
			}
		}(srv)
	}
	wg.Wait()

	connected := 0
	for _, srv := range m.servers {
		if srv.Status() == StatusConnected {
			connected++
		}
	}
	logger.Info("[MCP] %d/%d servers connected", connected, len(m.servers))

	if len(errs) > 0 && connected == 0 {
		return fmt.Errorf("all MCP servers failed to connect (%d errors)", len(errs))
	}
	return nil
}

// AllTools aggregates tools from every connected server in config order.
func (m *Manager) AllTools() []tool.BaseTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []tool.BaseTool
	for _, name := range m.order {
		if srv := m.servers[name]; srv.Status() == StatusConnected {
			all = append(all, srv.Tools()...)
		}
	}
	return all
}

// Reconnect re-dials one server.
func (m *Manager) Reconnect(ctx context.Context, name string) error {
	m.mu.RLock()
	srv, ok := m.servers[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("mcp server %q not configured", name)
	}
	return srv.Reconnect(ctx)
}

// ServerNames lists the configured servers in config order.
func (m *Manager) ServerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Close drops every connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, srv := range m.servers {
		srv.Close()
	}
	logger.Info("[MCP] all servers closed")
	return nil
}
