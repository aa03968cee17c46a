package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpTool "github.com/cloudwego/eino-ext/components/tool/mcp"
	"github.com/cloudwego/eino/components/tool"
	"github.com/mark3labs/mcp-go/client"
	mcpProto "github.com/mark3labs/mcp-go/mcp"

	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// ServerStatus is the connection state of one MCP server.
type ServerStatus int

const (
	StatusDisconnected ServerStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s ServerStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Server is one configured MCP server connection and its discovered tools.
type Server struct {
	name   string
	config *ServerConfig

	mu     sync.RWMutex
	client client.MCPClient
	tools  []tool.BaseTool
	status ServerStatus
	err    error
}

// NewServer creates a disconnected Server.
func NewServer(name string, cfg *ServerConfig) *Server {
	return &Server{name: name, config: cfg, status: StatusDisconnected}
}

func (s *Server) Name() string {
	return s.name
}

func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Tools returns the discovered tools; empty while disconnected.
func (s *Server) Tools() []tool.BaseTool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tool.BaseTool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Connect performs the MCP handshake and discovers the server's tools.
func (s *Server) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusConnecting
	s.err = nil

	cli, err := s.newClient()
	if err != nil {
		s.status = StatusError
		s.err = err
		return fmt.Errorf("mcp server %q: failed to create client: %w", s.name, err)
	}

	initReq := mcpProto.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpProto.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpProto.Implementation{
		Name:    "SSAI-brain",
		Version: "0.1.0",
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		s.status = StatusError
		s.err = err
		return fmt.Errorf("mcp server %q: handshake failed: %w", s.name, err)
	}

	tools, err := mcpTool.GetTools(ctx, &mcpTool.Config{
		Cli:          cli,
		ToolNameList: s.config.ToolFilter,
	})
	if err != nil {
		s.status = StatusError
		s.err = err
		return fmt.Errorf("mcp server %q: tool discovery failed: %w", s.name, err)
	}

	s.client = cli
	s.tools = tools
	s.status = StatusConnected
	return nil
}

// Reconnect drops the connection and dials again.
func (s *Server) Reconnect(ctx context.Context) error {
	s.Close()
	return s.Connect(ctx)
}

// Close drops the connection and its tools.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Warn("[MCP] server %q: close failed: %v", s.name, err)
		}
		s.client = nil
	}
	s.tools = nil
	s.status = StatusDisconnected
	s.err = nil
}

func (s *Server) newClient() (client.MCPClient, error) {
	switch s.config.Transport {
	case "stdio":
		return client.NewStdioMCPClient(s.config.Command, s.config.Env, s.config.Args...)
	case "sse":
		return client.NewSSEMCPClient(s.config.URL)
	default:
		return nil, fmt.Errorf("unknown transport %q", s.config.Transport)
	}
}
