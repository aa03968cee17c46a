// Package tools runs tool-augmented reply generations: a ReAct agent over
// the default chat model, armed with a builtin clock tool plus whatever
// the connected MCP servers expose. The model decides which tools to call;
// this package only supplies the definitions and records what actually ran.
package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/Missonix/SSAI-brain/internal/brain/service/mcp"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// TimeToolName is the builtin clock tool. It answers from the character's
// civil clock, never from a remote lookup.
const TimeToolName = "current_time"

// maxAgentSteps bounds the ReAct loop per invocation.
const maxAgentSteps = 6

// defaultTimeout bounds one tool-augmented generation when the model
// config does not override it.
const defaultTimeout = 60 * time.Second

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// Service builds and runs tool-augmented generations.
type Service struct {
	clock   clock.Clock
	model   model.ToolCallingChatModel
	mcp     *mcp.Manager
	timeout time.Duration
	// expose limits which MCP tools are attached; empty means all.
	expose map[string]bool
}

// New creates a tool Service. mcpMgr may be nil when no MCP servers are
// configured; a non-positive timeout falls back to the default.
func New(clk clock.Clock, chatModel model.ToolCallingChatModel, mcpMgr *mcp.Manager, expose []string, timeout time.Duration) *Service {
	allowed := make(map[string]bool, len(expose))
	for _, name := range expose {
		allowed[name] = true
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{clock: clk, model: chatModel, mcp: mcpMgr, timeout: timeout, expose: allowed}
}

// GenerateWithTools runs one ReAct generation with every attachable tool
// offered to the model. The returned calls are the invocations the model
// actually made, in order.
func (s *Service) GenerateWithTools(ctx context.Context, system, user string) (string, []entity.ToolCall, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec := &recorder{}
	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: s.model,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: s.attachableTools(ctx, rec),
		},
		MaxStep: maxAgentSteps,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: build agent: %v", errno.ErrToolInvocationFailed, err)
	}

	out, err := agent.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errno.ErrToolInvocationFailed, err)
	}
	calls := rec.snapshot()
	logger.Info("[Tools] agent finished with %d tool call(s)", len(calls))
	return out.Content, calls, nil
}

// Names lists every attachable tool: the builtin one plus connected MCP
// tools surviving the expose filter.
func (s *Service) Names(ctx context.Context) []string {
	names := []string{TimeToolName}
	if s.mcp == nil {
		return names
	}
	for _, t := range s.mcp.AllTools() {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		if len(s.expose) > 0 && !s.expose[info.Name] {
			continue
		}
		names = append(names, info.Name)
	}
	return names
}

// attachableTools wraps every attachable tool so executed calls land in
// the recorder.
func (s *Service) attachableTools(ctx context.Context, rec *recorder) []tool.BaseTool {
	wrapped := []tool.BaseTool{
		&recordedTool{InvokableTool: &clockTool{clock: s.clock}, name: TimeToolName, rec: rec},
	}
	if s.mcp == nil {
		return wrapped
	}
	for _, t := range s.mcp.AllTools() {
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			continue
		}
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		if len(s.expose) > 0 && !s.expose[info.Name] {
			continue
		}
		wrapped = append(wrapped, &recordedTool{InvokableTool: invokable, name: info.Name, rec: rec})
	}
	return wrapped
}

// recorder collects the tool calls one generation made.
type recorder struct {
	mu    sync.Mutex
	calls []entity.ToolCall
}

func (r *recorder) add(name, params, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, entity.ToolCall{Name: name, Params: params, Result: result})
}

func (r *recorder) snapshot() []entity.ToolCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ToolCall(nil), r.calls...)
}

// recordedTool decorates an invokable tool with call recording.
type recordedTool struct {
	tool.InvokableTool
	name string
	rec  *recorder
}

func (t *recordedTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	result, err := t.InvokableTool.InvokableRun(ctx, argumentsInJSON, opts...)
	if err != nil {
		return "", err
	}
	t.rec.add(t.name, argumentsInJSON, result)
	return result, nil
}

// clockTool answers time questions from the character's civil clock.
type clockTool struct {
	clock clock.Clock
}

func (t *clockTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        TimeToolName,
		Desc:        "查询角色所在世界当前的日期、星期和时间",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *clockTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	now := t.clock.Now(ctx)
	return fmt.Sprintf("%s %s %s", now.Format("2006年01月02日"), weekdays[now.Weekday()], now.Format("15:04")), nil
}
