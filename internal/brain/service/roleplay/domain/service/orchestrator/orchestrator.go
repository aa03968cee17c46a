// Package orchestrator drives one user turn end to end: session
// resolution, analysis, mood composition, tool-augmented reply generation
// and leak filtering.
//
// The pipeline never fails a turn for a degraded inner step; only a
// missing role, persona or session aborts it.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/analyzer"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/dialog"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/prompt"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/thought"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// historyWindow is how many recent messages feed the analysis and reply
// prompts.
const historyWindow = 20

// ToolRunner produces a reply with tool definitions attached. The model
// decides which tools to invoke, if any; the orchestrator only decides
// whether definitions are attached at all.
type ToolRunner interface {
	// GenerateWithTools runs one tool-augmented generation and returns the
	// final reply plus the tool calls the model made along the way.
	GenerateWithTools(ctx context.Context, system, user string) (string, []entity.ToolCall, error)
	// Names lists the attachable tool names.
	Names(ctx context.Context) []string
}

// Orchestrator wires the per-turn services together.
type Orchestrator struct {
	roles    repo.RoleRepository
	personas *persona.Service
	sessions *dialog.SessionResolver
	log      *dialog.Log
	moods    *moodengine.Store
	analyzer *analyzer.Analyzer
	thought  *thought.Service
	plots    *plotwindow.Resolver
	clock    clock.Clock
	gen      repo.TextGenerator
	tools    ToolRunner
}

// Deps collects the orchestrator's collaborators.
type Deps struct {
	Roles    repo.RoleRepository
	Personas *persona.Service
	Sessions *dialog.SessionResolver
	Log      *dialog.Log
	Moods    *moodengine.Store
	Analyzer *analyzer.Analyzer
	Thought  *thought.Service
	Plots    *plotwindow.Resolver
	Clock    clock.Clock
	Gen      repo.TextGenerator
	// Tools is optional; a nil runner disables tool calls.
	Tools ToolRunner
}

// New creates an Orchestrator.
func New(d Deps) *Orchestrator {
	return &Orchestrator{
		roles:    d.Roles,
		personas: d.Personas,
		sessions: d.Sessions,
		log:      d.Log,
		moods:    d.Moods,
		analyzer: d.Analyzer,
		thought:  d.Thought,
		plots:    d.Plots,
		clock:    d.Clock,
		gen:      d.Gen,
		tools:    d.Tools,
	}
}

// SetTools installs the tool runner. Called once during startup wiring,
// before the orchestrator serves any turn.
func (o *Orchestrator) SetTools(t ToolRunner) {
	o.tools = t
}

// Turn runs one user utterance through the full pipeline.
//
// Nothing is persisted until the reply invocation has succeeded: a quota
// failure returns a system message and leaves mood, session and log
// untouched, so a retry of the same utterance starts clean.
func (o *Orchestrator) Turn(ctx context.Context, req *entity.TurnRequest) (*entity.TurnResult, error) {
	started := time.Now()

	detail, err := o.roles.GetDetail(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	personaText, err := o.personas.Load(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	session, err := o.sessions.Resolve(ctx, req.UserName, req.RoleID, detail.RoleName, req.SessionID, req.ForceNewSession)
	if err != nil {
		return nil, err
	}
	result := &entity.TurnResult{SessionID: session.SessionID}

	history, err := o.log.Recent(ctx, session.SessionID, historyWindow)
	if err != nil {
		logger.Warn("[Orchestrator] history read failed for session %q: %v", session.SessionID, err)
	}
	historyLines := formatHistory(history, detail.RoleName)

	now := o.clock.Now(ctx)
	window, err := o.plots.Window(req.RoleID, now)
	if err != nil {
		logger.Warn("[Orchestrator] plot window unresolved for role %q: %v", req.RoleID, err)
		window = entity.PlotWindow{}
	}

	analysis, err := o.analyzer.Analyze(ctx, detail.RoleName, req.UserName, req.Content, historyLines)
	if err != nil {
		logger.Warn("[Orchestrator] analysis degraded for role %q: %v", req.RoleID, err)
	}

	seed := detail.Mood
	if seed.Tags == "" {
		seed = entity.NeutralMood()
	}
	current, err := o.moods.Current(ctx, req.RoleID, seed)
	if err != nil {
		current = seed
	}
	plotMood := o.thought.PlotMood(ctx, detail.RoleName, current, window)

	// The user-impact term comes from its own first-person model call; an
	// unusable result keeps the mood exactly as it was.
	mood := current
	moodChanged := false
	impact, impactErr := o.analyzer.Impact(ctx, detail.RoleName, req.UserName, req.Content, current, historyLines)
	if impactErr != nil {
		logger.Warn("[Orchestrator] impact analysis unusable for role %q, keeping mood: %v", req.RoleID, impactErr)
	} else {
		mood = moodengine.Compose(current, plotMood, *impact)
		moodChanged = true
	}

	withTools := o.tools != nil && needsTools(req.Content, analysis.Intent)
	var toolNames []string
	if withTools {
		toolNames = o.tools.Names(ctx)
	}

	chain := o.thought.Chain(ctx, detail.RoleName, mood, analysis, req.Content)

	builder := &prompt.Builder{
		Persona:     personaText,
		RoleName:    detail.RoleName,
		UserName:    req.UserName,
		Mood:        mood,
		Window:      window,
		PastSummary: o.personas.PastSummary(ctx, req.RoleID, detail.RoleName),
		InnerChain:  chain,
		ToolNames:   toolNames,
	}
	system := builder.Build()
	user := buildReplyPrompt(historyLines, req.UserName, req.Content)

	reply, calls, err := o.generateReply(ctx, system, user, mood, withTools)
	if err != nil {
		kind := classifyFailure(err)
		result.SystemMessage = failureSystemMessage(kind)
		if kind == failureQuota {
			// Nothing worth saying and nothing to persist; the turn can be
			// retried as if it never happened.
			logger.Error("[Orchestrator] generation quota failure for role %q: %v", req.RoleID, err)
			return result, nil
		}
		logger.Error("[Orchestrator] generation failed for role %q, using fallback: %v", req.RoleID, err)
		reply = fallbackReply(mood)
		calls = nil
	}

	if moodChanged {
		if err := o.moods.Save(ctx, req.RoleID, mood); err != nil {
			logger.Warn("[Orchestrator] mood save failed for role %q: %v", req.RoleID, err)
		}
	}

	userMsg := entity.NewUserMessage(session.SessionID, req.UserName, req.Content)
	if err := o.log.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to record user message: %w", err)
	}
	for _, call := range calls {
		result.ToolsUsed = append(result.ToolsUsed, call.Name)
		toolMsg := entity.NewToolMessage(session.SessionID, call.Name, call.Params, call.Result)
		if err := o.log.Append(ctx, toolMsg); err != nil {
			logger.Warn("[Orchestrator] failed to record tool message: %v", err)
		}
	}
	agentMsg := entity.NewAgentMessage(session.SessionID, req.UserName, reply)
	if err := o.log.Append(ctx, agentMsg); err != nil {
		logger.Error("[Orchestrator] failed to record reply for session %q: %v", session.SessionID, err)
	}

	result.Response = reply
	logger.Info("[Orchestrator] turn done role=%s session=%s tools=%v mood=(%s) in %s",
		req.RoleID, session.SessionID, result.ToolsUsed, mood.Summary(), time.Since(started).Round(time.Millisecond))
	return result, nil
}

// invoke runs one reply generation. With tools attached the runner's
// model drives the tool loop; a geographically blocked or unreachable
// tool-augmented call retries once as a plain call before giving up.
func (o *Orchestrator) invoke(ctx context.Context, system, user string, withTools bool) (string, []entity.ToolCall, error) {
	if withTools && o.tools != nil {
		reply, calls, err := o.tools.GenerateWithTools(ctx, system, user)
		if err == nil {
			return reply, calls, nil
		}
		if classifyFailure(err) != failureUnreachable {
			return "", nil, err
		}
		logger.Warn("[Orchestrator] tool-augmented call unreachable, retrying without tools: %v", err)
	}
	reply, err := o.gen.Generate(ctx, system, user)
	return reply, nil, err
}

// generateReply calls the model and enforces the leak filter: one
// regeneration with a hardened instruction, then the canned reply. A
// leaked draft is never re-emitted, not even scrubbed.
func (o *Orchestrator) generateReply(ctx context.Context, system, user string, mood entity.Mood, withTools bool) (string, []entity.ToolCall, error) {
	reply, calls, err := o.invoke(ctx, system, user, withTools)
	if err != nil {
		return "", nil, err
	}
	reply = strings.TrimSpace(reply)
	if !HasLeak(reply) {
		return reply, calls, nil
	}

	logger.Warn("[Orchestrator] inner-state leak detected, regenerating")
	retry, retryCalls, err := o.invoke(ctx, system+"\n再次强调:回复中绝对不能出现括号内的内心活动或策略说明。", user, withTools)
	if err == nil {
		retry = strings.TrimSpace(retry)
		if retry != "" && !HasLeak(retry) {
			return retry, retryCalls, nil
		}
	}
	return fallbackReply(mood), nil, nil
}

// fallbackReply is the in-character canned answer, keyed by how worked up
// the character currently is.
func fallbackReply(mood entity.Mood) string {
	switch {
	case mood.Intensity >= 7:
		return "心情不好,别烦我。"
	case mood.Intensity >= 5:
		return "没什么心情,不想聊。"
	default:
		return "嗯,没什么可说的。"
	}
}

func formatHistory(messages []*entity.Message, roleName string) []string {
	var lines []string
	for _, m := range messages {
		switch m.Sender {
		case entity.SenderUser:
			lines = append(lines, fmt.Sprintf("%s: %s", m.UserName, m.Content))
		case entity.SenderAgent:
			lines = append(lines, fmt.Sprintf("%s: %s", roleName, m.Content))
		}
	}
	return lines
}

func buildReplyPrompt(history []string, userName, content string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("最近对话:\n")
		for _, line := range history {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s: %s", userName, content)
	return b.String()
}
