package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/analyzer"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/dialog"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/orchestrator"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/thought"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/inmemory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

// turnScript answers every model call of a turn by its system-prompt
// family. Reply calls consume the replies queue; the other families get
// fixed structured answers so analysis never degrades unless a test asks
// for it.
type turnScript struct {
	mu         sync.Mutex
	replies    []string
	replyErr   error
	impactResp string
	replyCalls int
}

func newTurnScript(replies ...string) *turnScript {
	return &turnScript{
		replies:    replies,
		impactResp: `{"impact_valence":-0.4,"impact_arousal":0.1,"impact_tags":"恼火","impact_intensity":2,"impact_description":"这话听着不太舒服"}`,
	}
}

func (s *turnScript) generate(_ context.Context, system, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.Contains(system, "对话意图分析引擎"):
		return `{"intention":"闲聊","aim":"随便聊聊","need_tool":false,"confidence":0.9}`, nil
	case strings.Contains(system, "情绪感知引擎"):
		return `{"valence":0.1,"arousal":0.3,"tags":"平静","intensity":3,"mood_description_for_llm":"普通的一句话"}`, nil
	case strings.Contains(system, "心情造成的波动"):
		return s.impactResp, nil
	case strings.Contains(system, "情绪推演引擎"):
		return `{"my_valence":0.2,"my_arousal":0.4,"my_tags":"平静","my_intensity":4,"my_mood_description_for_llm":"按部就班的一天"}`, nil
	case strings.Contains(system, "内心活动生成器"):
		return "他就是随口一说,我正常聊就好。", nil
	default:
		s.replyCalls++
		if s.replyErr != nil {
			return "", s.replyErr
		}
		if len(s.replies) == 0 {
			return "还行吧,就是有点忙。", nil
		}
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return reply, nil
	}
}

func (s *turnScript) replyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replyCalls
}

// fakeToolRunner is a scripted tool-augmented generation.
type fakeToolRunner struct {
	reply   string
	calls   []entity.ToolCall
	err     error
	invoked int
}

func (f *fakeToolRunner) GenerateWithTools(context.Context, string, string) (string, []entity.ToolCall, error) {
	f.invoked++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, f.calls, nil
}

func (f *fakeToolRunner) Names(context.Context) []string {
	return []string{"current_time"}
}

type turnFixture struct {
	orch   *orchestrator.Orchestrator
	roles  *sqlite.RoleStore
	log    *dialog.Log
	script *turnScript
	tools  *fakeToolRunner
}

var initialTurnMood = entity.Mood{Valence: 0.2, Arousal: 0.4, Tags: "平静", Intensity: 4, Description: "普通的一天"}

func newTurnFixture(t *testing.T, script *turnScript) *turnFixture {
	t.Helper()
	db, err := sqlite.Open(":memory:", 5000)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hot := inmemory.NewHotStore()
	roles := sqlite.NewRoleStore(db)
	sessions := sqlite.NewSessionStore(db)
	messages := sqlite.NewMessageStore(db)

	personaDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(personaDir, "role_001_L0_prompt.txt"), []byte("爽朗的程序员,嘴硬心软。"), 0o644); err != nil {
		t.Fatalf("write persona: %v", err)
	}

	err = roles.UpsertDetail(context.Background(), &entity.RoleDetail{
		RoleID: "role_001", RoleName: "小慧", Age: 22, Mood: initialTurnMood,
	})
	if err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}

	gen := repo.GenerateFunc(script.generate)
	log := dialog.NewLog(hot, messages, sessions)
	tools := &fakeToolRunner{
		reply: "现在晚上八点啦。",
		calls: []entity.ToolCall{{Name: "current_time", Params: "{}", Result: "2026年08月24日 周一 20:00"}},
	}

	orch := orchestrator.New(orchestrator.Deps{
		Roles:    roles,
		Personas: persona.New(personaDir, t.TempDir()),
		Sessions: dialog.NewSessionResolver(sessions),
		Log:      log,
		Moods:    moodengine.NewStore(hot, roles),
		Analyzer: analyzer.New(gen, 0),
		Thought:  thought.New(gen),
		Plots:    plotwindow.NewResolver(t.TempDir()),
		Clock:    clock.Func(func(context.Context) time.Time { return time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC) }),
		Gen:      gen,
		Tools:    tools,
	})

	return &turnFixture{orch: orch, roles: roles, log: log, script: script, tools: tools}
}

func (f *turnFixture) turn(t *testing.T, content string) *entity.TurnResult {
	t.Helper()
	res, err := f.orch.Turn(context.Background(), &entity.TurnRequest{
		RoleID: "role_001", UserName: "阿强", Content: content,
	})
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	return res
}

func (f *turnFixture) messages(t *testing.T, sessionID string) []*entity.Message {
	t.Helper()
	msgs, err := f.log.Recent(context.Background(), sessionID, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	return msgs
}

func (f *turnFixture) storedMood(t *testing.T) entity.Mood {
	t.Helper()
	detail, err := f.roles.GetDetail(context.Background(), "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	return detail.Mood
}

func TestTurnSmallTalk(t *testing.T) {
	t.Parallel()

	f := newTurnFixture(t, newTurnScript())
	res := f.turn(t, "今天过得怎么样?")

	if res.Response != "还行吧,就是有点忙。" {
		t.Errorf("Response = %q", res.Response)
	}
	if res.SystemMessage != "" {
		t.Errorf("SystemMessage = %q, want empty", res.SystemMessage)
	}
	if len(res.ToolsUsed) != 0 {
		t.Errorf("ToolsUsed = %v, want none", res.ToolsUsed)
	}
	if f.tools.invoked != 0 {
		t.Errorf("tool runner invoked %d times for small talk", f.tools.invoked)
	}

	msgs := f.messages(t, res.SessionID)
	if len(msgs) != 2 {
		t.Fatalf("logged messages = %d, want user+agent", len(msgs))
	}
	if msgs[0].Sender != entity.SenderUser || msgs[0].Content != "今天过得怎么样?" {
		t.Errorf("first message = %+v, want the user utterance", msgs[0])
	}
	if msgs[1].Sender != entity.SenderAgent || msgs[1].Content != res.Response {
		t.Errorf("second message = %+v, want the reply", msgs[1])
	}
}

func TestTurnAttachesToolsForTimeQuestion(t *testing.T) {
	t.Parallel()

	f := newTurnFixture(t, newTurnScript())
	res := f.turn(t, "现在几点了?")

	if f.tools.invoked != 1 {
		t.Fatalf("tool runner invoked %d times, want 1", f.tools.invoked)
	}
	if res.Response != "现在晚上八点啦。" {
		t.Errorf("Response = %q, want the tool-augmented reply", res.Response)
	}
	if len(res.ToolsUsed) != 1 || res.ToolsUsed[0] != "current_time" {
		t.Errorf("ToolsUsed = %v, want [current_time]", res.ToolsUsed)
	}

	msgs := f.messages(t, res.SessionID)
	var toolMsg *entity.Message
	for _, m := range msgs {
		if m.Sender == entity.SenderTool {
			toolMsg = m
		}
	}
	if toolMsg == nil {
		t.Fatal("no tool message logged")
	}
	if toolMsg.ToolName != "current_time" || !strings.Contains(toolMsg.ToolResult, "20:00") {
		t.Errorf("tool message = %+v", toolMsg)
	}
}

func TestTurnProvocationLowersMood(t *testing.T) {
	t.Parallel()

	script := newTurnScript("哦。")
	script.impactResp = `{"impact_valence":-0.6,"impact_arousal":0.2,"impact_tags":"恼火","impact_intensity":2,"impact_description":"被当成机器使唤了"}`
	f := newTurnFixture(t, script)

	f.turn(t, "你就是个机器人吧")

	mood := f.storedMood(t)
	if mood.Valence >= initialTurnMood.Valence {
		t.Errorf("valence = %v, want below %v after provocation", mood.Valence, initialTurnMood.Valence)
	}
	if !strings.Contains(mood.Tags, "恼火") {
		t.Errorf("mood tags = %q, want 恼火 merged in", mood.Tags)
	}
}

func TestTurnRegeneratesOnInnerLeak(t *testing.T) {
	t.Parallel()

	script := newTurnScript("(内心OS:烦死了)走开。", "走开,别烦我。")
	f := newTurnFixture(t, script)

	res := f.turn(t, "喂,理我一下")

	if script.replyCount() != 2 {
		t.Fatalf("reply calls = %d, want a regeneration", script.replyCount())
	}
	if res.Response != "走开,别烦我。" {
		t.Errorf("Response = %q, want the regenerated reply", res.Response)
	}
	for _, m := range f.messages(t, res.SessionID) {
		if strings.Contains(m.Content, "内心OS") {
			t.Errorf("leaked draft reached the log: %q", m.Content)
		}
	}
}

func TestTurnDoubleLeakNeverEmitsDraft(t *testing.T) {
	t.Parallel()

	script := newTurnScript("(内心OS:烦死了)走开。", "(心理活动:要装平静)没事。")
	f := newTurnFixture(t, script)

	res := f.turn(t, "喂,理我一下")

	if res.Response != "嗯,没什么可说的。" {
		t.Errorf("Response = %q, want the canned reply", res.Response)
	}
	if strings.Contains(res.Response, "走开") || strings.Contains(res.Response, "没事") {
		t.Errorf("Response %q derives from a flagged draft", res.Response)
	}
	for _, m := range f.messages(t, res.SessionID) {
		if strings.Contains(m.Content, "内心OS") || strings.Contains(m.Content, "心理活动") {
			t.Errorf("leaked draft reached the log: %q", m.Content)
		}
	}
}

func TestTurnQuotaFailureLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	script := newTurnScript()
	script.replyErr = errors.New("request rejected: 429 too many requests")
	f := newTurnFixture(t, script)

	res := f.turn(t, "今天过得怎么样?")

	if res.Response != "" {
		t.Errorf("Response = %q, want empty on quota failure", res.Response)
	}
	if !strings.Contains(res.SystemMessage, "额度") {
		t.Errorf("SystemMessage = %q, want the quota notice", res.SystemMessage)
	}

	// The turn never happened as far as state goes: no log rows, mood
	// untouched, so a retry starts clean.
	if msgs := f.messages(t, res.SessionID); len(msgs) != 0 {
		t.Errorf("logged messages = %d, want none", len(msgs))
	}
	if mood := f.storedMood(t); mood != initialTurnMood {
		t.Errorf("mood = %+v, want untouched %+v", mood, initialTurnMood)
	}
}

func TestTurnUnreachableToolCallRetriesPlain(t *testing.T) {
	t.Parallel()

	f := newTurnFixture(t, newTurnScript())
	f.tools.err = errors.New("dial tcp: connection refused")

	res := f.turn(t, "现在几点了?")

	if f.tools.invoked != 1 {
		t.Fatalf("tool runner invoked %d times, want 1", f.tools.invoked)
	}
	if res.Response != "还行吧,就是有点忙。" {
		t.Errorf("Response = %q, want the plain retry's reply", res.Response)
	}
	if len(res.ToolsUsed) != 0 {
		t.Errorf("ToolsUsed = %v, want none after the plain retry", res.ToolsUsed)
	}
}

func TestTurnUnusableImpactKeepsMood(t *testing.T) {
	t.Parallel()

	script := newTurnScript()
	script.impactResp = "今天不想分析"
	f := newTurnFixture(t, script)

	res := f.turn(t, "随便聊聊吧")

	if res.Response == "" {
		t.Fatal("turn produced no reply")
	}
	if mood := f.storedMood(t); mood != initialTurnMood {
		t.Errorf("mood = %+v, want untouched %+v when impact is unusable", mood, initialTurnMood)
	}
	// The conversation itself still lands in the log.
	if msgs := f.messages(t, res.SessionID); len(msgs) != 2 {
		t.Errorf("logged messages = %d, want 2", len(msgs))
	}
}
