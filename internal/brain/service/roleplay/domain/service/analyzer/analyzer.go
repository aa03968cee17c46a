// Package analyzer extracts intent and emotion records from the latest
// user utterance. Both analyses run in parallel and degrade to neutral
// defaults instead of failing the turn.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/llmjson"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// DefaultTimeout bounds each analysis call when the model config does not
// override it.
const DefaultTimeout = 30 * time.Second

var intentSystem = heredoc.Doc(`
	你是一个对话意图分析引擎。你的任务是分析用户最新一句话的真实意图。
	注意辨别挑衅与贬低:用户用"小百度""小谷歌""小爱同学"之类的称呼叫角色,
	或质疑角色"是不是机器人",都属于挑衅或试探,不是普通提问。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "intention": "意图类别,如 提问/闲聊/挑衅/请求帮助/表达情绪/未知",
	  "aim": "用户想达到的目的",
	  "targeting_object": "意图针对的对象",
	  "need_tool": false,
	  "tool": [],
	  "reason": "判断依据",
	  "confidence": 0.0
	}
	当用户的问题需要查询实时信息(天气、新闻、股价、赛事结果等)时,
	need_tool 为 true 并在 tool 中给出工具名,否则为 false。
`)

var emotionSystem = heredoc.Doc(`
	你是一个情绪感知引擎,以第一人称视角评估用户最新一句话带给"我"的情绪感受。
	"我"是一个有完整人格和自尊的人,被嘲讽、被当成机器使唤、被起外号都会引起真实的负面情绪。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "valence": 0.0,
	  "arousal": 0.0,
	  "dominance": 0.0,
	  "tags": "情绪标签,多个用、分隔,无影响时填 无影响",
	  "intensity": 1,
	  "mood_description_for_llm": "一句话描述这句话带来的感受",
	  "trigger": "触发情绪的内容",
	  "targeting_object": "情绪针对的对象",
	  "confidence": 0.0,
	  "reason": "判断依据"
	}
	valence 取值 -1.0 到 1.0,arousal 取值 0.0 到 1.0,intensity 取值 1 到 10。
`)

var impactSystem = heredoc.Doc(`
	你是角色本人,以第一人称判断对方刚刚这句话对"我"当前心情造成的波动。
	输出的是增量,不是目标值;这句话没有掀起波澜时所有数值填 0,impact_tags 填 无影响。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "impact_valence": 0.0,
	  "impact_arousal": 0.0,
	  "impact_tags": "影响标签,多个用、分隔,无影响时填 无影响",
	  "impact_intensity": 0.0,
	  "impact_description": "一句话描述这句话对我心情的影响"
	}
	impact_valence 取值 -1.0 到 1.0,impact_arousal 取值 -0.5 到 0.5,impact_intensity 取值 -3.0 到 3.0。
`)

// Analyzer runs the per-utterance analyses.
type Analyzer struct {
	gen     repo.TextGenerator
	timeout time.Duration
}

// New creates an Analyzer over a text generator. A non-positive timeout
// falls back to DefaultTimeout.
func New(gen repo.TextGenerator, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyzer{gen: gen, timeout: timeout}
}

// Analyze produces intent and emotion records for one utterance.
//
// The two model calls run concurrently. A failed or unparseable call is
// replaced by its neutral default; the returned error is non-nil only
// when both calls failed, and even then the Analysis is usable.
func (a *Analyzer) Analyze(ctx context.Context, roleName, userName, content string, history []string) (*entity.Analysis, error) {
	user := buildUserPrompt(roleName, userName, content, history)

	var (
		wg         sync.WaitGroup
		intent     *entity.IntentAnalysis
		emotion    *entity.EmotionAnalysis
		intentErr  error
		emotionErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		intent, intentErr = a.analyzeIntent(ctx, user)
	}()
	go func() {
		defer wg.Done()
		emotion, emotionErr = a.analyzeEmotion(ctx, user)
	}()
	wg.Wait()

	if intentErr != nil {
		logger.Warn("[Analyzer] intent analysis failed, using default: %v", intentErr)
		intent = entity.DefaultIntent()
	}
	if emotionErr != nil {
		logger.Warn("[Analyzer] emotion analysis failed, using default: %v", emotionErr)
		emotion = entity.DefaultEmotion()
	}

	res := &entity.Analysis{Intent: intent, Emotion: emotion}
	if intentErr != nil && emotionErr != nil {
		return res, fmt.Errorf("%w: intent: %v; emotion: %v", errno.ErrAnalysisFailed, intentErr, emotionErr)
	}
	return res, nil
}

func (a *Analyzer) analyzeIntent(ctx context.Context, user string) (*entity.IntentAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.gen.Generate(ctx, intentSystem, user)
	if err != nil {
		return nil, fmt.Errorf("intent call: %w", err)
	}
	payload, ok := llmjson.Extract(raw)
	if !ok {
		return nil, fmt.Errorf("intent response has no JSON object")
	}
	out := &entity.IntentAnalysis{}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return nil, fmt.Errorf("intent response unparseable: %w", err)
	}
	if out.Intention == "" {
		out.Intention = "未知"
	}
	return out, nil
}

func (a *Analyzer) analyzeEmotion(ctx context.Context, user string) (*entity.EmotionAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.gen.Generate(ctx, emotionSystem, user)
	if err != nil {
		return nil, fmt.Errorf("emotion call: %w", err)
	}
	payload, ok := llmjson.Extract(raw)
	if !ok {
		return nil, fmt.Errorf("emotion response has no JSON object")
	}
	out := &entity.EmotionAnalysis{}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return nil, fmt.Errorf("emotion response unparseable: %w", err)
	}
	normalizeEmotion(out)
	return out, nil
}

// Impact runs the first-person mood-impact analysis for one utterance and
// returns the bounded deltas the mood engine composes with.
//
// Unlike Analyze there is no default here: a failed or unparseable call
// returns an error and the caller keeps the mood untouched.
func (a *Analyzer) Impact(ctx context.Context, roleName, userName, content string, mood entity.Mood, history []string) (*entity.UserImpact, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "我是%s,正在和%s聊天。\n我当前的心情:%s\n", roleName, userName, mood.Summary())
	if len(history) > 0 {
		b.WriteString("最近对话:\n")
		for _, h := range history {
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "对方刚刚说:%s\n", content)

	raw, err := a.gen.Generate(ctx, impactSystem, b.String())
	if err != nil {
		return nil, fmt.Errorf("impact call: %w", err)
	}
	payload, ok := llmjson.Extract(raw)
	if !ok {
		return nil, fmt.Errorf("impact response has no JSON object")
	}
	out := &entity.UserImpact{}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return nil, fmt.Errorf("impact response unparseable: %w", err)
	}
	normalizeImpact(out)
	return out, nil
}

func normalizeImpact(u *entity.UserImpact) {
	u.Valence = clamp(u.Valence, -1, 1)
	u.Arousal = clamp(u.Arousal, -0.5, 0.5)
	u.Intensity = clamp(u.Intensity, -3, 3)
	if u.Tags == "" {
		u.Tags = "无影响"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalizeEmotion(e *entity.EmotionAnalysis) {
	if e.Valence < -1 {
		e.Valence = -1
	}
	if e.Valence > 1 {
		e.Valence = 1
	}
	if e.Arousal < 0 {
		e.Arousal = 0
	}
	if e.Arousal > 1 {
		e.Arousal = 1
	}
	if e.Intensity < 1 {
		e.Intensity = 1
	}
	if e.Intensity > 10 {
		e.Intensity = 10
	}
	if e.Tags == "" {
		e.Tags = "无影响"
	}
}

func buildUserPrompt(roleName, userName, content string, history []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "角色:%s\n用户:%s\n", roleName, userName)
	if len(history) > 0 {
		b.WriteString("最近对话:\n")
		for _, h := range history {
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "用户最新发言:%s\n", content)
	return b.String()
}
