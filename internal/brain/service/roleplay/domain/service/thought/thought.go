// Package thought derives the per-turn inner state: the plot-baseline mood
// for the current moment of the day, and the inner monologue injected into
// the reply prompt. Both calls degrade instead of failing the turn.
package thought

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/llmjson"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// MoodUpdateTimeout bounds the plot-mood call. Past it the current mood is
// kept unchanged.
const MoodUpdateTimeout = 10 * time.Second

var plotMoodSystem = heredoc.Doc(`
	你是一个情绪推演引擎。根据角色今天到现在为止经历的剧情,推演角色此刻应有的基准心情。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "my_valence": 0.0,
	  "my_arousal": 0.5,
	  "my_tags": "情绪标签,多个用、分隔",
	  "my_intensity": 5,
	  "my_mood_description_for_llm": "一句话描述此刻的心情"
	}
	my_valence 取值 -1.0 到 1.0,my_arousal 取值 0.0 到 1.0,my_intensity 取值 1 到 10。
`)

var chainSystem = heredoc.Doc(`
	你是角色的内心活动生成器,以第一人称生成一段简短的内心独白,
	体现角色此刻的心情、对用户这句话的真实感受,以及接下来打算怎么回应。
	直接输出独白内容,不要输出任何解释或标注,不超过三句话。
`)

// Service runs the two inner-state derivations.
type Service struct {
	gen repo.TextGenerator
}

// New creates a thought Service over a text generator.
func New(gen repo.TextGenerator) *Service {
	return &Service{gen: gen}
}

// PlotMood derives the plot-baseline mood for the current plot window.
//
// An empty window, a timeout, a call failure or an unparseable response
// all yield the current mood unchanged. Missing tags or description in
// the response are filled from the current mood.
func (s *Service) PlotMood(ctx context.Context, roleName string, current entity.Mood, window entity.PlotWindow) entity.Mood {
	if window.Empty() {
		return current
	}

	ctx, cancel := context.WithTimeout(ctx, MoodUpdateTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "角色:%s\n当前心情:%s\n今天到现在经历的剧情:\n", roleName, current.Summary())
	for _, line := range window.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "此刻正在进行:%s\n", window.Current)

	raw, err := s.gen.Generate(ctx, plotMoodSystem, b.String())
	if err != nil {
		logger.Warn("[Thought] plot-mood call failed, keeping current mood: %v", err)
		return current
	}
	payload, ok := llmjson.Extract(raw)
	if !ok {
		logger.Warn("[Thought] plot-mood response has no JSON object, keeping current mood")
		return current
	}

	next := entity.Mood{Arousal: 0.5, Intensity: 5}
	if err := json.Unmarshal([]byte(payload), &next); err != nil {
		logger.Warn("[Thought] plot-mood response unparseable, keeping current mood: %v", err)
		return current
	}
	if next.Tags == "" {
		next.Tags = current.Tags
	}
	if next.Description == "" {
		next.Description = current.Description
	}
	next.Clamp()
	return next
}

// Chain composes the inner monologue for one turn. A failed call falls
// back to a template line so the reply prompt always carries one.
func (s *Service) Chain(ctx context.Context, roleName string, mood entity.Mood, analysis *entity.Analysis, userContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "角色:%s\n当前心情:%s\n", roleName, mood.Summary())
	if analysis != nil && analysis.Intent != nil {
		fmt.Fprintf(&b, "用户意图:%s(%s)\n", analysis.Intent.Intention, analysis.Intent.Aim)
	}
	if analysis != nil && analysis.Emotion != nil && analysis.Emotion.Description != "" {
		fmt.Fprintf(&b, "这句话带给我的感受:%s\n", analysis.Emotion.Description)
	}
	fmt.Fprintf(&b, "用户刚刚说:%s\n", userContent)

	raw, err := s.gen.Generate(ctx, chainSystem, b.String())
	if err != nil || strings.TrimSpace(raw) == "" {
		logger.Warn("[Thought] chain call failed, using template: %v", err)
		return fallbackChain(mood, analysis)
	}
	return strings.TrimSpace(raw)
}

func fallbackChain(mood entity.Mood, analysis *entity.Analysis) string {
	intent := "未知"
	if analysis != nil && analysis.Intent != nil && analysis.Intent.Intention != "" {
		intent = analysis.Intent.Intention
	}
	return fmt.Sprintf("我现在的心情是%s,强度%d。对方的意图看起来是%s,我就按自己现在的状态自然回应。",
		mood.Tags, mood.Intensity, intent)
}
