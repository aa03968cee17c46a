// Package lifestory owns the life-story hierarchy: generating stages,
// segments and daily plots, and advancing the machine when the character's
// calendar outruns the generated material.
package lifestory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/llmjson"
	"github.com/Missonix/SSAI-brain/pkg/logger"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// Retry policy for generation calls. The backoff doubles after each failed
// attempt.
const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

var initialStageSystem = heredoc.Doc(`
	你是一个人生编剧。根据角色的人设和人生大纲,把角色从出生到当前年龄的人生
	规划成连续的阶段,最后一个阶段覆盖角色现在的年龄,并可以再向后延伸一段。
	至少规划 6 个阶段,按时间顺序排列,阶段之间不留空档。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "stages": [
	    {
	      "life_period": "年龄区间,如 0-6岁",
	      "title": "阶段标题",
	      "description_for_plot_llm": "给剧情生成器看的阶段描述",
	      "stage_goals": "这个阶段角色想达成的目标"
	    }
	  ]
	}
`)

var stageSystem = heredoc.Doc(`
	你是一个人生编剧。根据角色的人设、人生大纲和已完成阶段的摘要,规划接下来的人生阶段。
	一次规划 2 到 3 个阶段,按时间顺序排列。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "stages": [
	    {
	      "life_period": "年龄区间,如 22-25岁",
	      "title": "阶段标题",
	      "description_for_plot_llm": "给剧情生成器看的阶段描述",
	      "stage_goals": "这个阶段角色想达成的目标"
	    }
	  ]
	}
`)

var segmentSystem = heredoc.Doc(`
	你是一个人生编剧。把给定的人生阶段拆成 4 到 6 个连续的剧情段,按时间顺序排列,
	与角色的人设和过往经历保持连贯。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "segments": [
	    {
	      "title": "剧情段标题",
	      "life_age": 23,
	      "segment_prompt_for_plot_llm": "给每日剧情生成器看的剧情段描述",
	      "duration_in_days_estimate": 5,
	      "expected_emotional_arc": "这段时间的情绪走向",
	      "key_npcs_involved": "涉及的重要人物",
	      "is_milestone_event": false
	    }
	  ]
	}
	duration_in_days_estimate 取 3 到 10 之间的整数。
`)

var dailyPlotSystem = heredoc.Doc(`
	你是一个每日剧情生成器。为角色生成指定一天的日程,时间线从早到晚覆盖全天,
	与角色的人设、剧情段走向和前一天的经历自然衔接。
	日程每行一条,格式为 "HH:MM-HH:MM 事件描述",最后一条可以用 "HH:MM-xx:xx" 表示开放结束。
	只输出一个 JSON 对象,不要输出任何其他文字,格式如下:
	{
	  "plot_content": "08:00-08:30 起床洗漱\n08:30-09:00 早餐\n...",
	  "mood": {
	    "my_valence": 0.0,
	    "my_arousal": 0.5,
	    "my_tags": "情绪标签",
	    "my_intensity": 5,
	    "my_mood_description_for_llm": "这一天整体的心情"
	  }
	}
`)

// Generator produces life-story rows from the chat model.
type Generator struct {
	gen repo.TextGenerator
}

// NewGenerator creates a Generator.
func NewGenerator(gen repo.TextGenerator) *Generator {
	return &Generator{gen: gen}
}

// InitialStages plans the full birth-to-present stage list for a fresh
// outline. currentAge anchors where the plan must reach.
func (g *Generator) InitialStages(ctx context.Context, outline *entity.Outline, persona string, currentAge int) ([]*entity.Stage, error) {
	var b strings.Builder
	writeOutline(&b, outline)
	fmt.Fprintf(&b, "角色当前年龄:%d岁\n", currentAge)
	writePersona(&b, persona)
	return g.parseStages(ctx, initialStageSystem, b.String(), outline, 0)
}

// Stages plans the next batch of stages after the given order.
func (g *Generator) Stages(ctx context.Context, outline *entity.Outline, persona string, afterOrder int, completedSummaries []string) ([]*entity.Stage, error) {
	var b strings.Builder
	writeOutline(&b, outline)
	writePersona(&b, persona)
	if len(completedSummaries) > 0 {
		b.WriteString("已完成阶段摘要:\n")
		for _, s := range completedSummaries {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return g.parseStages(ctx, stageSystem, b.String(), outline, afterOrder)
}

func (g *Generator) parseStages(ctx context.Context, system, user string, outline *entity.Outline, afterOrder int) ([]*entity.Stage, error) {
	var parsed struct {
		Stages []struct {
			LifePeriod  string `json:"life_period"`
			Title       string `json:"title"`
			Description string `json:"description_for_plot_llm"`
			Goals       string `json:"stage_goals"`
		} `json:"stages"`
	}
	if err := g.generateJSON(ctx, system, user, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Stages) == 0 {
		return nil, fmt.Errorf("%w: stage plan came back empty", errno.ErrGenerationFailed)
	}

	stages := make([]*entity.Stage, 0, len(parsed.Stages))
	for i, raw := range parsed.Stages {
		stages = append(stages, &entity.Stage{
			StageID:     entity.NewStageID(),
			OutlineID:   outline.OutlineID,
			Order:       afterOrder + 1 + i,
			LifePeriod:  raw.LifePeriod,
			Title:       raw.Title,
			Description: raw.Description,
			Goals:       raw.Goals,
			Status:      entity.StatusLocked,
		})
	}
	return stages, nil
}

// Segments expands one stage into its ordered segments. persona and
// pastSummary anchor the plan in who the character is and what already
// happened.
func (g *Generator) Segments(ctx context.Context, outline *entity.Outline, stage *entity.Stage, persona, pastSummary string) ([]*entity.Segment, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "人生大纲:%s\n阶段:%s(%s)\n阶段描述:%s\n阶段目标:%s\n",
		outline.Title, stage.Title, stage.LifePeriod, stage.Description, stage.Goals)
	writePersona(&b, persona)
	if pastSummary != "" {
		fmt.Fprintf(&b, "过往经历:\n%s\n", pastSummary)
	}

	var parsed struct {
		Segments []struct {
			Title        string `json:"title"`
			LifeAge      int    `json:"life_age"`
			Prompt       string `json:"segment_prompt_for_plot_llm"`
			DurationDays int    `json:"duration_in_days_estimate"`
			EmotionalArc string `json:"expected_emotional_arc"`
			KeyNPCs      string `json:"key_npcs_involved"`
			IsMilestone  bool   `json:"is_milestone_event"`
		} `json:"segments"`
	}
	if err := g.generateJSON(ctx, segmentSystem, b.String(), &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Segments) == 0 {
		return nil, fmt.Errorf("%w: segment plan came back empty", errno.ErrGenerationFailed)
	}

	segments := make([]*entity.Segment, 0, len(parsed.Segments))
	for i, raw := range parsed.Segments {
		days := raw.DurationDays
		if days < 1 {
			days = 3
		}
		segments = append(segments, &entity.Segment{
			SegmentID:    entity.NewSegmentID(),
			StageID:      stage.StageID,
			OrderInStage: i + 1,
			Title:        raw.Title,
			LifeAge:      raw.LifeAge,
			PromptForLLM: raw.Prompt,
			DurationDays: days,
			EmotionalArc: raw.EmotionalArc,
			KeyNPCs:      raw.KeyNPCs,
			Status:       entity.StatusLocked,
			IsMilestone:  raw.IsMilestone,
		})
	}
	return segments, nil
}

// DailyPlotRequest carries everything one day's generation is seeded with.
type DailyPlotRequest struct {
	Segment *entity.Segment
	// Persona and PastSummary anchor the day in the character.
	Persona     string
	PastSummary string
	// CompletedSegments summarizes the stage's segments already played out.
	CompletedSegments []string
	Date              string
	// DayIndex is 1-based within the segment.
	DayIndex int
	// PrevContent and PrevMood seed the day with how the previous one
	// ended; HasPrev is false on the first generated day.
	PrevContent string
	PrevMood    entity.Mood
	HasPrev     bool
}

// DailyPlot generates the schedule and baseline mood for one day of a
// segment.
func (g *Generator) DailyPlot(ctx context.Context, req *DailyPlotRequest) (string, entity.Mood, error) {
	seg := req.Segment
	var b strings.Builder
	fmt.Fprintf(&b, "剧情段:%s\n描述:%s\n情绪走向:%s\n", seg.Title, seg.PromptForLLM, seg.EmotionalArc)
	if seg.KeyNPCs != "" {
		fmt.Fprintf(&b, "重要人物:%s\n", seg.KeyNPCs)
	}
	writePersona(&b, req.Persona)
	if req.PastSummary != "" {
		fmt.Fprintf(&b, "过往经历:\n%s\n", req.PastSummary)
	}
	if len(req.CompletedSegments) > 0 {
		b.WriteString("这个阶段已经历过的剧情段:\n")
		for _, s := range req.CompletedSegments {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if req.HasPrev {
		fmt.Fprintf(&b, "前一天的日程:\n%s\n前一天结束时的心情:%s\n", req.PrevContent, req.PrevMood.Summary())
	}
	fmt.Fprintf(&b, "这是剧情段的第 %d 天,共约 %d 天,日期 %s。\n", req.DayIndex, seg.DurationDays, req.Date)

	var parsed struct {
		Content string      `json:"plot_content"`
		Mood    entity.Mood `json:"mood"`
	}
	if err := g.generateJSON(ctx, dailyPlotSystem, b.String(), &parsed); err != nil {
		return "", entity.Mood{}, err
	}
	if strings.TrimSpace(parsed.Content) == "" {
		return "", entity.Mood{}, fmt.Errorf("%w: daily plot came back empty", errno.ErrGenerationFailed)
	}
	mood := parsed.Mood
	if mood.Tags == "" {
		mood = entity.NeutralMood()
	}
	mood.Clamp()
	return parsed.Content, mood, nil
}

// StageSummary condenses a finished stage for the next planning round.
func (g *Generator) StageSummary(ctx context.Context, stage *entity.Stage, segments []*entity.Segment) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "阶段:%s(%s)\n经历的剧情段:\n", stage.Title, stage.LifePeriod)
	for _, seg := range segments {
		fmt.Fprintf(&b, "- %s:%s\n", seg.Title, seg.PromptForLLM)
	}
	system := "你是一个人生编剧。用两三句话总结角色刚刚完成的人生阶段,直接输出总结,不要任何其他文字。"

	summary, err := g.generateText(ctx, system, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func writeOutline(b *strings.Builder, outline *entity.Outline) {
	fmt.Fprintf(b, "人生大纲:%s\n主题:%s\n寿命:%d岁\n出生日期:%s\n", outline.Title, outline.OverallTheme, outline.Life, outline.Birthday)
	if outline.Wealth != "" {
		fmt.Fprintf(b, "家境:%s\n", outline.Wealth)
	}
}

func writePersona(b *strings.Builder, persona string) {
	if persona == "" {
		return
	}
	fmt.Fprintf(b, "角色人设:\n%s\n", persona)
}

// generateJSON runs one retried model call and decodes its JSON payload.
func (g *Generator) generateJSON(ctx context.Context, system, user string, out interface{}) error {
	raw, err := g.generateText(ctx, system, user)
	if err != nil {
		return err
	}
	payload, ok := llmjson.Extract(raw)
	if !ok {
		return fmt.Errorf("%w: response has no JSON object", errno.ErrGenerationFailed)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("%w: %v", errno.ErrGenerationFailed, err)
	}
	return nil
}

// generateText retries the model call with doubling backoff.
func (g *Generator) generateText(ctx context.Context, system, user string) (string, error) {
	backoff := retryBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.gen.Generate(ctx, system, user)
		if err == nil && strings.TrimSpace(raw) != "" {
			return raw, nil
		}
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		lastErr = err
		logger.Warn("[LifeStory] generation attempt %d/%d failed: %v", attempt, maxAttempts, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", fmt.Errorf("%w: %v", errno.ErrGenerationFailed, lastErr)
}
