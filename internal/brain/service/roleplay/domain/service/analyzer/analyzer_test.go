package analyzer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/analyzer"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
)

// routeBySystem dispatches the fake on whether the system prompt is the
// intent one or the emotion one.
func routeBySystem(intent, emotion func() (string, error)) repo.GenerateFunc {
	return func(_ context.Context, system, _ string) (string, error) {
		if strings.Contains(system, "意图") {
			return intent()
		}
		return emotion()
	}
}

func TestAnalyzeParsesBothRecords(t *testing.T) {
	t.Parallel()

	gen := routeBySystem(
		func() (string, error) {
			return "```json\n" + `{"intention":"挑衅","aim":"试探身份","targeting_object":"角色","need_tool":false,"tool":[],"reason":"称呼带外号","confidence":0.9}` + "\n```", nil
		},
		func() (string, error) {
			return `{"valence":-0.6,"arousal":0.7,"tags":"恼怒、委屈","intensity":6,"mood_description_for_llm":"被起外号让我不舒服","confidence":0.8}`, nil
		},
	)

	got, err := analyzer.New(gen, 0).Analyze(context.Background(), "小慧", "阿强", "小百度,查个东西", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Intent.Intention != "挑衅" {
		t.Errorf("Intention = %q, want 挑衅", got.Intent.Intention)
	}
	if !got.Intent.NeedTool && got.Intent.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Intent.Confidence)
	}
	if got.Emotion.Valence != -0.6 || got.Emotion.Intensity != 6 {
		t.Errorf("Emotion = %+v, want valence -0.6 intensity 6", got.Emotion)
	}
	if got.Emotion.Tags != "恼怒、委屈" {
		t.Errorf("Tags = %q", got.Emotion.Tags)
	}
}

func TestAnalyzeClampsEmotionRanges(t *testing.T) {
	t.Parallel()

	gen := routeBySystem(
		func() (string, error) { return `{"intention":"闲聊"}`, nil },
		func() (string, error) {
			return `{"valence":-3,"arousal":2,"tags":"","intensity":99}`, nil
		},
	)

	got, err := analyzer.New(gen, 0).Analyze(context.Background(), "r", "u", "hi", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	e := got.Emotion
	if e.Valence != -1 || e.Arousal != 1 || e.Intensity != 10 {
		t.Errorf("clamped emotion = %+v, want valence -1 arousal 1 intensity 10", e)
	}
	if e.Tags != "无影响" {
		t.Errorf("Tags = %q, want 无影响", e.Tags)
	}
}

func TestAnalyzeIntentFailureFallsBackToDefault(t *testing.T) {
	t.Parallel()

	gen := routeBySystem(
		func() (string, error) { return "", errors.New("model down") },
		func() (string, error) { return `{"valence":0.2,"tags":"开心","intensity":3}`, nil },
	)

	got, err := analyzer.New(gen, 0).Analyze(context.Background(), "r", "u", "hi", nil)
	if err != nil {
		t.Fatalf("Analyze with one failure should not error, got %v", err)
	}
	if got.Intent.Intention != "未知" {
		t.Errorf("Intention = %q, want default 未知", got.Intent.Intention)
	}
	if got.Emotion.Tags != "开心" {
		t.Errorf("Tags = %q, want 开心", got.Emotion.Tags)
	}
}

func TestAnalyzeGarbageResponseFallsBackToDefault(t *testing.T) {
	t.Parallel()

	gen := routeBySystem(
		func() (string, error) { return "我不确定你在问什么。", nil },
		func() (string, error) { return `{"valence":0}`, nil },
	)

	got, err := analyzer.New(gen, 0).Analyze(context.Background(), "r", "u", "hi", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Intent.Intention != "未知" {
		t.Errorf("Intention = %q, want default 未知", got.Intent.Intention)
	}
}

func TestImpactParsesFirstPersonDeltas(t *testing.T) {
	t.Parallel()

	var sawSystem, sawUser string
	gen := repo.GenerateFunc(func(_ context.Context, system, user string) (string, error) {
		sawSystem, sawUser = system, user
		return "```json\n" + `{"impact_valence":-0.3,"impact_arousal":0.2,"impact_tags":"恼怒","impact_intensity":1.5,"impact_description":"被当成搜索引擎让我不爽"}` + "\n```", nil
	})

	mood := entity.Mood{Valence: 0.1, Arousal: 0.4, Tags: "平静", Intensity: 4}
	got, err := analyzer.New(gen, 0).Impact(context.Background(), "小慧", "阿强", "小百度,查个东西", mood, []string{"阿强: 在吗"})
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if got.Valence != -0.3 || got.Arousal != 0.2 || got.Intensity != 1.5 {
		t.Errorf("impact = %+v, want deltas -0.3/0.2/1.5", got)
	}
	if got.Tags != "恼怒" {
		t.Errorf("Tags = %q, want 恼怒", got.Tags)
	}
	if !strings.Contains(sawSystem, "第一人称") {
		t.Error("impact prompt is not first-person")
	}
	if !strings.Contains(sawUser, "我当前的心情") || !strings.Contains(sawUser, "对方刚刚说:小百度,查个东西") {
		t.Errorf("impact user prompt missing mood or utterance:\n%s", sawUser)
	}
}

func TestImpactClampsDeltas(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(context.Context, string, string) (string, error) {
		return `{"impact_valence":-4,"impact_arousal":2,"impact_tags":"","impact_intensity":9}`, nil
	})

	got, err := analyzer.New(gen, 0).Impact(context.Background(), "r", "u", "hi", entity.NeutralMood(), nil)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if got.Valence != -1 || got.Arousal != 0.5 || got.Intensity != 3 {
		t.Errorf("clamped impact = %+v, want -1/0.5/3", got)
	}
	if got.Tags != "无影响" {
		t.Errorf("Tags = %q, want 无影响", got.Tags)
	}
}

func TestImpactUnparseableHasNoDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  repo.GenerateFunc
	}{
		{
			name: "call failure",
			gen: func(context.Context, string, string) (string, error) {
				return "", errors.New("model down")
			},
		},
		{
			name: "no JSON object",
			gen: func(context.Context, string, string) (string, error) {
				return "这句话对我没什么影响。", nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := analyzer.New(tt.gen, 0).Impact(context.Background(), "r", "u", "hi", entity.NeutralMood(), nil)
			if err == nil {
				t.Fatalf("Impact = %+v, want error with no fabricated default", got)
			}
			if got != nil {
				t.Errorf("impact = %+v, want nil on failure", got)
			}
		})
	}
}

func TestAnalyzeBothFailuresStillUsable(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("model down")
	})

	got, err := analyzer.New(gen, 0).Analyze(context.Background(), "r", "u", "hi", []string{"u: 早", "r: 早呀"})
	if !errors.Is(err, errno.ErrAnalysisFailed) {
		t.Fatalf("err = %v, want ErrAnalysisFailed", err)
	}
	if got == nil || got.Intent == nil || got.Emotion == nil {
		t.Fatalf("analysis = %+v, want usable defaults", got)
	}
	if got.Emotion.Tags != "平静" {
		t.Errorf("default emotion tags = %q, want 平静", got.Emotion.Tags)
	}
}
