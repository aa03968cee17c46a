package thought_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/thought"
)

func testMood() entity.Mood {
	return entity.Mood{Valence: 0.1, Arousal: 0.4, Tags: "平静", Intensity: 4, Description: "平常心情"}
}

func testWindow() entity.PlotWindow {
	return entity.PlotWindow{
		Lines:   []string{"08:00-09:00 晨跑", "10:00-11:00 开会"},
		Current: "10:00-11:00 开会",
	}
}

func TestPlotMoodEmptyWindowKeepsCurrent(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("generator must not be called for an empty window")
		return "", nil
	})

	got := thought.New(gen).PlotMood(context.Background(), "小慧", testMood(), entity.PlotWindow{})
	if got != testMood() {
		t.Errorf("mood = %+v, want current unchanged", got)
	}
}

func TestPlotMoodDecodesResponse(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(_ context.Context, _, user string) (string, error) {
		if !strings.Contains(user, "10:00-11:00 开会") {
			t.Errorf("prompt misses the current plot line:\n%s", user)
		}
		return `{"my_valence":-0.3,"my_tags":"烦躁","my_intensity":6,"my_mood_description_for_llm":"会开得人心烦"}`, nil
	})

	got := thought.New(gen).PlotMood(context.Background(), "小慧", testMood(), testWindow())
	if got.Valence != -0.3 || got.Tags != "烦躁" || got.Intensity != 6 {
		t.Errorf("mood = %+v, want valence -0.3 tags 烦躁 intensity 6", got)
	}
	// Arousal is absent from the response and takes the decode default.
	if got.Arousal != 0.5 {
		t.Errorf("Arousal = %v, want 0.5", got.Arousal)
	}
}

func TestPlotMoodFillsMissingTextFromCurrent(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(context.Context, string, string) (string, error) {
		return `{"my_valence":0.4,"my_arousal":0.6}`, nil
	})

	got := thought.New(gen).PlotMood(context.Background(), "小慧", testMood(), testWindow())
	if got.Tags != "平静" || got.Description != "平常心情" {
		t.Errorf("mood = %+v, want tags and description carried over", got)
	}
}

func TestPlotMoodDegradesToCurrent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gen  repo.GenerateFunc
	}{
		{"call failure", func(context.Context, string, string) (string, error) {
			return "", errors.New("model down")
		}},
		{"no JSON object", func(context.Context, string, string) (string, error) {
			return "今天的心情还不错。", nil
		}},
		{"unparseable JSON", func(context.Context, string, string) (string, error) {
			return `{"my_valence": "high"}`, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := thought.New(tt.gen).PlotMood(context.Background(), "小慧", testMood(), testWindow())
			if got != testMood() {
				t.Errorf("mood = %+v, want current unchanged", got)
			}
		})
	}
}

func TestChainReturnsTrimmedMonologue(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(_ context.Context, _, user string) (string, error) {
		if !strings.Contains(user, "用户刚刚说:你是机器人吗") {
			t.Errorf("prompt misses user content:\n%s", user)
		}
		return "  他又在试探我。我有点不耐烦,但还是好好说话吧。\n", nil
	})

	analysis := &entity.Analysis{Intent: &entity.IntentAnalysis{Intention: "挑衅", Aim: "试探身份"}}
	got := thought.New(gen).Chain(context.Background(), "小慧", testMood(), analysis, "你是机器人吗")
	if got != "他又在试探我。我有点不耐烦,但还是好好说话吧。" {
		t.Errorf("Chain = %q", got)
	}
}

func TestChainFallsBackToTemplate(t *testing.T) {
	t.Parallel()

	gen := repo.GenerateFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("model down")
	})

	got := thought.New(gen).Chain(context.Background(), "小慧", testMood(), nil, "hi")
	if got == "" {
		t.Fatal("fallback monologue is empty")
	}
	if !strings.Contains(got, "平静") {
		t.Errorf("fallback %q should mention the current mood tags", got)
	}
}
