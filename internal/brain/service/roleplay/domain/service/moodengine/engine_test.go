package moodengine_test

import (
	"math"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComposePullsTowardPlotBaseline(t *testing.T) {
	t.Parallel()

	current := entity.Mood{Valence: 0, Arousal: 0.4, Tags: "平静", Intensity: 4}
	plot := entity.Mood{Valence: 0.8, Arousal: 0.6, Tags: "期待", Intensity: 6}

	got := moodengine.Compose(current, plot, entity.UserImpact{Tags: "无影响"})

	if want := 0.56; !almost(got.Valence, want) {
		t.Errorf("Valence = %v, want %v", got.Valence, want)
	}
	if want := 0.54; !almost(got.Arousal, want) {
		t.Errorf("Arousal = %v, want %v", got.Arousal, want)
	}
	// 4 + 0.7*(6-4) = 5.4, truncated.
	if got.Intensity != 5 {
		t.Errorf("Intensity = %d, want 5", got.Intensity)
	}
	if got.Tags != "期待" {
		t.Errorf("Tags = %q, want %q", got.Tags, "期待")
	}
}

func TestComposeAmplification(t *testing.T) {
	t.Parallel()

	impact := entity.UserImpact{Valence: 0.5, Tags: "惊讶"}

	tests := []struct {
		name        string
		intensity   int
		wantValence float64
	}{
		{"high band amplifies", 7, 0.3 * 0.5 * 1.2},
		{"low band dampens", 3, 0.3 * 0.5 * 0.7},
		{"middle band neutral", 5, 0.3 * 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := entity.Mood{Valence: 0, Arousal: 0.5, Intensity: tt.intensity}
			plot := entity.Mood{Valence: 0, Arousal: 0.5, Intensity: tt.intensity}

			got := moodengine.Compose(current, plot, impact)
			if !almost(got.Valence, tt.wantValence) {
				t.Errorf("Valence = %v, want %v", got.Valence, tt.wantValence)
			}
		})
	}
}

func TestComposeClampsResult(t *testing.T) {
	t.Parallel()

	current := entity.Mood{Valence: 0.9, Arousal: 0.9, Intensity: 9}
	plot := entity.Mood{Valence: 1.0, Arousal: 1.0, Intensity: 10}
	impact := entity.UserImpact{Valence: 0.5, Arousal: 0.3, Intensity: 3, Tags: "狂喜"}

	got := moodengine.Compose(current, plot, impact)

	if got.Valence > 1.0 {
		t.Errorf("Valence = %v, want <= 1.0", got.Valence)
	}
	if got.Arousal > 1.0 {
		t.Errorf("Arousal = %v, want <= 1.0", got.Arousal)
	}
	if got.Intensity > 10 {
		t.Errorf("Intensity = %d, want <= 10", got.Intensity)
	}
}

func TestComposeTagMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		plotTags string
		impact   entity.UserImpact
		want     string
	}{
		{
			name:     "impact tag appended",
			plotTags: "开心、专注",
			impact:   entity.UserImpact{Tags: "惊讶"},
			want:     "开心、专注、惊讶",
		},
		{
			name:     "capped at three",
			plotTags: "开心、专注、疲惫",
			impact:   entity.UserImpact{Tags: "惊讶"},
			want:     "开心、专注、疲惫",
		},
		{
			name:     "neutral markers dropped",
			plotTags: "中性、开心",
			impact:   entity.UserImpact{Tags: "分析失败"},
			want:     "开心",
		},
		{
			name:     "duplicates collapsed",
			plotTags: "开心、开心",
			impact:   entity.UserImpact{Tags: "开心"},
			want:     "开心",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := entity.Mood{Valence: 0.5, Arousal: 0.5, Intensity: 5}
			plot := entity.Mood{Valence: 0.5, Arousal: 0.5, Intensity: 5, Tags: tt.plotTags}

			got := moodengine.Compose(current, plot, tt.impact)
			if got.Tags != tt.want {
				t.Errorf("Tags = %q, want %q", got.Tags, tt.want)
			}
		})
	}
}

func TestComposeEmptyTagsFallBackToQuadrant(t *testing.T) {
	t.Parallel()

	current := entity.Mood{Valence: 0.8, Arousal: 0.9, Intensity: 8}
	plot := entity.Mood{Valence: 0.8, Arousal: 0.9, Intensity: 8, Tags: "中性"}

	got := moodengine.Compose(current, plot, entity.UserImpact{Tags: "无影响"})
	if got.Tags != "兴奋" {
		t.Errorf("Tags = %q, want %q", got.Tags, "兴奋")
	}
}
