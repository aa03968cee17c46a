package moodengine

import (
	"fmt"
	"strings"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// Synthesis weights. The plot baseline dominates so a character drifts back
// toward what its day dictates; the user nudges, never overrides.
const (
	plotWeight = 0.7
	userWeight = 0.3
)

// Amplification thresholds. A worked-up character over-reacts to further
// input; a flat one under-reacts.
const (
	highIntensity = 7
	lowIntensity  = 3
	highAmp       = 1.2
	lowAmp        = 0.7
)

// neutralTags are analysis outputs that mean "nothing happened" and never
// become mood tags.
var neutralTags = map[string]bool{
	"无影响":  true,
	"分析失败": true,
	"中性":   true,
}

// Compose synthesizes the next mood from the current mood, the plot
// baseline and the user impact.
//
// Each axis moves 70% of the way toward the plot baseline, then takes 30%
// of the user delta, amplified by the current intensity band. The result
// is always clamped; the intensity is truncated to an int.
func Compose(current, plot entity.Mood, impact entity.UserImpact) entity.Mood {
	amp := 1.0
	if current.Intensity >= highIntensity {
		amp = highAmp
	} else if current.Intensity <= lowIntensity {
		amp = lowAmp
	}

	next := entity.Mood{
		Valence: current.Valence + plotWeight*(plot.Valence-current.Valence) + userWeight*impact.Valence*amp,
		Arousal: current.Arousal + plotWeight*(plot.Arousal-current.Arousal) + userWeight*impact.Arousal*amp,
		Intensity: int(float64(current.Intensity) +
			plotWeight*float64(plot.Intensity-current.Intensity) +
			userWeight*impact.Intensity*amp),
	}
	next.Tags = mergeTags(plot, impact, &next)
	next.Description = describe(&next, impact)
	next.Clamp()
	return next
}

// mergeTags joins the plot tags with the user-impact tag, dropping neutral
// markers, capped at three, deduplicated in order.
func mergeTags(plot entity.Mood, impact entity.UserImpact, next *entity.Mood) string {
	var out []string
	seen := map[string]bool{}
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || neutralTags[tag] || seen[tag] || len(out) >= 3 {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	for _, t := range strings.Split(plot.Tags, "、") {
		add(t)
	}
	for _, t := range strings.Split(impact.Tags, "、") {
		add(t)
	}
	if len(out) == 0 {
		return next.DefaultTag()
	}
	return strings.Join(out, "、")
}

func describe(next *entity.Mood, impact entity.UserImpact) string {
	clamped := *next
	clamped.Clamp()
	base := fmt.Sprintf("当前心情:%s,强度%d", clamped.Tags, clamped.Intensity)
	if impact.Description != "" && impact.Tags != "无影响" {
		return base + "。" + impact.Description
	}
	return base
}
