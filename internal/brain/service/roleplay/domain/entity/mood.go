package entity

import "fmt"

// Mood is the character's current emotional state.
//
// It is the unit stored in both tiers of the mood store and the input/output
// of the composition engine. All numeric fields are kept inside their ranges
// by Clamp; composition never writes a raw value.
type Mood struct {
	// Valence is the pleasantness axis, -1.0 (negative) .. 1.0 (positive).
	Valence float64 `json:"my_valence"`
	// Arousal is the activation axis, 0.0 (calm) .. 1.0 (agitated).
	Arousal float64 `json:"my_arousal"`
	// Tags is a short human-readable label list joined with "、".
	Tags string `json:"my_tags"`
	// Intensity is the overall strength, 1..10.
	Intensity int `json:"my_intensity"`
	// Description is free prose injected into prompts.
	Description string `json:"my_mood_description_for_llm"`
}

// Clamp forces every numeric field into its legal range.
func (m *Mood) Clamp() {
	m.Valence = clampFloat(m.Valence, -1.0, 1.0)
	m.Arousal = clampFloat(m.Arousal, 0.0, 1.0)
	m.Intensity = clampInt(m.Intensity, 1, 10)
}

// DefaultTag derives a tag from the valence/arousal quadrant. Used whenever
// composition ends with an empty tag list.
func (m *Mood) DefaultTag() string {
	switch {
	case m.Valence > 0.3 && m.Arousal > 0.5:
		return "兴奋"
	case m.Valence > 0.3:
		return "愉快"
	case m.Valence < -0.3 && m.Arousal > 0.5:
		return "愤怒"
	case m.Valence < -0.3:
		return "沮丧"
	default:
		return "平静"
	}
}

// Summary renders the mood for log lines.
func (m Mood) Summary() string {
	return fmt.Sprintf("tags=%s valence=%.2f arousal=%.2f intensity=%d", m.Tags, m.Valence, m.Arousal, m.Intensity)
}

// NeutralMood is the mood used when nothing else is known about a role.
func NeutralMood() Mood {
	return Mood{
		Valence:     0,
		Arousal:     0.4,
		Tags:        "平静",
		Intensity:   4,
		Description: "平常心情",
	}
}

// UserImpact is the result of the first-person "did that affect me?"
// analysis of the latest user utterance. Fields are signed deltas, not
// absolute targets.
type UserImpact struct {
	Valence     float64 `json:"impact_valence"`
	Arousal     float64 `json:"impact_arousal"`
	Tags        string  `json:"impact_tags"`
	Intensity   float64 `json:"impact_intensity"`
	Description string  `json:"impact_description"`
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
