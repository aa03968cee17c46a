package entity

// IntentAnalysis is the structured intent record produced for one user
// utterance.
type IntentAnalysis struct {
	Intention       string   `json:"intention"`
	Aim             string   `json:"aim"`
	TargetingObject string   `json:"targeting_object"`
	NeedTool        bool     `json:"need_tool"`
	Tools           []string `json:"tool"`
	Reason          string   `json:"reason"`
	Confidence      float64  `json:"confidence"`
}

// EmotionAnalysis is the structured emotion record produced for one user
// utterance. Valence/arousal/dominance follow the PAD convention.
type EmotionAnalysis struct {
	Valence         float64 `json:"valence"`
	Arousal         float64 `json:"arousal"`
	Dominance       float64 `json:"dominance"`
	Tags            string  `json:"tags"`
	Intensity       int     `json:"intensity"`
	Description     string  `json:"mood_description_for_llm"`
	Trigger         string  `json:"trigger"`
	TargetingObject string  `json:"targeting_object"`
	Confidence      float64 `json:"confidence"`
	Reason          string  `json:"reason"`
}

// DefaultIntent is the neutral fallback when the intent response cannot be
// parsed.
func DefaultIntent() *IntentAnalysis {
	return &IntentAnalysis{
		Intention:  "未知",
		Reason:     "analysis failed",
		Confidence: 0,
	}
}

// DefaultEmotion is the neutral fallback when the emotion response cannot
// be parsed.
func DefaultEmotion() *EmotionAnalysis {
	return &EmotionAnalysis{
		Valence:    0,
		Arousal:    0.3,
		Dominance:  0.5,
		Tags:       "平静",
		Intensity:  1,
		Reason:     "analysis failed",
		Confidence: 0,
	}
}

// Analysis bundles both records for one utterance.
type Analysis struct {
	Intent  *IntentAnalysis
	Emotion *EmotionAnalysis
}
