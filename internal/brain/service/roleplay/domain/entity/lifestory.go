package entity

import "github.com/google/uuid"

// LifeStatus is the progression state shared by stages, segments and daily
// plots.
type LifeStatus string

const (
	StatusLocked    LifeStatus = "Locked"
	StatusActive    LifeStatus = "Active"
	StatusCompleted LifeStatus = "Completed"
	StatusSkipped   LifeStatus = "Skipped"
)

// Outline is the top of the life-story hierarchy: one whole-life plan for a
// role. A role may carry several versions; the highest version is
// authoritative.
type Outline struct {
	OutlineID    string `json:"outline_id"`
	RoleID       string `json:"role_id"`
	Title        string `json:"title"`
	Birthday     string `json:"birthday"`
	Life         int    `json:"life"`
	Wealth       string `json:"wealth"`
	OverallTheme string `json:"overall_theme"`
	Version      int    `json:"version"`
}

// Stage is an age-range chapter of the outline.
//
// Invariants per outline: at most one Active stage; every order below the
// Active one is Completed, every order above is Locked.
type Stage struct {
	StageID     string     `json:"stage_id"`
	OutlineID   string     `json:"outline_id"`
	Order       int        `json:"sequence_order"`
	LifePeriod  string     `json:"life_period"`
	Title       string     `json:"title"`
	Description string     `json:"description_for_plot_llm"`
	Goals       string     `json:"stage_goals"`
	Status      LifeStatus `json:"status"`
	Summary     string     `json:"summary,omitempty"`
}

// Segment is a multi-day arc inside a stage.
type Segment struct {
	SegmentID    string     `json:"segment_id"`
	StageID      string     `json:"stage_id"`
	OrderInStage int        `json:"sequence_order_in_stage"`
	Title        string     `json:"title"`
	LifeAge      int        `json:"life_age"`
	PromptForLLM string     `json:"segment_prompt_for_plot_llm"`
	DurationDays int        `json:"duration_in_days_estimate"`
	EmotionalArc string     `json:"expected_emotional_arc"`
	KeyNPCs      string     `json:"key_npcs_involved"`
	Status       LifeStatus `json:"status"`
	IsMilestone  bool       `json:"is_milestone_event"`
}

// DailyPlot is one generated day of the active segment. The narrative text
// lives in an external blob at ContentPath; the row records ordering, the
// civil date and the mood captured at generation time.
type DailyPlot struct {
	PlotID      string     `json:"plot_id"`
	SegmentID   string     `json:"segment_id"`
	Order       int        `json:"plot_order"`
	PlotDate    string     `json:"plot_date"` // YYYY-MM-DD
	ContentPath string     `json:"plot_content_path"`
	Mood        Mood       `json:"mood"`
	Status      LifeStatus `json:"status"`
}

// NewStageID and friends mint ids for freshly generated life-story rows.
func NewStageID() string   { return "stage_" + uuid.NewString() }
func NewSegmentID() string { return "seg_" + uuid.NewString() }
func NewPlotID() string    { return "plot_" + uuid.NewString() }
func NewOutlineID() string { return "outline_" + uuid.NewString() }
