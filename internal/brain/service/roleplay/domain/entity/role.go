package entity

// Role is the static identity of a character plus its mutable pointers into
// the life story. The persona text is loaded once at role selection and is
// immutable afterwards; a missing persona is fatal for the role, never
// replaced by a generic default.
type Role struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
	Age      int    `json:"age"`

	// Persona is the full persona text (the character's L0 prompt).
	Persona string `json:"-"`
	// PersonaPath is the blob the persona was loaded from.
	PersonaPath string `json:"persona_path"`

	// InitialMood seeds the mood store when no durable mood exists.
	InitialMood Mood `json:"initial_mood"`

	// Life-story pointers, maintained by the state machine.
	CurrentLifeStageID   string `json:"current_life_stage_id,omitempty"`
	CurrentPlotSegmentID string `json:"current_plot_segment_id,omitempty"`
	CurrentMaterialsID   string `json:"current_materials_id,omitempty"`
}

// RoleDetail is the durable row behind a role: identity plus the last
// written mood.
type RoleDetail struct {
	RoleID               string `json:"role_id"`
	RoleName             string `json:"role_name"`
	Age                  int    `json:"age"`
	Mood                 Mood   `json:"mood"`
	CurrentLifeStageID   string `json:"current_life_stage_id"`
	CurrentPlotSegmentID string `json:"current_plot_segment_id"`
	CurrentMaterialsID   string `json:"current_materials_id"`
}
