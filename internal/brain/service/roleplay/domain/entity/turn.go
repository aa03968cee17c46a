package entity

// TurnResult is what one orchestrated user turn returns to the caller.
//
// Response and SystemMessage are distinct channels: Response is character
// speech (possibly empty when the turn failed operationally), SystemMessage
// carries user-visible operational notes and is never written to the
// dialogue log.
type TurnResult struct {
	Response      string   `json:"response"`
	ToolsUsed     []string `json:"tools_used"`
	SystemMessage string   `json:"system_message"`
	SessionID     string   `json:"session_id"`
}

// ToolCall records one tool invocation the model decided to make while
// producing a reply.
type ToolCall struct {
	Name   string `json:"name"`
	Params string `json:"params"`
	Result string `json:"result"`
}

// TurnRequest is one user utterance addressed to a role.
type TurnRequest struct {
	RoleID   string `json:"role_id"`
	UserName string `json:"user_name"`
	Content  string `json:"content"`
	// SessionID pins the turn to an existing session; empty lets the
	// session resolver pick or create one.
	SessionID string `json:"session_id,omitempty"`
	// ForceNewSession makes the resolver skip reuse.
	ForceNewSession bool `json:"force_new_session,omitempty"`
}
