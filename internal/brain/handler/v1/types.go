package v1

import (
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// FormatTime renders timestamps for API responses.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	RoleID          string `json:"role_id" binding:"required"`
	UserName        string `json:"user_name" binding:"required"`
	Content         string `json:"content"`
	SessionID       string `json:"session_id,omitempty"`
	ForceNewSession bool   `json:"force_new_session,omitempty"`
}

// ChatResponse is the reply of POST /v1/chat.
type ChatResponse struct {
	Response      string   `json:"response"`
	ToolsUsed     []string `json:"tools_used,omitempty"`
	SystemMessage string   `json:"system_message,omitempty"`
	SessionID     string   `json:"session_id"`
}

// RoleInitRequest seeds a role_details row.
type RoleInitRequest struct {
	RoleName string       `json:"role_name" binding:"required"`
	Age      int          `json:"age"`
	Mood     *entity.Mood `json:"mood,omitempty"`
}

// RoleResponse is the role detail exposed by the catalogue API.
type RoleResponse struct {
	RoleID               string      `json:"role_id"`
	RoleName             string      `json:"role_name"`
	Age                  int         `json:"age"`
	Mood                 entity.Mood `json:"mood"`
	CurrentLifeStageID   string      `json:"current_life_stage_id,omitempty"`
	CurrentPlotSegmentID string      `json:"current_plot_segment_id,omitempty"`
}

// SessionResponse is the session detail with its flush-time counters.
type SessionResponse struct {
	SessionID     string `json:"session_id"`
	UserName      string `json:"user_name"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	LastMessageAt string `json:"last_message_at"`
	TotalMessages int    `json:"total_messages"`
	UserMessages  int    `json:"user_messages"`
	AgentMessages int    `json:"agent_messages"`
}

// MessageResponse is one history entry.
type MessageResponse struct {
	MessageID  string `json:"message_id"`
	Sender     string `json:"sender_type"`
	Content    string `json:"message_content"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolResult string `json:"tool_query_result,omitempty"`
	Order      int    `json:"message_order"`
	CreatedAt  string `json:"created_at"`
}

// PlotWindowResponse is the current plot window of a role.
type PlotWindowResponse struct {
	RoleID  string   `json:"role_id"`
	Date    string   `json:"date"`
	Lines   []string `json:"lines"`
	Current string   `json:"current"`
}

// LifeStoryStatusResponse describes the life-story hierarchy of a role.
type LifeStoryStatusResponse struct {
	Outline *entity.Outline  `json:"outline"`
	Stages  []*entity.Stage  `json:"stages"`
	Active  *LifeStoryActive `json:"active,omitempty"`
}

// LifeStoryActive names the currently active stage and segment.
type LifeStoryActive struct {
	StageID   string `json:"stage_id,omitempty"`
	SegmentID string `json:"segment_id,omitempty"`
}

// ModelResponse is one configured model instance.
type ModelResponse struct {
	ProviderID    string `json:"provider_id"`
	ModelID       string `json:"model_id"`
	DisplayName   string `json:"display_name,omitempty"`
	ContextWindow int    `json:"context_window,omitempty"`
	MaxTokens     int    `json:"max_tokens,omitempty"`
}

func sessionToResponse(s *entity.Session) SessionResponse {
	return SessionResponse{
		SessionID:     s.SessionID,
		UserName:      s.UserName,
		Title:         s.Title,
		Status:        string(s.Status),
		CreatedAt:     FormatTime(s.CreatedAt),
		UpdatedAt:     FormatTime(s.UpdatedAt),
		LastMessageAt: FormatTime(s.LastMessageAt),
		TotalMessages: s.TotalMessages,
		UserMessages:  s.UserMessages,
		AgentMessages: s.AgentMessages,
	}
}
