package entity

import (
	"time"

	"github.com/google/uuid"
)

// SenderType identifies who produced a dialogue message.
type SenderType string

const (
	SenderUser   SenderType = "user"
	SenderAgent  SenderType = "agent"
	SenderTool   SenderType = "tool"
	SenderSystem SenderType = "system"
)

// Message is one dialogue log entry.
//
// Messages are append-only. The (SessionID, Order) pair is unique in the
// durable tier; Order is assigned at flush time, not at creation. Persisted
// marks hot-tier entries that already have a durable row, which makes the
// flush idempotent on MessageID.
type Message struct {
	MessageID string     `json:"message_id"`
	SessionID string     `json:"session_id"`
	UserName  string     `json:"user_name"`
	Sender    SenderType `json:"sender_type"`
	Content   string     `json:"message_content"`

	// Tool call capture. Set only on SenderTool messages.
	IsToolQuery    bool   `json:"is_tool_query"`
	ToolName       string `json:"tool_name,omitempty"`
	ToolParameters string `json:"tool_parameters,omitempty"`
	ToolResult     string `json:"tool_query_result,omitempty"`

	Order     int       `json:"message_order"`
	CreatedAt time.Time `json:"created_at"`
	Persisted bool      `json:"persisted"`

	Metadata map[string]string `json:"extra_metadata,omitempty"`
}

// NewUserMessage creates a user-authored message for a session.
func NewUserMessage(sessionID, userName, content string) *Message {
	return newMessage(sessionID, userName, SenderUser, content)
}

// NewAgentMessage creates a character reply message.
func NewAgentMessage(sessionID, userName, content string) *Message {
	return newMessage(sessionID, userName, SenderAgent, content)
}

// NewToolMessage creates a tool call record with its parameters and result.
func NewToolMessage(sessionID, toolName, params, result string) *Message {
	m := newMessage(sessionID, "", SenderTool, result)
	m.IsToolQuery = true
	m.ToolName = toolName
	m.ToolParameters = params
	m.ToolResult = result
	return m
}

func newMessage(sessionID, userName string, sender SenderType, content string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		UserName:  userName,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
