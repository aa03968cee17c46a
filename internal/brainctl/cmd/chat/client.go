package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// chatRequest is the request body for POST /v1/chat.
type chatRequest struct {
	RoleID          string `json:"role_id"`
	UserName        string `json:"user_name"`
	Content         string `json:"content"`
	SessionID       string `json:"session_id,omitempty"`
	ForceNewSession bool   `json:"force_new_session,omitempty"`
}

// chatReply is the success body of POST /v1/chat.
type chatReply struct {
	Response      string   `json:"response"`
	ToolsUsed     []string `json:"tools_used"`
	SystemMessage string   `json:"system_message"`
	SessionID     string   `json:"session_id"`
}

// apiError is the coded error envelope the server writes on failure.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RoleInfo is one entry of GET /v1/roles.
type RoleInfo struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
	Age      int    `json:"age"`
}

// BrainClient talks to the braind HTTP API.
type BrainClient struct {
	BaseURL    string
	RoleID     string
	UserName   string
	SessionID  string
	HTTPClient *http.Client
}

// NewBrainClient creates a new client.
func NewBrainClient(baseURL, roleID, userName string, httpClient *http.Client) *BrainClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &BrainClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		RoleID:     roleID,
		UserName:   userName,
		HTTPClient: httpClient,
	}
}

// Send posts one user message and returns the character's reply. The
// session id returned by the first turn is pinned for every later one.
func (c *BrainClient) Send(ctx context.Context, content string) (*chatReply, error) {
	body, err := json.Marshal(chatRequest{
		RoleID:    c.RoleID,
		UserName:  c.UserName,
		Content:   content,
		SessionID: c.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, "/v1/chat", body)
	if err != nil {
		return nil, err
	}

	var reply chatReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if reply.SessionID != "" {
		c.SessionID = reply.SessionID
	}
	return &reply, nil
}

// Roles lists the configured roles.
func (c *BrainClient) Roles(ctx context.Context) ([]RoleInfo, error) {
	respBody, err := c.get(ctx, "/v1/roles")
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []RoleInfo `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal roles: %w", err)
	}
	return envelope.Data, nil
}

func (c *BrainClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *BrainClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *BrainClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("server error %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
