package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/orchestrator"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// ChatHandler handles the per-turn chat endpoint.
type ChatHandler struct {
	orch *orchestrator.Orchestrator
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

// Handle handles POST /v1/chat.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind chat request"), nil)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		core.WriteResponse(c, errorx.NewC(ErrContentEmpty, "empty content for role %q", req.RoleID), nil)
		return
	}

	result, err := h.orch.Turn(c.Request.Context(), &entity.TurnRequest{
		RoleID:          req.RoleID,
		UserName:        req.UserName,
		Content:         req.Content,
		SessionID:       req.SessionID,
		ForceNewSession: req.ForceNewSession,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrTurnFailed, "turn for role %q", req.RoleID), nil)
		return
	}

	core.WriteResponse(c, nil, ChatResponse{
		Response:      result.Response,
		ToolsUsed:     result.ToolsUsed,
		SystemMessage: result.SystemMessage,
		SessionID:     result.SessionID,
	})
}
