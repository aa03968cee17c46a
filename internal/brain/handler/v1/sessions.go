package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/dialog"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// defaultHistoryLimit bounds GET messages when no limit is given.
const defaultHistoryLimit = 50

// SessionHandler handles session management and history endpoints.
type SessionHandler struct {
	sessions repo.SessionRepository
	log      *dialog.Log
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions repo.SessionRepository, log *dialog.Log) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// List handles GET /v1/sessions?user=<name>.
func (h *SessionHandler) List(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		core.WriteResponse(c, errorx.NewC(ErrValidation, "query parameter user is required"), nil)
		return
	}

	sessions, err := h.sessions.ListByUser(c.Request.Context(), user)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSessionList, "list sessions for user %q", user), nil)
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionToResponse(s))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	session, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSessionNotFound, "session %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, sessionToResponse(session))
}

// Delete handles DELETE /v1/sessions/:id. Both tiers of the dialogue log
// are removed along with the session row.
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.log.Cleanup(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSessionDelete, "delete session %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"session_id": id, "deleted": true})
}

// Cleanup handles POST /v1/sessions/:id/cleanup. It flushes the hot list
// to durable rows and demotes the hot key's TTL.
func (h *SessionHandler) Cleanup(c *gin.Context) {
	id := c.Param("id")
	if err := h.log.Flush(c.Request.Context(), id); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrSessionCleanup, "flush session %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"session_id": id, "flushed": true})
}

// Messages handles GET /v1/sessions/:id/messages?limit=N with the merged
// two-tier history.
func (h *SessionHandler) Messages(c *gin.Context) {
	id := c.Param("id")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			core.WriteResponse(c, errorx.NewC(ErrValidation, "invalid limit %q", raw), nil)
			return
		}
		limit = n
	}

	messages, err := h.log.Recent(c.Request.Context(), id, limit)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrHistoryQuery, "history for session %q", id), nil)
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageToResponse(m))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

func messageToResponse(m *entity.Message) MessageResponse {
	var r MessageResponse
	// Field names line up except Sender/CreatedAt, set below.
	_ = copier.Copy(&r, m)
	r.Sender = string(m.Sender)
	r.CreatedAt = FormatTime(m.CreatedAt)
	return r
}
