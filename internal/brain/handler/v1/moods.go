package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// MoodHandler handles the mood read and reset endpoints.
type MoodHandler struct {
	roles repo.RoleRepository
	moods *moodengine.Store
}

// NewMoodHandler creates a new MoodHandler.
func NewMoodHandler(roles repo.RoleRepository, moods *moodengine.Store) *MoodHandler {
	return &MoodHandler{roles: roles, moods: moods}
}

// Get handles GET /v1/roles/:id/mood.
func (h *MoodHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	detail, err := h.roles.GetDetail(ctx, id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleNotFound, "role %q not found", id), nil)
		return
	}

	mood, err := h.moods.Current(ctx, id, detail.Mood)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrMoodQuery, "mood for role %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"role_id": id, "mood": mood})
}

// Reset handles POST /v1/roles/:id/mood/reset. The mood returns to the
// neutral baseline in both tiers.
func (h *MoodHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if _, err := h.roles.GetDetail(ctx, id); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleNotFound, "role %q not found", id), nil)
		return
	}

	seed := entity.NeutralMood()
	if err := h.moods.Reset(ctx, id, seed); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrMoodReset, "reset mood for role %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"role_id": id, "mood": seed})
}
