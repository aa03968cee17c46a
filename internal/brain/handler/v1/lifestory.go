package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/lifestory"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// LifeStoryHandler handles the life-story status and advance endpoints.
type LifeStoryHandler struct {
	machine *lifestory.Machine
	store   repo.LifeStoryRepository
	roles   repo.RoleRepository
}

// NewLifeStoryHandler creates a new LifeStoryHandler.
func NewLifeStoryHandler(machine *lifestory.Machine, store repo.LifeStoryRepository, roles repo.RoleRepository) *LifeStoryHandler {
	return &LifeStoryHandler{machine: machine, store: store, roles: roles}
}

// Status handles GET /v1/roles/:id/lifestory.
func (h *LifeStoryHandler) Status(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	outline, err := h.store.LatestOutline(ctx, id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrLifeStoryStatus, "outline for role %q", id), nil)
		return
	}
	stages, err := h.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrLifeStoryStatus, "stages for role %q", id), nil)
		return
	}

	resp := LifeStoryStatusResponse{Outline: outline, Stages: stages}
	if detail, err := h.roles.GetDetail(ctx, id); err == nil {
		resp.Active = &LifeStoryActive{
			StageID:   detail.CurrentLifeStageID,
			SegmentID: detail.CurrentPlotSegmentID,
		}
	}
	core.WriteResponse(c, nil, resp)
}

// Advance handles POST /v1/roles/:id/lifestory/advance. It runs the same
// unlock check the warm-up does and reports whether anything moved.
func (h *LifeStoryHandler) Advance(c *gin.Context) {
	id := c.Param("id")

	advanced, err := h.machine.Advance(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrLifeStoryAdvance, "advance role %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"role_id": id, "advanced": advanced})
}
