package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/moodengine"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// RoleHandler handles the role catalogue endpoints.
type RoleHandler struct {
	roles    repo.RoleRepository
	personas *persona.Service
	moods    *moodengine.Store
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles repo.RoleRepository, personas *persona.Service, moods *moodengine.Store) *RoleHandler {
	return &RoleHandler{roles: roles, personas: personas, moods: moods}
}

// List handles GET /v1/roles.
func (h *RoleHandler) List(c *gin.Context) {
	details, err := h.roles.List(c.Request.Context())
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleList, "list roles"), nil)
		return
	}

	resp := make([]RoleResponse, 0, len(details))
	for _, d := range details {
		var r RoleResponse
		if err := copier.Copy(&r, d); err != nil {
			core.WriteResponse(c, errorx.WrapC(err, ErrRoleList, "map role %q", d.RoleID), nil)
			return
		}
		resp = append(resp, r)
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

// Get handles GET /v1/roles/:id.
func (h *RoleHandler) Get(c *gin.Context) {
	id := c.Param("id")
	detail, err := h.roles.GetDetail(c.Request.Context(), id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleNotFound, "role %q not found", id), nil)
		return
	}

	var resp RoleResponse
	if err := copier.Copy(&resp, detail); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleList, "map role %q", id), nil)
		return
	}
	core.WriteResponse(c, nil, resp)
}

// Init handles POST /v1/roles/:id/init. It seeds a role_details row and
// warms the mood hot key. The persona blob must already exist; a role
// without one is unusable and the init is rejected.
func (h *RoleHandler) Init(c *gin.Context) {
	id := c.Param("id")

	var req RoleInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind role init request"), nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.personas.Load(ctx, id); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPersonaMissing, "persona for role %q", id), nil)
		return
	}

	mood := entity.NeutralMood()
	if req.Mood != nil {
		mood = *req.Mood
		mood.Clamp()
	}

	detail := &entity.RoleDetail{
		RoleID:   id,
		RoleName: req.RoleName,
		Age:      req.Age,
		Mood:     mood,
	}
	if err := h.roles.UpsertDetail(ctx, detail); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrRoleInit, "upsert role %q", id), nil)
		return
	}

	// Warm the hot tier so the first turn reads the seeded mood.
	if _, err := h.moods.Current(ctx, id, mood); err != nil {
		logger.Warn("[Roles] mood warm-up for %q failed: %v", id, err)
	}

	logger.Info("[Roles] role %q initialized (%s)", id, req.RoleName)
	core.WriteResponse(c, nil, gin.H{"role_id": id, "initialized": true})
}
