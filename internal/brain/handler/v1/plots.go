package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
	"github.com/Missonix/SSAI-brain/pkg/errorx"
)

// PlotHandler handles the plot window endpoint.
type PlotHandler struct {
	plots *plotwindow.Resolver
	clock clock.Clock
}

// NewPlotHandler creates a new PlotHandler.
func NewPlotHandler(plots *plotwindow.Resolver, clk clock.Clock) *PlotHandler {
	return &PlotHandler{plots: plots, clock: clk}
}

// Get handles GET /v1/roles/:id/plot. The window is resolved against the
// character's civil clock, not the server's.
func (h *PlotHandler) Get(c *gin.Context) {
	id := c.Param("id")
	now := h.clock.Now(c.Request.Context())

	window, err := h.plots.Window(id, now)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPlotQuery, "plot window for role %q", id), nil)
		return
	}

	core.WriteResponse(c, nil, PlotWindowResponse{
		RoleID:  id,
		Date:    now.Format(clock.DateLayout),
		Lines:   window.Lines,
		Current: window.Current,
	})
}
