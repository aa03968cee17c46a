package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/internal/brain/service/llm"
	"github.com/Missonix/SSAI-brain/internal/pkg/core"
)

// ModelHandler handles the configured-model listing endpoint.
type ModelHandler struct {
	manager *llm.Manager
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(manager *llm.Manager) *ModelHandler {
	return &ModelHandler{manager: manager}
}

// List handles GET /v1/models.
func (h *ModelHandler) List(c *gin.Context) {
	instances := h.manager.Instances()

	resp := make([]ModelResponse, 0, len(instances))
	for _, inst := range instances {
		resp = append(resp, ModelResponse{
			ProviderID:    inst.ProviderID,
			ModelID:       inst.ModelID,
			DisplayName:   inst.DisplayName,
			ContextWindow: inst.ContextWindow,
			MaxTokens:     inst.MaxTokens,
		})
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}
