// Package core writes the uniform API response envelope.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/pkg/errorx"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// ErrResponse is the body returned for any failed request.
type ErrResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes err as a coded error envelope, or data on success.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		logger.Warn("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
