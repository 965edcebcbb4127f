package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airwise-backend/internal/model"
)

// InvokeCommand runs one command and returns its audit record followed by
// any commands it fanned out to.
func (h *Handler) InvokeCommand(c *gin.Context) {
	var req model.CommandBoundary
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	results, err := h.commands.Invoke(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
