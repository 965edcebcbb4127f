package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airwise-backend/internal/model"
)

// CreateUser handles POST /users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req model.NewUserBoundary
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Login handles GET /users/login/:systemID/:userEmail.
func (h *Handler) Login(c *gin.Context) {
	user, err := h.users.Login(c.Request.Context(), c.Param("systemID"), c.Param("userEmail"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:systemID/:userEmail.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req model.UserBoundary
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.users.Update(c.Request.Context(), c.Param("systemID"), c.Param("userEmail"), req); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
