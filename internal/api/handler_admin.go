package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ExportUsers(c *gin.Context) {
	size, page, err := pageOf(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	who := callerOf(c)
	users, err := h.users.List(c.Request.Context(), who.SystemID, who.Email, size, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) ExportCommands(c *gin.Context) {
	size, page, err := pageOf(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	who := callerOf(c)
	commands, err := h.commands.History(c.Request.Context(), who.SystemID, who.Email, size, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, commands)
}

func (h *Handler) DeleteUsers(c *gin.Context) {
	who := callerOf(c)
	h.done(c, h.users.DeleteAll(c.Request.Context(), who.SystemID, who.Email))
}

func (h *Handler) DeleteCommands(c *gin.Context) {
	who := callerOf(c)
	h.done(c, h.commands.DeleteAll(c.Request.Context(), who.SystemID, who.Email))
}

func (h *Handler) DeleteObjects(c *gin.Context) {
	who := callerOf(c)
	h.done(c, h.objects.DeleteAll(c.Request.Context(), who.SystemID, who.Email))
}

func (h *Handler) done(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
