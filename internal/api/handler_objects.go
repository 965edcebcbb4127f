package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airwise-backend/internal/model"
)

type bindChildRequest struct {
	ChildID model.ObjectID `json:"childId"`
}

// CreateObject handles POST /objects.
func (h *Handler) CreateObject(c *gin.Context) {
	var req model.ObjectBoundary
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	created, err := h.objects.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// UpdateObject handles PUT /objects/:systemID/:objectId.
func (h *Handler) UpdateObject(c *gin.Context) {
	var req model.ObjectBoundary
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	who := callerOf(c)
	err := h.objects.Update(c.Request.Context(), c.Param("systemID"), c.Param("objectId"), req, who.SystemID, who.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// GetObject handles GET /objects/:systemID/:objectId.
func (h *Handler) GetObject(c *gin.Context) {
	who := callerOf(c)
	obj, err := h.objects.Get(c.Request.Context(), c.Param("systemID"), c.Param("objectId"), who.SystemID, who.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}

// ListObjects handles GET /objects.
func (h *Handler) ListObjects(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.List(c.Request.Context(), who.SystemID, who.Email, size, page)
	})
}

// BindChild handles PUT /objects/:systemID/:objectId/children.
func (h *Handler) BindChild(c *gin.Context) {
	var req bindChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	who := callerOf(c)
	err := h.objects.Bind(c.Request.Context(), c.Param("systemID"), c.Param("objectId"),
		req.ChildID.SystemID, req.ChildID.ObjectID, who.SystemID, who.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// GetChildren handles GET /objects/:systemID/:objectId/children.
func (h *Handler) GetChildren(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.Children(c.Request.Context(), c.Param("systemID"), c.Param("objectId"), who.SystemID, who.Email, size, page)
	})
}

// GetParents handles GET /objects/:systemID/:objectId/parents.
func (h *Handler) GetParents(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.Parents(c.Request.Context(), c.Param("systemID"), c.Param("objectId"), who.SystemID, who.Email, size, page)
	})
}

func (h *Handler) SearchByAlias(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.SearchByAlias(c.Request.Context(), c.Param("alias"), who.SystemID, who.Email, size, page)
	})
}

func (h *Handler) SearchByAliasPattern(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.SearchByAliasPattern(c.Request.Context(), c.Param("pattern"), who.SystemID, who.Email, size, page)
	})
}

func (h *Handler) SearchByType(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.SearchByType(c.Request.Context(), c.Param("type"), who.SystemID, who.Email, size, page)
	})
}

func (h *Handler) SearchByStatus(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.SearchByStatus(c.Request.Context(), c.Param("status"), who.SystemID, who.Email, size, page)
	})
}

func (h *Handler) SearchByTypeAndStatus(c *gin.Context) {
	h.page(c, func(who caller, size, page int) ([]model.ObjectBoundary, error) {
		return h.objects.SearchByTypeAndStatus(c.Request.Context(), c.Param("type"), c.Param("status"), who.SystemID, who.Email, size, page)
	})
}

// page parses the caller and pagination, then writes the result of fetch.
func (h *Handler) page(c *gin.Context, fetch func(who caller, size, page int) ([]model.ObjectBoundary, error)) {
	size, page, err := pageOf(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	found, err := fetch(callerOf(c), size, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}
