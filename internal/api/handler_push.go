package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

type subscriptionResponse struct {
	Endpoint string       `json:"endpoint"`
	UserID   model.UserID `json:"userId"`
}

// owner resolves the caller to a user key. Unknown callers are rejected.
func (h *Handler) owner(c *gin.Context) (string, error) {
	who := callerOf(c)
	if _, err := h.gate.Role(c.Request.Context(), who.SystemID, who.Email); err != nil {
		return "", err
	}
	return h.sys.Join(who.SystemID, who.Email), nil
}

// PutSubscription registers a browser push endpoint for the caller,
// taking over the endpoint if another user held it.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	userID, err := h.owner(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	sub := &model.PushSubscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := h.store.SaveSubscription(c.Request.Context(), sub); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's endpoints.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if _, err := h.ownedSubscription(c, req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true // endpoints are matched undecoded
		}
	}
	return "", false
}

// GetSubscription reports whether the caller owns the given endpoint.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		h.fail(c, apperr.InvalidInput("endpoint is required"))
		return
	}

	sub, err := h.ownedSubscription(c, raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	systemID, email := h.sys.Split(sub.UserID)
	c.JSON(http.StatusOK, subscriptionResponse{
		Endpoint: sub.Endpoint,
		UserID:   model.UserID{SystemID: systemID, Email: email},
	})
}

func (h *Handler) ownedSubscription(c *gin.Context, endpoint string) (*model.PushSubscription, error) {
	userID, err := h.owner(c)
	if err != nil {
		return nil, err
	}
	sub, err := h.store.FindSubscription(c.Request.Context(), endpoint)
	if errors.Is(err, store.ErrNotFound) || (err == nil && sub.UserID != userID) {
		return nil, apperr.NotFound("subscription not found")
	}
	return sub, err
}

// GetVAPIDPublicKey returns the application server key browsers need to
// subscribe. It is 503 until push keys are configured.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		h.log.Debug("vapid public key requested while push is disabled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
