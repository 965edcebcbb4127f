package api

import (
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/command"
	"airwise-backend/internal/objects"
	"airwise-backend/internal/store"
	"airwise-backend/internal/users"
)

const (
	defaultPageSize = 10
	defaultPage     = 0
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sys      config.SystemConfig
	store    store.Store
	gate     *authz.Gate
	commands *command.Engine
	objects  *objects.Service
	users    *users.Service
	webpush  *webpush.Options
	log      *zap.Logger
}

// Services groups the domain services the handlers call into.
type Services struct {
	Commands *command.Engine
	Objects  *objects.Service
	Users    *users.Service
	Gate     *authz.Gate
}

// NewHandler creates a new API handler.
func NewHandler(sys config.SystemConfig, s store.Store, svc Services, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	return &Handler{
		sys:      sys,
		store:    s,
		gate:     svc.Gate,
		commands: svc.Commands,
		objects:  svc.Objects,
		users:    svc.Users,
		webpush:  webpushOptions,
		log:      log,
	}
}

// caller is the identity every protected route expects in its query string.
type caller struct {
	SystemID string
	Email    string
}

func callerOf(c *gin.Context) caller {
	return caller{SystemID: c.Query("userSystemID"), Email: c.Query("userEmail")}
}

// pageOf reads size and page, falling back to the defaults. Values that
// are not numbers are reported as invalid input.
func pageOf(c *gin.Context) (size, page int, err error) {
	size, err = intQuery(c, "size", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	page, err = intQuery(c, "page", defaultPage)
	if err != nil {
		return 0, 0, err
	}
	return size, page, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInput("%s param is invalid", key)
	}
	return n, nil
}

// fail writes err as a JSON error with the status of its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log.Debug("malformed request body", zap.String("path", c.FullPath()), zap.Error(err))
	h.fail(c, apperr.InvalidInput("malformed request body"))
}
