package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"airwise-backend/config"
	"airwise-backend/internal/mw"
)

// BasePath prefixes every route.
const BasePath = "/ambient-intelligence"

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	publicCache := mw.PublicCache(cache.New(5*time.Minute, 10*time.Minute), 5*time.Minute)

	api := r.Group(BasePath)
	api.Use(rateLimiter)
	{
		api.POST("/commands", h.InvokeCommand)

		objects := api.Group("/objects")
		objects.POST("", h.CreateObject)
		objects.GET("", h.ListObjects)
		objects.GET("/search/byAlias/:alias", h.SearchByAlias)
		objects.GET("/search/byAliasPattern/:pattern", h.SearchByAliasPattern)
		objects.GET("/search/byType/:type", h.SearchByType)
		objects.GET("/search/byStatus/:status", h.SearchByStatus)
		objects.GET("/search/byTypeAndStatus/:type/:status", h.SearchByTypeAndStatus)
		objects.PUT("/:systemID/:objectId", h.UpdateObject)
		objects.GET("/:systemID/:objectId", h.GetObject)
		objects.PUT("/:systemID/:objectId/children", h.BindChild)
		objects.GET("/:systemID/:objectId/children", h.GetChildren)
		objects.GET("/:systemID/:objectId/parents", h.GetParents)

		users := api.Group("/users")
		users.POST("", h.CreateUser)
		users.GET("/login/:systemID/:userEmail", h.Login)
		users.PUT("/:systemID/:userEmail", h.UpdateUser)

		admin := api.Group("/admin")
		admin.GET("/users", h.ExportUsers)
		admin.DELETE("/users", h.DeleteUsers)
		admin.GET("/commands", h.ExportCommands)
		admin.DELETE("/commands", h.DeleteCommands)
		admin.DELETE("/objects", h.DeleteObjects)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", publicCache, h.GetVAPIDPublicKey)
	}

	return r
}
