package router

import (
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the route table needs
type Handlers struct {
	System  *handler.SystemHandler
	Store   *handler.StoreHandler
	Webhook *handler.WebhookHandler
}

// BuildRoutes assembles the full API route table. Webhook routes skip the
// tenant-facing middleware chain passed in webhookOnly (typically just the
// body size limit); everything else is registered as-is.
func BuildRoutes(engine *gin.Engine, h Handlers, webhookOnly ...gin.HandlerFunc) *Router {
	r := NewRouter(engine, WithAPIVersion("v1"))

	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)

	stores := NewDomainGroup("stores", "/stores")
	stores.POST("", h.Store.Connect)
	stores.DELETE("/:id", h.Store.Disconnect)
	stores.GET("/:id/sync-status", h.Store.GetSyncStatus)
	stores.GET("/:id/sync-sessions", h.Store.ListSyncSessions)
	stores.POST("/:id/sync", h.Store.TriggerSync)
	r.Register(stores)

	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.Use(webhookOnly...)
	webhooks.POST("/shopify", h.Webhook.HandleWebhook)
	r.Register(webhooks)

	r.Setup()
	return r
}
