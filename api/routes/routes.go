package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/konstantin-nikolovski/perq/internal/config"
	"github.com/konstantin-nikolovski/perq/internal/handlers"
	"github.com/konstantin-nikolovski/perq/internal/middleware"
)

// HandlerDependencies collects the handlers the router wires up.
type HandlerDependencies struct {
	WebhookHandler  *handlers.WebhookHandler
	DiscountHandler *handlers.DiscountHandler
	PointsHandler   *handlers.PointsHandler
	SettingsHandler *handlers.SettingsHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Platform event deliveries; signed with the app secret.
	webhooks := router.Group("/webhooks")
	webhooks.Use(middleware.WebhookHMACMiddleware(cfg))
	{
		webhooks.POST("/orders-paid", deps.WebhookHandler.OrdersPaid)
		webhooks.POST("/refunds-create", deps.WebhookHandler.RefundsCreate)
	}

	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Invoked synchronously by the checkout discount pipeline.
		public.POST("/discount/generate", deps.DiscountHandler.Generate)

		// Flow action; HMAC-signed like a webhook delivery.
		flow := public.Group("/flow")
		flow.Use(middleware.WebhookHMACMiddleware(cfg))
		{
			flow.POST("/adjust-points", deps.PointsHandler.AdjustPoints)
		}
	}

	// Admin surface; requires a platform session token.
	protected := router.Group("/api/v1")
	protected.Use(middleware.SessionTokenMiddleware(cfg))
	{
		settings := protected.Group("/settings")
		{
			settings.GET("/rules", deps.SettingsHandler.GetRules)
			settings.PUT("/rules", deps.SettingsHandler.UpdateRules)
		}

		customers := protected.Group("/customers")
		{
			customers.GET("/:id/points", deps.PointsHandler.GetPoints)
			customers.GET("/:id/transactions", deps.PointsHandler.GetTransactions)
		}
	}

	return router
}
