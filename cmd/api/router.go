package api

import (
	"net/http"

	accountDelivery "mailpilot-backend/internal/account/delivery"
	"mailpilot-backend/internal/auth/delivery"
	authUsecase "mailpilot-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *delivery.AuthHandler, accountHandler *accountDelivery.AccountHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUc))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Account and sync-settings routes (protected)
		accounts := api.Group("/accounts")
		accounts.Use(delivery.AuthMiddleware(authUc))
		{
			accounts.GET("", accountHandler.GetAccounts)
			accounts.POST("", accountHandler.CreateAccount)
			accounts.DELETE("/:id", accountHandler.DeleteAccount)

			accounts.GET("/:id/sync-settings", accountHandler.GetSyncSettings)
			accounts.PUT("/:id/sync-settings/mode", accountHandler.UpdateSyncMode)
			accounts.PUT("/:id/sync-settings/interval", accountHandler.UpdateSyncInterval)
			accounts.PUT("/:id/sync-settings/night-mode", accountHandler.UpdateNightMode)
			accounts.PUT("/:id/sync-settings/battery-saver", accountHandler.UpdateBatterySaver)
			accounts.PUT("/:id/sync-settings/days/:field", accountHandler.UpdateIntervalDays)
		}

		// Settings routes (protected) - scheduler runtime configuration
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUc))
		{
			settings.GET("/runtime", GetRuntimeSettings)
			settings.PUT("/runtime", UpdateRuntimeSettings)
		}
	}
}
