package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/groupcart-dev/groupcart/internal/handlers"
	"github.com/groupcart-dev/groupcart/internal/middleware"
	"github.com/groupcart-dev/groupcart/internal/notifier"
	"github.com/groupcart-dev/groupcart/internal/types"
	"github.com/groupcart-dev/groupcart/internal/ws"
)

func NewRouter(hub *ws.Hub, n *notifier.Notifier) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", ws.Serve(hub))

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		groups := api.Group("/groups", middleware.AuthMiddleware())
		{
			groups.POST("", handlers.CreateGroup)
			groups.GET("", handlers.ListPublicGroups)
			groups.POST("/:group_id/join", handlers.JoinGroup(n))
			groups.POST("/:group_id/members/:user_id/approve", handlers.ApproveMember(n))
		}

		orders := api.Group("/orders", middleware.AuthMiddleware())
		{
			orders.POST("", handlers.CreateOrder(n))
			orders.PATCH("/:order_id/status", handlers.UpdateOrderStatus(n))
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/unread", handlers.ListUnreadNotifications)
			notifications.PUT("/:id/read", handlers.MarkNotificationRead)
			notifications.PUT("/read-all", handlers.MarkAllNotificationsRead)
		}
	}

	return r
}
