package router

import (
	"strings"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/controller"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers 라우터에 연결되는 핸들러 묶음
type Controllers struct {
	Auth         *controller.AuthController
	Comment      *controller.CommentController
	AdminComment *controller.AdminCommentController
	Like         *controller.LikeController
	Analytics    *controller.AnalyticsController
	Settings     *controller.SettingsController
	Telegram     *controller.TelegramController
	WS           *controller.WSController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.config.Server.GinMode != "" {
		gin.SetMode(r.config.Server.GinMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "CWD Comments API is running",
		})
	})

	ctrl := r.controllers

	api := router.Group("/api")
	{
		api.GET("/comments", ctrl.Comment.ListComments)
		api.POST("/comments", ctrl.Comment.SubmitComment)
		api.POST("/comments/like", ctrl.Comment.LikeComment)
		api.POST("/verify-admin", ctrl.Comment.VerifyAdmin)
		api.GET("/config/comments", ctrl.Comment.GetPublicConfig)

		api.POST("/analytics/visit", ctrl.Analytics.TrackVisit)

		api.GET("/like", ctrl.Like.GetStatus)
		api.POST("/like", ctrl.Like.Like)
		api.DELETE("/like", ctrl.Like.Unlike)

		api.POST("/telegram/webhook", ctrl.Telegram.Webhook)
	}

	router.POST("/admin/login", ctrl.Auth.Login)

	admin := router.Group("/admin", r.authMiddleware.Authenticate())
	{
		comments := admin.Group("/comments")
		{
			comments.GET("/list", ctrl.AdminComment.ListComments)
			comments.DELETE("/delete", ctrl.AdminComment.DeleteComment)
			comments.PUT("/status", ctrl.AdminComment.UpdateStatus)
			comments.PUT("/update", ctrl.AdminComment.UpdateComment)
			comments.GET("/export", ctrl.AdminComment.ExportComments)
			comments.POST("/import", ctrl.AdminComment.ImportComments)
			comments.POST("/backup", ctrl.AdminComment.Backup)
			comments.POST("/block-ip", ctrl.AdminComment.BlockIP)
			comments.POST("/block-email", ctrl.AdminComment.BlockEmail)
		}

		stats := admin.Group("/stats")
		{
			stats.GET("/comments", ctrl.Analytics.CommentStats)
			stats.GET("/domains", ctrl.Analytics.Domains)
			stats.GET("/export", ctrl.Analytics.ExportStats)
			stats.POST("/import", ctrl.Analytics.ImportStats)
		}

		analytics := admin.Group("/analytics")
		{
			analytics.GET("/overview", ctrl.Analytics.Overview)
			analytics.GET("/pages", ctrl.Analytics.Pages)
		}

		likes := admin.Group("/likes")
		{
			likes.GET("/list", ctrl.Like.ListLikes)
			likes.GET("/stats", ctrl.Like.Stats)
		}

		settings := admin.Group("/settings")
		{
			settings.GET("/comments", ctrl.Settings.GetCommentSettings)
			settings.PUT("/comments", ctrl.Settings.UpdateCommentSettings)
			settings.GET("/features", ctrl.Settings.GetFeatureSettings)
			settings.PUT("/features", ctrl.Settings.UpdateFeatureSettings)
			settings.GET("/email", ctrl.Settings.GetAdminEmail)
			settings.PUT("/email", ctrl.Settings.UpdateAdminEmail)
			settings.GET("/email-notify", ctrl.Settings.GetEmailNotify)
			settings.PUT("/email-notify", ctrl.Settings.UpdateEmailNotify)
			settings.POST("/email-test", ctrl.Settings.SendTestEmail)
			settings.GET("/telegram", ctrl.Settings.GetTelegram)
			settings.PUT("/telegram", ctrl.Settings.UpdateTelegram)
		}

		admin.GET("/ws", ctrl.WS.HandleWebSocket)
	}

	return router
}

var allowedHeaders = strings.Join([]string{
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Authorization",
	"accept",
	"origin",
	"Cache-Control",
	"X-Requested-With",
	controller.LikeUserHeader,
}, ", ")

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
