package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up the page and API routes
func SetupRoutes(handler *Handler, log *logrus.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(log))
	router.SetHTMLTemplate(loadTemplates())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// Browser page
	page := router.Group("/", Sessions(handler.store))
	{
		page.GET("/", handler.Index)
		page.POST("/load", handler.LoadForm)
		page.POST("/select", handler.SelectForm)
		page.POST("/chat", handler.ChatForm)
		page.POST("/chat/clear", handler.ClearChatForm)
		page.POST("/session/reset", handler.ResetSession)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/rate-limit", handler.GetRateLimit)

		sess := v1.Group("/session", Sessions(handler.store))
		{
			sess.GET("", handler.GetSession)
			sess.GET("/repositories", handler.ListRepositories)
			sess.POST("/repositories", handler.LoadRepositories)
			sess.GET("/repositories/:owner/:name", handler.GetRepository)
			sess.PUT("/selection", handler.SelectRepository)
			sess.POST("/chat", handler.SendChat)
			sess.DELETE("/chat", handler.ClearChat)
		}
	}

	return router
}
