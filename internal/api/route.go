package api

import (
	"Forwarder/internal/api/middleware"
	"Forwarder/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

const wsPath = "/ws/forwarded"

func SetupRouter(group *HandlersGroup, logIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/health", wsPath))
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logIndex)

	r.GET("/", group.StatusHandler.Status)
	r.GET("/health", group.StatusHandler.Health)
	r.POST("/sweep", group.StatusHandler.Sweep)

	postGroup := r.Group("/posts")
	{
		postGroup.POST("", group.PostHandler.CreatePost)
		postGroup.GET("", group.PostHandler.ListPosts)
		postGroup.GET("/forwarded", group.PostHandler.ListForwardedPosts)
		postGroup.GET("/pending", group.PostHandler.ListPendingPosts)
		postGroup.GET("/:post_id", group.PostHandler.GetPost)
	}

	if group.WsHandler != nil {
		r.GET(wsPath, group.WsHandler.Connect)
	}

	return r
}
