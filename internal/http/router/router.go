package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/http/handler"
	"basegraph.app/scout/internal/http/middleware"
	"basegraph.app/scout/internal/service"
)

type RouterConfig struct {
	Admission      middleware.RemainingCounter
	AdmissionLimit int
	RetryAfter     time.Duration
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		repoHandler := handler.NewRepositoryHandler(services.Retrieval(), cfg.RetryAfter)
		v1.GET("/tools", repoHandler.Tools)

		retrievals := v1.Group("")
		if cfg.Admission != nil {
			retrievals.Use(middleware.RateLimitHeaders(cfg.Admission, cfg.AdmissionLimit))
		}

		RepositoryRouter(retrievals.Group("/repos"), repoHandler)

		sessionHandler := handler.NewSessionHandler(services.Sessions(), cfg.RetryAfter)
		SessionRouter(retrievals.Group("/sessions"), sessionHandler)
	}
}
