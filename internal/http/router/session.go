package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.POST("/:session_id/retrieve", h.Retrieve)
	rg.POST("/:session_id/tools/:name", h.RunTool)
	rg.GET("/:session_id/turns", h.Turns)
}
