package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/http/handler"
)

func RepositoryRouter(rg *gin.RouterGroup, h *handler.RepositoryHandler) {
	rg.GET("/summary", h.Summary)
	rg.GET("/tree", h.Tree)
	rg.GET("/file", h.File)
}
