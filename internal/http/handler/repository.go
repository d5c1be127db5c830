package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/retrieval"
)

// RepositoryHandler serves stateless lookups addressed by URL.
type RepositoryHandler struct {
	retrieval  retrieval.Service
	retryAfter time.Duration
}

func NewRepositoryHandler(svc retrieval.Service, retryAfter time.Duration) *RepositoryHandler {
	return &RepositoryHandler{
		retrieval:  svc,
		retryAfter: retryAfter,
	}
}

type repositoryQuery struct {
	URL string `form:"url" binding:"required"`
}

func (h *RepositoryHandler) Summary(c *gin.Context) {
	h.serve(c, retrieval.OperationSummary, func(res *retrieval.Result) any { return res.Summary })
}

func (h *RepositoryHandler) Tree(c *gin.Context) {
	h.serve(c, retrieval.OperationTree, func(res *retrieval.Result) any { return res.Tree })
}

func (h *RepositoryHandler) File(c *gin.Context) {
	h.serve(c, retrieval.OperationFile, func(res *retrieval.Result) any { return res.File })
}

func (h *RepositoryHandler) serve(c *gin.Context, op retrieval.Operation, body func(*retrieval.Result) any) {
	var q repositoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	res, err := h.retrieval.Retrieve(c.Request.Context(), retrieval.Request{
		Operation: op,
		Locator:   q.URL,
	})
	if err != nil {
		writeRetrievalError(c, err, h.retryAfter, "")
		return
	}

	if res.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, body(res))
}

// Tools lists the retrieval tools an agent can call.
func (h *RepositoryHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": retrieval.Tools()})
}
