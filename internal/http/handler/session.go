package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/scout/internal/http/dto"
	"basegraph.app/scout/internal/retrieval"
	"basegraph.app/scout/internal/service"
)

type SessionHandler struct {
	sessions   service.SessionService
	retryAfter time.Duration
}

func NewSessionHandler(sessions service.SessionService, retryAfter time.Duration) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		retryAfter: retryAfter,
	}
}

// Retrieve runs one retrieval in the context of a conversation session.
func (h *SessionHandler) Retrieve(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: operation must be one of summary, tree, file"})
		return
	}

	op, err := retrieval.ParseOperation(req.Operation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := requestIDFor(c, req.RequestID)
	res, err := h.sessions.Retrieve(ctx, sessionID, service.RetrieveInput{
		Operation: op,
		Locator:   req.URL,
		Query:     req.Query,
		RequestID: requestID,
	})
	if err != nil {
		writeRetrievalError(c, err, h.retryAfter, requestID)
		return
	}

	c.JSON(http.StatusOK, dto.ToRetrieveResponse(res.Result, res.RequestID))
}

// RunTool executes a tool call issued by an agent for this session.
func (h *SessionHandler) RunTool(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")
	name := c.Param("name")

	var req dto.ToolCallRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if !knownTool(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool"})
		return
	}

	requestID := requestIDFor(c, req.RequestID)
	res, err := h.sessions.RunTool(ctx, sessionID, name, string(req.Arguments), requestID)
	if err != nil {
		writeRetrievalError(c, err, h.retryAfter, requestID)
		return
	}

	c.JSON(http.StatusOK, dto.ToRetrieveResponse(res.Result, res.RequestID))
}

func (h *SessionHandler) Turns(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	turns, err := h.sessions.Turns(ctx, sessionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list turns", "error", err, "session_id", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list turns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"turns": dto.ToTurnResponses(turns)})
}

func knownTool(name string) bool {
	for _, t := range retrieval.Tools() {
		if t.Name == name {
			return true
		}
	}
	return false
}
