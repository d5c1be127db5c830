package dto

import (
	"encoding/json"
	"time"

	"basegraph.app/scout/internal/model"
	"basegraph.app/scout/internal/retrieval"
)

type RetrieveRequest struct {
	Operation string `json:"operation" binding:"required,oneof=summary tree file"`
	URL       string `json:"url,omitempty" binding:"max=2048"`
	Query     string `json:"query,omitempty" binding:"max=4096"`
	RequestID string `json:"request_id,omitempty" binding:"max=128"`
}

type ToolCallRequest struct {
	Arguments json.RawMessage `json:"arguments,omitempty"`
	RequestID string          `json:"request_id,omitempty" binding:"max=128"`
}

type RetrieveResponse struct {
	Content       string `json:"content"`
	RepositoryURL string `json:"repository_url,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	Success       bool   `json:"success"`
	Cached        bool   `json:"cached"`
}

func ToRetrieveResponse(res *retrieval.Result, requestID string) *RetrieveResponse {
	return &RetrieveResponse{
		Success:       true,
		Content:       res.Content,
		RepositoryURL: res.RepositoryURL,
		RequestID:     requestID,
		Cached:        res.Cached,
	}
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Success   bool   `json:"success"`
}

type TurnResponse struct {
	CreatedAt time.Time           `json:"created_at"`
	Metadata  *model.TurnMetadata `json:"metadata,omitempty"`
	Type      string              `json:"type"`
	Content   string              `json:"content"`
	ID        int64               `json:"id,string"`
}

func ToTurnResponses(turns []model.Turn) []TurnResponse {
	out := make([]TurnResponse, len(turns))
	for i, t := range turns {
		out[i] = TurnResponse{
			ID:        t.ID,
			Type:      string(t.Type),
			Content:   t.Content,
			Metadata:  t.Metadata,
			CreatedAt: t.CreatedAt,
		}
	}
	return out
}
