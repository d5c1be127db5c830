package model

import "time"

type TurnType string

const (
	TurnHuman TurnType = "human"
	TurnAI    TurnType = "ai"
)

// TurnMetadata is the structured data stored alongside a turn's text.
type TurnMetadata struct {
	RepositoryURL string `json:"repository_url,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Turn is one message of a retrieval session.
type Turn struct {
	CreatedAt time.Time     `json:"created_at"`
	Metadata  *TurnMetadata `json:"metadata,omitempty"`
	SessionID string        `json:"session_id"`
	Type      TurnType      `json:"type"`
	Content   string        `json:"content"`
	ID        int64         `json:"id,string"`
}
