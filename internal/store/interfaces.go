package store

import (
	"context"

	"basegraph.app/scout/internal/model"
)

// TurnStore persists the turns of retrieval sessions.
type TurnStore interface {
	// ListRecent returns at most limit turns of the session, newest first.
	ListRecent(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
	// Append stores turns in order. ID and CreatedAt are filled in when zero.
	Append(ctx context.Context, turns ...*model.Turn) error
}
