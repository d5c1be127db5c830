package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"basegraph.app/scout/common/id"
	"basegraph.app/scout/core/db"
	"basegraph.app/scout/internal/model"
)

//go:embed schema.sql
var schema string

const (
	listRecentTurns = `
SELECT id, session_id, type, content, data, created_at
FROM messages
WHERE session_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	insertTurn = `
INSERT INTO messages (id, session_id, type, content, data, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
)

type turnStore struct {
	db *db.DB
}

func NewTurnStore(database *db.DB) TurnStore {
	return &turnStore{db: database}
}

// EnsureSchema creates the messages table if it does not exist.
func EnsureSchema(ctx context.Context, database *db.DB) error {
	if _, err := database.Querier().Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating messages schema: %w", err)
	}
	return nil
}

func (s *turnStore) ListRecent(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	var lim any = limit
	if limit <= 0 {
		lim = nil // LIMIT NULL returns every row
	}

	rows, err := s.db.Querier().Query(ctx, listRecentTurns, sessionID, lim)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var (
			t        model.Turn
			turnType string
			data     []byte
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &turnType, &t.Content, &data, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Type = model.TurnType(turnType)
		if len(data) > 0 {
			var meta model.TurnMetadata
			if err := json.Unmarshal(data, &meta); err != nil {
				return nil, fmt.Errorf("decoding turn %d metadata: %w", t.ID, err)
			}
			t.Metadata = &meta
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	return turns, nil
}

func (s *turnStore) Append(ctx context.Context, turns ...*model.Turn) error {
	return s.db.WithTx(ctx, func(q db.Querier) error {
		for _, t := range turns {
			fillTurn(t)

			var data []byte
			if t.Metadata != nil {
				encoded, err := json.Marshal(t.Metadata)
				if err != nil {
					return fmt.Errorf("encoding turn metadata: %w", err)
				}
				data = encoded
			}

			if _, err := q.Exec(ctx, insertTurn, t.ID, t.SessionID, string(t.Type), t.Content, data, t.CreatedAt); err != nil {
				return fmt.Errorf("inserting turn: %w", err)
			}
		}
		return nil
	})
}

func fillTurn(t *model.Turn) {
	if t.ID == 0 {
		t.ID = id.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}
