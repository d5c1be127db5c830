package service_test

import (
	"context"

	"basegraph.app/scout/internal/github"
	"basegraph.app/scout/internal/model"
	"basegraph.app/scout/internal/retrieval"
)

type mockRetrieval struct {
	retrieveFn func(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
	requests   []retrieval.Request
}

func (m *mockRetrieval) Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error) {
	m.requests = append(m.requests, req)
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, req)
	}
	return &retrieval.Result{Operation: req.Operation}, nil
}

func (m *mockRetrieval) FetchRepositorySummary(context.Context, string) (*github.RepositorySummary, error) {
	return nil, nil
}

func (m *mockRetrieval) FetchTree(context.Context, string) (*github.RepositoryTree, error) {
	return nil, nil
}

func (m *mockRetrieval) FetchFile(context.Context, string) (*github.File, error) {
	return nil, nil
}

type mockTurnStore struct {
	listRecentFn func(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
	appendFn     func(ctx context.Context, turns ...*model.Turn) error
}

func (m *mockTurnStore) ListRecent(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, sessionID, limit)
	}
	return nil, nil
}

func (m *mockTurnStore) Append(ctx context.Context, turns ...*model.Turn) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, turns...)
	}
	return nil
}
