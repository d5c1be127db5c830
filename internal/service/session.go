package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"basegraph.app/scout/common/id"
	"basegraph.app/scout/common/logger"
	"basegraph.app/scout/internal/model"
	"basegraph.app/scout/internal/retrieval"
	"basegraph.app/scout/internal/store"
)

// HistoryLimit is how many recent turns are loaded to resolve context.
const HistoryLimit = 10

type RetrieveInput struct {
	Operation retrieval.Operation
	Locator   string
	Query     string
	RequestID string
}

type SessionResult struct {
	Result    *retrieval.Result
	RequestID string
}

type SessionService interface {
	Retrieve(ctx context.Context, sessionID string, in RetrieveInput) (*SessionResult, error)
	RunTool(ctx context.Context, sessionID, name, arguments, requestID string) (*SessionResult, error)
	Turns(ctx context.Context, sessionID string) ([]model.Turn, error)
}

type sessionService struct {
	turns     store.TurnStore
	retrieval retrieval.Service
}

func NewSessionService(turns store.TurnStore, retrievals retrieval.Service) SessionService {
	return &sessionService{
		turns:     turns,
		retrieval: retrievals,
	}
}

func (s *sessionService) Retrieve(ctx context.Context, sessionID string, in RetrieveInput) (*SessionResult, error) {
	return s.run(ctx, sessionID, in.RequestID, retrieval.Request{
		Operation: in.Operation,
		Locator:   in.Locator,
		Query:     in.Query,
	})
}

func (s *sessionService) RunTool(ctx context.Context, sessionID, name, arguments, requestID string) (*SessionResult, error) {
	req, err := retrieval.ToolRequest(name, arguments)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, sessionID, requestID, req)
}

func (s *sessionService) run(ctx context.Context, sessionID, requestID string, req retrieval.Request) (*SessionResult, error) {
	if requestID == "" {
		requestID = id.NewString()
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		RequestID: logger.Ptr(requestID),
		Component: "scout.service.session",
	})

	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	req.History = history

	human := &model.Turn{
		SessionID: sessionID,
		Type:      model.TurnHuman,
		Content:   humanContent(req),
	}

	res, retrieveErr := s.retrieval.Retrieve(ctx, req)

	ai := &model.Turn{
		SessionID: sessionID,
		Type:      model.TurnAI,
		Metadata:  &model.TurnMetadata{RequestID: requestID},
	}
	if retrieveErr != nil {
		ai.Content = retrieveErr.Error()
		ai.Metadata.Error = retrieveErr.Error()
	} else {
		ai.Content = res.Content
		ai.Metadata.RepositoryURL = res.RepositoryURL
	}

	// A retrieval cut short by the caller still records its error turn.
	if err := s.turns.Append(context.WithoutCancel(ctx), human, ai); err != nil {
		slog.ErrorContext(ctx, "failed to store session turns", "error", err)
		if retrieveErr == nil {
			return nil, fmt.Errorf("storing turns: %w", err)
		}
	}

	if retrieveErr != nil {
		return nil, retrieveErr
	}

	slog.InfoContext(ctx, "session retrieval completed",
		"operation", res.Operation,
		"repository_url", res.RepositoryURL,
		"cached", res.Cached,
	)
	return &SessionResult{Result: res, RequestID: requestID}, nil
}

// history returns the recent turns of a session oldest first.
func (s *sessionService) history(ctx context.Context, sessionID string) ([]model.Turn, error) {
	turns, err := s.turns.ListRecent(ctx, sessionID, HistoryLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load session history", "error", err)
		return nil, fmt.Errorf("loading history: %w", err)
	}
	slices.Reverse(turns)
	return turns, nil
}

func (s *sessionService) Turns(ctx context.Context, sessionID string) ([]model.Turn, error) {
	turns, err := s.turns.ListRecent(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	slices.Reverse(turns)
	return turns, nil
}

func humanContent(req retrieval.Request) string {
	if q := strings.TrimSpace(req.Query); q != "" {
		return q
	}
	return strings.TrimSpace(string(req.Operation) + " " + req.Locator)
}
