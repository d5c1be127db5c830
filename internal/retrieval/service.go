package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/scout/common/logger"
	"basegraph.app/scout/internal/cache"
	"basegraph.app/scout/internal/conversation"
	"basegraph.app/scout/internal/github"
	"basegraph.app/scout/internal/model"
	"go.opentelemetry.io/otel/attribute"
)

type Operation string

const (
	OperationSummary Operation = "summary"
	OperationTree    Operation = "tree"
	OperationFile    Operation = "file"
)

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OperationSummary, OperationTree, OperationFile:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", s)
	}
}

// Request is one retrieval. Locator may be empty, in which case the most
// recently referenced repository in History is used.
type Request struct {
	Operation Operation
	Locator   string
	Query     string
	History   []model.Turn // oldest first
}

type Result struct {
	Summary       *github.RepositorySummary `json:"summary,omitempty"`
	Tree          *github.RepositoryTree    `json:"tree,omitempty"`
	File          *github.File              `json:"file,omitempty"`
	Operation     Operation                 `json:"operation"`
	RepositoryURL string                    `json:"repository_url"`
	Content       string                    `json:"content"`
	Cached        bool                      `json:"cached"`
}

// Admitter decides whether a retrieval may start now.
type Admitter interface {
	Admit() bool
}

type Service interface {
	Retrieve(ctx context.Context, req Request) (*Result, error)
	FetchRepositorySummary(ctx context.Context, locator string) (*github.RepositorySummary, error)
	FetchTree(ctx context.Context, locator string) (*github.RepositoryTree, error)
	FetchFile(ctx context.Context, locator string) (*github.File, error)
}

type service struct {
	transport github.Transport
	admitter  Admitter
	cache     cache.Cache
}

func NewService(transport github.Transport, admitter Admitter, c cache.Cache) Service {
	return &service{
		transport: transport,
		admitter:  admitter,
		cache:     c,
	}
}

// payload is the cached form of a result. Content is re-rendered on a hit.
type payload struct {
	Summary *github.RepositorySummary `json:"summary,omitempty"`
	Tree    *github.RepositoryTree    `json:"tree,omitempty"`
	File    *github.File              `json:"file,omitempty"`
}

func (s *service) Retrieve(ctx context.Context, req Request) (*Result, error) {
	target := strings.TrimSpace(req.Locator)
	if target == "" {
		target, _ = conversation.ResolveRepositoryURL(req.History)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Operation: logger.Ptr(string(req.Operation)),
		Component: "scout.retrieval",
	})
	if target != "" {
		ctx = logger.WithLogFields(ctx, logger.LogFields{Repository: logger.Ptr(target)})
	}

	sc := logger.StartSpan(ctx, "retrieval."+string(req.Operation))
	defer sc.End()
	ctx = sc.Context()
	sc.Span().SetAttributes(
		attribute.String("retrieval.operation", string(req.Operation)),
		attribute.String("repository", target),
	)

	res, err := s.retrieve(ctx, req.Operation, target, req.Query)
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "retrieval failed", "error", err, "kind", KindOf(err))
		return nil, err
	}
	sc.Span().SetAttributes(attribute.Bool("cache.hit", res.Cached))
	return res, nil
}

func (s *service) retrieve(ctx context.Context, op Operation, target, query string) (*Result, error) {
	if _, err := ParseOperation(string(op)); err != nil {
		return nil, err
	}

	if !s.admitter.Admit() {
		return nil, rateLimited()
	}

	key := cache.Key(cacheText(op, target, query), target)
	if res, ok := s.lookup(ctx, op, key); ok {
		slog.DebugContext(ctx, "retrieval served from cache")
		return res, nil
	}

	ref, err := github.ParseReference(target)
	if err != nil {
		return nil, invalidReference(target, err)
	}

	var p payload
	switch op {
	case OperationSummary:
		summary, err := s.transport.Summary(ctx, ref)
		if err != nil {
			return nil, classify(target, ref, err)
		}
		p.Summary = summary
	case OperationTree:
		tree, err := s.transport.Tree(ctx, ref)
		if err != nil {
			return nil, classify(target, ref, err)
		}
		entries := github.FilterBySubpath(github.Flatten(tree.Entries, ""), ref.Subpath)
		if len(entries) == 0 && ref.Subpath != "" {
			return nil, pathNotFound(target, ref, nil)
		}
		p.Tree = &github.RepositoryTree{
			Repository:    tree.Repository,
			DefaultBranch: tree.DefaultBranch,
			Entries:       entries,
		}
	case OperationFile:
		file, err := s.transport.Blob(ctx, ref)
		if err != nil {
			return nil, classify(target, ref, err)
		}
		p.File = file
	}

	res := p.result(op, ref.URL())

	if ctx.Err() != nil {
		return res, nil
	}
	s.store(ctx, key, p, res.RepositoryURL)
	return res, nil
}

// cacheText is the query half of the cache key. Typed requests without free
// text are keyed by operation and locator.
func cacheText(op Operation, target, query string) string {
	if strings.TrimSpace(query) == "" {
		return string(op) + " " + target
	}
	return string(op) + " " + query
}

func (s *service) lookup(ctx context.Context, op Operation, key string) (*Result, bool) {
	v, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var p payload
	if err := json.Unmarshal([]byte(v.Content), &p); err != nil || !p.matches(op) {
		return nil, false
	}
	res := p.result(op, v.RepositoryURL)
	res.Cached = true
	return res, true
}

func (s *service) store(ctx context.Context, key string, p payload, repositoryURL string) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.WarnContext(ctx, "encoding cache value failed", "error", err)
		return
	}
	if err := s.cache.Put(ctx, key, cache.Value{Content: string(data), RepositoryURL: repositoryURL}); err != nil {
		slog.WarnContext(ctx, "cache write failed", "error", err)
	}
}

func (p payload) matches(op Operation) bool {
	switch op {
	case OperationSummary:
		return p.Summary != nil
	case OperationTree:
		return p.Tree != nil
	case OperationFile:
		return p.File != nil
	}
	return false
}

func (p payload) result(op Operation, repositoryURL string) *Result {
	res := &Result{
		Operation:     op,
		RepositoryURL: repositoryURL,
		Summary:       p.Summary,
		Tree:          p.Tree,
		File:          p.File,
	}
	switch op {
	case OperationSummary:
		res.Content = RenderSummary(*p.Summary)
	case OperationTree:
		res.Content = RenderTree(*p.Tree)
	case OperationFile:
		res.Content = RenderFile(*p.File)
	}
	return res
}

func (s *service) FetchRepositorySummary(ctx context.Context, locator string) (*github.RepositorySummary, error) {
	res, err := s.Retrieve(ctx, Request{Operation: OperationSummary, Locator: locator})
	if err != nil {
		return nil, err
	}
	return res.Summary, nil
}

func (s *service) FetchTree(ctx context.Context, locator string) (*github.RepositoryTree, error) {
	res, err := s.Retrieve(ctx, Request{Operation: OperationTree, Locator: locator})
	if err != nil {
		return nil, err
	}
	return res.Tree, nil
}

func (s *service) FetchFile(ctx context.Context, locator string) (*github.File, error) {
	res, err := s.Retrieve(ctx, Request{Operation: OperationFile, Locator: locator})
	if err != nil {
		return nil, err
	}
	return res.File, nil
}
