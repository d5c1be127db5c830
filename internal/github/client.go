package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"basegraph.app/scout/common/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultEndpoint = "https://api.github.com/graphql"

// Transport executes repository queries against the remote API. It performs
// exactly one request per call and never retries.
type Transport interface {
	Summary(ctx context.Context, ref Reference) (*RepositorySummary, error)
	Tree(ctx context.Context, ref Reference) (*Tree, error)
	Blob(ctx context.Context, ref Reference) (*File, error)
}

type Config struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	MaxDepth   int
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	treeQuery  string
	maxDepth   int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required for the GraphQL API")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      cfg.Token,
		treeQuery:  TreeQuery(maxDepth),
		maxDepth:   maxDepth,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// do posts one query and decodes the data member into out.
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%w: encoding request: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: graphql request failed: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "github graphql request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: graphql request failed: status %d: %s",
			ErrTransport, resp.StatusCode, logger.Truncate(strings.TrimSpace(string(snippet)), 256))
	}

	var result graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrTransport, err)
	}

	if len(result.Errors) > 0 {
		if repositoryMissing(result.Errors) {
			return ErrRepositoryNotFound
		}
		return fmt.Errorf("%w: graphql errors: %s", ErrTransport, joinMessages(result.Errors))
	}

	if len(result.Data) == 0 || string(result.Data) == "null" {
		return fmt.Errorf("%w: no data returned from github", ErrTransport)
	}

	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("%w: decoding data: %w", ErrTransport, err)
	}
	return nil
}

// repositoryMissing reports whether every error is GitHub's NOT_FOUND for the
// repository field, which is how an unknown owner/name is reported.
func repositoryMissing(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Type != "NOT_FOUND" {
			return false
		}
		if len(e.Path) == 0 || e.Path[0] != "repository" {
			return false
		}
	}
	return true
}

func joinMessages(errs []graphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

type repositoryData struct {
	Name            string    `json:"name"`
	NameWithOwner   string    `json:"nameWithOwner"`
	Description     *string   `json:"description"`
	DiskUsage       int64     `json:"diskUsage"`
	StargazerCount  int       `json:"stargazerCount"`
	PrimaryLanguage *struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"primaryLanguage"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	IsPrivate        bool      `json:"isPrivate"`
	URL              string    `json:"url"`
	DefaultBranchRef *struct {
		Name   string `json:"name"`
		Target *struct {
			Tree *struct {
				Entries []TreeNode `json:"entries"`
			} `json:"tree"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	Object *NodeObject `json:"object"`
}

func (r *repositoryData) summary() RepositorySummary {
	s := RepositorySummary{
		Name:      r.Name,
		FullName:  r.NameWithOwner,
		SizeKB:    r.DiskUsage,
		StarCount: r.StargazerCount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		IsPrivate: r.IsPrivate,
		URL:       r.URL,
	}
	if r.Description != nil {
		s.Description = *r.Description
	}
	if r.PrimaryLanguage != nil {
		s.PrimaryLanguage = r.PrimaryLanguage.Name
	}
	return s
}

type queryData struct {
	Repository *repositoryData `json:"repository"`
}

func (c *Client) query(ctx context.Context, op, query string, ref Reference, variables map[string]any) (*repositoryData, error) {
	sc := logger.StartSpan(ctx, "github.graphql."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	sc.Span().SetAttributes(attribute.String("github.repository", ref.FullName()))

	var data queryData
	if err := c.do(sc.Context(), query, variables, &data); err != nil {
		sc.RecordError(err)
		return nil, err
	}
	if data.Repository == nil {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, ref.FullName())
	}
	return data.Repository, nil
}

func (c *Client) Summary(ctx context.Context, ref Reference) (*RepositorySummary, error) {
	repo, err := c.query(ctx, "summary", SummaryQuery, ref, map[string]any{
		"owner": ref.Owner,
		"name":  ref.Name,
	})
	if err != nil {
		return nil, err
	}
	summary := repo.summary()
	return &summary, nil
}

func (c *Client) Tree(ctx context.Context, ref Reference) (*Tree, error) {
	repo, err := c.query(ctx, "tree", c.treeQuery, ref, map[string]any{
		"owner": ref.Owner,
		"name":  ref.Name,
	})
	if err != nil {
		return nil, err
	}

	branch := repo.DefaultBranchRef
	if branch == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDefaultBranch, ref.FullName())
	}

	tree := &Tree{
		Repository:    repo.summary(),
		DefaultBranch: branch.Name,
	}
	if branch.Target != nil && branch.Target.Tree != nil {
		tree.Entries = branch.Target.Tree.Entries
	}
	return tree, nil
}

func (c *Client) Blob(ctx context.Context, ref Reference) (*File, error) {
	if ref.Subpath == "" {
		return nil, fmt.Errorf("%w: no file path specified", ErrInvalidReference)
	}

	repo, err := c.query(ctx, "blob", FileQuery, ref, map[string]any{
		"owner": ref.Owner,
		"name":  ref.Name,
		"path":  ref.Expression(),
	})
	if err != nil {
		return nil, err
	}

	// A directory expression matches no Blob fields and decodes as an empty object.
	obj := repo.Object
	if obj == nil || obj.ByteSize == nil {
		return nil, fmt.Errorf("%w: file '%s'", ErrObjectNotFound, ref.Subpath)
	}

	file := &File{
		Path:     ref.Subpath,
		Text:     obj.Text,
		ByteSize: *obj.ByteSize,
	}
	if obj.IsBinary != nil {
		file.IsBinary = *obj.IsBinary
	}
	return file, nil
}

func (c *Client) MaxDepth() int {
	return c.maxDepth
}
