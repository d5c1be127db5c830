package github_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/scout/internal/github"
)

type recordedRequest struct {
	Authorization string
	Query         string
	Variables     map[string]any
}

const repositoryJSON = `
	"name": "widgets",
	"nameWithOwner": "acme/widgets",
	"description": "Widget factory",
	"diskUsage": 2048,
	"stargazerCount": 17,
	"primaryLanguage": {"name": "Go", "color": "#00ADD8"},
	"createdAt": "2020-01-02T03:04:05Z",
	"updatedAt": "2024-05-06T07:08:09Z",
	"isPrivate": false,
	"url": "https://github.com/acme/widgets"`

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *github.Client
		recorded *recordedRequest
		status   int
		body     string
		ref      github.Reference
	)

	BeforeEach(func() {
		recorded = nil
		status = http.StatusOK
		body = `{"data": {"repository": {` + repositoryJSON + `}}}`
		ref = github.Reference{Owner: "acme", Name: "widgets"}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload struct {
				Query     string         `json:"query"`
				Variables map[string]any `json:"variables"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			recorded = &recordedRequest{
				Authorization: r.Header.Get("Authorization"),
				Query:         payload.Query,
				Variables:     payload.Variables,
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))

		var err error
		client, err = github.NewClient(github.Config{
			Endpoint: server.URL,
			Token:    "test-token",
			MaxDepth: 2,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires a token", func() {
		_, err := github.NewClient(github.Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Summary", func() {
		It("decodes repository metadata and sends credentials and variables", func() {
			summary, err := client.Summary(context.Background(), ref)

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.FullName).To(Equal("acme/widgets"))
			Expect(summary.Description).To(Equal("Widget factory"))
			Expect(summary.SizeKB).To(Equal(int64(2048)))
			Expect(summary.StarCount).To(Equal(17))
			Expect(summary.PrimaryLanguage).To(Equal("Go"))
			Expect(summary.CreatedAt.Year()).To(Equal(2020))

			Expect(recorded.Authorization).To(Equal("Bearer test-token"))
			Expect(recorded.Variables).To(Equal(map[string]any{"owner": "acme", "name": "widgets"}))
			Expect(recorded.Query).NotTo(ContainSubstring("defaultBranchRef"))
		})

		It("maps a null repository to RepositoryNotFound", func() {
			body = `{"data": {"repository": null}}`
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrRepositoryNotFound)).To(BeTrue())
		})

		It("maps GitHub's NOT_FOUND error to RepositoryNotFound", func() {
			body = `{"data": {"repository": null}, "errors": [{"type": "NOT_FOUND", "path": ["repository"], "message": "Could not resolve to a Repository"}]}`
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrRepositoryNotFound)).To(BeTrue())
		})

		It("maps other GraphQL errors to a transport failure carrying the message", func() {
			body = `{"errors": [{"type": "RATE_LIMITED", "message": "API rate limit exceeded"}]}`
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("API rate limit exceeded"))
		})

		It("maps a non-2xx status to a transport failure", func() {
			status = http.StatusUnauthorized
			body = `{"message": "Bad credentials"}`
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrTransport)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("401"))
			Expect(err.Error()).To(ContainSubstring("Bad credentials"))
		})

		It("maps a malformed body to a transport failure", func() {
			body = `{"data": `
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrTransport)).To(BeTrue())
		})

		It("maps a response without data to a transport failure", func() {
			body = `{}`
			_, err := client.Summary(context.Background(), ref)
			Expect(errors.Is(err, github.ErrTransport)).To(BeTrue())
		})

		It("surfaces cancellation as a transport failure", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := client.Summary(ctx, ref)
			Expect(errors.Is(err, github.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("Tree", func() {
		It("returns nested nodes from the default branch", func() {
			body = `{"data": {"repository": {` + repositoryJSON + `,
				"defaultBranchRef": {"name": "main", "target": {"tree": {"entries": [
					{"name": "src", "path": "src", "type": "tree", "object": {"entries": [
						{"name": "main.go", "path": "src/main.go", "type": "blob", "object": {"text": "package main", "isBinary": false, "byteSize": 12}}
					]}},
					{"name": "deep", "path": "deep", "type": "tree", "object": {}}
				]}}}}}}`

			tree, err := client.Tree(context.Background(), ref)

			Expect(err).NotTo(HaveOccurred())
			Expect(tree.DefaultBranch).To(Equal("main"))
			Expect(tree.Repository.FullName).To(Equal("acme/widgets"))
			Expect(tree.Entries).To(HaveLen(2))
			Expect(*tree.Entries[0].Object.Entries).To(HaveLen(1))
			Expect(tree.Entries[1].Object.Entries).To(BeNil())

			Expect(strings.Count(recorded.Query, "entries")).To(Equal(3))
		})

		It("fails with NoDefaultBranch for an empty repository", func() {
			body = `{"data": {"repository": {` + repositoryJSON + `, "defaultBranchRef": null}}}`
			_, err := client.Tree(context.Background(), ref)
			Expect(errors.Is(err, github.ErrNoDefaultBranch)).To(BeTrue())
		})
	})

	Describe("Blob", func() {
		It("addresses the file at HEAD", func() {
			body = `{"data": {"repository": {"object": {"text": "hello", "isBinary": false, "byteSize": 5}}}}`
			ref.Subpath = "docs/hello.txt"

			file, err := client.Blob(context.Background(), ref)

			Expect(err).NotTo(HaveOccurred())
			Expect(*file.Text).To(Equal("hello"))
			Expect(file.ByteSize).To(Equal(int64(5)))
			Expect(file.Path).To(Equal("docs/hello.txt"))
			Expect(recorded.Variables["path"]).To(Equal("HEAD:docs/hello.txt"))
		})

		It("fails with ObjectNotFound when nothing exists at the path", func() {
			body = `{"data": {"repository": {"object": null}}}`
			ref.Subpath = "missing.txt"
			_, err := client.Blob(context.Background(), ref)
			Expect(errors.Is(err, github.ErrObjectNotFound)).To(BeTrue())
		})

		It("fails with ObjectNotFound when the path is a directory", func() {
			body = `{"data": {"repository": {"object": {}}}}`
			ref.Subpath = "src"
			_, err := client.Blob(context.Background(), ref)
			Expect(errors.Is(err, github.ErrObjectNotFound)).To(BeTrue())
		})

		It("rejects a reference without a path before any request", func() {
			_, err := client.Blob(context.Background(), ref)
			Expect(errors.Is(err, github.ErrInvalidReference)).To(BeTrue())
			Expect(recorded).To(BeNil())
		})
	})
})
