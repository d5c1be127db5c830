package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/scout/internal/github"
	"basegraph.app/scout/internal/http/handler"
	"basegraph.app/scout/internal/retrieval"
)

var _ = Describe("RepositoryHandler", func() {
	var (
		router *gin.Engine
		svc    *mockRetrievalService
	)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockRetrievalService{}
		h := handler.NewRepositoryHandler(svc, 60*time.Second)

		router.GET("/repos/summary", h.Summary)
		router.GET("/repos/tree", h.Tree)
		router.GET("/repos/file", h.File)
		router.GET("/tools", h.Tools)
	})

	Describe("Tree", func() {
		It("returns the flattened tree for the url", func() {
			var got retrieval.Request
			svc.retrieveFn = func(_ context.Context, req retrieval.Request) (*retrieval.Result, error) {
				got = req
				return &retrieval.Result{
					Operation: retrieval.OperationTree,
					Tree: &github.RepositoryTree{
						Repository: github.RepositorySummary{FullName: "acme/widgets"},
						Entries: []github.TreeEntry{
							{Name: "main.go", Path: "src/main.go", Kind: github.KindFile},
							{Name: "src", Path: "src", Kind: github.KindDirectory},
						},
					},
				}, nil
			}

			w := get("/repos/tree?url=" + url.QueryEscape("https://github.com/acme/widgets/tree/main/src"))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("X-Cache")).To(Equal("MISS"))
			Expect(got.Operation).To(Equal(retrieval.OperationTree))
			Expect(got.Locator).To(Equal("https://github.com/acme/widgets/tree/main/src"))

			var resp github.RepositoryTree
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Entries).To(HaveLen(2))
			Expect(resp.Entries[0].Path).To(Equal("src/main.go"))
		})

		It("marks cached responses", func() {
			svc.retrieveFn = func(context.Context, retrieval.Request) (*retrieval.Result, error) {
				return &retrieval.Result{Tree: &github.RepositoryTree{}, Cached: true}, nil
			}
			w := get("/repos/tree?url=acme/widgets")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("X-Cache")).To(Equal("HIT"))
		})

		It("returns 400 without a url", func() {
			w := get("/repos/tree")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	DescribeTable("maps retrieval errors to status codes",
		func(kind retrieval.ErrorKind, status int) {
			svc.retrieveFn = func(context.Context, retrieval.Request) (*retrieval.Result, error) {
				return nil, &retrieval.Error{Kind: kind, Detail: "failed", Path: "docs"}
			}

			w := get("/repos/summary?url=acme/widgets")
			Expect(w.Code).To(Equal(status))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).To(Equal("failed"))
			Expect(resp["kind"]).To(Equal(string(kind)))
			Expect(resp["success"]).To(BeFalse())
		},
		Entry("invalid reference", retrieval.KindInvalidReference, http.StatusBadRequest),
		Entry("repository not found", retrieval.KindRepositoryNotFound, http.StatusNotFound),
		Entry("path not found", retrieval.KindPathNotFound, http.StatusNotFound),
		Entry("no default branch", retrieval.KindNoDefaultBranch, http.StatusUnprocessableEntity),
		Entry("rate limited", retrieval.KindRateLimited, http.StatusTooManyRequests),
		Entry("transport failure", retrieval.KindTransportFailure, http.StatusBadGateway),
	)

	It("sets Retry-After when rate limited", func() {
		svc.retrieveFn = func(context.Context, retrieval.Request) (*retrieval.Result, error) {
			return nil, &retrieval.Error{Kind: retrieval.KindRateLimited, Detail: "Rate limit exceeded, try again later"}
		}
		w := get("/repos/file?url=acme/widgets/blob/main/a.go")
		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(w.Header().Get("Retry-After")).To(Equal("60"))
	})

	It("hides unexpected errors", func() {
		svc.retrieveFn = func(context.Context, retrieval.Request) (*retrieval.Result, error) {
			return nil, context.DeadlineExceeded
		}
		w := get("/repos/summary?url=acme/widgets")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("internal server error"))
	})

	It("lists the retrieval tools", func() {
		w := get("/tools")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp struct {
			Tools []struct {
				Name       string         `json:"name"`
				Parameters map[string]any `json:"parameters"`
			} `json:"tools"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Tools).To(HaveLen(3))
		Expect(resp.Tools[0].Name).To(Equal(retrieval.ToolRepositoryInfo))
		Expect(resp.Tools[0].Parameters).To(HaveKey("properties"))
	})
})
