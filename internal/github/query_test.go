package github_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/scout/internal/github"
)

var _ = Describe("BuildTreeFragment", func() {
	It("nests one entries block per level above the limit", func() {
		fragment := github.BuildTreeFragment(0, 3)
		Expect(strings.Count(fragment, "entries")).To(Equal(3))
		Expect(strings.Count(fragment, "... on Tree")).To(Equal(3))
		Expect(strings.Count(fragment, "... on Blob")).To(Equal(4))
	})

	It("selects only blob metadata at the limit", func() {
		fragment := github.BuildTreeFragment(3, 3)
		Expect(fragment).NotTo(ContainSubstring("entries"))
		Expect(fragment).To(ContainSubstring("name path type"))
		Expect(fragment).To(ContainSubstring("text isBinary byteSize"))
	})

	It("is deterministic and balanced", func() {
		a := github.BuildTreeFragment(0, 5)
		b := github.BuildTreeFragment(0, 5)
		Expect(a).To(Equal(b))
		Expect(strings.Count(a, "{")).To(Equal(strings.Count(a, "}")))
	})

	It("treats a non-positive limit as leaf-only", func() {
		Expect(github.BuildTreeFragment(0, 0)).NotTo(ContainSubstring("entries"))
		Expect(github.BuildTreeFragment(0, -1)).NotTo(ContainSubstring("entries"))
	})
})

var _ = Describe("TreeQuery", func() {
	It("wraps the fragment under the default branch tree", func() {
		query := github.TreeQuery(github.DefaultMaxDepth)
		Expect(query).To(ContainSubstring("defaultBranchRef"))
		Expect(query).To(ContainSubstring("... on Commit"))
		Expect(query).To(ContainSubstring("nameWithOwner"))
		Expect(strings.Count(query, "entries")).To(Equal(github.DefaultMaxDepth + 1))
		Expect(strings.Count(query, "{")).To(Equal(strings.Count(query, "}")))
	})
})

var _ = Describe("FileQuery", func() {
	It("addresses the blob through an expression variable", func() {
		Expect(github.FileQuery).To(ContainSubstring("object(expression: $path)"))
		Expect(github.FileQuery).NotTo(ContainSubstring("entries"))
	})
})
