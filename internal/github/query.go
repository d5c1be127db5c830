package github

import "strings"

// DefaultMaxDepth is how many levels of sub-directory contents a tree query inlines.
const DefaultMaxDepth = 3

const blobSelection = `... on Blob { text isBinary byteSize }`

const summarySelection = `
    name
    nameWithOwner
    description
    diskUsage
    stargazerCount
    primaryLanguage { name color }
    createdAt
    updatedAt
    isPrivate
    url`

// SummaryQuery fetches repository metadata only.
const SummaryQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {` + summarySelection + `
  }
}`

// FileQuery fetches a single blob. $path is a HEAD:<subpath> expression.
const FileQuery = `query($owner: String!, $name: String!, $path: String!) {
  repository(owner: $owner, name: $name) {
    object(expression: $path) {
      ` + blobSelection + `
    }
  }
}`

// BuildTreeFragment returns the selection for one level of tree entries.
// Levels below maxDepth also select the entries of sub-directories, one
// level deeper; the level at maxDepth selects blob metadata only, so the
// remote service stops there.
func BuildTreeFragment(depth, maxDepth int) string {
	if depth >= maxDepth {
		return "name path type object { " + blobSelection + " }"
	}
	return "name path type object { " + blobSelection +
		" ... on Tree { entries { " + BuildTreeFragment(depth+1, maxDepth) + " } } }"
}

// TreeQuery fetches repository metadata plus the default branch tree,
// inlining sub-directory contents maxDepth levels below the root.
func TreeQuery(maxDepth int) string {
	var b strings.Builder
	b.WriteString(`query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {`)
	b.WriteString(summarySelection)
	b.WriteString(`
    defaultBranchRef {
      name
      target {
        ... on Commit {
          tree {
            entries { `)
	b.WriteString(BuildTreeFragment(0, maxDepth))
	b.WriteString(` }
          }
        }
      }
    }
  }
}`)
	return b.String()
}
