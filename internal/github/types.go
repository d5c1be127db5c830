package github

import (
	"errors"
	"time"
)

var (
	ErrInvalidReference   = errors.New("invalid repository reference")
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrNoDefaultBranch    = errors.New("repository has no default branch")
	ErrObjectNotFound     = errors.New("object not found")
	ErrTransport          = errors.New("github transport failure")
)

type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// TreeEntry is a flattened file or directory. Path is always the full
// slash-joined path from the repository root.
type TreeEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Kind     EntryKind `json:"kind"`
	Size     *int64    `json:"size,omitempty"`
	IsBinary *bool     `json:"is_binary,omitempty"`
	Text     *string   `json:"text,omitempty"`

	// Truncated marks a directory whose contents lie beyond the query depth
	// and were never fetched. An empty directory that was fetched is not truncated.
	Truncated bool `json:"truncated,omitempty"`
}

type RepositorySummary struct {
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description,omitempty"`
	PrimaryLanguage string    `json:"primary_language,omitempty"`
	URL             string    `json:"url"`
	SizeKB          int64     `json:"size_kb"`
	StarCount       int       `json:"star_count"`
	IsPrivate       bool      `json:"is_private"`
}

type RepositoryTree struct {
	Repository    RepositorySummary `json:"repository"`
	DefaultBranch string            `json:"default_branch,omitempty"`
	Entries       []TreeEntry       `json:"entries"`
}

type File struct {
	Text     *string `json:"text,omitempty"`
	Path     string  `json:"path"`
	ByteSize int64   `json:"byte_size"`
	IsBinary bool    `json:"is_binary"`
}

// Tree is the unflattened result of a tree query.
type Tree struct {
	Repository    RepositorySummary
	DefaultBranch string
	Entries       []TreeNode
}

// TreeNode is a tree entry as nested in the GraphQL response.
type TreeNode struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	Type   string      `json:"type"` // blob, tree or commit (submodule)
	Object *NodeObject `json:"object"`
}

// NodeObject is the union of the Blob and Tree selections. Entries is nil when
// the response carried no entries field, i.e. the query stopped at this depth.
type NodeObject struct {
	Text     *string     `json:"text"`
	IsBinary *bool       `json:"isBinary"`
	ByteSize *int64      `json:"byteSize"`
	Entries  *[]TreeNode `json:"entries"`
}

func (n TreeNode) IsDirectory() bool {
	return n.Type == "tree"
}
