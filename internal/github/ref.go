package github

import (
	"fmt"
	"net/url"
	"strings"
)

// Reference identifies a repository and an optional path inside it.
type Reference struct {
	Owner   string
	Name    string
	Subpath string // slash-joined, no leading or trailing slash; empty for the repository root
}

// ParseReference turns a locator such as
// https://github.com/acme/widgets/tree/main/src into a Reference.
// Accepted forms:
//
//	https://host/<owner>/<name>[.git][/(tree|blob)/<branch>/<subpath...>]
//	host/<owner>/<name>[...]
//	git@host:<owner>/<name>.git
//	<owner>/<name>[/<subpath...>]
//
// The branch segment after tree/blob is discarded; lookups always address HEAD.
func ParseReference(locator string) (Reference, error) {
	s := strings.TrimSpace(locator)
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".git")

	segments := splitSegments(pathOf(s))
	if len(segments) < 2 {
		return Reference{}, fmt.Errorf("%w: %q does not name an owner and repository", ErrInvalidReference, locator)
	}

	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")
	if name == "" {
		return Reference{}, fmt.Errorf("%w: %q does not name an owner and repository", ErrInvalidReference, locator)
	}

	rest := segments[2:]
	if len(rest) > 0 && (rest[0] == "tree" || rest[0] == "blob") {
		if len(rest) >= 2 {
			rest = rest[2:]
		} else {
			rest = nil
		}
	}

	return Reference{
		Owner:   owner,
		Name:    name,
		Subpath: strings.Join(rest, "/"),
	}, nil
}

// pathOf strips scheme, host, query and fragment, leaving the slash-separated path.
func pathOf(s string) string {
	if strings.HasPrefix(s, "git@") {
		if i := strings.Index(s, ":"); i >= 0 {
			return s[i+1:]
		}
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return s
		}
		return u.Path
	}

	// bare host form: github.com/acme/widgets
	if i := strings.Index(s, "/"); i > 0 && strings.Contains(s[:i], ".") {
		return s[i+1:]
	}
	return s
}

func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// FullName returns "owner/name".
func (r Reference) FullName() string {
	return r.Owner + "/" + r.Name
}

// URL returns the canonical repository URL without any subpath.
func (r Reference) URL() string {
	return "https://github.com/" + r.FullName()
}

// Expression returns the git object expression used to address Subpath at HEAD.
func (r Reference) Expression() string {
	return "HEAD:" + r.Subpath
}

func (r Reference) String() string {
	if r.Subpath == "" {
		return r.FullName()
	}
	return r.FullName() + "/" + r.Subpath
}
