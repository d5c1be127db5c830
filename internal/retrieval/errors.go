package retrieval

import (
	"errors"
	"fmt"

	"basegraph.app/scout/internal/github"
)

type ErrorKind string

const (
	KindInvalidReference   ErrorKind = "invalid_reference"
	KindRepositoryNotFound ErrorKind = "repository_not_found"
	KindPathNotFound       ErrorKind = "path_not_found"
	KindNoDefaultBranch    ErrorKind = "no_default_branch"
	KindTransportFailure   ErrorKind = "transport_failure"
	KindRateLimited        ErrorKind = "rate_limited"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrInvalidReference   = errors.New("invalid repository reference")
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrPathNotFound       = errors.New("path not found")
	ErrNoDefaultBranch    = errors.New("repository has no default branch")
	ErrTransportFailure   = errors.New("transport failure")
	ErrRateLimited        = errors.New("rate limited")
)

var sentinels = map[ErrorKind]error{
	KindInvalidReference:   ErrInvalidReference,
	KindRepositoryNotFound: ErrRepositoryNotFound,
	KindPathNotFound:       ErrPathNotFound,
	KindNoDefaultBranch:    ErrNoDefaultBranch,
	KindTransportFailure:   ErrTransportFailure,
	KindRateLimited:        ErrRateLimited,
}

// Error is the terminal failure of one retrieval. None are retried here;
// the fields let the caller decide whether to retry, ask the user, or show
// Error() verbatim.
type Error struct {
	Err     error
	Kind    ErrorKind
	Locator string
	Path    string
	Detail  string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of a retrieval error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ""
}

func rateLimited() *Error {
	return &Error{
		Kind:   KindRateLimited,
		Detail: "Rate limit exceeded, try again later",
	}
}

func invalidReference(locator string, err error) *Error {
	detail := "Invalid GitHub URL format"
	if locator == "" {
		detail = "No repository URL given and none found in the conversation"
	}
	return &Error{
		Kind:    KindInvalidReference,
		Locator: locator,
		Detail:  detail,
		Err:     err,
	}
}

func pathNotFound(locator string, ref github.Reference, err error) *Error {
	return &Error{
		Kind:    KindPathNotFound,
		Locator: locator,
		Path:    ref.Subpath,
		Detail:  fmt.Sprintf("Path '%s' not found in repository", ref.Subpath),
		Err:     err,
	}
}

// classify maps a transport error onto the retrieval taxonomy.
func classify(locator string, ref github.Reference, err error) *Error {
	switch {
	case errors.Is(err, github.ErrRepositoryNotFound):
		return &Error{
			Kind:    KindRepositoryNotFound,
			Locator: locator,
			Detail:  fmt.Sprintf("Repository %s not found", ref.FullName()),
			Err:     err,
		}
	case errors.Is(err, github.ErrNoDefaultBranch):
		return &Error{
			Kind:    KindNoDefaultBranch,
			Locator: locator,
			Detail:  "Repository has no default branch",
			Err:     err,
		}
	case errors.Is(err, github.ErrObjectNotFound):
		e := pathNotFound(locator, ref, err)
		e.Detail = fmt.Sprintf("File '%s' not found", ref.Subpath)
		return e
	case errors.Is(err, github.ErrInvalidReference):
		return &Error{
			Kind:    KindInvalidReference,
			Locator: locator,
			Path:    ref.Subpath,
			Detail:  "No file path specified",
			Err:     err,
		}
	default:
		return &Error{
			Kind:    KindTransportFailure,
			Locator: locator,
			Path:    ref.Subpath,
			Detail:  err.Error(),
			Err:     err,
		}
	}
}
