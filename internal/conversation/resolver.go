package conversation

import "basegraph.app/scout/internal/model"

// ResolveRepositoryURL returns the repository most recently referenced in a
// session. turns are ordered oldest first; the scan runs newest to oldest
// and stops at the first turn whose metadata names a repository.
func ResolveRepositoryURL(turns []model.Turn) (string, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		meta := turns[i].Metadata
		if meta != nil && meta.RepositoryURL != "" {
			return meta.RepositoryURL, true
		}
	}
	return "", false
}
