package github

import "strings"

// Flatten converts nested tree nodes into a flat list. Each entry's Path is
// rebuilt from basePath and its ancestors' names. Children are emitted before
// their parent directory, in source order. Nothing beyond what the response
// carried is produced.
func Flatten(nodes []TreeNode, basePath string) []TreeEntry {
	var out []TreeEntry
	for _, node := range nodes {
		out = appendFlattened(out, node, basePath)
	}
	return out
}

func appendFlattened(out []TreeEntry, node TreeNode, basePath string) []TreeEntry {
	path := node.Name
	if basePath != "" {
		path = basePath + "/" + node.Name
	}

	entry := TreeEntry{
		Name: node.Name,
		Path: path,
		Kind: KindFile,
	}

	if node.IsDirectory() {
		entry.Kind = KindDirectory
		if node.Object == nil || node.Object.Entries == nil {
			entry.Truncated = true
		} else {
			for _, child := range *node.Object.Entries {
				out = appendFlattened(out, child, path)
			}
		}
	} else if node.Object != nil {
		entry.Size = node.Object.ByteSize
		entry.IsBinary = node.Object.IsBinary
		entry.Text = node.Object.Text
	}

	return append(out, entry)
}

// FilterBySubpath keeps entries at or below subpath. Matching is on whole
// path segments, so "src" matches "src/main.go" but not "srcs/x".
func FilterBySubpath(entries []TreeEntry, subpath string) []TreeEntry {
	subpath = strings.Trim(subpath, "/")
	if subpath == "" {
		return entries
	}

	prefix := subpath + "/"
	filtered := make([]TreeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Path == subpath || strings.HasPrefix(e.Path, prefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
