package retrieval

import (
	"fmt"
	"strings"
	"time"

	"basegraph.app/scout/internal/github"
)

func RenderSummary(s github.RepositorySummary) string {
	return strings.Join(summaryLines(s), "\n")
}

// RenderTree renders the summary header followed by one line per entry.
func RenderTree(t github.RepositoryTree) string {
	lines := summaryLines(t.Repository)
	lines = append(lines, "", "Contents:")
	for _, e := range t.Entries {
		lines = append(lines, entryLine(e))
	}
	return strings.Join(lines, "\n")
}

func RenderFile(f github.File) string {
	if f.IsBinary {
		return fmt.Sprintf("Binary file (%d bytes)", f.ByteSize)
	}
	if f.Text == nil || *f.Text == "" {
		return "Empty file"
	}
	return *f.Text
}

func summaryLines(s github.RepositorySummary) []string {
	description := s.Description
	if description == "" {
		description = "No description"
	}
	language := s.PrimaryLanguage
	if language == "" {
		language = "None"
	}
	return []string{
		"Repository: " + s.FullName,
		"Description: " + description,
		fmt.Sprintf("Size: %.1fMB", float64(s.SizeKB)/1024),
		fmt.Sprintf("Stars: %d", s.StarCount),
		"Language: " + language,
		"Created: " + formatTime(s.CreatedAt),
		"Last Updated: " + formatTime(s.UpdatedAt),
	}
}

func entryLine(e github.TreeEntry) string {
	if e.Kind == github.KindDirectory {
		if e.Truncated {
			return "📁 " + e.Path + " (not expanded)"
		}
		return "📁 " + e.Path
	}
	if e.Size != nil {
		return fmt.Sprintf("📄 %s (%d bytes)", e.Path, *e.Size)
	}
	return "📄 " + e.Path
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
