package adamsdoc

import (
	"fmt"
	"strings"
)

// FormatCitation renders chunk provenance as
// "[ID] Page N of M - Section (Lines a-b)", omitting absent parts.
func FormatCitation(m ChunkMetadata) string {
	var parts []string

	if m.DocumentID != "" {
		parts = append(parts, "["+m.DocumentID+"]")
	}
	if m.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("Page %d", m.PageNumber))
		if m.TotalPages > 0 {
			parts = append(parts, fmt.Sprintf("of %d", m.TotalPages))
		}
	}
	if m.Section != "" {
		parts = append(parts, "- "+m.Section)
	}
	if m.StartLine > 0 {
		parts = append(parts, fmt.Sprintf("(Lines %d-%d)", m.StartLine, m.EndLine))
	}

	if len(parts) == 0 {
		return "[No citation info]"
	}
	return strings.Join(parts, " ")
}

// FormatResults formats search results for display or LLM context.
// Each result is headed by its citation; results are separated by blank lines.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		citation := r.Citation
		if citation == "" && r.Chunk != nil {
			citation = FormatCitation(r.Chunk.Metadata)
		}
		text := ""
		if r.Chunk != nil {
			text = strings.TrimSpace(r.Chunk.Text)
		}
		parts = append(parts, "## Source: "+citation+"\n"+text)
	}

	return strings.Join(parts, "\n\n")
}
