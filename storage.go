package adamsdoc

import (
	"regexp"
	"strings"
	"time"
)

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	unsafeCharsRe = regexp.MustCompile(`[^a-z0-9_\-]`)
	underscoresRe = regexp.MustCompile(`_{2,}`)
)

// DefaultGroup is the folder name used when a grouping hint is unusable.
const DefaultGroup = "general"

// SanitizeGroupingHint converts a free-text hint (usually the search query)
// into a filesystem-safe folder name of at most 50 characters.
func SanitizeGroupingHint(hint string) string {
	name := strings.ToLower(strings.TrimSpace(hint))
	name = spaceRe.ReplaceAllString(name, "_")
	name = unsafeCharsRe.ReplaceAllString(name, "")
	name = underscoresRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if len(name) < 3 {
		name = DefaultGroup
	}
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

// GroupFolder returns the download folder name for a hint on the given day,
// e.g. "inspection_report_2024-03-01".
func GroupFolder(hint string, now time.Time) string {
	return SanitizeGroupingHint(hint) + "_" + now.Format("2006-01-02")
}

// EstimatePages estimates a page count from text length, assuming five
// characters per word and 250 words per page.
func EstimatePages(text string) int {
	const charsPerPage = 5 * 250
	return max(1, (len(text)+charsPerPage-1)/charsPerPage)
}
