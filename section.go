package adamsdoc

import (
	"regexp"
	"strings"
)

// sectionPatterns are tried in order; the first match names the section.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^(?:\d+(?:\.\d+)*\.?[ \t]+)?([A-Z][A-Z \t]+)\r?$`), // 1. INTRODUCTION
	regexp.MustCompile(`(?mi)^section[ \t]+(.+)$`),                             // Section 2.1
	regexp.MustCompile(`(?mi)^chapter[ \t]+(.+)$`),                             // Chapter 3
	regexp.MustCompile(`(?mi)^part[ \t]+(.+)$`),                                // Part IV
	regexp.MustCompile(`(?m)^([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){0,5}):\r?$`),    // Executive Summary:
}

// DetectSection returns a best-effort section heading found in text,
// or an empty string if none of the heading patterns match.
func DetectSection(text string) string {
	for _, re := range sectionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				return title
			}
		}
	}
	return ""
}
