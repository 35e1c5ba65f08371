// Package goquery parses registry search result pages with PuerkitoBio/goquery.
package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adamsdoc"
)

// MaxTitleLength is the number of characters kept from a result title.
const MaxTitleLength = 200

// IdentifierPatterns match document identifiers in rendered result rows.
var IdentifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ML\d{8,}`),          // ML accession numbers
	regexp.MustCompile(`ML\d{5}[A-Z]\d{3}`), // ML accession numbers with a letter
	regexp.MustCompile(`SECY-\d{2}-\d{4}`),  // Commission papers
	regexp.MustCompile(`NUREG-\d{4}`),       // NUREG reports
	regexp.MustCompile(`\d{10}`),            // legacy numeric accession numbers
}

// Labels the results grid renders inside cells for narrow layouts.
var cellLabels = []string{"Accession #", "Document Title", "Date Added", "Doc Date"}

// HasResults reports whether any table row in html contains a document
// identifier. It is used to poll a page until results have rendered.
func HasResults(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	found := false
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := row.Text()
		for _, re := range IdentifierPatterns {
			if re.MatchString(text) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// ParseResults extracts descriptors from a rendered results table.
//
// A row yields a descriptor when it has at least three cells and the third
// cell holds a hyperlink whose text is an identifier of at least eight
// characters. The fourth cell is the title and the fifth (or sixth) the date.
// Descriptors are deduplicated by identifier, keeping the first occurrence.
func ParseResults(html string) ([]*adamsdoc.Descriptor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var docs []*adamsdoc.Descriptor

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		link := cells.Eq(2).Find("a").First()
		if link.Length() == 0 {
			return
		}

		id := stripLabels(link.Text())
		if len(id) < 8 || seen[id] {
			return
		}
		seen[id] = true

		title := truncate(stripLabels(cellText(cells, 3)), MaxTitleLength)
		if title == "" {
			title = id + " - NRC Document"
		}

		date := stripLabels(cellText(cells, 4))
		if date == "" {
			date = stripLabels(cellText(cells, 5))
		}

		docs = append(docs, &adamsdoc.Descriptor{
			ID:           id,
			Title:        title,
			DateAdded:    date,
			DocumentDate: date,
			SourceURL:    adamsdoc.SourceURL(id),
		})
	})

	return docs, nil
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return cells.Eq(i).Text()
}

func stripLabels(s string) string {
	s = strings.TrimSpace(s)
	for _, label := range cellLabels {
		s = strings.Replace(s, label, "", 1)
	}
	return strings.TrimSpace(s)
}

// truncate shortens s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
