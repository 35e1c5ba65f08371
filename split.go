package adamsdoc

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default target chunk length in characters.
const DefaultChunkSize = 500

// DefaultLinesPerPage is the page length assumed when the page count is unknown.
const DefaultLinesPerPage = 60

// PageSpan is a piece of text together with the page and lines it came from.
type PageSpan struct {
	Text       string
	PageNumber int
	StartLine  int // 1-based
	EndLine    int // 1-based, inclusive
}

var (
	labeledPageRe = regexp.MustCompile(`(?i)^\s*page\s*(\d+)(?:\s*of\s*\d+)?\s*$`)
	numericPageRe = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// SplitWithPages splits text line by line into spans of roughly chunkSize
// characters, tracking the page each span belongs to.
//
// Pages advance on explicit markers ("Page 3", "PAGE 3 of 10", or a bare
// number equal to the next page) or, lacking markers, every
// ceil(lines/totalPages) lines. A span never crosses a page advance. Page
// numbers never decrease and never exceed totalPages when it is positive.
// Concatenating the spans reproduces text up to whitespace.
func SplitWithPages(text string, totalPages, chunkSize int) []PageSpan {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	lines := strings.Split(text, "\n")

	n := len(lines)
	if lines[n-1] == "" {
		n-- // trailing newline
	}
	linesPerPage := DefaultLinesPerPage
	if totalPages > 0 {
		linesPerPage = (n + totalPages - 1) / totalPages
	}

	s := &splitter{page: 1}
	for i, line := range lines {
		lineNo := i + 1

		if page, ok := pageMarker(line, s.page, totalPages); ok {
			s.flush(lineNo - 1)
			s.page = page
			s.pageLines = 0
		} else if s.pageLines >= linesPerPage && (totalPages <= 0 || s.page < totalPages) {
			s.flush(lineNo - 1)
			s.page++
			s.pageLines = 0
		}
		s.pageLines++

		segments := splitLongLine(line, chunkSize)
		for j, seg := range segments {
			s.write(seg, lineNo)
			if j == len(segments)-1 && i < len(lines)-1 {
				s.write("\n", lineNo)
			}
			if s.buf.Len() >= chunkSize {
				s.flush(lineNo)
			}
		}
	}
	s.flush(len(lines))

	return s.spans
}

type splitter struct {
	spans     []PageSpan
	buf       strings.Builder
	hasText   bool // buf holds more than whitespace
	page      int
	pageLines int
	startLine int
}

// write appends text to the buffer. A span starts at its first
// non-whitespace line, so blank lines carried over a page advance do not
// pull its line range back onto the previous page.
func (s *splitter) write(text string, lineNo int) {
	if text == "" {
		return
	}
	blank := strings.TrimSpace(text) == ""
	if s.buf.Len() == 0 || (!s.hasText && !blank) {
		s.startLine = lineNo
	}
	if !blank {
		s.hasText = true
	}
	s.buf.WriteString(text)
}

// flush emits the buffer as a span ending at endLine. Whitespace-only
// buffers are carried into the next span so no characters are lost.
func (s *splitter) flush(endLine int) {
	if !s.hasText {
		return
	}
	s.spans = append(s.spans, PageSpan{
		Text:       s.buf.String(),
		PageNumber: s.page,
		StartLine:  s.startLine,
		EndLine:    max(endLine, s.startLine),
	})
	s.buf.Reset()
	s.hasText = false
}

// pageMarker reports whether line is a page marker that moves past current.
func pageMarker(line string, current, totalPages int) (int, bool) {
	var page int
	if m := labeledPageRe.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= current {
			return 0, false
		}
		page = n
	} else if m := numericPageRe.FindStringSubmatch(line); m != nil {
		// Bare numbers are often values, not footers: accept only the next page.
		n, err := strconv.Atoi(m[1])
		if err != nil || n != current+1 {
			return 0, false
		}
		page = n
	} else {
		return 0, false
	}
	if totalPages > 0 && page > totalPages {
		return 0, false
	}
	return page, true
}

// splitLongLine cuts a line longer than size into pieces, preferring to cut
// after a space. Joining the pieces yields the original line.
func splitLongLine(line string, size int) []string {
	if len(line) <= size {
		return []string{line}
	}
	var parts []string
	for len(line) > size {
		cut := strings.LastIndexByte(line[:size], ' ') + 1
		if cut < max(1, size/2) {
			cut = size
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				// size is smaller than the first rune.
				_, cut = utf8.DecodeRuneInString(line)
			}
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if line != "" {
		parts = append(parts, line)
	}
	return parts
}
