// Package chunker splits a judgment's full text into semantically
// coherent, size-bounded units keyed by section header.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the hard size limit a chunk body may not
// exceed unless no smaller split point exists.
const DefaultMaxChunkSize = 2000

// closed set of recognized legal section headers, matched at the start
// of a line, case-insensitively.
var headerNames = []string{
	"Issue for Consideration",
	"Headnotes",
	"Held",
	"Facts",
	"Analysis",
	"Reasoning",
	"Judgment",
	"Order",
	"Keywords",
}

var headerRe = buildHeaderRe()

func buildHeaderRe() *regexp.Regexp {
	escaped := make([]string, len(headerNames))
	for i, h := range headerNames {
		escaped[i] = regexp.QuoteMeta(h)
	}
	pattern := `(?im)^\s*(` + strings.Join(escaped, "|") + `)\s*:?\s*$`
	return regexp.MustCompile(pattern)
}

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+`)

// Chunk is an ordered (section_header, chunk_body) pair.
type Chunk struct {
	Section string
	Text    string
}

// Split produces an ordered sequence of Chunks such that concatenating
// their bodies in order recovers text up to whitespace, each no longer
// than maxSize. maxSize <= 0 uses DefaultMaxChunkSize.
func Split(text string, maxSize int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	sections := splitByHeader(text)
	var out []Chunk
	for _, s := range sections {
		for _, piece := range subdivide(s.Text, maxSize) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			out = append(out, Chunk{Section: s.Section, Text: piece})
		}
	}
	return out
}

type rawSection struct {
	Section string
	Text    string
}

// splitByHeader partitions text at recognized header lines; a header
// match owns the subsequent text until the next header. Text preceding
// the first recognized header (or all text, if none is recognized)
// becomes the implicit "Body" section.
func splitByHeader(text string) []rawSection {
	matches := headerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []rawSection{{Section: "Body", Text: text}}
	}

	var sections []rawSection
	if matches[0][0] > 0 {
		preamble := text[:matches[0][0]]
		if strings.TrimSpace(preamble) != "" {
			sections = append(sections, rawSection{Section: "Body", Text: preamble})
		}
	}

	for i, m := range matches {
		headerStart, headerEnd := m[2], m[3]
		header := strings.TrimSpace(text[headerStart:headerEnd])
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		sections = append(sections, rawSection{Section: header, Text: text[bodyStart:bodyEnd]})
	}
	return sections
}

// subdivide breaks a section's text into pieces no longer than maxSize,
// preferring paragraph boundaries, then sentence boundaries, then a hard
// cut at maxSize.
func subdivide(text string, maxSize int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")
	var pieces []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		if len(p) > maxSize {
			flush()
			pieces = append(pieces, splitOversizeParagraph(p, maxSize)...)
			continue
		}
		if current.Len()+len(p)+2 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return pieces
}

// splitOversizeParagraph handles a single paragraph exceeding maxSize:
// split at the nearest sentence boundary, falling back to a hard cut.
func splitOversizeParagraph(p string, maxSize int) []string {
	var out []string
	remaining := p
	for len(remaining) > maxSize {
		cut := lastSentenceBoundaryBefore(remaining, maxSize)
		if cut <= 0 {
			cut = maxSize
		}
		out = append(out, remaining[:cut])
		remaining = remaining[cut:]
	}
	if remaining != "" {
		out = append(out, remaining)
	}
	return out
}

func lastSentenceBoundaryBefore(text string, limit int) int {
	if limit > len(text) {
		limit = len(text)
	}
	window := text[:limit]
	locs := sentenceBoundaryRe.FindAllStringIndex(window, -1)
	if len(locs) == 0 {
		return 0
	}
	last := locs[len(locs)-1]
	return last[1]
}
