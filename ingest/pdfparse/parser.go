// Package pdfparse extracts full text, per-page text and citation
// metadata from Indian Supreme Court judgment PDFs.
package pdfparse

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrParse         = errors.New("pdf: unreadable document")
	ErrEmptyDocument = errors.New("pdf: empty document")
)

// Metadata is the citation/title/number fields extracted from page one,
// plus the per-page texts the ingestion pipeline needs to assign page
// numbers to chunks.
type Metadata struct {
	Citation      string
	CaseTitle     string
	CaseNumber    string
	Judges        []string
	PerPageTexts  []string
}

var (
	scrCitationRe  = regexp.MustCompile(`\[(\d{4})\]\s*(\d+)\s*S\.?C\.?R\.?\s*(\d+)`)
	inscCitationRe = regexp.MustCompile(`(\d{4})\s+INSC\s+(\d+)`)
	titleRe        = regexp.MustCompile(`(?i)^(.{1,120}?)\s+(?:v\.|vs\.)\s+(.{1,120})$`)
	caseNumberRe   = regexp.MustCompile(`(?i)(Civil Appeal|Criminal Appeal|Writ Petition|SLP(?:\s*\(C\)|\s*\(Crl\.\))?)\s+No\.?\s*([\w./-]+)\s+of\s+(\d{4})`)
	judgeBracketRe = regexp.MustCompile(`(?i)\[([^\]]+?),?\s*\*?\s*JJ?\.\]`)
	judgeFallbackRe = regexp.MustCompile(`(?i)((?:Hon'ble\s+)?Justice\s+[A-Z][^,;\n]+(?:,\s*(?:Hon'ble\s+)?Justice\s+[A-Z][^,;\n]+)*)`)
	judgeTrailRe    = regexp.MustCompile(`(?i)\s*,?\s*JJ?\.\s*$`)
	judgePrefixRe   = regexp.MustCompile(`(?i)^(Hon'ble\s+|Justice\s+|J\.\s*)+`)
)

// Parse opens the PDF at path and returns its full concatenated text
// plus extracted metadata.
func Parse(path string) (fullText string, meta Metadata, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	var buf bytes.Buffer

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	full := strings.TrimSpace(buf.String())
	if full == "" {
		return "", Metadata{}, ErrEmptyDocument
	}

	meta = Metadata{PerPageTexts: pages}
	firstPage := ""
	if len(pages) > 0 {
		firstPage = pages[0]
	}
	extractCitation(firstPage, &meta)
	extractTitle(firstPage, &meta)
	extractCaseNumber(firstPage, &meta)
	meta.Judges = extractJudges(firstPage)

	return full, meta, nil
}

func extractCitation(page string, meta *Metadata) {
	scr := scrCitationRe.FindStringSubmatch(page)
	insc := inscCitationRe.FindStringSubmatch(page)

	var scrCite, inscCite string
	if scr != nil {
		scrCite = fmt.Sprintf("[%s] %s S.C.R. %s", scr[1], scr[2], scr[3])
	}
	if insc != nil {
		inscCite = fmt.Sprintf("%s INSC %s", insc[1], insc[2])
	}

	switch {
	case scrCite != "" && inscCite != "" && sameLine(page, scr[0], insc[0]):
		meta.Citation = scrCite + ":" + inscCite
	case scrCite != "":
		meta.Citation = scrCite
	case inscCite != "":
		meta.Citation = inscCite
	}
}

// sameLine reports whether two substrings of page occur on the same
// line, the join condition required before combining an S.C.R.
// citation with an INSC citation.
func sameLine(page, a, b string) bool {
	for _, line := range strings.Split(page, "\n") {
		if strings.Contains(line, a) && strings.Contains(line, b) {
			return true
		}
	}
	return false
}

func extractTitle(page string, meta *Metadata) {
	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := titleRe.FindStringSubmatch(line); m != nil {
			meta.CaseTitle = strings.TrimSpace(line)
			return
		}
	}
}

func extractCaseNumber(page string, meta *Metadata) {
	if m := caseNumberRe.FindStringSubmatch(page); m != nil {
		meta.CaseNumber = fmt.Sprintf("%s No. %s of %s", m[1], m[2], m[3])
	}
}

// extractJudges looks for a bracketed bench listing like
// "[Smith* and Rao, JJ.]", which may wrap across lines so the page is
// joined on spaces before that search. Failing that it falls back to a
// "Justice ..." run, searched line by line so the match ends at the
// line break instead of running into the judgment body that follows.
func extractJudges(page string) []string {
	joined := strings.Join(strings.Fields(page), " ")

	var span string
	if m := judgeBracketRe.FindStringSubmatch(joined); m != nil {
		span = m[1]
	} else if found := findJudgeFallbackLine(page); found != "" {
		span = found
	} else {
		return nil
	}

	span = judgeTrailRe.ReplaceAllString(span, "")

	var names []string
	for _, part := range strings.Split(span, ",") {
		for _, name := range splitAnd(part) {
			name = strings.TrimSpace(name)
			name = judgePrefixRe.ReplaceAllString(name, "")
			name = strings.Trim(name, "* ")
			if isJudgeName(name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// findJudgeFallbackLine runs judgeFallbackRe against each line of the
// page independently, so a line break (rather than the regex's own
// lookahead) bounds how far a matched name run can extend.
func findJudgeFallbackLine(page string) string {
	for _, line := range strings.Split(page, "\n") {
		if m := judgeFallbackRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

func splitAnd(s string) []string {
	lower := strings.ToLower(s)
	if idx := strings.Index(lower, " and "); idx != -1 {
		return []string{s[:idx], s[idx+len(" and "):]}
	}
	return []string{s}
}

var judgeSuffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true}

func isJudgeName(name string) bool {
	if len(name) <= 2 {
		return false
	}
	return !judgeSuffixes[strings.ToLower(name)]
}
