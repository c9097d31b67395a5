// Package redact detects six PII kinds and replaces them with stable,
// hash-derived placeholders.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type Kind string

const (
	KindPersonName   Kind = "PERSON_NAME"
	KindPhone        Kind = "PHONE"
	KindEmail        Kind = "EMAIL"
	KindAadhaar      Kind = "AADHAAR"
	KindPAN          Kind = "PAN"
	KindBankAccount  Kind = "BANK_ACCOUNT"
)

// DefaultConfidenceThreshold is the minimum confidence for a detection
// to be emitted.
const DefaultConfidenceThreshold = 0.7

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe   = regexp.MustCompile(`(?:\+91[-\s]?)?[6-9]\d{9}\b`)
	aadhaarRe = regexp.MustCompile(`\b\d{4}-?\d{4}-?\d{4}\b`)
	panRe     = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)
	bankRe    = regexp.MustCompile(`\b\d{9,18}\b`)
	// personNameRe matches 2-4 title-cased words in a row, the shape of
	// "John Doe" or "Amit Kumar Sharma".
	personNameRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)
)

// denylist holds phrases and structural headers that must never be
// redacted even if they match a PII shape.
var denylist = buildDenylist()

func buildDenylist() map[string]bool {
	phrases := []string{
		"Supreme Court", "High Court", "State of", "Union of", "Government of",
		"Ministry of", "Petitioner", "Respondent", "Appellant", "v.", "vs.",
		"Limited", "Ltd", "Pvt Ltd", "Corporation", "Platform", "Social Media",
		"Bank", "Insurance", "Trust", "Society",
		"Facts", "Arguments", "Issues", "Legal Issues", "Background",
		"Judgment", "Order", "Relief", "Case:",
	}
	m := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		m[strings.ToLower(p)] = true
	}
	return m
}

// Detection records one redacted PII instance.
type Detection struct {
	Kind          Kind
	OriginalHash  string
	Ordinal       int
	Start, End    int
	Confidence    float64
	Placeholder   string
}

// Result is the {redacted_text, detections[], confidence} output.
type Result struct {
	RedactedText string
	Detections   []Detection
	Confidence   float64
}

type candidate struct {
	kind       Kind
	start, end int
	text       string
	confidence float64
}

// Redact detects and replaces PII in text, using threshold as the
// minimum confidence for emission (default 0.7).
func Redact(text string, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	candidates := collectCandidates(text)
	candidates = dropOverlaps(candidates)
	candidates = filterFalsePositives(text, candidates)

	var accepted []candidate
	for _, c := range candidates {
		if c.confidence >= threshold {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	placeholderFor := make(map[string]string) // kind|text -> placeholder
	ordinalByKind := make(map[Kind]int)

	var detections []Detection
	var b strings.Builder
	cursor := 0

	for _, c := range accepted {
		mapKey := string(c.kind) + "|" + c.text
		placeholder, seen := placeholderFor[mapKey]
		if !seen {
			ordinalByKind[c.kind]++
			placeholder = fmt.Sprintf("[%s_%d_%s]", c.kind, ordinalByKind[c.kind], hashPrefix(c.text))
			placeholderFor[mapKey] = placeholder
		}

		b.WriteString(text[cursor:c.start])
		b.WriteString(placeholder)
		cursor = c.end

		detections = append(detections, Detection{
			Kind:         c.kind,
			OriginalHash: hashPrefix(c.text),
			Ordinal:      ordinalByKind[c.kind],
			Start:        c.start,
			End:          c.end,
			Confidence:   c.confidence,
			Placeholder:  placeholder,
		})
	}
	b.WriteString(text[cursor:])

	overallConfidence := 1.0
	if len(detections) > 0 {
		overallConfidence = minConfidence(detections)
	}

	return Result{
		RedactedText: b.String(),
		Detections:   detections,
		Confidence:   overallConfidence,
	}
}

func collectCandidates(text string) []candidate {
	var out []candidate

	add := func(kind Kind, loc []int, confidence float64) {
		out = append(out, candidate{kind: kind, start: loc[0], end: loc[1], text: text[loc[0]:loc[1]], confidence: confidence})
	}

	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		add(KindEmail, loc, 0.95)
	}
	for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
		add(KindPhone, loc, 0.9)
	}
	for _, loc := range aadhaarRe.FindAllStringIndex(text, -1) {
		add(KindAadhaar, loc, 0.85)
	}
	for _, loc := range panRe.FindAllStringIndex(text, -1) {
		add(KindPAN, loc, 0.95)
	}
	for _, loc := range bankRe.FindAllStringIndex(text, -1) {
		add(KindBankAccount, loc, 0.75)
	}
	for _, loc := range personNameRe.FindAllStringIndex(text, -1) {
		add(KindPersonName, loc, 0.7)
	}

	return out
}

// dropOverlaps keeps, among overlapping candidates, the one with the
// highest confidence (ties broken by earlier start), so e.g. an Aadhaar
// match wins over a bank-account match on the same digit run.
func dropOverlaps(candidates []candidate) []candidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].start < candidates[j].start
	})

	var kept []candidate
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.start < k.end && k.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

// filterFalsePositives drops candidates whose text (or immediate
// context window) matches the closed denylist of legal/organizational
// phrases, structural headers, or all-caps tokens of length > 2.
func filterFalsePositives(text string, candidates []candidate) []candidate {
	var out []candidate
	for _, c := range candidates {
		if isAllCapsToken(c.text) {
			continue
		}

		windowStart := max(0, c.start-20)
		windowEnd := min(len(text), c.end+20)
		window := strings.ToLower(text[windowStart:windowEnd])

		denied := false
		for phrase := range denylist {
			if strings.Contains(window, phrase) {
				denied = true
				break
			}
		}
		if denied {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isAllCapsToken(s string) bool {
	if len(s) <= 2 {
		return false
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return strings.ToUpper(s) == s
}

func hashPrefix(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

func minConfidence(detections []Detection) float64 {
	min := 1.0
	hasFake := false
	for _, d := range detections {
		hasFake = true
		if d.Confidence < min {
			min = d.Confidence
		}
	}
	if !hasFake {
		return 1.0
	}
	return min
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
