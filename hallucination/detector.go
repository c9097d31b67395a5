// Package hallucination extracts legal references from LLM output and
// validates them against static statute tables or the vector index via
// the Retriever.
package hallucination

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"legalresearch-engine/models"
	"legalresearch-engine/security"
)

var (
	statuteRe = regexp.MustCompile(`(?i)(?:Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(IPC|CrPC|CPC|IT Act|Evidence Act)|(IPC|CrPC|CPC|IT Act|Evidence Act)\s+Section\s+(\d+[A-Z]?)|s\.\s*(\d+[A-Z]?)\s+(IPC|CrPC|CPC|IT Act|Evidence Act))`)
	articleRe = regexp.MustCompile(`(?i)Article\s+(\d+[A-Z]?)(?:\s+of\s+(?:the\s+)?Constitution)?`)
	caseRe    = regexp.MustCompile(`\[(\d{4})\]\s*(\d+)\s*S\.?C\.?R\.?\s*(\d+)|(\d{4})\s+INSC\s+(\d+)|(\d{4})\s+SCC\s+(\d+)`)
)

// validRange gives, per statute code, the contiguous range and the set
// of additionally valid sections.
type validRange struct {
	lo, hi int
	extra  map[string]bool
}

var statuteRanges = map[string]validRange{
	"IPC":           {lo: 1, hi: 511, extra: set("498A", "376A", "376B", "376C", "376D")},
	"CrPC":          {lo: 1, hi: 484},
	"CPC":           {lo: 1, hi: 158},
	"IT Act":        {lo: 1, hi: 87, extra: set("66A", "66B", "66C", "66D", "66E", "66F")},
	"Evidence Act":  {lo: 1, hi: 167},
}

var constitutionRange = validRange{lo: 1, hi: 395, extra: set("12A", "21A", "35A", "51A", "371A", "371B")}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

func (r validRange) valid(section string) bool {
	if r.extra != nil && r.extra[strings.ToUpper(section)] {
		return true
	}
	n, err := strconv.Atoi(section)
	if err != nil {
		return false
	}
	return n >= r.lo && n <= r.hi
}

// CitationChecker is the capability needed to validate case citations
// against the corpus, satisfied by retrieve.Retriever.
type CitationChecker interface {
	Retrieve(ctx context.Context, queryText string, k int) ([]models.RetrievalHit, error)
}

// Detector extracts and validates references from LLM output.
type Detector struct {
	retriever CitationChecker
	log       *security.LogWriter
}

func New(retriever CitationChecker, log *security.LogWriter) *Detector {
	return &Detector{retriever: retriever, log: log}
}

// Report is the aggregate result of a Detect call.
type Report struct {
	HasHallucinations bool
	NumReferences     int
	NumSuspected      int
	References        []models.Reference
	SuspectedFakeRefs []models.Reference
	ConfidenceScore   float64
	Summary           string
}

// Detect extracts references from output and validates each, writing
// one audit record for the call regardless of outcome. It never returns
// an error: detection degrades to ValidityUnknown rather than failing
// the request it's checking.
func (d *Detector) Detect(ctx context.Context, userID, inputQuery, output string) Report {
	refs := extractReferences(output)

	for i := range refs {
		validateReference(ctx, d.retriever, &refs[i])
	}

	var suspected []models.Reference
	for _, r := range refs {
		if r.IsFake() {
			suspected = append(suspected, r)
		}
	}

	confidence := 1.0
	if len(suspected) > 0 {
		confidence = 0.0
		for _, r := range suspected {
			if r.Confidence > confidence {
				confidence = r.Confidence
			}
		}
	}

	report := Report{
		HasHallucinations: len(suspected) > 0,
		NumReferences:     len(refs),
		NumSuspected:       len(suspected),
		References:        refs,
		SuspectedFakeRefs:  suspected,
		ConfidenceScore:    confidence,
		Summary:            summarize(len(refs), len(suspected)),
	}

	if d.log != nil {
		_ = d.log.Append(auditRecord(userID, inputQuery, output, report))
	}

	return report
}

func summarize(numRefs, numSuspected int) string {
	if numSuspected == 0 {
		return fmt.Sprintf("%d reference(s) checked, none suspected fake", numRefs)
	}
	return fmt.Sprintf("%d of %d reference(s) suspected fake", numSuspected, numRefs)
}

type hallucinationAuditRecord struct {
	Timestamp               time.Time               `json:"timestamp"`
	UserID                  string                   `json:"user_id"`
	SuspectedHallucination  bool                     `json:"suspected_hallucination"`
	InputQuery              string                   `json:"input_query"`
	OutputText              string                   `json:"output_text"`
	SuspectedFakeRefs       []models.Reference       `json:"suspected_fake_refs"`
	ConfidenceScore         float64                  `json:"confidence_score"`
	NumSuspected            int                      `json:"num_suspected"`
}

func auditRecord(userID, inputQuery, output string, report Report) hallucinationAuditRecord {
	truncated := output
	if len(truncated) > 500 {
		truncated = truncated[:500]
	}
	return hallucinationAuditRecord{
		Timestamp:              time.Now(),
		UserID:                 userID,
		SuspectedHallucination: report.HasHallucinations,
		InputQuery:             inputQuery,
		OutputText:             truncated,
		SuspectedFakeRefs:      report.SuspectedFakeRefs,
		ConfidenceScore:        report.ConfidenceScore,
		NumSuspected:           report.NumSuspected,
	}
}

func extractReferences(output string) []models.Reference {
	var refs []models.Reference

	for _, m := range statuteRe.FindAllStringSubmatch(output, -1) {
		section, code := sectionAndCode(m)
		if section == "" || code == "" {
			continue
		}
		refs = append(refs, models.Reference{
			Type:        models.ReferenceStatute,
			RawText:     m[0],
			Key:         section,
			MatchedCode: code,
		})
	}

	for _, m := range articleRe.FindAllStringSubmatch(output, -1) {
		refs = append(refs, models.Reference{
			Type:        models.ReferenceArticle,
			RawText:     m[0],
			Key:         m[1],
			MatchedCode: "Constitution",
		})
	}

	for _, m := range caseRe.FindAllStringSubmatch(output, -1) {
		refs = append(refs, models.Reference{
			Type:    models.ReferenceCase,
			RawText: m[0],
			Key:     normalizeCitation(m[0]),
		})
	}

	return refs
}

func sectionAndCode(m []string) (section, code string) {
	switch {
	case m[1] != "" && m[2] != "":
		return normalizeSection(m[1]), m[2]
	case m[3] != "" && m[4] != "":
		return normalizeSection(m[4]), m[3]
	case m[5] != "" && m[6] != "":
		return normalizeSection(m[5]), m[6]
	}
	return "", ""
}

func normalizeSection(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeCitation collapses whitespace runs and strips trailing
// punctuation (picked up from surrounding prose, e.g. a sentence-ending
// period) but leaves internal punctuation like the periods in "S.C.R."
// alone, since citation formatting relies on it.
func normalizeCitation(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(collapsed, ".,;:")
}

func validateReference(ctx context.Context, retriever CitationChecker, r *models.Reference) {
	switch r.Type {
	case models.ReferenceStatute:
		validateAgainstTable(r, statuteRanges[r.MatchedCode])
	case models.ReferenceArticle:
		validateAgainstTable(r, constitutionRange)
	case models.ReferenceCase:
		validateCaseCitation(ctx, retriever, r)
	}
}

func validateAgainstTable(r *models.Reference, rng validRange) {
	if rng.valid(r.Key) {
		r.Validity = models.ValidityValid
		r.Confidence = 0.9
		return
	}
	r.Validity = models.ValiditySuspectedFake
	r.Confidence = 0.95
	r.Reason = fmt.Sprintf("%s is outside the valid range %d-%d for %s", r.Key, rng.lo, rng.hi, r.MatchedCode)
}

func validateCaseCitation(ctx context.Context, retriever CitationChecker, r *models.Reference) {
	r.ValidatedAgainstIndex = true

	if retriever == nil {
		r.Validity = models.ValidityUnknown
		r.Reason = "no retriever available to validate citation"
		return
	}

	hits, err := retriever.Retrieve(ctx, r.Key, 5)
	if err != nil {
		r.Validity = models.ValidityUnknown
		r.Reason = fmt.Sprintf("citation lookup failed: %v", err)
		return
	}

	for _, h := range hits {
		if strings.Contains(normalizeCitation(h.Chunk.Citation), r.Key) {
			r.Validity = models.ValidityValid
			r.Confidence = 0.9
			return
		}
	}

	r.Validity = models.ValiditySuspectedFake
	r.Confidence = 0.8
	r.Reason = "citation not found in vector store"
}
