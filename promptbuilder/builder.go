// Package promptbuilder converts retrieval hits and sanitized user
// input into a grounded LLM prompt.
package promptbuilder

import (
	"fmt"
	"strings"

	"legalresearch-engine/models"
)

const systemInstruction = `You are a legal research assistant for Indian case law. Given the
retrieved precedents below and the user's case description, produce a Markdown
document with exactly these sections, in this order: "Current Case Summary",
"Similar Precedents Found", "Strategic Recommendations", "All References".
Under "Similar Precedents Found", list each precedent as a numbered entry
carrying the case title, citation, page, a relevance explanation, a direct
quote from the excerpt, and the document URL verbatim. Do not omit or
abbreviate any citation or document URL.`

// followUpInstruction asks the model to close its reply with a
// dedicated, parseable section so the chat engine can split cited
// precedents and follow-up suggestions out of free-form prose.
const followUpInstruction = `

After the main answer, add a final section titled exactly
"Follow-up Questions:" followed by 2 to 4 suggested follow-up questions
as a "-" bulleted list, one per line.`

// MaxExcerptChars bounds a single hit's excerpt body when trimming for
// token budget; hits are trimmed before they are dropped, and metadata
// (citation, page, url) is never dropped.
const MaxExcerptChars = 1500

// Request is everything the builder needs to assemble a prompt.
type Request struct {
	UserInput       string
	Hits            []models.RetrievalHit
	PriorTurns      []models.Turn
	TokenBudget     int  // approximate character budget for the context block; 0 = unbounded
	IncludeFollowUp bool // append followUpInstruction, for the chat engine
}

// Build assembles the three-slot prompt: system instruction, retrieval
// context block, and sanitized user input (with prior turns in chat).
func Build(req Request) string {
	var b strings.Builder

	b.WriteString(systemInstruction)
	if req.IncludeFollowUp {
		b.WriteString(followUpInstruction)
	}
	b.WriteString("\n\n")

	hits := trimForBudget(req.Hits, req.TokenBudget)
	b.WriteString(renderContextBlock(hits))
	b.WriteString("\n\n")

	if len(req.PriorTurns) > 0 {
		b.WriteString(renderTurns(req.PriorTurns))
		b.WriteString("\n\n")
	}

	b.WriteString("User input:\n")
	b.WriteString(req.UserInput)

	return b.String()
}

func renderContextBlock(hits []models.RetrievalHit) string {
	var b strings.Builder
	b.WriteString("Retrieved precedents:\n")
	for i, h := range hits {
		c := h.Chunk
		fmt.Fprintf(&b, "%d. %s — %s — page %d — section %s\n%s\n%s\n",
			i+1, c.CaseTitle, c.Citation, c.PageNumber, c.Section, c.Text, c.DocumentURL)
	}
	return b.String()
}

func renderTurns(turns []models.Turn) string {
	var b strings.Builder
	b.WriteString("Prior conversation:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return b.String()
}

// trimForBudget trims excerpt bodies before dropping whole hits, and
// never drops metadata fields.
func trimForBudget(hits []models.RetrievalHit, budget int) []models.RetrievalHit {
	if budget <= 0 {
		return hits
	}

	out := make([]models.RetrievalHit, len(hits))
	copy(out, hits)

	for i := range out {
		if len(out[i].Chunk.Text) > MaxExcerptChars {
			out[i].Chunk.Text = out[i].Chunk.Text[:MaxExcerptChars] + "..."
		}
	}

	total := contextSize(out)
	for total > budget && len(out) > 0 {
		out = out[:len(out)-1]
		total = contextSize(out)
	}
	return out
}

func contextSize(hits []models.RetrievalHit) int {
	size := 0
	for _, h := range hits {
		size += len(h.Chunk.Text) + len(h.Chunk.CaseTitle) + len(h.Chunk.Citation) + len(h.Chunk.DocumentURL)
	}
	return size
}
