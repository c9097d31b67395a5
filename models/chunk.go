package models

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is the atom of indexing and retrieval: a bounded-size,
// header-attributed textual unit of a judgment.
type Chunk struct {
	ID           uuid.UUID `json:"id"`
	SourceCaseID uuid.UUID `json:"source_case_id"`

	CaseTitle  string   `json:"case_title"`
	Citation   string   `json:"citation"`
	CaseNumber string   `json:"case_number"`
	Judges     []string `json:"judges"`

	Section      string `json:"section"`
	ChunkOrdinal int    `json:"chunk_ordinal"`
	Text         string `json:"text"`

	PageNumber int `json:"page_number"`
	TotalPages int `json:"total_pages"`

	DocumentURL string `json:"document_url"`
	SourceFile  string `json:"source_file"`

	Embedding []float64 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseKey returns the grouping key used to reassemble a Case from its
// Chunks: the citation when present, else title+number.
func (c Chunk) CaseKey() string {
	if c.Citation != "" {
		return c.Citation
	}
	return c.CaseTitle + "|" + c.CaseNumber
}
