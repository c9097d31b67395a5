package models

import (
	"database/sql/driver"
	"encoding/json"
)

// RetrievalHit is a Chunk plus the scalar distance that produced it.
// Distances are comparable only within the same query.
type RetrievalHit struct {
	Chunk    Chunk   `json:"chunk"`
	Distance float64 `json:"distance"`
	Query    string  `json:"query"`
}

// RetrievalHits is the JSONB-backed form of a hit list, used to persist
// a chat session's initial retrieval context alongside its Turns.
type RetrievalHits []RetrievalHit

// Value implements driver.Valuer for JSONB.
func (h RetrievalHits) Value() (driver.Value, error) {
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB.
func (h *RetrievalHits) Scan(value interface{}) error {
	if value == nil {
		*h = make(RetrievalHits, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*h = make(RetrievalHits, 0)
		return nil
	}

	if len(bytes) == 0 {
		*h = make(RetrievalHits, 0)
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// GroupedCaseHit is a case key, its best (lowest) score among member
// hits, and an ordered, size-bounded list of that case's hits.
type GroupedCaseHit struct {
	CaseKey      string         `json:"case_key"`
	BestDistance float64        `json:"best_distance"`
	Hits         []RetrievalHit `json:"hits"`
}
