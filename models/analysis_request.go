package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus is the status of a case analysis request.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// StringList is a JSONB-backed list of strings, used here for the
// citations collected while building an analysis.
type StringList []string

// Value implements driver.Valuer for JSONB.
func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = make(StringList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(StringList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*l = make(StringList, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// AnalysisRequest is a persisted record of one analyze run: the case
// text submitted, the generated Markdown analysis, and the citations
// surfaced along the way.
type AnalysisRequest struct {
	ID                uuid.UUID      `json:"id"`
	UserID            uuid.UUID      `json:"user_id"`
	CaseText          string         `json:"case_text"`
	CaseTitle         string         `json:"case_title"`
	Status            AnalysisStatus `json:"status"`
	GeneratedAnalysis *string        `json:"generated_analysis,omitempty"`
	Citations         StringList     `json:"citations"`
	ErrorMessage      *string        `json:"error_message,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}
