package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IngestionJobStatus is the status of an ingestion run over a directory
// of PDFs.
type IngestionJobStatus string

const (
	IngestionPending    IngestionJobStatus = "pending"
	IngestionInProgress IngestionJobStatus = "in_progress"
	IngestionCompleted  IngestionJobStatus = "completed"
	IngestionFailed     IngestionJobStatus = "failed"
)

// IngestionStep records the outcome of ingesting a single PDF. A
// failure on one PDF skips that file and continues; the job's Steps
// list is the ingestion summary of failures.
type IngestionStep struct {
	PDFPath string `json:"pdf_path"`
	Status  string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Error   string `json:"error,omitempty"`
}

// IngestionSteps is the JSONB-backed ordered list of per-PDF steps.
type IngestionSteps []IngestionStep

// Value implements driver.Valuer for JSONB.
func (s IngestionSteps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB.
func (s *IngestionSteps) Scan(value interface{}) error {
	if value == nil {
		*s = make(IngestionSteps, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(IngestionSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(IngestionSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// IngestionJob tracks one run of the ingestion pipeline over a
// directory of PDFs.
type IngestionJob struct {
	ID              uuid.UUID          `json:"id"`
	SourceDirectory string             `json:"source_directory"`
	Status          IngestionJobStatus `json:"status"`
	CurrentStep     *string            `json:"current_step,omitempty"`
	Steps           IngestionSteps     `json:"steps"`
	ErrorMessage    *string            `json:"error_message,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
}
