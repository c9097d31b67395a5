package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceFile is an uploaded PDF awaiting or having undergone ingestion
// through the PDF parser.
type SourceFile struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	AnalysisRequestID *uuid.UUID `json:"analysis_request_id,omitempty"`
	Filename          string     `json:"filename"`
	MimeType          string     `json:"mime_type"`
	Size              int64      `json:"size"`
	StoragePath       string     `json:"storage_path"`
	CreatedAt         time.Time  `json:"created_at"`
}
