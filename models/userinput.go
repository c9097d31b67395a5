package models

import "time"

// UserInputRecord is the record the security enforcer produces for
// every processed request. It is written once to the append-only
// security log and never mutated.
type UserInputRecord struct {
	RequestID                string    `json:"request_id"`
	UserID                   string    `json:"user_id"`
	Timestamp                time.Time `json:"timestamp"`
	Action                   string    `json:"action"`
	OriginalInputHash        string    `json:"original_input_hash"`
	SanitizedText            string    `json:"-"`
	PIITypesDetected         []string  `json:"pii_types_detected"`
	NumRedactions            int       `json:"num_redactions"`
	RedactionConfidenceScore float64   `json:"redaction_confidence_score"`
	ValidationPassed         bool      `json:"validation_passed"`
	RiskScore                float64   `json:"risk_score"`
	Violations               []string  `json:"violations"`
	IPAddress                string    `json:"ip_address"`
}
