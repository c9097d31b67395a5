package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"legalresearch-engine/models"
	"legalresearch-engine/security/redact"
	"legalresearch-engine/security/validate"
)

var requestSeq uint64

// nextRequestID produces a monotone, process-wide request id of the
// form REQ_<YYYYMMDDHHMMSS>_<6-digit-seq>, sorting chronologically.
func nextRequestID(now time.Time) string {
	seq := atomic.AddUint64(&requestSeq, 1)
	return fmt.Sprintf("REQ_%s_%06d", now.Format("20060102150405"), seq%1_000_000)
}

// Enforcer runs input validation then PII redaction and writes the
// security audit log.
type Enforcer struct {
	validateCfg validate.Config
	piiThreshold float64
	log         *LogWriter
}

func New(validateCfg validate.Config, piiThreshold float64, log *LogWriter) *Enforcer {
	return &Enforcer{validateCfg: validateCfg, piiThreshold: piiThreshold, log: log}
}

// ProcessResult is the {success, processed_text, metadata, violations}
// result of a Process call.
type ProcessResult struct {
	Success       bool
	ProcessedText string
	Violations    []string
	RiskScore     float64
	Record        models.UserInputRecord
}

// Process runs the input validator then the PII redactor over input,
// writing one audit record per call regardless of outcome.
func (e *Enforcer) Process(ctx context.Context, action, input, userID, ip string) ProcessResult {
	now := time.Now()
	requestID := nextRequestID(now)
	originalHash := hashText(input)

	validation := validate.Validate(e.validateCfg, input)

	record := models.UserInputRecord{
		RequestID:         requestID,
		UserID:            userID,
		Timestamp:         now,
		Action:            action,
		OriginalInputHash: originalHash,
		ValidationPassed:  validation.IsValid,
		RiskScore:         validation.RiskScore,
		Violations:        validation.Violations,
		IPAddress:         ip,
	}

	if !validation.IsValid {
		_ = e.log.Append(record)
		return ProcessResult{
			Success:    false,
			Violations: validation.Violations,
			RiskScore:  validation.RiskScore,
			Record:     record,
		}
	}

	redaction := redact.Redact(input, e.piiThreshold)

	piiTypes := make([]string, 0)
	seen := make(map[string]bool)
	for _, d := range redaction.Detections {
		if !seen[string(d.Kind)] {
			seen[string(d.Kind)] = true
			piiTypes = append(piiTypes, string(d.Kind))
		}
	}

	record.SanitizedText = redaction.RedactedText
	record.PIITypesDetected = piiTypes
	record.NumRedactions = len(redaction.Detections)
	record.RedactionConfidenceScore = redaction.Confidence

	_ = e.log.Append(record)

	return ProcessResult{
		Success:       true,
		ProcessedText: redaction.RedactedText,
		Violations:    nil,
		RiskScore:     validation.RiskScore,
		Record:        record,
	}
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
