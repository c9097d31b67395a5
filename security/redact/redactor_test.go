package redact

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholderRe = regexp.MustCompile(`^\[[A-Z_]+_\d+_[0-9a-f]{8}\]$`)

func TestRedact_DetectsEmail(t *testing.T) {
	result := Redact("Contact the petitioner at ramesh.kumar@example.com for details.", 0)
	require.Len(t, result.Detections, 1)
	assert.Equal(t, KindEmail, result.Detections[0].Kind)
	assert.NotContains(t, result.RedactedText, "ramesh.kumar@example.com")
	assert.Regexp(t, placeholderRe, result.Detections[0].Placeholder)
}

func TestRedact_DetectsPhone(t *testing.T) {
	result := Redact("The witness can be reached at 9876543210 during business hours.", 0)
	require.Len(t, result.Detections, 1)
	assert.Equal(t, KindPhone, result.Detections[0].Kind)
}

func TestRedact_PlaceholderFormatIsStableAcrossRepeats(t *testing.T) {
	result := Redact("Email x@y.com and again x@y.com in the same document.", 0)
	require.Len(t, result.Detections, 2)
	assert.Equal(t, result.Detections[0].Placeholder, result.Detections[1].Placeholder)
}

func TestRedact_DenylistPhraseNeverRedacted(t *testing.T) {
	result := Redact("The Supreme Court of India heard the Petitioner's appeal.", 0)
	assert.Contains(t, result.RedactedText, "Supreme Court")
	assert.Contains(t, result.RedactedText, "Petitioner")
}

func TestRedact_AllCapsTokenNeverRedacted(t *testing.T) {
	result := Redact("See IPC Section 302 and the CRPC provisions therein.", 0)
	assert.Contains(t, result.RedactedText, "IPC")
	assert.Contains(t, result.RedactedText, "CRPC")
}

func TestRedact_ThresholdFiltersLowConfidenceDetections(t *testing.T) {
	text := "Ramesh Kumar Sharma filed the petition."
	lowThreshold := Redact(text, 0.5)
	highThreshold := Redact(text, 0.99)
	assert.GreaterOrEqual(t, len(lowThreshold.Detections), len(highThreshold.Detections))
}

func TestRedact_OverlapsKeepHighestConfidence(t *testing.T) {
	// A 12-digit run matches both Aadhaar (0.85) and bank-account (0.75);
	// only the higher-confidence Aadhaar detection should survive for that span.
	result := Redact("Account reference 123456789012 was cited in the order.", 0)
	for _, d := range result.Detections {
		if d.Kind == KindBankAccount {
			for _, other := range result.Detections {
				if other.Kind == KindAadhaar {
					overlap := d.Start < other.End && other.Start < d.End
					assert.False(t, overlap, "bank-account and aadhaar detections should not overlap")
				}
			}
		}
	}
}

func TestRedact_NoMatchesReturnsFullConfidence(t *testing.T) {
	result := Redact("This text has no personal data of any kind.", 0)
	assert.Empty(t, result.Detections)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "This text has no personal data of any kind.", result.RedactedText)
}

func TestRedact_ZeroThresholdUsesDefault(t *testing.T) {
	result := Redact("Reach out via contact@legalfirm.in for a consultation.", 0)
	require.NotEmpty(t, result.Detections)
	assert.GreaterOrEqual(t, result.Detections[0].Confidence, DefaultConfidenceThreshold)
}
