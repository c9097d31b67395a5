package pdfparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJudges_BracketPatternSplitsOnAndAndComma(t *testing.T) {
	page := "IN THE SUPREME COURT OF INDIA\nCIVIL APPELLATE JURISDICTION\n" +
		"[A.K. Sharma* and R.N. Rao, JJ.]\nJUDGMENT"

	judges := extractJudges(page)

	assert.Equal(t, []string{"A.K. Sharma", "R.N. Rao"}, judges)
}

func TestExtractJudges_FallbackJusticePattern(t *testing.T) {
	page := "Coram: Hon'ble Justice S.K. Verma, Hon'ble Justice P. Nair\nJUDGMENT"

	judges := extractJudges(page)

	assert.Equal(t, []string{"S.K. Verma", "P. Nair"}, judges)
}

func TestExtractJudges_NoMatchReturnsNil(t *testing.T) {
	page := "IN THE SUPREME COURT OF INDIA\nno bench listing on this page"

	assert.Nil(t, extractJudges(page))
}

func TestExtractJudges_FiltersShortAndSuffixTokens(t *testing.T) {
	page := "[M. Iyer Jr and II, JJ.]"

	judges := extractJudges(page)

	assert.Equal(t, []string{"M. Iyer Jr"}, judges)
}
