// Package validate runs length bounds, prompt-injection, XSS/SQL
// pattern, and special-character ratio checks, plus file-upload rules.
package validate

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const (
	DefaultMinLength = 10
	DefaultMaxLength = 50_000

	DefaultMaxFileSize = 10 * 1024 * 1024

	violationLength          = "length_violation"
	violationSpecialCharRatio = "special_char_ratio"
	violationSQL             = "sql_pattern"
	violationXSS             = "xss_pattern"
	violationPromptInjection = "prompt_injection"
)

var riskWeights = map[string]float64{
	violationLength:           0.2,
	violationSpecialCharRatio: 0.3,
	violationSQL:              0.4,
	violationXSS:              0.5,
	violationPromptInjection:  0.5,
}

var sqlPattern = regexp.MustCompile(`(?i)(union\s+select|select\s+.+\s+from|insert\s+into|update\s+.+\s+set|delete\s+from|drop\s+table|--\s|;\s*drop|'\s*or\s*'1'\s*=\s*'1)`)

var xssPattern = regexp.MustCompile(`(?i)(<script[^>]*>|<iframe[^>]*>|<svg[^>]*onload|<img[^>]*onerror|javascript:|onerror\s*=|onload\s*=|onclick\s*=)`)

// promptInjectionPatterns is the closed set of recognized injection
// attempts.
var promptInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)the\s+above\s+(instructions|text|prompt)`),
	regexp.MustCompile(`/\*\s*SYSTEM\s*\*/`),
	regexp.MustCompile(`(?i)---\s*BEGIN\s+SYSTEM\s*---`),
	regexp.MustCompile(`\[SYSTEM\]`),
	regexp.MustCompile(`(?i)SYSTEM:`),
}

// Config overrides the default bounds with environment-configured
// values.
type Config struct {
	MinLength            int
	MaxLength            int
	SpecialCharRatioMax  float64
	MaxFileSize          int64
}

func DefaultConfig() Config {
	return Config{
		MinLength:           DefaultMinLength,
		MaxLength:           DefaultMaxLength,
		SpecialCharRatioMax: 0.3,
		MaxFileSize:         DefaultMaxFileSize,
	}
}

// Result is the {is_valid, violations[], risk_score} output of Validate.
type Result struct {
	IsValid    bool
	Violations []string
	RiskScore  float64
}

// Validate runs each check in order and sums the risk score of every
// violation, clamped to 1.0.
func Validate(cfg Config, text string) Result {
	var violations []string

	if len(text) < cfg.MinLength || len(text) > cfg.MaxLength {
		violations = append(violations, violationLength)
	}

	if ratio := specialCharRatio(text); ratio > cfg.SpecialCharRatioMax {
		violations = append(violations, violationSpecialCharRatio)
	}

	if sqlPattern.MatchString(text) {
		violations = append(violations, violationSQL)
	}

	if xssPattern.MatchString(text) {
		violations = append(violations, violationXSS)
	}

	if containsPromptInjection(text) {
		violations = append(violations, violationPromptInjection)
	}

	score := 0.0
	for _, v := range violations {
		score += riskWeights[v]
	}
	if score > 1.0 {
		score = 1.0
	}

	return Result{
		IsValid:    len(violations) == 0,
		Violations: violations,
		RiskScore:  score,
	}
}

func containsPromptInjection(text string) bool {
	for _, p := range promptInjectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func specialCharRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	var special int
	total := 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(special) / float64(total)
}

// FileResult is the outcome of validating an uploaded file.
type FileResult struct {
	IsValid    bool
	Violations []string
}

// ValidateFile enforces extension, size, and path-traversal rules,
// narrowed to .pdf-only rather than a broader allowed-MIME-type list.
func ValidateFile(cfg Config, filename string, size int64) FileResult {
	var violations []string

	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		violations = append(violations, "invalid_extension")
	}

	if size > cfg.MaxFileSize {
		violations = append(violations, "file_too_large")
	}

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		violations = append(violations, "path_traversal")
	}

	return FileResult{IsValid: len(violations) == 0, Violations: violations}
}
