package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legalresearch-engine/hallucination"
	"legalresearch-engine/ingest/pdfparse"
	"legalresearch-engine/models"
	"legalresearch-engine/promptbuilder"
	"legalresearch-engine/repository"
	"legalresearch-engine/security"
	"legalresearch-engine/similarity"
)

// Completer is the LLM capability this service needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32, timeout time.Duration) (string, error)
}

// AnalyzeService runs the non-chat query pipeline: security
// enforcement, retrieval, prompt construction, completion and
// hallucination detection, persisting the outcome as an
// AnalysisRequest.
type AnalyzeService struct {
	repo     *repository.AnalysisRequestRepository
	enforcer *security.Enforcer
	sim      *similarity.Engine
	llm      Completer
	detector *hallucination.Detector

	hitsPerQuery int
	maxTokens    int
	temperature  float32
	timeout      time.Duration
}

// AnalyzeServiceOption is a functional option.
type AnalyzeServiceOption func(*AnalyzeService)

func WithHitsPerQuery(k int) AnalyzeServiceOption {
	return func(s *AnalyzeService) { s.hitsPerQuery = k }
}

func WithCompletionParams(maxTokens int, temperature float32, timeout time.Duration) AnalyzeServiceOption {
	return func(s *AnalyzeService) { s.maxTokens = maxTokens; s.temperature = temperature; s.timeout = timeout }
}

func NewAnalyzeService(
	repo *repository.AnalysisRequestRepository,
	enforcer *security.Enforcer,
	sim *similarity.Engine,
	llm Completer,
	detector *hallucination.Detector,
	opts ...AnalyzeServiceOption,
) *AnalyzeService {
	s := &AnalyzeService{
		repo:         repo,
		enforcer:     enforcer,
		sim:          sim,
		llm:          llm,
		detector:     detector,
		hitsPerQuery: 5,
		maxTokens:    2048,
		temperature:  0.3,
		timeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the {analysis, citations, hallucination_report, blocked}
// outcome of Analyze.
type Result struct {
	RequestID             uuid.UUID
	Blocked               bool
	Violations            []string
	Analysis              string
	Citations             []string
	HallucinationReport   hallucination.Report
}

// Analyze runs one free-text case description through the full
// pipeline and persists the result.
func (s *AnalyzeService) Analyze(ctx context.Context, userID uuid.UUID, caseText, caseTitle, ip string) (Result, error) {
	req := &models.AnalysisRequest{
		UserID:    userID,
		CaseText:  caseText,
		CaseTitle: caseTitle,
		Status:    models.AnalysisPending,
		Citations: models.StringList{},
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return Result{}, fmt.Errorf("service: create analysis request: %w", err)
	}

	enforced := s.enforcer.Process(ctx, "analyze", caseText, userID.String(), ip)
	if !enforced.Success {
		errMsg := "input rejected by validator"
		_ = s.repo.UpdateResult(ctx, req.ID, models.AnalysisFailed, nil, nil, &errMsg)
		return Result{RequestID: req.ID, Blocked: true, Violations: enforced.Violations}, nil
	}

	hits, err := s.sim.DedupedCases(ctx, enforced.ProcessedText, s.hitsPerQuery)
	if err != nil {
		errMsg := err.Error()
		_ = s.repo.UpdateResult(ctx, req.ID, models.AnalysisFailed, nil, nil, &errMsg)
		return Result{}, fmt.Errorf("service: retrieve: %w", err)
	}

	prompt := promptbuilder.Build(promptbuilder.Request{
		UserInput: enforced.ProcessedText,
		Hits:      hits,
	})

	analysis, err := s.llm.Complete(ctx, prompt, s.maxTokens, s.temperature, s.timeout)
	if err != nil {
		errMsg := err.Error()
		_ = s.repo.UpdateResult(ctx, req.ID, models.AnalysisFailed, nil, nil, &errMsg)
		return Result{}, fmt.Errorf("service: completion: %w", err)
	}

	citations := citationsFromHits(hits)

	var report hallucination.Report
	if s.detector != nil {
		report = s.detector.Detect(ctx, userID.String(), enforced.ProcessedText, analysis)
	}

	citationList := models.StringList(citations)
	if err := s.repo.UpdateResult(ctx, req.ID, models.AnalysisCompleted, &analysis, citationList, nil); err != nil {
		return Result{}, fmt.Errorf("service: persist result: %w", err)
	}

	return Result{
		RequestID:           req.ID,
		Analysis:            analysis,
		Citations:           citations,
		HallucinationReport: report,
	}, nil
}

// AnalyzeFile parses an uploaded PDF, then feeds its extracted text
// through the same pipeline as Analyze (POST /api/analyze/pdf).
func (s *AnalyzeService) AnalyzeFile(ctx context.Context, userID uuid.UUID, pdfPath, ip string) (Result, error) {
	fullText, meta, err := pdfparse.Parse(pdfPath)
	if err != nil {
		return Result{}, fmt.Errorf("service: parse uploaded pdf: %w", err)
	}
	return s.Analyze(ctx, userID, fullText, meta.CaseTitle, ip)
}

func citationsFromHits(hits []models.RetrievalHit) []string {
	seen := make(map[string]bool, len(hits))
	var out []string
	for _, h := range hits {
		if h.Chunk.Citation == "" || seen[h.Chunk.Citation] {
			continue
		}
		seen[h.Chunk.Citation] = true
		out = append(out, h.Chunk.Citation)
	}
	return out
}
