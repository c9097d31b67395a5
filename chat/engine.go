package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legalresearch-engine/excerpt"
	"legalresearch-engine/hallucination"
	"legalresearch-engine/models"
	"legalresearch-engine/pkg/logger"
	"legalresearch-engine/promptbuilder"
	"legalresearch-engine/security"
	"legalresearch-engine/similarity"

	"go.uber.org/zap"
)

// MaxTurns bounds a session's stored turn history to the last 10 turns
// (5 exchanges), evicting the oldest once a session grows past it.
const MaxTurns = 10

// DefaultHitsPerMessage is the k passed to Mode A per message.
const DefaultHitsPerMessage = 5

// MaxExcerptPages bounds ExtractFullPDFContent when a hit's excerpt is
// requested in full rather than by single page.
const MaxExcerptPages = 3

// Completer is the capability Engine needs from the LLM Client.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32, timeout time.Duration) (string, error)
}

// Engine drives one message through security enforcement, retrieval
// (Mode A), excerpt lookup, prompt construction, completion and
// hallucination detection.
type Engine struct {
	store             Store
	enforcer          *security.Enforcer
	sim               *similarity.Engine
	excerpts          *excerpt.Reader
	llm               Completer
	detector          *hallucination.Detector
	completionTimeout time.Duration
	maxTokens         int
	temperature       float32

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

type Option func(*Engine)

func WithCompletionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.completionTimeout = d }
}

func WithCompletionParams(maxTokens int, temperature float32) Option {
	return func(e *Engine) { e.maxTokens = maxTokens; e.temperature = temperature }
}

func New(store Store, enforcer *security.Enforcer, sim *similarity.Engine, excerpts *excerpt.Reader, llm Completer, detector *hallucination.Detector, opts ...Option) *Engine {
	e := &Engine{
		store:             store,
		enforcer:          enforcer,
		sim:               sim,
		excerpts:          excerpts,
		llm:               llm,
		detector:          detector,
		completionTimeout: 30 * time.Second,
		maxTokens:         2048,
		temperature:       0.3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) sessionLock(id uuid.UUID) *sync.Mutex {
	lock, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// StartSession creates a Fresh session bound to a case description and
// runs Mode A against the case text so the session's initial context
// (the precedents that motivated it) is captured up front, independent
// of whatever the first message turns out to be.
func (e *Engine) StartSession(ctx context.Context, userID uuid.UUID, caseText, caseTitle string) (*models.ChatSession, error) {
	session := &models.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		CaseText:  caseText,
		CaseTitle: caseTitle,
		State:     models.SessionFresh,
		Turns:     models.Turns{},
	}

	if e.sim != nil {
		hits, err := e.sim.DedupedCases(ctx, caseText, DefaultHitsPerMessage)
		if err != nil {
			logger.Warn("chat: initial context retrieval failed", zap.Error(err))
		} else {
			session.InitialContext = models.RetrievalHits(hits)
		}
	}

	if err := e.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("chat: start session: %w", err)
	}
	return session, nil
}

// MessageResult is the outcome of SendMessage.
type MessageResult struct {
	Reply             string
	Degraded          bool
	Blocked           bool
	Violations        []string
	CitedPrecedents   []string
	FollowUpQuestions []string
	Session           *models.ChatSession
}

// SendMessage runs one turn through the full query pipeline: security
// enforcement, retrieval (Mode A, skippable via useRAG), excerpt
// lookup, prompt construction, completion, hallucination detection,
// then appends both the user and assistant turns to the session.
func (e *Engine) SendMessage(ctx context.Context, sessionID uuid.UUID, userID, ip, message string, useRAG bool) (MessageResult, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return MessageResult{}, err
	}
	if session.State == models.SessionTerminated {
		return MessageResult{}, fmt.Errorf("chat: session %s is terminated", sessionID)
	}

	enforced := e.enforcer.Process(ctx, "chat_message", message, userID, ip)
	if !enforced.Success {
		return MessageResult{Blocked: true, Violations: enforced.Violations, Session: session}, nil
	}

	var hits []models.RetrievalHit
	if useRAG && e.sim != nil {
		query := strings.TrimSpace(session.CaseText + "\n" + enforced.ProcessedText)
		hits, err = e.sim.DedupedCases(ctx, query, DefaultHitsPerMessage)
		if err != nil {
			logger.Warn("chat: retrieval failed", zap.String("session", sessionID.String()), zap.Error(err))
			hits = nil
		}
	}

	e.attachExcerpts(ctx, hits)

	prompt := promptbuilder.Build(promptbuilder.Request{
		UserInput:       enforced.ProcessedText,
		Hits:            hits,
		PriorTurns:      []models.Turn(session.Turns),
		IncludeFollowUp: true,
	})

	degraded := false
	reply, err := e.llm.Complete(ctx, prompt, e.maxTokens, e.temperature, e.completionTimeout)
	if err != nil {
		logger.Error("chat: completion failed", zap.String("session", sessionID.String()), zap.Error(err))
		degraded = true
		reply = "The research assistant is temporarily unavailable. Please retry your question shortly."
	}

	var followUps []string
	if !degraded {
		reply, followUps = splitFollowUpQuestions(reply)
	}

	var hallucinationMeta map[string]interface{}
	if !degraded && e.detector != nil {
		report := e.detector.Detect(ctx, userID, enforced.ProcessedText, reply)
		if report.HasHallucinations {
			hallucinationMeta = map[string]interface{}{
				"has_hallucinations":  true,
				"suspected_fake_refs": report.SuspectedFakeRefs,
				"confidence_score":    report.ConfidenceScore,
			}
		}
	}

	citations := citationsFromHits(hits)

	now := time.Now()
	session.Append(models.Turn{Role: models.RoleUser, Content: message, Timestamp: now})

	metadata := map[string]interface{}{}
	if degraded {
		metadata["degraded"] = true
	}
	if len(citations) > 0 {
		metadata["citations"] = citations
	}
	for k, v := range hallucinationMeta {
		metadata[k] = v
	}

	assistantTurn := models.Turn{Role: models.RoleAssistant, Content: reply, Timestamp: now}
	if len(metadata) > 0 {
		assistantTurn.Metadata = metadata
	}
	session.Append(assistantTurn)
	evictOldTurns(session)

	session.State = models.SessionActive
	if err := e.store.Update(ctx, session); err != nil {
		return MessageResult{}, fmt.Errorf("chat: persist session: %w", err)
	}

	return MessageResult{
		Reply:             reply,
		Degraded:          degraded,
		CitedPrecedents:   citations,
		FollowUpQuestions: followUps,
		Session:           session,
	}, nil
}

// Terminate ends a session; no further messages are accepted.
func (e *Engine) Terminate(ctx context.Context, sessionID uuid.UUID) error {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.State = models.SessionTerminated
	return e.store.Update(ctx, session)
}

// attachExcerpts fills in each hit's chunk text from the PDF excerpt
// reader when the indexed text is empty or clearly truncated; failures
// degrade silently rather than fail the message.
func (e *Engine) attachExcerpts(ctx context.Context, hits []models.RetrievalHit) {
	if e.excerpts == nil {
		return
	}
	for i := range hits {
		if hits[i].Chunk.Text != "" {
			continue
		}
		hits[i].Chunk.Text = e.excerpts.ExtractPageContent(ctx, hits[i].Chunk.DocumentURL, hits[i].Chunk.PageNumber)
	}
}

func evictOldTurns(session *models.ChatSession) {
	if len(session.Turns) > MaxTurns {
		session.Turns = session.Turns[len(session.Turns)-MaxTurns:]
	}
}

// citationsFromHits returns each hit's citation, deduped and in
// first-occurrence order, so assistant turns and responses can carry
// the precedents actually grounding them.
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

var followUpHeaderRe = regexp.MustCompile(`(?i)^\s*#{0,3}\s*follow-?up questions:?\s*$`)
var followUpBulletRe = regexp.MustCompile(`^[-*]\s*|^\d+[.)]\s*`)

// splitFollowUpQuestions pulls the "Follow-up Questions:" section
// promptbuilder asks the model to close with off of the main answer,
// returning the answer alone and the parsed question list. A reply
// with no such section is returned unchanged with a nil question list.
func splitFollowUpQuestions(reply string) (string, []string) {
	lines := strings.Split(reply, "\n")

	headerIdx := -1
	for i, line := range lines {
		if followUpHeaderRe.MatchString(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return reply, nil
	}

	var questions []string
	for _, line := range lines[headerIdx+1:] {
		q := followUpBulletRe.ReplaceAllString(strings.TrimSpace(line), "")
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		questions = append(questions, q)
	}

	answer := strings.TrimSpace(strings.Join(lines[:headerIdx], "\n"))
	return answer, questions
}
