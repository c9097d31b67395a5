package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalresearch-engine/models"
	"legalresearch-engine/security"
	"legalresearch-engine/security/validate"
)

func newTestEnforcer(t *testing.T) *security.Enforcer {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "audit.log")
	log, err := security.NewLogWriter(logPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return security.New(validate.DefaultConfig(), 0, log)
}

func TestStartSession_CreatesFreshSession(t *testing.T) {
	e := New(NewMemoryStore(), newTestEnforcer(t), nil, nil, nil, nil)
	userID := uuid.New()

	session, err := e.StartSession(context.Background(), userID, "facts of the case", "Sharma v. State")
	require.NoError(t, err)

	assert.Equal(t, models.SessionFresh, session.State)
	assert.Equal(t, userID, session.UserID)
	assert.Empty(t, session.Turns)
}

func TestTerminate_MarksSessionTerminated(t *testing.T) {
	e := New(NewMemoryStore(), newTestEnforcer(t), nil, nil, nil, nil)
	session, err := e.StartSession(context.Background(), uuid.New(), "facts", "Title")
	require.NoError(t, err)

	require.NoError(t, e.Terminate(context.Background(), session.ID))

	stored, err := e.store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionTerminated, stored.State)
}

func TestSendMessage_TerminatedSessionIsRejected(t *testing.T) {
	e := New(NewMemoryStore(), newTestEnforcer(t), nil, nil, nil, nil)
	session, err := e.StartSession(context.Background(), uuid.New(), "facts", "Title")
	require.NoError(t, err)
	require.NoError(t, e.Terminate(context.Background(), session.ID))

	_, err = e.SendMessage(context.Background(), session.ID, "user-1", "127.0.0.1", "What happened next?", true)
	assert.Error(t, err)
}

func TestSendMessage_BlockedByValidationNeverReachesRetrieval(t *testing.T) {
	// sim, excerpts, llm and detector are left nil: a blocked message
	// returns before any of them are touched.
	e := New(NewMemoryStore(), newTestEnforcer(t), nil, nil, nil, nil)
	session, err := e.StartSession(context.Background(), uuid.New(), "facts", "Title")
	require.NoError(t, err)

	result, err := e.SendMessage(context.Background(), session.ID, "user-1", "127.0.0.1", "hi", true)
	require.NoError(t, err)

	assert.True(t, result.Blocked)
	assert.NotEmpty(t, result.Violations)
}

func TestSendMessage_UnknownSessionReturnsError(t *testing.T) {
	e := New(NewMemoryStore(), newTestEnforcer(t), nil, nil, nil, nil)
	_, err := e.SendMessage(context.Background(), uuid.New(), "user-1", "127.0.0.1", "a message long enough to pass validation", true)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSplitFollowUpQuestions_ExtractsBulletedSection(t *testing.T) {
	reply := "The appeal is likely to succeed on the merits.\n\n" +
		"Follow-up Questions:\n" +
		"- What was the trial court's reasoning?\n" +
		"- Were there any dissenting opinions?\n"

	answer, questions := splitFollowUpQuestions(reply)

	assert.Equal(t, "The appeal is likely to succeed on the merits.", answer)
	assert.Equal(t, []string{
		"What was the trial court's reasoning?",
		"Were there any dissenting opinions?",
	}, questions)
}

func TestSplitFollowUpQuestions_NoSectionReturnsReplyUnchanged(t *testing.T) {
	reply := "Just a plain answer with no follow-up section."
	answer, questions := splitFollowUpQuestions(reply)

	assert.Equal(t, reply, answer)
	assert.Nil(t, questions)
}

func TestCitationsFromHits_DedupesPreservingOrder(t *testing.T) {
	hits := []models.RetrievalHit{
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
		{Chunk: models.Chunk{Citation: "2019 SCC 12"}},
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
		{Chunk: models.Chunk{Citation: ""}},
	}

	assert.Equal(t, []string{"2020 SCC 45", "2019 SCC 12"}, citationsFromHits(hits))
}

func TestEvictOldTurns_KeepsOnlyMostRecentTurns(t *testing.T) {
	session := &models.ChatSession{ID: uuid.New()}
	for i := 0; i < MaxTurns+4; i++ {
		session.Append(models.Turn{Content: string(rune('a' + i%26))})
	}

	evictOldTurns(session)

	require.Len(t, session.Turns, MaxTurns)
	assert.Equal(t, string(rune('a'+(MaxTurns+3)%26)), session.Turns[len(session.Turns)-1].Content)
}

func TestEvictOldTurns_NoOpUnderLimit(t *testing.T) {
	session := &models.ChatSession{ID: uuid.New()}
	session.Append(models.Turn{Content: "only one"})

	evictOldTurns(session)

	assert.Len(t, session.Turns, 1)
}
