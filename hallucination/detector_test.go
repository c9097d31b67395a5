package hallucination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalresearch-engine/models"
)

// fakeChecker stands in for retrieve.Retriever so the case-citation
// path can be tested without a live vector index.
type fakeChecker struct {
	hits []models.RetrievalHit
	err  error
}

func (f fakeChecker) Retrieve(ctx context.Context, queryText string, k int) ([]models.RetrievalHit, error) {
	return f.hits, f.err
}

func TestDetect_ValidStatuteSectionInRange(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "what does the law say", "The accused was charged under Section 302 IPC.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ReferenceStatute, report.References[0].Type)
	assert.Equal(t, models.ValidityValid, report.References[0].Validity)
	assert.False(t, report.HasHallucinations)
}

func TestDetect_StatuteSectionOutOfRangeIsSuspectedFake(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "This falls under Section 9999 IPC.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValiditySuspectedFake, report.References[0].Validity)
	assert.True(t, report.HasHallucinations)
	assert.Len(t, report.SuspectedFakeRefs, 1)
}

func TestDetect_ExtraSectionOutsideContiguousRangeIsValid(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "The offence under Section 498A IPC was alleged.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValidityValid, report.References[0].Validity)
}

func TestDetect_ArticleWithinConstitutionRange(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "This violates Article 21 of the Constitution.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ReferenceArticle, report.References[0].Type)
	assert.Equal(t, models.ValidityValid, report.References[0].Validity)
}

func TestDetect_ArticleOutOfRangeIsSuspectedFake(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "This violates Article 900 of the Constitution.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValiditySuspectedFake, report.References[0].Validity)
}

func TestDetect_CaseCitationFoundInIndexIsValid(t *testing.T) {
	checker := fakeChecker{hits: []models.RetrievalHit{
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
	}}
	d := New(checker, nil)
	report := d.Detect(context.Background(), "user-1", "q", "As held in 2020 SCC 45, the appeal succeeds.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ReferenceCase, report.References[0].Type)
	assert.Equal(t, models.ValidityValid, report.References[0].Validity)
	assert.True(t, report.References[0].ValidatedAgainstIndex)
}

func TestDetect_CaseCitationNotFoundInIndexIsSuspectedFake(t *testing.T) {
	checker := fakeChecker{hits: nil}
	d := New(checker, nil)
	report := d.Detect(context.Background(), "user-1", "q", "As held in 2020 SCC 999, the appeal succeeds.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValiditySuspectedFake, report.References[0].Validity)
	assert.True(t, report.HasHallucinations)
}

func TestDetect_CaseCitationRetrieverErrorIsUnknown(t *testing.T) {
	checker := fakeChecker{err: errors.New("index unavailable")}
	d := New(checker, nil)
	report := d.Detect(context.Background(), "user-1", "q", "As held in 2020 SCC 45, the appeal succeeds.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValidityUnknown, report.References[0].Validity)
	assert.False(t, report.HasHallucinations)
}

func TestDetect_NilRetrieverYieldsUnknownForCaseCitations(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "As held in 2020 SCC 45, the appeal succeeds.")

	require.Len(t, report.References, 1)
	assert.Equal(t, models.ValidityUnknown, report.References[0].Validity)
}

func TestDetect_NoReferencesIsClean(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "This is a plain summary with no citations at all.")

	assert.Empty(t, report.References)
	assert.False(t, report.HasHallucinations)
	assert.Equal(t, 1.0, report.ConfidenceScore)
}

func TestDetect_MultipleSuspectedUsesHighestConfidence(t *testing.T) {
	d := New(nil, nil)
	report := d.Detect(context.Background(), "user-1", "q", "Section 9999 IPC and Article 900 of the Constitution both apply.")

	require.Len(t, report.SuspectedFakeRefs, 2)
	assert.InDelta(t, 0.95, report.ConfidenceScore, 0.001)
}
