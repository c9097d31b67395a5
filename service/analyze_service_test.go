package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legalresearch-engine/models"
)

func TestCitationsFromHits_DedupesPreservingFirstOccurrenceOrder(t *testing.T) {
	hits := []models.RetrievalHit{
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
		{Chunk: models.Chunk{Citation: "2019 SCC 12"}},
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
	}

	got := citationsFromHits(hits)

	assert.Equal(t, []string{"2020 SCC 45", "2019 SCC 12"}, got)
}

func TestCitationsFromHits_SkipsEmptyCitations(t *testing.T) {
	hits := []models.RetrievalHit{
		{Chunk: models.Chunk{Citation: ""}},
		{Chunk: models.Chunk{Citation: "2020 SCC 45"}},
	}

	got := citationsFromHits(hits)

	assert.Equal(t, []string{"2020 SCC 45"}, got)
}

func TestCitationsFromHits_EmptyInputYieldsNil(t *testing.T) {
	got := citationsFromHits(nil)
	assert.Nil(t, got)
}
