package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legalresearch-engine/models"
)

func hit(distance float64, ordinal int, caseKey string) models.RetrievalHit {
	return models.RetrievalHit{
		Chunk:    models.Chunk{ChunkOrdinal: ordinal, Citation: caseKey},
		Distance: distance,
	}
}

func TestLessHit_OrdersByDistanceFirst(t *testing.T) {
	a := hit(0.1, 5, "B")
	b := hit(0.2, 1, "A")
	assert.True(t, lessHit(a, b))
	assert.False(t, lessHit(b, a))
}

func TestLessHit_TiesBrokenByChunkOrdinal(t *testing.T) {
	a := hit(0.5, 1, "B")
	b := hit(0.5, 2, "A")
	assert.True(t, lessHit(a, b))
}

func TestLessHit_TiesBrokenByCaseKey(t *testing.T) {
	a := hit(0.5, 3, "A")
	b := hit(0.5, 3, "B")
	assert.True(t, lessHit(a, b))
	assert.False(t, lessHit(b, a))
}

func TestLessHit_Deterministic(t *testing.T) {
	hits := []models.RetrievalHit{
		hit(0.3, 2, "Z"),
		hit(0.3, 2, "A"),
		hit(0.1, 9, "M"),
		hit(0.3, 1, "A"),
	}
	// Any total order consistent with lessHit must put the 0.1 hit first.
	best := hits[0]
	for _, h := range hits[1:] {
		if lessHit(h, best) {
			best = h
		}
	}
	assert.Equal(t, 0.1, best.Distance)
}
