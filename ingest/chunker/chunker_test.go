package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoHeadersUsesBodySection(t *testing.T) {
	chunks := Split("This judgment discusses a narrow point of contract law.", 2000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Body", chunks[0].Section)
}

func TestSplit_RecognizesHeaders(t *testing.T) {
	text := "Some preamble text.\n\nFacts:\nThe appellant filed suit in 2019.\n\nHeld:\nThe appeal is allowed."
	chunks := Split(text, 2000)

	var sections []string
	for _, c := range chunks {
		sections = append(sections, c.Section)
	}
	assert.Contains(t, sections, "Body")
	assert.Contains(t, sections, "Facts")
	assert.Contains(t, sections, "Held")
}

func TestSplit_HeaderMatchIsCaseInsensitive(t *testing.T) {
	text := "HELD:\nThe conviction is set aside."
	chunks := Split(text, 2000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "HELD", chunks[0].Section)
}

func TestSplit_RespectsMaxSizeOnLongParagraph(t *testing.T) {
	paragraph := strings.Repeat("word ", 1000) // 5000 chars, well over any small limit
	chunks := Split(paragraph, 500)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 500)
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	p1 := strings.Repeat("a", 100)
	p2 := strings.Repeat("b", 100)
	text := p1 + "\n\n" + p2

	chunks := Split(text, 150)
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0].Text)
	assert.Equal(t, p2, chunks[1].Text)
}

func TestSplit_DefaultMaxChunkSizeAppliedWhenNonPositive(t *testing.T) {
	text := strings.Repeat("x", DefaultMaxChunkSize+500)
	chunks := Split(text, 0)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), DefaultMaxChunkSize)
	}
}

func TestSplit_EmptyTextProducesNoChunks(t *testing.T) {
	chunks := Split("   ", 2000)
	assert.Empty(t, chunks)
}

func TestSplit_OversizeParagraphSplitsAtSentenceBoundary(t *testing.T) {
	sentence := "This is a complete sentence about the matter at hand. "
	text := strings.Repeat(sentence, 20)

	chunks := Split(text, 200)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 200)
	}

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Text)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(rebuilt.String()), " "))
}
