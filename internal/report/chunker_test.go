package report

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"one", 2},
		{"one two three", 4},
		{"one two three four", 6},
		{words("w", 750), 1000},
		{"  leading and trailing  ", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), "text %q", tt.text)
	}
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"only page"}, SplitPages("only page"))
	assert.Equal(t, []string{"a", "b", ""}, SplitPages("a\fb\f"))
}

func TestChunkDocument_PacksPagesGreedily(t *testing.T) {
	// 30 words = 40 tokens per page; budget 100 fits two pages per chunk.
	doc := document(words("a", 30), words("b", 30), words("c", 30), words("d", 30), words("e", 30))

	chunks := ChunkDocument(doc, 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, "1-2", chunks[0].PageRange())
	assert.Equal(t, "3-4", chunks[1].PageRange())
	assert.Equal(t, "5-5", chunks[2].PageRange())
	assert.Equal(t, 80, chunks[0].Tokens)
	assert.Equal(t, words("a", 30)+PageJoiner+words("b", 30), chunks[0].Text)
	assert.Equal(t, 1, chunks[2].PageCount())
}

func TestChunkDocument_NoMarkerIsOnePage(t *testing.T) {
	chunks := ChunkDocument("just some notes", 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, "just some notes", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].StartPage)
	assert.Equal(t, 1, chunks[0].EndPage)
}

func TestChunkDocument_OversizedPageIsNeverSplit(t *testing.T) {
	big := words("evidence", 300) // 400 tokens

	chunks := ChunkDocument(big, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, big, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}

func TestChunkDocument_OversizedPageBetweenSmallPages(t *testing.T) {
	doc := document(words("a", 10), words("big", 300), words("c", 10))

	chunks := ChunkDocument(doc, 50)

	require.Len(t, chunks, 3)
	assert.Equal(t, "1-1", chunks[0].PageRange())
	assert.Equal(t, "2-2", chunks[1].PageRange())
	assert.Equal(t, words("big", 300), chunks[1].Text)
	assert.Equal(t, "3-3", chunks[2].PageRange())
}

func TestChunkDocument_NonPositiveBudgetUsesDefault(t *testing.T) {
	doc := document(words("a", 100), words("b", 100))
	assert.Len(t, ChunkDocument(doc, 0), 1)
	assert.Len(t, ChunkDocument(doc, -5), 1)
}

func randomDocument(r *rand.Rand) (string, []string) {
	n := 1 + r.Intn(25)
	pages := make([]string, n)
	for i := range pages {
		// Pages may be empty and may contain blank lines of their own.
		switch r.Intn(5) {
		case 0:
			pages[i] = ""
		case 1:
			pages[i] = words(fmt.Sprintf("p%d", i), r.Intn(40)) + "\n\n" + words("x", r.Intn(40))
		default:
			pages[i] = words(fmt.Sprintf("p%d", i), r.Intn(200))
		}
	}
	return document(pages...), pages
}

func TestChunkDocument_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	budgets := []int{1, 10, 50, 120, 500, 15000}

	for iter := 0; iter < 200; iter++ {
		doc, pages := randomDocument(r)
		budget := budgets[iter%len(budgets)]

		chunks := ChunkDocument(doc, budget)
		require.NotEmpty(t, chunks)

		nextPage := 1
		var rebuilt []string
		for i, c := range chunks {
			// Index and total are consistent.
			assert.Equal(t, i, c.Index)
			assert.Equal(t, len(chunks), c.TotalChunks)

			// Ranges are contiguous and non-overlapping.
			require.Equal(t, nextPage, c.StartPage, "iteration %d chunk %d", iter, i)
			require.GreaterOrEqual(t, c.EndPage, c.StartPage)
			nextPage = c.EndPage + 1

			// The text holds exactly the pages in its range.
			inRange := pages[c.StartPage-1 : c.EndPage]
			assert.Equal(t, strings.Join(inRange, PageJoiner), c.Text)
			rebuilt = append(rebuilt, inRange...)

			// Only single pages may exceed the budget.
			if c.PageCount() > 1 {
				assert.LessOrEqual(t, c.Tokens, budget)
			}
		}
		assert.Equal(t, len(pages)+1, nextPage)
		assert.Equal(t, pages, rebuilt)
	}
}
