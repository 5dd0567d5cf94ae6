package report

import (
	"fmt"
	"strings"
)

const (
	// PageBreak separates physical pages in extracted document text.
	PageBreak = "\f"
	// PageJoiner is placed between pages inside a chunk.
	PageJoiner = "\n\n"
	// DefaultChunkTokens is the token budget for a single map-phase chunk.
	DefaultChunkTokens = 15000
)

// Chunk is a contiguous run of pages sent to one map-phase call.
// Pages are numbered from 1.
type Chunk struct {
	Text        string
	StartPage   int
	EndPage     int
	Tokens      int
	Index       int
	TotalChunks int
}

// PageRange renders the chunk's pages as "start-end".
func (c Chunk) PageRange() string {
	return fmt.Sprintf("%d-%d", c.StartPage, c.EndPage)
}

// PageCount is the number of pages in the chunk.
func (c Chunk) PageCount() int {
	return c.EndPage - c.StartPage + 1
}

// SplitPages splits document text on PageBreak. Text without a break is a
// single page.
func SplitPages(text string) []string {
	return strings.Split(text, PageBreak)
}

type chunkDraft struct {
	pages     []string
	startPage int
	endPage   int
	tokens    int
}

func (d *chunkDraft) add(page string, pageNum, tokens int) {
	if len(d.pages) == 0 {
		d.startPage = pageNum
	}
	d.pages = append(d.pages, page)
	d.endPage = pageNum
	d.tokens += tokens
}

// ChunkDocument packs the pages of fullText greedily, in order, into chunks
// of at most maxTokensPerChunk estimated tokens. A page is never split: a
// page larger than the budget becomes its own chunk.
func ChunkDocument(fullText string, maxTokensPerChunk int) []Chunk {
	if maxTokensPerChunk <= 0 {
		maxTokensPerChunk = DefaultChunkTokens
	}

	var drafts []chunkDraft
	var current chunkDraft
	for i, page := range SplitPages(fullText) {
		pageTokens := EstimateTokens(page)
		if current.tokens+pageTokens > maxTokensPerChunk && len(current.pages) > 0 {
			drafts = append(drafts, current)
			current = chunkDraft{}
		}
		current.add(page, i+1, pageTokens)
	}
	if len(current.pages) > 0 {
		drafts = append(drafts, current)
	}

	// The total is only known once every page has been placed.
	chunks := make([]Chunk, len(drafts))
	for i, d := range drafts {
		chunks[i] = Chunk{
			Text:        strings.Join(d.pages, PageJoiner),
			StartPage:   d.startPage,
			EndPage:     d.endPage,
			Tokens:      d.tokens,
			Index:       i,
			TotalChunks: len(drafts),
		}
	}
	return chunks
}
