package report

import (
	"time"

	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

// Config holds the pipeline limits. The token budgets and the character caps
// are independent knobs; none is derived from another.
type Config struct {
	// TokenThreshold is the estimated size at which notes switch from a
	// single prompt to map-reduce.
	TokenThreshold int
	// ChunkTokens is the per-chunk token budget for the map phase.
	ChunkTokens int
	// MapCharLimit caps the chunk text embedded in each extraction prompt.
	MapCharLimit int
	// ReduceCharLimit caps the combined section summaries in the reduce prompt.
	ReduceCharLimit int
	// NotesCharLimit caps the notes embedded in a single-pass prompt.
	NotesCharLimit int
	// MapConcurrency limits in-flight map calls. Zero or less means no limit.
	MapConcurrency int
	// RequestTimeout bounds a whole Generate call. Zero means no deadline.
	RequestTimeout time.Duration
	Sampling       textgen.Sampling
}

// DefaultConfig returns the limits the report flow ships with.
func DefaultConfig() Config {
	return Config{
		TokenThreshold:  15000,
		ChunkTokens:     DefaultChunkTokens,
		MapCharLimit:    12000,
		ReduceCharLimit: 15000,
		NotesCharLimit:  15000,
		Sampling:        textgen.DefaultSampling(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TokenThreshold <= 0 {
		c.TokenThreshold = d.TokenThreshold
	}
	if c.ChunkTokens <= 0 {
		c.ChunkTokens = d.ChunkTokens
	}
	if c.MapCharLimit <= 0 {
		c.MapCharLimit = d.MapCharLimit
	}
	if c.ReduceCharLimit <= 0 {
		c.ReduceCharLimit = d.ReduceCharLimit
	}
	if c.NotesCharLimit <= 0 {
		c.NotesCharLimit = d.NotesCharLimit
	}
	if c.Sampling == (textgen.Sampling{}) {
		c.Sampling = d.Sampling
	}
	return c
}
