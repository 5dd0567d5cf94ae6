package report

import (
	"context"
	"time"

	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

// Synthesizer runs the reduce phase over the ordered chunk summaries.
type Synthesizer struct {
	gen       textgen.Generator
	sampling  textgen.Sampling
	charLimit int
	now       func() time.Time
}

// NewSynthesizer builds a Synthesizer. A nil now uses time.Now.
func NewSynthesizer(gen textgen.Generator, cfg Config, now func() time.Time) *Synthesizer {
	cfg = cfg.withDefaults()
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{
		gen:       gen,
		sampling:  cfg.Sampling,
		charLimit: cfg.ReduceCharLimit,
		now:       now,
	}
}

// Synthesize writes one report attributed to officerName from summaries,
// which must already be in chunk order.
func (s *Synthesizer) Synthesize(ctx context.Context, summaries []string, officerName string) (string, error) {
	combined := truncateRunes(combineSummaries(summaries), s.charLimit)
	return s.gen.Complete(ctx, textgen.Request{
		System:   ReportWriterSystemPrompt,
		User:     buildSynthesisPrompt(combined, officerName, s.now()),
		Sampling: s.sampling,
	})
}
