package report

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

// fakeGenerator records every request and answers by system prompt:
// map calls return a summary naming their pages, reduce calls and
// single-pass calls echo the user prompt back so tests can inspect it.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []textgen.Request
	respond func(ctx context.Context, req textgen.Request) (string, error)
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{respond: defaultResponse}
}

func (f *fakeGenerator) Complete(ctx context.Context, req textgen.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.respond(ctx, req)
}

func (f *fakeGenerator) callsFor(system string) []textgen.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []textgen.Request
	for _, c := range f.calls {
		if c.System == system {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGenerator) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var pagesPattern = regexp.MustCompile(`\(Pages (\d+-\d+)\)`)

func pagesOf(prompt string) string {
	m := pagesPattern.FindStringSubmatch(prompt)
	if m == nil {
		return ""
	}
	return m[1]
}

func defaultResponse(_ context.Context, req textgen.Request) (string, error) {
	switch req.System {
	case AnalystSystemPrompt:
		return "summary of pages " + pagesOf(req.User), nil
	default:
		return req.User, nil
	}
}

// words returns n copies of word separated by spaces.
func words(word string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

// document joins pages with the page break marker.
func document(pages ...string) string {
	return strings.Join(pages, PageBreak)
}
