package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/report"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

// echoGenerator answers map calls with a fixed summary and writes reports
// by echoing the prompt, which always contains the report template.
func echoGenerator(calls *int, mu *sync.Mutex) textgen.Generator {
	return textgen.GeneratorFunc(func(ctx context.Context, req textgen.Request) (string, error) {
		mu.Lock()
		*calls++
		mu.Unlock()
		if req.System == report.AnalystSystemPrompt {
			return "- facts", nil
		}
		return "```markdown\n" + req.User + "\n```", nil
	})
}

type fakeArchive struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func (a *fakeArchive) Save(_ context.Context, reportID, content string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved == nil {
		a.saved = map[string]string{}
	}
	if _, ok := a.saved[reportID]; !ok {
		a.saved[reportID] = content
	}
	return fmt.Sprintf("gs://reports/%s/report.md", reportID), nil
}

type fakeLedger struct {
	mu        sync.Mutex
	created   []models.ReportJob
	updates   []models.ReportJobUpdate
	createErr error
	updateErr error
}

func (l *fakeLedger) Create(_ context.Context, job *models.ReportJob) error {
	if l.createErr != nil {
		return l.createErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.created {
		if existing.ReportID == job.ReportID {
			return fmt.Errorf("%w: %s", gcp.ErrJobExists, job.ReportID)
		}
	}
	l.created = append(l.created, *job)
	return nil
}

func (l *fakeLedger) Update(_ context.Context, _ string, u models.ReportJobUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, u)
	return l.updateErr
}

func (l *fakeLedger) statuses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, u := range l.updates {
		out = append(out, u.Status)
	}
	return out
}

func (l *fakeLedger) last() models.ReportJobUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updates[len(l.updates)-1]
}

type fakeReader struct {
	objects map[string][]byte
	err     error
}

func (r *fakeReader) ReadObject(_ context.Context, bucket, object string, _ int64) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	data, ok := r.objects[bucket+"/"+object]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}
