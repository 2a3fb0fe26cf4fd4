package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

const (
	architectureJSON  = `{"summary": "Event-driven microservice on Kafka with a Postgres store."}`
	businessValueJSON = `{"outcomes": ["Cut order latency by 40%", "Scale to peak demand without re-platforming"]}`
)

func narrativeJSON(n int) string {
	var sb strings.Builder
	sb.WriteString(`{"slides": [`)
	for i := range n {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"title": "Slide `)
		sb.WriteByte(byte('A' + i))
		sb.WriteString(`", "layout_style": "Standard Bullet", "talking_points": ["point"]}`)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

const presentationJSON = `{"slides": [
  {"title": "Problem", "layout_style": "Standard Bullet", "content": ["Legacy batch jobs"]},
  {"title": "Solution", "layout_style": "Architecture", "content": ["Kafka", "Postgres"]},
  {"title": "ROI", "layout_style": "ROI", "content": ["40% faster"]},
  {"title": "Change", "layout_style": "Flowchart", "content": ["Pilot", "Rollout"]},
  {"title": "Next Steps", "layout_style": "Standard Bullet", "content": ["Fund phase two"]}
]}`

// fakeGenerator answers each prompt by matching a marker in it. Formatting
// responses are consumed in order so tests can script retries.
type fakeGenerator struct {
	mu         sync.Mutex
	narrative  string
	formatting []string
	err        map[string]error
	prompts    []string
	vision     int
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		narrative:  narrativeJSON(5),
		formatting: []string{presentationJSON},
		err:        map[string]error{},
	}
}

func (f *fakeGenerator) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)

	stage := stageOf(prompt)
	if err := f.err[stage]; err != nil {
		return "", err
	}

	switch stage {
	case pipeline.NodeArchitecture:
		return architectureJSON, nil
	case pipeline.NodeBusinessValue:
		return businessValueJSON, nil
	case pipeline.NodeNarrative:
		return f.narrative, nil
	case pipeline.NodeFormatting:
		resp := f.formatting[0]
		if len(f.formatting) > 1 {
			f.formatting = f.formatting[1:]
		}
		return resp, nil
	}
	return "", errors.New("unexpected prompt")
}

func (f *fakeGenerator) Vision(ctx context.Context, prompt string, images []string) (string, error) {
	f.mu.Lock()
	f.vision++
	f.mu.Unlock()
	return f.Chat(ctx, prompt)
}

func (f *fakeGenerator) promptsFor(stage string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.prompts {
		if stageOf(p) == stage {
			out = append(out, p)
		}
	}
	return out
}

func stageOf(prompt string) string {
	switch {
	case strings.HasPrefix(prompt, "You are an expert software architect"):
		return pipeline.NodeArchitecture
	case strings.HasPrefix(prompt, "You are a Senior Strategic Partner"):
		return pipeline.NodeBusinessValue
	case strings.HasPrefix(prompt, "You are an elite Enterprise Strategy Consultant"):
		return pipeline.NodeNarrative
	case strings.HasPrefix(prompt, "You are a formatting expert"):
		return pipeline.NodeFormatting
	}
	return ""
}

type fakeRetriever struct {
	query string
	k     int
	err   error
}

func (r *fakeRetriever) Search(ctx context.Context, query string, k int) ([]string, error) {
	r.query, r.k = query, k
	if r.err != nil {
		return nil, r.err
	}
	return []string{"TOGAF aligns business and IT architecture."}, nil
}

func newRuntime(gen pipeline.Generator) *pipeline.Runtime {
	return &pipeline.Runtime{
		Generator: gen,
		Retriever: &fakeRetriever{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Limits:    pipeline.DefaultLimits(),
	}
}
