package pipeline_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

type emitted struct {
	nodes  []string
	states []pipeline.State
}

func (e *emitted) emit(node string, s pipeline.State) {
	e.nodes = append(e.nodes, node)
	e.states = append(e.states, s)
}

func acmeSeed() pipeline.State {
	return pipeline.NewState(pipeline.Seed{
		RawDocs:        "We built a microservice using Kafka and Postgres",
		OrgName:        "Acme Corp",
		Purpose:        "Secure Series B",
		Persona:        "CFO",
		TargetAudience: "Board",
		KeyMessage:     "Faster orders",
		ThemeVibe:      "Minimalist Tech",
	})
}

func TestExecuteSuccess(t *testing.T) {
	gen := newFakeGenerator()
	var rec emitted

	final, err := pipeline.Execute(context.Background(), newRuntime(gen), acmeSeed(), rec.emit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{pipeline.NodeArchitecture, pipeline.NodeBusinessValue, pipeline.NodeNarrative, pipeline.NodeFormatting}
	if !reflect.DeepEqual(rec.nodes, want) {
		t.Errorf("emit order = %v, want %v", rec.nodes, want)
	}

	if final.Errors != "" {
		t.Errorf("errors = %q, want empty", final.Errors)
	}
	if final.FormatAttempts != 1 {
		t.Errorf("attempts = %d, want 1", final.FormatAttempts)
	}
	if n := len(final.Presentation().Slides); n < 5 || n > 7 {
		t.Errorf("slides = %d, want 5..7", n)
	}
	if final.OrgName != "Acme Corp" || final.RawDocs == "" {
		t.Error("seed fields lost")
	}
}

func TestExecuteStatesAreMonotonic(t *testing.T) {
	gen := newFakeGenerator()
	var rec emitted
	seed := acmeSeed()

	if _, err := pipeline.Execute(context.Background(), newRuntime(gen), seed, rec.emit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := []pipeline.Key{
		pipeline.KeyParsedArchitecture,
		pipeline.KeyBusinessValue,
		pipeline.KeyNarrative,
		pipeline.KeyPresentation,
	}

	for i, s := range rec.states {
		if s.OrgName != seed.OrgName || s.Persona != seed.Persona || s.RawDocs != seed.RawDocs {
			t.Errorf("state %d lost seed fields", i)
		}
		for j := 0; j <= i; j++ {
			if !s.Has(keys[j]) {
				t.Errorf("state %d missing %s", i, keys[j])
			}
		}
	}
}

func TestExecuteRetriesFormatting(t *testing.T) {
	gen := newFakeGenerator()
	gen.formatting = []string{`{"pages": []}`, presentationJSON}
	var rec emitted

	final, err := pipeline.Execute(context.Background(), newRuntime(gen), acmeSeed(), rec.emit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if final.FormatAttempts != 2 {
		t.Errorf("attempts = %d, want 2", final.FormatAttempts)
	}
	if final.Errors != "" {
		t.Errorf("errors = %q, want cleared", final.Errors)
	}

	prompts := gen.promptsFor(pipeline.NodeFormatting)
	if len(prompts) != 2 {
		t.Fatalf("formatting prompts = %d, want 2", len(prompts))
	}

	failed := rec.states[3]
	if failed.Errors == "" || len(failed.Presentation().Slides) != 0 {
		t.Errorf("failed attempt state = %+v", failed)
	}
}

func TestExecuteRetriesShortPresentation(t *testing.T) {
	gen := newFakeGenerator()
	gen.formatting = []string{
		`{"slides": [
			{"title": "Only", "layout_style": "Standard Bullet", "content": ["one"]},
			{"title": "Briefer rocks", "layout_style": "Standard Bullet", "content": ["by Briefer"]}
		]}`,
		presentationJSON,
	}

	final, err := pipeline.Execute(context.Background(), newRuntime(gen), acmeSeed(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.FormatAttempts != 2 {
		t.Errorf("attempts = %d, want 2", final.FormatAttempts)
	}
	if n := len(final.Presentation().Slides); n != 5 {
		t.Errorf("slides = %d, want 5", n)
	}
}

func TestExecuteExhaustsFormatting(t *testing.T) {
	gen := newFakeGenerator()
	gen.formatting = []string{`{"slides": [{"title": "A"}]}`}

	final, err := pipeline.Execute(context.Background(), newRuntime(gen), acmeSeed(), nil)
	if !errors.Is(err, pipeline.ErrFormattingExhausted) {
		t.Fatalf("err = %v, want ErrFormattingExhausted", err)
	}

	if n := len(gen.promptsFor(pipeline.NodeFormatting)); n != 3 {
		t.Errorf("formatting prompts = %d, want 3", n)
	}
	if final.FormatAttempts != 3 {
		t.Errorf("attempts = %d, want 3", final.FormatAttempts)
	}
	if final.Errors == "" {
		t.Error("errors cleared on exhaustion")
	}
	if final.NarrativeStructure == nil {
		t.Error("narrative lost on exhaustion")
	}
}

func TestExecuteStageFailure(t *testing.T) {
	boom := errors.New("model unavailable")

	tests := []struct {
		name      string
		configure func(*fakeGenerator)
		wantErr   error
		wantHas   pipeline.Key
		wantEmits int
	}{
		{
			name:      "business value transport error",
			configure: func(g *fakeGenerator) { g.err[pipeline.NodeBusinessValue] = boom },
			wantErr:   boom,
			wantHas:   pipeline.KeyParsedArchitecture,
			wantEmits: 1,
		},
		{
			name:      "narrative too short",
			configure: func(g *fakeGenerator) { g.narrative = narrativeJSON(2) },
			wantErr:   pipeline.ErrTooFewSlides,
			wantHas:   pipeline.KeyBusinessValue,
			wantEmits: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newFakeGenerator()
			tt.configure(gen)
			var rec emitted

			last, err := pipeline.Execute(context.Background(), newRuntime(gen), acmeSeed(), rec.emit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(rec.nodes) != tt.wantEmits {
				t.Errorf("emits = %d, want %d", len(rec.nodes), tt.wantEmits)
			}
			if !last.Has(tt.wantHas) {
				t.Errorf("last state missing %s", tt.wantHas)
			}
			if last.Has(pipeline.KeyPresentation) {
				t.Error("presentation produced despite failure")
			}
		})
	}
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := newFakeGenerator()
	gen.err[pipeline.NodeArchitecture] = context.Canceled

	if _, err := pipeline.Execute(ctx, newRuntime(gen), acmeSeed(), nil); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
