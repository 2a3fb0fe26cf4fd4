package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

type fakeInstructions struct {
	text map[string]string
	err  error
}

func (f fakeInstructions) Instructions(ctx context.Context, stage string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	text, ok := f.text[stage]
	return text, ok, nil
}

func TestDefaultInstructionsValidate(t *testing.T) {
	for _, stage := range pipeline.Stages() {
		text, ok := pipeline.DefaultInstructions(stage)
		if !ok || text == "" {
			t.Errorf("%s has no default", stage)
			continue
		}
		if err := pipeline.ValidateInstructions(text); err != nil {
			t.Errorf("%s default: %v", stage, err)
		}
	}
	if _, ok := pipeline.DefaultInstructions(pipeline.NodeFinalize); ok {
		t.Error("finalize should not take instructions")
	}
}

func TestValidateInstructions(t *testing.T) {
	tests := []struct {
		text    string
		wantErr bool
	}{
		{"Plain text with no fields.", false},
		{"For {{.Org}}: {{.MinSlides}} to {{.MaxSlides}} slides, never naming {{.Operators}}.", false},
		{"Unclosed {{.Org", true},
		{"Unknown {{.Company}}", true},
		{"Bad {{call .Org}}", true},
	}
	for _, tt := range tests {
		if err := pipeline.ValidateInstructions(tt.text); (err != nil) != tt.wantErr {
			t.Errorf("ValidateInstructions(%q) = %v, wantErr %v", tt.text, err, tt.wantErr)
		}
	}
}

func TestInstructionOverride(t *testing.T) {
	gen := newFakeGenerator()
	rt := newRuntime(gen)
	rt.Instructions = fakeInstructions{text: map[string]string{
		pipeline.NodeArchitecture: "You are an expert software architect for {{.Org}}.",
	}}

	seed := pipeline.NewState(pipeline.Seed{RawDocs: "Kafka", OrgName: "Acme Corp"})
	if _, err := pipeline.ArchitectureStage(rt)(context.Background(), seed); err != nil {
		t.Fatalf("architecture: %v", err)
	}
	if _, err := pipeline.BusinessValueStage(rt)(context.Background(), seed); err != nil {
		t.Fatalf("business value: %v", err)
	}

	arch := gen.promptsFor(pipeline.NodeArchitecture)
	if len(arch) != 1 || !strings.HasPrefix(arch[0], "You are an expert software architect for Acme Corp.\n\n") {
		t.Errorf("architecture prompt = %q", arch)
	}
	if strings.Contains(arch[0], "Identify the core architecture") {
		t.Error("default instructions rendered alongside the override")
	}

	value := gen.promptsFor(pipeline.NodeBusinessValue)
	if len(value) != 1 || !strings.Contains(value[0], "exclusively advising Acme Corp") {
		t.Errorf("stage without override lost its defaults: %q", value)
	}
}

func TestInstructionSourceErrors(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		source fakeInstructions
		want   string
	}{
		{"source failure", fakeInstructions{err: boom}, "load instructions for architecture"},
		{"unrenderable override", fakeInstructions{text: map[string]string{pipeline.NodeArchitecture: "{{.Nope}}"}}, "render instructions for architecture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newFakeGenerator()
			rt := newRuntime(gen)
			rt.Instructions = tt.source

			_, err := pipeline.ArchitectureStage(rt)(context.Background(), pipeline.NewState(pipeline.Seed{RawDocs: "Kafka"}))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if tt.source.err != nil && !errors.Is(err, boom) {
				t.Errorf("err = %v, want wrapped %v", err, boom)
			}
			if len(gen.prompts) != 0 {
				t.Error("generator called after instructions failed")
			}
		})
	}
}
