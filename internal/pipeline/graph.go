// Package pipeline runs the four-stage deck generation graph: architecture
// extraction, business value mapping, narrative structuring, and formatting
// with bounded self-correction.
package pipeline

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Node names.
const (
	NodeArchitecture  = "architecture"
	NodeBusinessValue = "business_value"
	NodeNarrative     = "narrative"
	NodeFormatting    = "formatting"
	NodeFinalize      = "finalize"
)

const keyPipeline = "pipeline"

// Emit receives the accumulated state after every completed stage.
type Emit func(node string, s State)

// Execute runs the graph from seed to completion. emit may be nil. The
// returned State is the last accumulated state, also on error. When
// formatting still fails validation after Limits.MaxFormatAttempts,
// Execute returns ErrFormattingExhausted.
func Execute(ctx context.Context, rt *Runtime, seed State, emit Emit) (State, error) {
	last := seed
	record := func(node string, s State) {
		last = s
		if emit != nil {
			emit(node, s)
		}
	}

	graph, err := buildGraph(rt, record)
	if err != nil {
		return last, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil).Set(keyPipeline, seed)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return last, fmt.Errorf("execute graph: %w", err)
	}

	result, err := current(final)
	if err != nil {
		return last, err
	}
	if result.Errors != "" {
		return result, fmt.Errorf("%w after %d attempts: %s", ErrFormattingExhausted, result.FormatAttempts, result.Errors)
	}
	return result, nil
}

func buildGraph(rt *Runtime, emit Emit) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("briefer-deck")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{NodeArchitecture, stageNode(NodeArchitecture, ArchitectureStage(rt), emit)},
		{NodeBusinessValue, stageNode(NodeBusinessValue, BusinessValueStage(rt), emit)},
		{NodeNarrative, stageNode(NodeNarrative, NarrativeStage(rt), emit)},
		{NodeFormatting, stageNode(NodeFormatting, FormattingStage(rt), emit)},
		{NodeFinalize, state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
			return s, nil
		})},
	}
	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	retry := retryFormatting(rt.Limits.MaxFormatAttempts)

	for _, pair := range [][2]string{
		{NodeArchitecture, NodeBusinessValue},
		{NodeBusinessValue, NodeNarrative},
		{NodeNarrative, NodeFormatting},
	} {
		if err := graph.AddEdge(pair[0], pair[1], nil); err != nil {
			return nil, err
		}
	}

	// formatting → formatting (validation failed, attempts remain)
	if err := graph.AddEdge(NodeFormatting, NodeFormatting, retry); err != nil {
		return nil, err
	}

	// formatting → finalize (valid, or attempts exhausted)
	if err := graph.AddEdge(NodeFormatting, NodeFinalize, state.Not(retry)); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint(NodeArchitecture); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint(NodeFinalize); err != nil {
		return nil, err
	}

	return graph, nil
}

// retryFormatting loops formatting back on itself while it reports an error
// and attempts remain.
func retryFormatting(maxAttempts int) func(state.State) bool {
	return func(s state.State) bool {
		ps, err := current(s)
		if err != nil {
			return false
		}
		return ps.Errors != "" && ps.FormatAttempts < maxAttempts
	}
}

func stageNode(name string, stage Stage, emit Emit) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := current(s)
		if err != nil {
			return s, fmt.Errorf("%s: %w", name, err)
		}

		update, err := stage(ctx, ps)
		if err != nil {
			return s, fmt.Errorf("%s: %w", name, err)
		}

		next := ps.Merge(update)
		emit(name, next)
		return s.Set(keyPipeline, next), nil
	})
}

func current(s state.State) (State, error) {
	val, ok := s.Get(keyPipeline)
	if !ok {
		return State{}, fmt.Errorf("%w: missing %s", ErrInvalidState, keyPipeline)
	}
	ps, ok := val.(State)
	if !ok {
		return State{}, fmt.Errorf("%w: %s is %T", ErrInvalidState, keyPipeline, val)
	}
	return ps, nil
}
