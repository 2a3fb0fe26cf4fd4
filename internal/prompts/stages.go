package prompts

import (
	"encoding/json"
	"slices"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

// Stage names the pipeline stage a prompt override targets.
type Stage string

// Stages that accept instruction overrides.
const (
	StageArchitecture  Stage = pipeline.NodeArchitecture
	StageBusinessValue Stage = pipeline.NodeBusinessValue
	StageNarrative     Stage = pipeline.NodeNarrative
	StageFormatting    Stage = pipeline.NodeFormatting
)

var stages = []Stage{
	StageArchitecture,
	StageBusinessValue,
	StageNarrative,
	StageFormatting,
}

// Stages returns the stages that accept overrides, in pipeline order.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON rejects unknown stage values.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates s as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
