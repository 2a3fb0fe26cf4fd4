package jobs

import "github.com/JaimeStill/briefer/internal/pipeline"

// Progress labels reported as a job's current step.
const (
	LabelParsing    = "Parsing Architecture"
	LabelExtracting = "Extracting Business Value"
	LabelNarrative  = "Structuring Narrative"
	LabelFormatting = "Formatting"
	LabelCompleted  = "Completed"
)

// Label infers the human-readable phase of a run from which state fields
// are present. The latest produced field wins, so the label never moves
// backwards while the state only accumulates.
func Label(s pipeline.State, status Status) string {
	switch {
	case status == StatusCompleted:
		return LabelCompleted
	case s.Has(pipeline.KeyNarrative):
		return LabelFormatting
	case s.Has(pipeline.KeyBusinessValue):
		return LabelNarrative
	case s.Has(pipeline.KeyParsedArchitecture):
		return LabelExtracting
	}
	return LabelParsing
}
