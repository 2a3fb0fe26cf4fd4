package pipeline

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Hint fallbacks applied when a request leaves a field blank.
const (
	DefaultOrgName          = "the enterprise"
	DefaultPurpose          = "general tech overview"
	DefaultAudience         = "Executive"
	DefaultKeyMessage       = "general operational business value"
	DefaultNarrativeMessage = "strategic impact"
	DefaultThemeVibe        = "Executive Corporate"
)

const architectureInstructions = `You are an expert software architect. Analyze the provided raw technical documentation or repository extract. Identify the core architecture, data schema, and key features.`

const architectureSpec = `Respond with a JSON object matching this exact structure:

{
  "summary": "<architecture summary>"
}

Field constraints:
- summary: Summary of the tech stack, data flow, architecture, schema,
  and key features.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const businessValueInstructions = `You are a Senior Strategic Partner at a top-tier management consultancy exclusively advising {{.Org}}. Map the technical features of this architecture to high-margin business outcomes. Target Audience: '{{.Audience}}'. Design Vibe: '{{.Theme}}'. Core Goal: '{{.Purpose}}'. Key Strategic Imperative to enforce: '{{.Message}}'.

CRITICAL INSTRUCTION: Do NOT merely summarize or repeat the raw input. You must synthesize the data into forward-looking, high-signal business strategy, focusing heavily on operational efficiency, market advantage, and direct ROI for {{.Org}}'s specific context.`

const businessValueSpec = `Respond with a JSON object matching this exact structure:

{
  "outcomes": ["<outcome1>", "<outcome2>"]
}

Field constraints:
- outcomes: ROI, efficiency gains, and business value outcomes, each
  mapped to a technical feature of the architecture.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const narrativeInstructions = `You are an elite Enterprise Strategy Consultant for {{.Org}}. Architect a {{.MinSlides}}-to-{{.MaxSlides}} slide master narrative explicitly tailored for: '{{.Audience}}'. Ultimate Goal: '{{.Purpose}}'. Strategic Imperative: '{{.Message}}'. Design Vibe: '{{.Theme}}'.

CRITICAL INSTRUCTIONS:
1. Your presentation must NOT simply repeat the user's inputs or technical bullet points. It must be highly output-oriented, charting the actionable business journey required to achieve the Ultimate Goal.
2. Do NOT mention {{.Operators}}. The presentation belongs to {{.Org}}.
3. Select a layout_style dynamically: use 'Flowchart' or 'Architecture' when outlining processes or systems; use 'Key Metric' or 'ROI' when highlighting specific numbers or gains; use 'Split Data' for side-by-side comparisons; use 'Standard Bullet' for narrative context.
4. Keep the tone rigorously aligned with the requested '{{.Theme}}'. Speak like a true executive leader.`

const narrativeSpec = `Respond with a JSON object matching this exact structure:

{
  "slides": [
    {
      "title": "<slide title>",
      "layout_style": "<Standard Bullet|Flowchart|Architecture|Key Metric|ROI|Split Data>",
      "talking_points": ["<point1>", "<point2>"]
    }
  ]
}

Field constraints:
- slides: %[1]d to %[2]d slides covering Problem, Solution Architecture,
  ROI, Change Management, and Next Steps.
- title: Unique slide title.
- layout_style: Exactly one value from the listed vocabulary.
- talking_points: Bullet points, metric highlights, or flowchart node
  descriptions for the slide.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const formattingInstructions = `You are a formatting expert. Given a slide narrative dict, format it into a list of slide objects. Each item MUST have 'title', 'layout_style' and precisely 'content' (where content is a list of strings). Output ONLY valid JSON containing an object with a 'slides' array. Do not use markdown like ` + "```json."

const formattingSpec = `Respond with a JSON object matching this exact structure:

{
  "slides": [
    {
      "title": "<slide title>",
      "layout_style": "<layout style>",
      "content": ["<line1>", "<line2>"]
    }
  ]
}`

var defaultInstructions = map[string]string{
	NodeArchitecture:  architectureInstructions,
	NodeBusinessValue: businessValueInstructions,
	NodeNarrative:     narrativeInstructions,
	NodeFormatting:    formattingInstructions,
}

// InstructionSource supplies instruction overrides per stage. ok is false
// when the stage has no active override.
type InstructionSource interface {
	Instructions(ctx context.Context, stage string) (text string, ok bool, err error)
}

// InstructionData is the value instruction templates execute against.
type InstructionData struct {
	Org       string
	Audience  string
	Theme     string
	Purpose   string
	Message   string
	MinSlides int
	MaxSlides int
	Operators string
}

// Stages lists the stages that take instructions, in execution order.
func Stages() []string {
	return []string{NodeArchitecture, NodeBusinessValue, NodeNarrative, NodeFormatting}
}

// DefaultInstructions returns the built-in instruction template for a stage.
func DefaultInstructions(stage string) (string, bool) {
	text, ok := defaultInstructions[stage]
	return text, ok
}

// ValidateInstructions checks that text parses as an instruction template
// and only references InstructionData fields.
func ValidateInstructions(text string) error {
	_, err := executeInstructions("validate", text, InstructionData{})
	return err
}

func executeInstructions(stage, text string, data InstructionData) (string, error) {
	tmpl, err := template.New(stage).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (rt *Runtime) instructions(ctx context.Context, stage string, data InstructionData) (string, error) {
	text := defaultInstructions[stage]
	if rt.Instructions != nil {
		override, ok, err := rt.Instructions.Instructions(ctx, stage)
		if err != nil {
			return "", fmt.Errorf("load instructions for %s: %w", stage, err)
		}
		if ok {
			text = override
		}
	}

	out, err := executeInstructions(stage, text, data)
	if err != nil {
		return "", fmt.Errorf("render instructions for %s: %w", stage, err)
	}
	return out, nil
}

type hints struct {
	org      string
	purpose  string
	audience string
	message  string
	theme    string
}

func resolveHints(s State, messageFallback string) hints {
	return hints{
		org:      fallback(s.OrgName, DefaultOrgName),
		purpose:  fallback(s.Purpose, DefaultPurpose),
		audience: fallback(s.TargetAudience, s.Persona, DefaultAudience),
		message:  fallback(s.KeyMessage, messageFallback),
		theme:    fallback(s.ThemeVibe, DefaultThemeVibe),
	}
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (h hints) data(lim Limits) InstructionData {
	operators := "any product or vendor that prepared this deck"
	if len(lim.OperatorNames) > 0 {
		operators = strings.Join(lim.OperatorNames, " or ")
	}
	return InstructionData{
		Org:       h.org,
		Audience:  h.audience,
		Theme:     h.theme,
		Purpose:   h.purpose,
		Message:   h.message,
		MinSlides: lim.MinSlides,
		MaxSlides: lim.MaxSlides,
		Operators: operators,
	}
}

func architecturePrompt(ctx context.Context, rt *Runtime, s State, text string) (string, error) {
	instructions, err := rt.instructions(ctx, NodeArchitecture, resolveHints(s, DefaultKeyMessage).data(rt.Limits))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(architectureSpec)
	sb.WriteString("\n\n")
	if strings.TrimSpace(text) == "" {
		sb.WriteString("Extract architecture details from the provided images or diagrams.")
	} else {
		sb.WriteString("Extract architecture details from this text:\n\n")
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func businessValuePrompt(ctx context.Context, rt *Runtime, s State) (string, error) {
	h := resolveHints(s, DefaultKeyMessage)
	instructions, err := rt.instructions(ctx, NodeBusinessValue, h.data(rt.Limits))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(businessValueSpec)
	sb.WriteString("\n\nTechnical Architecture:\n\n")
	sb.WriteString(s.ParsedArchitecture)
	return sb.String(), nil
}

func narrativePrompt(ctx context.Context, rt *Runtime, s State, passages []string) (string, error) {
	lim := rt.Limits
	instructions, err := rt.instructions(ctx, NodeNarrative, resolveHints(s, DefaultNarrativeMessage).data(lim))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, narrativeSpec, lim.MinSlides, lim.MaxSlides)

	if len(passages) > 0 {
		sb.WriteString("\n\nUse the following enterprise terminology ONLY if it aligns with the requested output:\n\n")
		sb.WriteString(strings.Join(passages, "\n\n"))
	}

	sb.WriteString("\n\nTechnical Architecture capabilities:\n")
	sb.WriteString(s.ParsedArchitecture)
	sb.WriteString("\n\nStrategic Business Value Outcomes:\n")
	sb.WriteString(strings.Join(s.BusinessValue, "\n"))
	sb.WriteString("\n\nGenerate the compelling narrative slides mapping strictly to the layout styles and strategic talking points.")
	return sb.String(), nil
}

func formattingPrompt(ctx context.Context, rt *Runtime, s State, narrative []byte) (string, error) {
	instructions, err := rt.instructions(ctx, NodeFormatting, resolveHints(s, DefaultKeyMessage).data(rt.Limits))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(formattingSpec)
	if s.Errors != "" {
		sb.WriteString("\n\nPrevious attempt failed with error:\n")
		sb.WriteString(s.Errors)
		sb.WriteString("\nPlease fix the JSON formatting.")
	}
	sb.WriteString("\n\nNarrative Structure Dict:\n")
	sb.Write(narrative)
	return sb.String(), nil
}
