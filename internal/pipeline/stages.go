package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/JaimeStill/briefer/pkg/formatting"
)

// Stage reads the accumulated state and returns a partial update. Stages
// never mutate their input.
type Stage func(ctx context.Context, s State) (Update, error)

type architectureResponse struct {
	Summary string `json:"summary"`
}

type businessValueResponse struct {
	Outcomes []string `json:"outcomes"`
}

type narrativeResponse struct {
	Slides []struct {
		Title         string   `json:"title"`
		LayoutStyle   string   `json:"layout_style"`
		TalkingPoints []string `json:"talking_points"`
	} `json:"slides"`
}

// ArchitectureStage summarizes the raw documents and images. Blank text
// produces an image-only prompt; the vision call is used only when images
// are present.
func ArchitectureStage(rt *Runtime) Stage {
	return func(ctx context.Context, s State) (Update, error) {
		text := s.RawDocs
		if rt.Tokens != nil && rt.Limits.MaxInputTokens > 0 {
			trimmed, err := rt.Tokens.Truncate(text, rt.Limits.MaxInputTokens)
			if err != nil {
				return Update{}, fmt.Errorf("truncate raw docs: %w", err)
			}
			text = trimmed
		}

		prompt, err := architecturePrompt(ctx, rt, s, text)
		if err != nil {
			return Update{}, err
		}

		var content string
		if len(s.Images) > 0 {
			content, err = rt.Generator.Vision(ctx, prompt, s.Images)
		} else {
			content, err = rt.Generator.Chat(ctx, prompt)
		}
		if err != nil {
			return Update{}, fmt.Errorf("generate architecture: %w", err)
		}

		resp, err := formatting.Parse[architectureResponse](content)
		if err != nil {
			return Update{}, fmt.Errorf("architecture response: %w", err)
		}

		return Update{ParsedArchitecture: ptr(resp.Summary)}, nil
	}
}

// BusinessValueStage maps the architecture summary to business outcomes.
func BusinessValueStage(rt *Runtime) Stage {
	return func(ctx context.Context, s State) (Update, error) {
		prompt, err := businessValuePrompt(ctx, rt, s)
		if err != nil {
			return Update{}, err
		}

		content, err := rt.Generator.Chat(ctx, prompt)
		if err != nil {
			return Update{}, fmt.Errorf("generate business value: %w", err)
		}

		resp, err := formatting.Parse[businessValueResponse](content)
		if err != nil {
			return Update{}, fmt.Errorf("business value response: %w", err)
		}

		outcomes := resp.Outcomes
		if outcomes == nil {
			outcomes = []string{}
		}
		return Update{BusinessValue: &outcomes}, nil
	}
}

// NarrativeStage structures the deck. Layout styles are normalized, operator
// names are redacted to the organization name, repeated titles keep the
// position of the first and the content of the last, and the slide count is
// held to the configured bounds.
func NarrativeStage(rt *Runtime) Stage {
	return func(ctx context.Context, s State) (Update, error) {
		var passages []string
		if rt.Retriever != nil && rt.Limits.KnowledgeLimit > 0 {
			found, err := rt.Retriever.Search(ctx, rt.Limits.KnowledgeQuery, rt.Limits.KnowledgeLimit)
			if err != nil {
				return Update{}, fmt.Errorf("retrieve reference passages: %w", err)
			}
			passages = found
		}

		prompt, err := narrativePrompt(ctx, rt, s, passages)
		if err != nil {
			return Update{}, err
		}

		content, err := rt.Generator.Chat(ctx, prompt)
		if err != nil {
			return Update{}, fmt.Errorf("generate narrative: %w", err)
		}

		resp, err := formatting.Parse[narrativeResponse](content)
		if err != nil {
			return Update{}, fmt.Errorf("narrative response: %w", err)
		}

		redact := newRedactor(rt.Limits.OperatorNames, fallback(s.OrgName, DefaultOrgName))

		var narrative Narrative
		for _, slide := range resp.Slides {
			points := make([]string, len(slide.TalkingPoints))
			for i, p := range slide.TalkingPoints {
				points[i] = redact(p)
			}
			narrative = narrative.put(NarrativeSlide{
				Title:       redact(slide.Title),
				LayoutStyle: NormalizeLayout(slide.LayoutStyle),
				Content:     points,
			})
		}

		if len(narrative) < rt.Limits.MinSlides {
			return Update{}, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewSlides, len(narrative), rt.Limits.MinSlides)
		}
		if rt.Limits.MaxSlides > 0 && len(narrative) > rt.Limits.MaxSlides {
			narrative = narrative[:rt.Limits.MaxSlides]
		}

		return Update{NarrativeStructure: &narrative}, nil
	}
}

type rawSlide struct {
	Title       *string   `json:"title"`
	LayoutStyle string    `json:"layout_style"`
	Content     *[]string `json:"content"`
}

type rawPresentation struct {
	Slides *[]rawSlide `json:"slides"`
}

// FormattingStage renders the narrative into the final presentation and
// validates it against the same slide bounds and operator redaction the
// narrative stage applies. Validation failures are returned as an error
// message with an empty presentation, never as a Go error; only generation
// failures are.
func FormattingStage(rt *Runtime) Stage {
	return func(ctx context.Context, s State) (Update, error) {
		narrative, err := json.Marshal(s.NarrativeStructure)
		if err != nil {
			return Update{}, fmt.Errorf("encode narrative: %w", err)
		}

		prompt, err := formattingPrompt(ctx, rt, s, narrative)
		if err != nil {
			return Update{}, err
		}

		content, err := rt.Generator.Chat(ctx, prompt)
		if err != nil {
			return Update{}, fmt.Errorf("generate formatting: %w", err)
		}

		attempts := s.FormatAttempts + 1
		redact := newRedactor(rt.Limits.OperatorNames, fallback(s.OrgName, DefaultOrgName))
		presentation, verr := validatePresentation(content, rt.Limits, redact)
		if verr != nil {
			rt.Logger.WarnContext(ctx, "formatting validation failed", "attempt", attempts, "error", verr)
			return Update{
				PresentationJSON: &Presentation{},
				Errors:           ptr("Malformed JSON: " + verr.Error()),
				FormatAttempts:   &attempts,
			}, nil
		}

		return Update{
			PresentationJSON: &presentation,
			Errors:           ptr(""),
			FormatAttempts:   &attempts,
		}, nil
	}
}

func validatePresentation(content string, lim Limits, redact func(string) string) (Presentation, error) {
	raw, err := formatting.Parse[rawPresentation](content)
	if err != nil {
		return Presentation{}, err
	}
	if raw.Slides == nil {
		return Presentation{}, fmt.Errorf("JSON missing 'slides' key")
	}
	if len(*raw.Slides) == 0 {
		return Presentation{}, fmt.Errorf("'slides' is empty")
	}

	out := Presentation{Slides: make([]Slide, 0, len(*raw.Slides))}
	for i, rs := range *raw.Slides {
		if rs.Title == nil || rs.Content == nil {
			return Presentation{}, fmt.Errorf("slide %d missing 'title' or 'content' keys", i+1)
		}
		points := make([]string, len(*rs.Content))
		for j, p := range *rs.Content {
			points[j] = redact(p)
		}
		out.Slides = append(out.Slides, Slide{
			Title:       redact(*rs.Title),
			LayoutStyle: NormalizeLayout(rs.LayoutStyle),
			Content:     points,
		})
	}

	n := len(out.Slides)
	if n < lim.MinSlides || (lim.MaxSlides > 0 && n > lim.MaxSlides) {
		return Presentation{}, fmt.Errorf("'slides' has %d entries, want %d to %d", n, lim.MinSlides, lim.MaxSlides)
	}
	return out, nil
}

func newRedactor(names []string, replacement string) func(string) string {
	var quoted []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
	}
	if len(quoted) == 0 {
		return func(s string) string { return s }
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return func(s string) string {
		return re.ReplaceAllLiteralString(s, replacement)
	}
}
