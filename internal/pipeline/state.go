package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Key names a Pipeline State field. Keys match the JSON field names.
type Key string

const (
	KeyRawDocs            Key = "raw_docs"
	KeyImages             Key = "images"
	KeyOrgName            Key = "org_name"
	KeyPurpose            Key = "purpose"
	KeyPersona            Key = "persona"
	KeyTargetAudience     Key = "target_audience"
	KeyKeyMessage         Key = "key_message"
	KeyThemeVibe          Key = "theme_vibe"
	KeyParsedArchitecture Key = "parsed_architecture"
	KeyBusinessValue      Key = "business_value"
	KeyNarrative          Key = "narrative_structure"
	KeyPresentation       Key = "presentation_json"
	KeyErrors             Key = "errors"
	KeyFormatAttempts     Key = "format_attempts"
)

type presence uint16

const (
	hasArchitecture presence = 1 << iota
	hasBusinessValue
	hasNarrative
	hasPresentation
	hasErrors
	hasFormatAttempts
)

var keyBits = map[Key]presence{
	KeyParsedArchitecture: hasArchitecture,
	KeyBusinessValue:      hasBusinessValue,
	KeyNarrative:          hasNarrative,
	KeyPresentation:       hasPresentation,
	KeyErrors:             hasErrors,
	KeyFormatAttempts:     hasFormatAttempts,
}

func isSeed(k Key) bool {
	switch k {
	case KeyRawDocs, KeyImages, KeyOrgName, KeyPurpose, KeyPersona,
		KeyTargetAudience, KeyKeyMessage, KeyThemeVibe:
		return true
	}
	return false
}

// Seed holds the request-supplied values a run starts from.
type Seed struct {
	RawDocs        string
	Images         []string
	OrgName        string
	Purpose        string
	Persona        string
	TargetAudience string
	KeyMessage     string
	ThemeVibe      string
}

// Slide is one slide of the final presentation.
type Slide struct {
	Title       string   `json:"title"`
	LayoutStyle string   `json:"layout_style"`
	Content     []string `json:"content"`
}

// Presentation is the validated output of the formatting stage.
type Presentation struct {
	Slides []Slide `json:"slides"`
}

// NarrativeSlide is one entry of the narrative structure.
type NarrativeSlide struct {
	Title       string
	LayoutStyle string
	Content     []string
}

// Narrative is the ordered slide title to {layout_style, content} mapping
// produced by the narrative stage. It marshals as a JSON object whose keys
// keep slide order.
type Narrative []NarrativeSlide

type narrativeEntry struct {
	LayoutStyle string   `json:"layout_style"`
	Content     []string `json:"content"`
}

// MarshalJSON encodes the narrative as an object keyed by title, in order.
func (n Narrative) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Title)
		if err != nil {
			return nil, err
		}
		content := s.Content
		if content == nil {
			content = []string{}
		}
		val, err := json.Marshal(narrativeEntry{LayoutStyle: s.LayoutStyle, Content: content})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by title, preserving key order.
func (n *Narrative) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("narrative: expected object")
	}

	var out Narrative
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		title, ok := tok.(string)
		if !ok {
			return fmt.Errorf("narrative: expected string key")
		}
		var entry narrativeEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("narrative %q: %w", title, err)
		}
		out = out.put(NarrativeSlide{Title: title, LayoutStyle: entry.LayoutStyle, Content: entry.Content})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*n = out
	return nil
}

// put inserts s, replacing the value of an existing slide with the same
// title in place.
func (n Narrative) put(s NarrativeSlide) Narrative {
	for i := range n {
		if n[i].Title == s.Title {
			n[i] = s
			return n
		}
	}
	return append(n, s)
}

// State is the accumulated Pipeline State. Values are immutable: Merge
// returns a new State and never clears a field an earlier update produced,
// except Errors.
type State struct {
	RawDocs        string   `json:"raw_docs"`
	Images         []string `json:"images"`
	OrgName        string   `json:"org_name"`
	Purpose        string   `json:"purpose"`
	Persona        string   `json:"persona"`
	TargetAudience string   `json:"target_audience"`
	KeyMessage     string   `json:"key_message"`
	ThemeVibe      string   `json:"theme_vibe"`

	ParsedArchitecture string        `json:"parsed_architecture,omitempty"`
	BusinessValue      []string      `json:"business_value,omitempty"`
	NarrativeStructure Narrative     `json:"narrative_structure,omitempty"`
	PresentationJSON   *Presentation `json:"presentation_json,omitempty"`
	Errors             string        `json:"errors,omitempty"`
	FormatAttempts     int           `json:"format_attempts"`

	produced presence
}

// NewState seeds a State from request values.
func NewState(seed Seed) State {
	return State{
		RawDocs:        seed.RawDocs,
		Images:         seed.Images,
		OrgName:        seed.OrgName,
		Purpose:        seed.Purpose,
		Persona:        seed.Persona,
		TargetAudience: seed.TargetAudience,
		KeyMessage:     seed.KeyMessage,
		ThemeVibe:      seed.ThemeVibe,
	}
}

// Has reports whether key is present. Seeded keys are always present;
// produced keys are present once an update has carried them.
func (s State) Has(k Key) bool {
	if isSeed(k) {
		return true
	}
	return s.produced&keyBits[k] != 0
}

// Update is a partial State returned by a stage. Nil fields are absent.
// Errors set to a pointer to "" clears the error field.
type Update struct {
	ParsedArchitecture *string
	BusinessValue      *[]string
	NarrativeStructure *Narrative
	PresentationJSON   *Presentation
	Errors             *string
	FormatAttempts     *int
}

// Merge returns s with every field carried by u applied.
func (s State) Merge(u Update) State {
	next := s
	if u.ParsedArchitecture != nil {
		next.ParsedArchitecture = *u.ParsedArchitecture
		next.produced |= hasArchitecture
	}
	if u.BusinessValue != nil {
		next.BusinessValue = *u.BusinessValue
		next.produced |= hasBusinessValue
	}
	if u.NarrativeStructure != nil {
		next.NarrativeStructure = *u.NarrativeStructure
		next.produced |= hasNarrative
	}
	if u.PresentationJSON != nil {
		p := *u.PresentationJSON
		next.PresentationJSON = &p
		next.produced |= hasPresentation
	}
	if u.Errors != nil {
		next.Errors = *u.Errors
		next.produced |= hasErrors
	}
	if u.FormatAttempts != nil {
		next.FormatAttempts = *u.FormatAttempts
		next.produced |= hasFormatAttempts
	}
	return next
}

// Presentation returns the formatted presentation, or an empty one when
// formatting has not produced one.
func (s State) Presentation() Presentation {
	if s.PresentationJSON == nil {
		return Presentation{}
	}
	return *s.PresentationJSON
}

func ptr[T any](v T) *T { return &v }
