package render

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Palette is the color set a deck is drawn with. Colors are six digit
// hex RGB values without a leading '#'.
type Palette struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Primary    string   `yaml:"primary"`
	Secondary  string   `yaml:"secondary"`
	Background string   `yaml:"background"`
	Text       string   `yaml:"text"`
}

// Themes maps design vibes onto palettes.
type Themes struct {
	Default  Palette   `yaml:"default"`
	Palettes []Palette `yaml:"palettes"`
}

//go:embed palettes.yaml
var defaultThemes []byte

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// LoadThemes decodes and validates a palette table.
func LoadThemes(data []byte) (*Themes, error) {
	var t Themes
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode themes: %w", err)
	}

	if err := t.Default.validate(); err != nil {
		return nil, fmt.Errorf("default palette: %w", err)
	}
	for i := range t.Palettes {
		if err := t.Palettes[i].validate(); err != nil {
			return nil, fmt.Errorf("palette %d: %w", i, err)
		}
	}
	return &t, nil
}

// DefaultThemes returns the built-in palette table.
func DefaultThemes() (*Themes, error) {
	return LoadThemes(defaultThemes)
}

// For returns the first palette with a keyword contained in vibe, or the
// default palette.
func (t *Themes) For(vibe string) Palette {
	v := strings.ToLower(vibe)
	for _, p := range t.Palettes {
		for _, k := range p.Keywords {
			if strings.Contains(v, strings.ToLower(k)) {
				return p
			}
		}
	}
	return t.Default
}

func (p *Palette) validate() error {
	for _, c := range []struct{ field, value string }{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"background", p.Background},
		{"text", p.Text},
	} {
		if !hexColor.MatchString(c.value) {
			return fmt.Errorf("%s color %q is not six digit hex", c.field, c.value)
		}
	}
	p.Primary = strings.ToUpper(p.Primary)
	p.Secondary = strings.ToUpper(p.Secondary)
	p.Background = strings.ToUpper(p.Background)
	p.Text = strings.ToUpper(p.Text)
	return nil
}
