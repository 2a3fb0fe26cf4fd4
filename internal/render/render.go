// Package render writes presentations as PowerPoint (.pptx) packages.
package render

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

// ContentType is the media type of a rendered deck.
const ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

const defaultOrg = "Enterprise"

// ErrNoSlides indicates the presentation has nothing to render.
var ErrNoSlides = errors.New("presentation has no slides")

//go:embed templates/*.tmpl
var templateFS embed.FS

// modified is stamped on every zip entry so identical input renders to
// identical bytes.
var modified = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Renderer turns a Presentation into a .pptx file.
type Renderer struct {
	themes *Themes
	tmpl   *template.Template
}

// New creates a Renderer. A nil themes uses the built-in palettes.
func New(themes *Themes) (*Renderer, error) {
	if themes == nil {
		t, err := DefaultThemes()
		if err != nil {
			return nil, err
		}
		themes = t
	}

	tmpl, err := template.New("pptx").
		Funcs(template.FuncMap{"esc": escape}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{themes: themes, tmpl: tmpl}, nil
}

type slidePart struct {
	Number int
	ID     int
	RelID  string
	Shapes []shape
}

type deck struct {
	Title   string
	Org     string
	Palette Palette
	Width   int64
	Height  int64
	Slides  []slidePart
}

type part struct {
	name string
	tmpl string
	data any
}

// Render lays out a cover slide, one slide per presentation slide, and a
// closing slide, colored by the palette matching theme.
func (r *Renderer) Render(p pipeline.Presentation, org, theme string) ([]byte, error) {
	if len(p.Slides) == 0 {
		return nil, ErrNoSlides
	}

	org = strings.TrimSpace(org)
	if org == "" {
		org = defaultOrg
	}

	palette := r.themes.For(theme)
	if strings.TrimSpace(theme) == "" {
		theme = palette.Name
	}

	layouts := make([][]shape, 0, len(p.Slides)+2)
	layouts = append(layouts, coverSlide(org, theme, palette))
	for _, s := range p.Slides {
		layouts = append(layouts, contentSlide(s, palette))
	}
	layouts = append(layouts, closingSlide(org, palette))

	d := deck{
		Title:   org + " Executive Deck",
		Org:     org,
		Palette: palette,
		Width:   slideWidth,
		Height:  slideHeight,
	}
	for i, shapes := range layouts {
		d.Slides = append(d.Slides, slidePart{
			Number: i + 1,
			ID:     256 + i,
			RelID:  fmt.Sprintf("rId%d", 6+i),
			Shapes: shapes,
		})
	}

	parts := []part{
		{"[Content_Types].xml", "content_types.xml.tmpl", d},
		{"_rels/.rels", "root.rels.tmpl", d},
		{"docProps/app.xml", "app.xml.tmpl", d},
		{"docProps/core.xml", "core.xml.tmpl", d},
		{"ppt/presentation.xml", "presentation.xml.tmpl", d},
		{"ppt/_rels/presentation.xml.rels", "presentation.xml.rels.tmpl", d},
		{"ppt/presProps.xml", "presProps.xml.tmpl", d},
		{"ppt/viewProps.xml", "viewProps.xml.tmpl", d},
		{"ppt/tableStyles.xml", "tableStyles.xml.tmpl", d},
		{"ppt/theme/theme1.xml", "theme.xml.tmpl", d},
		{"ppt/slideMasters/slideMaster1.xml", "slideMaster.xml.tmpl", d},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slideMaster.xml.rels.tmpl", d},
		{"ppt/slideLayouts/slideLayout1.xml", "slideLayout.xml.tmpl", d},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "slideLayout.xml.rels.tmpl", d},
	}
	for _, s := range d.Slides {
		parts = append(parts,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", s.Number), "slide.xml.tmpl", s},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Number), "slide.xml.rels.tmpl", s},
		)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, pt := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     pt.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", pt.name, err)
		}
		if err := r.tmpl.ExecuteTemplate(w, pt.tmpl, pt.data); err != nil {
			return nil, fmt.Errorf("render %s: %w", pt.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}

	return buf.Bytes(), nil
}

// FileName returns the download name for an organization's deck.
func FileName(org string) string {
	org = strings.TrimSpace(org)
	if org == "" {
		org = defaultOrg
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '_'
		}
		return -1
	}, org)
	if strings.Trim(safe, "_-") == "" {
		safe = defaultOrg
	}
	return safe + "_Executive_Deck.pptx"
}

func escape(s string) (string, error) {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return "", err
	}
	return sb.String(), nil
}
