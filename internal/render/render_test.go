package render_test

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/JaimeStill/briefer/internal/pipeline"
	"github.com/JaimeStill/briefer/internal/render"
)

func presentation() pipeline.Presentation {
	return pipeline.Presentation{Slides: []pipeline.Slide{
		{Title: "Problem & Context", LayoutStyle: pipeline.LayoutStandardBullet, Content: []string{"Legacy <batch> jobs", "Manual reconciliation"}},
		{Title: "Solution", LayoutStyle: pipeline.LayoutArchitecture, Content: []string{"Ingest", "Process", "Serve", "Monitor"}},
		{Title: "ROI", LayoutStyle: pipeline.LayoutROI, Content: []string{"40% faster", "$2M saved"}},
		{Title: "Compare", LayoutStyle: pipeline.LayoutSplitData, Content: []string{"Before", "After", "Cost"}},
		{Title: "", LayoutStyle: "Timeline", Content: nil},
	}}
}

func readPackage(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}

	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		parts[f.Name] = string(b)
	}
	return parts
}

func TestRender(t *testing.T) {
	r, err := render.New(nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	data, err := r.Render(presentation(), "Acme Corp", "Minimalist Tech")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	parts := readPackage(t, data)

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/theme/theme1.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide7.xml",
		"ppt/slides/_rels/slide7.xml.rels",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("package missing %s", name)
		}
	}
	if _, ok := parts["ppt/slides/slide8.xml"]; ok {
		t.Error("unexpected eighth slide")
	}

	for name, body := range parts {
		dec := xml.NewDecoder(strings.NewReader(body))
		for {
			_, err := dec.Token()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Errorf("%s is not well-formed: %v", name, err)
				break
			}
		}
	}

	if c := strings.Count(parts["ppt/presentation.xml"], "<p:sldId "); c != 7 {
		t.Errorf("slide ids = %d, want 7", c)
	}

	cover := parts["ppt/slides/slide1.xml"]
	for _, want := range []string{"Acme Corp", "Executive Strategic Architecture", "Theme: Minimalist Tech"} {
		if !strings.Contains(cover, want) {
			t.Errorf("cover missing %q", want)
		}
	}

	first := parts["ppt/slides/slide2.xml"]
	if !strings.Contains(first, "Problem &amp; Context") || !strings.Contains(first, "Legacy &lt;batch&gt; jobs") {
		t.Error("slide text not escaped")
	}

	flow := parts["ppt/slides/slide3.xml"]
	if c := strings.Count(flow, `prst="rightArrow"`); c != 2 {
		t.Errorf("arrows = %d, want 2", c)
	}
	if !strings.Contains(flow, "Monitor") {
		t.Error("overflow step dropped")
	}

	if !strings.Contains(parts["ppt/slides/slide6.xml"], "Executive Summary") {
		t.Error("blank title not defaulted")
	}

	closing := parts["ppt/slides/slide7.xml"]
	if !strings.Contains(closing, "Thank You") || !strings.Contains(closing, "Acme Corp") {
		t.Error("closing slide content missing")
	}

	if !strings.Contains(parts["ppt/theme/theme1.xml"], `val="F5F5F7"`) {
		t.Error("theme does not carry the minimalist palette")
	}
}

func TestRenderDeterministic(t *testing.T) {
	r, _ := render.New(nil)

	a, err := r.Render(presentation(), "Acme Corp", "dark")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, _ := r.Render(presentation(), "Acme Corp", "dark")

	if !bytes.Equal(a, b) {
		t.Error("identical input rendered different bytes")
	}
}

func TestRenderEmpty(t *testing.T) {
	r, _ := render.New(nil)
	if _, err := r.Render(pipeline.Presentation{}, "Acme", ""); !errors.Is(err, render.ErrNoSlides) {
		t.Errorf("err = %v, want ErrNoSlides", err)
	}
}

func TestThemesFor(t *testing.T) {
	themes, err := render.DefaultThemes()
	if err != nil {
		t.Fatalf("load themes: %v", err)
	}

	tests := []struct {
		vibe    string
		primary string
	}{
		{"Google Material", "4285F4"},
		{"Y Combinator Startup", "4285F4"},
		{"Apple-like clean", "000000"},
		{"CYBERPUNK neon", "00FF41"},
		{"Dark mode", "141E50"},
		{"Executive Corporate", "1F497D"},
		{"", "1F497D"},
	}

	for _, tt := range tests {
		t.Run(tt.vibe, func(t *testing.T) {
			if got := themes.For(tt.vibe).Primary; got != tt.primary {
				t.Errorf("primary = %s, want %s", got, tt.primary)
			}
		})
	}
}

func TestLoadThemesRejectsBadColor(t *testing.T) {
	data := []byte(`
default:
  name: Broken
  primary: "blue"
  secondary: "C0C0C0"
  background: "FFFFFF"
  text: "282828"
`)
	if _, err := render.LoadThemes(data); err == nil {
		t.Error("expected error for invalid color")
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Acme Corp":   "Acme_Corp_Executive_Deck.pptx",
		"":            "Enterprise_Executive_Deck.pptx",
		"../../etc":   "etc_Executive_Deck.pptx",
		"A/B\\C":      "ABC_Executive_Deck.pptx",
		"Café Nación": "Café_Nación_Executive_Deck.pptx",
	}
	for in, want := range tests {
		if got := render.FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
