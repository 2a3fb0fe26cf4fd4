package render

import (
	"strings"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

// Dimensions in EMU.
const (
	emuPerInch  = 914400
	slideWidth  = 10 * emuPerInch
	slideHeight = 7.5 * emuPerInch
)

const white = "FFFFFF"

func inches(v float64) int64 { return int64(v * emuPerInch) }

// Font sizes in hundredths of a point.
func pt(v int) int { return v * 100 }

type paragraph struct {
	Text       string
	Align      string
	Color      string
	Size       int
	Bold       bool
	SpaceAfter int
}

type shape struct {
	ID         int
	Name       string
	TextBox    bool
	X, Y, W, H int64
	Geometry   string
	Fill       string
	Anchor     string
	Paragraphs []paragraph
}

type canvas struct {
	shapes []shape
}

func (c *canvas) rect(name, fill string, x, y, w, h int64) *shape {
	return c.add(shape{Name: name, Geometry: "rect", Fill: fill, X: x, Y: y, W: w, H: h, Anchor: "ctr"})
}

func (c *canvas) text(name, anchor string, x, y, w, h int64, paras ...paragraph) *shape {
	return c.add(shape{Name: name, TextBox: true, Geometry: "rect", Anchor: anchor, X: x, Y: y, W: w, H: h, Paragraphs: paras})
}

func (c *canvas) add(s shape) *shape {
	s.ID = len(c.shapes) + 2
	c.shapes = append(c.shapes, s)
	return &c.shapes[len(c.shapes)-1]
}

func coverSlide(org, theme string, p Palette) []shape {
	var c canvas
	c.rect("Background", p.Background, 0, 0, slideWidth, slideHeight)
	c.rect("Accent", p.Primary, 0, 0, inches(4), slideHeight)
	c.text("Title", "t", inches(4.5), inches(2.5), inches(5), inches(2),
		paragraph{Text: org, Align: "l", Color: p.Primary, Size: pt(54), Bold: true},
		paragraph{Text: "Executive Strategic Architecture", Align: "l", Color: p.Secondary, Size: pt(24)},
		paragraph{Text: "Theme: " + theme, Align: "l", Color: p.Secondary, Size: pt(24)},
	)
	return c.shapes
}

func closingSlide(org string, p Palette) []shape {
	var c canvas
	c.rect("Background", p.Primary, 0, 0, slideWidth, slideHeight)
	c.text("Closing", "ctr", inches(1), inches(3), slideWidth-inches(2), inches(2),
		paragraph{Text: org, Align: "ctr", Color: white, Size: pt(60), Bold: true},
		paragraph{Text: "Thank You", Align: "ctr", Color: white, Size: pt(32)},
	)
	return c.shapes
}

func contentSlide(s pipeline.Slide, p Palette) []shape {
	var c canvas
	c.rect("Background", p.Background, 0, 0, slideWidth, slideHeight)
	c.rect("Header", p.Primary, 0, 0, slideWidth, inches(1.2))

	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = "Executive Summary"
	}
	c.text("Title", "ctr", inches(0.5), inches(0.2), slideWidth-inches(1), inches(0.8),
		paragraph{Text: title, Align: "l", Color: white, Size: pt(32), Bold: true})

	switch pipeline.NormalizeLayout(s.LayoutStyle) {
	case pipeline.LayoutFlowchart, pipeline.LayoutArchitecture:
		flow(&c, s.Content, p)
	case pipeline.LayoutKeyMetric, pipeline.LayoutROI:
		metrics(&c, s.Content, p)
	case pipeline.LayoutSplitData:
		split(&c, s.Content, p)
	default:
		c.text("Body", "t", inches(0.5), inches(1.5), slideWidth-inches(1), slideHeight-inches(2),
			bullets(s.Content, p.Text, pt(20), pt(20))...)
	}
	return c.shapes
}

const (
	maxFlowSteps = 3
	maxMetrics   = 2
)

func flow(c *canvas, points []string, p Palette) {
	n := min(len(points), maxFlowSteps)
	boxW, boxH, gap := inches(2.5), inches(1.5), inches(0.5)
	y := inches(3)

	for i := range n {
		x := inches(0.5) + int64(i)*(boxW+gap)
		block := c.rect("Step", p.Secondary, x, y, boxW, boxH)
		block.Paragraphs = []paragraph{{Text: points[i], Align: "ctr", Color: p.Text, Size: pt(16), Bold: true}}

		if i < n-1 {
			arrow := c.rect("Arrow", p.Primary, x+boxW+inches(0.1), y+inches(0.5), inches(0.3), inches(0.5))
			arrow.Geometry = "rightArrow"
		}
	}

	overflow(c, points[n:], p)
}

func metrics(c *canvas, points []string, p Palette) {
	n := min(len(points), maxMetrics)
	w := slideWidth/2 - inches(1)

	for i := range n {
		x := inches(0.5)
		if i == 1 {
			x = slideWidth/2 + inches(0.5)
		}
		c.text("Metric", "ctr", x, inches(2.5), w, inches(2),
			paragraph{Text: points[i], Align: "ctr", Color: p.Primary, Size: pt(28), Bold: true})
	}

	overflow(c, points[n:], p)
}

func split(c *canvas, points []string, p Palette) {
	half := (len(points) + 1) / 2
	w := slideWidth/2 - inches(0.75)
	h := slideHeight - inches(2)

	c.text("Left", "t", inches(0.5), inches(1.5), w, h, bullets(points[:half], p.Text, pt(18), pt(12))...)
	c.rect("Divider", p.Secondary, slideWidth/2-inches(0.025), inches(1.6), inches(0.05), h-inches(0.2))
	c.text("Right", "t", slideWidth/2+inches(0.25), inches(1.5), w, h, bullets(points[half:], p.Text, pt(18), pt(12))...)
}

func overflow(c *canvas, points []string, p Palette) {
	if len(points) == 0 {
		return
	}
	c.text("Notes", "t", inches(0.5), inches(5), slideWidth-inches(1), inches(2),
		bullets(points, p.Text, pt(14), pt(6))...)
}

func bullets(points []string, color string, size, spaceAfter int) []paragraph {
	paras := make([]paragraph, len(points))
	for i, point := range points {
		paras[i] = paragraph{Text: "•  " + point, Align: "l", Color: color, Size: size}
		if i < len(points)-1 {
			paras[i].SpaceAfter = spaceAfter
		}
	}
	return paras
}
