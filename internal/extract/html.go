package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th, dt, dd"

// htmlText returns the visible text of an HTML document, one block
// element per line.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	blocks := root.Find(blockSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(blockSelector).Length() == 0
	})
	if blocks.Length() == 0 {
		return compact(root.Text()), nil
	}

	var lines []string
	blocks.Each(func(_ int, s *goquery.Selection) {
		if text := compact(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n"), nil
}

func compact(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
