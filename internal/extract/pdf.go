package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfText extracts the page content streams with pdfcpu and collects the
// string operands of the text showing operators, one line per page.
func pdfText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "briefer-pdf-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractContent(bytes.NewReader(data), dir, "source", nil, nil); err != nil {
		return "", err
	}

	pages, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return "", err
	}
	slices.SortFunc(pages, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})

	var sb strings.Builder
	for _, p := range pages {
		stream, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		if text := contentText(stream); text != "" {
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// contentText scans a PDF content stream for literal strings inside text
// objects. Escapes are decoded; hex strings and font encodings are not.
func contentText(stream []byte) string {
	var (
		sb     strings.Builder
		inText bool
	)

	for i := 0; i < len(stream); i++ {
		c := stream[i]
		switch {
		case c == 'B' && i+1 < len(stream) && stream[i+1] == 'T' && boundary(stream, i, 2):
			inText = true
			i++
		case c == 'E' && i+1 < len(stream) && stream[i+1] == 'T' && boundary(stream, i, 2):
			inText = false
			sb.WriteByte(' ')
			i++
		case c == '(' && inText:
			s, n := literal(stream[i:])
			sb.WriteString(s)
			i += n - 1
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func boundary(b []byte, i, n int) bool {
	before := i == 0 || isSpace(b[i-1])
	after := i+n >= len(b) || isSpace(b[i+n])
	return before && after
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

// literal decodes a PDF literal string starting at b[0] == '(' and returns
// the text and the number of bytes consumed.
func literal(b []byte) (string, int) {
	var (
		sb    strings.Builder
		depth = 0
	)

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '\\':
			if i+1 >= len(b) {
				return sb.String(), len(b)
			}
			i++
			switch e := b[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r', 't', 'b', 'f':
				sb.WriteByte(' ')
			case '\r', '\n':
			default:
				if e >= '0' && e <= '7' {
					v, j := 0, 0
					for ; j < 3 && i+j < len(b) && b[i+j] >= '0' && b[i+j] <= '7'; j++ {
						v = v*8 + int(b[i+j]-'0')
					}
					sb.WriteByte(byte(v))
					i += j - 1
				} else {
					sb.WriteByte(e)
				}
			}
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(b)
}
