package extract

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestDocxText(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Event driven</w:t></w:r><w:r><w:t xml:space="preserve"> ordering</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t><w:tab/><w:t>para</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	w.Write([]byte(body))
	zw.Close()

	got, err := docxText(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Event driven ordering\nSecond\tpara"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	var empty bytes.Buffer
	zw = zip.NewWriter(&empty)
	zw.Create("word/styles.xml")
	zw.Close()
	if _, err := docxText(empty.Bytes()); err == nil {
		t.Error("expected error for missing document body")
	}
}

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"simple", "BT /F1 12 Tf 72 712 Td (Hello World) Tj ET", "Hello World"},
		{"array", "BT [(Kaf) -20 (ka)] TJ ET", "Kafka"},
		{"escapes", `BT (a \(nested\) \101) Tj ET`, "a (nested) A"},
		{"balanced parens", "BT (f(x)) Tj ET", "f(x)"},
		{"outside text object", "(ignored) BT (kept) Tj ET", "kept"},
		{"two objects", "BT (one) Tj ET\nBT (two) Tj ET", "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentText([]byte(tt.stream)); got != tt.want {
				t.Errorf("contentText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"a/b/README.MD": ".md",
		"tool":          "",
		"v1.2/tool":     "",
		"img.JPEG":      ".jpeg",
	}
	for in, want := range tests {
		if got := extension(in); got != want {
			t.Errorf("extension(%q) = %q, want %q", in, got, want)
		}
	}
}
