// Package extract turns uploaded archives and documents into the raw text
// and images the pipeline is seeded with.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Result is the extracted content of an upload.
type Result struct {
	Text   string
	Images []string
	Files  int
}

// Text decodes a plain text or markdown upload.
func Text(data []byte) (Result, error) {
	if !utf8.Valid(data) {
		return Result{}, ErrInvalidEncoding
	}
	return Result{Text: string(data), Files: 1}, nil
}

// DefaultMaxExtracted bounds the decompressed bytes read from one archive
// when no budget is given.
const DefaultMaxExtracted int64 = 200 * 1024 * 1024

type entry struct {
	text  string
	image string
	ok    bool
}

// Archive walks a zip archive in entry order. Readable text is appended
// under a "--- File: name ---" marker; HTML is reduced to its visible text;
// PDF and DOCX text is extracted; PNG and JPEG files become data URIs.
// Directories, __MACOSX metadata, and files that yield nothing are skipped
// silently. Decompressed entries share maxExtracted bytes (zero selects
// DefaultMaxExtracted); exceeding it fails with ErrArchiveTooLarge. Otherwise
// only an unreadable archive is an error.
func Archive(ctx context.Context, data []byte, maxExtracted int64) (Result, error) {
	if maxExtracted <= 0 {
		maxExtracted = DefaultMaxExtracted
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") || strings.HasPrefix(f.Name, "__MACOSX") {
			continue
		}
		files = append(files, f)
	}

	entries := make([]entry, len(files))

	var remaining atomic.Int64
	remaining.Store(maxExtracted)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(files)))

	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			e, err := extractFile(gctx, f, &remaining)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var (
		sb     strings.Builder
		result Result
	)
	for _, e := range entries {
		if !e.ok {
			continue
		}
		result.Files++
		if e.image != "" {
			result.Images = append(result.Images, e.image)
			continue
		}
		sb.WriteString(e.text)
	}
	result.Text = sb.String()
	return result, nil
}

func extractFile(ctx context.Context, f *zip.File, remaining *atomic.Int64) (entry, error) {
	data, err := readFile(f, remaining)
	if errors.Is(err, ErrArchiveTooLarge) {
		return entry{}, fmt.Errorf("%w: %s", err, f.Name)
	}
	if err != nil {
		return entry{}, nil
	}

	name := f.Name
	ext := extension(name)

	if utf8.Valid(data) {
		text := string(data)
		if ext == ".html" || ext == ".htm" {
			if t, err := htmlText(data); err == nil {
				text = t
			}
		}
		return entry{text: section(name, text), ok: true}, nil
	}

	switch ext {
	case ".docx":
		if t, err := docxText(data); err == nil {
			return entry{text: section(name, t), ok: true}, nil
		}
	case ".png", ".jpg", ".jpeg":
		if uri, err := imageDataURI(data, ext); err == nil {
			return entry{image: uri, ok: true}, nil
		}
	case ".pdf":
		if t, err := pdfText(ctx, data); err == nil {
			return entry{text: section(name+" (PDF)", t), ok: true}, nil
		}
	}
	return entry{}, nil
}

// readFile decompresses f, charging what it reads against remaining. The
// declared size is checked first, and the read itself is capped, since the
// header can understate it.
func readFile(f *zip.File, remaining *atomic.Int64) ([]byte, error) {
	budget := remaining.Load()
	if f.UncompressedSize64 > uint64(max(budget, 0)) {
		return nil, ErrArchiveTooLarge
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, err
	}
	if remaining.Add(-int64(len(data))) < 0 {
		return nil, ErrArchiveTooLarge
	}
	return data, nil
}

func section(name, text string) string {
	return "\n\n--- File: " + name + " ---\n" + text
}

func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || strings.ContainsRune(name[i:], '/') {
		return ""
	}
	return strings.ToLower(name[i:])
}

func workerCount(files int) int {
	return max(min(runtime.NumCPU(), files), 1)
}
