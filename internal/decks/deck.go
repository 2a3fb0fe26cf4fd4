// Package decks runs deck generation jobs: it accepts uploads, drives the
// pipeline on a worker pool, renders the result, and serves the download.
package decks

import (
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/pipeline"
)

// SubmitCommand carries an upload and the request values that seed its run.
type SubmitCommand struct {
	Owner          string
	Persona        string
	Filename       string
	Data           []byte
	OrgName        string
	Purpose        string
	TargetAudience string
	KeyMessage     string
	DesignVibe     string
}

// Kind of upload accepted by Submit, derived from the file extension.
type uploadKind int

const (
	kindUnsupported uploadKind = iota
	kindArchive
	kindMarkdown
)

func kindOf(filename string) uploadKind {
	switch strings.ToLower(path.Ext(filename)) {
	case ".zip":
		return kindArchive
	case ".md":
		return kindMarkdown
	}
	return kindUnsupported
}

// Task is one queued pipeline run.
type Task struct {
	JobID uuid.UUID
	Seed  pipeline.Seed
}

// Deck is a rendered presentation ready to stream. The caller must close Body.
type Deck struct {
	Body     io.ReadCloser
	FileName string
}
