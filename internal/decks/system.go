package decks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/extract"
	"github.com/JaimeStill/briefer/internal/jobs"
	"github.com/JaimeStill/briefer/internal/pipeline"
	"github.com/JaimeStill/briefer/internal/render"
	"github.com/JaimeStill/briefer/pkg/lifecycle"
	"github.com/JaimeStill/briefer/pkg/pagination"
	"github.com/JaimeStill/briefer/pkg/storage"
)

// System defines the public contract for deck generation.
type System interface {
	Handler(authenticate func(http.Handler) http.Handler, maxUploadSize int64) *Handler
	Start(lc *lifecycle.Coordinator) error

	Submit(ctx context.Context, cmd SubmitCommand) (jobs.Job, error)
	Status(id uuid.UUID) (jobs.Job, error)
	Download(ctx context.Context, id uuid.UUID) (*Deck, error)
	List(owner string, page pagination.PageRequest) pagination.PageResult[jobs.Job]
}

// Renderer writes a presentation as a deck file.
type Renderer interface {
	Render(p pipeline.Presentation, org, theme string) ([]byte, error)
}

// Options size the worker pool and the tracker janitor.
type Options struct {
	Workers         int
	QueueSize       int
	JanitorInterval time.Duration
	// MaxExtracted bounds the decompressed size of an uploaded archive.
	MaxExtracted int64
}

type service struct {
	tracker      *jobs.Tracker
	driver       *Driver
	runtime      *pipeline.Runtime
	renderer     Renderer
	store        storage.System
	pagination   pagination.Config
	janitor      time.Duration
	maxExtracted int64
	logger       *slog.Logger
}

// New creates the deck generation System.
func New(
	tracker *jobs.Tracker,
	runtime *pipeline.Runtime,
	renderer Renderer,
	store storage.System,
	pagination pagination.Config,
	opts Options,
	logger *slog.Logger,
) System {
	s := &service{
		tracker:      tracker,
		runtime:      runtime,
		renderer:     renderer,
		store:        store,
		pagination:   pagination,
		janitor:      opts.JanitorInterval,
		maxExtracted: opts.MaxExtracted,
		logger:       logger.With("system", "decks"),
	}
	s.driver = NewDriver(opts.Workers, opts.QueueSize, s.process, logger)
	return s
}

func (s *service) Handler(authenticate func(http.Handler) http.Handler, maxUploadSize int64) *Handler {
	return NewHandler(s, authenticate, s.logger, s.pagination, maxUploadSize)
}

// Start launches the worker pool and the tracker janitor.
func (s *service) Start(lc *lifecycle.Coordinator) error {
	s.driver.Start(lc)
	s.tracker.RunJanitor(lc, s.janitor)
	return nil
}

// Submit extracts the upload, registers a processing job, and queues its
// run. Nothing is tracked when the upload is rejected or the queue is full.
func (s *service) Submit(ctx context.Context, cmd SubmitCommand) (jobs.Job, error) {
	kind := kindOf(cmd.Filename)
	if kind == kindUnsupported {
		return jobs.Job{}, ErrUnsupportedFile
	}

	content, err := s.extract(ctx, kind, cmd.Data)
	if errors.Is(err, extract.ErrArchiveTooLarge) {
		return jobs.Job{}, fmt.Errorf("%w: %w", ErrFileTooLarge, err)
	}
	if err != nil {
		return jobs.Job{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	id := uuid.New()
	if _, err := s.tracker.Create(id, cmd.Owner, cmd.Filename); err != nil {
		return jobs.Job{}, err
	}

	job, err := s.tracker.Start(id)
	if err != nil {
		s.tracker.Remove(id)
		return jobs.Job{}, err
	}

	task := Task{
		JobID: id,
		Seed: pipeline.Seed{
			RawDocs:        content.Text,
			Images:         content.Images,
			OrgName:        strings.TrimSpace(cmd.OrgName),
			Purpose:        strings.TrimSpace(cmd.Purpose),
			Persona:        strings.TrimSpace(cmd.Persona),
			TargetAudience: strings.TrimSpace(cmd.TargetAudience),
			KeyMessage:     strings.TrimSpace(cmd.KeyMessage),
			ThemeVibe:      strings.TrimSpace(cmd.DesignVibe),
		},
	}
	if err := s.driver.Submit(task); err != nil {
		s.tracker.Remove(id)
		return jobs.Job{}, err
	}

	s.logger.InfoContext(ctx, "job queued",
		"job_id", id,
		"filename", cmd.Filename,
		"files", content.Files,
		"images", len(content.Images),
	)
	return job, nil
}

func (s *service) extract(ctx context.Context, kind uploadKind, data []byte) (extract.Result, error) {
	if kind == kindArchive {
		return extract.Archive(ctx, data, s.maxExtracted)
	}
	return extract.Text(data)
}

// Status returns the tracked job.
func (s *service) Status(id uuid.UUID) (jobs.Job, error) {
	return s.tracker.Find(id)
}

// Download opens the rendered deck of a completed job.
func (s *service) Download(ctx context.Context, id uuid.UUID) (*Deck, error) {
	job, err := s.tracker.Find(id)
	if err != nil {
		return nil, err
	}
	if job.Status != jobs.StatusCompleted || job.OutputKey == "" {
		return nil, ErrNotReady
	}

	body, err := s.store.Download(ctx, job.OutputKey)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	return &Deck{Body: body, FileName: path.Base(job.OutputKey)}, nil
}

// List returns one page of the owner's jobs.
func (s *service) List(owner string, page pagination.PageRequest) pagination.PageResult[jobs.Job] {
	return s.tracker.List(owner, page)
}

// process runs one task to a terminal status. Errors and panics are
// recorded on the job; snapshots already written are kept.
func (s *service) process(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, t.JobID, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	if err := s.run(ctx, t); err != nil {
		s.fail(ctx, t.JobID, err)
	}
}

func (s *service) run(ctx context.Context, t Task) error {
	logger := s.logger.With("job_id", t.JobID)
	start := time.Now()

	final, err := pipeline.Execute(ctx, s.runtime, pipeline.NewState(t.Seed), func(node string, st pipeline.State) {
		if _, err := s.tracker.SetState(t.JobID, st); err != nil {
			logger.WarnContext(ctx, "snapshot rejected", "stage", node, "error", err)
			return
		}
		logger.InfoContext(ctx, "stage completed", "stage", node)
	})
	if err != nil {
		return err
	}

	data, err := s.renderer.Render(final.Presentation(), t.Seed.OrgName, t.Seed.ThemeVibe)
	if err != nil {
		return fmt.Errorf("render deck: %w", err)
	}

	key := outputKey(t.JobID, t.Seed.OrgName)
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), render.ContentType); err != nil {
		return fmt.Errorf("store deck: %w", err)
	}

	if _, err := s.tracker.Complete(t.JobID, final, key); err != nil {
		return err
	}

	logger.InfoContext(ctx, "job completed",
		"slides", len(final.Presentation().Slides),
		"format_attempts", final.FormatAttempts,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return nil
}

func (s *service) fail(ctx context.Context, id uuid.UUID, err error) {
	status := jobs.StatusError
	if errors.Is(err, pipeline.ErrFormattingExhausted) {
		status = jobs.StatusFailedFormatting
	}

	s.logger.ErrorContext(ctx, "job failed", "job_id", id, "status", status, "error", err)
	if _, ferr := s.tracker.Fail(id, status, err.Error()); ferr != nil {
		s.logger.WarnContext(ctx, "failure not recorded", "job_id", id, "error", ferr)
	}
}

func outputKey(id uuid.UUID, org string) string {
	return path.Join("decks", id.String(), render.FileName(org))
}
