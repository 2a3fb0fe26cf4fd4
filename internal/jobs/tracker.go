package jobs

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/pipeline"
	"github.com/JaimeStill/briefer/pkg/lifecycle"
	"github.com/JaimeStill/briefer/pkg/pagination"
)

// Tracker is the in-memory registry of job records. It is safe for
// concurrent use; readers never observe a partially applied update.
type Tracker struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]*Job
	ttl     time.Duration
	maxJobs int
	now     func() time.Time
	logger  *slog.Logger
}

// NewTracker creates a Tracker. Terminal records older than ttl are removed
// by Sweep; maxJobs caps the number of tracked records. Zero disables
// either bound.
func NewTracker(ttl time.Duration, maxJobs int, logger *slog.Logger) *Tracker {
	return &Tracker{
		jobs:    make(map[uuid.UUID]*Job),
		ttl:     ttl,
		maxJobs: maxJobs,
		now:     time.Now,
		logger:  logger.With("system", "jobs"),
	}
}

// RunJanitor sweeps expired records on interval until the lifecycle
// context is cancelled.
func (t *Tracker) RunJanitor(lc *lifecycle.Coordinator, interval time.Duration) {
	if interval <= 0 || t.ttl <= 0 {
		return
	}

	lc.Go(func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.logger.Info("janitor stopped")
				return
			case <-ticker.C:
				if n := t.Sweep(); n > 0 {
					t.logger.Info("evicted expired jobs", "count", n)
				}
			}
		}
	})
}

// Create registers a new job in the uploading status. When the tracker is
// full the oldest terminal record is evicted; if every record is still
// running, Create fails with ErrCapacity.
func (t *Tracker) Create(id uuid.UUID, owner, filename string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.jobs[id]; ok {
		return Job{}, ErrDuplicate
	}

	if t.maxJobs > 0 && len(t.jobs) >= t.maxJobs {
		oldest := t.oldestTerminal()
		if oldest == nil {
			return Job{}, ErrCapacity
		}
		delete(t.jobs, oldest.ID)
		t.logger.Debug("evicted job for capacity", "job_id", oldest.ID)
	}

	now := t.now()
	job := &Job{
		ID:        id,
		Owner:     owner,
		Filename:  filename,
		Status:    StatusUploading,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.jobs[id] = job
	return job.clone(), nil
}

// Update applies fn to a working copy of the record and stores the result.
// Identity fields cannot be changed, and a terminal record rejects any
// status change with ErrTerminal.
func (t *Tracker) Update(id uuid.UUID, fn func(*Job)) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}

	next := *job
	fn(&next)

	next.ID, next.Owner, next.CreatedAt = job.ID, job.Owner, job.CreatedAt
	if !next.Status.valid() {
		return Job{}, ErrInvalidStatus
	}
	if job.Status.Terminal() && next.Status != job.Status {
		return Job{}, ErrTerminal
	}
	if next.Status.Terminal() && !job.Status.Terminal() && next.CompletedAt == nil {
		now := t.now()
		next.CompletedAt = &now
	}

	next.UpdatedAt = t.now()
	*job = next
	return job.clone(), nil
}

// Start moves the job to processing.
func (t *Tracker) Start(id uuid.UUID) (Job, error) {
	return t.transition(id, func(j *Job) {
		j.Status = StatusProcessing
	})
}

// SetState replaces the state snapshot of a running job.
func (t *Tracker) SetState(id uuid.UUID, s pipeline.State) (Job, error) {
	return t.transition(id, func(j *Job) {
		j.State = s
	})
}

// Complete marks the job completed with the final state and the storage
// key of the rendered deck.
func (t *Tracker) Complete(id uuid.UUID, s pipeline.State, outputKey string) (Job, error) {
	return t.transition(id, func(j *Job) {
		j.State = s
		j.OutputKey = outputKey
		j.Status = StatusCompleted
	})
}

// Fail marks the job with a failure status and message. status must be
// StatusError or StatusFailedFormatting.
func (t *Tracker) Fail(id uuid.UUID, status Status, msg string) (Job, error) {
	if status != StatusError && status != StatusFailedFormatting {
		return Job{}, ErrInvalidStatus
	}
	return t.transition(id, func(j *Job) {
		j.Status = status
		j.ErrorMsg = msg
	})
}

func (t *Tracker) transition(id uuid.UUID, fn func(*Job)) (Job, error) {
	var rejected bool
	out, err := t.Update(id, func(j *Job) {
		if j.Status.Terminal() {
			rejected = true
			return
		}
		fn(j)
	})
	if err != nil {
		return Job{}, err
	}
	if rejected {
		return Job{}, ErrTerminal
	}
	return out, nil
}

// Remove deletes a record regardless of status.
func (t *Tracker) Remove(id uuid.UUID) {
	t.mu.Lock()
	delete(t.jobs, id)
	t.mu.Unlock()
}

// Find returns a copy of the job with the given id.
func (t *Tracker) Find(id uuid.UUID) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job.clone(), nil
}

// List returns one page of the owner's jobs, newest first unless page.Sort
// names created_at, updated_at, filename, or status. Search filters by a
// case-insensitive filename substring.
func (t *Tracker) List(owner string, page pagination.PageRequest) pagination.PageResult[Job] {
	search := strings.ToLower(page.Search)

	t.mu.RLock()
	items := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		if job.Owner != owner {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(job.Filename), search) {
			continue
		}
		items = append(items, job.clone())
	}
	t.mu.RUnlock()

	field, desc := page.SortField()
	if field == "" {
		field, desc = "created_at", true
	}

	slices.SortStableFunc(items, func(a, b Job) int {
		c := compareField(a, b, field)
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if desc {
			return -c
		}
		return c
	})

	return pagination.Slice(items, page)
}

// Sweep removes terminal records whose completion is older than the TTL
// and returns the number removed. Running jobs are never removed.
func (t *Tracker) Sweep() int {
	if t.ttl <= 0 {
		return 0
	}

	cutoff := t.now().Add(-t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	var n int
	for id, job := range t.jobs {
		if job.Status.Terminal() && job.finishedAt().Before(cutoff) {
			delete(t.jobs, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

func (t *Tracker) oldestTerminal() *Job {
	var oldest *Job
	for _, job := range t.jobs {
		if !job.Status.Terminal() {
			continue
		}
		if oldest == nil || job.finishedAt().Before(oldest.finishedAt()) {
			oldest = job
		}
	}
	return oldest
}

func (j *Job) finishedAt() time.Time {
	if j.CompletedAt != nil {
		return *j.CompletedAt
	}
	return j.UpdatedAt
}

func compareField(a, b Job, field string) int {
	switch field {
	case "filename":
		return strings.Compare(a.Filename, b.Filename)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}
