package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/logging"
	"CreatorProfiler/internal/ports"
)

// PipelineDeps wires all driven adapters into the queue pipeline.
type PipelineDeps struct {
	Repository ports.JobRepository
	Profiler   *Profiler
	Archive    ports.ReportArchive
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline drains the job queue one job at a time.
type Pipeline struct {
	repository ports.JobRepository
	profiler   *Profiler
	archive    ports.ReportArchive
	notifier   ports.Notifier
	logger     *slog.Logger

	mu sync.Mutex
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		repository: deps.Repository,
		profiler:   deps.Profiler,
		archive:    deps.Archive,
		notifier:   deps.Notifier,
		logger:     logger,
	}
}

// ProcessPending runs every queued or interrupted job, oldest first. A call
// that overlaps a running pass returns immediately so a job never runs twice
// at the same time.
func (p *Pipeline) ProcessPending(ctx context.Context, trigger time.Time) error {
	if p.repository == nil || p.profiler == nil {
		return nil
	}
	if !p.mu.TryLock() {
		p.logger.Debug("queue pass already running", "trigger", trigger)
		return nil
	}
	defer p.mu.Unlock()

	jobs, err := p.repository.PendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("load pending jobs: %w", err)
	}

	var errs []error
	for _, job := range jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.processJob(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) processJob(ctx context.Context, job domain.Job) error {
	logger := p.logger.With("job_id", job.ID)
	logger.Info("job started", "creator", job.Name)

	if err := p.repository.SetStatus(ctx, job.ID, domain.StatusRunning, ""); err != nil {
		return fmt.Errorf("mark job %d running: %w", job.ID, err)
	}

	result := p.profiler.Run(ctx, job)

	if err := p.persist(ctx, job.ID, result); err != nil {
		logger.Error("job failed", "error", err)
		if sErr := p.repository.SetStatus(ctx, job.ID, domain.StatusError, err.Error()); sErr != nil {
			return fmt.Errorf("mark job %d failed: %w", job.ID, errors.Join(err, sErr))
		}
		return err
	}

	if p.archive != nil {
		if err := p.archive.Save(ctx, job.ID, result.Markdown); err != nil {
			logger.Warn("report archive failed", "error", err)
		}
	}

	if err := p.repository.SetStatus(ctx, job.ID, domain.StatusDone, ""); err != nil {
		return fmt.Errorf("mark job %d done: %w", job.ID, err)
	}
	logger.Info("job finished", "items", len(result.Items))

	if p.notifier != nil {
		job.Status = domain.StatusDone
		if err := p.notifier.ReportReady(ctx, job); err != nil {
			logger.Warn("report notification failed", "error", err)
		}
	}
	return nil
}

func (p *Pipeline) persist(ctx context.Context, jobID int64, result Result) error {
	if err := p.repository.SaveRun(ctx, jobID, result.Items, result.Markdown); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	return nil
}
