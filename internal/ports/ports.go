package ports

import (
	"context"
	"errors"
	"time"

	"CreatorProfiler/internal/domain"
)

// ErrJobNotFound is returned by repositories for unknown job identifiers.
var ErrJobNotFound = errors.New("job not found")

// FeedNormalizer pulls entries of one feed into the uniform item shape.
// Implementations degrade to an empty slice instead of failing.
type FeedNormalizer interface {
	Normalize(ctx context.Context, feedURL string, limit int) []domain.RawFeedItem
}

// JobRepository persists jobs, their collected items and reports.
type JobRepository interface {
	CreateJob(ctx context.Context, job domain.Job) (domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
	GetJob(ctx context.Context, id int64) (domain.Job, error)
	PendingJobs(ctx context.Context) ([]domain.Job, error)
	SetStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error
	ReplaceItems(ctx context.Context, jobID int64, items []domain.EnrichedItem) error
	UpsertReport(ctx context.Context, jobID int64, markdown string) error
	// SaveRun replaces the items and the report of a job together; on error
	// neither is changed.
	SaveRun(ctx context.Context, jobID int64, items []domain.EnrichedItem, markdown string) error
	GetReport(ctx context.Context, jobID int64) (domain.JobReport, error)
}

// ReachProvider looks up audience numbers for a video channel.
type ReachProvider interface {
	ChannelStats(ctx context.Context, channelID string) (domain.ReachStats, error)
}

// ReceptionSearcher finds press and criticism links about a creator.
type ReceptionSearcher interface {
	SearchReception(ctx context.Context, name string) ([]domain.Reference, error)
}

// NarrativeRequest is the evidence handed to a narrative writer.
type NarrativeRequest struct {
	Creator       string
	Timeframe     string
	Items         []domain.EnrichedItem
	Aggregate     domain.JobAggregate
	Reach         *domain.ReachStats
	Controversies []domain.Reference
	SectionOrder  []string
}

// NarrativeWriter drafts free-form report prose (e.g., ChatGPT).
type NarrativeWriter interface {
	WriteNarrative(ctx context.Context, req NarrativeRequest) (string, error)
}

// ReportArchive keeps a copy of each rendered report outside the database.
type ReportArchive interface {
	Save(ctx context.Context, jobID int64, markdown string) error
}

// Notifier announces finished reports to Telegram or other channels.
type Notifier interface {
	ReportReady(ctx context.Context, job domain.Job) error
}

// Scheduler controls when the queue is polled.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
