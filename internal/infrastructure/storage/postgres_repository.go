package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS creator_jobs (
    id             BIGSERIAL PRIMARY KEY,
    name           TEXT NOT NULL,
    timeframe      TEXT NOT NULL DEFAULT '2020–present',
    yt_channel_url TEXT NOT NULL DEFAULT '',
    podcast_rss    TEXT NOT NULL DEFAULT '',
    site_rss       TEXT NOT NULL DEFAULT '',
    other_links    TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'queued',
    error_message  TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_creator_jobs_status ON creator_jobs (status, created_at);

CREATE TABLE IF NOT EXISTS collected_items (
    id                  BIGSERIAL PRIMARY KEY,
    job_id              BIGINT NOT NULL REFERENCES creator_jobs (id) ON DELETE CASCADE,
    position            INT NOT NULL,
    date                TEXT NOT NULL DEFAULT '',
    title               TEXT NOT NULL DEFAULT '',
    url                 TEXT NOT NULL DEFAULT '',
    platform            TEXT NOT NULL DEFAULT '',
    description         TEXT NOT NULL DEFAULT '',
    sensational_terms   TEXT[] NOT NULL DEFAULT '{}',
    loaded_terms        TEXT[] NOT NULL DEFAULT '{}',
    us_vs_them          BOOLEAN NOT NULL DEFAULT FALSE,
    explicit_language   BOOLEAN NOT NULL DEFAULT FALSE,
    clickbait           BOOLEAN NOT NULL DEFAULT FALSE,
    appeal_authority    BOOLEAN NOT NULL DEFAULT FALSE,
    appeal_common_sense BOOLEAN NOT NULL DEFAULT FALSE,
    appeal_emotion      BOOLEAN NOT NULL DEFAULT FALSE,
    anecdote_as_trend   BOOLEAN NOT NULL DEFAULT FALSE,
    affiliations        TEXT[] NOT NULL DEFAULT '{}',
    ideology_hits       TEXT[] NOT NULL DEFAULT '{}',
    monetization        TEXT[] NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_collected_items_job ON collected_items (job_id, position);

CREATE TABLE IF NOT EXISTS job_reports (
    job_id          BIGINT PRIMARY KEY REFERENCES creator_jobs (id) ON DELETE CASCADE,
    report_markdown TEXT NOT NULL DEFAULT '',
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	jobColumns = []string{
		"id", "name", "timeframe", "yt_channel_url", "podcast_rss", "site_rss",
		"other_links", "status", "error_message", "created_at", "updated_at",
	}

	itemColumns = []string{
		"job_id", "position", "date", "title", "url", "platform", "description",
		"sensational_terms", "loaded_terms", "us_vs_them", "explicit_language", "clickbait",
		"appeal_authority", "appeal_common_sense", "appeal_emotion", "anecdote_as_trend",
		"affiliations", "ideology_hits", "monetization",
	}
)

// PostgresRepository persists jobs, collected items and reports into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.JobRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects through the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the tables when they do not exist yet.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// CreateJob inserts a queued job and returns it with generated fields.
func (r *PostgresRepository) CreateJob(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.Status == "" {
		job.Status = domain.StatusQueued
	}

	query, args, err := psql.Insert("creator_jobs").
		Columns("name", "timeframe", "yt_channel_url", "podcast_rss", "site_rss", "other_links", "status").
		Values(job.Name, job.Timeframe, job.YTChannelURL, job.PodcastRSS, job.SiteRSS, job.OtherLinks, string(job.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Job{}, fmt.Errorf("build insert job: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// ListJobs returns all jobs, newest first.
func (r *PostgresRepository) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return r.queryJobs(ctx, psql.Select(jobColumns...).From("creator_jobs").OrderBy("created_at DESC", "id DESC"))
}

// PendingJobs returns queued or interrupted jobs, oldest first.
func (r *PostgresRepository) PendingJobs(ctx context.Context) ([]domain.Job, error) {
	return r.queryJobs(ctx, psql.Select(jobColumns...).From("creator_jobs").
		Where(sq.Eq{"status": []string{string(domain.StatusQueued), string(domain.StatusRunning)}}).
		OrderBy("created_at ASC", "id ASC"))
}

// GetJob loads one job or returns ports.ErrJobNotFound.
func (r *PostgresRepository) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	query, args, err := psql.Select(jobColumns...).From("creator_jobs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Job{}, fmt.Errorf("build select job: %w", err)
	}

	job, err := scanJob(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, ports.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("select job %d: %w", id, err)
	}
	return job, nil
}

// SetStatus moves a job to the given status and records the error message.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error {
	query, args, err := psql.Update("creator_jobs").
		Set("status", string(status)).
		Set("error_message", errMsg).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrJobNotFound
	}
	return nil
}

// ReplaceItems swaps the job's items for a new set in one transaction.
func (r *PostgresRepository) ReplaceItems(ctx context.Context, jobID int64, items []domain.EnrichedItem) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return replaceItems(ctx, tx, jobID, items)
	})
}

// UpsertReport stores the job's report, replacing a previous one.
func (r *PostgresRepository) UpsertReport(ctx context.Context, jobID int64, markdown string) error {
	return upsertReport(ctx, r.db, jobID, markdown)
}

// SaveRun writes a run's items and report in one transaction.
func (r *PostgresRepository) SaveRun(ctx context.Context, jobID int64, items []domain.EnrichedItem, markdown string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := replaceItems(ctx, tx, jobID, items); err != nil {
			return err
		}
		return upsertReport(ctx, tx, jobID, markdown)
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func replaceItems(ctx context.Context, ex execer, jobID int64, items []domain.EnrichedItem) error {
	query, args, err := psql.Delete("collected_items").Where(sq.Eq{"job_id": jobID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	insert := psql.Insert("collected_items").Columns(itemColumns...)
	for i, it := range items {
		insert = insert.Values(
			jobID, i, it.Date, it.Title, it.URL, it.Platform, it.Description,
			pq.StringArray(nonNil(it.SensationalTerms)), pq.StringArray(nonNil(it.LoadedTerms)),
			it.UsVsThem, it.ExplicitLanguage, it.Clickbait,
			it.AppealAuthority, it.AppealCommonSense, it.AppealEmotion, it.AnecdoteAsTrend,
			pq.StringArray(nonNil(it.AffiliationsFound)), pq.StringArray(nonNil(it.IdeologyHits)),
			pq.StringArray(nonNil(it.Monetization)),
		)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func upsertReport(ctx context.Context, ex execer, jobID int64, markdown string) error {
	query, args, err := psql.Insert("job_reports").
		Columns("job_id", "report_markdown").
		Values(jobID, markdown).
		Suffix("ON CONFLICT (job_id) DO UPDATE SET report_markdown = EXCLUDED.report_markdown, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert report: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

// GetReport loads a job with its items and report text. A job that has not
// run yet yields an empty markdown string.
func (r *PostgresRepository) GetReport(ctx context.Context, jobID int64) (domain.JobReport, error) {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return domain.JobReport{}, err
	}

	items, err := r.listItems(ctx, jobID)
	if err != nil {
		return domain.JobReport{}, err
	}

	query, args, err := psql.Select("report_markdown").From("job_reports").Where(sq.Eq{"job_id": jobID}).ToSql()
	if err != nil {
		return domain.JobReport{}, fmt.Errorf("build select report: %w", err)
	}

	var markdown string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&markdown)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.JobReport{}, fmt.Errorf("select report: %w", err)
	}

	return domain.JobReport{Job: job, Items: items, Markdown: markdown}, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, jobID int64) ([]domain.EnrichedItem, error) {
	query, args, err := psql.Select(itemColumns[2:]...).From("collected_items").
		Where(sq.Eq{"job_id": jobID}).OrderBy("position ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.EnrichedItem{}
	for rows.Next() {
		var it domain.EnrichedItem
		if err := rows.Scan(
			&it.Date, &it.Title, &it.URL, &it.Platform, &it.Description,
			(*pq.StringArray)(&it.SensationalTerms), (*pq.StringArray)(&it.LoadedTerms),
			&it.UsVsThem, &it.ExplicitLanguage, &it.Clickbait,
			&it.AppealAuthority, &it.AppealCommonSense, &it.AppealEmotion, &it.AnecdoteAsTrend,
			(*pq.StringArray)(&it.AffiliationsFound), (*pq.StringArray)(&it.IdeologyHits),
			(*pq.StringArray)(&it.Monetization),
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) queryJobs(ctx context.Context, builder sq.SelectBuilder) ([]domain.Job, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select jobs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var (
		job    domain.Job
		status string
	)
	err := row.Scan(
		&job.ID, &job.Name, &job.Timeframe, &job.YTChannelURL, &job.PodcastRSS, &job.SiteRSS,
		&job.OtherLinks, &status, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	job.Status = domain.JobStatus(status)
	return job, err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
