package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

type stubFeeds struct {
	mu    sync.Mutex
	items map[string][]domain.RawFeedItem
	urls  []string
}

func (s *stubFeeds) Normalize(_ context.Context, feedURL string, limit int) []domain.RawFeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, feedURL)
	items := s.items[feedURL]
	if len(items) > limit {
		items = items[:limit]
	}
	return append([]domain.RawFeedItem{}, items...)
}

type stubReach struct {
	stats  domain.ReachStats
	err    error
	called bool
}

func (s *stubReach) ChannelStats(context.Context, string) (domain.ReachStats, error) {
	s.called = true
	return s.stats, s.err
}

type stubReception struct {
	refs []domain.Reference
	err  error
}

func (s *stubReception) SearchReception(context.Context, string) ([]domain.Reference, error) {
	return s.refs, s.err
}

type stubNarrator struct {
	text string
	err  error
	req  ports.NarrativeRequest
}

func (s *stubNarrator) WriteNarrative(_ context.Context, req ports.NarrativeRequest) (string, error) {
	s.req = req
	return s.text, s.err
}

type memoryRepo struct {
	mu         sync.Mutex
	jobs       map[int64]domain.Job
	items      map[int64][]domain.EnrichedItem
	reports    map[int64]string
	history    map[int64][]domain.JobStatus
	replaceErr error
	reportErr  error
}

func newMemoryRepo(jobs ...domain.Job) *memoryRepo {
	r := &memoryRepo{
		jobs:    map[int64]domain.Job{},
		items:   map[int64][]domain.EnrichedItem{},
		reports: map[int64]string{},
		history: map[int64][]domain.JobStatus{},
	}
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return r
}

func (r *memoryRepo) CreateJob(_ context.Context, job domain.Job) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = int64(len(r.jobs) + 1)
	r.jobs[job.ID] = job
	return job, nil
}

func (r *memoryRepo) ListJobs(context.Context) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	return out, nil
}

func (r *memoryRepo) GetJob(_ context.Context, id int64) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, ports.ErrJobNotFound
	}
	return j, nil
}

func (r *memoryRepo) PendingJobs(context.Context) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Job
	for _, j := range r.jobs {
		if j.Status == domain.StatusQueued || j.Status == domain.StatusRunning {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *memoryRepo) SetStatus(_ context.Context, id int64, status domain.JobStatus, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ports.ErrJobNotFound
	}
	j.Status = status
	j.ErrorMessage = errMsg
	r.jobs[id] = j
	r.history[id] = append(r.history[id], status)
	return nil
}

func (r *memoryRepo) ReplaceItems(_ context.Context, jobID int64, items []domain.EnrichedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.items[jobID] = items
	return nil
}

func (r *memoryRepo) UpsertReport(_ context.Context, jobID int64, markdown string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[jobID] = markdown
	return nil
}

func (r *memoryRepo) SaveRun(_ context.Context, jobID int64, items []domain.EnrichedItem, markdown string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	if r.reportErr != nil {
		return r.reportErr
	}
	r.items[jobID] = items
	r.reports[jobID] = markdown
	return nil
}

func (r *memoryRepo) GetReport(ctx context.Context, jobID int64) (domain.JobReport, error) {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return domain.JobReport{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.JobReport{Job: job, Items: r.items[jobID], Markdown: r.reports[jobID]}, nil
}

type memoryArchive struct {
	saved map[int64]string
	err   error
}

func (a *memoryArchive) Save(_ context.Context, jobID int64, markdown string) error {
	if a.err != nil {
		return a.err
	}
	if a.saved == nil {
		a.saved = map[int64]string{}
	}
	a.saved[jobID] = markdown
	return nil
}

type recordingNotifier struct {
	jobs []domain.Job
}

func (n *recordingNotifier) ReportReady(_ context.Context, job domain.Job) error {
	n.jobs = append(n.jobs, job)
	return errors.New("telegram down")
}
