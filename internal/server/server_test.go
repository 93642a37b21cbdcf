package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CreatorProfiler/internal/config"
	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

type memoryRepo struct {
	mu      sync.Mutex
	jobs    []domain.Job
	items   map[int64][]domain.EnrichedItem
	reports map[int64]string
	failAll bool
}

func (r *memoryRepo) CreateJob(_ context.Context, job domain.Job) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = int64(len(r.jobs) + 1)
	job.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	job.UpdatedAt = job.CreatedAt
	r.jobs = append(r.jobs, job)
	return job, nil
}

func (r *memoryRepo) ListJobs(context.Context) ([]domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errors.New("db down")
	}
	out := make([]domain.Job, 0, len(r.jobs))
	for i := len(r.jobs) - 1; i >= 0; i-- {
		out = append(out, r.jobs[i])
	}
	return out, nil
}

func (r *memoryRepo) GetJob(_ context.Context, id int64) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return domain.Job{}, ports.ErrJobNotFound
}

func (r *memoryRepo) PendingJobs(context.Context) ([]domain.Job, error) { return nil, nil }

func (r *memoryRepo) SetStatus(context.Context, int64, domain.JobStatus, string) error { return nil }

func (r *memoryRepo) ReplaceItems(_ context.Context, jobID int64, items []domain.EnrichedItem) error {
	r.items[jobID] = items
	return nil
}

func (r *memoryRepo) UpsertReport(_ context.Context, jobID int64, markdown string) error {
	r.reports[jobID] = markdown
	return nil
}

func (r *memoryRepo) SaveRun(_ context.Context, jobID int64, items []domain.EnrichedItem, markdown string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func newTestServer(t *testing.T) (*httptest.Server, *memoryRepo) {
	t.Helper()
	repo := &memoryRepo{items: map[int64][]domain.EnrichedItem{}, reports: map[int64]string{}}
	srv := NewServer(config.HTTPConfig{CorsOrigins: []string{"*"}}, repo, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, repo
}

func TestCreateAndFetchJob(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	body := `{"name":"  Jane  ","podcast_rss":"https://pod.example/rss","other_links":"https://a.example\nhttps://b.example"}`
	resp, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Jane", created["name"])
	assert.Equal(t, domain.DefaultTimeframe, created["timeframe"])
	assert.Equal(t, "queued", created["status"])

	get, err := http.Get(ts.URL + "/jobs/1")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	list, err := http.Get(ts.URL + "/jobs")
	require.NoError(t, err)
	defer list.Body.Close()
	var jobs []map[string]any
	require.NoError(t, json.NewDecoder(list.Body).Decode(&jobs))
	assert.Len(t, jobs, 1)
}

func TestCreateJobValidation(t *testing.T) {
	t.Parallel()
	ts, repo := newTestServer(t)

	cases := map[string]string{
		"malformed json": `{"name":`,
		"missing name":   `{"name":"   "}`,
		"bad feed url":   `{"name":"Jane","site_rss":"not a url"}`,
	}
	for name, body := range cases {
		resp, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(body))
		require.NoError(t, err, name)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.jobs)
}

func TestUnknownAndInvalidIDs(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	for path, want := range map[string]int{
		"/jobs/42":    http.StatusNotFound,
		"/reports/42": http.StatusNotFound,
		"/jobs/abc":   http.StatusBadRequest,
		"/reports/-1": http.StatusBadRequest,
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()
	ts, repo := newTestServer(t)

	job, _ := repo.CreateJob(context.Background(), domain.Job{Name: "Jane", Status: domain.StatusDone})
	repo.mu.Lock()
	repo.items[job.ID] = []domain.EnrichedItem{{
		RawFeedItem:  domain.RawFeedItem{Title: "Ep 1", Platform: "Podcast"},
		SignalBundle: domain.SignalBundle{Clickbait: true},
	}}
	repo.reports[job.ID] = "## Overview\nCreator: Jane\n"
	repo.mu.Unlock()

	resp, err := http.Get(ts.URL + "/reports/1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Job            map[string]any   `json:"job"`
		Items          []map[string]any `json:"items"`
		ReportMarkdown string           `json:"report_markdown"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "done", out.Job["status"])
	require.Len(t, out.Items, 1)
	assert.Equal(t, true, out.Items[0]["clickbait"])
	assert.Equal(t, []any{}, out.Items[0]["sensational_terms"])
	assert.Contains(t, out.ReportMarkdown, "Creator: Jane")
}

func TestRepositoryFailureIs500(t *testing.T) {
	t.Parallel()
	ts, repo := newTestServer(t)
	repo.mu.Lock()
	repo.failAll = true
	repo.mu.Unlock()

	resp, err := http.Get(ts.URL + "/jobs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCreateJobRejectsOversizedBody(t *testing.T) {
	t.Parallel()
	ts, repo := newTestServer(t)

	body := `{"name":"Jane","other_links":"` + strings.Repeat("https://a.example/x\\n", 8000) + `"}`
	resp, err := http.Post(ts.URL+"/jobs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.jobs)
}
