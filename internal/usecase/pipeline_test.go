package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CreatorProfiler/internal/domain"
)

func newTestProfiler() *Profiler {
	return NewProfiler(ProfilerDeps{
		Feeds: &stubFeeds{items: map[string][]domain.RawFeedItem{
			"https://pod.example/rss": {{Title: "Episode 1", Description: "sponsored by Acme"}},
		}},
		Now: func() time.Time { return fixedNow },
	})
}

func TestProcessPendingCompletesJobs(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(
		domain.Job{ID: 1, Name: "Jane", PodcastRSS: "https://pod.example/rss", Status: domain.StatusQueued},
		domain.Job{ID: 2, Name: "Done", Status: domain.StatusDone},
	)
	archive := &memoryArchive{}
	notifier := &recordingNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Repository: repo,
		Profiler:   newTestProfiler(),
		Archive:    archive,
		Notifier:   notifier,
	})

	require.NoError(t, pipeline.ProcessPending(context.Background(), fixedNow))

	assert.Equal(t, []domain.JobStatus{domain.StatusRunning, domain.StatusDone}, repo.history[1])
	assert.Empty(t, repo.history[2])
	require.Len(t, repo.items[1], 1)
	assert.Equal(t, []string{"sponsor"}, repo.items[1][0].Monetization)
	assert.Contains(t, repo.reports[1], "## Footnotes")
	assert.Equal(t, repo.reports[1], archive.saved[1])

	require.Len(t, notifier.jobs, 1, "notifier failures are logged, not fatal")
	assert.Equal(t, domain.StatusDone, notifier.jobs[0].Status)
}

func TestProcessPendingResumesRunningJobs(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 4, Name: "Interrupted", Status: domain.StatusRunning})
	pipeline := NewPipeline(PipelineDeps{Repository: repo, Profiler: newTestProfiler()})

	require.NoError(t, pipeline.ProcessPending(context.Background(), fixedNow))
	assert.Equal(t, domain.StatusDone, repo.jobs[4].Status)
}

func TestProcessPendingMarksPersistenceErrors(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 3, Name: "Broken", Status: domain.StatusQueued})
	repo.replaceErr = errors.New("disk full")
	archive := &memoryArchive{}

	pipeline := NewPipeline(PipelineDeps{Repository: repo, Profiler: newTestProfiler(), Archive: archive})

	err := pipeline.ProcessPending(context.Background(), fixedNow)
	require.Error(t, err)

	job := repo.jobs[3]
	assert.Equal(t, domain.StatusError, job.Status)
	assert.Contains(t, job.ErrorMessage, "disk full")
	assert.Empty(t, archive.saved)
}

func TestProcessPendingArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 5, Name: "Jane", Status: domain.StatusQueued})
	pipeline := NewPipeline(PipelineDeps{
		Repository: repo,
		Profiler:   newTestProfiler(),
		Archive:    &memoryArchive{err: errors.New("read-only fs")},
	})

	require.NoError(t, pipeline.ProcessPending(context.Background(), fixedNow))
	assert.Equal(t, domain.StatusDone, repo.jobs[5].Status)
}

func TestProcessPendingSkipsOverlappingPass(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 6, Name: "Jane", Status: domain.StatusQueued})
	pipeline := NewPipeline(PipelineDeps{Repository: repo, Profiler: newTestProfiler()})

	pipeline.mu.Lock()
	require.NoError(t, pipeline.ProcessPending(context.Background(), fixedNow))
	pipeline.mu.Unlock()

	assert.Equal(t, domain.StatusQueued, repo.jobs[6].Status)
}

func TestProcessPendingWithoutRepository(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewPipeline(PipelineDeps{}).ProcessPending(context.Background(), fixedNow))
}

type countingDriver struct {
	started bool
	stopped bool
}

func (d *countingDriver) Start(_ context.Context, job func(time.Time)) error {
	d.started = true
	job(fixedNow)
	return nil
}

func (d *countingDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerDrivesPipeline(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 7, Name: "Jane", Status: domain.StatusQueued})
	driver := &countingDriver{}
	s := NewScheduler(driver, NewPipeline(PipelineDeps{Repository: repo, Profiler: newTestProfiler()}), nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.True(t, driver.started)
	assert.True(t, driver.stopped)
	assert.Equal(t, domain.StatusDone, repo.jobs[7].Status)
}

func TestProcessPendingKeepsPreviousRunWhenReportWriteFails(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo(domain.Job{ID: 8, Name: "Jane", PodcastRSS: "https://pod.example/rss", Status: domain.StatusQueued})
	repo.items[8] = []domain.EnrichedItem{{RawFeedItem: domain.RawFeedItem{Title: "old run"}}}
	repo.reports[8] = "OLD REPORT"
	repo.reportErr = errors.New("report table locked")
	archive := &memoryArchive{}

	pipeline := NewPipeline(PipelineDeps{Repository: repo, Profiler: newTestProfiler(), Archive: archive})

	err := pipeline.ProcessPending(context.Background(), fixedNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report table locked")

	assert.Equal(t, domain.StatusError, repo.jobs[8].Status)
	require.Len(t, repo.items[8], 1)
	assert.Equal(t, "old run", repo.items[8][0].Title)
	assert.Equal(t, "OLD REPORT", repo.reports[8])
	assert.Empty(t, archive.saved)
}
