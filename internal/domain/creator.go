package domain

import "time"

// DefaultTimeframe is applied to jobs submitted without an explicit timeframe.
const DefaultTimeframe = "2020–present"

// JobStatus enumerates queue milestones of a profiling job.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusError   JobStatus = "error"
)

// Job is the creator profiling request persisted by the queue.
type Job struct {
	ID           int64
	Name         string
	Timeframe    string
	YTChannelURL string
	PodcastRSS   string
	SiteRSS      string
	OtherLinks   string
	Status       JobStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RawFeedItem is a feed entry normalized into a uniform shape.
type RawFeedItem struct {
	Date        string
	Title       string
	URL         string
	Platform    string
	Description string
}

// SignalBundle holds the heuristic signals extracted from one text blob.
// Term lists follow lexicon order, not the order of appearance in the text.
type SignalBundle struct {
	SensationalTerms  []string
	LoadedTerms       []string
	UsVsThem          bool
	ExplicitLanguage  bool
	Clickbait         bool
	AppealAuthority   bool
	AppealCommonSense bool
	AppealEmotion     bool
	AnecdoteAsTrend   bool
	AffiliationsFound []string
	IdeologyHits      []string
}

// EnrichedItem is the unit persisted and reported for a job.
type EnrichedItem struct {
	RawFeedItem
	SignalBundle
	Monetization []string
}

// FactualityScore is the breakdown of the heuristic factuality rubric.
type FactualityScore struct {
	SourceTransparency int
	EvidenceQuality    int
	CorrectionsCulture int
	ContextDiscipline  int
	HeadlineAlignment  int
	Total              int
}

// JobAggregate rolls enriched items up into job-level statistics.
type JobAggregate struct {
	TotalItems      int
	SensationalRate float64
	UsThemRate      float64
	ExplicitRate    float64
	MonetizedRate   float64
	Affiliations    []string
	Ideologies      []string
	Factuality      FactualityScore

	AnyClickbait         bool
	AnyAnecdoteAsTrend   bool
	AnyAppealAuthority   bool
	AnyAppealCommonSense bool
	AnyAppealEmotion     bool
}

// ReachStats carries audience numbers reported by the video platform.
type ReachStats struct {
	SubscriberCount int64
	ViewCount       int64
	VideoCount      int64
}

// Reference is a titled link used for reception results.
type Reference struct {
	Title string
	URL   string
}

// JobReport is the stored outcome of a job run.
type JobReport struct {
	Job      Job
	Items    []EnrichedItem
	Markdown string
}
