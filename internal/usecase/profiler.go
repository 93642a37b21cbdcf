package usecase

import (
	"context"
	"log/slog"
	"time"

	"CreatorProfiler/internal/aggregate"
	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/enrich"
	"CreatorProfiler/internal/infrastructure/parser"
	"CreatorProfiler/internal/logging"
	"CreatorProfiler/internal/ports"
	"CreatorProfiler/internal/report"
)

// ProfilerDeps wires the feed adapter, core stages and optional enrichments.
type ProfilerDeps struct {
	Feeds      ports.FeedNormalizer
	Enricher   *enrich.Enricher
	Aggregator *aggregate.Aggregator
	Reach      ports.ReachProvider
	Reception  ports.ReceptionSearcher
	Narrator   ports.NarrativeWriter
	FeedLimit  int
	Now        func() time.Time
	Logger     *slog.Logger
}

// Profiler turns one job into enriched items and a composed report.
type Profiler struct {
	feeds      ports.FeedNormalizer
	enricher   *enrich.Enricher
	aggregator *aggregate.Aggregator
	reach      ports.ReachProvider
	reception  ports.ReceptionSearcher
	narrator   ports.NarrativeWriter
	feedLimit  int
	now        func() time.Time
	logger     *slog.Logger
}

// Result is the outcome of a profiling run.
type Result struct {
	Items     []domain.EnrichedItem
	Aggregate domain.JobAggregate
	Reach     *domain.ReachStats
	Report    report.Report
	Markdown  string
}

// NewProfiler constructs the profiling use case. Nil optional ports are skipped.
func NewProfiler(deps ProfilerDeps) *Profiler {
	p := &Profiler{
		feeds:      deps.Feeds,
		enricher:   deps.Enricher,
		aggregator: deps.Aggregator,
		reach:      deps.Reach,
		reception:  deps.Reception,
		narrator:   deps.Narrator,
		feedLimit:  deps.FeedLimit,
		now:        deps.Now,
		logger:     deps.Logger,
	}
	if p.enricher == nil {
		p.enricher = enrich.NewEnricher(nil)
	}
	if p.aggregator == nil {
		p.aggregator = aggregate.NewAggregator(nil)
	}
	if p.feedLimit <= 0 {
		p.feedLimit = parser.DefaultFeedLimit
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// Run never fails: every unavailable source degrades to an empty value and
// the report spells out what is missing.
func (p *Profiler) Run(ctx context.Context, job domain.Job) Result {
	logger := p.logger.With("job_id", job.ID, "creator", job.Name)
	plan := parser.PlanFeeds(job)

	items := []domain.EnrichedItem{}
	feeds := make([]report.FeedSource, 0, len(plan.Feeds))
	for _, feed := range plan.Feeds {
		feeds = append(feeds, report.FeedSource{Platform: feed.Platform, Title: feed.Title, URL: feed.URL})
		if p.feeds == nil {
			continue
		}
		raw := p.feeds.Normalize(ctx, feed.URL, p.feedLimit)
		logger.Debug("feed collected", "platform", feed.Platform, "url", feed.URL, "items", len(raw))
		items = append(items, p.enricher.EnrichAll(raw, feed.Platform)...)
	}

	agg := p.aggregator.Aggregate(items)
	reach := p.lookupReach(ctx, logger, plan.ChannelID)
	controversies := p.searchReception(ctx, logger, job.Name)
	narrative := p.writeNarrative(ctx, logger, ports.NarrativeRequest{
		Creator:       job.Name,
		Timeframe:     job.Timeframe,
		Items:         items,
		Aggregate:     agg,
		Reach:         reach,
		Controversies: controversies,
		SectionOrder:  report.NarrativeOrder,
	})

	doc := report.Compose(report.Input{
		Job:           job,
		Items:         items,
		Aggregate:     agg,
		Feeds:         feeds,
		Reach:         reach,
		Controversies: controversies,
		Narrative:     narrative,
		AccessDate:    p.now(),
	})

	logger.Info("profile composed",
		"items", agg.TotalItems,
		"factuality", agg.Factuality.Total,
		"footnotes", len(doc.Footnotes))

	return Result{
		Items:     items,
		Aggregate: agg,
		Reach:     reach,
		Report:    doc,
		Markdown:  doc.Markdown(),
	}
}

func (p *Profiler) lookupReach(ctx context.Context, logger *slog.Logger, channelID string) *domain.ReachStats {
	if p.reach == nil || channelID == "" {
		return nil
	}
	stats, err := p.reach.ChannelStats(ctx, channelID)
	if err != nil {
		logger.Warn("channel statistics unavailable", "channel_id", channelID, "error", err)
		return nil
	}
	return &stats
}

func (p *Profiler) searchReception(ctx context.Context, logger *slog.Logger, name string) []domain.Reference {
	if p.reception == nil {
		return nil
	}
	refs, err := p.reception.SearchReception(ctx, name)
	if err != nil {
		logger.Warn("reception search failed", "error", err)
		return nil
	}
	return refs
}

func (p *Profiler) writeNarrative(ctx context.Context, logger *slog.Logger, req ports.NarrativeRequest) string {
	if p.narrator == nil {
		return ""
	}
	text, err := p.narrator.WriteNarrative(ctx, req)
	if err != nil {
		logger.Warn("narrative generation failed", "error", err)
		return ""
	}
	return text
}
