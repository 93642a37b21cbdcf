package enrich

import (
	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/signals"
)

// Enricher attaches signals and monetization labels to normalized feed items.
type Enricher struct {
	extractor *signals.Extractor
}

// NewEnricher wires the signal extractor; nil falls back to the default lexicon.
func NewEnricher(extractor *signals.Extractor) *Enricher {
	if extractor == nil {
		extractor = signals.NewExtractor(signals.DefaultLexicon())
	}
	return &Enricher{extractor: extractor}
}

// Enrich scores title and description together and checks the description
// alone for monetization cues. A non-empty platform label replaces the
// item's feed-derived platform.
func (e *Enricher) Enrich(item domain.RawFeedItem, platform string) domain.EnrichedItem {
	if platform != "" {
		item.Platform = platform
	}

	return domain.EnrichedItem{
		RawFeedItem:  item,
		SignalBundle: e.extractor.Analyze(item.Title + " " + item.Description),
		Monetization: e.extractor.DetectMonetization(item.Description),
	}
}

// EnrichAll enriches items in order under the same platform label.
func (e *Enricher) EnrichAll(items []domain.RawFeedItem, platform string) []domain.EnrichedItem {
	out := make([]domain.EnrichedItem, 0, len(items))
	for _, item := range items {
		out = append(out, e.Enrich(item, platform))
	}
	return out
}
