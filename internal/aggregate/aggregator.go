package aggregate

import (
	"sort"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/scoring"
)

// Aggregator reduces a job's enriched items into job-level statistics.
type Aggregator struct {
	strategy scoring.Strategy
}

// NewAggregator wires the factuality strategy; nil selects the baseline rubric.
func NewAggregator(strategy scoring.Strategy) *Aggregator {
	if strategy == nil {
		strategy = scoring.Baseline{}
	}
	return &Aggregator{strategy: strategy}
}

// Aggregate computes rates as count/max(1,total), so an empty job yields zeros.
func (a *Aggregator) Aggregate(items []domain.EnrichedItem) domain.JobAggregate {
	var (
		sensational, usThem, explicit, monetized int
		agg                                      domain.JobAggregate
		affiliations                             = map[string]struct{}{}
		ideologies                               = map[string]struct{}{}
	)

	for _, it := range items {
		if len(it.SensationalTerms) > 0 {
			sensational++
		}
		if it.UsVsThem {
			usThem++
		}
		if it.ExplicitLanguage {
			explicit++
		}
		if len(it.Monetization) > 0 {
			monetized++
		}

		agg.AnyClickbait = agg.AnyClickbait || it.Clickbait
		agg.AnyAnecdoteAsTrend = agg.AnyAnecdoteAsTrend || it.AnecdoteAsTrend
		agg.AnyAppealAuthority = agg.AnyAppealAuthority || it.AppealAuthority
		agg.AnyAppealCommonSense = agg.AnyAppealCommonSense || it.AppealCommonSense
		agg.AnyAppealEmotion = agg.AnyAppealEmotion || it.AppealEmotion

		for _, name := range it.AffiliationsFound {
			affiliations[name] = struct{}{}
		}
		for _, label := range it.IdeologyHits {
			ideologies[label] = struct{}{}
		}
	}

	denominator := float64(max(1, len(items)))
	agg.TotalItems = len(items)
	agg.SensationalRate = float64(sensational) / denominator
	agg.UsThemRate = float64(usThem) / denominator
	agg.ExplicitRate = float64(explicit) / denominator
	agg.MonetizedRate = float64(monetized) / denominator
	agg.Affiliations = sortedKeys(affiliations)
	agg.Ideologies = sortedKeys(ideologies)

	agg.Factuality = a.strategy.Score(scoring.Rates{
		TotalItems:      agg.TotalItems,
		SensationalRate: agg.SensationalRate,
		UsThemRate:      agg.UsThemRate,
		ExplicitRate:    agg.ExplicitRate,
		MonetizedRate:   agg.MonetizedRate,
	})

	return agg
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
