package scoring

import (
	"fmt"
	"sort"

	"CreatorProfiler/internal/domain"
)

// BaselineName identifies the default factuality rubric.
const BaselineName = "baseline"

// Rates carries the job-level ratios a scoring strategy may consult.
type Rates struct {
	TotalItems      int
	SensationalRate float64
	UsThemRate      float64
	ExplicitRate    float64
	MonetizedRate   float64
}

// Strategy computes the heuristic factuality score for a job.
type Strategy interface {
	Name() string
	Score(r Rates) domain.FactualityScore
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry with the baseline rubric pre-registered.
func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	r.Register(Baseline{})
	return r
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if name == "" {
		name = BaselineName
	}
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("scoring strategy %s is not registered", name)
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Baseline is the fixed five-term rubric. It is a heuristic driven by the
// sensational and monetized rates; two of its terms are constant placeholders.
type Baseline struct{}

const (
	sensationalThreshold = 0.2

	capSourceTransparency = 25
	capEvidenceQuality    = 25
	capCorrectionsCulture = 20
	capContextDiscipline  = 20
	capHeadlineAlignment  = 10
)

// Name identifies the strategy inside the registry.
func (Baseline) Name() string {
	return BaselineName
}

// Score applies the rubric thresholds and caps.
func (Baseline) Score(r Rates) domain.FactualityScore {
	lowSensational := r.SensationalRate < sensationalThreshold

	s := domain.FactualityScore{
		SourceTransparency: capped(pick(r.MonetizedRate == 0, 15, 10), capSourceTransparency),
		EvidenceQuality:    capped(10, capEvidenceQuality),
		CorrectionsCulture: capped(5, capCorrectionsCulture),
		ContextDiscipline:  capped(pick(lowSensational, 10, 5), capContextDiscipline),
		HeadlineAlignment:  capped(pick(lowSensational, 6, 3), capHeadlineAlignment),
	}
	s.Total = s.SourceTransparency + s.EvidenceQuality + s.CorrectionsCulture + s.ContextDiscipline + s.HeadlineAlignment
	s.Total = max(0, min(100, s.Total))
	return s
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}

func capped(v, limit int) int {
	return max(0, min(v, limit))
}
