// Package signals implements the keyword heuristics that flag sensational,
// polarizing, explicit and monetized content in feed text.
//
// Matching is a case-insensitive substring search: both the text and every
// lexicon phrase are lowercased before comparison. Matched term lists are
// returned in lexicon order, which makes the output independent of where a
// phrase happens to appear in the text.
package signals

import (
	"sort"
	"strings"

	"CreatorProfiler/internal/domain"
)

type phrase struct {
	display string
	needle  string
}

type monetizationMatcher struct {
	label   string
	needles []phrase
}

// Extractor maps raw text to signal bundles using an injected lexicon.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	sensational     []phrase
	loaded          []phrase
	usVsThem        []phrase
	clickbait       []phrase
	appealAuthority []phrase
	appealCommon    []phrase
	appealEmotion   []phrase
	anecdoteTrend   []phrase
	explicit        []phrase
	affiliations    []phrase
	ideologies      []phrase
	monetization    []monetizationMatcher
}

// NewExtractor compiles the lexicon into lowercase needles.
func NewExtractor(lex Lexicon) *Extractor {
	e := &Extractor{
		sensational:     compile(lex.Sensational),
		loaded:          compile(lex.Loaded),
		usVsThem:        compile(lex.UsVsThem),
		clickbait:       compile(lex.Clickbait),
		appealAuthority: compile(lex.AppealAuthority),
		appealCommon:    compile(lex.AppealCommon),
		appealEmotion:   compile(lex.AppealEmotion),
		anecdoteTrend:   compile(lex.AnecdoteTrend),
		explicit:        compile(lex.Explicit),
		affiliations:    compile(lex.Affiliations),
		ideologies:      compile(lex.Ideologies),
	}
	for _, rule := range lex.Monetization {
		e.monetization = append(e.monetization, monetizationMatcher{
			label:   rule.Label,
			needles: compile(rule.Phrases),
		})
	}
	return e
}

// Analyze extracts the signal bundle for a text blob.
func (e *Extractor) Analyze(text string) domain.SignalBundle {
	t := strings.ToLower(text)

	return domain.SignalBundle{
		SensationalTerms:  matches(t, e.sensational),
		LoadedTerms:       matches(t, e.loaded),
		UsVsThem:          anyMatch(t, e.usVsThem),
		ExplicitLanguage:  anyMatch(t, e.explicit),
		Clickbait:         anyMatch(t, e.clickbait),
		AppealAuthority:   anyMatch(t, e.appealAuthority),
		AppealCommonSense: anyMatch(t, e.appealCommon),
		AppealEmotion:     anyMatch(t, e.appealEmotion),
		AnecdoteAsTrend:   anyMatch(t, e.anecdoteTrend),
		AffiliationsFound: sortedSet(matches(t, e.affiliations)),
		IdeologyHits:      sortedSet(matches(t, e.ideologies)),
	}
}

// DetectMonetization returns the sorted labels of every monetization rule
// with at least one phrase present in text.
func (e *Extractor) DetectMonetization(text string) []string {
	t := strings.ToLower(text)

	var labels []string
	for _, m := range e.monetization {
		if anyMatch(t, m.needles) {
			labels = append(labels, m.label)
		}
	}
	return sortedSet(labels)
}

func compile(phrases []string) []phrase {
	out := make([]phrase, 0, len(phrases))
	for _, p := range phrases {
		needle := strings.ToLower(strings.TrimSpace(p))
		if needle == "" {
			continue
		}
		out = append(out, phrase{display: p, needle: needle})
	}
	return out
}

func matches(text string, phrases []phrase) []string {
	var hits []string
	for _, p := range phrases {
		if strings.Contains(text, p.needle) {
			hits = append(hits, p.display)
		}
	}
	return hits
}

func anyMatch(text string, phrases []phrase) bool {
	for _, p := range phrases {
		if strings.Contains(text, p.needle) {
			return true
		}
	}
	return false
}

func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
