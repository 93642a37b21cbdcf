// Package report renders job aggregates into the parent-facing Markdown profile.
//
// The document always carries the same fourteen sections in the same order.
// Data that could not be gathered is spelled out with a fallback sentence
// instead of leaving a section out.
package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"CreatorProfiler/internal/domain"
)

// Section titles in rendering order.
const (
	SectionOverview     = "Overview"
	SectionThemes       = "Content Themes & Direction"
	SectionLanguage     = "Language & Tone"
	SectionViews        = "Political/Ideological/Theological Views"
	SectionRhetoric     = "Rhetorical & Persuasive Strategies"
	SectionMonetization = "Monetization & Consumerism"
	SectionReach        = "Reach & Influence"
	SectionAffiliations = "Affiliations, Sponsorships, Partnerships"
	SectionReception    = "Reception & Controversies"
	SectionImpact       = "Impact on Teen Viewers"
	SectionGuidance     = "Parental Guidance"
	SectionConclusion   = "Conclusion & Takeaway for Parents"
	SectionFactuality   = "Factuality Score (Heuristic)"
	SectionFootnotes    = "Footnotes"
)

// SectionOrder is the fixed section sequence of every report.
var SectionOrder = []string{
	SectionOverview,
	SectionThemes,
	SectionLanguage,
	SectionViews,
	SectionRhetoric,
	SectionMonetization,
	SectionReach,
	SectionAffiliations,
	SectionReception,
	SectionImpact,
	SectionGuidance,
	SectionConclusion,
	SectionFactuality,
	SectionFootnotes,
}

// NarrativeOrder lists the sections a generated narrative is asked to cover.
var NarrativeOrder = SectionOrder[:12]

const (
	noneDetected     = "None auto-detected"
	reachFallback    = "- RSS does not expose audience counts; add API keys to auto-fill reach metrics."
	noItemsFallback  = "- No items were collected from the configured feeds."
	noSourceFallback = "No sources were configured for this job."
	exampleCount     = 3
)

// FeedSource is a configured feed cited in the footnotes.
type FeedSource struct {
	Platform string
	Title    string
	URL      string
}

// Input gathers everything the composer renders.
type Input struct {
	Job           domain.Job
	Items         []domain.EnrichedItem
	Aggregate     domain.JobAggregate
	Feeds         []FeedSource
	Reach         *domain.ReachStats
	Controversies []domain.Reference
	Narrative     string
	AccessDate    time.Time
}

// Section is one titled block of the report.
type Section struct {
	Title string
	Lines []string
}

// Report is the composed document before rendering.
type Report struct {
	Narrative string
	Sections  []Section
	Footnotes []string
}

// Note formats a citation as "{title}. {host}. Accessed {date}. {url}".
func Note(link, title string, accessed time.Time) string {
	host := ""
	if parsed, err := url.Parse(link); err == nil {
		host = parsed.Host
	}
	return fmt.Sprintf("%s. %s. Accessed %s. %s", title, host, accessed.Format(time.DateOnly), link)
}

// OtherLinks splits the newline separated link field, skipping blank lines.
func OtherLinks(raw string) []string {
	var links []string
	for _, line := range strings.Split(raw, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			links = append(links, u)
		}
	}
	return links
}

// Compose builds the report. Footnotes are numbered in collection order:
// feeds, then additional links, then reception results.
func Compose(in Input) Report {
	accessed := in.AccessDate
	if accessed.IsZero() {
		accessed = time.Now().UTC()
	}

	var footnotes []string
	for _, feed := range in.Feeds {
		footnotes = append(footnotes, Note(feed.URL, feed.Title, accessed))
	}
	for _, link := range OtherLinks(in.Job.OtherLinks) {
		footnotes = append(footnotes, Note(link, "Additional source", accessed))
	}
	firstReception := len(footnotes) + 1
	for _, ref := range in.Controversies {
		footnotes = append(footnotes, Note(ref.URL, ref.Title, accessed))
	}

	agg := in.Aggregate
	sections := map[string][]string{
		SectionOverview:     overview(in),
		SectionThemes:       themes(in.Items),
		SectionLanguage:     language(in.Items, agg),
		SectionViews:        views(agg),
		SectionRhetoric:     rhetoric(agg),
		SectionMonetization: monetization(in.Items, agg),
		SectionReach:        reach(in.Reach),
		SectionAffiliations: affiliations(agg),
		SectionReception:    reception(in.Controversies, firstReception),
		SectionImpact:       impact(agg),
		SectionGuidance: {
			"- Watch for sensationalism, explicit language, polarizing frames, sponsor pushes. " +
				`Conversation starters: "What is the claim?", "What evidence is offered?", "Who benefits?"`,
		},
		SectionConclusion: {
			"- Automated first pass; confirm with manual sampling before high-stakes conclusions.",
		},
		SectionFactuality: factuality(agg.Factuality),
		SectionFootnotes:  footnoteLines(footnotes),
	}

	rep := Report{
		Narrative: strings.TrimSpace(in.Narrative),
		Footnotes: footnotes,
	}
	for _, title := range SectionOrder {
		rep.Sections = append(rep.Sections, Section{Title: title, Lines: sections[title]})
	}
	return rep
}

// Markdown renders the report. A narrative is placed verbatim above the
// fixed sections.
func (r Report) Markdown() string {
	var b strings.Builder
	if r.Narrative != "" {
		b.WriteString(r.Narrative)
		b.WriteString("\n\n")
	}
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Title == SectionFootnotes {
			b.WriteString("---\n")
		}
		b.WriteString("## ")
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, line := range s.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func overview(in Input) []string {
	platforms := make([]string, 0, len(in.Feeds))
	seen := map[string]bool{}
	for _, f := range in.Feeds {
		if f.Platform != "" && !seen[f.Platform] {
			seen[f.Platform] = true
			platforms = append(platforms, f.Platform)
		}
	}
	primary := strings.Join(platforms, ", ")
	if primary == "" {
		primary = "Not specified (no feeds configured)"
	}

	timeframe := strings.TrimSpace(in.Job.Timeframe)
	if timeframe == "" {
		timeframe = domain.DefaultTimeframe
	}

	return []string{
		"Creator: " + in.Job.Name,
		"Primary Platform(s): " + primary,
		"Timeframe: " + timeframe,
	}
}

func themes(items []domain.EnrichedItem) []string {
	if len(items) == 0 {
		return []string{noItemsFallback}
	}
	titles := make([]string, 0, exampleCount)
	for _, it := range items[:min(exampleCount, len(items))] {
		titles = append(titles, it.Title)
	}
	return []string{
		fmt.Sprintf("- Auto-collected %d items across provided feeds. Examples: %s", len(items), strings.Join(titles, ", ")),
	}
}

func language(items []domain.EnrichedItem, agg domain.JobAggregate) []string {
	loaded := map[string]struct{}{}
	for _, it := range items {
		for _, term := range it.LoadedTerms {
			loaded[term] = struct{}{}
		}
	}
	return []string{
		fmt.Sprintf("- Sensational phrasing in ~%s of titles/descriptions.", percent(agg.SensationalRate)),
		fmt.Sprintf("- 'Us vs. them' framing in ~%s; explicit language in ~%s.", percent(agg.UsThemRate), percent(agg.ExplicitRate)),
		"- Loaded terms seen: " + joinOr(setList(loaded), noneDetected),
	}
}

func views(agg domain.JobAggregate) []string {
	return []string{
		"- Detected ideology mentions: " + joinOr(agg.Ideologies, noneDetected),
		"- Topics to review manually: culture war themes, moral framing, theological references if present.",
	}
}

func rhetoric(agg domain.JobAggregate) []string {
	return []string{
		fmt.Sprintf("- Clickbait/exaggeration indicators present: %s", yesNo(agg.AnyClickbait)),
		fmt.Sprintf("- Anecdote-as-trend present: %s", yesNo(agg.AnyAnecdoteAsTrend)),
		fmt.Sprintf("- Appeals: authority=%s, common-sense=%s, emotion=%s",
			yesNo(agg.AnyAppealAuthority), yesNo(agg.AnyAppealCommonSense), yesNo(agg.AnyAppealEmotion)),
	}
}

func monetization(items []domain.EnrichedItem, agg domain.JobAggregate) []string {
	counts := map[string]int{}
	for _, it := range items {
		for _, label := range it.Monetization {
			counts[label]++
		}
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	breakdown := make([]string, 0, len(labels))
	for _, label := range labels {
		breakdown = append(breakdown, fmt.Sprintf("%s (%d)", label, counts[label]))
	}

	return []string{
		fmt.Sprintf("- Monetization signals detected in ~%s of items (sponsor/promo/affiliate/membership/merch).", percent(agg.MonetizedRate)),
		"- Categories seen: " + joinOr(breakdown, "None auto-detected"),
	}
}

func reach(stats *domain.ReachStats) []string {
	if stats == nil {
		return []string{reachFallback}
	}
	return []string{fmt.Sprintf("- YouTube: %s subscribers; %s total views; %s videos.",
		humanize.Comma(stats.SubscriberCount),
		humanize.Comma(stats.ViewCount),
		humanize.Comma(stats.VideoCount),
	)}
}

func affiliations(agg domain.JobAggregate) []string {
	return []string{
		fmt.Sprintf("- Auto-detected mentions: %s (validate manually for actual relationships).", joinOr(agg.Affiliations, noneDetected)),
	}
}

func reception(refs []domain.Reference, firstFootnote int) []string {
	lines := []string{
		fmt.Sprintf("- Auto-fetched links: %d added to footnotes (if web search enabled).", len(refs)),
	}
	if len(refs) == 0 {
		return append(lines, "- No reception or controversy coverage was gathered automatically; review news coverage manually.")
	}
	for i, ref := range refs {
		lines = append(lines, fmt.Sprintf("  - %s [%d]", ref.Title, firstFootnote+i))
	}
	return lines
}

func impact(agg domain.JobAggregate) []string {
	lines := []string{
		"- Potential emotional effects if sensational or polarized framing is frequent; discuss evidence quality and rhetoric.",
	}
	if agg.ExplicitRate > 0 {
		lines = append(lines, fmt.Sprintf("- Explicit language appears in ~%s of items; consider age suitability.", percent(agg.ExplicitRate)))
	}
	return lines
}

func factuality(s domain.FactualityScore) []string {
	return []string{
		fmt.Sprintf("- Total: %d/100 (preliminary; driven by sensationalism rate and sourcing proxies).", s.Total),
		fmt.Sprintf("  - Source transparency: %d/25", s.SourceTransparency),
		fmt.Sprintf("  - Evidence quality: %d/25", s.EvidenceQuality),
		fmt.Sprintf("  - Corrections culture: %d/20", s.CorrectionsCulture),
		fmt.Sprintf("  - Context discipline: %d/20", s.ContextDiscipline),
		fmt.Sprintf("  - Headline alignment: %d/10", s.HeadlineAlignment),
	}
}

func footnoteLines(notes []string) []string {
	if len(notes) == 0 {
		return []string{noSourceFallback}
	}
	lines := make([]string, 0, len(notes))
	for i, n := range notes {
		lines = append(lines, fmt.Sprintf("[%d] %s", i+1, n))
	}
	return lines
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func setList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
