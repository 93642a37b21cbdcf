package signals

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAnalyzeSensationalAndMonetization(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	text := "This SHOCKING video EXPOSED the sponsor scandal, use code SAVE10"

	bundle := ex.Analyze(text)
	if !reflect.DeepEqual(bundle.SensationalTerms, []string{"exposed", "shocking"}) {
		t.Fatalf("unexpected sensational terms: %v", bundle.SensationalTerms)
	}
	if !bundle.Clickbait {
		t.Fatalf("expected clickbait cue to fire")
	}

	money := ex.DetectMonetization(text)
	if !reflect.DeepEqual(money, []string{"promo code", "sponsor"}) {
		t.Fatalf("unexpected monetization labels: %v", money)
	}
}

func TestAnalyzeNoMatches(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	text := "Weekly gardening tips for tomatoes and basil"

	bundle := ex.Analyze(text)
	if len(bundle.SensationalTerms) != 0 || len(bundle.LoadedTerms) != 0 {
		t.Fatalf("expected empty term lists, got %v / %v", bundle.SensationalTerms, bundle.LoadedTerms)
	}
	if bundle.UsVsThem || bundle.ExplicitLanguage || bundle.Clickbait || bundle.AppealAuthority ||
		bundle.AppealCommonSense || bundle.AppealEmotion || bundle.AnecdoteAsTrend {
		t.Fatalf("expected all boolean signals false: %+v", bundle)
	}
	if len(bundle.AffiliationsFound) != 0 || len(bundle.IdeologyHits) != 0 {
		t.Fatalf("expected no affiliations or ideologies: %+v", bundle)
	}
	if money := ex.DetectMonetization(text); len(money) != 0 {
		t.Fatalf("expected no monetization, got %v", money)
	}
}

func TestAnalyzeTermsFollowLexiconOrder(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	bundle := ex.Analyze("insane bombshell: they were exposed")

	want := []string{"exposed", "insane", "bombshell"}
	if !reflect.DeepEqual(bundle.SensationalTerms, want) {
		t.Fatalf("expected %v, got %v", want, bundle.SensationalTerms)
	}
	if !bundle.UsVsThem {
		t.Fatalf("expected us-vs-them framing")
	}
}

func TestAnalyzeAffiliationsAndIdeologiesCaseInsensitive(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())

	bundle := ex.Analyze("Interview with Turning Point USA and the nra")
	if !reflect.DeepEqual(bundle.AffiliationsFound, []string{"NRA", "Turning Point USA"}) {
		t.Fatalf("unexpected affiliations: %v", bundle.AffiliationsFound)
	}

	bundle = ex.Analyze("A Libertarian take on CONSERVATIVE and progressive policy")
	if !reflect.DeepEqual(bundle.IdeologyHits, []string{"conservative", "libertarian", "progressive"}) {
		t.Fatalf("unexpected ideologies: %v", bundle.IdeologyHits)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	inputs := []string{
		"",
		"Experts say the elites are terrified; everyone is talking about it. What a shit show",
		"Sponsored by a store near you, patreon link, use code FREE, ref link below",
	}

	for _, in := range inputs {
		first := ex.Analyze(in)
		second := ex.Analyze(in)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("analyze not deterministic for %q: %+v vs %+v", in, first, second)
		}
		if !reflect.DeepEqual(ex.DetectMonetization(in), ex.DetectMonetization(in)) {
			t.Fatalf("monetization not deterministic for %q", in)
		}
	}
}

func TestAnalyzeRhetoricFlags(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	bundle := ex.Analyze("Experts say it is obviously heartbreaking and everyone is sharing it. F*ck.")

	if !bundle.AppealAuthority || !bundle.AppealCommonSense || !bundle.AppealEmotion {
		t.Fatalf("expected all appeal flags: %+v", bundle)
	}
	if !bundle.AnecdoteAsTrend {
		t.Fatalf("expected anecdote-as-trend")
	}
	if !bundle.ExplicitLanguage {
		t.Fatalf("expected explicit language")
	}
}

func TestDetectMonetizationAllCategories(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(DefaultLexicon())
	got := ex.DetectMonetization("Paid partnership. My code XYZ. Referral link. Join my Patreon. New merch drop!")
	want := []string{"affiliate", "donations/membership", "merch", "promo code", "sponsor"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadLexiconExtendsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	body := `
sensational:
  - jaw-dropping
  - shocking
monetization:
  - label: sponsor
    phrases: ["brought to you by"]
  - label: crypto
    phrases: ["airdrop"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}

	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon error: %v", err)
	}

	def := DefaultLexicon()
	if len(lex.Sensational) != len(def.Sensational)+1 {
		t.Fatalf("expected one new sensational phrase, got %d total", len(lex.Sensational))
	}
	if lex.Sensational[len(lex.Sensational)-1] != "jaw-dropping" {
		t.Fatalf("extension must append after defaults: %v", lex.Sensational)
	}

	ex := NewExtractor(lex)
	got := ex.DetectMonetization("This episode is brought to you by an airdrop")
	if !reflect.DeepEqual(got, []string{"crypto", "sponsor"}) {
		t.Fatalf("unexpected labels: %v", got)
	}
}

func TestLoadLexiconMissingFile(t *testing.T) {
	t.Parallel()

	lex, err := LoadLexicon(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if !reflect.DeepEqual(lex, DefaultLexicon()) {
		t.Fatalf("expected defaults on failure")
	}
}
