package signals

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MonetizationRule maps a monetization label to the phrases that trigger it.
type MonetizationRule struct {
	Label   string   `yaml:"label"`
	Phrases []string `yaml:"phrases"`
}

// Lexicon holds the ordered trigger phrases for every signal category.
// Phrase order is significant: matched term lists are reported in it.
type Lexicon struct {
	Sensational     []string           `yaml:"sensational"`
	Loaded          []string           `yaml:"loaded"`
	UsVsThem        []string           `yaml:"usVsThem"`
	Clickbait       []string           `yaml:"clickbait"`
	AppealAuthority []string           `yaml:"appealAuthority"`
	AppealCommon    []string           `yaml:"appealCommonSense"`
	AppealEmotion   []string           `yaml:"appealEmotion"`
	AnecdoteTrend   []string           `yaml:"anecdoteAsTrend"`
	Explicit        []string           `yaml:"explicit"`
	Affiliations    []string           `yaml:"affiliations"`
	Ideologies      []string           `yaml:"ideologies"`
	Monetization    []MonetizationRule `yaml:"monetization"`
}

// DefaultLexicon returns a fresh copy of the built-in phrase tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Sensational: []string{
			"exposed", "destroyed", "shocking", "insane", "collapse", "apocalypse", "secret",
			"they don't want you to know", "ultimate", "never seen", "breaking", "must see",
			"bombshell", "meltdown", "obliterates", "epic", "unbelievable",
		},
		Loaded: []string{
			"idiot", "thug", "degenerate", "terrorist", "traitor", "groomer", "commie",
			"fascist", "lunatic", "clown", "cuck", "sheeple",
		},
		UsVsThem: []string{
			"they", "them", "these people", "the elites", "mainstream media", "the woke",
			"libs", "conservatives", "globalists",
		},
		Clickbait:       []string{"you won't believe", "shocking", "what happens next", "exposed", "insane", "secret"},
		AppealAuthority: []string{"experts say", "scientists agree", "data proves", "study shows", "according to sources"},
		AppealCommon:    []string{"obviously", "anyone can see", "it’s common sense", "it's common sense", "clearly"},
		AppealEmotion:   []string{"outrage", "fear", "terrified", "heartbreaking", "disgusting", "proud", "hope"},
		AnecdoteTrend:   []string{"everyone is", "people are saying", "goes viral", "trend proves"},
		Explicit:        []string{"f**", "f*ck", "fuck", "shit", "bitch", "asshole"},
		Affiliations: []string{
			"NRA", "Turning Point USA", "PragerU", "Daily Wire", "Blaze Media", "Heritage Foundation",
			"Project Veritas", "Moms for Liberty", "GOP", "RNC", "DNC", "Antifa", "Black Lives Matter",
			"Proud Boys", "Oath Keepers", "Sierra Club", "ACLU", "Human Rights Campaign", "NARAL",
			"Susan B. Anthony List", "ALEC",
		},
		Ideologies: []string{
			"libertarian", "socialist", "marxist", "communist", "anarchist", "conservative",
			"progressive", "nationalist", "populist", "christian nationalist", "theocratic",
			"secular", "feminist", "traditionalist",
		},
		Monetization: []MonetizationRule{
			{Label: "sponsor", Phrases: []string{"sponsor", "sponsored by", "paid partnership"}},
			{Label: "promo code", Phrases: []string{"promo code", "use code", "my code"}},
			{Label: "affiliate", Phrases: []string{"affiliate", "ref link", "referral"}},
			{Label: "donations/membership", Phrases: []string{"patreon", "substack", "buymeacoffee", "locals.com", "membership"}},
			{Label: "merch", Phrases: []string{"merch", "store", "shop", "teespring"}},
		},
	}
}

// LoadLexicon reads additional phrases from a YAML file and appends them to
// the defaults. Phrases already present are skipped so order stays stable.
func LoadLexicon(path string) (Lexicon, error) {
	lex := DefaultLexicon()
	if strings.TrimSpace(path) == "" {
		return lex, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return lex, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	var extra Lexicon
	if err := yaml.Unmarshal(raw, &extra); err != nil {
		return lex, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	return lex.Extend(extra), nil
}

// Extend returns a new lexicon with the phrases of other appended per category.
func (l Lexicon) Extend(other Lexicon) Lexicon {
	out := Lexicon{
		Sensational:     appendUnique(l.Sensational, other.Sensational),
		Loaded:          appendUnique(l.Loaded, other.Loaded),
		UsVsThem:        appendUnique(l.UsVsThem, other.UsVsThem),
		Clickbait:       appendUnique(l.Clickbait, other.Clickbait),
		AppealAuthority: appendUnique(l.AppealAuthority, other.AppealAuthority),
		AppealCommon:    appendUnique(l.AppealCommon, other.AppealCommon),
		AppealEmotion:   appendUnique(l.AppealEmotion, other.AppealEmotion),
		AnecdoteTrend:   appendUnique(l.AnecdoteTrend, other.AnecdoteTrend),
		Explicit:        appendUnique(l.Explicit, other.Explicit),
		Affiliations:    appendUnique(l.Affiliations, other.Affiliations),
		Ideologies:      appendUnique(l.Ideologies, other.Ideologies),
	}

	out.Monetization = make([]MonetizationRule, 0, len(l.Monetization)+len(other.Monetization))
	index := map[string]int{}
	for _, rule := range l.Monetization {
		index[rule.Label] = len(out.Monetization)
		out.Monetization = append(out.Monetization, MonetizationRule{
			Label:   rule.Label,
			Phrases: appendUnique(nil, rule.Phrases),
		})
	}
	for _, rule := range other.Monetization {
		if i, ok := index[rule.Label]; ok {
			out.Monetization[i].Phrases = appendUnique(out.Monetization[i].Phrases, rule.Phrases)
			continue
		}
		index[rule.Label] = len(out.Monetization)
		out.Monetization = append(out.Monetization, MonetizationRule{
			Label:   rule.Label,
			Phrases: appendUnique(nil, rule.Phrases),
		})
	}

	return out
}

func appendUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, phrase := range list {
			phrase = strings.TrimSpace(phrase)
			key := strings.ToLower(phrase)
			if phrase == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, phrase)
		}
	}
	return out
}
