// Package sensitivity ranks market subject matter into priority tiers
// that drive the evidentiary bar for alerting.
package sensitivity

import (
	"regexp"
	"strings"
)

// Sensitivity levels, highest priority first.
const (
	LevelCritical   = "CRITICAL"
	LevelHigh       = "HIGH"
	LevelMediumHigh = "MEDIUM-HIGH"
	LevelMedium     = "MEDIUM"
	LevelLow        = "LOW"
	LevelNormal     = "NORMAL"
)

// Sensitivity is the classification of one market's subject matter.
type Sensitivity struct {
	Priority        int // 1 = highest
	Level           string
	Score           int
	MatchedKeywords []string
}

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

type tier struct {
	priority int
	level    string
	score    int
	keywords []keywordPattern
}

// Keyword tiers, evaluated in order with short-circuit at the first
// match: a market mentioning both "coup" and "celebrity" is CRITICAL.
var tiers = []tier{
	{1, LevelCritical, 100, compileKeywords(
		"coup", "coup d'etat", "military coup", "regime change", "overthrow",
		"war", "invasion", "conflict", "military action", "armed conflict",
		"assassination", "assassinate", "killed", "murdered",
		"revolution", "uprising", "rebellion", "insurgency",
		"nuclear", "nuclear war", "nuclear weapon",
		"civil war", "civil unrest", "civil conflict",
	)},
	{2, LevelHigh, 80, compileKeywords(
		"election", "presidential election", "vote", "voting", "ballot",
		"resign", "resignation", "step down", "stepdown",
		"impeach", "impeachment", "removed from office",
		"prime minister", "president", "chancellor",
		"referendum", "plebiscite",
	)},
	{3, LevelMediumHigh, 60, compileKeywords(
		"sanction", "sanctions", "embargo", "trade ban",
		"arrest", "arrested", "indictment", "indicted",
		"charges", "charged", "prosecution", "prosecute",
		"trial", "conviction", "sentenced",
		"freeze assets", "asset freeze", "seized",
		"politics", "geopolitics", "geopolitical",
	)},
	{4, LevelMedium, 40, compileKeywords(
		"ai ban", "artificial intelligence ban", "chatgpt ban", "openai ban",
		"tech ban", "technology ban", "export ban", "export control",
		"semiconductor", "chip ban", "chip export",
		"regulation", "regulate", "regulatory",
	)},
	{5, LevelLow, 20, compileKeywords(
		"celebrity", "actor", "actress", "singer", "musician",
		"award", "oscar", "grammy", "emmy",
		"divorce", "marriage", "engagement",
		"death", "died", "passes away",
	)},
}

func compileKeywords(keywords ...string) []keywordPattern {
	patterns := make([]keywordPattern, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, keywordPattern{
			keyword: kw,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	return patterns
}

// Classify ranks a market by its question text and category. Keywords
// match on word boundaries against the lowercase concatenation of both.
// No match falls back to NORMAL / priority 5 / score 0.
func Classify(question, category string) Sensitivity {
	if question == "" && category == "" {
		return normal()
	}

	text := strings.ToLower(question + " " + category)

	for _, tr := range tiers {
		for _, kp := range tr.keywords {
			if kp.re.MatchString(text) {
				return Sensitivity{
					Priority:        tr.priority,
					Level:           tr.level,
					Score:           tr.score,
					MatchedKeywords: []string{kp.keyword},
				}
			}
		}
	}

	return normal()
}

// RequiredSignalCount returns the number of fired signals needed before
// an alert may fire. Higher-stakes markets take a lower bar: a missed
// alert there costs more than a false positive.
func RequiredSignalCount(s Sensitivity) int {
	switch {
	case s.Priority <= 2:
		return 1
	case s.Priority == 3:
		return 2
	default:
		return 3
	}
}

func normal() Sensitivity {
	return Sensitivity{Priority: 5, Level: LevelNormal, Score: 0, MatchedKeywords: []string{}}
}
