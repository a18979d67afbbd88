package intent

import (
	"sort"
	"strings"
)

// The extractor vocabulary is fixed and deterministic. Anything outside these
// dictionaries is unsupported, not guessed.

// ambiguousMetricTerms are near-synonyms that could mean several metrics at once
// ("reactions" may cover likes and comments). They force an unsupported result.
var ambiguousMetricTerms = map[string]struct{}{
	"реакции": {},
	"реакция": {},
	"реакций": {},
	"реакцию": {},
}

var metricSynonyms = map[Metric][]string{
	MetricViews:    {"просмотры", "просмотр", "просмотров", "views"},
	MetricLikes:    {"лайки", "лайк", "лайков", "нравится", "сердечки"},
	MetricComments: {"комментарии", "комментарий", "коммент", "комменты", "комментариев", "комментариями"},
	MetricReports:  {"жалобы", "жалоба", "жалоб", "пожаловаться", "репорт", "репорты", "репортов"},
}

// metricTermToMetric maps every known synonym token to its metric.
var metricTermToMetric = func() map[string]Metric {
	m := make(map[string]Metric)
	for metric, terms := range metricSynonyms {
		for _, t := range terms {
			m[t] = metric
		}
	}
	return m
}()

type comparatorPhrase struct {
	op     Comparator
	phrase string
}

// comparatorPhrases is ordered longest-first so "не больше" wins over "больше".
var comparatorPhrases = func() []comparatorPhrase {
	bySynonym := map[Comparator][]string{
		CmpGT: {"больше чем", "более чем", "свыше", "больше", "более"},
		CmpGE: {"по меньшей мере", "как минимум", "не меньше", "не менее", "хотя бы"},
		CmpLT: {"меньше чем", "менее чем", "меньше", "менее"},
		CmpLE: {"не превышает", "не больше", "не более", "максимум"},
		CmpEQ: {"равняется", "равно", "ровно"},
	}
	var out []comparatorPhrase
	for op, phrases := range bySynonym {
		for _, p := range phrases {
			out = append(out, comparatorPhrase{op: op, phrase: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].phrase) != len(out[j].phrase) {
			return len(out[i].phrase) > len(out[j].phrase)
		}
		return out[i].phrase < out[j].phrase
	})
	return out
}()

// magnitudeSuffixes are the recognized magnitude abbreviations for threshold values.
var magnitudeSuffixes = map[string]int64{
	"к":     1_000,
	"k":     1_000,
	"тыс":   1_000,
	"тысяч": 1_000,
	"млн":   1_000_000,
	"m":     1_000_000,
	"млрд":  1_000_000_000,
}

// ruMonths maps genitive Russian month names to month numbers.
var ruMonths = map[string]int{
	"января":   1,
	"февраля":  2,
	"марта":    3,
	"апреля":   4,
	"мая":      5,
	"июня":     6,
	"июля":     7,
	"августа":  8,
	"сентября": 9,
	"октября":  10,
	"ноября":   11,
	"декабря":  12,
}

func hasAmbiguousMetricTerm(text string) bool {
	for _, tok := range strings.Fields(text) {
		if _, ok := ambiguousMetricTerms[tok]; ok {
			return true
		}
	}
	return false
}

// findMetrics returns every metric explicitly named in the text by a known synonym.
func findMetrics(text string) map[Metric]struct{} {
	found := make(map[Metric]struct{})
	for _, tok := range strings.Fields(text) {
		if m, ok := metricTermToMetric[tok]; ok {
			found[m] = struct{}{}
		}
	}
	return found
}

// detectSingleMetric returns the metric mentioned in the text only when exactly one
// is present; several mentions are ambiguous and yield no metric.
func detectSingleMetric(text string) (Metric, bool) {
	found := findMetrics(text)
	if len(found) != 1 {
		return "", false
	}
	for m := range found {
		return m, true
	}
	return "", false
}
