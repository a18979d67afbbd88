package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Rules is the deterministic baseline intent producer. It is a pure function of the
// input text and the fixed lexicon: no I/O, no state, no guessing. Questions outside
// the recognized patterns yield ErrUnsupported, never a partially filled intent.
type Rules struct{}

// NewRules returns the rule-based producer.
func NewRules() *Rules { return &Rules{} }

// Name identifies the producer in logs and metrics.
func (*Rules) Name() string { return "rules" }

// Produce implements Producer. The context is unused; extraction never blocks.
func (*Rules) Produce(_ context.Context, text string) (*Raw, error) {
	return Extract(text)
}

var (
	creatorIDRe = regexp.MustCompile(
		`(?:^|\s)(?:креатора?|creator)(?:\s+с)?(?:\s+(?:id|айди|идентификатор|creator_id))?\s*:?\s*([0-9a-z][0-9a-z_\-]{2,})(?:\s|$)`)

	asOfDayRe = regexp.MustCompile(`(?:^|\s)к\s+\d{1,2}\s`)
)

var allTimePhrases = []string{
	" за все время ",
	" за весь период ",
	" all time ",
}

var asOfPhrases = []string{
	" на тот момент ",
	" на дату ",
	" по состоянию на ",
}

// thresholdMatch is one comparator+value+metric hit with its span in the text.
type thresholdMatch struct {
	start, end int
	metric     Metric
	op         Comparator
	value      int64
}

var (
	thresholdCompFirstRe   *regexp.Regexp // "более чем 100000 лайков"
	thresholdMetricFirstRe *regexp.Regexp // "лайков больше 100000"
	comparatorByPhrase     = map[string]Comparator{}
)

func init() {
	compParts := make([]string, 0, len(comparatorPhrases))
	for _, cp := range comparatorPhrases {
		compParts = append(compParts, regexp.QuoteMeta(cp.phrase))
		comparatorByPhrase[cp.phrase] = cp.op
	}
	compAlt := strings.Join(compParts, "|")

	metricTerms := make([]string, 0, len(metricTermToMetric))
	for term := range metricTermToMetric {
		metricTerms = append(metricTerms, term)
	}
	sort.Slice(metricTerms, func(i, j int) bool {
		if len(metricTerms[i]) != len(metricTerms[j]) {
			return len(metricTerms[i]) > len(metricTerms[j])
		}
		return metricTerms[i] < metricTerms[j]
	})
	metricAlt := strings.Join(metricTerms, "|")

	magTerms := make([]string, 0, len(magnitudeSuffixes))
	for term := range magnitudeSuffixes {
		magTerms = append(magTerms, term)
	}
	sort.Slice(magTerms, func(i, j int) bool {
		if len(magTerms[i]) != len(magTerms[j]) {
			return len(magTerms[i]) > len(magTerms[j])
		}
		return magTerms[i] < magTerms[j]
	})
	magAlt := strings.Join(magTerms, "|")

	value := `(\d(?:[\d\s_]*\d)?)`

	thresholdCompFirstRe = regexp.MustCompile(
		`(` + compAlt + `)\s+` + value + `\s*(` + magAlt + `)?\s+(` + metricAlt + `)(?:\s|$)`)
	thresholdMetricFirstRe = regexp.MustCompile(
		`(` + metricAlt + `)\s+(` + compAlt + `)\s+` + value + `\s*(` + magAlt + `)?(?:\s|$)`)
}

func hasAnyPhrase(text string, phrases []string) bool {
	padded := " " + text + " "
	for _, p := range phrases {
		if strings.Contains(padded, p) {
			return true
		}
	}
	return false
}

func hasAsOfPhrase(text string) bool {
	// Kept strict: a bare "к" is too common a preposition to trust without a day
	// number right after it.
	return hasAnyPhrase(text, asOfPhrases) || asOfDayRe.MatchString(text+" ")
}

func parseThresholdValue(digits, magnitude string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, digits)
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	if magnitude != "" {
		mult := magnitudeSuffixes[magnitude]
		if mult == 0 {
			return 0, false
		}
		if n > (1<<63-1)/mult {
			return 0, false
		}
		n *= mult
	}
	return n, true
}

// extractThresholds finds every comparator/value/metric triple in the text and
// returns the matches together with the text with those spans blanked out, so the
// question metric can be detected without picking up threshold metrics.
func extractThresholds(text string) ([]thresholdMatch, string) {
	var matches []thresholdMatch

	for _, idx := range thresholdCompFirstRe.FindAllStringSubmatchIndex(text, -1) {
		op := comparatorByPhrase[text[idx[2]:idx[3]]]
		mag := ""
		if idx[6] >= 0 {
			mag = text[idx[6]:idx[7]]
		}
		v, ok := parseThresholdValue(text[idx[4]:idx[5]], mag)
		if !ok {
			continue
		}
		matches = append(matches, thresholdMatch{
			start:  idx[0],
			end:    idx[1],
			metric: metricTermToMetric[text[idx[8]:idx[9]]],
			op:     op,
			value:  v,
		})
	}

	for _, idx := range thresholdMetricFirstRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(matches, idx[0], idx[1]) {
			continue
		}
		op := comparatorByPhrase[text[idx[4]:idx[5]]]
		mag := ""
		if idx[8] >= 0 {
			mag = text[idx[8]:idx[9]]
		}
		v, ok := parseThresholdValue(text[idx[6]:idx[7]], mag)
		if !ok {
			continue
		}
		matches = append(matches, thresholdMatch{
			start:  idx[0],
			end:    idx[1],
			metric: metricTermToMetric[text[idx[2]:idx[3]]],
			op:     op,
			value:  v,
		})
	}

	residual := []byte(text)
	for _, m := range matches {
		for i := m.start; i < m.end; i++ {
			if residual[i] != ' ' {
				residual[i] = ' '
			}
		}
	}
	return matches, string(residual)
}

func overlaps(matches []thresholdMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.end && m.start < end {
			return true
		}
	}
	return false
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		set[tok] = struct{}{}
	}
	return set
}

func anyTokenHasPrefix(tokens map[string]struct{}, prefixes ...string) bool {
	for tok := range tokens {
		for _, p := range prefixes {
			if strings.HasPrefix(tok, p) {
				return true
			}
		}
	}
	return false
}

func hasToken(tokens map[string]struct{}, words ...string) bool {
	for _, w := range words {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

// detectOperation maps lexical cues in the threshold-free residual text onto one of
// the supported operations. Cue order matters: delta cues are checked before the
// generic counting forms so "дельта ... отрицательна" never degrades to count_videos.
func detectOperation(residual string) (Operation, bool) {
	padded := " " + residual + " "
	tokens := tokenSet(residual)

	growth := strings.Contains(padded, " на сколько ") ||
		strings.Contains(padded, " насколько ") ||
		hasToken(tokens, "прирост") ||
		anyTokenHasPrefix(tokens, "вырос", "увеличил")
	if growth {
		return OpSumDeltaMetric, true
	}

	if anyTokenHasPrefix(tokens, "дельт") && anyTokenHasPrefix(tokens, "отрицатель") {
		return OpCountSnapshotsNegativeDelta, true
	}

	counting := hasToken(tokens, "сколько", "число", "числа") ||
		anyTokenHasPrefix(tokens, "количеств")
	if !counting {
		return "", false
	}

	hasVideo := anyTokenHasPrefix(tokens, "видео") ||
		hasToken(tokens, "ролик", "ролика", "ролики", "роликов")

	if hasVideo && anyTokenHasPrefix(tokens, "новых", "новые", "новым") {
		return OpCountVideosPositiveDelta, true
	}
	if hasToken(tokens, "дней", "дня") {
		return OpCountDistinctPublishDays, true
	}
	if hasToken(tokens, "креаторов", "авторов", "блогеров") {
		return OpCountDistinctCreators, true
	}
	if len(findMetrics(residual)) > 0 {
		return OpSumTotalMetric, true
	}
	if hasVideo {
		return OpCountVideos, true
	}
	return "", false
}

func unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// Extract maps free-form text onto a raw intent or an unsupported error. It is
// deterministic: the same text always yields the same result.
func Extract(text string) (*Raw, error) {
	normalized := normalizeText(text)
	if normalized == "" {
		return nil, unsupportedf("empty input")
	}
	if hasAmbiguousMetricTerm(normalized) {
		return nil, unsupportedf("ambiguous metric term")
	}

	asOf := hasAsOfPhrase(normalized)

	thresholds, residual := extractThresholds(normalized)

	op, ok := detectOperation(residual)
	if !ok {
		return nil, unsupportedf("no operation cue")
	}

	raw := &Raw{Operation: string(op)}

	if op.RequiresMetric() {
		metric, ok := detectSingleMetric(residual)
		if !ok {
			return nil, unsupportedf("metric missing or ambiguous")
		}
		m := string(metric)
		raw.Metric = &m
	}

	var dateRange *RawDateRange
	if !hasAnyPhrase(normalized, allTimePhrases) {
		if start, end, ok := parseDateRange(normalized); ok {
			scope := ScopeSnapshotsCreatedAt
			if !asOf && opReadsVideos(op) {
				scope = ScopeVideosPublishedAt
			}
			dateRange = &RawDateRange{
				Scope:     string(scope),
				StartDate: start.Format(dateLayout),
				EndDate:   end.Format(dateLayout),
				Inclusive: true,
			}
		}
	}
	if asOf && dateRange == nil {
		return nil, unsupportedf("as-of threshold requires a date")
	}
	raw.DateRange = dateRange

	if hasTimeWindowPhrase(normalized) {
		startTime, endTime, ok := parseTimeWindow(normalized)
		if !ok || dateRange == nil ||
			dateRange.Scope != string(ScopeSnapshotsCreatedAt) ||
			dateRange.StartDate != dateRange.EndDate {
			// A time-of-day band only means something inside one snapshot day;
			// dropping it silently would answer a different question.
			return nil, unsupportedf("time window outside a single snapshot day")
		}
		raw.TimeWindow = &RawTimeWindow{StartTime: startTime, EndTime: endTime}
	}

	appliesTo := AppliesFinalTotal
	if asOf {
		appliesTo = AppliesSnapshotAsOf
	}
	rawThresholds := dedupThresholds(thresholds, appliesTo)

	var creatorID *string
	if m := creatorIDRe.FindStringSubmatch(normalized); m != nil {
		id := m[1]
		creatorID = &id
	}

	if creatorID != nil || len(rawThresholds) > 0 {
		raw.Filters = &RawFilters{CreatorID: creatorID, Thresholds: rawThresholds}
	}

	return raw, nil
}

// dedupThresholds drops exact duplicates while preserving mention order.
func dedupThresholds(matches []thresholdMatch, appliesTo AppliesTo) []RawThreshold {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	type key struct {
		metric Metric
		op     Comparator
		value  int64
	}
	seen := make(map[key]struct{})
	var out []RawThreshold
	for _, m := range matches {
		k := key{metric: m.metric, op: m.op, value: m.value}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, RawThreshold{
			AppliesTo: string(appliesTo),
			Metric:    string(m.metric),
			Op:        string(m.op),
			Value:     json.Number(strconv.FormatInt(m.value, 10)),
		})
	}
	return out
}

func opReadsVideos(op Operation) bool {
	switch op {
	case OpCountVideos, OpCountDistinctCreators, OpCountDistinctPublishDays, OpSumTotalMetric:
		return true
	}
	return false
}
