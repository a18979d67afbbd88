package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Russian date expressions are parsed with explicit patterns only; there is no
// relative-date handling ("вчера") and no guessing. All days are UTC calendar days.
//
// RE2 note: \b is ASCII-only, so boundaries around Cyrillic words are expressed as
// explicit whitespace alternations.

var monthAlternation = func() string {
	names := make([]string, 0, len(ruMonths))
	for name := range ruMonths {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}()

var (
	// "с 1 по 5 ноября 2025"
	rangeSameMonthRe = regexp.MustCompile(
		`(?:^|\s)с\s+(\d{1,2})\s+по\s+(\d{1,2})\s+(` + monthAlternation + `)\s+(\d{4})(?:\s|$)`)

	// "с 28 октября по 2 ноября 2025"
	rangeMonthToMonthRe = regexp.MustCompile(
		`(?:^|\s)с\s+(\d{1,2})\s+(` + monthAlternation + `)\s+по\s+(\d{1,2})\s+(` + monthAlternation + `)\s+(\d{4})(?:\s|$)`)

	// "с 2025-11-01 по 2025-11-05"
	rangeISORe = regexp.MustCompile(
		`(?:^|\s)с\s+(\d{4})-(\d{2})-(\d{2})\s+по\s+(\d{4})-(\d{2})-(\d{2})(?:\s|$)`)

	// "3 ноября 2025"
	singleRuRe = regexp.MustCompile(
		`(?:^|\s)(\d{1,2})\s+(` + monthAlternation + `)\s+(\d{4})(?:\s|$)`)

	// "2025-11-03" (also produced by normalization from "03.11.2025")
	singleISORe = regexp.MustCompile(`(?:^|\s)(\d{4})-(\d{2})-(\d{2})(?:\s|$)`)

	// "с 10:00 до 12:30"
	timeWindowRe = regexp.MustCompile(
		`(?:^|\s)с\s+(\d{1,2}):(\d{2})\s+до\s+(\d{1,2}):(\d{2})(?:\s|$)`)
)

func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Nov 31 -> Dec 1); reject such inputs.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseDateRange extracts a single day or an inclusive day range from normalized
// text. Both bounds are returned as UTC midnights with start <= end.
func parseDateRange(text string) (start, end time.Time, ok bool) {
	if m := rangeSameMonthRe.FindStringSubmatch(text); m != nil {
		month := ruMonths[m[3]]
		year := mustInt(m[4])
		s, okS := civilDate(year, month, mustInt(m[1]))
		e, okE := civilDate(year, month, mustInt(m[2]))
		if okS && okE {
			return ordered(s, e)
		}
		return time.Time{}, time.Time{}, false
	}

	if m := rangeMonthToMonthRe.FindStringSubmatch(text); m != nil {
		year := mustInt(m[5])
		s, okS := civilDate(year, ruMonths[m[2]], mustInt(m[1]))
		e, okE := civilDate(year, ruMonths[m[4]], mustInt(m[3]))
		if okS && okE {
			return ordered(s, e)
		}
		return time.Time{}, time.Time{}, false
	}

	if m := rangeISORe.FindStringSubmatch(text); m != nil {
		s, okS := civilDate(mustInt(m[1]), mustInt(m[2]), mustInt(m[3]))
		e, okE := civilDate(mustInt(m[4]), mustInt(m[5]), mustInt(m[6]))
		if okS && okE {
			return ordered(s, e)
		}
		return time.Time{}, time.Time{}, false
	}

	dates := collectSingleDates(text)
	switch {
	case len(dates) >= 2:
		return ordered(dates[0], dates[1])
	case len(dates) == 1:
		return dates[0], dates[0], true
	}
	return time.Time{}, time.Time{}, false
}

// collectSingleDates finds every standalone yearful date mention in text order.
func collectSingleDates(text string) []time.Time {
	type hit struct {
		pos int
		d   time.Time
	}
	var hits []hit

	for _, m := range singleRuRe.FindAllStringSubmatchIndex(text, -1) {
		day := mustInt(text[m[2]:m[3]])
		month := ruMonths[text[m[4]:m[5]]]
		year := mustInt(text[m[6]:m[7]])
		if d, ok := civilDate(year, month, day); ok {
			hits = append(hits, hit{pos: m[0], d: d})
		}
	}
	for _, m := range singleISORe.FindAllStringSubmatchIndex(text, -1) {
		year := mustInt(text[m[2]:m[3]])
		month := mustInt(text[m[4]:m[5]])
		day := mustInt(text[m[6]:m[7]])
		if d, ok := civilDate(year, month, day); ok {
			hits = append(hits, hit{pos: m[0], d: d})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]time.Time, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.d)
	}
	return out
}

func ordered(a, b time.Time) (time.Time, time.Time, bool) {
	if a.After(b) {
		return b, a, true
	}
	return a, b, true
}

// parseTimeWindow extracts a "с HH:MM до HH:MM" band from normalized text.
func parseTimeWindow(text string) (startHHMM, endHHMM string, ok bool) {
	m := timeWindowRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	sh, sm := mustInt(m[1]), mustInt(m[2])
	eh, em := mustInt(m[3]), mustInt(m[4])
	if sh > 23 || eh > 23 || sm > 59 || em > 59 {
		return "", "", false
	}
	return fmt.Sprintf("%02d:%02d", sh, sm), fmt.Sprintf("%02d:%02d", eh, em), true
}

// hasTimeWindowPhrase reports whether the text contains a time-of-day band at all,
// regardless of whether the surrounding context qualifies it.
func hasTimeWindowPhrase(text string) bool {
	return timeWindowRe.MatchString(text)
}
