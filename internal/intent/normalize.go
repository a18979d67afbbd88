package intent

import (
	"regexp"
	"strings"
)

var (
	dottedDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	nonWordRe    = regexp.MustCompile(`[^0-9a-zа-я_:\-\s]+`)
	multispaceRe = regexp.MustCompile(`\s+`)
)

// normalizeText prepares user text for deterministic lexical scanning.
//
// Normalization is intentionally conservative: lowercase, ё->е, unicode dashes to
// ASCII, dotted dates (DD.MM.YYYY) rewritten to ISO so they survive punctuation
// stripping, everything else outside the token alphabet replaced by spaces. The
// goal is deterministic tokenization, not lemmatization.
func normalizeText(text string) string {
	value := strings.ToLower(strings.TrimSpace(text))
	value = strings.ReplaceAll(value, "ё", "е")

	value = strings.ReplaceAll(value, "—", "-")
	value = strings.ReplaceAll(value, "–", "-")

	// Quotes and backticks separate tokens but keep their contents (IDs).
	value = strings.NewReplacer("`", " ", `"`, " ", "'", " ").Replace(value)

	value = dottedDateRe.ReplaceAllStringFunc(value, func(s string) string {
		m := dottedDateRe.FindStringSubmatch(s)
		return m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
	})

	value = nonWordRe.ReplaceAllString(value, " ")
	value = multispaceRe.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
