package oracle

import (
	"context"
	"strings"
)

// Verdict is the outcome of a semantic comparison.
type Verdict int

const (
	// VerdictUnavailable means the comparator could not decide; the caller
	// falls back to the local heuristic.
	VerdictUnavailable Verdict = iota
	VerdictYes
	VerdictNo
)

// Comparator decides whether page text satisfies a natural-language
// expectation. Implementations may call out to a language model; the zero
// configuration is the local, network-free heuristic.
type Comparator interface {
	Evaluate(ctx context.Context, pageText, expectation string) (Verdict, error)
}

// HeuristicMatch is the local semantic fallback. It accepts when the
// expectation appears as a substring of the page text, when a probe text
// does, when the expectation's leading words appear near a status region
// hinted by selector, or when the first two significant words of the
// expectation all appear somewhere in the page text.
func HeuristicMatch(pageText, expectation, selector, probeText string) bool {
	expectation = strings.TrimSpace(expectation)
	if expectation == "" {
		return false
	}
	pageLower := strings.ToLower(pageText)
	expLower := strings.ToLower(expectation)

	if strings.Contains(pageLower, expLower) {
		return true
	}
	if probeText != "" && strings.Contains(pageLower, strings.ToLower(probeText)) {
		return true
	}
	if strings.Contains(selector, "#status") {
		if frag := extractAround(pageText, "status", 200); frag != "" {
			words := significantWords(expLower)
			if len(words) > 0 && strings.Contains(strings.ToLower(frag), words[0]) {
				return true
			}
		}
	}

	words := significantWords(expLower)
	if len(words) > 2 {
		words = words[:2]
	}
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		if !strings.Contains(pageLower, word) {
			return false
		}
	}
	return true
}

// trivialWords are function words that carry no expectation content.
var trivialWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"for": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "so": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"was": {}, "with": {},
}

// significantWords tokenizes an expectation, dropping punctuation and
// trivial function words.
func significantWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
	var words []string
	for _, f := range fields {
		if _, trivial := trivialWords[f]; trivial || len(f) < 2 {
			continue
		}
		words = append(words, f)
	}
	return words
}

// extractAround returns a span characters wide window of text centered on
// the first occurrence of marker, or "" when absent.
func extractAround(text, marker string, span int) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(marker))
	if idx < 0 {
		return ""
	}
	start := idx - span/2
	if start < 0 {
		start = 0
	}
	end := idx + span/2
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
