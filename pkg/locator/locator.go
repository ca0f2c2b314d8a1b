// Package locator turns pipe-separated locator expressions into ordered
// element queries and resolves them against a page.
package locator

import (
	"sort"
	"strings"
)

// Candidate priorities, lower tried first. Within the same class, shorter
// candidates win as a cheap proxy for specificity.
const (
	priorityTestID      = 0
	priorityRole        = 1
	priorityID          = 2
	priorityName        = 3
	priorityPlaceholder = 4
	priorityText        = 5
	priorityCSS         = 6
	priorityNthChild    = 9
)

// Candidates splits a locator expression on "|", trims each candidate, and
// returns them sorted by (priority, length). The sort is stable so equal
// candidates keep their written order.
func Candidates(expr string) []string {
	var parts []string
	for _, part := range strings.Split(expr, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	sort.SliceStable(parts, func(i, j int) bool {
		pi, pj := Score(parts[i]), Score(parts[j])
		if pi != pj {
			return pi < pj
		}
		return len(parts[i]) < len(parts[j])
	})
	return parts
}

// Score classifies a single candidate by syntactic shape.
func Score(selector string) int {
	clean := strings.TrimSpace(selector)
	switch {
	case strings.Contains(clean, "data-testid"):
		return priorityTestID
	case strings.HasPrefix(clean, "role="):
		return priorityRole
	case strings.HasPrefix(clean, "#"):
		return priorityID
	case strings.Contains(clean, "[name"):
		return priorityName
	case strings.Contains(clean, "[placeholder"):
		return priorityPlaceholder
	case strings.Contains(clean, "text="):
		return priorityText
	case strings.Contains(clean, "nth-child"):
		return priorityNthChild
	default:
		return priorityCSS
	}
}
