package executor

import (
	"regexp"
	"strings"
)

// globMatch matches s against a shell-style pattern where '*' spans any run
// of characters, including '/', and '?' matches a single character. URL
// patterns like "*/api/users*" need '*' to cross path separators, which
// rules out path.Match.
func globMatch(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
