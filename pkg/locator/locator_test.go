package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		selector string
		expected int
	}{
		{"[data-testid=\"login\"]", priorityTestID},
		{"role=button[name=Login]", priorityRole},
		{"#submit", priorityID},
		{"[name=\"q\"]", priorityName},
		{"[placeholder=\"Search\"]", priorityPlaceholder},
		{"text=Sign in", priorityText},
		{"div > ul li:nth-child(3)", priorityNthChild},
		{".btn-primary", priorityCSS},
		{"form .field input", priorityCSS},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.selector))
		})
	}
}

func TestCandidatesPriorityOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"#a", "text=b", ".c"},
		Candidates("#a|text=b|.c"))
}

func TestCandidatesFullChain(t *testing.T) {
	expr := ".raw|text=Login|[placeholder=\"User\"]|[name=\"user\"]|#user|role=textbox|[data-testid=\"user\"]"
	assert.Equal(t, []string{
		"[data-testid=\"user\"]",
		"role=textbox",
		"#user",
		"[name=\"user\"]",
		"[placeholder=\"User\"]",
		"text=Login",
		".raw",
	}, Candidates(expr))
}

func TestCandidatesShorterFirstWithinClass(t *testing.T) {
	assert.Equal(t,
		[]string{"#ok", "#verylongid"},
		Candidates("#verylongid|#ok"))
}

func TestCandidatesTrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t,
		[]string{"#a", "text=b"},
		Candidates("  #a | text=b |  "))
}

func TestCandidatesNthChildLast(t *testing.T) {
	got := Candidates("li:nth-child(2)|.fallback")
	assert.Equal(t, []string{".fallback", "li:nth-child(2)"}, got)
}
