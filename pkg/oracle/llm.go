package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	llmdomain "github.com/lexlapax/go-llms/pkg/llm/domain"
	"github.com/lexlapax/go-llms/pkg/util/llmutil"
)

const maxPromptPageText = 4000

// LLMComparator asks a language model whether the page shows the expected
// outcome. The provider comes from environment configuration; when none is
// configured the comparator reports itself unavailable so the oracle's
// heuristic path takes over.
type LLMComparator struct {
	once     sync.Once
	provider llmdomain.Provider
}

// NewLLMComparator creates a comparator backed by llmutil.ProviderFromEnv.
func NewLLMComparator() *LLMComparator {
	return &LLMComparator{}
}

// Evaluate implements Comparator.
func (c *LLMComparator) Evaluate(ctx context.Context, pageText, expectation string) (Verdict, error) {
	c.once.Do(func() {
		provider, _, _, err := llmutil.ProviderFromEnv()
		if err == nil {
			c.provider = provider
		}
	})
	if c.provider == nil {
		return VerdictUnavailable, nil
	}

	if len(pageText) > maxPromptPageText {
		pageText = pageText[:maxPromptPageText]
	}
	prompt := fmt.Sprintf(
		"You are a test oracle. Decide if the provided page text shows the expected outcome.\n"+
			"Expectation: %s\n"+
			"Page text:\n```\n%s\n```\n"+
			"Respond with YES if the expectation is met, NO otherwise.",
		expectation, pageText)

	answer, err := c.provider.Generate(ctx, prompt, llmdomain.WithMaxTokens(8))
	if err != nil {
		return VerdictUnavailable, err
	}
	switch text := strings.ToLower(strings.TrimSpace(answer)); {
	case strings.HasPrefix(text, "yes"):
		return VerdictYes, nil
	case strings.HasPrefix(text, "no"):
		return VerdictNo, nil
	default:
		return VerdictUnavailable, nil
	}
}
