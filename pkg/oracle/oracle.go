// Package oracle decides whether a page satisfies an expectation, checking a
// fast literal path before a semantic fallback.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/devicelab-dev/webpilot/pkg/browser"
	"github.com/devicelab-dev/webpilot/pkg/scenario"
)

// OracleError reports an unmet expectation.
type OracleError struct {
	Expectation string
	Cause       error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("expectation not met: %q: %v", e.Expectation, e.Cause)
	}
	return fmt.Sprintf("expectation not met: %q", e.Expectation)
}

func (e *OracleError) Unwrap() error { return e.Cause }

// PageText supplies the page's full visible text to the semantic tier. The
// engine injects its cached reader here.
type PageText func(ctx context.Context, page browser.Page) (string, error)

// Oracle evaluates see steps against a page.
type Oracle struct {
	// Timeout bounds the literal visibility wait.
	Timeout time.Duration
	// Comparator is the optional external semantic capability. Nil means
	// heuristic only.
	Comparator Comparator
	// Text reads the page's visible text; defaults to InnerText("body").
	Text PageText
	Log  zerolog.Logger
}

// Assert checks a see step. The literal tier waits for step.Text to be
// visible; on absence or timeout the semantic tier evaluates the step's
// expectation against the full page text, via the comparator when one is
// configured and decisive, else via the local heuristic.
func (o *Oracle) Assert(ctx context.Context, page browser.Page, step *scenario.SeeStep) error {
	var literalErr error
	if step.Text != "" {
		_, err := page.WaitVisible(ctx, browser.Query{Kind: browser.QueryText, Value: step.Text}, o.Timeout)
		if err == nil {
			return nil
		}
		literalErr = err
		o.Log.Debug().Str("text", step.Text).Err(err).Msg("literal assertion missed, trying semantic tier")
	}

	expectation := step.Expectation()
	if expectation == "" {
		return &OracleError{Expectation: step.Text, Cause: literalErr}
	}

	pageText, err := o.pageText(ctx, page)
	if err != nil {
		return &OracleError{Expectation: expectation, Cause: err}
	}

	if o.Comparator != nil {
		verdict, err := o.Comparator.Evaluate(ctx, pageText, expectation)
		if err != nil {
			o.Log.Warn().Err(err).Msg("comparator errored, falling back to heuristic")
		}
		switch verdict {
		case VerdictYes:
			return nil
		case VerdictNo:
			return &OracleError{Expectation: expectation}
		}
	}

	if HeuristicMatch(pageText, expectation, step.Selector, step.Text) {
		return nil
	}
	return &OracleError{Expectation: expectation, Cause: literalErr}
}

func (o *Oracle) pageText(ctx context.Context, page browser.Page) (string, error) {
	if o.Text != nil {
		return o.Text(ctx, page)
	}
	return page.InnerText(ctx, "body")
}
