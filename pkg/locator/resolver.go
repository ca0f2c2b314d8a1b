package locator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devicelab-dev/webpilot/pkg/browser"
)

// ResolutionError reports that no candidate of a locator expression matched.
// It carries every attempted candidate's failure and the last underlying one.
type ResolutionError struct {
	Expression string
	Attempts   []Attempt
	Last       error
}

// Attempt records one failed candidate.
type Attempt struct {
	Candidate string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve locator %q after %d candidates: %v", e.Expression, len(e.Attempts), e.Last)
}

func (e *ResolutionError) Unwrap() error { return e.Last }

// Resolver tries the candidates of a locator expression in priority order
// until one resolves to a visible element.
type Resolver struct {
	// Timeout bounds the visibility wait of each candidate.
	Timeout time.Duration
	Log     zerolog.Logger
}

// Resolve returns the first visible element any candidate matches, scrolled
// into view. Candidates are tried strictly in sorted order; a candidate that
// errors or times out is recorded and the next one is tried. The caller's
// context deadline, if any, bounds the whole chain.
func (r *Resolver) Resolve(ctx context.Context, page browser.Page, expr string) (browser.Element, error) {
	resErr := &ResolutionError{Expression: expr}
	for _, candidate := range Candidates(expr) {
		if err := ctx.Err(); err != nil {
			resErr.Last = err
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			break
		}
		query, err := BuildQuery(candidate)
		if err != nil {
			resErr.Last = err
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}
		el, err := page.WaitVisible(ctx, query, r.Timeout)
		if err != nil {
			r.Log.Debug().Str("candidate", candidate).Err(err).Msg("locator candidate failed")
			resErr.Last = err
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}
		if err := el.ScrollIntoView(ctx); err != nil {
			resErr.Last = err
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}
		return el, nil
	}
	if resErr.Last == nil {
		resErr.Last = fmt.Errorf("empty locator expression")
	}
	return nil, resErr
}

// BuildQuery translates a single candidate into a page query.
func BuildQuery(candidate string) (browser.Query, error) {
	clean := strings.TrimSpace(candidate)
	switch {
	case strings.HasPrefix(clean, "role="):
		role, attrs, err := ParseRole(clean)
		if err != nil {
			return browser.Query{}, err
		}
		return browser.Query{Kind: browser.QueryRole, Role: role, Attrs: attrs}, nil
	case strings.HasPrefix(clean, "text="):
		return browser.Query{
			Kind:  browser.QueryText,
			Value: strings.TrimPrefix(clean, "text="),
			Exact: true,
		}, nil
	case strings.HasPrefix(clean, "[data-testid="):
		value := strings.SplitN(clean, "=", 2)[1]
		value = strings.Trim(value, `[]'"`)
		return browser.Query{Kind: browser.QueryTestID, Value: value}, nil
	default:
		return browser.Query{Kind: browser.QueryCSS, Value: clean}, nil
	}
}
