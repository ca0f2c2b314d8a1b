// Package executor runs resolved scenarios step by step against a page
// handle, applying the retry policy and producing the run report.
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devicelab-dev/webpilot/pkg/browser"
	"github.com/devicelab-dev/webpilot/pkg/config"
	"github.com/devicelab-dev/webpilot/pkg/domcache"
	"github.com/devicelab-dev/webpilot/pkg/locator"
	"github.com/devicelab-dev/webpilot/pkg/oracle"
	"github.com/devicelab-dev/webpilot/pkg/report"
	"github.com/devicelab-dev/webpilot/pkg/scenario"
)

const (
	contextLimitSee     = 500
	contextLimitDefault = 200
	urlPollInterval     = 100 * time.Millisecond
)

// Engine executes one scenario at a time over a single page handle it owns
// exclusively for the run's duration.
type Engine struct {
	page     browser.Page
	settings *config.Settings
	resolver *locator.Resolver
	oracle   *oracle.Oracle
	cache    *domcache.Cache
	log      zerolog.Logger
}

// New creates an engine around a page handle. The DOM snapshot cache is
// built per engine, never shared across runs.
func New(page browser.Page, settings *config.Settings, log zerolog.Logger) *Engine {
	cache := domcache.New(0)
	e := &Engine{
		page:     page,
		settings: settings,
		cache:    cache,
		log:      log,
		resolver: &locator.Resolver{
			Timeout: settings.Timeouts.DefaultDuration(),
			Log:     log,
		},
	}
	e.oracle = &oracle.Oracle{
		Timeout: settings.Timeouts.DefaultDuration(),
		Text:    cache.PageText,
		Log:     log,
	}
	return e
}

// SetComparator installs the optional semantic comparator used by see steps.
func (e *Engine) SetComparator(c oracle.Comparator) {
	e.oracle.Comparator = c
}

// Run executes the scenario's flow in order, fail-fast: the first step that
// exhausts its attempts ends the run and later steps are never attempted.
func (e *Engine) Run(ctx context.Context, sc *scenario.Scenario) *report.RunReport {
	rep := report.New(sc.SourcePath, sc.Meta)
	e.log.Info().Str("scenario", sc.SourcePath).Int("steps", len(sc.Flow)).Msg("run started")

	if err := os.MkdirAll(e.settings.ArtifactsDir, 0o755); err != nil {
		e.log.Warn().Err(err).Msg("could not create artifacts directory")
	}

	for i, step := range sc.Flow {
		result := e.runStep(ctx, i+1, step)
		rep.Steps = append(rep.Steps, result)
		if result.Status == report.StatusFailed {
			rep.Status = report.StatusFailed
			break
		}
	}

	rep.FinishedAt = time.Now().UTC()
	e.log.Info().Str("status", string(rep.Status)).Int("steps", len(rep.Steps)).Msg("run finished")
	return rep
}

// runStep attempts a step up to the configured retry count. A passing
// attempt's duration covers only that attempt. On final failure the step is
// recorded with a screenshot and a truncated page-text snapshot.
func (e *Engine) runStep(ctx context.Context, index int, step scenario.Step) report.StepResult {
	attempts := e.settings.Retry.Step
	var lastErr error
	var duration time.Duration

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		err := e.execute(ctx, step)
		duration = time.Since(start)
		if err == nil {
			e.log.Info().Int("step", index).Str("action", string(step.Type())).
				Int64("durationMs", duration.Milliseconds()).Msg("step passed")
			return report.StepResult{
				Index:      index,
				Action:     string(step.Type()),
				Payload:    step.Payload(),
				Status:     report.StatusPassed,
				DurationMs: duration.Milliseconds(),
			}
		}
		lastErr = err
		e.log.Warn().Int("step", index).Int("attempt", attempt).Err(err).Msg("step attempt failed")
		if !retryable(err) {
			break
		}
	}

	result := report.StepResult{
		Index:      index,
		Action:     string(step.Type()),
		Payload:    step.Payload(),
		Status:     report.StatusFailed,
		DurationMs: duration.Milliseconds(),
		Error:      lastErr.Error(),
		Screenshot: e.captureFailure(ctx, index),
		Context:    e.collectContext(ctx, step.Type()),
	}
	e.log.Error().Int("step", index).Str("action", string(step.Type())).Err(lastErr).Msg("step failed")
	return result
}

// retryable reports whether another attempt could change the outcome.
func retryable(err error) bool {
	var policyErr *NavigationPolicyError
	if errors.As(err, &policyErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// execute dispatches a step over the closed action set.
func (e *Engine) execute(ctx context.Context, step scenario.Step) error {
	switch s := step.(type) {
	case *scenario.GoStep:
		return e.navigate(ctx, s.Path)
	case *scenario.TypingStep:
		el, err := e.resolver.Resolve(ctx, e.page, s.Into)
		if err != nil {
			return err
		}
		defer e.cache.Invalidate(e.page.URL())
		return el.Fill(ctx, s.Text)
	case *scenario.ClickStep:
		el, err := e.resolver.Resolve(ctx, e.page, s.On)
		if err != nil {
			return err
		}
		defer e.cache.Invalidate(e.page.URL())
		return el.Click(ctx)
	case *scenario.SeeStep:
		return e.oracle.Assert(ctx, e.page, s)
	case *scenario.SeeURLStep:
		return e.waitForURL(ctx, s.Fragment)
	case *scenario.WaitAPIStep:
		return e.waitForAPI(ctx, s)
	case *scenario.A11yStep:
		return e.audit(ctx, s.Exclude)
	default:
		return &ActionError{Action: string(step.Type()), Message: "unknown action"}
	}
}

// navigate resolves path against the base URL, enforces the host allow-list,
// and loads the target. A disallowed host never reaches the page handle.
func (e *Engine) navigate(ctx context.Context, path string) error {
	base, err := url.Parse(e.settings.BaseURL)
	if err != nil {
		return &ActionError{Action: "go", Message: "invalid base URL", Cause: err}
	}
	ref, err := url.Parse(path)
	if err != nil {
		return &ActionError{Action: "go", Message: "invalid path", Cause: err}
	}
	target := base.ResolveReference(ref)

	if !e.hostAllowed(target.Hostname()) {
		return &NavigationPolicyError{Host: target.Hostname(), Allowed: e.settings.AllowedHosts}
	}

	if err := e.page.Navigate(ctx, target.String(), browser.WaitDOMContentLoaded, e.settings.Timeouts.DefaultDuration()); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

func (e *Engine) hostAllowed(host string) bool {
	for _, allowed := range e.settings.AllowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

// waitForURL polls until the current URL contains fragment, case-insensitive.
func (e *Engine) waitForURL(ctx context.Context, fragment string) error {
	needle := strings.ToLower(fragment)
	deadline := time.Now().Add(e.settings.Timeouts.URLDuration())
	for {
		current := e.page.URL()
		if strings.Contains(strings.ToLower(current), needle) {
			return nil
		}
		if time.Now().After(deadline) {
			return &ActionError{
				Action:  "seeUrl",
				Message: fmt.Sprintf("url %q does not contain %q within timeout", current, fragment),
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(urlPollInterval):
		}
	}
}

// waitForAPI waits for a response matching the step's URL glob and status
// code, then validates the body when a schema file is given.
func (e *Engine) waitForAPI(ctx context.Context, step *scenario.WaitAPIStep) error {
	match := func(resp browser.Response) bool {
		return resp.Status() == step.Code && globMatch(step.URL, resp.URL())
	}
	resp, err := e.page.WaitResponse(ctx, match, e.settings.Timeouts.APIDuration())
	if err != nil {
		return &ActionError{
			Action:  "waitApi",
			Message: fmt.Sprintf("no response matching %s with status %d", step.URL, step.Code),
			Cause:   err,
		}
	}
	if step.Schema == "" {
		return nil
	}

	schema, err := os.ReadFile(step.Schema) //#nosec G304 -- schema path comes from the scenario
	if err != nil {
		return &ActionError{Action: "waitApi", Message: "schema file not readable", Cause: err}
	}
	body, err := resp.Body()
	if err != nil {
		return &ActionError{Action: "waitApi", Message: "failed reading response body", Cause: err}
	}
	if err := checkBody(schema, body); err != nil {
		return &ActionError{Action: "waitApi", Message: "schema validation failed", Cause: err}
	}
	return nil
}

// audit runs the accessibility scan; any remaining violation fails the step.
func (e *Engine) audit(ctx context.Context, exclude []string) error {
	violations, err := e.page.Audit(ctx, exclude)
	if err != nil {
		return &ActionError{Action: "a11y", Message: "audit failed", Cause: err}
	}
	if len(violations) == 0 {
		return nil
	}
	ids := make([]string, 0, len(violations))
	for _, v := range violations {
		ids = append(ids, v.ID)
	}
	return &ActionError{
		Action:  "a11y",
		Message: fmt.Sprintf("accessibility violations: %d (%s)", len(violations), strings.Join(ids, ", ")),
	}
}

// captureFailure takes a screenshot for the failed step, returning its path
// or "" when capture itself fails.
func (e *Engine) captureFailure(ctx context.Context, index int) string {
	path := filepath.Join(e.settings.ArtifactsDir, fmt.Sprintf("failure_%d.png", index))
	if err := e.page.Screenshot(ctx, path); err != nil {
		e.log.Warn().Err(err).Msg("failed to capture failure screenshot")
		return ""
	}
	return path
}

// collectContext grabs a whitespace-collapsed snippet of the page's visible
// text. see failures keep more of it than other actions.
func (e *Engine) collectContext(ctx context.Context, action scenario.StepType) string {
	text, err := e.cache.PageText(ctx, e.page)
	if err != nil {
		return ""
	}
	snippet := strings.Join(strings.Fields(text), " ")
	limit := contextLimitDefault
	if action == scenario.StepSee {
		limit = contextLimitSee
	}
	if len(snippet) > limit {
		snippet = snippet[:limit]
	}
	return snippet
}
