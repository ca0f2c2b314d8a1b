package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/webpilot/pkg/browser"
	"github.com/devicelab-dev/webpilot/pkg/browser/fake"
	"github.com/devicelab-dev/webpilot/pkg/config"
	"github.com/devicelab-dev/webpilot/pkg/report"
	"github.com/devicelab-dev/webpilot/pkg/scenario"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.Default()
	s.BaseURL = "https://app.example.com"
	s.AllowedHosts = []string{"app.example.com"}
	s.ArtifactsDir = t.TempDir()
	s.Timeouts.URL = 200
	return s
}

func newEngine(t *testing.T, page browser.Page, settings *config.Settings) *Engine {
	t.Helper()
	return New(page, settings, zerolog.Nop())
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFullFlow(t *testing.T) {
	page := fake.NewPage()
	user := &fake.Element{}
	submit := &fake.Element{}
	page.AddElement("css:#user", user)
	page.AddElement("css:#submit", submit)
	page.AddElement("text:Welcome back", &fake.Element{})
	page.AddResponse("https://app.example.com/api/session", 200, []byte(`{"ok":true}`))

	sc := &scenario.Scenario{
		SourcePath: "login.yaml",
		Flow: []scenario.Step{
			&scenario.GoStep{Path: "/login"},
			&scenario.TypingStep{Into: "#user", Text: "alice"},
			&scenario.ClickStep{On: "#submit"},
			&scenario.SeeStep{Text: "Welcome back"},
			&scenario.SeeURLStep{Fragment: "/login"},
			&scenario.WaitAPIStep{URL: "*/api/session", Code: 200},
			&scenario.A11yStep{},
		},
	}

	rep := newEngine(t, page, testSettings(t)).Run(context.Background(), sc)

	require.Equal(t, report.StatusPassed, rep.Status)
	require.Len(t, rep.Steps, len(sc.Flow))
	for _, step := range rep.Steps {
		assert.Equal(t, report.StatusPassed, step.Status)
		assert.Empty(t, step.Error)
	}
	assert.Contains(t, page.Calls, "navigate:https://app.example.com/login")
	assert.Equal(t, []string{"alice"}, user.Filled)
	assert.Equal(t, 1, submit.Clicked)
}

func TestRunFailFast(t *testing.T) {
	page := fake.NewPage()
	page.AddElement("css:#a", &fake.Element{})
	page.Body = "nothing useful here"

	sc := &scenario.Scenario{
		SourcePath: "broken.yaml",
		Flow: []scenario.Step{
			&scenario.GoStep{Path: "/"},
			&scenario.ClickStep{On: "#a"},
			&scenario.ClickStep{On: "#missing"},
			&scenario.SeeStep{Text: "never reached"},
			&scenario.A11yStep{},
		},
	}

	rep := newEngine(t, page, testSettings(t)).Run(context.Background(), sc)

	require.Equal(t, report.StatusFailed, rep.Status)
	require.Len(t, rep.Steps, 3)

	failed := rep.Steps[2]
	assert.Equal(t, 3, failed.Index)
	assert.Equal(t, "click", failed.Action)
	assert.Equal(t, report.StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "#missing")
	assert.Contains(t, failed.Screenshot, "failure_3.png")
	assert.Equal(t, "nothing useful here", failed.Context)
	assert.Contains(t, page.Calls, "screenshot:failure_3.png")
}

func TestRunStepRetrySucceeds(t *testing.T) {
	page := fake.NewPage()
	page.AddElement("css:#flaky", &fake.Element{})
	page.FailQueries("css:#flaky", 1)

	settings := testSettings(t)
	settings.Retry.Step = 2

	sc := &scenario.Scenario{
		Flow: []scenario.Step{&scenario.ClickStep{On: "#flaky"}},
	}
	rep := newEngine(t, page, settings).Run(context.Background(), sc)

	require.Equal(t, report.StatusPassed, rep.Status)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, report.StatusPassed, rep.Steps[0].Status)

	queries := 0
	for _, call := range page.Calls {
		if call == "query:css:#flaky" {
			queries++
		}
	}
	assert.Equal(t, 2, queries)
}

func TestRunStepRetryExhausted(t *testing.T) {
	page := fake.NewPage()

	settings := testSettings(t)
	settings.Retry.Step = 3

	sc := &scenario.Scenario{
		Flow: []scenario.Step{&scenario.ClickStep{On: "#gone"}},
	}
	rep := newEngine(t, page, settings).Run(context.Background(), sc)

	require.Equal(t, report.StatusFailed, rep.Status)
	queries := 0
	for _, call := range page.Calls {
		if call == "query:css:#gone" {
			queries++
		}
	}
	assert.Equal(t, 3, queries)
}

func TestNavigateBlockedHostNeverReachesPage(t *testing.T) {
	page := fake.NewPage()

	settings := testSettings(t)
	settings.Retry.Step = 3

	sc := &scenario.Scenario{
		Flow: []scenario.Step{&scenario.GoStep{Path: "https://evil.example.net/login"}},
	}
	rep := newEngine(t, page, settings).Run(context.Background(), sc)

	require.Equal(t, report.StatusFailed, rep.Status)
	require.Len(t, rep.Steps, 1)
	assert.Contains(t, rep.Steps[0].Error, "evil.example.net")

	for _, call := range page.Calls {
		assert.False(t, strings.HasPrefix(call, "navigate:"), "blocked navigation must not reach the page: %s", call)
	}
}

func TestNavigatePolicyErrorNotRetried(t *testing.T) {
	err := &NavigationPolicyError{Host: "evil.example.net", Allowed: []string{"app.example.com"}}
	assert.False(t, retryable(err))
	assert.False(t, retryable(context.Canceled))
	assert.False(t, retryable(context.DeadlineExceeded))
	assert.True(t, retryable(&ActionError{Action: "click", Message: "not visible"}))
}

func TestNavigateHostMatchIsCaseInsensitive(t *testing.T) {
	page := fake.NewPage()

	settings := testSettings(t)
	settings.AllowedHosts = []string{"App.Example.Com"}

	sc := &scenario.Scenario{
		Flow: []scenario.Step{&scenario.GoStep{Path: "/dashboard"}},
	}
	rep := newEngine(t, page, settings).Run(context.Background(), sc)
	assert.Equal(t, report.StatusPassed, rep.Status)
}

func TestWaitForURLCaseInsensitive(t *testing.T) {
	page := fake.NewPage()
	page.SetURL("https://app.example.com/Admin/Dashboard")

	err := newEngine(t, page, testSettings(t)).waitForURL(context.Background(), "admin/dashboard")
	assert.NoError(t, err)
}

func TestWaitForURLTimesOut(t *testing.T) {
	page := fake.NewPage()
	page.SetURL("https://app.example.com/login")

	err := newEngine(t, page, testSettings(t)).waitForURL(context.Background(), "dashboard")
	require.Error(t, err)

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "seeUrl", actionErr.Action)
	assert.Contains(t, actionErr.Error(), "dashboard")
}

func TestWaitForAPIStatusMismatch(t *testing.T) {
	page := fake.NewPage()
	page.AddResponse("https://app.example.com/api/orders", 500, nil)

	step := &scenario.WaitAPIStep{URL: "*/api/orders", Code: 200}
	err := newEngine(t, page, testSettings(t)).waitForAPI(context.Background(), step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 200")
}

func TestWaitForAPISchemaValidation(t *testing.T) {
	schemaPath := writeTempFile(t, `{"required": ["id", "user.name"], "types": {"id": "number"}}`)

	page := fake.NewPage()
	page.AddResponse("https://app.example.com/api/session", 200,
		[]byte(`{"id": 7, "user": {"name": "alice"}}`))

	step := &scenario.WaitAPIStep{URL: "*/api/session", Code: 200, Schema: schemaPath}
	err := newEngine(t, page, testSettings(t)).waitForAPI(context.Background(), step)
	assert.NoError(t, err)
}

func TestWaitForAPISchemaRejectsBody(t *testing.T) {
	schemaPath := writeTempFile(t, `{"required": ["token"]}`)

	page := fake.NewPage()
	page.AddResponse("https://app.example.com/api/session", 200, []byte(`{"id": 7}`))

	step := &scenario.WaitAPIStep{URL: "*/api/session", Code: 200, Schema: schemaPath}
	err := newEngine(t, page, testSettings(t)).waitForAPI(context.Background(), step)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestAuditReportsViolations(t *testing.T) {
	page := fake.NewPage()
	page.SetViolations([]browser.Violation{
		{ID: "image-alt", Selector: "img.hero"},
		{ID: "color-contrast", Selector: "#banner"},
	})

	err := newEngine(t, page, testSettings(t)).audit(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image-alt")
	assert.Contains(t, err.Error(), "color-contrast")
}

func TestAuditExcludeFiltersViolations(t *testing.T) {
	page := fake.NewPage()
	page.SetViolations([]browser.Violation{
		{ID: "color-contrast", Selector: "#third-party-widget"},
	})

	err := newEngine(t, page, testSettings(t)).audit(context.Background(), []string{"#third-party-widget"})
	assert.NoError(t, err)
}

func TestCollectContextTruncation(t *testing.T) {
	page := fake.NewPage()
	page.Body = strings.Repeat("lorem ipsum ", 200)

	e := newEngine(t, page, testSettings(t))

	seeCtx := e.collectContext(context.Background(), scenario.StepSee)
	assert.Len(t, seeCtx, contextLimitSee)

	clickCtx := e.collectContext(context.Background(), scenario.StepClick)
	assert.Len(t, clickCtx, contextLimitDefault)
}
