package locator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/webpilot/pkg/browser"
	"github.com/devicelab-dev/webpilot/pkg/browser/fake"
)

func newResolver() *Resolver {
	return &Resolver{Timeout: 50 * time.Millisecond}
}

func TestResolveFallsBackToNextCandidate(t *testing.T) {
	page := fake.NewPage()
	real := &fake.Element{}
	page.AddElement("css:#real", real)

	el, err := newResolver().Resolve(context.Background(), page, "#missing|#real")
	require.NoError(t, err)
	assert.Same(t, real, el.(*fake.Element))
	assert.Equal(t, 1, real.Scrolled)

	// both candidates were tried in order
	assert.Equal(t, []string{"query:css:#missing", "query:css:#real"}, page.Calls)
}

func TestResolveHonorsPriorityOrder(t *testing.T) {
	page := fake.NewPage()
	page.AddElement("css:.fallback", &fake.Element{})
	page.AddElement("testid:login", &fake.Element{})

	_, err := newResolver().Resolve(context.Background(), page, ".fallback|[data-testid=\"login\"]")
	require.NoError(t, err)

	// test-id candidate wins despite being written second
	assert.Equal(t, []string{"query:testid:login"}, page.Calls)
}

func TestResolveBuildsRoleQuery(t *testing.T) {
	page := fake.NewPage()
	page.AddElement("role:button"+fmStr(map[string]string{"name": "Go"}), &fake.Element{})

	_, err := newResolver().Resolve(context.Background(), page, "role=button[name=Go]")
	require.NoError(t, err)
}

func fmStr(attrs map[string]string) string {
	q := browser.Query{Kind: browser.QueryRole, Role: "button", Attrs: attrs}
	return q.Key()[len("role:button"):]
}

func TestResolveAllCandidatesExhausted(t *testing.T) {
	page := fake.NewPage()

	_, err := newResolver().Resolve(context.Background(), page, "#a|#b|.c")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "#a|#b|.c", resErr.Expression)
	assert.Len(t, resErr.Attempts, 3)
	assert.ErrorContains(t, resErr, "#a|#b|.c")
}

func TestResolveEmptyExpression(t *testing.T) {
	_, err := newResolver().Resolve(context.Background(), fake.NewPage(), "   ")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, resErr.Attempts)
}

func TestResolveStopsOnContextDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := fake.NewPage()
	page.AddElement("css:#real", &fake.Element{})

	_, err := newResolver().Resolve(ctx, page, "#real")
	require.Error(t, err)
	assert.Empty(t, page.Calls)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		expected  browser.Query
	}{
		{
			name:      "css",
			candidate: ".btn",
			expected:  browser.Query{Kind: browser.QueryCSS, Value: ".btn"},
		},
		{
			name:      "text exact",
			candidate: "text=Sign in",
			expected:  browser.Query{Kind: browser.QueryText, Value: "Sign in", Exact: true},
		},
		{
			name:      "test id",
			candidate: `[data-testid="login"]`,
			expected:  browser.Query{Kind: browser.QueryTestID, Value: "login"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQuery(tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildQueryRole(t *testing.T) {
	got, err := BuildQuery("role=button[name=Login]")
	require.NoError(t, err)
	assert.Equal(t, browser.QueryRole, got.Kind)
	assert.Equal(t, "button", got.Role)
	assert.Equal(t, map[string]string{"name": "Login"}, got.Attrs)
}
