// Package browser defines the page-handle abstraction the engine drives.
// Implementations wrap a real browser session (Playwright, CDP, ...); the
// fake subpackage provides an in-memory one for tests and dry runs.
package browser

import (
	"context"
	"fmt"
	"time"
)

// Wait-until states for navigation.
const (
	WaitDOMContentLoaded = "domcontentloaded"
	WaitLoad             = "load"
)

// QueryKind classifies how an element query targets the DOM.
type QueryKind int

const (
	QueryCSS QueryKind = iota
	QueryText
	QueryTestID
	QueryRole
)

// String returns the string representation of QueryKind.
func (k QueryKind) String() string {
	switch k {
	case QueryCSS:
		return "css"
	case QueryText:
		return "text"
	case QueryTestID:
		return "testid"
	case QueryRole:
		return "role"
	default:
		return "unknown"
	}
}

// Query describes a single element query. Pure data; the page implementation
// decides how to execute it.
type Query struct {
	Kind  QueryKind
	Value string            // CSS selector, text literal, or test id
	Role  string            // ARIA role, for QueryRole
	Attrs map[string]string // role attribute filters (name, checked, ...)
	Exact bool              // exact text match, for QueryText
}

// Key returns a canonical representation used for logging and matching.
func (q Query) Key() string {
	switch q.Kind {
	case QueryRole:
		if len(q.Attrs) == 0 {
			return "role:" + q.Role
		}
		return fmt.Sprintf("role:%s%v", q.Role, q.Attrs)
	default:
		return q.Kind.String() + ":" + q.Value
	}
}

// Page is the single browser page the engine exclusively owns for a run.
type Page interface {
	// Navigate loads url and waits for the given document state.
	Navigate(ctx context.Context, url, waitUntil string, timeout time.Duration) error

	// URL returns the page's current URL.
	URL() string

	// WaitVisible waits up to timeout for the query to resolve to a visible
	// element and returns its handle.
	WaitVisible(ctx context.Context, q Query, timeout time.Duration) (Element, error)

	// InnerText returns the rendered text of the first element matching the
	// CSS selector.
	InnerText(ctx context.Context, selector string) (string, error)

	// Screenshot writes a PNG capture of the viewport to path.
	Screenshot(ctx context.Context, path string) error

	// WaitResponse waits up to timeout for a network response accepted by
	// match.
	WaitResponse(ctx context.Context, match func(Response) bool, timeout time.Duration) (Response, error)

	// Audit runs an accessibility scan, skipping the excluded selectors.
	Audit(ctx context.Context, exclude []string) ([]Violation, error)
}

// Element is a handle to a resolved, visible DOM element.
type Element interface {
	Click(ctx context.Context) error
	Fill(ctx context.Context, text string) error
	ScrollIntoView(ctx context.Context) error
	Text(ctx context.Context) (string, error)
}

// Response is a captured network response.
type Response interface {
	URL() string
	Status() int
	Body() ([]byte, error)
}

// Violation is a single accessibility audit finding.
type Violation struct {
	ID          string `json:"id"`
	Impact      string `json:"impact,omitempty"`
	Description string `json:"description,omitempty"`
	Selector    string `json:"selector,omitempty"`
}
