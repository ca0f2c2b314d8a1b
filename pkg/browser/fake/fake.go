// Package fake provides an in-memory page handle for testing without a real
// browser session.
package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/webpilot/pkg/browser"
)

func init() {
	browser.Register("fake", func(browser.Options) (browser.Page, error) {
		return NewPage(), nil
	})
}

// Page is a scriptable in-memory implementation of browser.Page. Stub
// elements and responses are registered up front; queries resolve against
// them immediately instead of polling.
type Page struct {
	mu sync.Mutex

	// Body is the text returned for InnerText("body").
	Body string

	location  string
	elements  map[string]*Element
	deferrals map[string]int // remaining failures before a key resolves
	responses []*Response
	audits    []browser.Violation

	// NavigateErr, when set, fails every Navigate call.
	NavigateErr error

	// Calls records operations in order: "navigate:<url>", "query:<key>", ...
	Calls []string
}

// NewPage creates an empty fake page.
func NewPage() *Page {
	return &Page{
		elements:  map[string]*Element{},
		deferrals: map[string]int{},
	}
}

// AddElement registers a visible element under a query key (see Query.Key).
func (p *Page) AddElement(key string, el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el == nil {
		el = &Element{}
	}
	p.elements[key] = el
}

// FailQueries makes the next n lookups of key fail before it resolves.
func (p *Page) FailQueries(key string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferrals[key] = n
}

// AddResponse queues a stub network response.
func (p *Page) AddResponse(url string, status int, body []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, &Response{url: url, status: status, body: body})
}

// SetViolations sets the findings returned by Audit.
func (p *Page) SetViolations(v []browser.Violation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audits = v
}

// SetURL sets the current location without a navigation call.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = url
}

func (p *Page) record(call string) {
	p.Calls = append(p.Calls, call)
}

// Navigate implements browser.Page.
func (p *Page) Navigate(_ context.Context, url, waitUntil string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate:" + url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	_ = waitUntil
	p.location = url
	return nil
}

// URL implements browser.Page.
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// WaitVisible implements browser.Page. It resolves immediately from the
// registered stubs; unknown keys fail as a timeout would.
func (p *Page) WaitVisible(_ context.Context, q browser.Query, _ time.Duration) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := q.Key()
	p.record("query:" + key)
	if left := p.deferrals[key]; left > 0 {
		p.deferrals[key] = left - 1
		return nil, fmt.Errorf("element %s not visible within timeout", key)
	}
	el, ok := p.elements[key]
	if !ok {
		return nil, fmt.Errorf("element %s not visible within timeout", key)
	}
	return el, nil
}

// InnerText implements browser.Page.
func (p *Page) InnerText(_ context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("innerText:" + selector)
	if selector == "body" {
		return p.Body, nil
	}
	if el, ok := p.elements["css:"+selector]; ok {
		return el.TextValue, nil
	}
	return "", fmt.Errorf("no element matches %q", selector)
}

// Screenshot implements browser.Page by writing a placeholder PNG header.
func (p *Page) Screenshot(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("screenshot:" + filepath.Base(path))
	return os.WriteFile(path, []byte("\x89PNG\r\n"), 0o644)
}

// WaitResponse implements browser.Page against the queued stub responses.
func (p *Page) WaitResponse(_ context.Context, match func(browser.Response) bool, _ time.Duration) (browser.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("waitResponse")
	for _, resp := range p.responses {
		if match(resp) {
			return resp, nil
		}
	}
	return nil, fmt.Errorf("no matching response within timeout")
}

// Audit implements browser.Page.
func (p *Page) Audit(_ context.Context, exclude []string) ([]browser.Violation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("audit")
	if len(exclude) == 0 {
		return p.audits, nil
	}
	var kept []browser.Violation
	for _, v := range p.audits {
		if !excluded(v.Selector, exclude) {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

func excluded(selector string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && strings.Contains(selector, e) {
			return true
		}
	}
	return false
}

// Element is a stub element handle recording interactions.
type Element struct {
	mu sync.Mutex

	TextValue string
	ClickErr  error
	FillErr   error

	Clicked  int
	Filled   []string
	Scrolled int
}

// Click implements browser.Element.
func (e *Element) Click(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicked++
	return nil
}

// Fill implements browser.Element.
func (e *Element) Fill(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FillErr != nil {
		return e.FillErr
	}
	e.Filled = append(e.Filled, text)
	return nil
}

// ScrollIntoView implements browser.Element.
func (e *Element) ScrollIntoView(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Scrolled++
	return nil
}

// Text implements browser.Element.
func (e *Element) Text(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.TextValue, nil
}

// Response is a stub network response.
type Response struct {
	url    string
	status int
	body   []byte
}

// URL implements browser.Response.
func (r *Response) URL() string { return r.url }

// Status implements browser.Response.
func (r *Response) Status() int { return r.status }

// Body implements browser.Response.
func (r *Response) Body() ([]byte, error) { return r.body, nil }
