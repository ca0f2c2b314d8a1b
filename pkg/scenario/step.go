// Package scenario handles parsing and resolution of webpilot YAML scenario files.
package scenario

import "fmt"

// StepType represents the action kind of a flow step.
type StepType string

// Step type constants. The set is closed: parsing rejects anything else.
const (
	StepGo      StepType = "go"
	StepTyping  StepType = "type"
	StepClick   StepType = "click"
	StepSee     StepType = "see"
	StepSeeURL  StepType = "seeUrl"
	StepWaitAPI StepType = "waitApi"
	StepA11y    StepType = "a11y"
)

// Step is the interface for all flow steps.
type Step interface {
	Type() StepType
	Describe() string
	// Payload returns the step's payload in plain data form for reporting.
	Payload() any
}

// GoStep navigates to a path relative to the configured base URL.
type GoStep struct {
	Path string `yaml:"path"`
}

func (s *GoStep) Type() StepType   { return StepGo }
func (s *GoStep) Describe() string { return fmt.Sprintf("go %s", s.Path) }
func (s *GoStep) Payload() any     { return s.Path }

// TypingStep fills text into an element resolved from a locator expression.
type TypingStep struct {
	Into string `yaml:"into"`
	Text string `yaml:"text"`
}

func (s *TypingStep) Type() StepType   { return StepTyping }
func (s *TypingStep) Describe() string { return fmt.Sprintf("type into %s", s.Into) }
func (s *TypingStep) Payload() any     { return map[string]any{"into": s.Into, "text": s.Text} }

// ClickStep clicks an element resolved from a locator expression.
type ClickStep struct {
	On string `yaml:"on"`
}

func (s *ClickStep) Type() StepType   { return StepClick }
func (s *ClickStep) Describe() string { return fmt.Sprintf("click %s", s.On) }
func (s *ClickStep) Payload() any     { return s.On }

// SeeStep asserts that the page shows an expected text or outcome.
type SeeStep struct {
	Text    string `yaml:"text"`
	Meaning string `yaml:"meaning"`
	// Selector optionally hints where the expectation should appear.
	Selector string `yaml:"selector"`
}

func (s *SeeStep) Type() StepType { return StepSee }

func (s *SeeStep) Describe() string {
	if s.Text != "" {
		return fmt.Sprintf("see %q", s.Text)
	}
	return fmt.Sprintf("see %q", s.Meaning)
}

func (s *SeeStep) Payload() any {
	if s.Meaning == "" && s.Selector == "" {
		return s.Text
	}
	p := map[string]any{}
	if s.Text != "" {
		p["text"] = s.Text
	}
	if s.Meaning != "" {
		p["meaning"] = s.Meaning
	}
	if s.Selector != "" {
		p["selector"] = s.Selector
	}
	return p
}

// Expectation returns the outcome the step asserts, preferring meaning.
func (s *SeeStep) Expectation() string {
	if s.Meaning != "" {
		return s.Meaning
	}
	return s.Text
}

// SeeURLStep asserts that the current URL contains a fragment.
type SeeURLStep struct {
	Fragment string `yaml:"fragment"`
}

func (s *SeeURLStep) Type() StepType   { return StepSeeURL }
func (s *SeeURLStep) Describe() string { return fmt.Sprintf("seeUrl %q", s.Fragment) }
func (s *SeeURLStep) Payload() any     { return s.Fragment }

// WaitAPIStep waits for a network response matching a URL glob and status code.
type WaitAPIStep struct {
	URL    string `yaml:"url"`
	Code   int    `yaml:"code"`
	Schema string `yaml:"schema"`
}

func (s *WaitAPIStep) Type() StepType   { return StepWaitAPI }
func (s *WaitAPIStep) Describe() string { return fmt.Sprintf("waitApi %s -> %d", s.URL, s.Code) }

func (s *WaitAPIStep) Payload() any {
	p := map[string]any{"url": s.URL, "code": s.Code}
	if s.Schema != "" {
		p["schema"] = s.Schema
	}
	return p
}

// A11yStep runs an accessibility audit over the current page.
type A11yStep struct {
	Exclude []string `yaml:"exclude"`
}

func (s *A11yStep) Type() StepType   { return StepA11y }
func (s *A11yStep) Describe() string { return "a11y audit" }

func (s *A11yStep) Payload() any {
	if len(s.Exclude) == 0 {
		return nil
	}
	return map[string]any{"exclude": s.Exclude}
}
