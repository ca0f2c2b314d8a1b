package executor

import (
	"fmt"
	"strings"
)

// ActionError reports a malformed payload, an unknown action kind, or an
// action-level check that failed (response schema, accessibility audit).
type ActionError struct {
	Action  string
	Message string
	Cause   error
}

func (e *ActionError) Error() string {
	msg := e.Message
	if e.Action != "" {
		msg = e.Action + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ActionError) Unwrap() error { return e.Cause }

// NavigationPolicyError reports a navigation target whose host is outside
// the allow-list. It is never retried: the decision cannot change between
// attempts.
type NavigationPolicyError struct {
	Host    string
	Allowed []string
}

func (e *NavigationPolicyError) Error() string {
	return fmt.Sprintf("blocked navigation to host %q (allowed: %s)", e.Host, strings.Join(e.Allowed, ", "))
}
