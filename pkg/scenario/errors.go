package scenario

import "fmt"

// ConfigurationError reports a malformed scenario document or an env token
// that does not resolve. It is fatal at load time, before any step runs.
type ConfigurationError struct {
	Path    string
	Line    int
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
