package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// checkBody validates a JSON response body against a schema document.
// The schema lists required gjson paths and, optionally, expected kinds:
//
//	{
//	  "required": ["user.id", "token"],
//	  "types": {"user.id": "number", "token": "string"}
//	}
//
// Kinds are string, number, boolean, null, array, object.
// All failures are reported together.
func checkBody(schema, body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("response body is not valid JSON")
	}
	if !gjson.ValidBytes(schema) {
		return fmt.Errorf("schema is not valid JSON")
	}

	var errs []error

	for _, path := range gjson.GetBytes(schema, "required").Array() {
		if !gjson.GetBytes(body, path.String()).Exists() {
			errs = append(errs, fmt.Errorf("required path %q missing", path.String()))
		}
	}

	for path, want := range gjson.GetBytes(schema, "types").Map() {
		value := gjson.GetBytes(body, path)
		if !value.Exists() {
			errs = append(errs, fmt.Errorf("typed path %q missing", path))
			continue
		}
		if got := kindOf(value); got != want.String() {
			errs = append(errs, fmt.Errorf("path %q is %s, want %s", path, got, want.String()))
		}
	}

	return errors.Join(errs...)
}

func kindOf(value gjson.Result) string {
	switch value.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	case gjson.JSON:
		if strings.HasPrefix(strings.TrimSpace(value.Raw), "[") {
			return "array"
		}
		return "object"
	default:
		return "unknown"
	}
}
