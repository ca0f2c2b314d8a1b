package scenario

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// tokenPattern matches $env.<dotted.path> occurrences inside string scalars.
var tokenPattern = regexp.MustCompile(`\$env(?:\.[A-Za-z0-9_]+)+`)

// Merge recursively merges override into base and returns a new mapping.
// When both sides hold mappings under the same key, they are merged
// recursively; otherwise the override value wins, including type changes.
func Merge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		existing, ok := result[k].(map[string]any)
		incoming, ok2 := v.(map[string]any)
		if ok && ok2 {
			result[k] = Merge(existing, incoming)
		} else {
			result[k] = v
		}
	}
	return result
}

// lookupPath resolves a dotted path against a nested mapping. The second
// return value reports whether every segment was found.
func lookupPath(env map[string]any, path string) (any, bool) {
	var current any = env
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// interpolate substitutes every $env token in text against env. A path that
// does not resolve fails with a ConfigurationError naming the token; tokens
// are never silently replaced with an empty string.
func interpolate(text string, env map[string]any, sourcePath string) (string, error) {
	var missing string
	out := tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		path := strings.TrimPrefix(token, "$env.")
		value, ok := lookupPath(env, path)
		if !ok {
			if missing == "" {
				missing = token
			}
			return token
		}
		return stringify(value)
	})
	if missing != "" {
		return "", &ConfigurationError{
			Path:    sourcePath,
			Message: "missing env value for " + missing,
		}
	}
	return out, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimSuffix(string(data), "\n")
	}
}

// resolveValue walks a decoded YAML value and interpolates every string scalar.
func resolveValue(value any, env map[string]any, sourcePath string) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := resolveValue(item, env, sourcePath)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := resolveValue(item, env, sourcePath)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case string:
		return interpolate(v, env, sourcePath)
	default:
		return value, nil
	}
}

// resolveNode interpolates string scalars in place across a YAML node tree,
// before the node is decoded into a typed step. A scalar consisting of a
// single token keeps the env value's scalar type; partial substitutions
// always produce strings.
func resolveNode(node *yaml.Node, env map[string]any, sourcePath string) error {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.ScalarNode {
		if node.Tag != "" && node.Tag != "!!str" {
			return nil
		}
		if loc := tokenPattern.FindStringIndex(node.Value); loc != nil && loc[0] == 0 && loc[1] == len(node.Value) {
			path := strings.TrimPrefix(node.Value, "$env.")
			value, ok := lookupPath(env, path)
			if !ok {
				return &ConfigurationError{
					Path:    sourcePath,
					Message: "missing env value for " + node.Value,
				}
			}
			node.Value = stringify(value)
			node.Style = 0
			if _, isString := value.(string); isString {
				node.Tag = "!!str"
			} else {
				node.Tag = ""
			}
			return nil
		}
		resolved, err := interpolate(node.Value, env, sourcePath)
		if err != nil {
			return err
		}
		if resolved != node.Value {
			node.Value = resolved
			node.Tag = "!!str"
			node.Style = 0
		}
		return nil
	}
	for _, child := range node.Content {
		if err := resolveNode(child, env, sourcePath); err != nil {
			return err
		}
	}
	return nil
}
