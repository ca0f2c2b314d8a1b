package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a fully resolved scenario: env merged, every token substituted.
// The flow is concrete and order-preserving; nothing is re-evaluated later.
type Scenario struct {
	SourcePath string
	Meta       map[string]any
	Env        map[string]any
	Flow       []Step
}

// Load reads and resolves a scenario file against a caller-supplied base env.
func Load(path string, baseEnv map[string]any) (*Scenario, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided scenario file
	if err != nil {
		return nil, &ConfigurationError{Path: path, Message: fmt.Sprintf("failed to read scenario: %v", err)}
	}
	return Parse(data, path, baseEnv)
}

// Parse resolves scenario YAML content. Token interpolation is single-pass
// and total: the returned Scenario holds no live reference to the env.
func Parse(data []byte, sourcePath string, baseEnv map[string]any) (*Scenario, error) {
	var doc struct {
		Meta map[string]any `yaml:"meta"`
		Env  map[string]any `yaml:"env"`
		Flow *[]yaml.Node   `yaml:"flow"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Path: sourcePath, Message: fmt.Sprintf("invalid scenario: %v", err)}
	}
	if doc.Flow == nil {
		return nil, &ConfigurationError{Path: sourcePath, Message: "scenario missing 'flow'"}
	}

	env := Merge(baseEnv, doc.Env)

	meta, err := resolveValue(doc.Meta, env, sourcePath)
	if err != nil {
		return nil, err
	}
	metaMap, _ := meta.(map[string]any)
	if metaMap == nil {
		metaMap = map[string]any{}
	}

	sc := &Scenario{
		SourcePath: sourcePath,
		Meta:       metaMap,
		Env:        env,
	}
	for i := range *doc.Flow {
		node := &(*doc.Flow)[i]
		if err := resolveNode(node, env, sourcePath); err != nil {
			return nil, err
		}
		step, err := parseStep(node, sourcePath)
		if err != nil {
			return nil, err
		}
		sc.Flow = append(sc.Flow, step)
	}
	return sc, nil
}

// parseStep unwraps the single {action: payload} pair of a flow entry and
// decodes it into the matching typed step.
func parseStep(node *yaml.Node, sourcePath string) (Step, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigurationError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "flow entry must be a single-key mapping",
		}
	}
	if len(node.Content) != 2 {
		return nil, &ConfigurationError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("flow entry must have exactly one key, got %d", len(node.Content)/2),
		}
	}

	kind := node.Content[0].Value
	valueNode := node.Content[1]
	return decodeStep(StepType(kind), valueNode, sourcePath)
}

func decodeStep(kind StepType, valueNode *yaml.Node, sourcePath string) (Step, error) {
	switch kind {
	case StepGo:
		var s GoStep
		if valueNode.Kind == yaml.ScalarNode {
			s.Path = valueNode.Value
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
		}
		if s.Path == "" {
			s.Path = "/"
		}
		return &s, nil

	case StepTyping:
		var s TypingStep
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
		}
		if s.Into == "" {
			return nil, &ConfigurationError{Path: sourcePath, Line: valueNode.Line, Message: "type step missing 'into'"}
		}
		return &s, nil

	case StepClick:
		var s ClickStep
		if valueNode.Kind == yaml.ScalarNode {
			s.On = valueNode.Value
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
		}
		if s.On == "" {
			return nil, &ConfigurationError{Path: sourcePath, Line: valueNode.Line, Message: "click step missing 'on'"}
		}
		return &s, nil

	case StepSee:
		var s SeeStep
		if valueNode.Kind == yaml.ScalarNode {
			s.Text = valueNode.Value
		} else {
			// meaning also travels under legacy keys.
			var raw struct {
				Text        string `yaml:"text"`
				Meaning     string `yaml:"meaning"`
				Expected    string `yaml:"expected"`
				Description string `yaml:"description"`
				Selector    string `yaml:"selector"`
			}
			if err := valueNode.Decode(&raw); err != nil {
				return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
			}
			s.Text = raw.Text
			s.Meaning = raw.Meaning
			if s.Meaning == "" {
				s.Meaning = raw.Expected
			}
			if s.Meaning == "" {
				s.Meaning = raw.Description
			}
			s.Selector = raw.Selector
		}
		if s.Text == "" && s.Meaning == "" {
			return nil, &ConfigurationError{Path: sourcePath, Line: valueNode.Line, Message: "see step missing expectation"}
		}
		return &s, nil

	case StepSeeURL:
		var s SeeURLStep
		if valueNode.Kind == yaml.ScalarNode {
			s.Fragment = valueNode.Value
		} else {
			var raw struct {
				Fragment string `yaml:"fragment"`
				Value    string `yaml:"value"`
				Path     string `yaml:"path"`
			}
			if err := valueNode.Decode(&raw); err != nil {
				return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
			}
			s.Fragment = raw.Fragment
			if s.Fragment == "" {
				s.Fragment = raw.Value
			}
			if s.Fragment == "" {
				s.Fragment = raw.Path
			}
		}
		if s.Fragment == "" {
			return nil, &ConfigurationError{Path: sourcePath, Line: valueNode.Line, Message: "seeUrl step missing fragment"}
		}
		return &s, nil

	case StepWaitAPI:
		s := WaitAPIStep{Code: 200}
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
		}
		if s.URL == "" {
			return nil, &ConfigurationError{Path: sourcePath, Line: valueNode.Line, Message: "waitApi step missing 'url'"}
		}
		return &s, nil

	case StepA11y:
		var s A11yStep
		switch valueNode.Kind {
		case yaml.SequenceNode:
			if err := valueNode.Decode(&s.Exclude); err != nil {
				return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
			}
		case yaml.ScalarNode:
			// bare "- a11y:" parses as a null scalar
		default:
			if err := valueNode.Decode(&s); err != nil {
				return nil, wrapDecodeError(sourcePath, valueNode.Line, err)
			}
		}
		return &s, nil

	default:
		return nil, &ConfigurationError{
			Path:    sourcePath,
			Line:    valueNode.Line,
			Message: fmt.Sprintf("unknown action: %s", kind),
		}
	}
}

func wrapDecodeError(path string, line int, err error) error {
	return &ConfigurationError{Path: path, Line: line, Message: err.Error()}
}
