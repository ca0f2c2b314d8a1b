package locator

import (
	"fmt"
	"regexp"
)

var (
	rolePattern = regexp.MustCompile(`^role=([a-zA-Z0-9_-]+)(\[(.+)\])?$`)
	attrPattern = regexp.MustCompile(`([a-zA-Z0-9_-]+)=['"]?([^'",\]]+)['"]?`)
)

// ParseRole parses a role=Name[attr=val,attr2=val2] candidate into the role
// name and its attribute filters. Attribute values may be quoted or bare.
func ParseRole(raw string) (string, map[string]string, error) {
	match := rolePattern.FindStringSubmatch(raw)
	if match == nil {
		return "", nil, fmt.Errorf("invalid role selector: %s", raw)
	}
	role := match[1]
	attrs := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(match[3], -1) {
		attrs[m[1]] = m[2]
	}
	return role, attrs, nil
}
