package spec

import (
	"fmt"
	"strings"
)

// ParsePath parses a path template like "math/{operation}/run" into segments.
// Plain segments become literals; "{name}" segments become typed parameters
// bound through params. Every placeholder must have a binding and every
// binding must be used, so a typo on either side is caught at authoring time.
func ParsePath(template string, params map[string]Type) ([]PathSegment, error) {
	trimmed := strings.Trim(template, "/")
	if trimmed == "" {
		return nil, nil
	}

	used := map[string]bool{}
	var segments []PathSegment
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			return nil, fmt.Errorf("spec: empty segment in path template %q", template)
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if name == "" {
				return nil, fmt.Errorf("spec: empty parameter name in path template %q", template)
			}
			t, ok := params[name]
			if !ok {
				return nil, fmt.Errorf("spec: path parameter %q in template %q has no type binding", name, template)
			}
			if used[name] {
				return nil, fmt.Errorf("spec: path parameter %q appears twice in template %q", name, template)
			}
			used[name] = true
			segments = append(segments, Param(name, t))
			continue
		}
		if strings.ContainsAny(part, "{}") {
			return nil, fmt.Errorf("spec: malformed segment %q in path template %q", part, template)
		}
		segments = append(segments, Lit(part))
	}

	for name := range params {
		if !used[name] {
			return nil, fmt.Errorf("spec: path parameter binding %q is not used by template %q", name, template)
		}
	}
	return segments, nil
}

// MustParsePath is ParsePath for statically known templates; it panics on
// error the way a malformed literal should.
func MustParsePath(template string, params map[string]Type) []PathSegment {
	segments, err := ParsePath(template, params)
	if err != nil {
		panic(err)
	}
	return segments
}
