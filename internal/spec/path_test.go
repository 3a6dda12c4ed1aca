package spec

import (
	"strings"
	"testing"

	"github.com/damascus-dev/damascus/internal/schema"
)

func strType() Type {
	return SchemaOf(schema.FromMap(map[string]any{"type": "string"}))
}

func TestParsePath(t *testing.T) {
	t.Parallel()
	segments, err := ParsePath("math/{operation}/run", map[string]Type{"operation": strType()})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segments: %+v", segments)
	}
	if segments[0].Literal != "math" || segments[0].Param != nil {
		t.Errorf("segment 0: %+v", segments[0])
	}
	if segments[1].Param == nil || segments[1].Param.Name != "operation" {
		t.Errorf("segment 1: %+v", segments[1])
	}
	if segments[2].Literal != "run" {
		t.Errorf("segment 2: %+v", segments[2])
	}

	// Leading and trailing slashes are insignificant.
	slashed, err := ParsePath("/math/{operation}/run/", map[string]Type{"operation": strType()})
	if err != nil {
		t.Fatalf("parse slashed: %v", err)
	}
	if len(slashed) != 3 {
		t.Fatalf("slashed segments: %+v", slashed)
	}

	empty, err := ParsePath("", nil)
	if err != nil || empty != nil {
		t.Fatalf("empty template: (%+v, %v)", empty, err)
	}
}

func TestParsePath_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		template string
		params   map[string]Type
		wantMsg  string
	}{
		{"empty segment", "a//b", nil, "empty segment"},
		{"empty parameter name", "a/{}", map[string]Type{"": strType()}, "empty parameter name"},
		{"missing binding", "a/{id}", nil, "no type binding"},
		{"duplicate placeholder", "{id}/{id}", map[string]Type{"id": strType()}, "appears twice"},
		{"malformed braces", "a/{id", map[string]Type{"id": strType()}, "malformed segment"},
		{"unused binding", "a/b", map[string]Type{"id": strType()}, "not used"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePath(tc.template, tc.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestMustParsePath(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on malformed template")
		}
	}()
	MustParsePath("a/{missing}", nil)
}
