package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/damascus-dev/damascus/internal/aat"
	"github.com/damascus-dev/damascus/internal/spec"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

const calcManifest = `name: calc
description: a calculator
headers:
  Authorization:
    pattern: "Bearer {token}"
    param: token
    type: {schema: {type: string}}
services:
  math:
    endpoints:
      operation:
        method: POST
        path: math/{operation}
        params:
          operation:
            schema:
              title: EnumOperation
              enum: [Add, Subtract]
        body:
          schema:
            title: Input
            type: object
            required: [a, b]
            properties:
              a: {type: integer}
              b: {type: integer}
        response:
          schema:
            title: Output
            type: object
            required: [output]
            properties:
              output: {type: integer}
      watch:
        path: watch
        upgrade: ws
        response:
          stream:
            schema: {type: string}
`

func TestLoadManifest_ToSpec(t *testing.T) {
	t.Parallel()
	m, err := LoadManifest(writeManifest(t, calcManifest))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := m.ToSpec()
	if err != nil {
		t.Fatalf("to spec: %v", err)
	}

	if s.Name() != "calc" || s.Description() != "a calculator" {
		t.Fatalf("metadata: %q %q", s.Name(), s.Description())
	}
	headers := s.Headers()
	if len(headers) != 1 || headers[0].Value.Kind != spec.HeaderPatternKind || headers[0].Value.Pattern != "Bearer {token}" {
		t.Fatalf("headers: %+v", headers)
	}

	services := s.Services()
	if len(services) != 1 || services[0].Name() != "math" {
		t.Fatalf("services: %+v", services)
	}
	eps := services[0].Endpoints()
	if len(eps) != 2 {
		t.Fatalf("endpoints: %+v", eps)
	}
	// Endpoints are added in sorted manifest order.
	op := eps[0]
	if op.Name() != "operation" || op.Method() != spec.POST {
		t.Fatalf("operation: %q %q", op.Name(), op.Method())
	}
	path := op.Path()
	if len(path) != 2 || path[0].Literal != "math" || path[1].Param == nil || path[1].Param.Name != "operation" {
		t.Fatalf("path: %+v", path)
	}
	watch := eps[1]
	if watch.Method() != spec.GET {
		t.Fatalf("watch method defaults to GET, got %q", watch.Method())
	}
	if watch.UpgradeType() != spec.UpgradeWs {
		t.Fatalf("watch upgrade: %q", watch.UpgradeType())
	}
	if watch.ResponseType().Kind != spec.KindStream {
		t.Fatalf("watch response: %+v", watch.ResponseType())
	}

	// The manifest's spec must survive the full build and validate.
	tree, err := aat.Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(tree.Types) != 3 {
		t.Fatalf("types: %d", len(tree.Types))
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"missing name", "services: {svc: {endpoints: {e: {path: e}}}}", "name is required"},
		{"no services", "name: x", "at least one service"},
		{"unknown field", "name: x\nbogus: 1\nservices: {svc: {endpoints: {e: {path: e}}}}", "bogus"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadManifest(writeManifest(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("want error containing %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestToSpec_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			"unknown method",
			"name: x\nservices: {svc: {endpoints: {e: {method: FETCH, path: e}}}}",
			"unknown method",
		},
		{
			"unknown upgrade",
			"name: x\nservices: {svc: {endpoints: {e: {path: e, upgrade: http2}}}}",
			"unknown upgrade",
		},
		{
			"ambiguous type node",
			"name: x\nservices: {svc: {endpoints: {e: {path: e, body: {schema: {type: string}, component: X}}}}}",
			"exactly one of",
		},
		{
			"component without openapi",
			"name: x\nservices: {svc: {endpoints: {e: {path: e, body: {component: Pet}}}}}",
			"no openapi document",
		},
		{
			"pattern without placeholder",
			"name: x\nheaders: {Auth: {pattern: Bearer, param: token, type: {schema: {type: string}}}}\nservices: {svc: {endpoints: {e: {path: e}}}}",
			"placeholder",
		},
		{
			"unbound path param",
			"name: x\nservices: {svc: {endpoints: {e: {path: 'e/{id}'}}}}",
			"no type binding",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, err := LoadManifest(writeManifest(t, tc.content))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			_, err = m.ToSpec()
			if err == nil || !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("want error containing %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

const petstoreOpenAPI = `openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        tag:
          $ref: '#/components/schemas/Tag'
    Tag:
      type: object
      required: [label]
      properties:
        label:
          type: string
`

func TestManifest_OpenAPIComponents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "openapi.yaml"), []byte(petstoreOpenAPI), 0o600); err != nil {
		t.Fatalf("write openapi: %v", err)
	}
	manifest := `name: petstore
openapi: ./openapi.yaml
services:
  pets:
    endpoints:
      create:
        method: POST
        path: pets
        body: {component: Pet}
        response: {component: Pet}
`
	manifestPath := filepath.Join(dir, "api.yaml")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := m.ToSpec()
	if err != nil {
		t.Fatalf("to spec: %v", err)
	}
	tree, err := aat.Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Pet pulls in Tag through the component closure so its reference resolves.
	if err := tree.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	names := make([]string, 0, len(tree.Types))
	for _, nt := range tree.Types {
		names = append(names, nt.Name())
	}
	if len(names) != 2 || names[0] != "Pet" || names[1] != "Tag" {
		t.Fatalf("types: %v", names)
	}

	// An unknown component is caught at conversion time.
	m.Services["pets"] = serviceNode{Endpoints: map[string]endpointNode{
		"bad": {Path: "bad", Body: &typeNode{Component: "Ghost"}},
	}}
	if _, err := m.ToSpec(); err == nil || !strings.Contains(err.Error(), "Ghost") {
		t.Fatalf("want unknown component error, got %v", err)
	}
}
