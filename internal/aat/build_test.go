package aat

import (
	"errors"
	"testing"

	"github.com/damascus-dev/damascus/internal/spec"
)

const enumOperationSchema = `
title: EnumOperation
enum: [Add, Subtract]
`

const inputSchema = `
title: Input
type: object
required: [a, b]
properties:
  a: {type: integer}
  b: {type: integer}
`

const outputSchema = `
title: Output
oneOf:
  - title: Add
    type: object
    required: [output]
    properties:
      output: {type: integer}
`

// mathSpec is the round-trip fixture: one service, one POST endpoint at
// math/{operation} with a body and a union response.
func mathSpec(t *testing.T) *spec.Spec {
	t.Helper()
	operation := spec.SchemaOf(mustDoc(t, enumOperationSchema))
	path, err := spec.ParsePath("math/{operation}", map[string]spec.Type{"operation": operation})
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}
	return spec.New("calc").Service("math", func(s *spec.Service) *spec.Service {
		return s.Post("operation", path, func(e *spec.Endpoint) *spec.Endpoint {
			return e.
				Body(spec.SchemaOf(mustDoc(t, inputSchema))).
				Response(spec.SchemaOf(mustDoc(t, outputSchema)))
		})
	})
}

func TestBuild_RoundTrip(t *testing.T) {
	t.Parallel()
	a, err := Build(mathSpec(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	wantTypes := []string{"EnumOperation", "Input", "Output"}
	if len(a.Types) != len(wantTypes) {
		t.Fatalf("types: got %d (%v), want %d", len(a.Types), typeNames(a), len(wantTypes))
	}
	for i, name := range wantTypes {
		if a.Types[i].Name() != name {
			t.Errorf("types[%d]: got %q, want %q", i, a.Types[i].Name(), name)
		}
	}

	if len(a.Services) != 1 || a.Services[0].Name != "math" {
		t.Fatalf("services: %+v", a.Services)
	}
	eps := a.Services[0].Endpoints
	if len(eps) != 1 || eps[0].Name != "operation" || eps[0].Method != MethodPost {
		t.Fatalf("endpoints: %+v", eps)
	}

	path := eps[0].Path
	if len(path) != 2 {
		t.Fatalf("path: %+v", path)
	}
	if path[0].Param != nil || path[0].Literal != "math" {
		t.Errorf("path[0]: %+v, want literal math", path[0])
	}
	if path[1].Param == nil || path[1].Param.Name != "operation" || !FieldTypesEqual(path[1].Param.Type, Reference("EnumOperation")) {
		t.Errorf("path[1]: %+v, want parameter operation -> EnumOperation", path[1])
	}
	if eps[0].Body == nil || !FieldTypesEqual(*eps[0].Body, Reference("Input")) {
		t.Errorf("body: %+v, want Reference(Input)", eps[0].Body)
	}
	if !FieldTypesEqual(eps[0].Response, Reference("Output")) {
		t.Errorf("response: %+v, want Reference(Output)", eps[0].Response)
	}
}

func typeNames(a *AAT) []string {
	names := make([]string, 0, len(a.Types))
	for _, nt := range a.Types {
		names = append(names, nt.Name())
	}
	return names
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()
	// Author services and endpoints in reverse order; the sorted AAT must
	// come out identical to the forward ordering.
	build := func(reverse bool) *AAT {
		s := spec.New("multi")
		add := func(s *spec.Spec, svcName string, epNames []string) {
			s.Service(svcName, func(svc *spec.Service) *spec.Service {
				for _, name := range epNames {
					svc = svc.Get(name, []spec.PathSegment{spec.Lit(name)}, nil)
				}
				return svc
			})
		}
		if reverse {
			add(s, "zeta", []string{"two", "one"})
			add(s, "alpha", []string{"b", "a"})
		} else {
			add(s, "alpha", []string{"a", "b"})
			add(s, "zeta", []string{"one", "two"})
		}
		a, err := Build(s)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		return a
	}

	forward, backward := build(false), build(true)
	if len(forward.Services) != 2 || forward.Services[0].Name != "alpha" || forward.Services[1].Name != "zeta" {
		t.Fatalf("service order: %+v", forward.Services)
	}
	for i := range forward.Services {
		fw, bw := forward.Services[i], backward.Services[i]
		if fw.Name != bw.Name || len(fw.Endpoints) != len(bw.Endpoints) {
			t.Fatalf("service %d differs: %+v vs %+v", i, fw, bw)
		}
		for j := range fw.Endpoints {
			if fw.Endpoints[j].Name != bw.Endpoints[j].Name {
				t.Fatalf("endpoint order differs in %q: %q vs %q", fw.Name, fw.Endpoints[j].Name, bw.Endpoints[j].Name)
			}
		}
	}
}

func TestBuild_DedupIdempotent(t *testing.T) {
	t.Parallel()
	// The same schema referenced from two endpoints registers one type.
	input := func() spec.Type { return spec.SchemaOf(mustDoc(t, inputSchema)) }
	s := spec.New("dup").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.
			Post("first", []spec.PathSegment{spec.Lit("first")}, func(e *spec.Endpoint) *spec.Endpoint {
				return e.Body(input())
			}).
			Post("second", []spec.PathSegment{spec.Lit("second")}, func(e *spec.Endpoint) *spec.Endpoint {
				return e.Body(input())
			})
	})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(a.Types) != 1 || a.Types[0].Name() != "Input" {
		t.Fatalf("types: %v", typeNames(a))
	}
}

func TestBuild_NameCollision(t *testing.T) {
	t.Parallel()
	objectX := `
title: X
type: object
required: [a]
properties:
  a: {type: integer}
`
	enumX := `
title: X
enum: [one, two]
`
	// Collision must be detected regardless of registration order.
	for _, order := range [][]string{{objectX, enumX}, {enumX, objectX}} {
		order := order
		s := spec.New("collide").Service("svc", func(svc *spec.Service) *spec.Service {
			return svc.
				Post("first", []spec.PathSegment{spec.Lit("first")}, func(e *spec.Endpoint) *spec.Endpoint {
					return e.Body(spec.SchemaOf(mustDoc(t, order[0])))
				}).
				Post("second", []spec.PathSegment{spec.Lit("second")}, func(e *spec.Endpoint) *spec.Endpoint {
					return e.Body(spec.SchemaOf(mustDoc(t, order[1])))
				})
		})
		_, err := Build(s)
		if err == nil {
			t.Fatal("expected collision error")
		}
		var aatErr *Error
		if !errors.As(err, &aatErr) || aatErr.Code != CollisionError {
			t.Fatalf("expected CollisionError, got %v", err)
		}
	}
}

func TestBuild_AnonymousNames(t *testing.T) {
	t.Parallel()
	// Untitled named-worthy schemas get the smallest unused fallback name.
	unnamed := func(field string) spec.Type {
		return spec.SchemaOf(mustDoc(t, "type: object\nrequired: ["+field+"]\nproperties: {"+field+": {type: string}}"))
	}
	s := spec.New("anon").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.Post("ep", []spec.PathSegment{spec.Lit("ep")}, func(e *spec.Endpoint) *spec.Endpoint {
			return e.Body(unnamed("a")).Response(unnamed("b"))
		})
	})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := typeNames(a)
	if len(got) != 2 || got[0] != "AnonymousType1" || got[1] != "AnonymousType2" {
		t.Fatalf("types: %v", got)
	}
}

func TestBuild_DefsRegisterTypes(t *testing.T) {
	t.Parallel()
	doc := `
title: Root
type: object
required: [pet]
properties:
  pet: {$ref: "#/$defs/Pet"}
$defs:
  Pet:
    type: object
    required: [name]
    properties:
      name: {type: string}
`
	s := spec.New("defs").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.Post("ep", []spec.PathSegment{spec.Lit("ep")}, func(e *spec.Endpoint) *spec.Endpoint {
			return e.Body(spec.SchemaOf(mustDoc(t, doc)))
		})
	})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := typeNames(a)
	if len(got) != 2 || got[0] != "Pet" || got[1] != "Root" {
		t.Fatalf("types: %v", got)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestBuild_TypeWrappers(t *testing.T) {
	t.Parallel()
	str := spec.SchemaOf(mustDoc(t, `type: string`))
	s := spec.New("wrap").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.Get("ep", []spec.PathSegment{spec.Lit("ep")}, func(e *spec.Endpoint) *spec.Endpoint {
			return e.
				Query(spec.OptionalOf(str)).
				Body(spec.TupleOf(str, spec.ListOf(str))).
				Response(spec.StreamOf(str))
		})
	})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ep := a.Services[0].Endpoints[0]
	if !FieldTypesEqual(*ep.Query, Optional(String(FormatNone))) {
		t.Errorf("query: %+v", ep.Query)
	}
	if !FieldTypesEqual(*ep.Body, Tuple([]FieldType{String(FormatNone), List(String(FormatNone))})) {
		t.Errorf("body: %+v", ep.Body)
	}
	if !FieldTypesEqual(ep.Response, Stream(String(FormatNone))) {
		t.Errorf("response: %+v", ep.Response)
	}
}

func TestBuild_VoidResponseIsAny(t *testing.T) {
	t.Parallel()
	s := spec.New("void").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.Delete("ep", []spec.PathSegment{spec.Lit("ep")}, nil)
	})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := a.Services[0].Endpoints[0].Response; got.Kind != KindAny {
		t.Fatalf("response: %+v, want Any", got)
	}
}

func TestBuild_NamedTupleRejected(t *testing.T) {
	t.Parallel()
	s := spec.New("nt").Service("svc", func(svc *spec.Service) *spec.Service {
		return svc.Post("ep", []spec.PathSegment{spec.Lit("ep")}, func(e *spec.Endpoint) *spec.Endpoint {
			return e.Body(spec.NamedTupleOf(map[string]spec.Type{"x": spec.SchemaOf(mustDoc(t, `type: string`))}))
		})
	})
	_, err := Build(s)
	var aatErr *Error
	if !errors.As(err, &aatErr) || aatErr.Code != UnsupportedError {
		t.Fatalf("expected UnsupportedError, got %v", err)
	}
}

func TestBuild_PathParameterCategories(t *testing.T) {
	t.Parallel()
	str := spec.SchemaOf(mustDoc(t, `type: string`))
	cases := []struct {
		name string
		typ  spec.Type
	}{
		{"void", spec.Void()},
		{"optional", spec.OptionalOf(str)},
		{"list", spec.ListOf(str)},
		{"stream", spec.StreamOf(str)},
		{"tuple", spec.TupleOf(str)},
		{"named tuple", spec.NamedTupleOf(map[string]spec.Type{"x": str})},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := spec.New("paths").Service("svc", func(svc *spec.Service) *spec.Service {
				return svc.Get("ep", []spec.PathSegment{spec.Param("id", tc.typ)}, nil)
			})
			_, err := Build(s)
			var aatErr *Error
			if !errors.As(err, &aatErr) || aatErr.Code != PathParamError {
				t.Fatalf("expected PathParamError, got %v", err)
			}
		})
	}
}

func TestBuild_Headers(t *testing.T) {
	t.Parallel()
	str := spec.SchemaOf(mustDoc(t, `type: string`))
	s := spec.New("hdrs").
		WithHeader("X-Api-Version", spec.HeaderLiteral("1")).
		WithHeader("Authorization", spec.HeaderPattern("Bearer {token}", "token", str)).
		Service("svc", func(svc *spec.Service) *spec.Service {
			return svc.
				WithHeader("X-Tenant", spec.HeaderParam("tenant", str)).
				Get("ep", []spec.PathSegment{spec.Lit("ep")}, func(e *spec.Endpoint) *spec.Endpoint {
					return e.WithHeader("X-Trace", spec.HeaderParam("trace", str)).WithUpgrade(spec.UpgradeWs)
				})
		})
	a, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(a.Headers) != 2 {
		t.Fatalf("root headers: %+v", a.Headers)
	}
	// Header maps iterate sorted, so Authorization precedes X-Api-Version.
	auth := a.Headers[0]
	if auth.Name != "Authorization" || auth.Value.Kind != HeaderPattern ||
		auth.Value.Pattern != "Bearer {token}" || auth.Value.ParamName != "token" {
		t.Fatalf("authorization header: %+v", auth)
	}
	if a.Headers[1].Value.Kind != HeaderLiteral || a.Headers[1].Value.Literal != "1" {
		t.Fatalf("version header: %+v", a.Headers[1])
	}

	svc := a.Services[0]
	if len(svc.Headers) != 1 || svc.Headers[0].Value.Kind != HeaderParameter || svc.Headers[0].Value.ParamName != "tenant" {
		t.Fatalf("service headers: %+v", svc.Headers)
	}
	ep := svc.Endpoints[0]
	if len(ep.Headers) != 1 || ep.Headers[0].Name != "X-Trace" {
		t.Fatalf("endpoint headers: %+v", ep.Headers)
	}
	if ep.Upgrade != UpgradeWs {
		t.Fatalf("upgrade: %q", ep.Upgrade)
	}
}
