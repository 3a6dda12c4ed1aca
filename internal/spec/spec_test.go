package spec

import (
	"testing"
)

func TestSpecBuilder(t *testing.T) {
	t.Parallel()
	s := New("calc").
		WithOrganization("acme").
		WithDescription("a calculator").
		WithHeader("X-Api-Version", HeaderLiteral("1")).
		Service("math", func(svc *Service) *Service {
			return svc.
				WithHeader("X-Tenant", HeaderParam("tenant", strType())).
				Post("operation", MustParsePath("math/run", nil), func(e *Endpoint) *Endpoint {
					return e.
						Body(strType()).
						Response(ListOf(strType())).
						WithHeader("X-Trace", HeaderParam("trace", strType())).
						WithUpgrade(UpgradeWs)
				}).
				Get("status", []PathSegment{Lit("status")}, nil)
		})

	if s.Name() != "calc" || s.Organization() != "acme" || s.Description() != "a calculator" {
		t.Fatalf("metadata: %q %q %q", s.Name(), s.Organization(), s.Description())
	}
	headers := s.Headers()
	if len(headers) != 1 || headers[0].Name != "X-Api-Version" || headers[0].Value.Literal != "1" {
		t.Fatalf("root headers: %+v", headers)
	}

	services := s.Services()
	if len(services) != 1 || services[0].Name() != "math" {
		t.Fatalf("services: %+v", services)
	}
	svcHeaders := services[0].Headers()
	if len(svcHeaders) != 1 || svcHeaders[0].Value.Kind != HeaderParamKind {
		t.Fatalf("service headers: %+v", svcHeaders)
	}

	eps := services[0].Endpoints()
	if len(eps) != 2 {
		t.Fatalf("endpoints: %+v", eps)
	}
	op := eps[0]
	if op.Name() != "operation" || op.Method() != POST {
		t.Fatalf("operation endpoint: %q %q", op.Name(), op.Method())
	}
	if op.BodyType() == nil || op.BodyType().Kind != KindSchema {
		t.Fatalf("body: %+v", op.BodyType())
	}
	if op.ResponseType().Kind != KindList {
		t.Fatalf("response: %+v", op.ResponseType())
	}
	if op.UpgradeType() != UpgradeWs {
		t.Fatalf("upgrade: %q", op.UpgradeType())
	}
	if len(op.Headers()) != 1 || op.Headers()[0].Name != "X-Trace" {
		t.Fatalf("endpoint headers: %+v", op.Headers())
	}

	status := eps[1]
	if status.Method() != GET || status.QueryType() != nil || status.BodyType() != nil {
		t.Fatalf("status endpoint: %+v", status)
	}
	if status.ResponseType().Kind != KindVoid {
		t.Fatalf("default response must be Void, got %+v", status.ResponseType())
	}
}

func TestHeadersSorted(t *testing.T) {
	t.Parallel()
	s := New("h").
		WithHeader("Zulu", HeaderLiteral("z")).
		WithHeader("Alpha", HeaderLiteral("a")).
		WithHeader("Mike", HeaderLiteral("m"))
	got := s.Headers()
	want := []string{"Alpha", "Mike", "Zulu"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("headers[%d]: %q, want %q (full: %+v)", i, got[i].Name, name, got)
		}
	}
}

func TestEmptyNamesPanic(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		fn   func()
	}{
		{"spec", func() { New(" ") }},
		{"service", func() { NewService("") }},
		{"endpoint", func() { NewEndpoint("", GET, nil) }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			tc.fn()
		})
	}
}

func TestTypeKindString(t *testing.T) {
	t.Parallel()
	pairs := map[TypeKind]string{
		KindVoid:       "Void",
		KindSchema:     "Schema",
		KindStream:     "Stream",
		KindList:       "List",
		KindOptional:   "Optional",
		KindTuple:      "Tuple",
		KindNamedTuple: "NamedTuple",
	}
	for kind, want := range pairs {
		if got := kind.String(); got != want {
			t.Errorf("%d: got %q, want %q", kind, got, want)
		}
	}
}
