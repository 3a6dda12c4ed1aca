package aat

import (
	"errors"
	"strings"
	"testing"
)

func stringEnum(name string, values ...string) NamedType {
	variants := make([]EnumVariant, 0, len(values))
	for _, v := range values {
		variants = append(variants, EnumVariant{Value: StringLit(v)})
	}
	return NamedType{Enum: &EnumType{Name: name, Variants: variants}}
}

func endpointAAT(ep Endpoint, types ...NamedType) *AAT {
	return &AAT{
		Types:    types,
		Services: []Service{{Name: "svc", Endpoints: []Endpoint{ep}}},
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	t.Parallel()
	a := endpointAAT(Endpoint{
		Name:     "haunt",
		Method:   MethodGet,
		Path:     []PathSegment{{Literal: "haunt"}},
		Response: List(Reference("Ghost")),
	})
	err := a.Validate()
	if err == nil {
		t.Fatal("expected reference error")
	}
	var aatErr *Error
	if !errors.As(err, &aatErr) || aatErr.Code != ReferenceError {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Ghost") {
		t.Fatalf("error must name the missing type: %v", err)
	}
}

func TestValidate_FieldReferences(t *testing.T) {
	t.Parallel()
	holder := objectNamed("Holder", Field{Name: "pet", Type: Optional(Reference("Pet"))})

	a := &AAT{Types: []NamedType{holder}}
	if err := a.Validate(); err == nil {
		t.Fatal("unresolved field reference must fail")
	}

	a = &AAT{Types: []NamedType{holder, objectNamed("Pet", Field{Name: "name", Type: String(FormatNone)})}}
	if err := a.Validate(); err != nil {
		t.Fatalf("resolved field reference: %v", err)
	}
}

func TestValidate_UnionVariantReferences(t *testing.T) {
	t.Parallel()
	union := NamedType{Union: &UnionType{Name: "Result", Variants: []UnionVariant{
		{Name: "Ok", Object: &ObjectType{Name: "Ok", Fields: []Field{{Name: "value", Type: Reference("Missing")}}}},
	}}}
	a := &AAT{Types: []NamedType{union}}
	err := a.Validate()
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("union variant field reference must be checked: %v", err)
	}
}

func TestValidate_HeaderReferences(t *testing.T) {
	t.Parallel()
	a := &AAT{Headers: []Header{{
		Name:  "X-Tenant",
		Value: HeaderValue{Kind: HeaderParameter, ParamName: "tenant", Type: Reference("Tenant")},
	}}}
	if err := a.Validate(); err == nil {
		t.Fatal("unresolved header reference must fail")
	}

	a.Types = []NamedType{stringEnum("Tenant", "acme", "globex")}
	if err := a.Validate(); err != nil {
		t.Fatalf("resolved header reference: %v", err)
	}
}

func TestValidate_PathParameterStringifiable(t *testing.T) {
	t.Parallel()
	pathEndpoint := func(t_ FieldType) Endpoint {
		return Endpoint{
			Name:     "ep",
			Method:   MethodGet,
			Path:     []PathSegment{{Param: &PathParameter{Name: "p", Type: t_}}},
			Response: Any(),
		}
	}

	cases := []struct {
		name  string
		typ   FieldType
		types []NamedType
		ok    bool
	}{
		{"string primitive", String(FormatNone), nil, true},
		{"int primitive", Int(), nil, true},
		{"string literal", LiteralOf(StringLit("fixed")), nil, true},
		{"optional string", Optional(String(FormatNone)), nil, false},
		{"list", List(Int()), nil, false},
		{"all-string enum reference", Reference("Op"), []NamedType{stringEnum("Op", "add", "sub")}, true},
		{"mixed enum reference", Reference("Op"), []NamedType{
			{Enum: &EnumType{Name: "Op", Variants: []EnumVariant{{Value: StringLit("add")}, {Value: IntLit(3)}}}},
		}, false},
		{"object reference", Reference("Op"), []NamedType{objectNamed("Op", Field{Name: "x", Type: Int()})}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := endpointAAT(pathEndpoint(tc.typ), tc.types...)
			err := a.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				var aatErr *Error
				if !errors.As(err, &aatErr) || aatErr.Code != PathParamError {
					t.Fatalf("expected PathParamError, got %v", err)
				}
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	t.Parallel()
	a := endpointAAT(
		Endpoint{
			Name:     "ep",
			Method:   MethodGet,
			Path:     []PathSegment{{Param: &PathParameter{Name: "op", Type: Reference("Op")}}},
			Response: Reference("Op"),
		},
		stringEnum("Op", "add"),
	)
	if err := a.Validate(); err != nil {
		t.Fatalf("first validate: %v", err)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("second validate: %v", err)
	}
}
