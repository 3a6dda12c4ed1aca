package aat

import (
	"sort"
	"strconv"

	"github.com/damascus-dev/damascus/internal/schema"
	"github.com/damascus-dev/damascus/internal/spec"
)

// AAT is the Abstract API Tree: every named type, service, and root header of
// an API surface, fully resolved and deterministically ordered. It is built
// once from a Spec and read-only afterwards.
type AAT struct {
	Types    []NamedType
	Services []Service
	Headers  []Header

	// Metadata carried through from the spec for generated file headers.
	Name         string
	Description  string
	Organization string
	Repository   string
	Website      string
	Docs         string

	// typeNames tracks every name seen during this build; it backs fallback
	// name generation and is scoped to the one build call.
	typeNames map[string]bool
}

// New returns an empty AAT ready for imports. Build is the usual entry point;
// New exists for callers that feed schemas directly via AppendTypesFromSchema.
func New() *AAT {
	return &AAT{typeNames: map[string]bool{}}
}

// Build constructs an AAT from a Spec: imports every service, endpoint, and
// header, normalizing embedded schemas through the registry, then sorts for
// reproducible output. Any nested error aborts the build; a partially
// imported AAT is never returned.
func Build(s *spec.Spec) (*AAT, error) {
	a := New()
	if err := a.importSpec(s); err != nil {
		return nil, err
	}
	a.sortAll()
	return a, nil
}

// sortAll orders types, services, and each service's endpoints by name so
// repeated builds of the same logical spec are diff-stable.
func (a *AAT) sortAll() {
	sort.Slice(a.Types, func(i, j int) bool { return a.Types[i].Name() < a.Types[j].Name() })
	sort.Slice(a.Services, func(i, j int) bool { return a.Services[i].Name < a.Services[j].Name })
	for i := range a.Services {
		eps := a.Services[i].Endpoints
		sort.Slice(eps, func(x, y int) bool { return eps[x].Name < eps[y].Name })
	}
}

func (a *AAT) importSpec(s *spec.Spec) error {
	a.Name = s.Name()
	a.Description = s.Description()
	a.Organization = s.Organization()
	a.Repository = s.Repository()
	a.Website = s.Website()
	a.Docs = s.Docs()

	for _, h := range s.Headers() {
		header, err := a.headerFromSpec(h.Name, h.Value)
		if err != nil {
			return err
		}
		a.Headers = append(a.Headers, header)
	}

	for _, specService := range s.Services() {
		service := Service{Name: specService.Name()}

		for _, h := range specService.Headers() {
			header, err := a.headerFromSpec(h.Name, h.Value)
			if err != nil {
				return err
			}
			service.Headers = append(service.Headers, header)
		}

		for _, specEndpoint := range specService.Endpoints() {
			endpoint, err := a.endpointFromSpec(&specEndpoint)
			if err != nil {
				return err
			}
			service.Endpoints = append(service.Endpoints, endpoint)
		}

		a.Services = append(a.Services, service)
	}
	return nil
}

func (a *AAT) endpointFromSpec(e *spec.Endpoint) (Endpoint, error) {
	var path []PathSegment
	for _, segment := range e.Path() {
		if segment.Param == nil {
			path = append(path, PathSegment{Literal: segment.Literal})
			continue
		}
		if err := validatePathParameterType(segment.Param.Type); err != nil {
			return Endpoint{}, err
		}
		fieldType, err := a.specTypeToFieldType(segment.Param.Type)
		if err != nil {
			return Endpoint{}, err
		}
		path = append(path, PathSegment{Param: &PathParameter{Name: segment.Param.Name, Type: fieldType}})
	}

	var query *FieldType
	if qt := e.QueryType(); qt != nil {
		ft, err := a.specTypeToFieldType(*qt)
		if err != nil {
			return Endpoint{}, err
		}
		query = &ft
	}

	var body *FieldType
	if bt := e.BodyType(); bt != nil {
		ft, err := a.specTypeToFieldType(*bt)
		if err != nil {
			return Endpoint{}, err
		}
		body = &ft
	}

	response, err := a.specTypeToFieldType(e.ResponseType())
	if err != nil {
		return Endpoint{}, err
	}

	var headers []Header
	for _, h := range e.Headers() {
		header, err := a.headerFromSpec(h.Name, h.Value)
		if err != nil {
			return Endpoint{}, err
		}
		headers = append(headers, header)
	}

	return Endpoint{
		Name:     e.Name(),
		Method:   methodFromSpec(e.Method()),
		Path:     path,
		Query:    query,
		Body:     body,
		Response: response,
		Upgrade:  Upgrade(e.UpgradeType()),
		Headers:  headers,
	}, nil
}

func methodFromSpec(m spec.Method) HTTPMethod {
	switch m {
	case spec.GET:
		return MethodGet
	case spec.POST:
		return MethodPost
	case spec.PUT:
		return MethodPut
	case spec.DELETE:
		return MethodDelete
	case spec.PATCH:
		return MethodPatch
	default:
		return HTTPMethod(m)
	}
}

func (a *AAT) headerFromSpec(name string, value spec.HeaderValue) (Header, error) {
	switch value.Kind {
	case spec.HeaderLiteralKind:
		return Header{Name: name, Value: HeaderValue{Kind: HeaderLiteral, Literal: value.Literal}}, nil
	case spec.HeaderParamKind:
		fieldType, err := a.specTypeToFieldType(value.Type)
		if err != nil {
			return Header{}, err
		}
		return Header{Name: name, Value: HeaderValue{Kind: HeaderParameter, ParamName: value.Name, Type: fieldType}}, nil
	case spec.HeaderPatternKind:
		fieldType, err := a.specTypeToFieldType(value.Type)
		if err != nil {
			return Header{}, err
		}
		return Header{Name: name, Value: HeaderValue{
			Kind:      HeaderPattern,
			Pattern:   value.Pattern,
			ParamName: value.Name,
			Type:      fieldType,
		}}, nil
	default:
		return Header{}, errf(UnsupportedError, "unknown header value kind for header %q", name)
	}
}

// specTypeToFieldType resolves a spec-side Type into the FieldType algebra,
// registering named types for schemas that are not inline-worthy.
func (a *AAT) specTypeToFieldType(t spec.Type) (FieldType, error) {
	switch t.Kind {
	case spec.KindVoid:
		return Any(), nil
	case spec.KindSchema:
		if shouldInlineSchema(t.Schema) {
			return SchemaToFieldType(t.Schema)
		}
		name, err := a.addSchemaAndGetName(t.Schema)
		if err != nil {
			return FieldType{}, err
		}
		return Reference(name), nil
	case spec.KindList:
		inner, err := a.specTypeToFieldType(*t.Elem)
		if err != nil {
			return FieldType{}, err
		}
		return List(inner), nil
	case spec.KindOptional:
		inner, err := a.specTypeToFieldType(*t.Elem)
		if err != nil {
			return FieldType{}, err
		}
		return Optional(inner), nil
	case spec.KindStream:
		inner, err := a.specTypeToFieldType(*t.Elem)
		if err != nil {
			return FieldType{}, err
		}
		return Stream(inner), nil
	case spec.KindTuple:
		members := make([]FieldType, 0, len(t.Members))
		for _, m := range t.Members {
			ft, err := a.specTypeToFieldType(m)
			if err != nil {
				return FieldType{}, err
			}
			members = append(members, ft)
		}
		return Tuple(members), nil
	case spec.KindNamedTuple:
		return FieldType{}, errf(UnsupportedError,
			"NamedTuple types are not supported in AAT conversion; use a named object type instead")
	default:
		return FieldType{}, errf(UnsupportedError, "unknown spec type kind %v", t.Kind)
	}
}

// AppendTypesFromSchema registers the schema itself as a NamedType under
// rootName, then registers every entry of its $defs (or legacy definitions)
// map under its own key. A single schema document can contribute many named
// types this way.
func (a *AAT) AppendTypesFromSchema(doc schema.Document, rootName string) error {
	rootType, err := SchemaToType(doc, rootName)
	if err != nil {
		return err
	}
	if err := a.addTypeWithDedupCheck(rootType); err != nil {
		return err
	}

	defs, ok := doc.GetMap("$defs")
	if !ok {
		defs, ok = doc.GetMap("definitions")
	}
	if !ok {
		return nil
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		defDoc, err := schema.FromValue(defs[name])
		if err != nil {
			return errf(SchemaError, "invalid definition %q: %s", name, err)
		}
		defType, err := SchemaToType(defDoc, name)
		if err != nil {
			return err
		}
		if err := a.addTypeWithDedupCheck(defType); err != nil {
			return err
		}
	}
	return nil
}

// addTypeWithDedupCheck inserts a NamedType unless a structurally identical
// one with the same name already exists (a no-op), or a structurally
// different one does (a collision error).
func (a *AAT) addTypeWithDedupCheck(newType NamedType) error {
	name := newType.Name()
	for i := range a.Types {
		if a.Types[i].Name() != name {
			continue
		}
		if !StructurallyEqual(a.Types[i], newType) {
			return errf(CollisionError,
				"type name collision: a type named %q already exists with a different structure", name)
		}
		return nil
	}
	a.typeNames[name] = true
	a.Types = append(a.Types, newType)
	return nil
}

// extractSchemaName derives a name for an embedded schema: its title, the
// target of its own $ref, or the smallest unused AnonymousTypeN fallback.
func (a *AAT) extractSchemaName(doc schema.Document) (string, error) {
	if _, isBool := doc.IsBool(); isBool {
		return "", errf(SchemaError, "schema must be an object to extract a name")
	}
	if title, ok := doc.GetString("title"); ok {
		return title, nil
	}
	if ref, ok := doc.GetString("$ref"); ok {
		if name, err := extractRefName(ref); err == nil {
			return name, nil
		}
	}
	for counter := 1; ; counter++ {
		candidate := "AnonymousType" + strconv.Itoa(counter)
		if !a.typeNames[candidate] {
			return candidate, nil
		}
	}
}

func (a *AAT) addSchemaAndGetName(doc schema.Document) (string, error) {
	name, err := a.extractSchemaName(doc)
	if err != nil {
		return "", err
	}
	if err := a.AppendTypesFromSchema(doc, name); err != nil {
		return "", err
	}
	return name, nil
}

// shouldInlineSchema reports whether a schema describes a primitive, array,
// map, or untyped value that can be emitted inline; schemas with properties,
// oneOf/anyOf, or enum become named types instead.
func shouldInlineSchema(doc schema.Document) bool {
	if _, isBool := doc.IsBool(); isBool {
		return true
	}
	if doc.Has("properties") || doc.Has("oneOf") || doc.Has("anyOf") || doc.Has("enum") {
		return false
	}
	return true
}

// validatePathParameterType rejects spec-side type categories that can never
// occupy a URL path segment. Only schema-backed types pass; the finer
// stringifiability rule runs post-build in Validate.
func validatePathParameterType(t spec.Type) error {
	switch t.Kind {
	case spec.KindSchema:
		return nil
	case spec.KindVoid:
		return errf(PathParamError, "path parameter cannot be Void type")
	case spec.KindStream:
		return errf(PathParamError, "path parameter cannot be Stream type - streams are not supported in URL paths")
	case spec.KindList:
		return errf(PathParamError, "path parameter cannot be List type - use query parameters for arrays")
	case spec.KindOptional:
		return errf(PathParamError, "path parameter cannot be Optional type - path parameters are always required")
	case spec.KindTuple:
		return errf(PathParamError, "path parameter cannot be Tuple type - use a structured type instead")
	case spec.KindNamedTuple:
		return errf(PathParamError, "path parameter cannot be NamedTuple type - use a structured type instead")
	default:
		return errf(PathParamError, "path parameter has unknown type kind %v", t.Kind)
	}
}
