// Package spec is the authoring surface for API descriptions. A Spec is built
// once through chained builder calls and read afterwards through accessors;
// the aat package walks it to produce the Abstract API Tree.
package spec

import (
	"sort"
	"strings"
)

// Spec is a complete authored API description.
type Spec struct {
	name         string
	organization string
	repository   string
	website      string
	docs         string
	description  string
	headers      map[string]HeaderValue
	services     []Service
}

// New starts a Spec. The name must be non-empty; an empty name panics because
// it is an authoring bug, not an input error.
func New(name string) *Spec {
	if strings.TrimSpace(name) == "" {
		panic("spec: name cannot be empty")
	}
	return &Spec{name: name, headers: map[string]HeaderValue{}}
}

func (s *Spec) Name() string         { return s.name }
func (s *Spec) Organization() string { return s.organization }
func (s *Spec) Repository() string   { return s.repository }
func (s *Spec) Website() string      { return s.website }
func (s *Spec) Docs() string         { return s.docs }
func (s *Spec) Description() string  { return s.description }
func (s *Spec) Services() []Service  { return s.services }

// Headers returns the root header names in sorted order with their values.
func (s *Spec) Headers() []NamedHeader { return sortedHeaders(s.headers) }

func (s *Spec) WithOrganization(v string) *Spec { s.organization = v; return s }
func (s *Spec) WithRepository(v string) *Spec   { s.repository = v; return s }
func (s *Spec) WithWebsite(v string) *Spec      { s.website = v; return s }
func (s *Spec) WithDocs(v string) *Spec         { s.docs = v; return s }
func (s *Spec) WithDescription(v string) *Spec  { s.description = v; return s }

// WithHeader sets a root-level header.
func (s *Spec) WithHeader(name string, value HeaderValue) *Spec {
	s.headers[name] = value
	return s
}

// Service appends a service configured by the block.
func (s *Spec) Service(name string, block func(*Service) *Service) *Spec {
	svc := NewService(name)
	if block != nil {
		svc = block(svc)
	}
	s.services = append(s.services, *svc)
	return s
}

// NamedHeader pairs a header name with its value for ordered iteration.
type NamedHeader struct {
	Name  string
	Value HeaderValue
}

func sortedHeaders(m map[string]HeaderValue) []NamedHeader {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]NamedHeader, 0, len(names))
	for _, name := range names {
		out = append(out, NamedHeader{Name: name, Value: m[name]})
	}
	return out
}

// Service groups endpoints under a common name and header set.
type Service struct {
	name      string
	headers   map[string]HeaderValue
	endpoints []Endpoint
}

// NewService starts a Service. Panics on an empty name, same as New.
func NewService(name string) *Service {
	if strings.TrimSpace(name) == "" {
		panic("spec: service name cannot be empty")
	}
	return &Service{name: name, headers: map[string]HeaderValue{}}
}

func (s *Service) Name() string          { return s.name }
func (s *Service) Endpoints() []Endpoint { return s.endpoints }

// Headers returns the service header names in sorted order with their values.
func (s *Service) Headers() []NamedHeader { return sortedHeaders(s.headers) }

// WithHeader sets a service-level header.
func (s *Service) WithHeader(name string, value HeaderValue) *Service {
	s.headers[name] = value
	return s
}

// Endpoint appends an endpoint configured by the block.
func (s *Service) Endpoint(name string, method Method, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	ep := NewEndpoint(name, method, path)
	if block != nil {
		ep = block(ep)
	}
	s.endpoints = append(s.endpoints, *ep)
	return s
}

// Get, Post, Put, Delete and Patch are method-specific Endpoint shorthands.
func (s *Service) Get(name string, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	return s.Endpoint(name, GET, path, block)
}

func (s *Service) Post(name string, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	return s.Endpoint(name, POST, path, block)
}

func (s *Service) Put(name string, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	return s.Endpoint(name, PUT, path, block)
}

func (s *Service) Delete(name string, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	return s.Endpoint(name, DELETE, path, block)
}

func (s *Service) Patch(name string, path []PathSegment, block func(*Endpoint) *Endpoint) *Service {
	return s.Endpoint(name, PATCH, path, block)
}

// Endpoint is one operation: method, path, and the types flowing through it.
// The response defaults to Void.
type Endpoint struct {
	name     string
	method   Method
	path     []PathSegment
	query    *Type
	body     *Type
	response Type
	upgrade  Upgrade
	headers  map[string]HeaderValue
}

// NewEndpoint starts an Endpoint. Panics on an empty name, same as New.
func NewEndpoint(name string, method Method, path []PathSegment) *Endpoint {
	if strings.TrimSpace(name) == "" {
		panic("spec: endpoint name cannot be empty")
	}
	return &Endpoint{
		name:     name,
		method:   method,
		path:     path,
		response: Void(),
		headers:  map[string]HeaderValue{},
	}
}

func (e *Endpoint) Name() string        { return e.name }
func (e *Endpoint) Method() Method      { return e.method }
func (e *Endpoint) Path() []PathSegment { return e.path }
func (e *Endpoint) QueryType() *Type    { return e.query }
func (e *Endpoint) BodyType() *Type     { return e.body }
func (e *Endpoint) ResponseType() Type  { return e.response }
func (e *Endpoint) UpgradeType() Upgrade { return e.upgrade }

// Headers returns the endpoint header names in sorted order with their values.
func (e *Endpoint) Headers() []NamedHeader { return sortedHeaders(e.headers) }

// WithHeader sets an endpoint-level header.
func (e *Endpoint) WithHeader(name string, value HeaderValue) *Endpoint {
	e.headers[name] = value
	return e
}

// Query sets the query type.
func (e *Endpoint) Query(t Type) *Endpoint { e.query = &t; return e }

// Body sets the request body type.
func (e *Endpoint) Body(t Type) *Endpoint { e.body = &t; return e }

// Response sets the response type.
func (e *Endpoint) Response(t Type) *Endpoint { e.response = t; return e }

// WithUpgrade marks the endpoint as upgrading the connection.
func (e *Endpoint) WithUpgrade(u Upgrade) *Endpoint { e.upgrade = u; return e }
