package spec

import (
	"github.com/damascus-dev/damascus/internal/schema"
)

// TypeKind discriminates the spec-side Type sum.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindSchema
	KindStream
	KindList
	KindOptional
	KindTuple
	KindNamedTuple
)

func (k TypeKind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindSchema:
		return "Schema"
	case KindStream:
		return "Stream"
	case KindList:
		return "List"
	case KindOptional:
		return "Optional"
	case KindTuple:
		return "Tuple"
	case KindNamedTuple:
		return "NamedTuple"
	default:
		return "Unknown"
	}
}

// Type describes how a value is declared before normalization: a raw schema
// document, a wrapper around another Type, or the Void marker.
type Type struct {
	Kind    TypeKind
	Schema  schema.Document   // KindSchema
	Elem    *Type             // KindStream, KindList, KindOptional
	Members []Type            // KindTuple
	Named   map[string]Type   // KindNamedTuple
}

// Void is the "no value" marker (an endpoint with no response body).
func Void() Type { return Type{Kind: KindVoid} }

// SchemaOf wraps a raw schema document.
func SchemaOf(doc schema.Document) Type { return Type{Kind: KindSchema, Schema: doc} }

// StreamOf declares a stream of the inner type.
func StreamOf(t Type) Type { return Type{Kind: KindStream, Elem: &t} }

// ListOf declares an ordered list of the inner type.
func ListOf(t Type) Type { return Type{Kind: KindList, Elem: &t} }

// OptionalOf declares a possibly-absent value of the inner type.
func OptionalOf(t Type) Type { return Type{Kind: KindOptional, Elem: &t} }

// TupleOf declares a fixed-arity ordered tuple.
func TupleOf(members ...Type) Type { return Type{Kind: KindTuple, Members: members} }

// NamedTupleOf declares a named tuple. The AAT builder rejects it; the
// constructor exists so authoring code fails at build time with a clear
// message rather than at the call site.
func NamedTupleOf(members map[string]Type) Type { return Type{Kind: KindNamedTuple, Named: members} }

// Method is an endpoint's HTTP method.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	PATCH  Method = "PATCH"
)

// Upgrade marks an endpoint that upgrades the connection after the handshake.
type Upgrade string

// UpgradeWs is the websocket upgrade marker.
const UpgradeWs Upgrade = "ws"

// PathSegment is one element of an endpoint path: either a literal or a typed
// parameter. Exactly one form is populated.
type PathSegment struct {
	Literal string
	Param   *PathParam
}

// PathParam is a typed path parameter.
type PathParam struct {
	Name string
	Type Type
}

// Lit builds a literal path segment.
func Lit(s string) PathSegment { return PathSegment{Literal: s} }

// Param builds a typed parameter path segment.
func Param(name string, t Type) PathSegment {
	return PathSegment{Param: &PathParam{Name: name, Type: t}}
}

// HeaderValueKind discriminates how a header's value is computed.
type HeaderValueKind int

const (
	// HeaderLiteralKind is a constant header value.
	HeaderLiteralKind HeaderValueKind = iota
	// HeaderParamKind renders a single typed parameter as the value.
	HeaderParamKind
	// HeaderPatternKind substitutes a typed parameter into a template.
	HeaderPatternKind
)

// HeaderValue describes an HTTP header's value source.
type HeaderValue struct {
	Kind    HeaderValueKind
	Literal string // HeaderLiteralKind
	Name    string // parameter name for Param and Pattern kinds
	Type    Type   // parameter type for Param and Pattern kinds
	Pattern string // template containing one {name} placeholder
}

// HeaderLiteral builds a constant header value.
func HeaderLiteral(value string) HeaderValue {
	return HeaderValue{Kind: HeaderLiteralKind, Literal: value}
}

// HeaderParam builds a header whose value is a single typed parameter.
func HeaderParam(name string, t Type) HeaderValue {
	return HeaderValue{Kind: HeaderParamKind, Name: name, Type: t}
}

// HeaderPattern builds a header whose value substitutes the named parameter
// into a template, e.g. HeaderPattern("Bearer {token}", "token", stringType).
func HeaderPattern(pattern, name string, t Type) HeaderValue {
	return HeaderValue{Kind: HeaderPatternKind, Pattern: pattern, Name: name, Type: t}
}
