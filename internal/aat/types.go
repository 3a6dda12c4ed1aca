// Package aat builds, validates, and owns the Abstract API Tree: the closed,
// name-addressed intermediate representation of an API surface that code
// generation consumes. Build walks an authored spec, normalizing every raw
// schema into the FieldType/NamedType algebra; Validate checks the finished
// tree for reference closure and path-parameter stringifiability.
package aat

// FieldKind discriminates the FieldType algebra.
type FieldKind int

const (
	KindPrimitive FieldKind = iota
	KindLiteral
	KindOptional
	KindList
	KindMap
	KindStream
	KindReference
	KindIntersection
	KindTuple
	KindAny
)

func (k FieldKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindLiteral:
		return "Literal"
	case KindOptional:
		return "Optional"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindStream:
		return "Stream"
	case KindReference:
		return "Reference"
	case KindIntersection:
		return "Intersection"
	case KindTuple:
		return "Tuple"
	case KindAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// FieldType is the closed algebra every schema normalizes into. The Kind tag
// selects which payload fields are meaningful.
type FieldType struct {
	Kind    FieldKind
	Prim    Primitive   // KindPrimitive
	Lit     *Literal    // KindLiteral
	Elem    *FieldType  // KindOptional, KindList, KindMap, KindStream
	Ref     string      // KindReference
	Members []FieldType // KindIntersection, KindTuple
}

// Constructors for the FieldType algebra.

func Any() FieldType                  { return FieldType{Kind: KindAny} }
func Bool() FieldType                 { return FieldType{Kind: KindPrimitive, Prim: Primitive{Kind: PrimBool}} }
func Int() FieldType                  { return FieldType{Kind: KindPrimitive, Prim: Primitive{Kind: PrimInt}} }
func Float() FieldType                { return FieldType{Kind: KindPrimitive, Prim: Primitive{Kind: PrimFloat}} }
func String(format StringFormat) FieldType {
	return FieldType{Kind: KindPrimitive, Prim: Primitive{Kind: PrimString, Format: format}}
}
func LiteralOf(lit Literal) FieldType { return FieldType{Kind: KindLiteral, Lit: &lit} }
func Optional(t FieldType) FieldType  { return FieldType{Kind: KindOptional, Elem: &t} }
func List(t FieldType) FieldType      { return FieldType{Kind: KindList, Elem: &t} }
func Map(t FieldType) FieldType       { return FieldType{Kind: KindMap, Elem: &t} }
func Stream(t FieldType) FieldType    { return FieldType{Kind: KindStream, Elem: &t} }
func Reference(name string) FieldType { return FieldType{Kind: KindReference, Ref: name} }
func Intersection(members []FieldType) FieldType {
	return FieldType{Kind: KindIntersection, Members: members}
}
func Tuple(members []FieldType) FieldType { return FieldType{Kind: KindTuple, Members: members} }

// PrimKind discriminates primitives.
type PrimKind int

const (
	PrimBool PrimKind = iota
	PrimInt
	PrimFloat
	PrimString
)

// Primitive is a scalar field type. Format applies only to strings; the zero
// value means no recognized format.
type Primitive struct {
	Kind   PrimKind
	Format StringFormat
}

// StringFormat is a recognized string format tag. Unrecognized formats are
// dropped during normalization.
type StringFormat string

const (
	FormatNone     StringFormat = ""
	FormatDateTime StringFormat = "date-time"
	FormatDate     StringFormat = "date"
	FormatTime     StringFormat = "time"
	FormatUUID     StringFormat = "uuid"
	FormatEmail    StringFormat = "email"
	FormatURI      StringFormat = "uri"
	FormatHostname StringFormat = "hostname"
	FormatIPv4     StringFormat = "ipv4"
	FormatIPv6     StringFormat = "ipv6"
)

// LitKind discriminates literal values.
type LitKind int

const (
	LitString LitKind = iota
	LitInt
	LitFloat
	LitBool
	LitNull
)

// Literal is a single concrete JSON value usable as a type.
type Literal struct {
	Kind  LitKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringLit(s string) Literal  { return Literal{Kind: LitString, Str: s} }
func IntLit(i int64) Literal      { return Literal{Kind: LitInt, Int: i} }
func FloatLit(f float64) Literal  { return Literal{Kind: LitFloat, Float: f} }
func BoolLit(b bool) Literal      { return Literal{Kind: LitBool, Bool: b} }
func NullLit() Literal            { return Literal{Kind: LitNull} }

// NamedType is a type addressable by name from anywhere in the AAT. Exactly
// one of Object, Union, or Enum is set.
type NamedType struct {
	Object *ObjectType
	Union  *UnionType
	Enum   *EnumType
}

// Name returns the declared name regardless of shape.
func (t NamedType) Name() string {
	switch {
	case t.Object != nil:
		return t.Object.Name
	case t.Union != nil:
		return t.Union.Name
	case t.Enum != nil:
		return t.Enum.Name
	default:
		return ""
	}
}

// ObjectType is a named product type with ordered fields.
type ObjectType struct {
	Name   string
	Fields []Field
}

// Field is one object member.
type Field struct {
	Name        string
	Type        FieldType
	Constraints *Constraints
}

// UnionType is a named sum type.
type UnionType struct {
	Name          string
	Discriminator *Discriminator
	Variants      []UnionVariant
}

// Discriminator identifies which property selects a union variant.
type Discriminator struct {
	PropertyName string
	Mapping      map[string]string
}

// UnionVariant is one alternative of a union: an object shape or a literal.
// Exactly one of Object or Literal is set.
type UnionVariant struct {
	Name    string // empty when the variant is unnamed
	Object  *ObjectType
	Literal *Literal
}

// EnumType is a named closed set of literal values.
type EnumType struct {
	Name     string
	Variants []EnumVariant
}

// EnumVariant is one enum member.
type EnumVariant struct {
	Value       Literal
	Description string
}

// Service mirrors the spec-side service with all types resolved.
type Service struct {
	Name      string
	Headers   []Header
	Endpoints []Endpoint
}

// Endpoint mirrors the spec-side endpoint with all types resolved.
type Endpoint struct {
	Name     string
	Method   HTTPMethod
	Path     []PathSegment
	Query    *FieldType
	Body     *FieldType
	Response FieldType
	Upgrade  Upgrade
	Headers  []Header
}

// HTTPMethod is the AAT-side method enum.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// Upgrade marks a protocol upgrade; empty means none.
type Upgrade string

// UpgradeWs is the websocket upgrade marker.
const UpgradeWs Upgrade = "ws"

// PathSegment is a resolved path element. Param is nil for literals.
type PathSegment struct {
	Literal string
	Param   *PathParameter
}

// PathParameter is a resolved typed path parameter.
type PathParameter struct {
	Name string
	Type FieldType
}

// HeaderValueKind discriminates resolved header values.
type HeaderValueKind int

const (
	HeaderLiteral HeaderValueKind = iota
	HeaderParameter
	HeaderPattern
)

// Header is a resolved header declaration.
type Header struct {
	Name  string
	Value HeaderValue
}

// HeaderValue is a resolved header value source.
type HeaderValue struct {
	Kind      HeaderValueKind
	Literal   string    // HeaderLiteral
	ParamName string    // HeaderParameter, HeaderPattern
	Type      FieldType // HeaderParameter, HeaderPattern
	Pattern   string    // HeaderPattern
}

// Constraints are optional bounds attached to an object field. Nil pointers
// mean the bound is absent.
type Constraints struct {
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	MinLength *int
	MaxLength *int
	Pattern   *string

	MinItems    *int
	MaxItems    *int
	UniqueItems *bool
}

// Validate checks the constraints for internal consistency.
func (c *Constraints) Validate() error {
	if c.Minimum != nil && c.Maximum != nil && *c.Minimum > *c.Maximum {
		return errf(ConstraintError, "invalid constraint: minimum (%v) must be <= maximum (%v)", *c.Minimum, *c.Maximum)
	}
	if c.ExclusiveMinimum != nil && c.ExclusiveMaximum != nil && *c.ExclusiveMinimum >= *c.ExclusiveMaximum {
		return errf(ConstraintError, "invalid constraint: exclusiveMinimum (%v) must be < exclusiveMaximum (%v)", *c.ExclusiveMinimum, *c.ExclusiveMaximum)
	}
	if c.Minimum != nil && c.ExclusiveMaximum != nil && *c.Minimum >= *c.ExclusiveMaximum {
		return errf(ConstraintError, "invalid constraint: minimum (%v) must be < exclusiveMaximum (%v)", *c.Minimum, *c.ExclusiveMaximum)
	}
	if c.ExclusiveMinimum != nil && c.Maximum != nil && *c.ExclusiveMinimum >= *c.Maximum {
		return errf(ConstraintError, "invalid constraint: exclusiveMinimum (%v) must be < maximum (%v)", *c.ExclusiveMinimum, *c.Maximum)
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		return errf(ConstraintError, "invalid constraint: minLength (%d) must be <= maxLength (%d)", *c.MinLength, *c.MaxLength)
	}
	if c.MinItems != nil && c.MaxItems != nil && *c.MinItems > *c.MaxItems {
		return errf(ConstraintError, "invalid constraint: minItems (%d) must be <= maxItems (%d)", *c.MinItems, *c.MaxItems)
	}
	if c.MultipleOf != nil && *c.MultipleOf <= 0 {
		return errf(ConstraintError, "invalid constraint: multipleOf (%v) must be > 0", *c.MultipleOf)
	}
	return nil
}
