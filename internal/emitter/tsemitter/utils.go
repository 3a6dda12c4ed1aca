package tsemitter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/damascus-dev/damascus/internal/aat"
)

// fieldTypeToTS renders a FieldType as a TypeScript type expression.
func fieldTypeToTS(t aat.FieldType) string {
	switch t.Kind {
	case aat.KindPrimitive:
		return primitiveToTS(t.Prim)
	case aat.KindLiteral:
		return literalToTS(*t.Lit)
	case aat.KindOptional:
		return fieldTypeToTS(*t.Elem) + " | undefined"
	case aat.KindList:
		return fieldTypeToTS(*t.Elem) + "[]"
	case aat.KindMap:
		return "{ [key: string]: " + fieldTypeToTS(*t.Elem) + " }"
	case aat.KindStream:
		return "WebSocketStream<" + fieldTypeToTS(*t.Elem) + ">"
	case aat.KindReference:
		return t.Ref
	case aat.KindIntersection:
		return joinTypes(t.Members, " & ")
	case aat.KindTuple:
		return "[" + joinTypes(t.Members, ", ") + "]"
	default:
		return "any"
	}
}

func joinTypes(members []aat.FieldType, sep string) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, fieldTypeToTS(m))
	}
	return strings.Join(parts, sep)
}

func primitiveToTS(p aat.Primitive) string {
	switch p.Kind {
	case aat.PrimBool:
		return "boolean"
	case aat.PrimInt, aat.PrimFloat:
		return "number"
	default:
		return "string"
	}
}

func literalToTS(lit aat.Literal) string {
	switch lit.Kind {
	case aat.LitString:
		return strconv.Quote(lit.Str)
	case aat.LitInt:
		return strconv.FormatInt(lit.Int, 10)
	case aat.LitFloat:
		return strconv.FormatFloat(lit.Float, 'g', -1, 64)
	case aat.LitBool:
		return strconv.FormatBool(lit.Bool)
	default:
		return "null"
	}
}

func toPascalCase(s string) string {
	var b strings.Builder
	for _, part := range splitWords(s) {
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

func toCamelCase(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(strings.ToLower(string(r[1:])))
	}
	return b.String()
}

func splitWords(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	out := raw[:0]
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isValidTSIdentifier reports whether s can appear unquoted as a property name.
func isValidTSIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || r == '$' {
			continue
		}
		if i == 0 {
			if !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func quoteIfNeeded(s string) string {
	if isValidTSIdentifier(s) {
		return s
	}
	return strconv.Quote(s)
}

// needsSerialization reports whether values of this type must pass through a
// generated serializer on the wire: anything that transitively contains a
// reference does, since named types rename fields between camelCase and their
// wire form.
func needsSerialization(t aat.FieldType) bool {
	switch t.Kind {
	case aat.KindReference:
		return true
	case aat.KindOptional, aat.KindList, aat.KindMap, aat.KindStream:
		return needsSerialization(*t.Elem)
	case aat.KindTuple, aat.KindIntersection:
		for _, m := range t.Members {
			if needsSerialization(m) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// serializerCall returns a TypeScript expression naming (or inlining) the
// serializer for a type. deserializerCall is its inverse.
func serializerCall(t aat.FieldType) string {
	return converterCall(t, "serialize", "v !== undefined")
}

func deserializerCall(t aat.FieldType) string {
	return converterCall(t, "deserialize", "v !== undefined && v !== null")
}

func converterCall(t aat.FieldType, prefix, presentExpr string) string {
	identity := "(v: any) => v"
	switch t.Kind {
	case aat.KindReference:
		return prefix + t.Ref
	case aat.KindList:
		if !needsSerialization(*t.Elem) {
			return identity
		}
		return "(v: any) => v.map((x: any) => " + applyConverter(converterCall(*t.Elem, prefix, presentExpr), "x") + ")"
	case aat.KindOptional:
		if !needsSerialization(*t.Elem) {
			return identity
		}
		inner := applyConverter(converterCall(*t.Elem, prefix, presentExpr), "v")
		return "(v: any) => " + presentExpr + " ? " + inner + " : undefined"
	case aat.KindMap:
		if !needsSerialization(*t.Elem) {
			return identity
		}
		inner := applyConverter(converterCall(*t.Elem, prefix, presentExpr), "val")
		return "(v: any) => Object.fromEntries(Object.entries(v).map(([k, val]) => [k, " + inner + "]))"
	case aat.KindStream:
		return converterCall(*t.Elem, prefix, presentExpr)
	case aat.KindTuple:
		if !needsSerialization(t) {
			return identity
		}
		parts := make([]string, 0, len(t.Members))
		for i, m := range t.Members {
			elem := "v[" + strconv.Itoa(i) + "]"
			if needsSerialization(m) {
				parts = append(parts, applyConverter(converterCall(m, prefix, presentExpr), elem))
			} else {
				parts = append(parts, elem)
			}
		}
		return "(v: any) => [" + strings.Join(parts, ", ") + "]"
	default:
		return identity
	}
}

// applyConverter calls a converter expression on arg, parenthesizing inline
// lambdas so the call parses.
func applyConverter(converter, arg string) string {
	if strings.HasPrefix(converter, "(") {
		return "(" + converter + ")(" + arg + ")"
	}
	return converter + "(" + arg + ")"
}
