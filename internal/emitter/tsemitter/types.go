package tsemitter

import (
	"fmt"
	"strings"

	"github.com/damascus-dev/damascus/internal/aat"
)

// writeNamedType renders one named type declaration.
func writeNamedType(w *codeWriter, t aat.NamedType) error {
	switch {
	case t.Object != nil:
		return writeObjectType(w, t.Object)
	case t.Union != nil:
		return writeUnionType(w, t.Union)
	case t.Enum != nil:
		return writeEnumType(w, t.Enum)
	default:
		return fmt.Errorf("tsemitter: empty named type")
	}
}

func writeObjectType(w *codeWriter, obj *aat.ObjectType) error {
	lines, err := objectFieldLines(obj.Fields, obj.Name)
	if err != nil {
		return err
	}
	w.BlockBlank("export interface "+obj.Name+" {", "}", func(w *codeWriter) {
		for _, line := range lines {
			w.Line(line + ";")
		}
	})
	return nil
}

// objectFieldLines renders "name: type" member declarations. Optional fields
// use the "?" form instead of "| undefined". Field names collapse to
// camelCase, which can collide; a collision is an emit error, not a silent
// overwrite.
func objectFieldLines(fields []aat.Field, owner string) ([]string, error) {
	seen := map[string]bool{}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		name := toCamelCase(f.Name)
		if seen[name] {
			return nil, fmt.Errorf("tsemitter: duplicate field name %q in type %q after camelCase conversion (original: %q)", name, owner, f.Name)
		}
		seen[name] = true

		if f.Type.Kind == aat.KindOptional {
			lines = append(lines, quoteIfNeeded(name)+"?: "+fieldTypeToTS(*f.Type.Elem))
		} else {
			lines = append(lines, quoteIfNeeded(name)+": "+fieldTypeToTS(f.Type))
		}
	}
	return lines, nil
}

func writeUnionType(w *codeWriter, union *aat.UnionType) error {
	w.Line("export type " + union.Name + " =")
	w.Indent()

	seenLiterals := map[string]bool{}
	for i, variant := range union.Variants {
		sep := " |"
		if i == len(union.Variants)-1 {
			sep = ";"
		}

		switch {
		case variant.Literal != nil:
			if variant.Literal.Kind == aat.LitString {
				if seenLiterals[variant.Literal.Str] {
					return fmt.Errorf("tsemitter: duplicate literal variant %q in union type %q", variant.Literal.Str, union.Name)
				}
				seenLiterals[variant.Literal.Str] = true
			}
			w.Line(literalToTS(*variant.Literal) + sep)
		case variant.Object != nil:
			rendered, err := unionObjectVariant(variant, union.Name)
			if err != nil {
				return err
			}
			w.Line(rendered + sep)
		default:
			return fmt.Errorf("tsemitter: empty variant in union type %q", union.Name)
		}
	}

	w.Dedent()
	w.Blank()
	return nil
}

// unionObjectVariant renders an object variant inline. Named variants wrap
// their fields under the variant name, except the tuple form (a single field
// named after the variant) which flattens, and the newtype form (a single
// reference field) which collapses to { Name: Ref }.
func unionObjectVariant(variant aat.UnionVariant, owner string) (string, error) {
	obj := variant.Object
	lines, err := objectFieldLines(obj.Fields, owner)
	if err != nil {
		return "", err
	}
	inner := "{ " + strings.Join(lines, ", ") + " }"
	if len(lines) == 0 {
		inner = "{}"
	}

	if variant.Name == "" {
		return inner, nil
	}
	if len(obj.Fields) == 1 {
		if obj.Fields[0].Name == variant.Name {
			return inner, nil
		}
		if isReferenceType(obj.Fields[0].Type) {
			return "{ " + quoteIfNeeded(variant.Name) + ": " + fieldTypeToTS(obj.Fields[0].Type) + " }", nil
		}
	}
	return "{ " + quoteIfNeeded(variant.Name) + ": " + inner + " }", nil
}

func isReferenceType(t aat.FieldType) bool {
	if t.Kind == aat.KindReference {
		return true
	}
	return t.Kind == aat.KindOptional && t.Elem.Kind == aat.KindReference
}

func writeEnumType(w *codeWriter, enum *aat.EnumType) error {
	w.Line("export type " + enum.Name + " =")
	w.Indent()

	seen := map[string]bool{}
	for i, variant := range enum.Variants {
		sep := " |"
		if i == len(enum.Variants)-1 {
			sep = ";"
		}
		if variant.Value.Kind == aat.LitString {
			if seen[variant.Value.Str] {
				return fmt.Errorf("tsemitter: duplicate enum variant %q in enum type %q", variant.Value.Str, enum.Name)
			}
			seen[variant.Value.Str] = true
		}
		w.Line(literalToTS(variant.Value) + sep)
	}

	w.Dedent()
	w.Blank()
	return nil
}
