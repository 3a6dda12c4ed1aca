package aat

import "math"

// StructurallyEqual reports whether two NamedTypes have the same shape,
// ignoring their declared names. The registry uses it to tell "the same type
// reached through two references" apart from a genuine name collision. It is
// an equivalence relation: reflexive, symmetric, and transitive.
func StructurallyEqual(a, b NamedType) bool {
	switch {
	case a.Object != nil && b.Object != nil:
		return objectsEqual(a.Object, b.Object)
	case a.Union != nil && b.Union != nil:
		return unionsEqual(a.Union, b.Union)
	case a.Enum != nil && b.Enum != nil:
		return enumsEqual(a.Enum, b.Enum)
	default:
		return false
	}
}

func objectsEqual(a, b *ObjectType) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	// Fields must match pairwise in order.
	for i := range a.Fields {
		af, bf := &a.Fields[i], &b.Fields[i]
		if af.Name != bf.Name {
			return false
		}
		if !FieldTypesEqual(af.Type, bf.Type) {
			return false
		}
		if !constraintsEqual(af.Constraints, bf.Constraints) {
			return false
		}
	}
	return true
}

func unionsEqual(a, b *UnionType) bool {
	if len(a.Variants) != len(b.Variants) {
		return false
	}
	if !discriminatorsEqual(a.Discriminator, b.Discriminator) {
		return false
	}
	for i := range a.Variants {
		av, bv := &a.Variants[i], &b.Variants[i]
		if av.Name != bv.Name {
			return false
		}
		switch {
		case av.Object != nil && bv.Object != nil:
			if !objectsEqual(av.Object, bv.Object) {
				return false
			}
		case av.Literal != nil && bv.Literal != nil:
			if !literalsEqual(*av.Literal, *bv.Literal) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func discriminatorsEqual(a, b *Discriminator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.PropertyName != b.PropertyName {
		return false
	}
	if a.Mapping == nil || b.Mapping == nil {
		return a.Mapping == nil && b.Mapping == nil
	}
	if len(a.Mapping) != len(b.Mapping) {
		return false
	}
	for k, v := range a.Mapping {
		if bv, ok := b.Mapping[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func enumsEqual(a, b *EnumType) bool {
	if len(a.Variants) != len(b.Variants) {
		return false
	}
	for i := range a.Variants {
		av, bv := &a.Variants[i], &b.Variants[i]
		if !literalsEqual(av.Value, bv.Value) || av.Description != bv.Description {
			return false
		}
	}
	return true
}

// FieldTypesEqual is structural equality over the FieldType algebra.
func FieldTypesEqual(a, b FieldType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive:
		return a.Prim == b.Prim
	case KindLiteral:
		return literalsEqual(*a.Lit, *b.Lit)
	case KindOptional, KindList, KindMap, KindStream:
		return FieldTypesEqual(*a.Elem, *b.Elem)
	case KindReference:
		return a.Ref == b.Ref
	case KindIntersection, KindTuple:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if !FieldTypesEqual(a.Members[i], b.Members[i]) {
				return false
			}
		}
		return true
	case KindAny:
		return true
	default:
		return false
	}
}

// literalsEqual compares literal values. Float NaN compares equal to NaN so
// the relation stays reflexive; Go's == on float64 would break that.
func literalsEqual(a, b Literal) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case LitString:
		return a.Str == b.Str
	case LitInt:
		return a.Int == b.Int
	case LitFloat:
		if math.IsNaN(a.Float) && math.IsNaN(b.Float) {
			return true
		}
		return a.Float == b.Float
	case LitBool:
		return a.Bool == b.Bool
	case LitNull:
		return true
	default:
		return false
	}
}

// constraintsEqual requires every sub-field to match exactly, including
// absent-vs-absent.
func constraintsEqual(a, b *Constraints) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return floatPtrEqual(a.Minimum, b.Minimum) &&
		floatPtrEqual(a.Maximum, b.Maximum) &&
		floatPtrEqual(a.ExclusiveMinimum, b.ExclusiveMinimum) &&
		floatPtrEqual(a.ExclusiveMaximum, b.ExclusiveMaximum) &&
		floatPtrEqual(a.MultipleOf, b.MultipleOf) &&
		intPtrEqual(a.MinLength, b.MinLength) &&
		intPtrEqual(a.MaxLength, b.MaxLength) &&
		stringPtrEqual(a.Pattern, b.Pattern) &&
		intPtrEqual(a.MinItems, b.MinItems) &&
		intPtrEqual(a.MaxItems, b.MaxItems) &&
		boolPtrEqual(a.UniqueItems, b.UniqueItems)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
