package aat

import (
	"sort"
	"strconv"
	"strings"

	"github.com/damascus-dev/damascus/internal/schema"
)

// SchemaToFieldType classifies a raw schema node as an inline FieldType.
// Boolean true is Any; boolean false has no field-type rendering. Object
// nodes dispatch on keyword presence: $ref, then allOf, then nullability,
// then the primary type keyword.
func SchemaToFieldType(doc schema.Document) (FieldType, error) {
	if b, ok := doc.IsBool(); ok {
		if b {
			return Any(), nil
		}
		return FieldType{}, errf(SchemaError, "schema bool(false) cannot be converted to a field type")
	}

	if ref, ok := doc.GetString("$ref"); ok {
		name, err := extractRefName(ref)
		if err != nil {
			return FieldType{}, err
		}
		return Reference(name), nil
	}

	if allOf, ok := doc.GetArray("allOf"); ok {
		members := make([]FieldType, 0, len(allOf))
		for i, raw := range allOf {
			member, err := schema.FromValue(raw)
			if err != nil {
				return FieldType{}, errf(SchemaError, "invalid schema in allOf[%d]", i)
			}
			ft, err := SchemaToFieldType(member)
			if err != nil {
				return FieldType{}, err
			}
			members = append(members, ft)
		}
		return Intersection(members), nil
	}

	nullable := false
	if b, ok := doc.GetBool("nullable"); ok && b {
		nullable = true
	}

	// The type keyword may be a single string or an array of strings.
	var instanceTypes []string
	if s, ok := doc.GetString("type"); ok {
		instanceTypes = []string{s}
	} else if arr, ok := doc.GetArray("type"); ok {
		for _, v := range arr {
			if s, ok := v.(string); ok {
				instanceTypes = append(instanceTypes, s)
			}
		}
	}

	typeStr := ""
	containsNull := false
	for _, t := range instanceTypes {
		if t == "null" {
			containsNull = true
		} else if typeStr == "" {
			typeStr = t
		}
	}
	nullable = nullable || containsNull

	// A pure null type is the null literal itself, not Optional(Null).
	if containsNull && len(instanceTypes) == 1 {
		return LiteralOf(NullLit()), nil
	}

	var base FieldType
	switch typeStr {
	case "":
		base = Any()
	case "boolean":
		base = Bool()
	case "integer":
		base = Int()
	case "number":
		base = Float()
	case "string":
		format := FormatNone
		if f, ok := doc.GetString("format"); ok {
			format = stringFormatOf(f)
		}
		base = String(format)
	case "array":
		item := Any()
		if raw, ok := doc.Get("items"); ok {
			itemDoc, err := schema.FromValue(raw)
			if err != nil {
				return FieldType{}, errf(SchemaError, "invalid items schema")
			}
			item, err = SchemaToFieldType(itemDoc)
			if err != nil {
				return FieldType{}, err
			}
		}
		base = List(item)
	case "object":
		if raw, ok := doc.Get("additionalProperties"); ok {
			apDoc, err := schema.FromValue(raw)
			if err != nil {
				return FieldType{}, errf(SchemaError, "invalid additionalProperties schema")
			}
			if b, isBool := apDoc.IsBool(); isBool {
				if !b {
					return FieldType{}, errf(SchemaError, "map with no additional properties not supported")
				}
				return Map(Any()), nil
			}
			value, err := SchemaToFieldType(apDoc)
			if err != nil {
				return FieldType{}, err
			}
			return Map(value), nil
		}
		// A plain object without explicit properties is untyped.
		base = Any()
	default:
		return FieldType{}, errf(SchemaError, "unsupported type: %s", typeStr)
	}

	if nullable {
		return Optional(base), nil
	}
	return base, nil
}

// SchemaToType classifies a raw schema node as a NamedType under the given
// name. Boolean nodes are never nameable. Presence of enum wins over oneOf,
// which wins over the default object classification.
func SchemaToType(doc schema.Document, name string) (NamedType, error) {
	if b, ok := doc.IsBool(); ok {
		if b {
			return NamedType{}, errf(SchemaError, "schema bool(true) (any type) cannot be converted to a named type")
		}
		return NamedType{}, errf(SchemaError, "schema bool(false) (no type) cannot be converted to a named type")
	}

	if enumValues, ok := doc.GetArray("enum"); ok {
		return schemaToEnumType(name, enumValues)
	}
	if oneOf, ok := doc.GetArray("oneOf"); ok {
		return schemaToUnionType(name, oneOf, doc)
	}
	return schemaToObjectType(name, doc)
}

func schemaToEnumType(name string, enumValues []any) (NamedType, error) {
	variants := make([]EnumVariant, 0, len(enumValues))
	for _, v := range enumValues {
		lit, err := valueToLiteral(v)
		if err != nil {
			return NamedType{}, err
		}
		variants = append(variants, EnumVariant{Value: lit})
	}
	return NamedType{Enum: &EnumType{Name: name, Variants: variants}}, nil
}

func schemaToUnionType(name string, oneOf []any, doc schema.Document) (NamedType, error) {
	var discriminator *Discriminator
	if disc, ok := doc.GetMap("discriminator"); ok {
		if prop, ok := disc["propertyName"].(string); ok {
			discriminator = &Discriminator{PropertyName: prop}
			if rawMapping, ok := disc["mapping"].(map[string]any); ok {
				mapping := make(map[string]string, len(rawMapping))
				for k, v := range rawMapping {
					// Non-string mapping values are dropped.
					if s, ok := v.(string); ok {
						mapping[k] = s
					}
				}
				discriminator.Mapping = mapping
			}
		}
	}

	variants := make([]UnionVariant, 0, len(oneOf))
	for idx, raw := range oneOf {
		variantDoc, err := schema.FromValue(raw)
		if err != nil {
			return NamedType{}, errf(SchemaError, "invalid schema in oneOf")
		}
		if _, isBool := variantDoc.IsBool(); isBool {
			return NamedType{}, errf(SchemaError, "boolean schemas not supported in unions")
		}

		variantName := unionVariantName(variantDoc, idx)

		// A single-valued enum member is a literal variant.
		if enumVals, ok := variantDoc.GetArray("enum"); ok && len(enumVals) == 1 {
			lit, err := valueToLiteral(enumVals[0])
			if err != nil {
				return NamedType{}, err
			}
			variants = append(variants, UnionVariant{Name: variantName, Literal: &lit})
			continue
		}

		objType, err := schemaToObjectType(variantName, variantDoc)
		if err != nil {
			return NamedType{}, err
		}
		variants = append(variants, UnionVariant{Name: variantName, Object: objType.Object})
	}

	return NamedType{Union: &UnionType{Name: name, Discriminator: discriminator, Variants: variants}}, nil
}

// unionVariantName derives a variant's name from its title, or for object
// members with exactly one required property from that property's name, else
// a positional fallback.
func unionVariantName(doc schema.Document, idx int) string {
	if title, ok := doc.GetString("title"); ok {
		return title
	}
	if typ, ok := doc.GetString("type"); ok && typ == "object" {
		if required, ok := doc.GetArray("required"); ok && len(required) == 1 {
			if prop, ok := required[0].(string); ok {
				return prop
			}
		}
	}
	return "Variant" + strconv.Itoa(idx)
}

func schemaToObjectType(name string, doc schema.Document) (NamedType, error) {
	var fields []Field

	if properties, ok := doc.GetMap("properties"); ok {
		requiredSet := map[string]bool{}
		if required, ok := doc.GetArray("required"); ok {
			for _, v := range required {
				if s, ok := v.(string); ok {
					requiredSet[s] = true
				}
			}
		}

		// Canonical field order: sorted by name, so structurally identical
		// schemas compare equal regardless of document layout.
		fieldNames := make([]string, 0, len(properties))
		for fieldName := range properties {
			fieldNames = append(fieldNames, fieldName)
		}
		sort.Strings(fieldNames)

		for _, fieldName := range fieldNames {
			fieldDoc, err := schema.FromValue(properties[fieldName])
			if err != nil {
				return NamedType{}, errf(SchemaError, "invalid schema for field %q", fieldName)
			}
			fieldType, err := SchemaToFieldType(fieldDoc)
			if err != nil {
				return NamedType{}, err
			}
			if !requiredSet[fieldName] {
				fieldType = Optional(fieldType)
			}
			constraints, err := extractConstraints(fieldDoc)
			if err != nil {
				return NamedType{}, err
			}
			fields = append(fields, Field{Name: fieldName, Type: fieldType, Constraints: constraints})
		}
	}

	return NamedType{Object: &ObjectType{Name: name, Fields: fields}}, nil
}

// extractRefName resolves "#/definitions/Name" and "#/$defs/Name" references
// to the bare type name.
func extractRefName(ref string) (string, error) {
	if name, ok := strings.CutPrefix(ref, "#/definitions/"); ok {
		return name, nil
	}
	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return name, nil
	}
	return "", errf(SchemaError, "unsupported reference format: %s", ref)
}

func stringFormatOf(format string) StringFormat {
	switch StringFormat(format) {
	case FormatDateTime, FormatDate, FormatTime, FormatUUID, FormatEmail, FormatURI, FormatHostname, FormatIPv4, FormatIPv6:
		return StringFormat(format)
	default:
		return FormatNone
	}
}

// valueToLiteral converts a decoded JSON value into a Literal. Whole numbers
// become Int literals; arrays and objects are not literal values.
func valueToLiteral(v any) (Literal, error) {
	switch t := v.(type) {
	case string:
		return StringLit(t), nil
	case bool:
		return BoolLit(t), nil
	case nil:
		return NullLit(), nil
	case int:
		return IntLit(int64(t)), nil
	case int64:
		return IntLit(t), nil
	case float64:
		if t == float64(int64(t)) {
			return IntLit(int64(t)), nil
		}
		return FloatLit(t), nil
	default:
		return Literal{}, errf(SchemaError, "unsupported JSON value type in enum: %T", v)
	}
}

func extractConstraints(doc schema.Document) (*Constraints, error) {
	if doc.Keywords() == nil {
		return nil, nil
	}

	c := &Constraints{}
	hasAny := false

	// Numeric bounds: draft-6+ numeric exclusiveMinimum/Maximum wins over the
	// draft-4 boolean-flag style when both could apply.
	if exclusiveMin, ok := doc.GetFloat("exclusiveMinimum"); ok {
		c.ExclusiveMinimum = &exclusiveMin
		hasAny = true
	} else if min, ok := doc.GetFloat("minimum"); ok {
		if b, ok := doc.GetBool("exclusiveMinimum"); ok && b {
			c.ExclusiveMinimum = &min
		} else {
			c.Minimum = &min
		}
		hasAny = true
	}
	if exclusiveMax, ok := doc.GetFloat("exclusiveMaximum"); ok {
		c.ExclusiveMaximum = &exclusiveMax
		hasAny = true
	} else if max, ok := doc.GetFloat("maximum"); ok {
		if b, ok := doc.GetBool("exclusiveMaximum"); ok && b {
			c.ExclusiveMaximum = &max
		} else {
			c.Maximum = &max
		}
		hasAny = true
	}
	if multiple, ok := doc.GetFloat("multipleOf"); ok {
		c.MultipleOf = &multiple
		hasAny = true
	}

	if minLen, ok := doc.GetInt("minLength"); ok {
		c.MinLength = &minLen
		hasAny = true
	}
	if maxLen, ok := doc.GetInt("maxLength"); ok {
		c.MaxLength = &maxLen
		hasAny = true
	}
	if pattern, ok := doc.GetString("pattern"); ok {
		c.Pattern = &pattern
		hasAny = true
	}

	if minItems, ok := doc.GetInt("minItems"); ok {
		c.MinItems = &minItems
		hasAny = true
	}
	if maxItems, ok := doc.GetInt("maxItems"); ok {
		c.MaxItems = &maxItems
		hasAny = true
	}
	if unique, ok := doc.GetBool("uniqueItems"); ok {
		c.UniqueItems = &unique
		hasAny = true
	}

	if !hasAny {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
