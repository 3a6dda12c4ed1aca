package schema

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPIFile loads an OpenAPI v3 document and converts every entry of
// components.schemas into a raw schema Document keyed by component name. Each
// document carries its component name as the schema title so the registry can
// name it without a fallback.
func FromOpenAPIFile(path string) (map[string]Document, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi %s: %w", path, err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return map[string]Document{}, nil
	}
	out := make(map[string]Document, len(doc.Components.Schemas))
	for name, ref := range doc.Components.Schemas {
		d, err := FromOpenAPIRef(ref)
		if err != nil {
			return nil, fmt.Errorf("schema: component %q: %w", name, err)
		}
		if kw := d.Keywords(); kw != nil {
			if _, has := kw["title"]; !has {
				kw["title"] = name
			}
		}
		out[name] = d
	}
	return out, nil
}

// FromOpenAPIRef converts a kin-openapi schema reference into a raw Document.
// References into components become local "#/$defs/Name" references so that
// the normalizer's reference extraction applies unchanged.
func FromOpenAPIRef(ref *openapi3.SchemaRef) (Document, error) {
	if ref == nil {
		return True(), nil
	}
	if ref.Ref != "" {
		return FromMap(map[string]any{"$ref": localizeRef(ref.Ref)}), nil
	}
	if ref.Value == nil {
		return True(), nil
	}
	return fromOpenAPISchema(ref.Value)
}

func localizeRef(ref string) string {
	if name, ok := strings.CutPrefix(ref, "#/components/schemas/"); ok {
		return "#/$defs/" + name
	}
	if name, ok := strings.CutPrefix(ref, "#/definitions/"); ok {
		return "#/$defs/" + name
	}
	return ref
}

func fromOpenAPISchema(s *openapi3.Schema) (Document, error) {
	kw := map[string]any{}

	if s.Title != "" {
		kw["title"] = s.Title
	}
	if s.Type != "" {
		kw["type"] = s.Type
	}
	if s.Format != "" {
		kw["format"] = s.Format
	}
	if s.Nullable {
		kw["nullable"] = true
	}
	if len(s.Enum) > 0 {
		kw["enum"] = append([]any(nil), s.Enum...)
	}
	if len(s.Required) > 0 {
		req := make([]any, 0, len(s.Required))
		for _, r := range s.Required {
			req = append(req, r)
		}
		kw["required"] = req
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, pref := range s.Properties {
			pd, err := FromOpenAPIRef(pref)
			if err != nil {
				return Document{}, fmt.Errorf("property %q: %w", name, err)
			}
			props[name] = rawNode(pd)
		}
		kw["properties"] = props
	}
	if s.Items != nil {
		items, err := FromOpenAPIRef(s.Items)
		if err != nil {
			return Document{}, fmt.Errorf("items: %w", err)
		}
		kw["items"] = rawNode(items)
	}
	switch {
	case s.AdditionalProperties.Schema != nil:
		ap, err := FromOpenAPIRef(s.AdditionalProperties.Schema)
		if err != nil {
			return Document{}, fmt.Errorf("additionalProperties: %w", err)
		}
		kw["additionalProperties"] = rawNode(ap)
	case s.AdditionalProperties.Has != nil:
		kw["additionalProperties"] = *s.AdditionalProperties.Has
	}
	if err := appendComposition(kw, "allOf", s.AllOf); err != nil {
		return Document{}, err
	}
	if err := appendComposition(kw, "oneOf", s.OneOf); err != nil {
		return Document{}, err
	}
	if err := appendComposition(kw, "anyOf", s.AnyOf); err != nil {
		return Document{}, err
	}
	if s.Discriminator != nil && s.Discriminator.PropertyName != "" {
		disc := map[string]any{"propertyName": s.Discriminator.PropertyName}
		if len(s.Discriminator.Mapping) > 0 {
			mapping := make(map[string]any, len(s.Discriminator.Mapping))
			for k, v := range s.Discriminator.Mapping {
				mapping[k] = localizeMappingTarget(v)
			}
			disc["mapping"] = mapping
		}
		kw["discriminator"] = disc
	}

	// Constraints pass through with OpenAPI's draft-4 boolean exclusivity.
	if s.Min != nil {
		kw["minimum"] = *s.Min
		if s.ExclusiveMin {
			kw["exclusiveMinimum"] = true
		}
	}
	if s.Max != nil {
		kw["maximum"] = *s.Max
		if s.ExclusiveMax {
			kw["exclusiveMaximum"] = true
		}
	}
	if s.MultipleOf != nil {
		kw["multipleOf"] = *s.MultipleOf
	}
	if s.MinLength > 0 {
		kw["minLength"] = float64(s.MinLength)
	}
	if s.MaxLength != nil {
		kw["maxLength"] = float64(*s.MaxLength)
	}
	if s.Pattern != "" {
		kw["pattern"] = s.Pattern
	}
	if s.MinItems > 0 {
		kw["minItems"] = float64(s.MinItems)
	}
	if s.MaxItems != nil {
		kw["maxItems"] = float64(*s.MaxItems)
	}
	if s.UniqueItems {
		kw["uniqueItems"] = true
	}

	return FromMap(kw), nil
}

func appendComposition(kw map[string]any, key string, refs openapi3.SchemaRefs) error {
	if len(refs) == 0 {
		return nil
	}
	members := make([]any, 0, len(refs))
	for i, ref := range refs {
		d, err := FromOpenAPIRef(ref)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		members = append(members, rawNode(d))
	}
	kw[key] = members
	return nil
}

// localizeMappingTarget rewrites discriminator mapping values that point into
// components to the bare type name.
func localizeMappingTarget(v string) string {
	if name, ok := strings.CutPrefix(v, "#/components/schemas/"); ok {
		return name
	}
	return v
}

// rawNode unwraps a Document back into the plain value form used inside a
// parent keyword map.
func rawNode(d Document) any {
	if b, ok := d.IsBool(); ok {
		return b
	}
	return d.Keywords()
}
