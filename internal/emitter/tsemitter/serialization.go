package tsemitter

import (
	"github.com/damascus-dev/damascus/internal/aat"
)

// Serializers bridge the camelCase client surface and the wire field names.
// Every named type gets a serialize/deserialize pair so references compose;
// enums are pass-through.

func writeSerializers(w *codeWriter, t aat.NamedType) error {
	switch {
	case t.Object != nil:
		writeObjectSerializer(w, t.Object)
		writeObjectDeserializer(w, t.Object)
	case t.Union != nil:
		writeUnionSerializer(w, t.Union)
		writeUnionDeserializer(w, t.Union)
	case t.Enum != nil:
		writePassthrough(w, "serialize"+t.Enum.Name, t.Enum.Name, "any")
		writePassthrough(w, "deserialize"+t.Enum.Name, "any", t.Enum.Name)
	}
	return nil
}

func writePassthrough(w *codeWriter, name, in, out string) {
	w.BlockBlank("export function "+name+"(value: "+in+"): "+out+" {", "}", func(w *codeWriter) {
		w.Line("return value;")
	})
}

func writeObjectSerializer(w *codeWriter, obj *aat.ObjectType) {
	w.BlockBlank("export function serialize"+obj.Name+"(value: "+obj.Name+"): any {", "}", func(w *codeWriter) {
		w.Line("return {")
		w.Indent()
		for _, f := range obj.Fields {
			src := "value." + toCamelCase(f.Name)
			expr := src
			if needsSerialization(f.Type) {
				expr = serializerExpr(f.Type, src)
			}
			w.Line(`"` + f.Name + `": ` + expr + ",")
		}
		w.Dedent()
		w.Line("};")
	})
}

func writeObjectDeserializer(w *codeWriter, obj *aat.ObjectType) {
	w.BlockBlank("export function deserialize"+obj.Name+"(value: any): "+obj.Name+" {", "}", func(w *codeWriter) {
		w.Line("return {")
		w.Indent()
		for _, f := range obj.Fields {
			src := `value["` + f.Name + `"]`
			expr := src
			if needsSerialization(f.Type) {
				expr = deserializerExpr(f.Type, src)
			}
			w.Line(toCamelCase(f.Name) + ": " + expr + ",")
		}
		w.Dedent()
		w.Line("};")
	})
}

func unionHasObjectVariants(union *aat.UnionType) bool {
	for _, v := range union.Variants {
		if v.Object != nil && len(v.Object.Fields) > 0 {
			return true
		}
	}
	return false
}

func unionHasLiteralVariants(union *aat.UnionType) bool {
	for _, v := range union.Variants {
		if v.Literal != nil {
			return true
		}
	}
	return false
}

// writeUnionSerializer renames variant object fields back to their wire form.
// Unions without object payloads carry only literals and need no serializer.
func writeUnionSerializer(w *codeWriter, union *aat.UnionType) {
	if !unionHasObjectVariants(union) {
		writePassthrough(w, "serialize"+union.Name, union.Name, "any")
		writePassthrough(w, "deserialize"+union.Name, "any", union.Name)
		return
	}
	w.BlockBlank("export function serialize"+union.Name+"(value: "+union.Name+"): any {", "}", func(w *codeWriter) {
		if unionHasLiteralVariants(union) {
			w.Block("if (typeof value === 'string' || typeof value === 'number' || typeof value === 'boolean') {", "}", func(w *codeWriter) {
				w.Line("return value;")
			})
		}
		w.Line("const result: any = {};")
		w.Block("for (const [key, val] of Object.entries(value as any)) {", "}", func(w *codeWriter) {
			for _, variant := range union.Variants {
				if variant.Object == nil || variant.Name == "" {
					continue
				}
				writeVariantKeyCase(w, variant, true)
			}
			w.Line("const wireKey = key.replace(/[A-Z]/g, (m: string) => '_' + m.toLowerCase());")
			w.Line("result[wireKey] = val;")
		})
		w.Line("return result;")
	})
}

func writeUnionDeserializer(w *codeWriter, union *aat.UnionType) {
	if !unionHasObjectVariants(union) {
		return
	}
	w.BlockBlank("export function deserialize"+union.Name+"(value: any): "+union.Name+" {", "}", func(w *codeWriter) {
		if unionHasLiteralVariants(union) {
			w.Block("if (typeof value === 'string' || typeof value === 'number' || typeof value === 'boolean') {", "}", func(w *codeWriter) {
				w.Line("return value as " + union.Name + ";")
			})
		}
		w.Line("const result: any = {};")
		w.Block("for (const [key, val] of Object.entries(value)) {", "}", func(w *codeWriter) {
			for _, variant := range union.Variants {
				if variant.Object == nil || variant.Name == "" {
					continue
				}
				writeVariantKeyCase(w, variant, false)
			}
			w.Line("const camelKey = key.replace(/_([a-z])/g, (_, m: string) => m.toUpperCase());")
			w.Line("result[camelKey] = val;")
		})
		w.Line("return result as " + union.Name + ";")
	})
}

// writeVariantKeyCase emits the per-variant key handler inside the union
// conversion loop. The tuple form (single field named after the variant) and
// the newtype form (single reference field) collapse; struct variants convert
// their inner fields one by one.
func writeVariantKeyCase(w *codeWriter, variant aat.UnionVariant, serialize bool) {
	obj := variant.Object
	convert := deserializerExpr
	matchKey := func(f string) (in, out string) { return f, toCamelCase(f) }
	if serialize {
		convert = serializerExpr
		matchKey = func(f string) (in, out string) { return toCamelCase(f), f }
	}

	if len(obj.Fields) == 1 && obj.Fields[0].Name == variant.Name {
		f := obj.Fields[0]
		in, out := matchKey(f.Name)
		w.Block(`if (key === "`+in+`") {`, "}", func(w *codeWriter) {
			expr := "val"
			if needsSerialization(f.Type) {
				expr = convert(f.Type, "val as any")
			}
			w.Line(`result["` + out + `"] = ` + expr + ";")
			w.Line("continue;")
		})
		return
	}

	if len(obj.Fields) == 1 && isReferenceType(obj.Fields[0].Type) {
		f := obj.Fields[0]
		w.Block(`if (key === "`+variant.Name+`") {`, "}", func(w *codeWriter) {
			expr := "val"
			if needsSerialization(f.Type) {
				expr = convert(f.Type, "val as any")
			}
			w.Line(`result["` + variant.Name + `"] = ` + expr + ";")
			w.Line("continue;")
		})
		return
	}

	w.Block(`if (key === "`+variant.Name+`") {`, "}", func(w *codeWriter) {
		w.Line("const inner: any = {};")
		w.Block("for (const [innerKey, innerVal] of Object.entries(val as any)) {", "}", func(w *codeWriter) {
			for _, f := range obj.Fields {
				if !needsSerialization(f.Type) {
					continue
				}
				in, out := matchKey(f.Name)
				w.Block(`if (innerKey === "`+in+`") {`, "}", func(w *codeWriter) {
					w.Line(`inner["` + out + `"] = ` + convert(f.Type, "innerVal as any") + ";")
					w.Line("continue;")
				})
			}
			if serialize {
				w.Line("const wireKey = innerKey.replace(/[A-Z]/g, (m: string) => '_' + m.toLowerCase());")
				w.Line("inner[wireKey] = innerVal;")
			} else {
				w.Line("const camelKey = innerKey.replace(/_([a-z])/g, (_, m: string) => m.toUpperCase());")
				w.Line("inner[camelKey] = innerVal;")
			}
		})
		w.Line(`result["` + variant.Name + `"] = inner;`)
		w.Line("continue;")
	})
}

// serializerExpr renders an inline conversion of valueExpr for field bodies;
// deserializerExpr is its inverse.
func serializerExpr(t aat.FieldType, valueExpr string) string {
	switch t.Kind {
	case aat.KindReference:
		return "serialize" + t.Ref + "(" + valueExpr + ")"
	case aat.KindList:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return valueExpr + ".map((x: any) => " + serializerExpr(*t.Elem, "x") + ")"
	case aat.KindOptional:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return valueExpr + " !== undefined ? " + serializerExpr(*t.Elem, valueExpr) + " : undefined"
	case aat.KindMap:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return "Object.fromEntries(Object.entries(" + valueExpr + ").map(([k, v]) => [k, " + serializerExpr(*t.Elem, "v") + "]))"
	default:
		return valueExpr
	}
}

func deserializerExpr(t aat.FieldType, valueExpr string) string {
	switch t.Kind {
	case aat.KindReference:
		return "deserialize" + t.Ref + "(" + valueExpr + ")"
	case aat.KindList:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return valueExpr + ".map((x: any) => " + deserializerExpr(*t.Elem, "x") + ")"
	case aat.KindOptional:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return valueExpr + " !== undefined && " + valueExpr + " !== null ? " + deserializerExpr(*t.Elem, valueExpr) + " : undefined"
	case aat.KindMap:
		if !needsSerialization(*t.Elem) {
			return valueExpr
		}
		return "Object.fromEntries(Object.entries(" + valueExpr + ").map(([k, v]) => [k, " + deserializerExpr(*t.Elem, "v") + "]))"
	default:
		return valueExpr
	}
}
