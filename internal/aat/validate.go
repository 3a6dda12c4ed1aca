package aat

// Validate checks a fully built AAT for closure: every type reference must
// resolve to a named type in this tree, and every path parameter must be
// representable as a single URL string. It is read-only and idempotent.
func (a *AAT) Validate() error {
	valid := map[string]bool{}
	for i := range a.Types {
		valid[a.Types[i].Name()] = true
	}

	for si := range a.Services {
		service := &a.Services[si]
		for ei := range service.Endpoints {
			endpoint := &service.Endpoints[ei]

			for _, segment := range endpoint.Path {
				if segment.Param == nil {
					continue
				}
				if err := checkReferences(segment.Param.Type, valid); err != nil {
					return wrapf(ReferenceError, err,
						"invalid reference in path parameter %q of endpoint %q", segment.Param.Name, endpoint.Name)
				}
				if err := a.checkPathParameterStringifiable(segment.Param.Type); err != nil {
					return wrapf(PathParamError, err,
						"path parameter %q of endpoint %q is not representable as a string", segment.Param.Name, endpoint.Name)
				}
			}

			if endpoint.Query != nil {
				if err := checkReferences(*endpoint.Query, valid); err != nil {
					return wrapf(ReferenceError, err, "invalid reference in query of endpoint %q", endpoint.Name)
				}
			}
			if endpoint.Body != nil {
				if err := checkReferences(*endpoint.Body, valid); err != nil {
					return wrapf(ReferenceError, err, "invalid reference in body of endpoint %q", endpoint.Name)
				}
			}
			if err := checkReferences(endpoint.Response, valid); err != nil {
				return wrapf(ReferenceError, err, "invalid reference in response of endpoint %q", endpoint.Name)
			}

			for _, header := range endpoint.Headers {
				if err := checkHeaderReferences(header, valid); err != nil {
					return wrapf(ReferenceError, err, "invalid reference in header %q of endpoint %q", header.Name, endpoint.Name)
				}
			}
		}

		for _, header := range service.Headers {
			if err := checkHeaderReferences(header, valid); err != nil {
				return wrapf(ReferenceError, err, "invalid reference in header %q of service %q", header.Name, service.Name)
			}
		}
	}

	for _, header := range a.Headers {
		if err := checkHeaderReferences(header, valid); err != nil {
			return wrapf(ReferenceError, err, "invalid reference in root header %q", header.Name)
		}
	}

	for i := range a.Types {
		t := &a.Types[i]
		switch {
		case t.Object != nil:
			for _, field := range t.Object.Fields {
				if err := checkReferences(field.Type, valid); err != nil {
					return wrapf(ReferenceError, err, "invalid reference in field %q of type %q", field.Name, t.Object.Name)
				}
			}
		case t.Union != nil:
			for _, variant := range t.Union.Variants {
				if variant.Object == nil {
					continue
				}
				for _, field := range variant.Object.Fields {
					if err := checkReferences(field.Type, valid); err != nil {
						variantName := variant.Name
						if variantName == "" {
							variantName = "unnamed"
						}
						return wrapf(ReferenceError, err,
							"invalid reference in field %q of union variant %q in type %q", field.Name, variantName, t.Union.Name)
					}
				}
			}
		case t.Enum != nil:
			// Enums hold only literals.
		}
	}

	return nil
}

// checkReferences walks a FieldType and confirms every Reference resolves.
func checkReferences(t FieldType, valid map[string]bool) error {
	switch t.Kind {
	case KindReference:
		if !valid[t.Ref] {
			return errf(ReferenceError, "reference to undefined type %q", t.Ref)
		}
		return nil
	case KindOptional, KindList, KindMap, KindStream:
		return checkReferences(*t.Elem, valid)
	case KindIntersection, KindTuple:
		for _, member := range t.Members {
			if err := checkReferences(member, valid); err != nil {
				return err
			}
		}
		return nil
	default:
		// Primitives, literals, and Any carry no references.
		return nil
	}
}

func checkHeaderReferences(h Header, valid map[string]bool) error {
	if h.Value.Kind == HeaderLiteral {
		return nil
	}
	return checkReferences(h.Value.Type, valid)
}

// checkPathParameterStringifiable enforces the URL-segment rule: a path
// parameter must be a primitive, a literal, or a reference to an enum whose
// every variant is a string literal.
func (a *AAT) checkPathParameterStringifiable(t FieldType) error {
	switch t.Kind {
	case KindPrimitive, KindLiteral:
		return nil
	case KindReference:
		target, ok := a.lookupType(t.Ref)
		if !ok {
			return errf(ReferenceError, "reference to undefined type %q", t.Ref)
		}
		if target.Enum == nil {
			return errf(PathParamError, "referenced type %q is not an enum", t.Ref)
		}
		for _, variant := range target.Enum.Variants {
			if variant.Value.Kind != LitString {
				return errf(PathParamError, "enum %q has a non-string variant", t.Ref)
			}
		}
		return nil
	default:
		return errf(PathParamError, "type kind %s cannot occupy a URL path segment", t.Kind)
	}
}

func (a *AAT) lookupType(name string) (NamedType, bool) {
	for i := range a.Types {
		if a.Types[i].Name() == name {
			return a.Types[i], true
		}
	}
	return NamedType{}, false
}
