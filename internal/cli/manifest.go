package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/damascus-dev/damascus/internal/schema"
	"github.com/damascus-dev/damascus/internal/spec"
)

// Manifest is the YAML authoring surface for an API description. It maps
// one-to-one onto the spec builder: metadata, root headers, and services with
// typed endpoints. Schemas are written inline or pulled from the components of
// an OpenAPI document referenced by the openapi field.
type Manifest struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Organization string `yaml:"organization"`
	Repository   string `yaml:"repository"`
	Website      string `yaml:"website"`
	Docs         string `yaml:"docs"`

	OpenAPI  string                 `yaml:"openapi"`
	Headers  map[string]headerNode  `yaml:"headers"`
	Services map[string]serviceNode `yaml:"services"`

	// components holds the schemas loaded from the OpenAPI document, keyed by
	// component name.
	components map[string]schema.Document
}

type serviceNode struct {
	Headers   map[string]headerNode   `yaml:"headers"`
	Endpoints map[string]endpointNode `yaml:"endpoints"`
}

type endpointNode struct {
	Method   string                `yaml:"method"`
	Path     string                `yaml:"path"`
	Params   map[string]typeNode   `yaml:"params"`
	Query    *typeNode             `yaml:"query"`
	Body     *typeNode             `yaml:"body"`
	Response *typeNode             `yaml:"response"`
	Upgrade  string                `yaml:"upgrade"`
	Headers  map[string]headerNode `yaml:"headers"`
}

// typeNode declares a type: an inline schema, an OpenAPI component by name,
// or a wrapper around further type nodes. Exactly one field may be set.
type typeNode struct {
	Schema    any        `yaml:"schema"`
	Component string     `yaml:"component"`
	List      *typeNode  `yaml:"list"`
	Optional  *typeNode  `yaml:"optional"`
	Stream    *typeNode  `yaml:"stream"`
	Tuple     []typeNode `yaml:"tuple"`
}

// headerNode declares a header value: a constant, a named parameter, or a
// pattern with one {param} placeholder.
type headerNode struct {
	Literal string    `yaml:"literal"`
	Pattern string    `yaml:"pattern"`
	Param   string    `yaml:"param"`
	Type    *typeNode `yaml:"type"`
}

// LoadManifest reads and parses a manifest file. Relative openapi paths
// resolve against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("manifest %q: name is required", path)
	}
	if len(m.Services) == 0 {
		return nil, fmt.Errorf("manifest %q: at least one service is required", path)
	}

	if m.OpenAPI != "" {
		openapiPath := m.OpenAPI
		if !filepath.IsAbs(openapiPath) {
			openapiPath = filepath.Join(filepath.Dir(path), openapiPath)
		}
		components, err := schema.FromOpenAPIFile(openapiPath)
		if err != nil {
			return nil, err
		}
		m.components = components
	}
	return &m, nil
}

// ToSpec converts the manifest into an authored Spec ready for the AAT build.
func (m *Manifest) ToSpec() (*spec.Spec, error) {
	s := spec.New(m.Name).
		WithDescription(m.Description).
		WithOrganization(m.Organization).
		WithRepository(m.Repository).
		WithWebsite(m.Website).
		WithDocs(m.Docs)

	for _, name := range sortedKeys(m.Headers) {
		value, err := m.headerValue(m.Headers[name])
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", name, err)
		}
		s.WithHeader(name, value)
	}

	for _, svcName := range sortedKeys(m.Services) {
		node := m.Services[svcName]
		var convErr error
		s.Service(svcName, func(svc *spec.Service) *spec.Service {
			for _, name := range sortedKeys(node.Headers) {
				value, err := m.headerValue(node.Headers[name])
				if err != nil {
					convErr = fmt.Errorf("service %q header %q: %w", svcName, name, err)
					return svc
				}
				svc.WithHeader(name, value)
			}
			for _, epName := range sortedKeys(node.Endpoints) {
				if convErr != nil {
					return svc
				}
				if err := m.addEndpoint(svc, epName, node.Endpoints[epName]); err != nil {
					convErr = fmt.Errorf("service %q endpoint %q: %w", svcName, epName, err)
				}
			}
			return svc
		})
		if convErr != nil {
			return nil, convErr
		}
	}
	return s, nil
}

func (m *Manifest) addEndpoint(svc *spec.Service, name string, node endpointNode) error {
	method, err := parseMethod(node.Method)
	if err != nil {
		return err
	}

	params := map[string]spec.Type{}
	for pname, tn := range node.Params {
		t, err := m.resolveType(tn)
		if err != nil {
			return fmt.Errorf("param %q: %w", pname, err)
		}
		params[pname] = t
	}
	path, err := spec.ParsePath(node.Path, params)
	if err != nil {
		return err
	}

	svc.Endpoint(name, method, path, func(e *spec.Endpoint) *spec.Endpoint {
		if node.Query != nil {
			t, terr := m.resolveType(*node.Query)
			if terr != nil {
				err = fmt.Errorf("query: %w", terr)
				return e
			}
			e.Query(t)
		}
		if node.Body != nil {
			t, terr := m.resolveType(*node.Body)
			if terr != nil {
				err = fmt.Errorf("body: %w", terr)
				return e
			}
			e.Body(t)
		}
		if node.Response != nil {
			t, terr := m.resolveType(*node.Response)
			if terr != nil {
				err = fmt.Errorf("response: %w", terr)
				return e
			}
			e.Response(t)
		}
		switch node.Upgrade {
		case "":
		case "ws":
			e.WithUpgrade(spec.UpgradeWs)
		default:
			err = fmt.Errorf("unknown upgrade %q (allowed: ws)", node.Upgrade)
			return e
		}
		for _, hname := range sortedKeys(node.Headers) {
			value, herr := m.headerValue(node.Headers[hname])
			if herr != nil {
				err = fmt.Errorf("header %q: %w", hname, herr)
				return e
			}
			e.WithHeader(hname, value)
		}
		return e
	})
	return err
}

func parseMethod(raw string) (spec.Method, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "GET":
		return spec.GET, nil
	case "POST":
		return spec.POST, nil
	case "PUT":
		return spec.PUT, nil
	case "DELETE":
		return spec.DELETE, nil
	case "PATCH":
		return spec.PATCH, nil
	default:
		return "", fmt.Errorf("unknown method %q", raw)
	}
}

func (m *Manifest) resolveType(node typeNode) (spec.Type, error) {
	set := 0
	if node.Schema != nil {
		set++
	}
	if node.Component != "" {
		set++
	}
	if node.List != nil {
		set++
	}
	if node.Optional != nil {
		set++
	}
	if node.Stream != nil {
		set++
	}
	if node.Tuple != nil {
		set++
	}
	if set != 1 {
		return spec.Type{}, fmt.Errorf("a type declares exactly one of schema, component, list, optional, stream, tuple")
	}

	switch {
	case node.Schema != nil:
		doc, err := schema.FromValue(node.Schema)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.SchemaOf(doc), nil
	case node.Component != "":
		doc, err := m.componentSchema(node.Component)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.SchemaOf(doc), nil
	case node.List != nil:
		inner, err := m.resolveType(*node.List)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.ListOf(inner), nil
	case node.Optional != nil:
		inner, err := m.resolveType(*node.Optional)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.OptionalOf(inner), nil
	case node.Stream != nil:
		inner, err := m.resolveType(*node.Stream)
		if err != nil {
			return spec.Type{}, err
		}
		return spec.StreamOf(inner), nil
	default:
		members := make([]spec.Type, 0, len(node.Tuple))
		for i, tn := range node.Tuple {
			inner, err := m.resolveType(tn)
			if err != nil {
				return spec.Type{}, fmt.Errorf("tuple member %d: %w", i, err)
			}
			members = append(members, inner)
		}
		return spec.TupleOf(members...), nil
	}
}

// componentSchema returns a named component with every component attached as
// $defs, so references between components resolve when the type registry
// imports them. The registry deduplicates repeats.
func (m *Manifest) componentSchema(name string) (schema.Document, error) {
	if m.components == nil {
		return schema.Document{}, fmt.Errorf("component %q referenced but no openapi document is configured", name)
	}
	doc, ok := m.components[name]
	if !ok {
		return schema.Document{}, fmt.Errorf("component %q not found in openapi document", name)
	}

	defs := make(map[string]any, len(m.components))
	for defName, defDoc := range m.components {
		if b, isBool := defDoc.IsBool(); isBool {
			defs[defName] = b
			continue
		}
		defs[defName] = defDoc.Keywords()
	}

	merged := make(map[string]any, len(doc.Keywords())+1)
	for k, v := range doc.Keywords() {
		merged[k] = v
	}
	merged["$defs"] = defs
	return schema.FromMap(merged), nil
}

func (m *Manifest) headerValue(node headerNode) (spec.HeaderValue, error) {
	switch {
	case node.Pattern != "":
		if node.Param == "" || node.Type == nil {
			return spec.HeaderValue{}, fmt.Errorf("a pattern header needs param and type")
		}
		t, err := m.resolveType(*node.Type)
		if err != nil {
			return spec.HeaderValue{}, err
		}
		if !strings.Contains(node.Pattern, "{"+node.Param+"}") {
			return spec.HeaderValue{}, fmt.Errorf("pattern %q does not contain placeholder {%s}", node.Pattern, node.Param)
		}
		return spec.HeaderPattern(node.Pattern, node.Param, t), nil
	case node.Param != "":
		if node.Type == nil {
			return spec.HeaderValue{}, fmt.Errorf("a parameter header needs a type")
		}
		t, err := m.resolveType(*node.Type)
		if err != nil {
			return spec.HeaderValue{}, err
		}
		return spec.HeaderParam(node.Param, t), nil
	case node.Literal != "":
		return spec.HeaderLiteral(node.Literal), nil
	default:
		return spec.HeaderValue{}, fmt.Errorf("a header declares one of literal, param, pattern")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
