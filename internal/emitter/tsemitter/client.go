package tsemitter

import (
	"strings"

	"github.com/damascus-dev/damascus/internal/aat"
)

// headerParamName returns the config/argument name a header's value binds to,
// or "" for literal headers which need no parameter.
func headerParamName(h aat.Header) string {
	if h.Value.Kind == aat.HeaderLiteral {
		return ""
	}
	return h.Value.ParamName
}

func headerParamDecl(h aat.Header) string {
	name := headerParamName(h)
	ts := fieldTypeToTS(h.Value.Type)
	if h.Value.Type.Kind == aat.KindOptional {
		return name + "?: " + fieldTypeToTS(*h.Value.Type.Elem)
	}
	return name + ": " + ts
}

// headerAssignment renders one "headers['Name'] = ..." statement. valueRef
// resolves a parameter name to the expression holding its value.
func headerAssignment(w *codeWriter, target string, h aat.Header, valueRef func(string) string) {
	switch h.Value.Kind {
	case aat.HeaderLiteral:
		w.Line(target + "['" + h.Name + "'] = '" + h.Value.Literal + "';")
	case aat.HeaderParameter:
		w.Line(target + "['" + h.Name + "'] = String(" + valueRef(h.Value.ParamName) + ");")
	case aat.HeaderPattern:
		placeholder := "{" + h.Value.ParamName + "}"
		expr := strings.ReplaceAll(h.Value.Pattern, placeholder, "${String("+valueRef(h.Value.ParamName)+")}")
		w.Line(target + "['" + h.Name + "'] = `" + expr + "`;")
	}
}

func writeClientConfig(w *codeWriter, a *aat.AAT) {
	w.Block("export interface ClientConfig {", "}", func(w *codeWriter) {
		w.Line("baseUrl: string;")
		for _, h := range a.Headers {
			if headerParamName(h) != "" {
				w.Line(headerParamDecl(h) + ";")
			}
		}
		w.Line("options?: RequestInit;")
		w.Line("fetchImpl?: typeof fetch;")
		w.Line("WebSocketImpl?: typeof WebSocket;")
	})
	w.Blank()
}

func writeClient(w *codeWriter, a *aat.AAT) {
	var rootParams []string
	for _, h := range a.Headers {
		if name := headerParamName(h); name != "" {
			rootParams = append(rootParams, name)
		}
	}

	w.Block("export class Client {", "}", func(w *codeWriter) {
		w.Line("private readonly baseUrl: string;")
		for _, name := range rootParams {
			w.Line("private readonly rootHeader_" + name + ": any;")
		}
		w.Line("private readonly options?: RequestInit;")
		w.Line("private readonly fetchImpl: typeof fetch;")
		w.Line("private readonly WebSocketImpl: typeof WebSocket;")
		w.Blank()

		w.Block("constructor(config: ClientConfig) {", "}", func(w *codeWriter) {
			w.Line("this.baseUrl = config.baseUrl;")
			for _, name := range rootParams {
				w.Line("this.rootHeader_" + name + " = config." + name + ";")
			}
			w.Line("this.options = config.options;")
			w.Line("this.fetchImpl = config.fetchImpl || globalThis.fetch;")
			w.Line("this.WebSocketImpl = config.WebSocketImpl || globalThis.WebSocket;")
		})
		w.Blank()

		for _, service := range a.Services {
			writeServiceFactory(w, a, service)
		}
	})
}

// writeServiceFactory renders the accessor on Client that binds a service
// client. Services without header parameters become getters.
func writeServiceFactory(w *codeWriter, a *aat.AAT, service aat.Service) {
	className := toPascalCase(service.Name) + "Client"

	var params []string
	for _, h := range service.Headers {
		if headerParamName(h) != "" {
			params = append(params, headerParamDecl(h))
		}
	}

	signature := service.Name + "(" + strings.Join(params, ", ") + "): " + className + " {"
	if len(params) == 0 {
		signature = "get " + signature
	}

	w.Block(signature, "}", func(w *codeWriter) {
		w.Line("const rootHeaders: Record<string, string> = {};")
		for _, h := range a.Headers {
			headerAssignment(w, "rootHeaders", h, func(name string) string { return "this.rootHeader_" + name })
		}
		w.Line("const serviceHeaders: Record<string, string> = {};")
		for _, h := range service.Headers {
			headerAssignment(w, "serviceHeaders", h, func(name string) string { return name })
		}
		w.Line("return new " + className + "(this.baseUrl, rootHeaders, serviceHeaders, this.options, this.fetchImpl, this.WebSocketImpl);")
	})
	w.Blank()
}

func writeServiceClient(w *codeWriter, service aat.Service) error {
	className := toPascalCase(service.Name) + "Client"
	var renderErr error

	w.Block("class "+className+" {", "}", func(w *codeWriter) {
		w.Line("constructor(private baseUrl: string, private rootHeaders: Record<string, string>, private serviceHeaders: Record<string, string>, private options: RequestInit | undefined, private fetchImpl: typeof fetch, private WebSocketImpl: typeof WebSocket) {}")
		w.Blank()
		for _, endpoint := range service.Endpoints {
			if err := writeEndpointMethod(w, endpoint); err != nil && renderErr == nil {
				renderErr = err
			}
			w.Blank()
		}
	})
	w.Blank()
	return renderErr
}

func writeEndpointMethod(w *codeWriter, endpoint aat.Endpoint) error {
	methodName := toCamelCase(endpoint.Name)
	isWebsocket := endpoint.Upgrade == aat.UpgradeWs

	// Required parameters come first so optional ones can be omitted.
	var required, optional []string
	addParam := func(name string, t aat.FieldType) {
		if t.Kind == aat.KindOptional {
			optional = append(optional, name+"?: "+fieldTypeToTS(*t.Elem))
		} else {
			required = append(required, name+": "+fieldTypeToTS(t))
		}
	}

	for _, h := range endpoint.Headers {
		if name := headerParamName(h); name != "" {
			addParam(name, h.Value.Type)
		}
	}
	for _, segment := range endpoint.Path {
		if segment.Param != nil {
			addParam(segment.Param.Name, segment.Param.Type)
		}
	}
	if endpoint.Query != nil {
		addParam("query", *endpoint.Query)
	}
	if endpoint.Body != nil {
		addParam("body", *endpoint.Body)
	}
	params := strings.Join(append(required, optional...), ", ")

	isVoid := endpoint.Response.Kind == aat.KindAny
	returnType := fieldTypeToTS(endpoint.Response)
	if isVoid {
		returnType = "void"
	}

	signature := "async " + methodName + "(" + params + "): Promise<" + returnType + "> {"
	if isWebsocket {
		signature = methodName + "(" + params + "): " + returnType + " {"
	}

	w.Block(signature, "}", func(w *codeWriter) {
		w.Line("const endpointHeaders: Record<string, string> = {};")
		for _, h := range endpoint.Headers {
			headerAssignment(w, "endpointHeaders", h, func(name string) string { return name })
		}
		w.Line("const mergedHeaders = { ...this.rootHeaders, ...this.serviceHeaders, ...endpointHeaders, ...this.options?.headers };")
		w.Blank()

		var path strings.Builder
		for _, segment := range endpoint.Path {
			if segment.Param != nil {
				path.WriteString("/${" + segment.Param.Name + "}")
			} else {
				path.WriteString("/" + segment.Literal)
			}
		}
		w.Line("const path = `" + path.String() + "`;")

		if endpoint.Query != nil {
			queryVar := "query"
			if needsSerialization(*endpoint.Query) {
				w.Line("const serializedQuery = " + applyConverter(serializerCall(*endpoint.Query), "query") + ";")
				queryVar = "serializedQuery"
			}
			w.Line("const params = new URLSearchParams();")
			w.Block("for (const [key, value] of Object.entries("+queryVar+")) {", "}", func(w *codeWriter) {
				w.Block("if (value !== undefined && value !== null) {", "}", func(w *codeWriter) {
					w.Line("params.append(key, String(value));")
				})
			})
			w.Line("const url = `${this.baseUrl}${path}?${params.toString()}`;")
		} else {
			w.Line("const url = `${this.baseUrl}${path}`;")
		}

		if isWebsocket {
			writeWebsocketTail(w, endpoint)
			return
		}
		writeHTTPTail(w, endpoint, isVoid)
	})
	return nil
}

func writeWebsocketTail(w *codeWriter, endpoint aat.Endpoint) {
	deserializer := "(data: any) => data"
	if endpoint.Response.Kind == aat.KindStream && needsSerialization(*endpoint.Response.Elem) {
		deserializer = deserializerCall(*endpoint.Response.Elem)
	}
	w.Line("const stream = new WebSocketStream(url, " + deserializer + ", mergedHeaders, this.WebSocketImpl);")
	w.Line("return stream;")
}

func writeHTTPTail(w *codeWriter, endpoint aat.Endpoint, isVoid bool) {
	if endpoint.Body != nil && needsSerialization(*endpoint.Body) {
		w.Line("const serializedBody = " + applyConverter(serializerCall(*endpoint.Body), "body") + ";")
	}

	w.Block("const response = await this.fetchImpl(url, {", "});", func(w *codeWriter) {
		w.Line("method: '" + string(endpoint.Method) + "',")
		if endpoint.Body != nil {
			w.Line("headers: { 'Content-Type': 'application/json', ...mergedHeaders },")
			if needsSerialization(*endpoint.Body) {
				w.Line("body: JSON.stringify(serializedBody),")
			} else {
				w.Line("body: JSON.stringify(body),")
			}
		} else {
			w.Line("headers: mergedHeaders,")
		}
		w.Line("...this.options,")
	})
	w.Blank()
	w.Block("if (!response.ok) {", "}", func(w *codeWriter) {
		w.Line("throw new Error(`HTTP error! status: ${response.status}`);")
	})

	if isVoid {
		return
	}
	w.Blank()
	if needsSerialization(endpoint.Response) {
		w.Line("const data = await response.json();")
		w.Line("return " + applyConverter(deserializerCall(endpoint.Response), "data") + ";")
	} else {
		w.Line("return response.json();")
	}
}
