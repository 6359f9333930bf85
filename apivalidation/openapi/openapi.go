package openapi

import (
	"errors"
	"net/http"
	"regexp"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
)

// Response describes one status code of an operation.
type Response struct {
	Desc   string
	Bodies []any
}

// Endpoint describes a single operation for [Get], [Post], [Put], [Patch]
// and [Delete].
type Endpoint struct {
	Summary     string
	Description string
	Tags        []string
	Params      []*openapi3.Parameter // path parameters not listed here are documented as strings
	Request     any                   // single request body type
	Requests    []any                 // several request body types (oneOf)
	Response    any                   // single 200 response type
	Responses   map[string]Response   // full response map; overrides Response
}

// PathParam documents a path parameter of the given schema.
func PathParam(name, desc string, schema *openapi3.Schema) *openapi3.Parameter {
	return openapi3.NewPathParameter(name).WithDescription(desc).WithSchema(schema)
}

// QueryParam documents an optional query parameter.
func QueryParam(name, desc string, schema *openapi3.Schema) *openapi3.Parameter {
	return openapi3.NewQueryParameter(name).WithDescription(desc).WithSchema(schema)
}

// NewRequest builds a JSON request body from the given types. Several types
// become a oneOf.
func NewRequest(vs ...any) (*openapi3.RequestBodyRef, error) {
	if len(vs) == 0 {
		return nil, errors.New("no request types given")
	}
	schema, err := oneOf(vs)
	if err != nil {
		return nil, err
	}
	body := openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema)
	return &openapi3.RequestBodyRef{Value: body}, nil
}

// NewRequestMust is like [NewRequest] but panics on error.
func NewRequestMust(vs ...any) *openapi3.RequestBodyRef {
	r, err := NewRequest(vs...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewResponse builds the responses object keyed by status code ("200",
// "4XX", ...).
func NewResponse(vs map[string]Response) (*openapi3.Responses, error) {
	if len(vs) == 0 {
		return nil, errors.New("no responses given")
	}
	codes := make([]string, 0, len(vs))
	for code := range vs {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	opts := make([]openapi3.NewResponsesOption, 0, len(vs))
	for _, code := range codes {
		desc := vs[code].Desc
		resp := &openapi3.Response{Description: &desc}
		if len(vs[code].Bodies) > 0 {
			schema, err := oneOf(vs[code].Bodies)
			if err != nil {
				return nil, err
			}
			resp.Content = openapi3.NewContentWithJSONSchemaRef(schema)
		}
		opts = append(opts, openapi3.WithName(code, resp))
	}
	return openapi3.NewResponses(opts...), nil
}

// NewResponseMust is like [NewResponse] but panics on error.
func NewResponseMust(vs map[string]Response) *openapi3.Responses {
	r, err := NewResponse(vs)
	if err != nil {
		panic(err)
	}
	return r
}

func oneOf(vs []any) (*openapi3.SchemaRef, error) {
	refs := make(openapi3.SchemaRefs, 0, len(vs))
	for _, v := range vs {
		ref, err := NewSchemaRefForValue(v)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if len(refs) == 1 {
		return refs[0], nil
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{OneOf: refs}}, nil
}

// DocBase returns an empty OpenAPI 3.0.3 document.
func DocBase(serviceName, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       serviceName,
			Description: description,
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}
}

// AddPath registers op at path and method.
func AddPath(path, method string, doc *openapi3.T, op *openapi3.Operation) {
	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
	}
	item.SetOperation(method, op)
	doc.Paths.Set(path, item)
}

var pathParam = regexp.MustCompile(`\{([^}/]+)\}`)

func addEndpoint(doc *openapi3.T, path, method, operationID string, ep Endpoint) {
	op := &openapi3.Operation{
		OperationID: operationID,
		Summary:     ep.Summary,
		Description: ep.Description,
		Tags:        ep.Tags,
	}

	for _, p := range ep.Params {
		op.AddParameter(p)
	}
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		if op.Parameters.GetByInAndName(openapi3.ParameterInPath, m[1]) == nil {
			op.AddParameter(openapi3.NewPathParameter(m[1]).WithSchema(openapi3.NewStringSchema()))
		}
	}

	switch {
	case len(ep.Requests) > 0:
		op.RequestBody = NewRequestMust(ep.Requests...)
	case ep.Request != nil:
		op.RequestBody = NewRequestMust(ep.Request)
	}

	responses := ep.Responses
	if responses == nil && ep.Response != nil {
		responses = map[string]Response{"200": {Desc: "OK", Bodies: []any{ep.Response}}}
	}
	if responses != nil {
		op.Responses = NewResponseMust(responses)
	} else {
		op.Responses = openapi3.NewResponses()
	}

	AddPath(path, method, doc, op)
}

// Get registers a GET operation on doc.
func Get(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodGet, operationID, ep)
}

// Post registers a POST operation on doc.
func Post(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPost, operationID, ep)
}

// Put registers a PUT operation on doc.
func Put(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPut, operationID, ep)
}

// Patch registers a PATCH operation on doc.
func Patch(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPatch, operationID, ep)
}

// Delete registers a DELETE operation on doc.
func Delete(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodDelete, operationID, ep)
}
