package openapi_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/apivalidation/openapi"
	"github.com/Gobd/vinylstock/keycase"
)

type release struct {
	Title       string `json:"title"`
	ReleaseYear int    `json:"release_year"`
	CategoryID  int64  `json:"category_id"`
}

func (r *release) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&r.Title, v.Required, v.Length(1, 200)),
		v.Field(&r.ReleaseYear, v.Min(1900)),
		v.Field(&r.CategoryID, v.Required, v.Min(int64(1))),
	}
}

type problem struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newDoc() *openapi3.T {
	doc := openapi.DocBase("Records", "Test API", "1.0.0")
	openapi.Post(doc, "/releases", "createRelease", openapi.Endpoint{
		Summary: "Create a release",
		Tags:    []string{"releases"},
		Request: release{},
		Responses: map[string]openapi.Response{
			"201": {Desc: "Created", Bodies: []any{release{}}},
			"400": {Desc: "Invalid body", Bodies: []any{problem{}}},
		},
	})
	openapi.Get(doc, "/releases/{id}", "getRelease", openapi.Endpoint{
		Params:   []*openapi3.Parameter{openapi.PathParam("id", "Release id", openapi3.NewInt64Schema())},
		Response: release{},
	})
	openapi.Get(doc, "/search/{term}", "search", openapi.Endpoint{
		Params:   []*openapi3.Parameter{openapi.QueryParam("page_size", "Results per page", openapi3.NewIntegerSchema())},
		Response: []release{},
	})
	return doc
}

func TestEndpointRegistration(t *testing.T) {
	doc := newDoc()

	post := doc.Paths.Value("/releases").Post
	require.NotNil(t, post)
	assert.Equal(t, "createRelease", post.OperationID)
	assert.Equal(t, []string{"releases"}, post.Tags)
	require.NotNil(t, post.RequestBody)
	assert.True(t, post.RequestBody.Value.Required)
	assert.NotNil(t, post.Responses.Value("201"))
	assert.NotNil(t, post.Responses.Value("400"))

	get := doc.Paths.Value("/releases/{id}").Get
	id := get.Parameters.GetByInAndName(openapi3.ParameterInPath, "id")
	require.NotNil(t, id)
	assert.True(t, id.Schema.Value.Type.Is(openapi3.TypeInteger))

	search := doc.Paths.Value("/search/{term}").Get
	term := search.Parameters.GetByInAndName(openapi3.ParameterInPath, "term")
	require.NotNil(t, term, "undeclared path parameters are documented as strings")
	assert.True(t, term.Schema.Value.Type.Is(openapi3.TypeString))

	require.NoError(t, doc.Validate(t.Context()))
}

func TestNewRequest_Errors(t *testing.T) {
	_, err := openapi.NewRequest()
	assert.Error(t, err)
	assert.Panics(t, func() { openapi.NewRequestMust() })

	_, err = openapi.NewResponse(nil)
	assert.Error(t, err)
}

func TestNewRequest_OneOf(t *testing.T) {
	body, err := openapi.NewRequest(release{}, problem{})
	require.NoError(t, err)
	assert.Len(t, body.Value.Content.Get("application/json").Schema.Value.OneOf, 2)
}

func TestRenameProperties(t *testing.T) {
	doc := newDoc()
	openapi.RenameProperties(doc, keycase.ToInternalConvention)

	req := doc.Paths.Value("/releases").Post.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Contains(t, req.Properties, "releaseYear")
	assert.Contains(t, req.Properties, "categoryId")
	assert.NotContains(t, req.Properties, "release_year")
	assert.ElementsMatch(t, []string{"title", "categoryId"}, req.Required)

	list := doc.Paths.Value("/search/{term}").Get.Responses.Value("200").Value.Content.Get("application/json").Schema.Value
	assert.Contains(t, list.Items.Value.Properties, "categoryId")

	q := doc.Paths.Value("/search/{term}").Get.Parameters.GetByInAndName(openapi3.ParameterInQuery, "pageSize")
	assert.NotNil(t, q)
}

func TestSwaggerHandler(t *testing.T) {
	doc := newDoc()
	h, err := openapi.SwaggerHandler("/swagger/", doc)
	require.NoError(t, err)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{path: "/swagger/", status: http.StatusOK, contentType: "text/html; charset=utf-8", contains: "SwaggerUIBundle"},
		{path: "/swagger/docs.json", status: http.StatusOK, contentType: "application/json", contains: `"createRelease"`},
		{path: "/swagger/missing.js", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
			body, _ := io.ReadAll(rec.Body)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestSwaggerHandler_InvalidDoc(t *testing.T) {
	doc := openapi.DocBase("Broken", "", "1.0.0")
	openapi.AddPath("/releases/{id}", http.MethodGet, doc, &openapi3.Operation{Responses: openapi3.NewResponses()})
	_, err := openapi.SwaggerHandler("/swagger/", doc)
	assert.Error(t, err)
	assert.Panics(t, func() { openapi.SwaggerHandlerMust("/swagger/", doc) })
}

func ExamplePost() {
	doc := openapi.DocBase("Records", "Example API", "1.0.0")
	openapi.Post(doc, "/releases", "createRelease", openapi.Endpoint{
		Summary:  "Create a release",
		Request:  release{},
		Response: release{},
	})
	fmt.Println(doc.Paths.Value("/releases").Post.OperationID)
	// Output: createRelease
}

func ExampleDocBase() {
	doc := openapi.DocBase("Records", "Example API", "0.1.0")
	fmt.Println(doc.Info.Title)
	fmt.Println(doc.OpenAPI)
	// Output:
	// Records
	// 3.0.3
}
