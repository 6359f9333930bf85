package openapi

import (
	"bytes"
	"context"
	"embed"
	"net/http"
	"text/template"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed swagger/index.html
var swaggerFS embed.FS

// SwaggerHandler validates doc and returns a handler serving the Swagger UI
// at prefix and the raw document at prefix+"docs.json":
//
//	r.Handle("/swagger/*", openapi.SwaggerHandlerMust("/swagger/", doc))
func SwaggerHandler(prefix string, doc *openapi3.T) (http.Handler, error) {
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	docJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(swaggerFS, "swagger/index.html")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Title": doc.Info.Title,
		"Docs":  string(docJSON),
	}); err != nil {
		return nil, err
	}
	index := buf.Bytes()

	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "", "/", "index.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(index)
		case "docs.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(docJSON)
		default:
			http.NotFound(w, r)
		}
	})), nil
}

// SwaggerHandlerMust is like [SwaggerHandler] but panics on error.
func SwaggerHandlerMust(prefix string, doc *openapi3.T) http.Handler {
	h, err := SwaggerHandler(prefix, doc)
	if err != nil {
		panic(err)
	}
	return h
}
