// Package openapi builds an OpenAPI 3 document from request and response
// types that implement [apivalidation.Ruler], and serves it with Swagger UI.
//
//	doc := openapi.DocBase("vinylstock", "Record inventory", "1.0.0")
//	openapi.Post(doc, "/api/categories", "createCategory", openapi.Endpoint{
//	    Request:  CategoryRequest{},
//	    Response: CategoryResponse{},
//	})
//	r.Handle("/swagger/*", openapi.SwaggerHandlerMust("/swagger/", doc))
package openapi
