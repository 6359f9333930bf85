package api

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Gobd/vinylstock/apivalidation/openapi"
	"github.com/Gobd/vinylstock/internal/catalog"
	"github.com/Gobd/vinylstock/internal/store"
	"github.com/Gobd/vinylstock/keycase"
)

// Version is reported in the API document.
var Version = "0.1.0"

var idParam = openapi.PathParam("id", "Numeric id.", openapi3.NewInt64Schema().WithMin(1))

func errs(codes map[string]string) map[string]openapi.Response {
	out := make(map[string]openapi.Response, len(codes))
	for code, desc := range codes {
		out[code] = openapi.Response{Desc: desc, Bodies: []any{ErrorResponse{}}}
	}
	return out
}

func with(ok map[string]openapi.Response, fail map[string]string) map[string]openapi.Response {
	for code, r := range errs(fail) {
		ok[code] = r
	}
	return ok
}

// Doc describes the API with property names in the wire convention.
func Doc() *openapi3.T {
	doc := openapi.DocBase("vinylstock", "Inventory of records, grouped by category.", Version)

	openapi.Get(doc, "/health", "health", openapi.Endpoint{
		Summary:  "Liveness check",
		Tags:     []string{"system"},
		Response: healthResponse{},
	})

	categoryTags := []string{"categories"}
	openapi.Get(doc, "/api/categories", "listCategories", openapi.Endpoint{
		Summary:  "List categories",
		Tags:     categoryTags,
		Response: []store.Category{},
	})
	openapi.Post(doc, "/api/categories", "createCategory", openapi.Endpoint{
		Summary: "Create a category",
		Tags:    categoryTags,
		Request: CategoryRequest{},
		Responses: with(map[string]openapi.Response{
			"201": {Desc: "Created", Bodies: []any{CategoryResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "409": "Name already used"}),
	})
	openapi.Get(doc, "/api/categories/{id}", "getCategory", openapi.Endpoint{
		Summary: "Get a category",
		Tags:    categoryTags,
		Params:  []*openapi3.Parameter{idParam},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "OK", Bodies: []any{store.Category{}}},
		}, map[string]string{"404": "Not found"}),
	})
	openapi.Put(doc, "/api/categories/{id}", "updateCategory", openapi.Endpoint{
		Summary: "Update a category",
		Tags:    categoryTags,
		Params:  []*openapi3.Parameter{idParam},
		Request: CategoryRequest{},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Updated", Bodies: []any{CategoryResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "404": "Not found", "409": "Name already used"}),
	})
	openapi.Delete(doc, "/api/categories/{id}", "deleteCategory", openapi.Endpoint{
		Summary: "Delete a category",
		Tags:    categoryTags,
		Params:  []*openapi3.Parameter{idParam},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Deleted", Bodies: []any{MessageResponse{}}},
		}, map[string]string{"404": "Not found", "409": "Category still has items"}),
	})

	itemTags := []string{"items"}
	openapi.Get(doc, "/api/items", "listItems", openapi.Endpoint{
		Summary:  "List items",
		Tags:     itemTags,
		Response: []store.Item{},
	})
	openapi.Post(doc, "/api/items", "createItem", openapi.Endpoint{
		Summary: "Create an item",
		Tags:    itemTags,
		Request: ItemRequest{},
		Responses: with(map[string]openapi.Response{
			"201": {Desc: "Created", Bodies: []any{ItemResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "422": "Unknown category"}),
	})
	openapi.Patch(doc, "/api/items/category", "reassignCategory", openapi.Endpoint{
		Summary:     "Move items to a category",
		Description: "Either every listed item moves or none does.",
		Tags:        itemTags,
		Request:     ReassignRequest{},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Updated", Bodies: []any{ItemsResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "404": "An item does not exist", "422": "Unknown category"}),
	})
	openapi.Get(doc, "/api/items/category/{id}", "itemsByCategory", openapi.Endpoint{
		Summary: "List the items of a category",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "OK", Bodies: []any{[]store.Item{}}},
		}, map[string]string{"404": "No items in this category"}),
	})
	openapi.Get(doc, "/api/items/{id}", "getItem", openapi.Endpoint{
		Summary: "Get an item",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "OK", Bodies: []any{store.Item{}}},
		}, map[string]string{"404": "Not found"}),
	})
	openapi.Put(doc, "/api/items/{id}", "updateItem", openapi.Endpoint{
		Summary: "Update an item",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Request: ItemRequest{},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Updated", Bodies: []any{ItemResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "404": "Not found", "422": "Unknown category"}),
	})
	openapi.Delete(doc, "/api/items/{id}", "deleteItem", openapi.Endpoint{
		Summary: "Delete an item",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Deleted", Bodies: []any{MessageResponse{}}},
		}, map[string]string{"404": "Not found"}),
	})
	openapi.Patch(doc, "/api/items/{id}/quantity", "adjustQuantity", openapi.Endpoint{
		Summary: "Change the stock of an item",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Request: QuantityRequest{},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Updated", Bodies: []any{ItemResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "404": "Not found", "422": "Stock would drop below zero"}),
	})
	openapi.Patch(doc, "/api/items/{id}/price", "updatePrice", openapi.Endpoint{
		Summary: "Set the price of an item",
		Tags:    itemTags,
		Params:  []*openapi3.Parameter{idParam},
		Request: PriceRequest{},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Updated", Bodies: []any{ItemResponse{}}},
		}, map[string]string{"400": "Invalid body", "413": "Body too large", "404": "Not found"}),
	})

	catalogTags := []string{"catalog"}
	catalogFailures := map[string]string{"404": "Not found", "502": "Catalog request failed", "503": "Catalog unavailable"}
	catalogID := openapi.PathParam("id", "Catalog id.", openapi3.NewStringSchema().WithPattern("^[A-Za-z0-9]+$"))
	openapi.Get(doc, "/api/catalog/artists", "searchArtist", openapi.Endpoint{
		Summary: "Find an artist",
		Tags:    catalogTags,
		Params: []*openapi3.Parameter{
			openapi.QueryParam("q", "Artist name.", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(maxQueryLen)).WithRequired(true),
		},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "Best match", Bodies: []any{catalog.Artist{}}},
		}, catalogFailures),
	})
	openapi.Get(doc, "/api/catalog/artists/{id}/albums", "artistAlbums", openapi.Endpoint{
		Summary: "List the albums of an artist",
		Tags:    catalogTags,
		Params:  []*openapi3.Parameter{catalogID},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "OK", Bodies: []any{[]catalog.AlbumSummary{}}},
		}, catalogFailures),
	})
	openapi.Get(doc, "/api/catalog/albums/{id}", "album", openapi.Endpoint{
		Summary:     "Get album details",
		Description: "The result has the fields of a new item so it can pre-fill one.",
		Tags:        catalogTags,
		Params:      []*openapi3.Parameter{catalogID},
		Responses: with(map[string]openapi.Response{
			"200": {Desc: "OK", Bodies: []any{catalog.AlbumDetails{}}},
		}, catalogFailures),
	})

	openapi.RenameProperties(doc, keycase.ToInternalConvention)
	return doc
}
