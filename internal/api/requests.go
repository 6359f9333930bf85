package api

import (
	"fmt"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/apivalidation/is"
	"github.com/Gobd/vinylstock/apivalidation/transform"
	"github.com/Gobd/vinylstock/internal/store"
)

// Request bodies are decoded after their keys have been converted to the
// store convention, so the json tags are snake_case.

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (c *CategoryRequest) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&c.Name, v.Required, v.Length(1, 100), v.HasAlphabetic(), v.Example("Jazz")),
		v.Field(&c.Description, v.Length(0, 500)),
	}
}

func (c *CategoryRequest) Normalize() {
	transform.Multi(c, transform.StructCollapseSpace, transform.NilIfEmpty)
}

func (c *CategoryRequest) input() store.CategoryInput {
	return store.CategoryInput{Name: c.Name, Description: c.Description}
}

type ItemRequest struct {
	Artist     string  `json:"artist"`
	Title      string  `json:"title"`
	Label      *string `json:"label"`
	Year       int     `json:"year"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	CategoryID int64   `json:"category_id"`
	ImgURL     *string `json:"img_url"`
}

func (i *ItemRequest) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&i.Artist, v.Required, v.Length(1, 200), v.Example("Miles Davis")),
		v.Field(&i.Title, v.Required, v.Length(1, 200), v.Example("Kind of Blue")),
		v.Field(&i.Label, v.Length(0, 200)),
		v.Field(&i.Year, v.Required, v.Min(1900), v.Max(2100), v.Example(1959)),
		v.Field(&i.Quantity, v.Min(0), v.Default(0)),
		v.Field(&i.Price, v.Min(0.0), v.MaxDecimals(2), v.Example(24.99)),
		v.Field(&i.CategoryID, v.Required, v.Min(1)),
		v.Field(&i.ImgURL, is.URL),
	}
}

func (i *ItemRequest) Normalize() {
	transform.Multi(i, transform.StructTrimSpace, transform.NilIfEmpty)
}

func (i *ItemRequest) input() store.ItemInput {
	return store.ItemInput{
		Artist:     i.Artist,
		Title:      i.Title,
		Label:      i.Label,
		Year:       i.Year,
		Quantity:   i.Quantity,
		Price:      i.Price,
		CategoryID: i.CategoryID,
		ImgURL:     i.ImgURL,
	}
}

// QuantityRequest changes the stock of an item by Adjustment, which is
// negative for a sale.
type QuantityRequest struct {
	Adjustment int `json:"adjustment"`
}

func (q *QuantityRequest) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&q.Adjustment, v.Required, v.Describe("Non-zero change in stock."), v.Example(-1)),
	}
}

type PriceRequest struct {
	Price *float64 `json:"price"`
}

func (p *PriceRequest) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&p.Price, v.NotNil, v.Min(0.0), v.MaxDecimals(2), v.Example(19.99)),
	}
}

// maxReassign bounds one bulk reassignment.
const maxReassign = 500

// ReassignRequest moves every listed item to one category.
type ReassignRequest struct {
	ItemIDs    []int64 `json:"item_ids"`
	CategoryID int64   `json:"category_id"`
}

func (r *ReassignRequest) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&r.ItemIDs,
			v.Required,
			v.By(func(any) error {
				if len(r.ItemIDs) > maxReassign {
					return fmt.Errorf("must contain at most %d ids", maxReassign)
				}
				return nil
			}, fmt.Sprintf("At most %d ids.", maxReassign)),
			v.Each(v.Required, v.Min(1)),
			v.Unique(func(i int) any { return r.ItemIDs[i] }, "Item ids must not repeat."),
		),
		v.Field(&r.CategoryID, v.Required, v.Min(1)),
	}
}
