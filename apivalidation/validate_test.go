package apivalidation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/apivalidation/transform"
)

// ============ Test types ============

// --- ValueRuler: a string type with its own allowed values ---

type condition string

func (c condition) ValueRules() []v.Rule {
	return []v.Rule{v.In(condition("mint"), condition("used"))}
}

// --- Simple Ruler ---

type record struct {
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Price     float64   `json:"price"`
	Condition condition `json:"condition"`
	Notes     *string   `json:"notes"`
}

func (r *record) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&r.Title, v.Required, v.Length(1, 50), v.HasAlphabetic()),
		v.Field(&r.Year, v.Min(1900), v.Max(2100)),
		v.Field(&r.Price, v.Min(0.0), v.MaxDecimals(2)),
		v.Field(&r.Condition),
		v.Field(&r.Notes, v.Length(0, 10)),
	}
}

func (r *record) Normalize() {
	transform.Multi(r, transform.StructTrimSpace, transform.NilIfEmpty)
}

// --- Collection of Rulers under a parent ---

type crate struct {
	Label   string   `json:"label"`
	Records []record `json:"records"`
}

func (c *crate) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&c.Label),
		v.Field(&c.Records, v.Required, v.Unique(func(i int) any { return c.Records[i].Title }, "titles must be unique")),
	}
}

func (c *crate) Normalize() {
	c.Label = strings.ToUpper(c.Label)
}

// --- Embedded Ruler ---

type Shelving struct {
	Shelf string `json:"shelf"`
}

func (s *Shelving) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&s.Shelf, v.Required),
	}
}

type shelvedRecord struct {
	Shelving
	Title string `json:"title"`
}

func (s *shelvedRecord) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&s.Shelving),
		v.Field(&s.Title, v.Required),
	}
}

// --- ContextRuler ---

type strictKey struct{}

type pressing struct {
	Country string `json:"country"`
}

func (p *pressing) Rules(ctx context.Context) []*v.FieldRules {
	strict, _ := ctx.Value(strictKey{}).(bool)
	return []*v.FieldRules{
		v.Field(&p.Country, v.When(strict, "strict", v.Required)),
	}
}

// ============ Tests ============

func validRecord() record {
	return record{Title: "Unknown Pleasures", Year: 1979, Price: 24.99, Condition: "mint"}
}

func fieldErrors(t *testing.T, err error) v.ValidationErrors {
	t.Helper()
	require.Error(t, err)
	var errs v.ValidationErrors
	require.True(t, errors.As(err, &errs), "got %T: %v", err, err)
	return errs
}

// --- Validate: Ruler ---

func TestValidate_Ruler_Valid(t *testing.T) {
	r := validRecord()
	assert.NoError(t, v.Validate(&r))
}

func TestValidate_Ruler_FieldErrors(t *testing.T) {
	notes := "far too long for the field"
	r := record{Title: "1979", Year: 1800, Price: 1.234, Condition: "mint", Notes: &notes}
	errs := fieldErrors(t, v.Validate(&r))

	assert.Len(t, errs, 4)
	assert.EqualError(t, errs["title"], "must contain at least one letter")
	assert.EqualError(t, errs["year"], "must be no less than 1900")
	assert.EqualError(t, errs["price"], "must have no more than 2 decimals")
	assert.Contains(t, errs, "notes")
}

func TestValidate_Ruler_Required(t *testing.T) {
	r := validRecord()
	r.Title = ""
	errs := fieldErrors(t, v.Validate(&r))
	assert.EqualError(t, errs["title"], "cannot be blank")
}

func TestValidate_ValueRuler(t *testing.T) {
	r := validRecord()
	r.Condition = "scratched"
	errs := fieldErrors(t, v.Validate(&r))
	assert.Contains(t, errs["condition"].Error(), "must be one of 'mint', 'used'")
	assert.Contains(t, errs["condition"].Error(), "got 'scratched'")
}

func TestValidate_NonRuler(t *testing.T) {
	assert.NoError(t, v.Validate("anything"))
	assert.NoError(t, v.Validate(42))
}

func TestValidate_NilPointer(t *testing.T) {
	var r *record
	assert.NoError(t, v.Validate(r))
	assert.NoError(t, v.Validate(nil))
}

// --- Validate: collections ---

func TestValidate_SliceOfRulers(t *testing.T) {
	bad := validRecord()
	bad.Year = 3000
	records := []record{validRecord(), bad}

	errs := fieldErrors(t, v.Validate(&records))
	require.Contains(t, errs, "1")
	inner := fieldErrors(t, errs["1"])
	assert.EqualError(t, inner["year"], "must be no greater than 2100")
}

func TestValidate_MapOfRulers(t *testing.T) {
	bad := validRecord()
	bad.Title = ""
	shelf := map[string]record{"a1": validRecord(), "b7": bad}

	errs := fieldErrors(t, v.Validate(shelf))
	assert.NotContains(t, errs, "a1")
	assert.Contains(t, errs, "b7")
}

func TestValidate_NestedRulersThroughParent(t *testing.T) {
	bad := validRecord()
	bad.Price = -1
	c := crate{Records: []record{validRecord(), bad}}
	c.Records[1].Title = "Closer"

	errs := fieldErrors(t, v.Validate(&c))
	require.Contains(t, errs, "records")
	inner := fieldErrors(t, errs["records"])
	require.Contains(t, inner, "1")
	assert.Contains(t, inner["1"].Error(), "price")
}

func TestValidate_Unique(t *testing.T) {
	c := crate{Records: []record{validRecord(), validRecord()}}
	errs := fieldErrors(t, v.Validate(&c))
	assert.EqualError(t, errs["records"], "must not contain duplicates, got 'Unknown Pleasures' twice")
}

func TestValidate_EmptyCollectionRequired(t *testing.T) {
	c := crate{}
	errs := fieldErrors(t, v.Validate(&c))
	assert.EqualError(t, errs["records"], "cannot be blank")
}

// --- Validate: embedded and context rules ---

func TestValidate_EmbeddedRulerFlattened(t *testing.T) {
	s := shelvedRecord{Title: "Closer"}
	errs := fieldErrors(t, v.Validate(&s))
	assert.Contains(t, errs, "shelf")
	assert.NotContains(t, errs, "Shelving")
}

func TestValidateCtx_ContextRuler(t *testing.T) {
	p := pressing{}
	assert.NoError(t, v.ValidateCtx(context.Background(), &p))

	ctx := context.WithValue(context.Background(), strictKey{}, true)
	errs := fieldErrors(t, v.ValidateCtx(ctx, &p))
	assert.Contains(t, errs, "country")
}

// --- Decoding helpers ---

func TestUnmarshalAndValidate_Normalizes(t *testing.T) {
	var r record
	err := v.UnmarshalAndValidate([]byte(`{
		"title": "  Unknown Pleasures  ",
		"year": 1979,
		"price": 24.99,
		"condition": "used",
		"notes": "   "
	}`), &r)
	require.NoError(t, err)
	assert.Equal(t, "Unknown Pleasures", r.Title)
	assert.Nil(t, r.Notes)
}

func TestUnmarshalAndValidate_InvalidJSON(t *testing.T) {
	var r record
	err := v.UnmarshalAndValidate([]byte(`{"title": `), &r)
	var decodeErr *v.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, err.Error(), "invalid JSON body")
}

func TestUnmarshalAndValidate_WrongType(t *testing.T) {
	var r record
	err := v.UnmarshalAndValidate([]byte(`{"year": "nineteen"}`), &r)
	var decodeErr *v.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeAndValidate_NestedNormalize(t *testing.T) {
	var c crate
	err := v.DecodeAndValidate(strings.NewReader(`{
		"label": "factory",
		"records": [{"title": " Closer ", "year": 1980, "condition": "mint"}]
	}`), &c)
	require.NoError(t, err)
	assert.Equal(t, "FACTORY", c.Label)
	assert.Equal(t, "Closer", c.Records[0].Title)
}

func TestDecodeAndValidate_ValidationError(t *testing.T) {
	var r record
	err := v.DecodeAndValidate(strings.NewReader(`{"title": "", "year": 1979}`), &r)
	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "title")
}
