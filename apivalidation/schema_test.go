package apivalidation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v "github.com/Gobd/vinylstock/apivalidation"
)

type catalogEntry struct {
	Title    string  `json:"title"`
	Year     int     `json:"year"`
	Price    float64 `json:"price"`
	Internal string  `json:"internal" docs:"skip"`
}

func (c *catalogEntry) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&c.Title, v.Required, v.Length(1, 200), v.Example("Closer")),
		v.Field(&c.Year, v.Min(1900), v.Max(2100)),
		v.Field(&c.Price, v.Min(0.0), v.MaxDecimals(2), v.Describe("Shelf price.")),
	}
}

func TestSchema_BasicStruct(t *testing.T) {
	ref, err := v.NewSchemaRefForValue(catalogEntry{})
	require.NoError(t, err)
	s := ref.Value

	assert.Equal(t, []string{"title"}, s.Required)
	assert.NotContains(t, s.Properties, "internal")

	title := s.Properties["title"].Value
	assert.Equal(t, uint64(1), title.MinLength)
	require.NotNil(t, title.MaxLength)
	assert.Equal(t, uint64(200), *title.MaxLength)
	assert.Equal(t, "Closer", title.Example)

	year := s.Properties["year"].Value
	require.NotNil(t, year.Min)
	require.NotNil(t, year.Max)
	assert.InDelta(t, 1900, *year.Min, 0)
	assert.InDelta(t, 2100, *year.Max, 0)

	price := s.Properties["price"].Value
	require.NotNil(t, price.MultipleOf)
	assert.Contains(t, price.Description, "Shelf price.")
	assert.Contains(t, price.Description, "no more than 2 decimals")
}

func TestSchema_ValueRulerEnum(t *testing.T) {
	ref, err := v.NewSchemaRefForValue(record{})
	require.NoError(t, err)
	cond := ref.Value.Properties["condition"].Value
	assert.ElementsMatch(t, []any{condition("mint"), condition("used")}, cond.Enum)
}

func TestSchema_NestedRulers(t *testing.T) {
	ref, err := v.NewSchemaRefForValue(crate{})
	require.NoError(t, err)
	s := ref.Value

	assert.Contains(t, s.Required, "records")
	records := s.Properties["records"].Value
	assert.True(t, records.UniqueItems)
	require.NotNil(t, records.Items)
	assert.Contains(t, records.Items.Value.Required, "title")
}

func TestSchema_EmbeddedRuler(t *testing.T) {
	ref, err := v.NewSchemaRefForValue(shelvedRecord{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shelf", "title"}, ref.Value.Required)
}

func TestMissingRules(t *testing.T) {
	assert.Empty(t, v.MissingRules(&record{}))
	assert.Empty(t, v.MissingRules(&catalogEntry{}))
	assert.Empty(t, v.MissingRules(&shelvedRecord{}))
	assert.Nil(t, v.MissingRules(&struct{ A string }{}))
}

type halfRuled struct {
	Artist string `json:"artist"`
	Label  string `json:"label"`
	Matrix string `json:"matrix"`
	Secret string `json:"-"`
	Audit  string `validate:"-"`
}

func (h *halfRuled) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&h.Artist, v.Required),
	}
}

func TestMissingRules_ReportsUncovered(t *testing.T) {
	assert.Equal(t, []string{"label", "matrix"}, v.MissingRules(&halfRuled{}))
	assert.Equal(t, []string{"label"}, v.MissingRules(&halfRuled{}, "matrix"))
	assert.Equal(t, []string{"matrix"}, v.MissingRules(&halfRuled{}, "Label"))
}

func TestMissingRules_ValueArgument(t *testing.T) {
	assert.Equal(t, []string{"label", "matrix"}, v.MissingRules(halfRuled{}))
	assert.Empty(t, v.MissingRules(shelvedRecord{}))
}
