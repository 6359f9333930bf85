package is_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gobd/vinylstock/apivalidation/is"
)

func TestURL(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{value: "https://i.scdn.co/image/ab67616d0000b273", valid: true},
		{value: "http://localhost:5173/cover.jpg", valid: true},
		{value: "", valid: true},
		{value: "ftp://example.com/file", valid: false},
		{value: "not a url", valid: false},
		{value: "/relative/path.png", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := is.URL.Validate(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, "must be a valid http or https URL")
			}
		})
	}
}

func TestURL_Pointer(t *testing.T) {
	s := "https://example.com/a.png"
	assert.NoError(t, is.URL.Validate(&s))
	assert.NoError(t, is.URL.Validate((*string)(nil)))
}

func TestHost(t *testing.T) {
	assert.NoError(t, is.Host.Validate("0.0.0.0"))
	assert.NoError(t, is.Host.Validate("api.example.com"))
	assert.Error(t, is.Host.Validate("not a host!"))
}

func TestAlphanumeric(t *testing.T) {
	assert.NoError(t, is.Alphanumeric.Validate("0OdUWJ0sBjDrqHygGUXeCF"))
	assert.Error(t, is.Alphanumeric.Validate("id-with-dash"))
}
