package apivalidation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NewStringRule returns a rule that checks strings with validator, using desc
// as the error message and the schema description.
func NewStringRule(validator func(string) bool, desc string) Rule {
	return stringRule{
		StringRule: validation.NewStringRule(validator, desc),
		desc:       desc,
	}
}

type stringRule struct {
	validation.StringRule
	desc string
}

func (r stringRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref, r.desc)
	return nil
}

// HasAlphabetic rejects strings made only of digits, punctuation or spaces.
// Empty strings pass.
func HasAlphabetic() Rule {
	return hasAlphabetic{}
}

type hasAlphabetic struct{}

func (hasAlphabetic) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref, "Must contain at least one letter.")
	return nil
}

func (hasAlphabetic) Validate(value any) error {
	value, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.IndexFunc(s, unicode.IsLetter) < 0 {
		return errors.New("must contain at least one letter")
	}
	return nil
}

// Describe returns a documentation-only rule that appends desc to the schema
// description.
func Describe(desc string) Rule {
	return docRule(func(ref *openapi3.SchemaRef) { appendDescription(ref, desc) })
}

// Example returns a documentation-only rule that sets the schema example.
func Example(ex any) Rule {
	return docRule(func(ref *openapi3.SchemaRef) { ref.Value.Example = ex })
}

// Default returns a documentation-only rule that sets the schema default.
func Default(v any) Rule {
	return docRule(func(ref *openapi3.SchemaRef) { ref.Value.Default = v })
}

type docRule func(ref *openapi3.SchemaRef)

func (r docRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	r(ref)
	return nil
}

func (docRule) Validate(any) error { return nil }
