package apivalidation

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// WhenRule applies one set of rules when a condition holds and, optionally,
// another set via [WhenRule.Else] when it does not.
type WhenRule struct {
	validation.WhenRule
	desc      string
	whenRules []Rule
	elseRules []Rule
}

// When applies rules only when condition is true. desc names the condition
// in the generated documentation.
func When(condition bool, desc string, rules ...Rule) *WhenRule {
	return &WhenRule{
		WhenRule:  validation.When(condition, convertRules(rules...)...),
		desc:      desc,
		whenRules: rules,
	}
}

// Else sets the rules applied when the condition is false.
func (r *WhenRule) Else(rules ...Rule) *WhenRule {
	r.WhenRule = r.WhenRule.Else(convertRules(rules...)...)
	r.elseRules = rules
	return r
}

// Describe summarises both branches in the schema description.
func (r *WhenRule) Describe(name string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	when, err := summarize(name, r.whenRules)
	if err != nil {
		return err
	}
	if when != "" {
		if r.desc != "" {
			when = fmt.Sprintf("when %s: %s", r.desc, when)
		}
		appendDescription(ref, when)
	}

	otherwise, err := summarize(name, r.elseRules)
	if err != nil {
		return err
	}
	if otherwise != "" {
		appendDescription(ref, "otherwise: "+otherwise)
	}
	return nil
}

// summarize runs rules against a scratch schema and renders what they
// changed as a short phrase.
func summarize(name string, rules []Rule) (string, error) {
	if len(rules) == 0 {
		return "", nil
	}
	parent := openapi3.NewSchema()
	ref := &openapi3.SchemaRef{Value: openapi3.NewSchema()}
	for _, r := range rules {
		if err := r.Describe(name, parent, ref); err != nil {
			return "", err
		}
	}

	var parts []string
	if ref.Value.Description != "" {
		parts = append(parts, ref.Value.Description)
	}
	if len(parent.Required) > 0 {
		parts = append(parts, "required")
	}
	if ref.Value.Min != nil {
		parts = append(parts, fmt.Sprintf("min %g", *ref.Value.Min))
	}
	if ref.Value.Max != nil {
		parts = append(parts, fmt.Sprintf("max %g", *ref.Value.Max))
	}
	if ref.Value.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("length %d..%d", ref.Value.MinLength, *ref.Value.MaxLength))
	}
	if len(ref.Value.Enum) > 0 {
		vals := make([]string, len(ref.Value.Enum))
		for i, v := range ref.Value.Enum {
			vals[i] = fmt.Sprint(v)
		}
		parts = append(parts, "one of ["+strings.Join(vals, ", ")+"]")
	}
	return strings.Join(parts, ", "), nil
}
