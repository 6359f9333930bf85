package apivalidation

import (
	"context"
	"reflect"
	"slices"
	"strings"
)

// MissingRules lists the exported fields of structPtr that no entry of its
// Rules() points at, by json name where tagged and by Go name otherwise.
// Fields of embedded structs count as fields of structPtr.
//
// Fields tagged json:"-", docs:"skip" or validate:"-" are not expected to
// have rules, and neither are the names in exclude (json or Go name).
// Use it in tests to catch fields added without rules:
//
//	assert.Empty(t, apivalidation.MissingRules(&ItemRequest{}))
func MissingRules(structPtr any, exclude ...string) []string {
	root := reflect.Indirect(reflect.ValueOf(structPtr))
	if !root.IsValid() || root.Kind() != reflect.Struct {
		return nil
	}
	if !root.CanAddr() {
		// Rules only hand out addresses of an addressable copy.
		cp := reflect.New(root.Type())
		cp.Elem().Set(root)
		return MissingRules(cp.Interface(), exclude...)
	}

	ctx := context.Background()
	fields, ok := rulesOf(ctx, structPtr)
	if !ok {
		return nil
	}

	// A field and the first field inside it share an address, so the type
	// is part of the key.
	covered := map[fieldAddr]bool{}
	for _, fr := range expandFields(ctx, structPtr, fields) {
		fv := reflect.ValueOf(fr.fieldPtr)
		if fv.Kind() == reflect.Pointer && !fv.IsNil() {
			covered[fieldAddr{ptr: fv.Pointer(), typ: fv.Type().Elem()}] = true
		}
	}

	var missing []string
	for _, f := range ruleTargets(root, nil) {
		if covered[f.addr] || slices.Contains(exclude, f.name) || slices.Contains(exclude, f.goName) {
			continue
		}
		missing = append(missing, f.name)
	}
	return missing
}

type fieldAddr struct {
	ptr uintptr
	typ reflect.Type
}

type ruleTarget struct {
	name   string
	goName string
	addr   fieldAddr
}

// ruleTargets appends the fields of sv that should carry rules, flattening
// embedded structs. sv must be addressable.
func ruleTargets(sv reflect.Value, out []ruleTarget) []ruleTarget {
	for i := range sv.NumField() {
		sf, fv := sv.Type().Field(i), sv.Field(i)
		if sf.Anonymous {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				out = ruleTargets(fv, out)
			}
			continue
		}
		if !sf.IsExported() || exemptFromRules(sf) {
			continue
		}
		out = append(out, ruleTarget{
			name:   fieldName(sf),
			goName: sf.Name,
			addr:   fieldAddr{ptr: fv.Addr().Pointer(), typ: sf.Type},
		})
	}
	return out
}

func exemptFromRules(sf reflect.StructField) bool {
	return jsonName(sf) == "-" ||
		sf.Tag.Get("validate") == "-" ||
		strings.Split(sf.Tag.Get("docs"), ",")[0] == "skip"
}
