package hcl

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// entriesFromExpr evaluates a table's `entries` attribute, which must be an
// object or map, into plain strings.
func entriesFromExpr(expr hcl.Expression) (map[string]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid entries: %w", diags)
	}
	if val.IsNull() {
		return nil, errors.New("entries is required")
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("entries must be an object, got %s", ty.FriendlyName())
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("entries contain unknown values")
	}

	out := make(map[string]string, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		s, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", k.AsString(), err)
		}
		out[k.AsString()] = s
	}
	return out, nil
}

// toString converts a primitive cty value into its string form.
func toString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.Type().IsPrimitiveType() {
		return "", fmt.Errorf("value must be a string, number or bool, got %s", v.Type().FriendlyName())
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("unable to convert to string: %w", err)
	}
	return sv.AsString(), nil
}
