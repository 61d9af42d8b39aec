// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package unit

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclUnit is a unit compiled from an HCL manifest. It is immutable after
// compile returns.
type hclUnit struct {
	name        string
	description string
	digest      string
	inputs      map[string]*input
	exports     map[string]hcl.Expression
}

func (u *hclUnit) Name() string {
	return u.name
}

func (u *hclUnit) Info() Info {
	info := Info{
		Name:        u.name,
		Description: u.description,
		Exports:     sortedKeys(u.exports),
		Digest:      u.digest,
	}
	for _, name := range sortedKeys(u.inputs) {
		in := u.inputs[name]
		info.Inputs = append(info.Inputs, InputInfo{
			Name:     name,
			Type:     typeexpr.TypeString(in.ty),
			Required: in.def == nil,
		})
	}
	return info
}

// Call evaluates export against args. Arguments are converted to the
// declared input types; missing optional inputs take their defaults.
func (u *hclUnit) Call(ctx context.Context, export string, args map[string]cty.Value) (cty.Value, error) {
	if err := ctx.Err(); err != nil {
		return cty.NilVal, err
	}

	expr, ok := u.exports[export]
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q in unit %q", ErrUnknownExport, export, u.name)
	}

	bound, err := u.bind(args)
	if err != nil {
		return cty.NilVal, err
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{inputRoot: cty.ObjectVal(bound)},
		Functions: functions,
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("unit %q: evaluating export %q: %w", u.name, export, diags)
	}
	return val, nil
}

func (u *hclUnit) bind(args map[string]cty.Value) (map[string]cty.Value, error) {
	for name := range args {
		if _, ok := u.inputs[name]; !ok {
			return nil, fmt.Errorf("%w: %q in unit %q", ErrUnknownInput, name, u.name)
		}
	}

	bound := make(map[string]cty.Value, len(u.inputs))
	for name, in := range u.inputs {
		val, given := args[name]
		if !given {
			if in.def == nil {
				return nil, fmt.Errorf("%w: %q in unit %q", ErrMissingInput, name, u.name)
			}
			bound[name] = *in.def
			continue
		}
		converted, err := convert.Convert(val, in.ty)
		if err != nil {
			return nil, fmt.Errorf("unit %q: input %q must be %s: %w", u.name, name, typeexpr.TypeString(in.ty), err)
		}
		bound[name] = converted
	}
	return bound, nil
}
