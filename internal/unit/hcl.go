// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package unit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// inputRoot is the only variable root export expressions may reference.
const inputRoot = "input"

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "unit", LabelNames: []string{"name"}},
	},
}

var unitBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "exports"},
	},
}

var inputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
	},
}

// HCLRuntime compiles HCL unit manifests. It holds no state and is safe for
// concurrent use.
type HCLRuntime struct{}

// NewHCLRuntime returns the default runtime.
func NewHCLRuntime() *HCLRuntime {
	return &HCLRuntime{}
}

// Define parses payload and returns the unit it declares. The unit block's
// label must equal name.
func (rt *HCLRuntime) Define(name string, payload []byte) (Unit, error) {
	u, diags := compile(name, payload)
	if diags.HasErrors() {
		return nil, &DefinitionError{Name: name, Diags: diags}
	}
	return u, nil
}

// input is a parsed `input` block.
type input struct {
	name        string
	ty          cty.Type
	description string
	def         *cty.Value
}

func compile(name string, payload []byte) (*hclUnit, hcl.Diagnostics) {
	file, diags := hclsyntax.ParseConfig(payload, name+".unit", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	content, contentDiags := file.Body.Content(rootSchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	block, blockDiags := findUniqueBlock(content.Blocks, "unit")
	diags = append(diags, blockDiags...)
	if blockDiags.HasErrors() {
		return nil, diags
	}
	if block == nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing unit block",
			Detail:   "A unit payload must contain exactly one \"unit\" block.",
			Subject:  file.Body.MissingItemRange().Ptr(),
		})
		return nil, diags
	}
	if declared := block.Labels[0]; declared != name {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unit name mismatch",
			Detail:   fmt.Sprintf("The payload declares unit %q but was defined as %q.", declared, name),
			Subject:  block.LabelRanges[0].Ptr(),
		})
		return nil, diags
	}

	body, bodyDiags := block.Body.Content(unitBodySchema)
	diags = append(diags, bodyDiags...)
	if bodyDiags.HasErrors() {
		return nil, diags
	}

	u := &hclUnit{
		name:    name,
		digest:  digest(payload),
		exports: make(map[string]hcl.Expression),
	}

	if attr, exists := body.Attributes["description"]; exists {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &u.description)...)
	}

	inputs, inputDiags := parseInputs(body.Blocks.OfType("input"))
	diags = append(diags, inputDiags...)
	u.inputs = inputs

	exportsBlock, exportsDiags := findUniqueBlock(body.Blocks, "exports")
	diags = append(diags, exportsDiags...)
	if exportsBlock == nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing exports block",
			Detail:   fmt.Sprintf("Unit %q must declare an \"exports\" block.", name),
			Subject:  block.Body.MissingItemRange().Ptr(),
		})
		return nil, diags
	}

	exports, exportDiags := parseExports(exportsBlock, inputs)
	diags = append(diags, exportDiags...)
	u.exports = exports

	if diags.HasErrors() {
		return nil, diags
	}
	return u, diags
}

// findUniqueBlock returns the single block of the given type, or nil. More
// than one block of that type is an error.
func findUniqueBlock(blocks hcl.Blocks, blockType string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks.OfType(blockType) {
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + blockType + "\" block",
				Detail:   "Only one \"" + blockType + "\" block is allowed.",
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		found = block
	}
	return found, diags
}

func parseInputs(blocks hcl.Blocks) (map[string]*input, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	inputs := make(map[string]*input)

	for _, block := range blocks {
		inputName := block.Labels[0]
		if _, exists := inputs[inputName]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate input definition",
				Detail:   fmt.Sprintf("An input named '%s' has already been defined.", inputName),
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}

		content, contentDiags := block.Body.Content(inputBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all input blocks.",
				Subject:  block.Body.MissingItemRange().Ptr(),
			})
			continue
		}

		ty, typeDiags := typeexpr.TypeConstraint(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		in := &input{name: inputName, ty: ty}

		if attr, exists := content.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &in.description)...)
		}

		if attr, exists := content.Attributes["default"]; exists {
			// Defaults must be literal values.
			val, valDiags := attr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			converted, err := convert.Convert(val, ty)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value type",
					Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s': %s.", inputName, typeexpr.TypeString(ty), err),
					Subject:  attr.Expr.Range().Ptr(),
				})
				continue
			}
			in.def = &converted
		}

		inputs[inputName] = in
	}

	return inputs, diags
}

func parseExports(block *hcl.Block, inputs map[string]*input) (map[string]hcl.Expression, hcl.Diagnostics) {
	exports := make(map[string]hcl.Expression)

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return exports, diags
	}
	if len(attrs) == 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Empty exports block",
			Detail:   "A unit must export at least one value.",
			Subject:  block.DefRange.Ptr(),
		})
		return exports, diags
	}

	for name, attr := range attrs {
		diags = append(diags, checkReferences(attr.Expr, inputs)...)
		diags = append(diags, checkFunctions(attr.Expr)...)
		exports[name] = attr.Expr
	}
	return exports, diags
}

// checkReferences rejects any variable that is not rooted at a declared input.
func checkReferences(expr hcl.Expression, inputs map[string]*input) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != inputRoot {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported reference",
				Detail:   fmt.Sprintf("Exports may only reference %q, got %q.", inputRoot, traversal.RootName()),
				Subject:  traversal.SourceRange().Ptr(),
			})
			continue
		}
		if len(traversal) < 2 {
			continue
		}
		var ref string
		switch step := traversal[1].(type) {
		case hcl.TraverseAttr:
			ref = step.Name
		case hcl.TraverseIndex:
			if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
				ref = step.Key.AsString()
			}
		}
		if _, ok := inputs[ref]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reference to undeclared input",
				Detail:   fmt.Sprintf("No input named %q is declared in this unit.", ref),
				Subject:  traversal.SourceRange().Ptr(),
			})
		}
	}
	return diags
}

// checkFunctions rejects calls to functions outside the unit library.
func checkFunctions(expr hcl.Expression) hcl.Diagnostics {
	syntaxExpr, ok := expr.(hclsyntax.Expression)
	if !ok {
		return nil
	}
	return hclsyntax.VisitAll(syntaxExpr, func(node hclsyntax.Node) hcl.Diagnostics {
		call, ok := node.(*hclsyntax.FunctionCallExpr)
		if !ok {
			return nil
		}
		if _, known := functions[call.Name]; known {
			return nil
		}
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail:   fmt.Sprintf("There is no function named %q.", call.Name),
			Subject:  call.NameRange.Ptr(),
		}}
	})
}

func digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
