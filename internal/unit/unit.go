// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package unit

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrDefinition is matched by every *DefinitionError.
	ErrDefinition = errors.New("unit: definition failed")
	// ErrUnknownExport is returned by Call for an export the unit does not declare.
	ErrUnknownExport = errors.New("unit: unknown export")
	// ErrMissingInput is returned by Call when a required input has no value.
	ErrMissingInput = errors.New("unit: missing required input")
	// ErrUnknownInput is returned by Call for an argument the unit does not declare.
	ErrUnknownInput = errors.New("unit: unknown input")
)

// Unit is a defined, callable code unit.
type Unit interface {
	// Name is the symbolic dotted name the unit was defined under.
	Name() string
	// Info returns a serializable summary of the unit.
	Info() Info
	// Call evaluates the named export with the given arguments.
	Call(ctx context.Context, export string, args map[string]cty.Value) (cty.Value, error)
}

// Runtime defines units from raw payloads.
type Runtime interface {
	Define(name string, payload []byte) (Unit, error)
}

// Info is the serializable summary of a unit.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Inputs      []InputInfo `json:"inputs,omitempty"`
	Exports     []string    `json:"exports"`
	Digest      string      `json:"digest"`
}

// InputInfo describes one declared input.
type InputInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// DefinitionError reports a payload that could not be turned into a unit.
type DefinitionError struct {
	Name  string
	Diags hcl.Diagnostics
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("unit: cannot define %q: %s", e.Name, e.Diags.Error())
}

// Unwrap lets callers match with errors.Is(err, ErrDefinition).
func (e *DefinitionError) Unwrap() error {
	return ErrDefinition
}
