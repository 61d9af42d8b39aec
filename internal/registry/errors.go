// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("registry: unit not found")
	// ErrInvalidName is returned for names that are not dotted identifiers.
	ErrInvalidName = errors.New("registry: invalid unit name")
)

// NotFoundError is returned by LoadByName.
type NotFoundError struct {
	Name string
	// Unloaded is set when the name was administratively unloaded, as
	// opposed to never defined.
	Unloaded bool
}

func (e *NotFoundError) Error() string {
	if e.Unloaded {
		return fmt.Sprintf("registry: unit %q is unloaded", e.Name)
	}
	return fmt.Sprintf("registry: unit %q not found", e.Name)
}

// Unwrap lets callers match with errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
