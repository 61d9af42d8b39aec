// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import "github.com/specialistvlad/hotunit/internal/unit"

// Resolver resolves units that live below the generation chain, such as
// units compiled into the binary.
type Resolver interface {
	Resolve(name string) (unit.Unit, bool)
}

// StaticUnits is a fixed, map-backed Resolver. It must not be modified
// after it is handed to a Registry.
type StaticUnits map[string]unit.Unit

// NewStaticUnits indexes units by name.
func NewStaticUnits(units ...unit.Unit) StaticUnits {
	s := make(StaticUnits, len(units))
	for _, u := range units {
		s[u.Name()] = u
	}
	return s
}

// Resolve implements Resolver.
func (s StaticUnits) Resolve(name string) (unit.Unit, bool) {
	u, ok := s[name]
	return u, ok
}
