// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package builtin holds the units compiled into the binary. They are served
// below every generation, so a unit on the search path with the same name
// shadows them.
package builtin

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/specialistvlad/hotunit/internal/registry"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/specialistvlad/hotunit/internal/unitname"
)

//go:embed units
var files embed.FS

const root = "units"

// Define compiles every embedded unit with rt.
func Define(rt unit.Runtime) ([]unit.Unit, error) {
	var units []unit.Unit
	err := fs.WalkDir(files, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != unitname.Suffix {
			return err
		}
		rel := p[len(root)+1:]
		name, ok := unitname.FromResourcePath(rel)
		if !ok {
			return fmt.Errorf("built-in unit %s has an invalid name", p)
		}
		payload, err := files.ReadFile(p)
		if err != nil {
			return err
		}
		u, err := rt.Define(name, payload)
		if err != nil {
			return err
		}
		units = append(units, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// Resolver returns the built-in units compiled with the HCL runtime. The
// result is computed once.
var Resolver = sync.OnceValues(func() (registry.StaticUnits, error) {
	units, err := Define(unit.NewHCLRuntime())
	if err != nil {
		return nil, err
	}
	return registry.NewStaticUnits(units...), nil
})
