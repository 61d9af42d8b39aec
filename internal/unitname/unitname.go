// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package unitname holds the addressing rules that map a base path and a
// dotted unit name onto a resource locator, and back.
//
// The rules are part of the on-disk contract and must not change:
//
//	BasePath(`C:\plugins`)    == "file:C:/plugins/"
//	ResourcePath("a.b.Foo")   == "a/b/Foo.unit"
//	Symbolic("a.b.Foo.unit")  == "a.b.Foo"
package unitname

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	// Scheme is the local-resource scheme every locator carries.
	Scheme = "file:"
	// Suffix is appended to the nested path of a unit resource.
	Suffix = ".unit"
	// Separator is the canonical path separator inside locators.
	Separator = "/"
)

// segmentRegex matches a single identifier segment of a dotted name.
var segmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$-]*$`)

// BasePath normalizes a base location: backslashes become forward slashes,
// the file scheme is prefixed when missing and a single trailing separator
// is appended when missing.
func BasePath(base string) string {
	p := strings.ReplaceAll(base, `\`, Separator)
	if !strings.HasPrefix(p, Scheme) {
		p = Scheme + p
	}
	if !strings.HasSuffix(p, Separator) {
		p += Separator
	}
	return p
}

// ResourcePath converts a dotted name into its nested resource path.
func ResourcePath(name string) string {
	return strings.ReplaceAll(name, ".", Separator) + Suffix
}

// Locator joins the normalized base path and the resource path of name.
func Locator(base, name string) string {
	return BasePath(base) + ResourcePath(name)
}

// Symbolic strips a trailing unit suffix from name. It is the name handed to
// the runtime when a unit is defined.
func Symbolic(name string) string {
	if strings.HasSuffix(name, Suffix) {
		return name[:strings.LastIndex(name, ".")]
	}
	return name
}

// FromResourcePath is the inverse of ResourcePath for slash-separated
// relative paths such as "a/b/Foo.unit". It reports false for paths that do
// not carry the unit suffix or do not form a valid name.
func FromResourcePath(rel string) (string, bool) {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, `\`, Separator)), "./")
	if !strings.HasSuffix(rel, Suffix) {
		return "", false
	}
	name := strings.ReplaceAll(strings.TrimSuffix(rel, Suffix), Separator, ".")
	if Validate(name) != nil {
		return "", false
	}
	return name, true
}

// Validate checks that name is a non-empty dotted identifier such as
// "a.b.Foo". A trailing unit suffix is accepted.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("unit name cannot be empty")
	}
	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return fmt.Errorf("unit name %q contains an empty segment", name)
		}
		if !segmentRegex.MatchString(segment) {
			return fmt.Errorf("invalid segment %q in unit name %q", segment, name)
		}
	}
	return nil
}
