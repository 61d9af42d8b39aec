// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package fsutil provides file system helpers for discovering unit resources.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/hotunit/internal/unitname"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// FindUnitNames returns the dotted names of every unit resource below root,
// sorted. Files whose relative path does not form a valid unit name are
// reported in skipped.
func FindUnitNames(root string) (names []string, skipped []string, err error) {
	files, err := FindFilesByExtension(root, unitname.Suffix)
	if err != nil {
		return nil, nil, err
	}

	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, nil, err
		}
		name, ok := unitname.FromResourcePath(filepath.ToSlash(rel))
		if !ok {
			skipped = append(skipped, file)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, skipped, nil
}
