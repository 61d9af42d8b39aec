// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package definer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/hotunit/internal/unitname"
)

// Opener opens the resource a locator points at.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// FileOpener opens local "file:" locators. It accepts the forms
// "file:/abs/path", "file:///abs/path", "file://localhost/abs/path",
// "file:rel/path" and "file:C:/path".
type FileOpener struct{}

// Open implements Opener.
func (FileOpener) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := localPath(locator)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func localPath(locator string) (string, error) {
	if !strings.HasPrefix(locator, unitname.Scheme) {
		return "", fmt.Errorf("unsupported locator %q: missing %q scheme", locator, unitname.Scheme)
	}
	rest := strings.TrimPrefix(locator, unitname.Scheme)
	if strings.HasPrefix(rest, "//") {
		host, p, _ := strings.Cut(rest[2:], "/")
		if host != "" && host != "localhost" {
			return "", fmt.Errorf("unsupported locator %q: host %q is not local", locator, host)
		}
		rest = "/" + p
	}
	if rest == "" {
		return "", fmt.Errorf("unsupported locator %q: empty path", locator)
	}
	return filepath.FromSlash(rest), nil
}
