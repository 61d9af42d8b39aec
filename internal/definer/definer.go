// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package definer turns a resource locator or a raw payload into a defined
// unit. A Definer knows nothing about generations or locking; it only owns
// the fetch-and-define step and the link to the definer it was chained from.
package definer

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/hotunit/internal/ctxlog"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/specialistvlad/hotunit/internal/unitname"
)

// Definer fetches and defines units through a Runtime.
type Definer struct {
	parent  *Definer
	runtime unit.Runtime
	opener  Opener
	logger  *slog.Logger
}

// New creates a Definer chained to parent (nil for the root). A nil runtime
// selects the HCL runtime and a nil opener selects FileOpener.
func New(parent *Definer, rt unit.Runtime, opener Opener, logger *slog.Logger) *Definer {
	if rt == nil {
		rt = unit.NewHCLRuntime()
	}
	if opener == nil {
		opener = FileOpener{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Definer{
		parent:  parent,
		runtime: rt,
		opener:  opener,
		logger:  logger,
	}
}

// Parent returns the definer this one was chained from.
func (d *Definer) Parent() *Definer {
	return d.parent
}

// DefineFromPath fetches name relative to base and defines it.
//
// I/O failures are logged and reported as a nil unit with a nil error.
// Definition failures are returned unchanged.
func (d *Definer) DefineFromPath(ctx context.Context, base, name string) (unit.Unit, error) {
	locator := unitname.Locator(base, name)
	ctx = ctxlog.With(ctx, d.logger, "unit", name, "locator", locator)
	logger := ctxlog.FromContext(ctx, d.logger)
	logger.Debug("Fetching unit resource.")

	payload, err := d.fetch(ctx, locator)
	if err != nil {
		logger.Error("Failed to fetch unit resource.", "error", err)
		return nil, nil
	}

	return d.define(logger, payload, name)
}

// DefineFromBytes defines name directly from payload.
func (d *Definer) DefineFromBytes(ctx context.Context, payload []byte, name string) (unit.Unit, error) {
	ctx = ctxlog.With(ctx, d.logger, "unit", name)
	return d.define(ctxlog.FromContext(ctx, d.logger), payload, name)
}

func (d *Definer) fetch(ctx context.Context, locator string) ([]byte, error) {
	rc, err := d.opener.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// define hands payload to the runtime. logger already carries the unit name.
func (d *Definer) define(logger *slog.Logger, payload []byte, name string) (unit.Unit, error) {
	u, err := d.runtime.Define(unitname.Symbolic(name), payload)
	if err != nil {
		logger.Debug("Unit definition rejected.", "error", err)
		return nil, err
	}
	logger.Debug("Unit defined.", "bytes", len(payload))
	return u, nil
}
