// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/hotunit/internal/builtin"
	"github.com/specialistvlad/hotunit/internal/ctxlog"
	"github.com/specialistvlad/hotunit/internal/fsutil"
	"github.com/specialistvlad/hotunit/internal/registry"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// ErrNotFetched is returned when a unit resource could not be read from the
// search path. The underlying I/O error is logged, not returned.
var ErrNotFetched = errors.New("could not be fetched")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	httpServer *http.Server
	stats      stats
}

// stats is updated by the registry hook.
type stats struct {
	loaded    atomic.Int64
	failed    atomic.Int64
	rotations atomic.Int64
	unloaded  atomic.Int64
}

// Stats is a snapshot of registry activity since the App was created.
type Stats struct {
	Loaded    int64 `json:"loaded"`
	Failed    int64 `json:"failed"`
	Rotations int64 `json:"rotations"`
	Unloaded  int64 `json:"unloaded"`
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger and registry, backed by the
// built-in units. Extra registry options are applied after the App's own.
func NewApp(logW io.Writer, cfg *Config, opts ...registry.Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	a := &App{
		ctx:    ctxlog.WithLogger(context.Background(), logger),
		logger: logger,
		config: cfg,
	}

	regOpts := []registry.Option{
		registry.WithLogger(logger),
		registry.WithHook(a.record),
	}
	if base, err := builtin.Resolver(); err != nil {
		logger.Error("Built-in units are unavailable.", "error", err)
	} else {
		regOpts = append(regOpts, registry.WithBase(base))
	}
	regOpts = append(regOpts, opts...)
	a.registry = registry.New(regOpts...)
	logger.Debug("Registry created.", "search_path", cfg.SearchPath)

	return a
}

func (a *App) record(ev registry.Event) {
	switch ev.Kind {
	case registry.EventLoaded:
		a.stats.loaded.Add(1)
	case registry.EventFailed:
		a.stats.failed.Add(1)
	case registry.EventRotated:
		a.stats.rotations.Add(1)
	case registry.EventUnloaded:
		a.stats.unloaded.Add(1)
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Stats returns a snapshot of registry activity.
func (a *App) Stats() Stats {
	return Stats{
		Loaded:    a.stats.loaded.Load(),
		Failed:    a.stats.failed.Load(),
		Rotations: a.stats.rotations.Load(),
		Unloaded:  a.stats.unloaded.Load(),
	}
}

// Preload loads the configured units, or every unit found under the search
// path when none are configured. Units that fail to define are reported
// together; the others stay loaded. It returns how many units were loaded.
func (a *App) Preload(ctx context.Context) (int, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx, a.logger)

	names := a.config.Preload
	if len(names) == 0 {
		found, skipped, err := fsutil.FindUnitNames(a.config.SearchPath)
		if err != nil {
			return 0, fmt.Errorf("failed to scan search path %s: %w", a.config.SearchPath, err)
		}
		for _, file := range skipped {
			logger.Warn("Skipping unit file with an invalid name.", "file", file)
		}
		names = found
	}
	if len(names) == 0 {
		logger.Warn("No units to preload.", "search_path", a.config.SearchPath)
		return 0, nil
	}

	var errs []error
	loaded := 0
	for _, name := range names {
		u, err := a.registry.LoadFromPath(ctx, a.config.SearchPath, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if u == nil {
			errs = append(errs, fmt.Errorf("unit %q %w from %s", name, ErrNotFetched, a.config.SearchPath))
			continue
		}
		loaded++
	}

	logger.Info("Units preloaded.", "loaded", loaded, "failed", len(errs), "generation", a.registry.Generation().Seq)
	return loaded, errors.Join(errs...)
}

// Reload fetches name again from the search path.
func (a *App) Reload(ctx context.Context, name string) (unit.Unit, error) {
	u, err := a.registry.LoadFromPath(a.withLogger(ctx), a.config.SearchPath, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("unit %q %w from %s", name, ErrNotFetched, a.config.SearchPath)
	}
	return u, nil
}

// Unload hides name from Call until it is reloaded.
func (a *App) Unload(ctx context.Context, name string) error {
	return a.registry.Unload(a.withLogger(ctx), name)
}

// Call resolves name by name only and evaluates one of its exports.
func (a *App) Call(ctx context.Context, name, export string, args map[string]cty.Value) (cty.Value, error) {
	ctx = a.withLogger(ctx)
	u, err := a.registry.LoadByName(ctx, name)
	if err != nil {
		return cty.NilVal, err
	}
	ctxlog.FromContext(ctx, a.logger).Debug("Calling unit export.", "unit", name, "export", export)
	return u.Call(ctx, export, args)
}

func (a *App) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		return a.ctx
	}
	return ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx, a.logger))
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
