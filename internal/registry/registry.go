// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/hotunit/internal/ctxlog"
	"github.com/specialistvlad/hotunit/internal/definer"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/specialistvlad/hotunit/internal/unitname"
)

// Registry is the hot-reloading unit coordinator. The zero value is not
// usable; construct one with New.
type Registry struct {
	mu        sync.Mutex
	current   *generation
	loaded    map[string]struct{}
	unloaded  map[string]struct{}
	rotations int

	runtime unit.Runtime
	opener  definer.Opener
	base    Resolver
	logger  *slog.Logger
	hooks   []func(Event)
}

// New creates a Registry with a root generation.
func New(opts ...Option) *Registry {
	r := &Registry{
		loaded:   make(map[string]struct{}),
		unloaded: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runtime == nil {
		r.runtime = unit.NewHCLRuntime()
	}
	if r.opener == nil {
		r.opener = definer.FileOpener{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.current = newGeneration(nil, definer.New(nil, r.runtime, r.opener, r.logger))
	return r
}

// LoadFromPath fetches name relative to path and defines it in the current
// generation, rotating first if name was already loaded there.
//
// A fetch failure yields a nil unit and a nil error; the failure is logged.
// Definition failures are returned unchanged. The unloaded mark on name is
// always cleared.
//
// Bookkeeping uses the symbolic name, so "a.Foo" and "a.Foo.unit" are the
// same unit; the raw name still decides the resource locator.
func (r *Registry) LoadFromPath(ctx context.Context, path, name string) (unit.Unit, error) {
	return r.load(ctx, name, func(d *definer.Definer) (unit.Unit, error) {
		return d.DefineFromPath(ctx, path, name)
	})
}

// LoadFromBytes defines name from payload with the same bookkeeping and
// rotation rule as LoadFromPath.
func (r *Registry) LoadFromBytes(ctx context.Context, payload []byte, name string) (unit.Unit, error) {
	return r.load(ctx, name, func(d *definer.Definer) (unit.Unit, error) {
		return d.DefineFromBytes(ctx, payload, name)
	})
}

func (r *Registry) load(ctx context.Context, name string, define func(*definer.Definer) (unit.Unit, error)) (unit.Unit, error) {
	if err := unitname.Validate(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	key := unitname.Symbolic(name)
	logger := ctxlog.FromContext(ctx, r.logger)

	var events []Event
	defer func() { r.emit(events) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaded[key]; ok {
		r.rotate()
		events = append(events, Event{Kind: EventRotated, Name: key, Generation: r.current.seq})
		logger.Info("Unit name collision, rotated to a new generation.",
			"unit", key, "generation", r.current.seq, "generation_id", r.current.id)
	}
	r.loaded[key] = struct{}{}
	delete(r.unloaded, key)

	u, err := define(r.current.definer)
	if err != nil || u == nil {
		events = append(events, Event{Kind: EventFailed, Name: key, Generation: r.current.seq})
		return nil, err
	}

	r.current.units[key] = u
	events = append(events, Event{Kind: EventLoaded, Name: key, Generation: r.current.seq})
	logger.Debug("Unit loaded.", "unit", key, "generation", r.current.seq)
	return u, nil
}

// rotate chains a new generation to the current one and clears the loaded
// set. The caller must hold r.mu.
func (r *Registry) rotate() {
	parent := r.current
	r.current = newGeneration(parent, definer.New(parent.definer, r.runtime, r.opener, r.logger))
	r.loaded = make(map[string]struct{})
	r.rotations++
}

// LoadByName resolves name without fetching or rotating. It fails with a
// *NotFoundError when name is unloaded or no generation defines it.
func (r *Registry) LoadByName(ctx context.Context, name string) (unit.Unit, error) {
	if err := unitname.Validate(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := unitname.Symbolic(name)
	if _, ok := r.unloaded[key]; ok {
		return nil, &NotFoundError{Name: name, Unloaded: true}
	}

	if u, _ := r.current.resolve(key); u != nil {
		return u, nil
	}
	if r.base != nil {
		if u, ok := r.base.Resolve(key); ok {
			return u, nil
		}
	}
	ctxlog.FromContext(ctx, r.logger).Debug("Unit not found in any generation.", "unit", name)
	return nil, &NotFoundError{Name: name}
}

// Unload hides name from LoadByName. Defined units and the loaded set are
// left untouched, and the next explicit load of name clears the mark.
func (r *Registry) Unload(ctx context.Context, name string) error {
	if err := unitname.Validate(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	key := unitname.Symbolic(name)
	r.mu.Lock()
	r.unloaded[key] = struct{}{}
	seq := r.current.seq
	r.mu.Unlock()

	ctxlog.FromContext(ctx, r.logger).Info("Unit unloaded.", "unit", key)
	r.emit([]Event{{Kind: EventUnloaded, Name: key, Generation: seq}})
	return nil
}

// Generation describes the current generation.
func (r *Registry) Generation() GenerationInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.info()
}

// Rotations returns how many generations have been created after the root.
func (r *Registry) Rotations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotations
}

// Loaded returns the symbolic names loaded in the current generation, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedNames(r.loaded)
}

// Unloaded returns the symbolic names currently hidden from LoadByName, sorted.
func (r *Registry) Unloaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedNames(r.unloaded)
}

// UnitEntry is one unit reachable by name together with the generation
// that defined it.
type UnitEntry struct {
	unit.Info
	Generation int `json:"generation"`
}

// Units lists every unit LoadByName would return, newest definition first
// per name, sorted by name. Units of the base resolver are not listed.
func (r *Registry) Units() []UnitEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	var entries []UnitEntry
	for g := r.current; g != nil; g = g.parent {
		for name, u := range g.units {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			if _, hidden := r.unloaded[name]; hidden {
				continue
			}
			entries = append(entries, UnitEntry{Info: u.Info(), Generation: g.seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func (r *Registry) emit(events []Event) {
	for _, ev := range events {
		for _, hook := range r.hooks {
			hook(ev)
		}
	}
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
