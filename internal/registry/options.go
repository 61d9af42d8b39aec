// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"log/slog"

	"github.com/specialistvlad/hotunit/internal/definer"
	"github.com/specialistvlad/hotunit/internal/unit"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used when the call context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRuntime sets the runtime every generation defines units with.
func WithRuntime(rt unit.Runtime) Option {
	return func(r *Registry) {
		r.runtime = rt
	}
}

// WithOpener sets the opener every generation fetches resources with.
func WithOpener(opener definer.Opener) Option {
	return func(r *Registry) {
		r.opener = opener
	}
}

// WithBase sets the resolver consulted after the whole generation chain.
func WithBase(base Resolver) Option {
	return func(r *Registry) {
		r.base = base
	}
}

// WithHook registers fn to be called after every load, rotation and
// unload. Hooks run outside the registry lock, in registration order.
func WithHook(fn func(Event)) Option {
	return func(r *Registry) {
		r.hooks = append(r.hooks, fn)
	}
}

// EventKind names what happened to a unit name.
type EventKind string

const (
	EventRotated  EventKind = "rotated"
	EventLoaded   EventKind = "loaded"
	EventFailed   EventKind = "failed"
	EventUnloaded EventKind = "unloaded"
)

// Event is delivered to hooks.
type Event struct {
	Kind       EventKind
	Name       string
	Generation int
}
