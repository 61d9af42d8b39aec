// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"github.com/google/uuid"
	"github.com/specialistvlad/hotunit/internal/definer"
	"github.com/specialistvlad/hotunit/internal/unit"
)

// generation is one link of the definer chain.
//
// units is written only while the generation is current and only under the
// registry lock; once superseded the generation is read-only.
type generation struct {
	seq     int
	id      string
	parent  *generation
	definer *definer.Definer
	units   map[string]unit.Unit
}

func newGeneration(parent *generation, d *definer.Definer) *generation {
	g := &generation{
		id:      uuid.NewString(),
		parent:  parent,
		definer: d,
		units:   make(map[string]unit.Unit),
	}
	if parent != nil {
		g.seq = parent.seq + 1
	}
	return g
}

// resolve looks name up in g and then in each parent in turn.
func (g *generation) resolve(name string) (unit.Unit, *generation) {
	for cur := g; cur != nil; cur = cur.parent {
		if u, ok := cur.units[name]; ok {
			return u, cur
		}
	}
	return nil, nil
}

// GenerationInfo describes the current generation.
type GenerationInfo struct {
	Seq      int    `json:"seq"`
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Units    int    `json:"units"`
}

func (g *generation) info() GenerationInfo {
	info := GenerationInfo{Seq: g.seq, ID: g.id, Units: len(g.units)}
	if g.parent != nil {
		info.ParentID = g.parent.id
	}
	return info
}
