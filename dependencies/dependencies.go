// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package dependencies builds a read-only index over parent and
// vanilla Packs for reference resolution (spec.md §3/§4.6). Grounded on
// debug.go's multi-source, first-match-wins lookup pattern (CodeView
// versus embedded debug info), generalised here to parent-before-vanilla
// pack priority.
package dependencies

import (
	"sort"
	"sync"

	"github.com/totalwarmod/packcore/container"
	"github.com/totalwarmod/packcore/filetype"
	"github.com/totalwarmod/packcore/schema"
	"github.com/totalwarmod/packcore/table"
)

// source is one contributing Pack plus which role it plays in lookup
// priority ordering.
type source struct {
	pack     *container.Pack
	isParent bool
}

// Index is a read-only, shared-read materialisation of every
// parent/vanilla Pack a session has loaded (spec.md §4.6 ownership
// note: "Dependencies is shared-read across diagnostics"). It is never
// mutated after Build; callers who need fresh data call Build again
// and swap the returned Index.
type Index struct {
	schema *schema.Schema

	mu      sync.RWMutex // guards nothing but paranoia-proofs future mutation
	sources []source
}

// Build constructs an Index from parent packs (mod load order, highest
// priority first) and vanilla packs (lowest priority), against sch for
// decoding DB/Loc tables encountered during lookup.
func Build(sch *schema.Schema, parents, vanilla []*container.Pack) *Index {
	idx := &Index{schema: sch}
	for _, p := range parents {
		idx.sources = append(idx.sources, source{pack: p, isParent: true})
	}
	for _, p := range vanilla {
		idx.sources = append(idx.sources, source{pack: p, isParent: false})
	}
	return idx
}

// SearchOpt narrows which sources FileExists consults.
type SearchOpt func(*searchOpts)

type searchOpts struct {
	parentOnly  bool
	vanillaOnly bool
}

// ParentOnly restricts the search to parent packs.
func ParentOnly() SearchOpt { return func(o *searchOpts) { o.parentOnly = true } }

// VanillaOnly restricts the search to vanilla packs.
func VanillaOnly() SearchOpt { return func(o *searchOpts) { o.vanillaOnly = true } }

// FileExists reports whether path is present in any consulted source,
// parent packs taking priority over vanilla (spec.md §4.6).
func (idx *Index) FileExists(path string, opts ...SearchOpt) bool {
	var o searchOpts
	for _, opt := range opts {
		opt(&o)
	}
	norm := container.NormalizePath(path)
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, s := range idx.sources {
		if o.parentOnly && !s.isParent {
			continue
		}
		if o.vanillaOnly && s.isParent {
			continue
		}
		files := s.pack.FilesByPath(container.File(norm))
		if len(files) > 0 {
			return true
		}
	}
	return false
}

// DBData returns the decoded table named name, preferring parent packs
// unless fromParent is false, and consulting vanilla packs only when
// fromVanilla is true. The bool result reports whether any source
// provided the table.
func (idx *Index) DBData(name string, fromVanilla, fromParent bool) (*table.Table, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, s := range idx.sources {
		if s.isParent && !fromParent {
			continue
		}
		if !s.isParent && !fromVanilla {
			continue
		}
		for _, f := range s.pack.FilesByPath(container.Folder("db/" + name)) {
			v, err := f.Decoded(filetype.DB, filetype.Extra{Schema: idx.schema, TableName: name})
			if err != nil {
				continue
			}
			if dbv, ok := v.(*filetype.DBValue); ok {
				return dbv.Table, true
			}
		}
	}
	return nil, false
}

// Row is one enumerated candidate, tagged with the table it came from
// so InvalidReference checks can report where a candidate was found.
type Row struct {
	Table string
	Row   table.Row
}

// Enumerate returns every row of tableName across all sources, parent
// packs first, for reference-candidate resolution (spec.md §4.6).
func (idx *Index) Enumerate(tableName string) []Row {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []Row
	seen := make(map[string]bool)
	for _, s := range idx.sources {
		for _, f := range s.pack.FilesByPath(container.Folder("db/" + tableName)) {
			v, err := f.Decoded(filetype.DB, filetype.Extra{Schema: idx.schema, TableName: tableName})
			if err != nil {
				continue
			}
			dbv, ok := v.(*filetype.DBValue)
			if !ok {
				continue
			}
			for _, row := range dbv.Table.Rows {
				key := dbv.Table.CombinedKey(row)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, Row{Table: tableName, Row: row})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}
