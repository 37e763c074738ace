// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"sort"
	"strings"
)

// CurrentStructuralVersion is the structural version written by Save and
// accepted without migration by Load.
const CurrentStructuralVersion uint16 = 1

// Schema is a mapping from table name (unique) to a non-empty ordered
// sequence of Definitions, plus the structural version used to gate
// upgrades (spec.md §3).
type Schema struct {
	Version     uint16
	Definitions map[string][]*Definition
}

// New returns an empty Schema at the current structural version.
func New() *Schema {
	return &Schema{
		Version:     CurrentStructuralVersion,
		Definitions: map[string][]*Definition{},
	}
}

// AddDefinition appends a definition under table, rejecting a duplicate
// TableVersion for that table (spec.md §3 invariant: distinct table
// versions per table name).
func (s *Schema) AddDefinition(table string, def *Definition) error {
	for _, existing := range s.Definitions[table] {
		if existing.TableVersion == def.TableVersion {
			return &DuplicateVersionError{Table: table, Version: def.TableVersion}
		}
	}
	s.Definitions[table] = append(s.Definitions[table], def)
	return nil
}

// DefinitionsByTableName returns the definitions for table, sorted by
// TableVersion descending (the order Save always persists in).
func (s *Schema) DefinitionsByTableName(table string) []*Definition {
	defs := append([]*Definition(nil), s.Definitions[table]...)
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].TableVersion > defs[j].TableVersion
	})
	return defs
}

// FindDefinition looks up the exact (table, version) pair.
func (s *Schema) FindDefinition(table string, version int32) (*Definition, bool) {
	for _, d := range s.Definitions[table] {
		if d.TableVersion == version {
			return d, true
		}
	}
	return nil, false
}

// VersionCandidate is one (table, version) pair offered by a dependency
// index as a plausible decode target.
type VersionCandidate struct {
	Table   string
	Version int32
}

// NewestCompatible picks the candidate with the maximum version, looks
// it up exactly in the schema, and falls back to the table's first
// definition if that exact version is not found (spec.md §4.2).
func (s *Schema) NewestCompatible(table string, candidates []VersionCandidate) (*Definition, error) {
	defs := s.Definitions[table]
	if len(defs) == 0 {
		return nil, &SchemaMissingError{Table: table}
	}

	var best *VersionCandidate
	for i := range candidates {
		c := candidates[i]
		if c.Table != table {
			continue
		}
		if best == nil || c.Version > best.Version {
			best = &c
		}
	}

	if best != nil {
		if d, ok := s.FindDefinition(table, best.Version); ok {
			return d, nil
		}
	}
	return defs[0], nil
}

// ColumnRef names a (table, column) pair that declares a reference to
// some other table's column.
type ColumnRef struct {
	Table  string
	Column string
}

// tableBaseName strips a trailing "_tables" suffix, the convention DB
// table schema names use for their folder-qualified form.
func tableBaseName(table string) string {
	return strings.TrimSuffix(table, "_tables")
}

// ReferencingColumnsForTable computes, for every processed field of every
// other table's newest definition, the set of (table, column) pairs that
// declare a reference to (targetTable, targetColumn). Deduplicated and
// sorted by table then column.
func (s *Schema) ReferencingColumnsForTable(targetTable, targetColumn string) []ColumnRef {
	base := tableBaseName(targetTable)
	seen := map[ColumnRef]bool{}
	var out []ColumnRef

	for table, defs := range s.Definitions {
		if len(defs) == 0 {
			continue
		}
		newest := defs[0]
		for _, d := range defs {
			if d.TableVersion > newest.TableVersion {
				newest = d
			}
		}
		for _, f := range newest.Processed() {
			if f.IsReference == nil {
				continue
			}
			if tableBaseName(f.IsReference.ForeignTable) != base || f.IsReference.ForeignColumn != targetColumn {
				continue
			}
			ref := ColumnRef{Table: table, Column: f.Name}
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		return out[i].Column < out[j].Column
	})
	return out
}
