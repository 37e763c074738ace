// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// wireSchema is the YAML-serialisable shape: version + definitions keyed
// by table name, per spec.md §6 "Schema file".
type wireSchema struct {
	Version     uint16                  `yaml:"version"`
	Definitions map[string][]*Definition `yaml:"definitions"`
}

// Load reads a schema's text representation, migrating it through the
// upgrade chain if its structural version is older than
// CurrentStructuralVersion.
func Load(r io.Reader) (*Schema, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadBytes(raw)
}

// LoadBytes is Load over an in-memory buffer, used by the upgrade chain
// and by callers that already have the bytes (e.g. from a Pack's
// schemas/ cache file, an external collaborator's concern).
func LoadBytes(raw []byte) (*Schema, error) {
	var wire wireSchema
	if err := yaml.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if wire.Version < CurrentStructuralVersion {
		return upgrade(wire)
	}
	return &Schema{Version: wire.Version, Definitions: wire.Definitions}, nil
}

// Save writes s's text representation, sorting each table's definition
// list by TableVersion descending first (spec.md §3/§6/§8 invariant).
func Save(w io.Writer, s *Schema) error {
	wire := wireSchema{Version: s.Version, Definitions: map[string][]*Definition{}}
	for table := range s.Definitions {
		wire.Definitions[table] = s.DefinitionsByTableName(table)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(wire)
}

// SortedTableNames is a convenience for deterministic iteration (used by
// Save's tests and by diagnostics when it needs every table in the
// schema, e.g. for OutdatedTable comparisons against vanilla).
func (s *Schema) SortedTableNames() []string {
	names := make([]string, 0, len(s.Definitions))
	for t := range s.Definitions {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// upgradeFunc migrates a schema from one structural version to the next.
type upgradeFunc func(wireSchema) (wireSchema, error)

// upgrades is keyed by the version a schema is migrating *from*. Real
// per-version migrations get added here as the structural format
// evolves; the chain currently holds one step, 0 -> 1 (upgradeV0ToV1),
// exercised by TestStoreLoadUpgradesOlderStructuralVersion in
// schema_test.go.
var upgrades = map[uint16]upgradeFunc{
	0: upgradeV0ToV1,
}

func upgradeV0ToV1(w wireSchema) (wireSchema, error) {
	w.Version = 1
	return w, nil
}

func upgrade(w wireSchema) (*Schema, error) {
	for w.Version < CurrentStructuralVersion {
		fn, ok := upgrades[w.Version]
		if !ok {
			return nil, &UnknownStructuralVersionError{Version: w.Version}
		}
		next, err := fn(w)
		if err != nil {
			return nil, err
		}
		w = next
	}
	return &Schema{Version: w.Version, Definitions: w.Definitions}, nil
}
