// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package table

import "github.com/totalwarmod/packcore/schema"

// Row is an ordered sequence of cell values whose types and order match
// a Definition's processed field list.
type Row []Value

// Table owns its definition handle, its table name, and its rows. Every
// row matches the processed definition (spec.md §3 Table invariant).
type Table struct {
	Name string
	Def  *schema.Definition
	Rows []Row
}

// New returns an empty Table bound to def.
func New(name string, def *schema.Definition) *Table {
	return &Table{Name: name, Def: def}
}

// AppendRow validates arity against the processed definition before
// appending, returning a *RowArityError on mismatch.
func (t *Table) AppendRow(r Row) error {
	processed := t.Def.Processed()
	if len(r) != len(processed) {
		return &RowArityError{Table: t.Name, Want: len(processed), Got: len(r)}
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// ColumnIndex returns the processed-field index of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, f := range t.Def.Processed() {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// KeyColumns returns the processed-field indexes marked is_key, in
// declared order. Bitwise/colour-derived processed fields never carry
// is_key (it lives only on the originating raw field), so this walks
// OriginalFieldFromProcessed to find the source.
func (t *Table) KeyColumns() []int {
	var keys []int
	processed := t.Def.Processed()
	for i := range processed {
		if raw, ok := t.Def.OriginalFieldFromProcessed(i); ok && t.Def.Fields[raw].IsKey {
			keys = append(keys, i)
		}
	}
	return keys
}

// CombinedKey concatenates a row's key-column display values, the
// comparison basis for DuplicatedCombinedKeys (spec.md §4.6/§8).
func (t *Table) CombinedKey(row Row) string {
	var out string
	for _, col := range t.KeyColumns() {
		out += DataToString(row[col])
		out += "\x00"
	}
	return out
}
