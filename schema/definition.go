// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package schema

import "sync"

// Definition is one versioned field list for a DB table. TableVersion is
// signed; negative values denote placeholder/unknown-origin definitions
// (spec.md §3).
type Definition struct {
	TableVersion     int32   `yaml:"version"`
	Fields           []Field `yaml:"fields"`
	LocalisedFields  []Field `yaml:"localised_fields,omitempty"`

	mu        sync.Mutex
	processed []Field // memoised
	dirty     bool
}

// Equal reports structural equality between two definitions.
func (d *Definition) Equal(o *Definition) bool {
	if o == nil {
		return false
	}
	if d.TableVersion != o.TableVersion || len(d.Fields) != len(o.Fields) ||
		len(d.LocalisedFields) != len(o.LocalisedFields) {
		return false
	}
	for i := range d.Fields {
		if !d.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	for i := range d.LocalisedFields {
		if !d.LocalisedFields[i].Equal(o.LocalisedFields[i]) {
			return false
		}
	}
	return true
}

// invalidate clears the memoised processed-field list; called whenever
// Fields is mutated through a setter. Definitions built directly as a
// struct literal (common in tests and the store loader) invalidate
// lazily on first Processed() call since dirty starts false but
// processed starts nil.
func (d *Definition) invalidate() {
	d.mu.Lock()
	d.dirty = true
	d.mu.Unlock()
}

// SetFields replaces the raw field list and invalidates the memoised
// processed-field list.
func (d *Definition) SetFields(fields []Field) {
	d.Fields = fields
	d.invalidate()
}

// colourGroupName derives the synthetic colour column name for a group
// key: the field's basename with its last "_suffix" replaced by "_hex",
// or "unnamed colour group" when the field name has no underscore.
func colourGroupName(fieldName string) string {
	idx := -1
	for i := len(fieldName) - 1; i >= 0; i-- {
		if fieldName[i] == '_' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "unnamed colour group"
	}
	return fieldName[:idx] + "_hex"
}

// Processed computes the derived field list spec.md §3/§4.2 describes:
//  1. bitwise fields expand into N booleans named "{name}_1".."{name}_N"
//  2. enum fields coerce to a single StringU8 with the same name
//  3. fields tagged is_part_of_colour=g are removed from their position
//     and one synthetic ColourRGB field per group is appended, in group
//     first-seen order
//
// The result is memoised per *Definition; pure and deterministic given
// the current Fields.
func (d *Definition) Processed() []Field {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.processed != nil && !d.dirty {
		return d.processed
	}
	d.processed = computeProcessed(d.Fields)
	d.dirty = false
	return d.processed
}

func computeProcessed(fields []Field) []Field {
	var out []Field
	var groupOrder []string
	seenGroup := map[string]bool{}

	for _, f := range fields {
		switch {
		case f.IsBitwise > 1:
			for i := 1; i <= f.IsBitwise; i++ {
				out = append(out, Field{
					Name: bitwiseName(f.Name, i),
					Type: Boolean,
					CaOrder: f.CaOrder,
				})
			}
		case f.IsEnum():
			nf := f
			nf.Type = StringU8
			out = append(out, nf)
		case f.IsPartOfColour != "":
			if !seenGroup[f.IsPartOfColour] {
				seenGroup[f.IsPartOfColour] = true
				groupOrder = append(groupOrder, f.IsPartOfColour)
			}
		default:
			out = append(out, f)
		}
	}

	for _, g := range groupOrder {
		out = append(out, Field{
			Name: colourGroupNameForGroup(fields, g),
			Type: ColourRGB,
		})
	}
	return out
}

// colourGroupNameForGroup finds the first field belonging to group g and
// derives the synthetic column name from its field name.
func colourGroupNameForGroup(fields []Field, group string) string {
	for _, f := range fields {
		if f.IsPartOfColour == group {
			return colourGroupName(f.Name)
		}
	}
	return "unnamed colour group"
}

func bitwiseName(name string, i int) string {
	return name + "_" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// OriginalFieldFromProcessed reverses the processed-index mapping for
// non-combined fields (bitwise expansions and colour groups have no
// single originating raw field and return ok=false).
func (d *Definition) OriginalFieldFromProcessed(i int) (raw int, ok bool) {
	processed := d.Processed()
	if i < 0 || i >= len(processed) {
		return 0, false
	}
	name := processed[i].Name
	for gi, g := range d.Fields {
		switch {
		case g.IsBitwise > 1:
			continue
		case g.IsPartOfColour != "":
			continue
		default:
			if g.Name == name {
				return gi, true
			}
		}
	}
	return 0, false
}
