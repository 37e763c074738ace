// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package table

import (
	"strconv"
	"strings"

	"github.com/totalwarmod/packcore/schema"
)

// DataToString renders a cell's canonical display form: bool as
// "true"/"false", floats as short decimal, ColourRGB as 6-hex uppercase,
// strings as-is, Sequence as a JSON-ish encoding of the nested table
// (spec.md §4.3).
func DataToString(v Value) string {
	switch v.Type {
	case schema.Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case schema.F32:
		return strconv.FormatFloat(v.F64, 'g', -1, 32)
	case schema.F64:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case schema.I16, schema.I32, schema.I64:
		return strconv.FormatInt(v.I64, 10)
	case schema.OptionalI16, schema.OptionalI32, schema.OptionalI64:
		if !v.Present {
			return ""
		}
		return strconv.FormatInt(v.I64, 10)
	case schema.ColourRGB:
		return strings.ToUpper(v.Str)
	case schema.StringU8, schema.StringU16:
		return v.Str
	case schema.OptionalStringU8, schema.OptionalStringU16:
		return v.Str
	case schema.SequenceU16, schema.SequenceU32:
		return sequenceToString(v.Seq)
	default:
		return ""
	}
}

func sequenceToString(t *Table) string {
	if t == nil {
		return "[]"
	}
	out := "["
	for ri, row := range t.Rows {
		if ri > 0 {
			out += ","
		}
		out += "{"
		for ci, cell := range row {
			if ci > 0 {
				out += ","
			}
			out += "\"" + t.Def.Processed()[ci].Name + "\":\"" + DataToString(cell) + "\""
		}
		out += "}"
	}
	out += "]"
	return out
}

// DefaultRow builds one cell per processed field of def, using each
// field's DefaultValue parsed in its own type, falling back to the
// type's zero/empty value, with booleans defaulting to unchecked unless
// DefaultValue == "true" (spec.md §4.3).
func DefaultRow(def *schema.Definition) Row {
	processed := def.Processed()
	row := make(Row, len(processed))
	for i, f := range processed {
		row[i] = defaultValue(f)
	}
	return row
}

func defaultValue(f schema.Field) Value {
	switch f.Type {
	case schema.Boolean:
		return NewBool(f.DefaultValue == "true")
	case schema.F32:
		v, _ := strconv.ParseFloat(f.DefaultValue, 32)
		return NewF32(float32(v))
	case schema.F64:
		v, _ := strconv.ParseFloat(f.DefaultValue, 64)
		return NewF64(v)
	case schema.I16:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 16)
		return NewI16(int16(v))
	case schema.I32:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 32)
		return NewI32(int32(v))
	case schema.I64:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 64)
		return NewI64(v)
	case schema.ColourRGB:
		if f.DefaultValue != "" {
			return NewColourRGB(f.DefaultValue)
		}
		return NewColourRGB("000000")
	case schema.StringU8:
		return NewStringU8(f.DefaultValue)
	case schema.StringU16:
		return NewStringU16(f.DefaultValue)
	case schema.OptionalI16:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 16)
		return NewOptionalI16(int16(v), f.DefaultValue != "")
	case schema.OptionalI32:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 32)
		return NewOptionalI32(int32(v), f.DefaultValue != "")
	case schema.OptionalI64:
		v, _ := strconv.ParseInt(f.DefaultValue, 10, 64)
		return NewOptionalI64(v, f.DefaultValue != "")
	case schema.OptionalStringU8:
		return NewOptionalStringU8(f.DefaultValue)
	case schema.OptionalStringU16:
		return NewOptionalStringU16(f.DefaultValue)
	case schema.SequenceU16, schema.SequenceU32:
		var nested *schema.Definition
		if f.SequenceDefinition != nil {
			nested = f.SequenceDefinition
		}
		t := &Table{Name: f.Name, Def: nested}
		return NewSequence(f.Type, t)
	default:
		return Value{Type: f.Type}
	}
}
