// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"github.com/totalwarmod/packcore/codec"
	"github.com/totalwarmod/packcore/schema"
	"github.com/totalwarmod/packcore/table"
)

// DBValue is a decoded DB table: header metadata plus the typed rows,
// grounded on dotnet_metadata_tables.go's per-row sequential field-read
// loop (parseMetadataModuleTable et al.), generalised here from a fixed
// Go struct per CLR table to a schema-driven field list walk.
type DBValue struct {
	GUID    string
	Table   *table.Table
}

func (v *DBValue) Kind() Kind { return DB }

// decodeDB reads: GUID (optional_string_u16), version tag (i32), row
// count (u32), then rowCount rows encoded per the chosen definition's
// raw field order. The header version must match a definition exactly
// (Schema.FindDefinition); otherwise decoding fails with
// VersionMismatchError, or SchemaMissingError when the table has no
// definitions at all. Sequence* fields recurse with a u16/u32 count
// prefix followed by that many sub-rows of the sub-definition.
func decodeDB(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)

	guid, err := cr.OptionalStringU16()
	if err != nil {
		return nil, &DecodeError{Kind: DB, Field: "guid", Cause: err}
	}
	version, err := cr.I32()
	if err != nil {
		return nil, &DecodeError{Kind: DB, Field: "version", Cause: err}
	}

	def, err := resolveDefinition(extra, version)
	if err != nil {
		return nil, &DecodeError{Kind: DB, Field: "version", Cause: err}
	}

	rowCount, err := cr.U32()
	if err != nil {
		// Bytes ended before the row count: fail, or return incomplete
		// with what we have (here, nothing) per spec.md §4.4.
		if extra.ReturnIncomplete {
			partial := &DBValue{GUID: guid, Table: table.New(extra.TableName, def)}
			return nil, &IncompleteError{Kind: DB, Partial: partial, Cause: err}
		}
		return nil, &DecodeError{Kind: DB, Field: "row_count", Cause: err}
	}

	t := table.New(extra.TableName, def)
	for i := uint32(0); i < rowCount; i++ {
		row, err := decodeRawRow(cr, def.Fields)
		if err != nil {
			if extra.ReturnIncomplete {
				partial := &DBValue{GUID: guid, Table: t}
				return nil, &IncompleteError{Kind: DB, Partial: partial, Cause: err}
			}
			return nil, &DecodeError{Kind: DB, Field: "row", Cause: err}
		}
		processedRow := applyProcessing(def, row)
		if err := t.AppendRow(processedRow); err != nil {
			return nil, &DecodeError{Kind: DB, Field: "row", Cause: err}
		}
	}

	return &DBValue{GUID: guid, Table: t}, nil
}

func resolveDefinition(extra Extra, version int32) (*schema.Definition, error) {
	if extra.Schema == nil {
		return nil, &schema.SchemaMissingError{Table: extra.TableName}
	}
	def, ok := extra.Schema.FindDefinition(extra.TableName, version)
	if ok {
		return def, nil
	}
	var known []int32
	for _, d := range extra.Schema.Definitions[extra.TableName] {
		known = append(known, d.TableVersion)
	}
	if len(known) == 0 {
		return nil, &schema.SchemaMissingError{Table: extra.TableName}
	}
	return nil, &schema.VersionMismatchError{Table: extra.TableName, Found: version, Candidates: known}
}

// decodeRawRow reads one row in raw field order (pre-processing: no
// bitwise expansion, no enum coercion, no colour merge).
func decodeRawRow(cr *codec.Reader, fields []schema.Field) (table.Row, error) {
	row := make(table.Row, len(fields))
	for i, f := range fields {
		v, err := decodeCell(cr, f)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

func decodeCell(cr *codec.Reader, f schema.Field) (table.Value, error) {
	switch f.Type {
	case schema.Boolean:
		v, err := cr.Bool()
		return table.NewBool(v), err
	case schema.F32:
		v, err := cr.F32()
		return table.NewF32(v), err
	case schema.F64:
		v, err := cr.F64()
		return table.NewF64(v), err
	case schema.I16:
		v, err := cr.I16()
		return table.NewI16(v), err
	case schema.I32:
		v, err := cr.I32()
		return table.NewI32(v), err
	case schema.I64:
		v, err := cr.I64()
		return table.NewI64(v), err
	case schema.ColourRGB:
		v, err := cr.StringColourRGB()
		return table.NewColourRGB(v), err
	case schema.StringU8:
		v, err := cr.SizedStringU8()
		return table.NewStringU8(v), err
	case schema.StringU16:
		v, err := cr.SizedStringU16()
		return table.NewStringU16(v), err
	case schema.OptionalI16:
		v, present, err := cr.OptionalI16()
		return table.NewOptionalI16(v, present), err
	case schema.OptionalI32:
		v, present, err := cr.OptionalI32()
		return table.NewOptionalI32(v, present), err
	case schema.OptionalI64:
		v, present, err := cr.OptionalI64()
		return table.NewOptionalI64(v, present), err
	case schema.OptionalStringU8:
		v, err := cr.OptionalStringU8()
		return table.NewOptionalStringU8(v), err
	case schema.OptionalStringU16:
		v, err := cr.OptionalStringU16()
		return table.NewOptionalStringU16(v), err
	case schema.SequenceU16:
		n, err := cr.U16()
		if err != nil {
			return table.Value{}, err
		}
		return decodeSequence(cr, f, int(n))
	case schema.SequenceU32:
		n, err := cr.U32()
		if err != nil {
			return table.Value{}, err
		}
		return decodeSequence(cr, f, int(n))
	default:
		return table.Value{}, &DecodeError{Kind: DB, Field: f.Name, Cause: errUnknownFieldType}
	}
}

func decodeSequence(cr *codec.Reader, f schema.Field, n int) (table.Value, error) {
	nested := f.SequenceDefinition
	sub := table.New(f.Name, nested)
	for i := 0; i < n; i++ {
		var subFields []schema.Field
		if nested != nil {
			subFields = nested.Fields
		}
		row, err := decodeRawRow(cr, subFields)
		if err != nil {
			return table.Value{}, err
		}
		var processed table.Row
		if nested != nil {
			processed = applyProcessing(nested, row)
		} else {
			processed = row
		}
		sub.Rows = append(sub.Rows, processed)
	}
	return table.NewSequence(f.Type, sub), nil
}

// applyProcessing expands a raw-order row into processed-field order:
// bitwise expansion, enum coercion (the raw integer is replaced by its
// EnumValues label as a StringU8, empty when no label matches), and
// colour-triplet merge. Pure function of (def, raw); no shared state, so
// concurrent decodes of independent rows never interfere (spec.md §5).
func applyProcessing(def *schema.Definition, raw table.Row) table.Row {
	processed := def.Processed()
	out := make(table.Row, 0, len(processed))

	var groupOrder []string
	groupComponents := map[string][]byte{}

	rawIdx := 0
	for _, f := range def.Fields {
		switch {
		case f.IsBitwise > 1:
			v := raw[rawIdx]
			rawIdx++
			for i := 0; i < f.IsBitwise; i++ {
				bit := (v.I64 >> uint(i)) & 1
				out = append(out, table.NewBool(bit != 0))
			}
		case f.IsEnum():
			v := raw[rawIdx]
			rawIdx++
			out = append(out, table.NewStringU8(enumLabel(f, v)))
		case f.IsPartOfColour != "":
			v := raw[rawIdx]
			rawIdx++
			if _, ok := groupComponents[f.IsPartOfColour]; !ok {
				groupOrder = append(groupOrder, f.IsPartOfColour)
			}
			groupComponents[f.IsPartOfColour] = append(groupComponents[f.IsPartOfColour], byte(v.I64))
		default:
			out = append(out, raw[rawIdx])
			rawIdx++
		}
	}

	for _, g := range groupOrder {
		comp := groupComponents[g]
		var rgb [3]byte
		copy(rgb[:], comp)
		out = append(out, table.NewColourRGB(hex3(rgb)))
	}
	return out
}

func hex3(b [3]byte) string {
	const d = "0123456789ABCDEF"
	out := make([]byte, 6)
	for i, c := range b {
		out[i*2] = d[c>>4]
		out[i*2+1] = d[c&0xF]
	}
	return string(out)
}

func enumLabel(f schema.Field, v table.Value) string {
	if label, ok := f.EnumValues[int(v.I64)]; ok {
		return label
	}
	return ""
}

var errUnknownFieldType = &fieldTypeError{}

type fieldTypeError struct{}

func (e *fieldTypeError) Error() string { return "unknown field type" }

// DecodeError wraps a primitive decoding failure with file-kind and
// field-name context (spec.md §7 propagation policy: "file decoders wrap
// primitive errors with file path and field name context").
type DecodeError struct {
	Kind  Kind
	Field string
	Cause error
}

func (e *DecodeError) Error() string {
	return "filetype: " + e.Kind.String() + " field " + e.Field + ": " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// encodeDB mirrors decodeDB exactly.
func encodeDB(w io.Writer, v *DBValue) error {
	cw := codec.NewWriter(w)
	if err := cw.OptionalStringU16(v.GUID); err != nil {
		return &DecodeError{Kind: DB, Field: "guid", Cause: err}
	}
	def := v.Table.Def
	if err := cw.I32(def.TableVersion); err != nil {
		return &DecodeError{Kind: DB, Field: "version", Cause: err}
	}
	if err := cw.U32(uint32(len(v.Table.Rows))); err != nil {
		return &DecodeError{Kind: DB, Field: "row_count", Cause: err}
	}
	for _, row := range v.Table.Rows {
		raw := unprocessRow(def, row)
		if err := encodeRawRow(cw, def.Fields, raw); err != nil {
			return &DecodeError{Kind: DB, Field: "row", Cause: err}
		}
	}
	return nil
}

// unprocessRow is the inverse of applyProcessing: reconstruct a raw-order
// row (bitwise ints, enum ints, colour components) from a processed row.
func unprocessRow(def *schema.Definition, processed table.Row) table.Row {
	pIdx := 0
	var colourVal map[string]string
	out := make(table.Row, 0, len(def.Fields))

	// First pass: locate each colour group's synthetic column value.
	colourVal = map[string]string{}
	groupOrder := []string{}
	seen := map[string]bool{}
	for _, f := range def.Fields {
		if f.IsPartOfColour != "" && !seen[f.IsPartOfColour] {
			seen[f.IsPartOfColour] = true
			groupOrder = append(groupOrder, f.IsPartOfColour)
		}
	}
	lastGroupIdx := len(def.Processed()) - len(groupOrder)
	for gi, g := range groupOrder {
		colourVal[g] = processed[lastGroupIdx+gi].Str
	}

	slot := map[string]int{}
	for _, f := range def.Fields {
		switch {
		case f.IsBitwise > 1:
			var acc int64
			for i := 0; i < f.IsBitwise; i++ {
				if processed[pIdx].Bool {
					acc |= 1 << uint(i)
				}
				pIdx++
			}
			out = append(out, table.NewI32(int32(acc)))
		case f.IsEnum():
			label := processed[pIdx].Str
			pIdx++
			out = append(out, table.NewI32(enumValueFor(f, label)))
		case f.IsPartOfColour != "":
			hex := colourVal[f.IsPartOfColour]
			n := slot[f.IsPartOfColour]
			slot[f.IsPartOfColour] = n + 1
			var b byte
			if len(hex) == 6 {
				b = hexPairToByte(hex[n*2 : n*2+2])
			}
			out = append(out, table.NewI32(int32(b)))
		default:
			out = append(out, processed[pIdx])
			pIdx++
		}
	}
	return out
}

func enumValueFor(f schema.Field, label string) int32 {
	for k, v := range f.EnumValues {
		if v == label {
			return int32(k)
		}
	}
	return 0
}

func hexPairToByte(s string) byte {
	var b byte
	for _, c := range s {
		b <<= 4
		switch {
		case c >= '0' && c <= '9':
			b |= byte(c - '0')
		case c >= 'A' && c <= 'F':
			b |= byte(c-'A') + 10
		case c >= 'a' && c <= 'f':
			b |= byte(c-'a') + 10
		}
	}
	return b
}

func encodeRawRow(cw *codec.Writer, fields []schema.Field, row table.Row) error {
	for i, f := range fields {
		if err := encodeCell(cw, f, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeCell(cw *codec.Writer, f schema.Field, v table.Value) error {
	switch f.Type {
	case schema.Boolean:
		return cw.Bool(v.Bool)
	case schema.F32:
		return cw.F32(float32(v.F64))
	case schema.F64:
		return cw.F64(v.F64)
	case schema.I16:
		return cw.I16(int16(v.I64))
	case schema.I32:
		return cw.I32(int32(v.I64))
	case schema.I64:
		return cw.I64(v.I64)
	case schema.ColourRGB:
		return cw.StringColourRGB(v.Str)
	case schema.StringU8:
		return cw.SizedStringU8(v.Str)
	case schema.StringU16:
		return cw.SizedStringU16(v.Str)
	case schema.OptionalI16:
		return cw.OptionalI16(int16(v.I64), v.Present)
	case schema.OptionalI32:
		return cw.OptionalI32(int32(v.I64), v.Present)
	case schema.OptionalI64:
		return cw.OptionalI64(v.I64, v.Present)
	case schema.OptionalStringU8:
		return cw.OptionalStringU8(v.Str)
	case schema.OptionalStringU16:
		return cw.OptionalStringU16(v.Str)
	case schema.SequenceU16:
		if err := cw.U16(uint16(len(v.Seq.Rows))); err != nil {
			return err
		}
		return encodeSequenceRows(cw, f, v.Seq)
	case schema.SequenceU32:
		if err := cw.U32(uint32(len(v.Seq.Rows))); err != nil {
			return err
		}
		return encodeSequenceRows(cw, f, v.Seq)
	default:
		return errUnknownFieldType
	}
}

func encodeSequenceRows(cw *codec.Writer, f schema.Field, sub *table.Table) error {
	nested := f.SequenceDefinition
	for _, row := range sub.Rows {
		var raw table.Row
		var fields []schema.Field
		if nested != nil {
			raw = unprocessRow(nested, row)
			fields = nested.Fields
		} else {
			raw = row
		}
		if err := encodeRawRow(cw, fields, raw); err != nil {
			return err
		}
	}
	return nil
}
