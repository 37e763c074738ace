// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package table implements the in-memory row model: a tagged Value per
// cell, a Row as an ordered slice of Values matching a Definition's
// processed field list, and a Table owning its definition handle, name,
// and rows.
package table

import "github.com/totalwarmod/packcore/schema"

// Value is a tagged union with one active field per schema.FieldType
// variant. Only the field matching Type is meaningful; the others carry
// their zero value. Sequence variants carry a nested Table.
type Value struct {
	Type schema.FieldType

	Bool    bool
	I64     int64 // I16/I32/I64/OptionalI16/OptionalI32/OptionalI64 all normalize here
	F64     float64
	Str     string // StringU8/StringU16/OptionalStringU8/OptionalStringU16/ColourRGB
	Present bool   // meaningful only for Optional* variants
	Seq     *Table // meaningful only for SequenceU16/SequenceU32
}

// Bool* / Int* / etc. constructors keep call sites in filetype decoders
// terse and self-documenting.

func NewBool(v bool) Value { return Value{Type: schema.Boolean, Bool: v} }
func NewF32(v float32) Value { return Value{Type: schema.F32, F64: float64(v)} }
func NewF64(v float64) Value { return Value{Type: schema.F64, F64: v} }
func NewI16(v int16) Value   { return Value{Type: schema.I16, I64: int64(v)} }
func NewI32(v int32) Value   { return Value{Type: schema.I32, I64: int64(v)} }
func NewI64(v int64) Value   { return Value{Type: schema.I64, I64: v} }
func NewColourRGB(hex string) Value { return Value{Type: schema.ColourRGB, Str: hex} }
func NewStringU8(v string) Value  { return Value{Type: schema.StringU8, Str: v} }
func NewStringU16(v string) Value { return Value{Type: schema.StringU16, Str: v} }

func NewOptionalI16(v int16, present bool) Value {
	return Value{Type: schema.OptionalI16, I64: int64(v), Present: present}
}
func NewOptionalI32(v int32, present bool) Value {
	return Value{Type: schema.OptionalI32, I64: int64(v), Present: present}
}
func NewOptionalI64(v int64, present bool) Value {
	return Value{Type: schema.OptionalI64, I64: v, Present: present}
}
func NewOptionalStringU8(v string) Value {
	return Value{Type: schema.OptionalStringU8, Str: v, Present: v != ""}
}
func NewOptionalStringU16(v string) Value {
	return Value{Type: schema.OptionalStringU16, Str: v, Present: v != ""}
}
func NewSequence(typ schema.FieldType, t *Table) Value {
	return Value{Type: typ, Seq: t}
}
