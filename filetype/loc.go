// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"bytes"
	"io"

	"github.com/totalwarmod/packcore/codec"
	"github.com/totalwarmod/packcore/schema"
	"github.com/totalwarmod/packcore/table"
)

// locMagic is the fixed signature every Loc file starts with.
var locMagic = []byte("LOC\x00")

// locDefinition is the implicit two-column schema every Loc file shares:
// no schema store lookup needed, unlike DB.
var locDefinition = &schema.Definition{
	TableVersion: 1,
	Fields: []schema.Field{
		{Name: "key", Type: schema.StringU8, IsKey: true},
		{Name: "value", Type: schema.StringU16},
	},
}

// LocValue is a decoded two-column localisation table.
type LocValue struct {
	Table *table.Table
}

func (v *LocValue) Kind() Kind { return Loc }

func decodeLoc(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)
	magic, err := cr.Bytes(len(locMagic))
	if err != nil {
		return nil, &DecodeError{Kind: Loc, Field: "magic", Cause: err}
	}
	if !bytes.Equal(magic, locMagic) {
		return nil, &MagicMismatchError{Kind: Loc, Want: locMagic, Got: magic}
	}
	// The version/entry-count header word; vanilla loc files carry a
	// small fixed value here that does not gate decoding the way a DB
	// table version does.
	if _, err := cr.I32(); err != nil {
		return nil, &DecodeError{Kind: Loc, Field: "version", Cause: err}
	}
	rowCount, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: Loc, Field: "row_count", Cause: err}
	}

	name := extra.TableName
	if name == "" {
		name = "loc"
	}
	t := table.New(name, locDefinition)
	for i := uint32(0); i < rowCount; i++ {
		key, err := cr.SizedStringU8()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: Loc, Partial: &LocValue{Table: t}, Cause: err}
			}
			return nil, &DecodeError{Kind: Loc, Field: "key", Cause: err}
		}
		value, err := cr.SizedStringU16()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: Loc, Partial: &LocValue{Table: t}, Cause: err}
			}
			return nil, &DecodeError{Kind: Loc, Field: "value", Cause: err}
		}
		t.Rows = append(t.Rows, table.Row{table.NewStringU8(key), table.NewStringU16(value)})
	}
	return &LocValue{Table: t}, nil
}

func encodeLoc(w io.Writer, v *LocValue) error {
	cw := codec.NewWriter(w)
	if err := cw.Bytes(locMagic); err != nil {
		return &DecodeError{Kind: Loc, Field: "magic", Cause: err}
	}
	if err := cw.I32(1); err != nil {
		return &DecodeError{Kind: Loc, Field: "version", Cause: err}
	}
	if err := cw.U32(uint32(len(v.Table.Rows))); err != nil {
		return &DecodeError{Kind: Loc, Field: "row_count", Cause: err}
	}
	for _, row := range v.Table.Rows {
		if err := cw.SizedStringU8(row[0].Str); err != nil {
			return &DecodeError{Kind: Loc, Field: "key", Cause: err}
		}
		if err := cw.SizedStringU16(row[1].Str); err != nil {
			return &DecodeError{Kind: Loc, Field: "value", Cause: err}
		}
	}
	return nil
}
