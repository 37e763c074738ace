// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"github.com/totalwarmod/packcore/codec"
)

// UnitVariantEntry is one variant of a category: a mesh/texture pairing
// plus an opaque per-variant value whose meaning differs across game
// versions (spec.md §4.4).
type UnitVariantEntry struct {
	MeshFile      string
	TextureFolder string
	UnknownValue  uint16
}

// UnitVariantCategory groups variants under an id/name, grounded on
// boundimports.go's descriptor-array-of-descriptor-array shape (bound
// import descriptors, each with a list of forwarder refs).
type UnitVariantCategory struct {
	ID       int32
	Name     string
	Variants []UnitVariantEntry
}

// UnitVariantValue is a versioned record whose layout differs between
// game versions: an ordered list of categories, each with an ordered
// list of variants (spec.md §4.4).
type UnitVariantValue struct {
	Version    uint32
	Categories []UnitVariantCategory
}

func (v *UnitVariantValue) Kind() Kind { return UnitVariant }

func decodeUnitVariant(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)
	version, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: UnitVariant, Field: "version", Cause: err}
	}
	catCount, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: UnitVariant, Field: "category_count", Cause: err}
	}

	v := &UnitVariantValue{Version: version}
	for i := uint32(0); i < catCount; i++ {
		cat, err := decodeUnitVariantCategory(cr, version)
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: UnitVariant, Partial: v, Cause: err}
			}
			return nil, err
		}
		v.Categories = append(v.Categories, cat)
	}
	return v, nil
}

func decodeUnitVariantCategory(cr *codec.Reader, version uint32) (UnitVariantCategory, error) {
	var cat UnitVariantCategory
	id, err := cr.I32()
	if err != nil {
		return cat, &DecodeError{Kind: UnitVariant, Field: "id", Cause: err}
	}
	cat.ID = id
	name, err := cr.SizedStringU8()
	if err != nil {
		return cat, &DecodeError{Kind: UnitVariant, Field: "name", Cause: err}
	}
	cat.Name = name
	varCount, err := cr.U32()
	if err != nil {
		return cat, &DecodeError{Kind: UnitVariant, Field: "variant_count", Cause: err}
	}
	for i := uint32(0); i < varCount; i++ {
		mesh, err := cr.SizedStringU8()
		if err != nil {
			return cat, &DecodeError{Kind: UnitVariant, Field: "mesh_file", Cause: err}
		}
		tex, err := cr.SizedStringU8()
		if err != nil {
			return cat, &DecodeError{Kind: UnitVariant, Field: "texture_folder", Cause: err}
		}
		var unk uint16
		// Layout difference across game versions (spec.md §4.4): the
		// trailing unknown_value word was only added from version 2 on.
		if version >= 2 {
			unk, err = cr.U16()
			if err != nil {
				return cat, &DecodeError{Kind: UnitVariant, Field: "unknown_value", Cause: err}
			}
		}
		cat.Variants = append(cat.Variants, UnitVariantEntry{MeshFile: mesh, TextureFolder: tex, UnknownValue: unk})
	}
	return cat, nil
}

func encodeUnitVariant(w io.Writer, v *UnitVariantValue) error {
	cw := codec.NewWriter(w)
	if err := cw.U32(v.Version); err != nil {
		return &DecodeError{Kind: UnitVariant, Field: "version", Cause: err}
	}
	if err := cw.U32(uint32(len(v.Categories))); err != nil {
		return &DecodeError{Kind: UnitVariant, Field: "category_count", Cause: err}
	}
	for _, cat := range v.Categories {
		if err := cw.I32(cat.ID); err != nil {
			return &DecodeError{Kind: UnitVariant, Field: "id", Cause: err}
		}
		if err := cw.SizedStringU8(cat.Name); err != nil {
			return &DecodeError{Kind: UnitVariant, Field: "name", Cause: err}
		}
		if err := cw.U32(uint32(len(cat.Variants))); err != nil {
			return &DecodeError{Kind: UnitVariant, Field: "variant_count", Cause: err}
		}
		for _, e := range cat.Variants {
			if err := cw.SizedStringU8(e.MeshFile); err != nil {
				return &DecodeError{Kind: UnitVariant, Field: "mesh_file", Cause: err}
			}
			if err := cw.SizedStringU8(e.TextureFolder); err != nil {
				return &DecodeError{Kind: UnitVariant, Field: "texture_folder", Cause: err}
			}
			if v.Version >= 2 {
				if err := cw.U16(e.UnknownValue); err != nil {
					return &DecodeError{Kind: UnitVariant, Field: "unknown_value", Cause: err}
				}
			}
		}
	}
	return nil
}
