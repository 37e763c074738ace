// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"github.com/totalwarmod/packcore/codec"
)

// AnimPackEntry is one inner file of a nested AnimPack directory.
type AnimPackEntry struct {
	Path string
	Data []byte
}

// AnimPackValue is a nested container with its own directory, per
// spec.md §4.4. It does not reuse container.Pack's type directly (that
// would create an import cycle, since container decodes inner files via
// this package) but mirrors the same "count, then N (path, bytes)
// entries" shape container.Pack itself uses for its own directory.
type AnimPackValue struct {
	Version uint32
	Entries []AnimPackEntry
}

func (v *AnimPackValue) Kind() Kind { return AnimPack }

func decodeAnimPack(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)
	version, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: AnimPack, Field: "version", Cause: err}
	}
	count, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: AnimPack, Field: "count", Cause: err}
	}

	v := &AnimPackValue{Version: version}
	for i := uint32(0); i < count; i++ {
		p, err := cr.StringU80Terminated()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: AnimPack, Partial: v, Cause: err}
			}
			return nil, &DecodeError{Kind: AnimPack, Field: "path", Cause: err}
		}
		size, err := cr.U32()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: AnimPack, Partial: v, Cause: err}
			}
			return nil, &DecodeError{Kind: AnimPack, Field: "size", Cause: err}
		}
		data, err := cr.Bytes(int(size))
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: AnimPack, Partial: v, Cause: err}
			}
			return nil, &DecodeError{Kind: AnimPack, Field: "data", Cause: err}
		}
		v.Entries = append(v.Entries, AnimPackEntry{Path: p, Data: data})
	}
	return v, nil
}

func encodeAnimPack(w io.Writer, v *AnimPackValue) error {
	cw := codec.NewWriter(w)
	if err := cw.U32(v.Version); err != nil {
		return &DecodeError{Kind: AnimPack, Field: "version", Cause: err}
	}
	if err := cw.U32(uint32(len(v.Entries))); err != nil {
		return &DecodeError{Kind: AnimPack, Field: "count", Cause: err}
	}
	for _, e := range v.Entries {
		if err := cw.StringU80Terminated(e.Path); err != nil {
			return &DecodeError{Kind: AnimPack, Field: "path", Cause: err}
		}
		if err := cw.U32(uint32(len(e.Data))); err != nil {
			return &DecodeError{Kind: AnimPack, Field: "size", Cause: err}
		}
		if err := cw.Bytes(e.Data); err != nil {
			return &DecodeError{Kind: AnimPack, Field: "data", Cause: err}
		}
	}
	return nil
}
