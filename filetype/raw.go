// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import "io"

// RawValue is the fallback for any inner file whose kind DetectKind
// could not identify: an opaque passthrough that still round-trips
// exactly, so an unrecognised file is never corrupted by being carried
// through packcore (spec.md §4.4).
type RawValue struct {
	Data []byte
}

func (v *RawValue) Kind() Kind { return Raw }

func decodeRaw(r io.ReadSeeker, extra Extra) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Kind: Raw, Field: "body", Cause: err}
	}
	return &RawValue{Data: data}, nil
}

func encodeRaw(w io.Writer, v *RawValue) error {
	_, err := w.Write(v.Data)
	return err
}
