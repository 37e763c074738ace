// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import "io"

// ImageValue is an opaque image asset (DDS, PNG, TGA, ...): packcore
// exposes its bytes and a cheap format tag read from the detected
// magic, but does not decode pixels — a render preview is a Non-goal
// (spec.md §4.4/§6).
type ImageValue struct {
	Format string // "png", "dds", "jpg", "" when unrecognised
	Data   []byte
}

func (v *ImageValue) Kind() Kind { return Image }

func decodeImage(r io.ReadSeeker, extra Extra) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Kind: Image, Field: "body", Cause: err}
	}
	format := ""
	for _, m := range imageMagics {
		if len(data) >= len(m[0]) && string(data[:len(m[0])]) == string(m[0]) {
			format = string(m[1])
			break
		}
	}
	return &ImageValue{Format: format, Data: data}, nil
}

func encodeImage(w io.Writer, v *ImageValue) error {
	_, err := w.Write(v.Data)
	return err
}
