// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"golang.org/x/text/encoding/unicode"
)

// TextValue is a plain-text inner file (script, XML, Lua): bytes with a
// detected encoding, not a parsed grammar. packcore does not parse XML
// or Lua content (spec.md Non-goals); it only needs to round-trip the
// bytes and expose them for a text editor.
type TextValue struct {
	// UTF16 records whether the file carried a UTF-16LE byte-order mark;
	// Encode must reproduce it so round-tripping is bit-exact.
	UTF16 bool
	Text  string
}

func (v *TextValue) Kind() Kind { return Text }

var utf16BOM = []byte{0xFF, 0xFE}

func decodeText(r io.ReadSeeker, extra Extra) (Value, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Kind: Text, Field: "body", Cause: err}
	}
	if len(raw) >= 2 && raw[0] == utf16BOM[0] && raw[1] == utf16BOM[1] {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		decoded, err := dec.Bytes(raw)
		if err != nil {
			return nil, &DecodeError{Kind: Text, Field: "body", Cause: err}
		}
		return &TextValue{UTF16: true, Text: string(decoded)}, nil
	}
	return &TextValue{Text: string(raw)}, nil
}

func encodeText(w io.Writer, v *TextValue) error {
	if !v.UTF16 {
		_, err := w.Write([]byte(v.Text))
		return err
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(v.Text))
	if err != nil {
		return &DecodeError{Kind: Text, Field: "body", Cause: err}
	}
	_, err = w.Write(out)
	return err
}
