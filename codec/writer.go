// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

// Writer encodes packcore's primitive types to a byte sink. Every method
// mirrors a Reader method exactly.
type Writer struct {
	w   io.Writer
	buf [8]byte
}

// NewWriter wraps w for primitive encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(b []byte) error {
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return nil
}

// Bytes writes b verbatim, with no length prefix.
func (w *Writer) Bytes(b []byte) error { return w.write(b) }

// Bool writes a single 0x00/0x01 byte.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// U8 writes an unsigned 8-bit integer.
func (w *Writer) U8(v uint8) error {
	w.buf[0] = v
	return w.write(w.buf[:1])
}

// I8 writes a signed 8-bit integer.
func (w *Writer) I8(v int8) error { return w.U8(uint8(v)) }

// U16 writes a little-endian unsigned 16-bit integer.
func (w *Writer) U16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	return w.write(w.buf[:2])
}

// I16 writes a little-endian signed 16-bit integer.
func (w *Writer) I16(v int16) error { return w.U16(uint16(v)) }

// U24 writes a little-endian unsigned 24-bit integer (low 24 bits of v).
func (w *Writer) U24(v uint32) error {
	w.buf[0] = byte(v)
	w.buf[1] = byte(v >> 8)
	w.buf[2] = byte(v >> 16)
	return w.write(w.buf[:3])
}

// I24 writes a little-endian signed 24-bit integer.
func (w *Writer) I24(v int32) error { return w.U24(uint32(v) & 0xFFFFFF) }

// U32 writes a little-endian unsigned 32-bit integer.
func (w *Writer) U32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	return w.write(w.buf[:4])
}

// I32 writes a little-endian signed 32-bit integer.
func (w *Writer) I32(v int32) error { return w.U32(uint32(v)) }

// U64 writes a little-endian unsigned 64-bit integer.
func (w *Writer) U64(v uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	return w.write(w.buf[:8])
}

// I64 writes a little-endian signed 64-bit integer.
func (w *Writer) I64(v int64) error { return w.U64(uint64(v)) }

// OptionalI16 writes a bool prefix and, if present, the value.
func (w *Writer) OptionalI16(v int16, present bool) error {
	if err := w.Bool(present); err != nil || !present {
		return err
	}
	return w.I16(v)
}

// OptionalI32 writes a bool prefix and, if present, the value.
func (w *Writer) OptionalI32(v int32, present bool) error {
	if err := w.Bool(present); err != nil || !present {
		return err
	}
	return w.I32(v)
}

// OptionalI64 writes a bool prefix and, if present, the value.
func (w *Writer) OptionalI64(v int64, present bool) error {
	if err := w.Bool(present); err != nil || !present {
		return err
	}
	return w.I64(v)
}

// F16 narrows v to IEEE 754 half precision and writes it.
func (w *Writer) F16(v float32) error {
	return w.U16(float32ToHalf(v))
}

// F32 writes an IEEE 754 single-precision float.
func (w *Writer) F32(v float32) error {
	return w.U32(math.Float32bits(v))
}

// F64 writes an IEEE 754 double-precision float.
func (w *Writer) F64(v float64) error {
	return w.U64(math.Float64bits(v))
}

// F32NormalAsU8 writes a normalized float in [-1, 1] as round((x+1)/2*255).
func (w *Writer) F32NormalAsU8(v float32) error {
	b := byte(math.Round(float64((v+1)/2*255)))
	return w.U8(b)
}

// StringU8 writes s as raw UTF-8 bytes with no length prefix or padding.
func (w *Writer) StringU8(s string) error {
	return w.write([]byte(s))
}

// StringU8ISO88591 writes s encoded as ISO-8859-15.
func (w *Writer) StringU8ISO88591(s string) error {
	b, err := charmap.ISO8859_15.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return &DecodingError{Kind: "string_u8_iso_8859_1", Cause: err}
	}
	return w.write(b)
}

// StringU80Padded writes s into a fixed size buffer, zero-padded, or
// returns a PaddedStringError if s is too long and crop is false (if
// crop is true, s is truncated to size).
func (w *Writer) StringU80Padded(s string, size int, crop bool) error {
	b := []byte(s)
	if len(b) > size {
		if !crop {
			return &PaddedStringError{Kind: "string_u8_0padded", Value: s, Actual: len(b), Max: size}
		}
		b = b[:size]
	}
	out := make([]byte, size)
	copy(out, b)
	return w.write(out)
}

// StringU80Terminated writes s followed by a NUL terminator.
func (w *Writer) StringU80Terminated(s string) error {
	if err := w.write([]byte(s)); err != nil {
		return err
	}
	return w.U8(0)
}

// SizedStringU8 writes a u16 length prefix (byte count) then s.
func (w *Writer) SizedStringU8(s string) error {
	b := []byte(s)
	if err := w.U16(uint16(len(b))); err != nil {
		return err
	}
	return w.write(b)
}

// SizedStringU8U32 writes a u32 length prefix (byte count) then s.
func (w *Writer) SizedStringU8U32(s string) error {
	b := []byte(s)
	if err := w.U32(uint32(len(b))); err != nil {
		return err
	}
	return w.write(b)
}

// OptionalStringU8 writes a bool prefix (true iff s != "") then, when
// true, a sized_string_u8. An empty optional string is exactly one 0x00
// byte.
func (w *Writer) OptionalStringU8(s string) error {
	if s == "" {
		return w.Bool(false)
	}
	if err := w.Bool(true); err != nil {
		return err
	}
	return w.SizedStringU8(s)
}

func encodeUTF16(s string) []byte {
	r := []rune(s)
	out := make([]byte, 0, len(r)*2)
	for _, c := range r {
		if c > 0xFFFF {
			// surrogate pair
			c -= 0x10000
			hi := 0xD800 + (c >> 10)
			lo := 0xDC00 + (c & 0x3FF)
			out = append(out, byte(hi), byte(hi>>8), byte(lo), byte(lo>>8))
			continue
		}
		out = append(out, byte(c), byte(c>>8))
	}
	return out
}

// StringU16 writes s as UTF-16LE code units, no length prefix.
func (w *Writer) StringU16(s string) error {
	return w.write(encodeUTF16(s))
}

// StringU160Padded writes s as UTF-16LE into a fixed code-unit buffer,
// zero-padded or cropped.
func (w *Writer) StringU160Padded(s string, codeUnits int, crop bool) error {
	b := encodeUTF16(s)
	size := codeUnits * 2
	if len(b) > size {
		if !crop {
			return &PaddedStringError{Kind: "string_u16_0padded", Value: s, Actual: len(b) / 2, Max: codeUnits}
		}
		b = b[:size]
	}
	out := make([]byte, size)
	copy(out, b)
	return w.write(out)
}

// SizedStringU16 writes a u16 code-unit-count prefix then s as UTF-16LE.
func (w *Writer) SizedStringU16(s string) error {
	b := encodeUTF16(s)
	if err := w.U16(uint16(len(b) / 2)); err != nil {
		return err
	}
	return w.write(b)
}

// SizedStringU16U32 writes a u32 code-unit-count prefix then s as UTF-16LE.
func (w *Writer) SizedStringU16U32(s string) error {
	b := encodeUTF16(s)
	if err := w.U32(uint32(len(b) / 2)); err != nil {
		return err
	}
	return w.write(b)
}

// OptionalStringU16 writes a bool prefix (true iff s != "") then, when
// true, a sized_string_u16.
func (w *Writer) OptionalStringU16(s string) error {
	if s == "" {
		return w.Bool(false)
	}
	if err := w.Bool(true); err != nil {
		return err
	}
	return w.SizedStringU16(s)
}

// StringColourRGB writes hex ("RRGGBB", case-insensitive) as 4 bytes
// [B, G, R, 0x00] (see Reader.StringColourRGB for the lane-order note).
func (w *Writer) StringColourRGB(hex string) error {
	if len(hex) != 6 {
		return &DecodingError{Kind: "string_colour_rgb", Cause: strconvErr(hex)}
	}
	rr, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return &DecodingError{Kind: "string_colour_rgb", Cause: err}
	}
	gg, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return &DecodingError{Kind: "string_colour_rgb", Cause: err}
	}
	bb, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return &DecodingError{Kind: "string_colour_rgb", Cause: err}
	}
	return w.write([]byte{byte(bb), byte(gg), byte(rr), 0})
}

func strconvErr(hex string) error {
	return &strconv.NumError{Func: "ParseColour", Num: hex, Err: strconv.ErrSyntax}
}

// Vector2U8 writes a pair of raw bytes.
func (w *Writer) Vector2U8(v [2]uint8) error { return w.write(v[:]) }

// Vector2F32AsF16 writes a pair of half-precision floats.
func (w *Writer) Vector2F32AsF16(v [2]float32) error {
	for _, f := range v {
		if err := w.F16(f); err != nil {
			return err
		}
	}
	return nil
}

// Vector3F32NormalAsU8 writes 3 normalized-as-u8 lanes.
func (w *Writer) Vector3F32NormalAsU8(v [3]float32) error {
	for _, f := range v {
		if err := w.F32NormalAsU8(f); err != nil {
			return err
		}
	}
	return nil
}

// Vector4U8 writes four raw bytes.
func (w *Writer) Vector4U8(v [4]uint8) error { return w.write(v[:]) }

// Vector4F32 writes four IEEE single-precision floats.
func (w *Writer) Vector4F32(v [4]float32) error {
	for _, f := range v {
		if err := w.F32(f); err != nil {
			return err
		}
	}
	return nil
}

// Vector4F32PctAsU8 writes 4 percentage-as-byte lanes.
func (w *Writer) Vector4F32PctAsU8(v [4]float32) error {
	var b [4]uint8
	for i, f := range v {
		b[i] = uint8(math.Round(float64(f) * 255))
	}
	return w.Vector4U8(b)
}

// Vector4F32NormalAsU8 writes 4 normalized-as-u8 lanes.
func (w *Writer) Vector4F32NormalAsU8(v [4]float32) error {
	for _, f := range v {
		if err := w.F32NormalAsU8(f); err != nil {
			return err
		}
	}
	return nil
}

// Vector4F32NormalAsF16 writes 4 half-precision lanes, un-dividing by w
// is the caller's responsibility (mirrors the reader's post-read divide).
func (w *Writer) Vector4F32NormalAsF16(v [4]float32) error {
	for _, f := range v {
		if err := w.F16(f); err != nil {
			return err
		}
	}
	return nil
}

// Cauleb128 writes x as a variable-length unsigned integer, left-padded
// with 0x80 continuation bytes so the encoding is at least padding bytes
// long.
func (w *Writer) Cauleb128(x uint64, padding int) error {
	var groups []byte
	groups = append(groups, byte(x&0x7F))
	x >>= 7
	for x > 0 {
		groups = append(groups, byte(x&0x7F)|0x80)
		x >>= 7
	}
	for len(groups) < padding {
		groups = append(groups, 0x80)
	}
	// groups is currently least-significant-group-first with the
	// continuation bit set on every group except the first
	// (least-significant) one; reverse to most-significant
	// first and ensure only the true final byte (now last) has the
	// continuation bit cleared.
	out := make([]byte, len(groups))
	for i, g := range groups {
		out[len(groups)-1-i] = g
	}
	out[len(out)-1] &^= 0x80
	return w.write(out)
}

// float32ToHalf narrows an IEEE 754 binary32 value to binary16.
func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	frac := bits & 0x7FFFFF

	switch {
	case (bits>>23)&0xFF == 0xFF:
		// Inf/NaN
		if frac != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	case exp >= 0x1F:
		return sign | 0x7C00 // overflow -> Inf
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		frac |= 0x800000
		shift := uint(14 - exp)
		return sign | uint16(frac>>shift)
	default:
		return sign | uint16(exp)<<10 | uint16(frac>>13)
	}
}
