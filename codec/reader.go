// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package codec implements the bit-exact little-endian binary primitives
// that every Total War Pack file kind is built on: fixed and variable
// width integers, IEEE floats (including half precision), the several
// string encodings the game engine uses, fixed-size vectors, and the
// cauleb128 variable-length integer.
//
// Every Reader method mirrors a Writer method exactly: read(write(x)) == x
// for every valid x. Errors are never swallowed; EOF is reported as
// ErrEndOfBuffer rather than the underlying io.EOF so callers can
// distinguish "ran out of bytes mid-grammar" from a clean stream end.
package codec

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Reader decodes packcore's primitive types from a seekable byte source.
// All multi-byte numerics are little-endian.
type Reader struct {
	r   io.ReadSeeker
	buf [8]byte
}

// NewReader wraps r for primitive decoding.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

// Pos returns the reader's current offset from the start of the source.
func (r *Reader) Pos() (int64, error) {
	return r.r.Seek(0, io.SeekCurrent)
}

// Seek repositions the underlying source, io.Seeker semantics.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.r.Seek(offset, whence)
}

func (r *Reader) read(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, ErrEndOfBuffer
	}
	return b, nil
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, ErrEndOfBuffer
	}
	return b, nil
}

// Bool reads a single byte, 0 => false, 1 => true. Any other byte value
// is a decoding error (spec: read_bool on 0x02 fails).
func (r *Reader) Bool() (bool, error) {
	b, err := r.read(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &DecodingError{Kind: "bool", Cause: ErrInvalidBool}
	}
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8() (uint8, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed 8-bit integer.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) U16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads a little-endian signed 16-bit integer.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U24 reads a little-endian unsigned 24-bit integer, zero-extended.
func (r *Reader) U24() (uint32, error) {
	b, err := r.read(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// I24 reads a little-endian signed 24-bit integer, sign-extended.
func (r *Reader) I24() (int32, error) {
	v, err := r.U24()
	if err != nil {
		return 0, err
	}
	if v&0x800000 != 0 {
		return int32(v | 0xFF000000), nil
	}
	return int32(v), nil
}

// U32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) U32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a little-endian signed 32-bit integer.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) U64() (uint64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I64 reads a little-endian signed 64-bit integer.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// OptionalI16 reads a bool prefix; if false, no I16 follows and the
// zero value is returned. Consumes exactly 1 byte when false, 3 when true.
func (r *Reader) OptionalI16() (int16, bool, error) {
	present, err := r.Bool()
	if err != nil || !present {
		return 0, present, err
	}
	v, err := r.I16()
	return v, true, err
}

// OptionalI32 reads a bool prefix; consumes exactly 1 byte when false,
// 5 when true.
func (r *Reader) OptionalI32() (int32, bool, error) {
	present, err := r.Bool()
	if err != nil || !present {
		return 0, present, err
	}
	v, err := r.I32()
	return v, true, err
}

// OptionalI64 reads a bool prefix; consumes exactly 1 byte when false,
// 9 when true.
func (r *Reader) OptionalI64() (int64, bool, error) {
	present, err := r.Bool()
	if err != nil || !present {
		return 0, present, err
	}
	v, err := r.I64()
	return v, true, err
}

// F16 reads an IEEE 754 half-precision float and widens it to float32.
func (r *Reader) F16() (float32, error) {
	v, err := r.U16()
	if err != nil {
		return 0, err
	}
	return halfToFloat32(v), nil
}

// F32 reads an IEEE 754 single-precision float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64 reads an IEEE 754 double-precision float.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// F32NormalAsU8 reads a byte encoding a normalized float in [-1, 1] as
// round((x+1)/2 * 255).
func (r *Reader) F32NormalAsU8() (float32, error) {
	b, err := r.U8()
	if err != nil {
		return 0, err
	}
	return float32(b)/255*2 - 1, nil
}

// StringU8 reads exactly size bytes and returns them as a UTF-8 string;
// the sized variants below supply size from their length prefix.
func (r *Reader) StringU8(size int) (string, error) {
	b, err := r.Bytes(size)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringU8ISO88591 reads size bytes decoded as ISO-8859-15 (spec.md's
// single legacy path), widening to UTF-8.
func (r *Reader) StringU8ISO88591(size int) (string, error) {
	b, err := r.Bytes(size)
	if err != nil {
		return "", err
	}
	out, err := charmap.ISO8859_15.NewDecoder().Bytes(b)
	if err != nil {
		return "", &DecodingError{Kind: "string_u8_iso_8859_1", Cause: err}
	}
	return string(out), nil
}

// StringU80Padded reads a fixed-size buffer and trims trailing NUL bytes.
func (r *Reader) StringU80Padded(size int) (string, error) {
	b, err := r.Bytes(size)
	if err != nil {
		return "", err
	}
	return trimNulBytes(b), nil
}

// StringU80Terminated reads bytes one at a time until a NUL terminator.
func (r *Reader) StringU80Terminated() (string, error) {
	var out []byte
	for {
		b, err := r.U8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
}

// SizedStringU8 reads a u16 length prefix followed by that many UTF-8 bytes.
func (r *Reader) SizedStringU8() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	return r.StringU8(int(n))
}

// SizedStringU8U32 reads a u32 length prefix followed by that many UTF-8 bytes.
func (r *Reader) SizedStringU8U32() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	return r.StringU8(int(n))
}

// OptionalStringU8 reads a bool prefix followed by a sized_string_u8 when true.
func (r *Reader) OptionalStringU8() (string, error) {
	present, err := r.Bool()
	if err != nil || !present {
		return "", err
	}
	return r.SizedStringU8()
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", &DecodingError{Kind: "string_u16", Cause: err}
	}
	return string(out), nil
}

// StringU16 reads size code units (2*size bytes) as UTF-16LE.
func (r *Reader) StringU16(codeUnits int) (string, error) {
	b, err := r.Bytes(codeUnits * 2)
	if err != nil {
		return "", err
	}
	return decodeUTF16(b)
}

// StringU160Padded reads a fixed code-unit buffer, trims trailing NUL
// code units, decodes as UTF-16LE.
func (r *Reader) StringU160Padded(codeUnits int) (string, error) {
	b, err := r.Bytes(codeUnits * 2)
	if err != nil {
		return "", err
	}
	b = trimNulUTF16(b)
	return decodeUTF16(b)
}

// SizedStringU16 reads a u16 code-unit-count prefix then that many code
// units as UTF-16LE.
func (r *Reader) SizedStringU16() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	return r.StringU16(int(n))
}

// SizedStringU16U32 reads a u32 code-unit-count prefix then that many
// code units as UTF-16LE.
func (r *Reader) SizedStringU16U32() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	return r.StringU16(int(n))
}

// OptionalStringU16 reads a bool prefix followed by a sized_string_u16
// when true.
func (r *Reader) OptionalStringU16() (string, error) {
	present, err := r.Bool()
	if err != nil || !present {
		return "", err
	}
	return r.SizedStringU16()
}

// StringColourRGB reads 4 bytes [B, G, R, pad] and returns the canonical
// "RRGGBB" hex form. The on-disk lane order is B,G,R (verified against
// the write_string_colour_rgb boundary case in spec.md §8); an Open
// Question in spec.md §9 flags this as possibly game-version-dependent.
func (r *Reader) StringColourRGB() (string, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return "", err
	}
	return hexByte(b[2]) + hexByte(b[1]) + hexByte(b[0]), nil
}

// Vector2U8 is a pair of raw bytes.
func (r *Reader) Vector2U8() ([2]uint8, error) {
	var v [2]uint8
	b, err := r.Bytes(2)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// Vector2F32AsF16 is a pair of half-precision floats widened to float32.
func (r *Reader) Vector2F32AsF16() ([2]float32, error) {
	var v [2]float32
	for i := range v {
		f, err := r.F16()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Vector3F32NormalAsU8 reads 3 normalized-as-u8 lanes (3 bytes). No 4th
// lane byte is read here, and the matching writer writes none either.
func (r *Reader) Vector3F32NormalAsU8() ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := r.F32NormalAsU8()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Vector4U8 is four raw bytes.
func (r *Reader) Vector4U8() ([4]uint8, error) {
	var v [4]uint8
	b, err := r.Bytes(4)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// Vector4F32 is four IEEE single-precision floats.
func (r *Reader) Vector4F32() ([4]float32, error) {
	var v [4]float32
	for i := range v {
		f, err := r.F32()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Vector4F32PctAsU8 reads 4 bytes, each interpreted as a percentage in [0,255].
func (r *Reader) Vector4F32PctAsU8() ([4]float32, error) {
	b, err := r.Vector4U8()
	if err != nil {
		return [4]float32{}, err
	}
	var v [4]float32
	for i, x := range b {
		v[i] = float32(x) / 255
	}
	return v, nil
}

// Vector4F32NormalAsU8 reads 4 normalized-as-u8 lanes.
func (r *Reader) Vector4F32NormalAsU8() ([4]float32, error) {
	var v [4]float32
	for i := range v {
		f, err := r.F32NormalAsU8()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Vector4F32NormalAsF16 reads 4 half-precision lanes; lanes are divided
// by w when w != 0.
func (r *Reader) Vector4F32NormalAsF16() ([4]float32, error) {
	var v [4]float32
	for i := range v {
		f, err := r.F16()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	w := v[3]
	if w != 0 {
		v[0] /= w
		v[1] /= w
		v[2] /= w
	}
	return v, nil
}

// Cauleb128 reads a variable-length unsigned integer encoded with a
// continuation bit set on every byte except the last, most-significant
// group first, optionally left-padded with 0x80 bytes.
func (r *Reader) Cauleb128() (uint64, error) {
	var result uint64
	for {
		b, err := r.U8()
		if err != nil {
			return 0, &DecodingError{Kind: "cauleb128", Cause: ErrInvalidCauleb}
		}
		result = (result << 7) | uint64(b&0x7F)
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

func trimNulBytes(b []byte) string {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return string(b[:i])
}

func trimNulUTF16(b []byte) []byte {
	i := len(b)
	for i >= 2 && b[i-2] == 0 && b[i-1] == 0 {
		i -= 2
	}
	return b[:i]
}

const hexDigits = "0123456789ABCDEF"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xF]})
}

// halfToFloat32 widens an IEEE 754 binary16 value to binary32.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0x1F:
		bits = sign<<31 | 0xFF<<23 | frac<<13
	case exp == 0:
		// subnormal half -> normalize
		e := -1
		for frac&0x400 == 0 {
			frac <<= 1
			e++
		}
		frac &= 0x3FF
		bits = sign<<31 | uint32(127-15-e)<<23 | frac<<13
	default:
		bits = sign<<31 | (exp-15+127)<<23 | frac<<13
	}
	return math.Float32frombits(bits)
}
