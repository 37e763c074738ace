// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestBoolInvalidByte(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02}))
	if _, err := r.Bool(); err == nil {
		t.Fatal("Bool(0x02) succeeded, want a Decoding error")
	} else {
		var de *DecodingError
		if !errors.As(err, &de) {
			t.Errorf("Bool(0x02) error = %v, want *DecodingError", err)
		}
	}
}

func TestOptionalStringU8EmptyIsOneByte(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.OptionalStringU8(""); err != nil {
		t.Fatalf("OptionalStringU8(\"\") = %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("OptionalStringU8(\"\") = % x, want [00]", got)
	}
}

func TestSizedStringU8EmptyIsTwoZeroBytes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.SizedStringU8(""); err != nil {
		t.Fatalf("SizedStringU8(\"\") = %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x00, 0x00}) {
		t.Errorf("SizedStringU8(\"\") = % x, want [00 00]", got)
	}
}

func TestStringU80PaddedOverflowErrorsWithoutCrop(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.StringU80Padded("abcdef", 4, false)
	if err == nil {
		t.Fatal("StringU80Padded overflow without crop succeeded, want error")
	}
	var pe *PaddedStringError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want *PaddedStringError", err)
	}
}

func TestStringU80PaddedOverflowCropsWhenAllowed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StringU80Padded("abcdef", 4, true); err != nil {
		t.Fatalf("StringU80Padded with crop = %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte("abcd")) {
		t.Errorf("StringU80Padded cropped = %q, want %q", got, "abcd")
	}
}

func TestCaulebBoundary(t *testing.T) {
	tests := []struct {
		name    string
		x       uint64
		padding int
		want    []byte
	}{
		{"no padding", 10, 0, []byte{0x0A}},
		{"padded to 3", 10, 3, []byte{0x80, 0x80, 0x0A}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.Cauleb128(tt.x, tt.padding); err != nil {
				t.Fatalf("Cauleb128(%d, %d) = %v", tt.x, tt.padding, err)
			}
			if got := buf.Bytes(); !bytes.Equal(got, tt.want) {
				t.Errorf("Cauleb128(%d, %d) = % x, want % x", tt.x, tt.padding, got, tt.want)
			}
		})
	}
}

func TestCaulebRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1<<32 - 1}
	paddings := []int{0, 1, 5}
	for _, x := range values {
		for _, pad := range paddings {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.Cauleb128(x, pad); err != nil {
				t.Fatalf("write Cauleb128(%d, %d) = %v", x, pad, err)
			}
			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := r.Cauleb128()
			if err != nil {
				t.Fatalf("read back Cauleb128(%d, %d) = %v", x, pad, err)
			}
			if got != x {
				t.Errorf("Cauleb128 round-trip(%d, padding %d) = %d", x, pad, got)
			}
		}
	}
}

func TestStringColourRGBBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.StringColourRGB("0504FF"); err != nil {
		t.Fatalf("StringColourRGB = %v", err)
	}
	want := []byte{0xFF, 0x04, 0x05, 0x00}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("StringColourRGB(\"0504FF\") = % x, want % x", got, want)
	}

	r := NewReader(bytes.NewReader(want))
	hex, err := r.StringColourRGB()
	if err != nil {
		t.Fatalf("read StringColourRGB = %v", err)
	}
	if hex != "0504FF" {
		t.Errorf("read StringColourRGB = %q, want %q", hex, "0504FF")
	}
}

func TestOptionalI32ByteCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.OptionalI32(0, false); err != nil {
		t.Fatalf("OptionalI32(false) = %v", err)
	}
	if got := buf.Len(); got != 1 {
		t.Errorf("OptionalI32(false) wrote %d bytes, want 1", got)
	}

	buf.Reset()
	if err := w.OptionalI32(42, true); err != nil {
		t.Fatalf("OptionalI32(true) = %v", err)
	}
	if got := buf.Len(); got != 5 {
		t.Errorf("OptionalI32(true) wrote %d bytes, want 5", got)
	}
}

func TestOptionalI16AndI64ByteCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.OptionalI16(0, false); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 1 {
		t.Errorf("OptionalI16(false) wrote %d bytes, want 1", buf.Len())
	}
	buf.Reset()
	if err := w.OptionalI16(7, true); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 3 {
		t.Errorf("OptionalI16(true) wrote %d bytes, want 3", buf.Len())
	}

	buf.Reset()
	if err := w.OptionalI64(0, false); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 1 {
		t.Errorf("OptionalI64(false) wrote %d bytes, want 1", buf.Len())
	}
	buf.Reset()
	if err := w.OptionalI64(7, true); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 9 {
		t.Errorf("OptionalI64(true) wrote %d bytes, want 9", buf.Len())
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	t.Run("U32", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.U32(0xDEADBEEF); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.U32()
		if err != nil {
			t.Fatal(err)
		}
		if got != 0xDEADBEEF {
			t.Errorf("U32 round-trip = %#x, want %#x", got, 0xDEADBEEF)
		}
	})

	t.Run("F32", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.F32(3.5); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.F32()
		if err != nil {
			t.Fatal(err)
		}
		if got != 3.5 {
			t.Errorf("F32 round-trip = %v, want 3.5", got)
		}
	})

	t.Run("F16", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.F16(0.5); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.F16()
		if err != nil {
			t.Fatal(err)
		}
		if got != 0.5 {
			t.Errorf("F16 round-trip = %v, want 0.5", got)
		}
	})

	t.Run("SizedStringU16", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.SizedStringU16("héllo"); err != nil {
			t.Fatal(err)
		}
		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.SizedStringU16()
		if err != nil {
			t.Fatal(err)
		}
		if got != "héllo" {
			t.Errorf("SizedStringU16 round-trip = %q, want %q", got, "héllo")
		}
	})

	t.Run("OptionalStringU16", func(t *testing.T) {
		for _, s := range []string{"", "some value"} {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.OptionalStringU16(s); err != nil {
				t.Fatal(err)
			}
			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := r.OptionalStringU16()
			if err != nil {
				t.Fatal(err)
			}
			if got != s {
				t.Errorf("OptionalStringU16 round-trip(%q) = %q", s, got)
			}
		}
	})
}

func FuzzCaulebRoundTrip(f *testing.F) {
	f.Add(uint64(0), 0)
	f.Add(uint64(127), 3)
	f.Add(uint64(1<<32-1), 1)
	f.Fuzz(func(t *testing.T, x uint64, padding int) {
		if padding < 0 || padding > 32 {
			t.Skip()
		}
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.Cauleb128(x, padding); err != nil {
			t.Fatalf("write: %v", err)
		}
		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.Cauleb128()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != x {
			t.Fatalf("round-trip mismatch: wrote %d, read %d", x, got)
		}
	})
}
