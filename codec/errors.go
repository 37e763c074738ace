// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"errors"
	"fmt"
)

// Errors returned by the primitive reader/writer.
var (
	// ErrEndOfBuffer is returned when a read needs more bytes than remain
	// in the underlying source.
	ErrEndOfBuffer = errors.New("codec: end of buffer")

	// ErrInvalidBool is returned when a bool byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("codec: invalid bool byte")

	// ErrInvalidCauleb is returned when a cauleb128 value runs past the
	// end of the buffer without a terminating byte.
	ErrInvalidCauleb = errors.New("codec: truncated cauleb128 value")
)

// PaddedStringError is returned when a fixed-size string write would
// overflow its declared size and cropping was not requested.
type PaddedStringError struct {
	Kind   string
	Value  string
	Actual int
	Max    int
}

func (e *PaddedStringError) Error() string {
	return fmt.Sprintf("codec: %s value %q is %d bytes, exceeds max %d", e.Kind, e.Value, e.Actual, e.Max)
}

// DecodingError wraps a primitive decoding failure with the kind of
// primitive that failed, so file decoders can add path/field context on
// top without losing the original cause.
type DecodingError struct {
	Kind  string
	Cause error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("codec: decoding %s: %v", e.Kind, e.Cause)
}

func (e *DecodingError) Unwrap() error { return e.Cause }
