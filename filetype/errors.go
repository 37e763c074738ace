// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import "fmt"

// UnsupportedValueError is returned by Encode when given a Value whose
// concrete type does not match any known Kind constructor.
type UnsupportedValueError struct{}

func (e *UnsupportedValueError) Error() string { return "filetype: unsupported value type for encode" }

// IncompleteError is returned when ReturnIncomplete is set and a decode
// fails partway; Partial carries whatever prefix was successfully
// decoded so an editor-style caller can still show it (spec.md §4.4/§7).
type IncompleteError struct {
	Kind    Kind
	Partial Value
	Cause   error
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("filetype: %s decode incomplete: %v", e.Kind, e.Cause)
}

func (e *IncompleteError) Unwrap() error { return e.Cause }

// MagicMismatchError is returned when a fixed-magic format (Loc) does
// not start with its expected signature.
type MagicMismatchError struct {
	Kind Kind
	Want []byte
	Got  []byte
}

func (e *MagicMismatchError) Error() string {
	return fmt.Sprintf("filetype: %s magic mismatch: want %x got %x", e.Kind, e.Want, e.Got)
}
