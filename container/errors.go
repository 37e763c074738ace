// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import "fmt"

// ContainerError reports a structural failure in a Pack: bad magic, a
// truncated index, or a duplicate path encountered while loading the
// directory (spec.md §7, "Container(kind)").
type ContainerError struct {
	Kind  string
	Cause error
}

func (e *ContainerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("container: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("container: %s", e.Kind)
}

func (e *ContainerError) Unwrap() error { return e.Cause }

// UnknownMagicError is returned when a pack's four-byte signature does
// not match any known PFHx variant.
type UnknownMagicError struct {
	Magic [4]byte
}

func (e *UnknownMagicError) Error() string {
	return fmt.Sprintf("container: unrecognised pack magic %q", e.Magic[:])
}

// PathNotFoundError is returned by operations addressing a specific
// inner file that does not exist in the directory.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("container: path not found: %s", e.Path)
}
