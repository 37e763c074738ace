// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package schema

import "fmt"

// DuplicateVersionError is returned by AddDefinition when the table
// already carries a definition for that table version.
type DuplicateVersionError struct {
	Table   string
	Version int32
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("schema: table %q already has a definition for version %d", e.Table, e.Version)
}

// SchemaMissingError is returned when a schema-driven decode is
// requested but no definition exists at all for the table.
type SchemaMissingError struct {
	Table string
}

func (e *SchemaMissingError) Error() string {
	return fmt.Sprintf("schema: no definition found for table %q", e.Table)
}

// UnknownFieldTypeError is returned when a schema file names a field
// type that isn't one of the types spec.md §3 enumerates.
type UnknownFieldTypeError struct {
	Name string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("schema: unknown field type %q", e.Name)
}

// UnknownStructuralVersionError is returned when a schema file declares
// a structural version with no registered upgrade path.
type UnknownStructuralVersionError struct {
	Version uint16
}

func (e *UnknownStructuralVersionError) Error() string {
	return fmt.Sprintf("schema: no upgrade registered from structural version %d", e.Version)
}

// VersionMismatchError is returned when an encoded version is not
// present in the schema and no fallback applies.
type VersionMismatchError struct {
	Table      string
	Found      int32
	Candidates []int32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("schema: table %q version %d not found among known versions %v", e.Table, e.Found, e.Candidates)
}
