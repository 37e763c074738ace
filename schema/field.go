// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package schema implements the versioned type system governing DB table
// layout: Definitions of named, typed Fields, processed-field derivation
// (bitwise expansion, enum coercion, colour merging), newest-compatible
// version selection, and a YAML-backed Store for loading/saving/upgrading
// schemas across structural versions.
package schema

// FieldType enumerates every cell type a Field can declare, exactly the
// set named in spec.md §3.
type FieldType int

const (
	Boolean FieldType = iota
	F32
	F64
	I16
	I32
	I64
	ColourRGB
	StringU8
	StringU16
	OptionalI16
	OptionalI32
	OptionalI64
	OptionalStringU8
	OptionalStringU16
	SequenceU16
	SequenceU32
)

// String names the type the way diagnostics/error messages expect to see it.
func (t FieldType) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case ColourRGB:
		return "ColourRGB"
	case StringU8:
		return "StringU8"
	case StringU16:
		return "StringU16"
	case OptionalI16:
		return "OptionalI16"
	case OptionalI32:
		return "OptionalI32"
	case OptionalI64:
		return "OptionalI64"
	case OptionalStringU8:
		return "OptionalStringU8"
	case OptionalStringU16:
		return "OptionalStringU16"
	case SequenceU16:
		return "SequenceU16"
	case SequenceU32:
		return "SequenceU32"
	default:
		return "Unknown"
	}
}

var fieldTypeNames = [...]string{
	Boolean: "Boolean", F32: "F32", F64: "F64", I16: "I16", I32: "I32", I64: "I64",
	ColourRGB: "ColourRGB", StringU8: "StringU8", StringU16: "StringU16",
	OptionalI16: "OptionalI16", OptionalI32: "OptionalI32", OptionalI64: "OptionalI64",
	OptionalStringU8: "OptionalStringU8", OptionalStringU16: "OptionalStringU16",
	SequenceU16: "SequenceU16", SequenceU32: "SequenceU32",
}

// MarshalYAML renders the type by name, keeping the schema store's text
// representation human-readable per spec.md §6.
func (t FieldType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML parses a type name back into its FieldType.
func (t *FieldType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	for i, n := range fieldTypeNames {
		if n == name {
			*t = FieldType(i)
			return nil
		}
	}
	return &UnknownFieldTypeError{Name: name}
}

// IsNumericReferenceType reports whether zero is a meaningful "no
// reference" sentinel for this type, per spec.md §4.6 InvalidReference
// ("zero is treated as no-reference for signed integers").
func (t FieldType) IsNumericReferenceType() bool {
	switch t {
	case I16, I32, I64, OptionalI16, OptionalI32, OptionalI64:
		return true
	default:
		return false
	}
}

// Reference is an optional foreign-key declaration on a Field.
type Reference struct {
	ForeignTable  string `yaml:"foreign_table"`
	ForeignColumn string `yaml:"foreign_column"`
}

// Field is one column of a raw Definition, carrying every presentation
// and validation attribute spec.md §3 names.
type Field struct {
	Name                 string     `yaml:"name"`
	Type                 FieldType  `yaml:"type"`
	IsKey                bool       `yaml:"is_key,omitempty"`
	DefaultValue         string     `yaml:"default_value,omitempty"`
	IsFilename           bool       `yaml:"is_filename,omitempty"`
	FilenameRelativePath []string   `yaml:"filename_relative_path,omitempty"`
	IsReference          *Reference `yaml:"is_reference,omitempty"`
	Lookup               []string   `yaml:"lookup,omitempty"`
	Description          string     `yaml:"description,omitempty"`
	CaOrder              int        `yaml:"ca_order"`
	IsBitwise            int        `yaml:"is_bitwise,omitempty"`
	EnumValues           map[int]string `yaml:"enum_values,omitempty"`
	IsPartOfColour       string     `yaml:"is_part_of_colour,omitempty"`
	NotEmpty             bool       `yaml:"not_empty,omitempty"`

	// SequenceDefinition holds the nested table layout for SequenceU16/
	// SequenceU32 fields. Loading a schema does not check whether a
	// table nests itself as a sequence.
	SequenceDefinition *Definition `yaml:"sequence_definition,omitempty"`
}

// Equal reports structural equality, used by Schema/Definition equality.
func (f Field) Equal(o Field) bool {
	if f.Name != o.Name || f.Type != o.Type || f.IsKey != o.IsKey ||
		f.DefaultValue != o.DefaultValue || f.IsFilename != o.IsFilename ||
		f.Description != o.Description || f.CaOrder != o.CaOrder ||
		f.IsBitwise != o.IsBitwise || f.IsPartOfColour != o.IsPartOfColour ||
		f.NotEmpty != o.NotEmpty {
		return false
	}
	if (f.IsReference == nil) != (o.IsReference == nil) {
		return false
	}
	if f.IsReference != nil && *f.IsReference != *o.IsReference {
		return false
	}
	if len(f.Lookup) != len(o.Lookup) || len(f.FilenameRelativePath) != len(o.FilenameRelativePath) {
		return false
	}
	for i := range f.Lookup {
		if f.Lookup[i] != o.Lookup[i] {
			return false
		}
	}
	for i := range f.FilenameRelativePath {
		if f.FilenameRelativePath[i] != o.FilenameRelativePath[i] {
			return false
		}
	}
	if len(f.EnumValues) != len(o.EnumValues) {
		return false
	}
	for k, v := range f.EnumValues {
		if o.EnumValues[k] != v {
			return false
		}
	}
	return true
}

// IsEnum reports whether the field presents as a bounded string picker.
func (f Field) IsEnum() bool { return len(f.EnumValues) > 0 }
