// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package table

import (
	"testing"

	"github.com/totalwarmod/packcore/schema"
)

func testDef() *schema.Definition {
	return &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "key", Type: schema.StringU8, IsKey: true},
			{Name: "value", Type: schema.F32, DefaultValue: "0.5"},
		},
	}
}

func TestAppendRowArityMismatch(t *testing.T) {
	tbl := New("land_units_tables", testDef())
	err := tbl.AppendRow(Row{NewStringU8("a")})
	if err == nil {
		t.Fatal("AppendRow with wrong arity succeeded, want *RowArityError")
	}
	if _, ok := err.(*RowArityError); !ok {
		t.Errorf("error = %T, want *RowArityError", err)
	}
}

func TestAppendRowAccepted(t *testing.T) {
	tbl := New("land_units_tables", testDef())
	if err := tbl.AppendRow(Row{NewStringU8("k"), NewF32(0.5)}); err != nil {
		t.Fatalf("AppendRow = %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("Rows length = %d, want 1", len(tbl.Rows))
	}
}

func TestCombinedKeyAndKeyColumns(t *testing.T) {
	tbl := New("land_units_tables", testDef())
	_ = tbl.AppendRow(Row{NewStringU8("alpha"), NewF32(1)})
	_ = tbl.AppendRow(Row{NewStringU8("beta"), NewF32(2)})

	keys := tbl.KeyColumns()
	if len(keys) != 1 || keys[0] != 0 {
		t.Fatalf("KeyColumns = %v, want [0]", keys)
	}
	if got := tbl.CombinedKey(tbl.Rows[0]); got != "alpha\x00" {
		t.Errorf("CombinedKey = %q, want %q", got, "alpha\x00")
	}
}

func TestDataToString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"bool true", NewBool(true), "true"},
		{"bool false", NewBool(false), "false"},
		{"colour", NewColourRGB("0504FF"), "0504FF"},
		{"string", NewStringU8("hello"), "hello"},
		{"optional absent", NewOptionalI32(0, false), ""},
		{"optional present", NewOptionalI32(42, true), "42"},
		{"i32", NewI32(-7), "-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DataToString(tt.v); got != tt.want {
				t.Errorf("DataToString(%+v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestDefaultRowUsesDefaultValue(t *testing.T) {
	row := DefaultRow(testDef())
	if len(row) != 2 {
		t.Fatalf("DefaultRow length = %d, want 2", len(row))
	}
	if row[0].Str != "" {
		t.Errorf("key default = %q, want empty", row[0].Str)
	}
	if row[1].F64 != 0.5 {
		t.Errorf("value default = %v, want 0.5", row[1].F64)
	}
}

func TestDefaultRowBooleanRequiresExplicitTrue(t *testing.T) {
	def := &schema.Definition{Fields: []schema.Field{{Name: "flag", Type: schema.Boolean}}}
	row := DefaultRow(def)
	if row[0].Bool {
		t.Error("boolean field with no default_value defaulted to true, want false")
	}

	def2 := &schema.Definition{Fields: []schema.Field{{Name: "flag", Type: schema.Boolean, DefaultValue: "true"}}}
	row2 := DefaultRow(def2)
	if !row2[0].Bool {
		t.Error("boolean field with default_value \"true\" defaulted to false")
	}
}

func TestColumnIndex(t *testing.T) {
	tbl := New("t", testDef())
	if idx := tbl.ColumnIndex("value"); idx != 1 {
		t.Errorf("ColumnIndex(\"value\") = %d, want 1", idx)
	}
	if idx := tbl.ColumnIndex("missing"); idx != -1 {
		t.Errorf("ColumnIndex(\"missing\") = %d, want -1", idx)
	}
}
