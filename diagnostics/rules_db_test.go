// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package diagnostics

import (
	"bytes"
	"testing"

	"github.com/totalwarmod/packcore/container"
	"github.com/totalwarmod/packcore/dependencies"
	"github.com/totalwarmod/packcore/filetype"
	"github.com/totalwarmod/packcore/schema"
	"github.com/totalwarmod/packcore/table"
)

// buildReferenceSchema wires a unit_variants_tables.unit -> land_units_tables.key
// reference, the fixture spec.md §8 scenario 4 describes.
func buildReferenceSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch := schema.New()
	if err := sch.AddDefinition("land_units_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "key", Type: schema.StringU8, IsKey: true},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := sch.AddDefinition("unit_variants_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "unit", Type: schema.StringU8,
				IsReference: &schema.Reference{ForeignTable: "land_units_tables", ForeignColumn: "key"}},
		},
	}); err != nil {
		t.Fatal(err)
	}
	return sch
}

func vanillaPack(t *testing.T, sch *schema.Schema, keys ...string) *container.Pack {
	t.Helper()
	def := sch.DefinitionsByTableName("land_units_tables")[0]
	tbl := table.New("land_units_tables", def)
	for _, k := range keys {
		_ = tbl.AppendRow(table.Row{table.NewStringU8(k)})
	}
	var buf bytes.Buffer
	if err := filetype.Encode(&buf, &filetype.DBValue{Table: tbl}); err != nil {
		t.Fatal(err)
	}
	p := container.New("PFH5", nil)
	p.Insert(container.NewInnerFile("db/land_units_tables/data", buf.Bytes()))
	return p
}

func TestInvalidReferenceScenario(t *testing.T) {
	sch := buildReferenceSchema(t)
	vanilla := vanillaPack(t, sch, "saxon_warband")
	deps := dependencies.Build(sch, nil, []*container.Pack{vanilla})

	def := sch.DefinitionsByTableName("unit_variants_tables")[0]
	tbl := table.New("unit_variants_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("saxon_warband")}) // valid
	_ = tbl.AppendRow(table.Row{table.NewStringU8("nonexistent_unit")}) // invalid

	ctx := ruleContext{schema: sch, deps: deps}
	reports := runDBRules(ctx, "db/unit_variants_tables/data", tbl)

	var invalid []Report
	for _, r := range reports {
		if r.Rule == "InvalidReference" {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) != 1 {
		t.Fatalf("got %d InvalidReference reports, want 1: %+v", len(invalid), invalid)
	}
	if invalid[0].Cells[0].Row != 1 {
		t.Errorf("InvalidReference row = %d, want 1", invalid[0].Cells[0].Row)
	}
}

// TestZeroReferenceOnNumericColumnIsNotReported checks that the value "0"
// on an I32 reference column produces no report, per spec.md §8
// scenario 4's zero-sentinel rule.
func TestZeroReferenceOnNumericColumnIsNotReported(t *testing.T) {
	sch := schema.New()
	_ = sch.AddDefinition("land_units_tables", &schema.Definition{
		TableVersion: 1,
		Fields:       []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}},
	})
	_ = sch.AddDefinition("unit_variants_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "unit_id", Type: schema.I32,
				IsReference: &schema.Reference{ForeignTable: "land_units_tables", ForeignColumn: "key"}},
		},
	})
	def := sch.DefinitionsByTableName("unit_variants_tables")[0]
	tbl := table.New("unit_variants_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewI32(0)})

	ctx := ruleContext{schema: sch, deps: dependencies.Build(sch, nil, nil)}
	reports := runDBRules(ctx, "db/unit_variants_tables/data", tbl)
	for _, r := range reports {
		if r.Rule == "InvalidReference" || r.Rule == "NoReferenceTableNorColumnFoundPak" {
			t.Errorf("zero reference value produced an unexpected report: %+v", r)
		}
	}
}

func TestBannedTableRule(t *testing.T) {
	def := &schema.Definition{TableVersion: 1, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	tbl := table.New("translated_texts_tables", def)
	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/translated_texts_tables/data", tbl)
	if !hasRule(reports, "BannedTable") {
		t.Errorf("expected a BannedTable report, got %+v", reports)
	}
}

func TestTableNameEndsInNumberRule(t *testing.T) {
	def := &schema.Definition{TableVersion: 1, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	tbl := table.New("land_units_tables2", def)
	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/land_units_tables2/data", tbl)
	if !hasRule(reports, "TableNameEndsInNumber") {
		t.Errorf("expected a TableNameEndsInNumber report, got %+v", reports)
	}
}

func TestTableNameHasSpaceRule(t *testing.T) {
	def := &schema.Definition{TableVersion: 1, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	tbl := table.New("land units_tables", def)
	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/land units_tables/data", tbl)
	if !hasRule(reports, "TableNameHasSpace") {
		t.Errorf("expected a TableNameHasSpace report, got %+v", reports)
	}
}

func TestTableIsDataCoringRule(t *testing.T) {
	def := &schema.Definition{TableVersion: 1, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	tbl := table.New("land_units_tables", def)
	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/land_units_tables/not_data", tbl)
	if !hasRule(reports, "TableIsDataCoring") {
		t.Errorf("expected a TableIsDataCoring report, got %+v", reports)
	}
	reports = runDBRules(ctx, "db/land_units_tables/data", tbl)
	if hasRule(reports, "TableIsDataCoring") {
		t.Errorf("conventional \"data\" file name should not trigger TableIsDataCoring: %+v", reports)
	}
}

func TestOutdatedTableRule(t *testing.T) {
	sch := schema.New()
	oldDef := &schema.Definition{TableVersion: 1, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	newDef := &schema.Definition{TableVersion: 2, Fields: []schema.Field{{Name: "key", Type: schema.StringU8, IsKey: true}}}
	if err := sch.AddDefinition("land_units_tables", oldDef); err != nil {
		t.Fatal(err)
	}
	if err := sch.AddDefinition("land_units_tables", newDef); err != nil {
		t.Fatal(err)
	}

	tbl := table.New("land_units_tables", oldDef)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("k")})

	ctx := ruleContext{schema: sch}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	if !hasRule(reports, "OutdatedTable") {
		t.Errorf("expected an OutdatedTable report when a newer definition exists, got %+v", reports)
	}
}

func TestEmptyKeyFieldsPluralWhenAllKeysEmpty(t *testing.T) {
	def := &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "key1", Type: schema.StringU8, IsKey: true},
			{Name: "key2", Type: schema.StringU8, IsKey: true},
		},
	}
	tbl := table.New("land_units_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8(""), table.NewStringU8("")})

	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	if !hasRule(reports, "EmptyKeyFields") {
		t.Errorf("expected an EmptyKeyFields report when every key column is empty, got %+v", reports)
	}
	if hasRule(reports, "EmptyKeyField") {
		t.Errorf("EmptyKeyFields should report once for all keys, not also per-field EmptyKeyField: %+v", reports)
	}
}

func TestNoReferenceTableFoundRule(t *testing.T) {
	sch := schema.New()
	_ = sch.AddDefinition("unit_variants_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "unit", Type: schema.StringU8,
				IsReference: &schema.Reference{ForeignTable: "land_units_tables", ForeignColumn: "key"}},
		},
	})
	def := sch.DefinitionsByTableName("unit_variants_tables")[0]
	tbl := table.New("unit_variants_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("saxon_warband")})

	ctx := ruleContext{schema: sch}
	reports := runDBRules(ctx, "db/unit_variants_tables/data", tbl)
	if !hasRule(reports, "NoReferenceTableFound") {
		t.Errorf("expected a NoReferenceTableFound report when the foreign table is unknown, got %+v", reports)
	}
}

func TestNoReferenceTableNorColumnFoundPakSeverity(t *testing.T) {
	sch := buildReferenceSchemaMissingColumn(t)
	def := sch.DefinitionsByTableName("unit_variants_tables")[0]
	tbl := table.New("unit_variants_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("saxon_warband")})

	// No dependency index loaded: "NoPak" case, severity Error.
	ctxNoPak := ruleContext{schema: sch}
	reports := runDBRules(ctxNoPak, "db/unit_variants_tables/data", tbl)
	found := false
	for _, r := range reports {
		if r.Rule == "NoReferenceTableNorColumnFoundPak" {
			found = true
			if r.Severity != Error {
				t.Errorf("NoReferenceTableNorColumnFoundPak severity = %v without a dependency index, want Error", r.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("expected a NoReferenceTableNorColumnFoundPak report, got %+v", reports)
	}

	// A dependency index loaded but the column is still missing: Warning.
	ctxWithPak := ruleContext{schema: sch, deps: dependencies.Build(sch, nil, nil)}
	reports = runDBRules(ctxWithPak, "db/unit_variants_tables/data", tbl)
	for _, r := range reports {
		if r.Rule == "NoReferenceTableNorColumnFoundPak" && r.Severity != Warning {
			t.Errorf("NoReferenceTableNorColumnFoundPak severity = %v with a dependency index loaded, want Warning", r.Severity)
		}
	}
}

// buildReferenceSchemaMissingColumn wires unit_variants_tables.unit to a
// land_units_tables that exists but lacks the referenced "key" column,
// the NoReferenceTableNorColumnFoundPak/NoPak fixture (spec.md §4.6).
func buildReferenceSchemaMissingColumn(t *testing.T) *schema.Schema {
	t.Helper()
	sch := schema.New()
	if err := sch.AddDefinition("land_units_tables", &schema.Definition{
		TableVersion: 1,
		Fields:       []schema.Field{{Name: "other_column", Type: schema.StringU8}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := sch.AddDefinition("unit_variants_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "unit", Type: schema.StringU8,
				IsReference: &schema.Reference{ForeignTable: "land_units_tables", ForeignColumn: "key"}},
		},
	}); err != nil {
		t.Fatal(err)
	}
	return sch
}

// TestFieldWithPathNotFoundChecksLocalPackFirst verifies the fix for the
// FieldWithPathNotFound rule: a candidate path that exists in the pack
// under diagnosis, but not in any dependency, must not be reported
// (spec.md §4.6: "does not exist in the local pack nor dependencies").
func TestFieldWithPathNotFoundChecksLocalPackFirst(t *testing.T) {
	def := &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "icon_path", Type: schema.StringU8, IsFilename: true},
		},
	}
	tbl := table.New("land_units_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("ui/units/icon.png")})

	ctx := ruleContext{localPaths: map[string]bool{"ui/units/icon.png": true}}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	if hasRule(reports, "FieldWithPathNotFound") {
		t.Errorf("a path present in the local pack should not be reported: %+v", reports)
	}
}

// TestFieldWithPathNotFoundStripsDataPrefix verifies a "data/"-prefixed
// candidate resolves against the local pack's own (unprefixed) path,
// per the narrowed NormalizePath/referenceCandidate split.
func TestFieldWithPathNotFoundStripsDataPrefix(t *testing.T) {
	def := &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "icon_path", Type: schema.StringU8, IsFilename: true},
		},
	}
	tbl := table.New("land_units_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("data/ui/units/icon.png")})

	ctx := ruleContext{localPaths: map[string]bool{"ui/units/icon.png": true}}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	if hasRule(reports, "FieldWithPathNotFound") {
		t.Errorf("a \"data/\"-prefixed candidate should resolve against the unprefixed local path: %+v", reports)
	}
}

func TestFieldWithPathNotFoundWhenMissingEverywhere(t *testing.T) {
	def := &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "icon_path", Type: schema.StringU8, IsFilename: true},
		},
	}
	tbl := table.New("land_units_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("ui/units/missing.png")})

	ctx := ruleContext{}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	if !hasRule(reports, "FieldWithPathNotFound") {
		t.Errorf("expected a FieldWithPathNotFound report when the path is in neither the local pack nor dependencies, got %+v", reports)
	}
}

func hasRule(reports []Report, rule string) bool {
	for _, r := range reports {
		if r.Rule == rule {
			return true
		}
	}
	return false
}

func TestValueCannotBeEmptyRule(t *testing.T) {
	sch := schema.New()
	_ = sch.AddDefinition("land_units_tables", &schema.Definition{
		TableVersion: 1,
		Fields: []schema.Field{
			{Name: "key", Type: schema.StringU8, IsKey: true},
			{Name: "caption", Type: schema.StringU8, NotEmpty: true},
		},
	})
	def := sch.DefinitionsByTableName("land_units_tables")[0]
	tbl := table.New("land_units_tables", def)
	_ = tbl.AppendRow(table.Row{table.NewStringU8("k"), table.NewStringU8("")})

	ctx := ruleContext{schema: sch}
	reports := runDBRules(ctx, "db/land_units_tables/data", tbl)
	found := false
	for _, r := range reports {
		if r.Rule == "ValueCannotBeEmpty" {
			found = true
		}
	}
	if !found {
		t.Error("expected a ValueCannotBeEmpty report for the empty caption field")
	}
}
