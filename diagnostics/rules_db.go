// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package diagnostics

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/totalwarmod/packcore/schema"
	"github.com/totalwarmod/packcore/table"
)

// bannedTables lists table folders known to be unsafe to ship in a mod
// pack (spec.md §4.6 BannedTable, "game-specific deny list"). Kept as a
// small built-in seed list; a real deployment would source this from
// game-specific config, which is out of this module's scope (spec.md
// Non-goals: config path discovery).
var bannedTables = map[string]bool{
	"translated_texts_tables": true,
}

type addFunc func(rule, field string, cells []Cell, sev Severity, msg string)

// runDBRules evaluates every DB-table check against t, decoded from
// file filePath, grounded on anomaly.go's GetAnomalies: independent
// boolean checks appended to a findings slice.
func runDBRules(ctx ruleContext, filePath string, t *table.Table) []Report {
	var out []Report
	add := func(rule, field string, cells []Cell, sev Severity, msg string) {
		if ctx.ignore.RuleIgnored(rule, t.Name, field) {
			return
		}
		out = append(out, Report{Rule: rule, File: filePath, Cells: cells, Severity: sev, Message: msg})
	}

	if bannedTables[t.Name] {
		add("BannedTable", "", nil, Error, "table "+t.Name+" is on the deny list")
	}
	if endsInDigit(t.Name) {
		add("TableNameEndsInNumber", "", nil, Warning, "table name "+t.Name+" ends in a digit")
	}
	if strings.Contains(t.Name, " ") {
		add("TableNameHasSpace", "", nil, Error, "table name "+t.Name+" contains a space")
	}
	if base := path.Base(filePath); base != "data" && base != "" {
		// A file name other than the conventional "data" shadows the
		// same logical table under a different on-disk name, a common
		// source of silent duplicate-definition bugs.
		add("TableIsDataCoring", "", nil, Info, "file "+base+" does not use the conventional \"data\" name")
	}

	if outdated, newest := outdatedVersion(ctx, t); outdated {
		add("OutdatedTable", "", nil, Warning,
			"table version "+strconv.Itoa(int(newest))+" is newer than the definition used to decode this table")
	}

	keyCols := t.KeyColumns()
	seenKeys := map[string]int{}
	for ri, row := range t.Rows {
		if rowEmpty(row) {
			add("EmptyRow", "", []Cell{{Row: ri, Col: -1}}, Warning, "row is entirely empty")
			continue
		}

		emptyKeys := emptyKeyColumns(t, row, keyCols)
		if len(keyCols) > 1 && len(emptyKeys) == len(keyCols) {
			add("EmptyKeyFields", "", []Cell{{Row: ri, Col: -1}}, Error, "all key fields are empty")
		} else {
			for _, col := range emptyKeys {
				add("EmptyKeyField", t.Def.Processed()[col].Name, []Cell{{Row: ri, Col: col}}, Error,
					"key field "+t.Def.Processed()[col].Name+" is empty")
			}
		}

		key := t.CombinedKey(row)
		if key != "" {
			if prev, dup := seenKeys[key]; dup {
				add("DuplicatedCombinedKeys", "", []Cell{{Row: prev, Col: -1}, {Row: ri, Col: -1}}, Error,
					"duplicated key across rows "+strconv.Itoa(prev)+" and "+strconv.Itoa(ri))
			} else {
				seenKeys[key] = ri
			}
		}

		for ci, field := range t.Def.Processed() {
			cell := row[ci]
			if field.NotEmpty && table.DataToString(cell) == "" {
				add("ValueCannotBeEmpty", field.Name, []Cell{{Row: ri, Col: ci}}, Error,
					field.Name+" must not be empty")
			}
			if field.IsReference != nil {
				checkReference(ctx, field, ri, ci, cell, add)
			}
			if field.IsFilename && table.DataToString(cell) != "" {
				checkFilename(ctx, field, ri, ci, cell, add)
			}
		}
	}
	return out
}

func endsInDigit(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsDigit(rune(name[len(name)-1]))
}

func outdatedVersion(ctx ruleContext, t *table.Table) (bool, int32) {
	if ctx.schema == nil || t.Def == nil {
		return false, 0
	}
	defs := ctx.schema.DefinitionsByTableName(t.Name)
	if len(defs) == 0 {
		return false, 0
	}
	newest := defs[0].TableVersion
	return t.Def.TableVersion < newest, newest
}

func rowEmpty(row table.Row) bool {
	for _, cell := range row {
		if table.DataToString(cell) != "" {
			return false
		}
	}
	return true
}

func emptyKeyColumns(t *table.Table, row table.Row, keyCols []int) []int {
	var out []int
	for _, col := range keyCols {
		if table.DataToString(row[col]) == "" {
			out = append(out, col)
		}
	}
	return out
}

// checkReference validates field's reference against the dependency
// index, resolving the foreign column by name through the schema's
// newest definition for the foreign table (spec.md §4.6 InvalidReference
// / NoReferenceTableFound / NoReferenceTableNorColumnFoundPak/NoPak).
func checkReference(ctx ruleContext, field schema.Field, row, col int, cell table.Value, add addFunc) {
	display := table.DataToString(cell)
	if display == "" {
		return
	}
	if field.Type.IsNumericReferenceType() {
		if iv, err := strconv.ParseInt(display, 10, 64); err == nil && iv == 0 {
			return // zero is "no reference" for signed integer references
		}
	}

	foreignTable := field.IsReference.ForeignTable
	foreignColumn := field.IsReference.ForeignColumn

	if ctx.schema == nil {
		add("NoReferenceTableFound", field.Name, []Cell{{Row: row, Col: col}}, Warning,
			"no schema available to resolve "+foreignTable)
		return
	}
	defs := ctx.schema.DefinitionsByTableName(foreignTable)
	if len(defs) == 0 {
		add("NoReferenceTableFound", field.Name, []Cell{{Row: row, Col: col}}, Error,
			"reference table "+foreignTable+" was not found")
		return
	}
	colIdx := -1
	for i, f := range defs[0].Processed() {
		if f.Name == foreignColumn {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		sev := Warning
		if ctx.deps == nil {
			sev = Error // "NoPak": no asset-kit cache loaded to soften the finding
		}
		add("NoReferenceTableNorColumnFoundPak", field.Name, []Cell{{Row: row, Col: col}}, sev,
			"reference column "+foreignColumn+" was not found on "+foreignTable)
		return
	}

	if ctx.deps == nil {
		return
	}
	found := false
	for _, cand := range ctx.deps.Enumerate(foreignTable) {
		if colIdx < len(cand.Row) && table.DataToString(cand.Row[colIdx]) == display {
			found = true
			break
		}
	}
	if !found {
		add("InvalidReference", field.Name, []Cell{{Row: row, Col: col}}, Error,
			display+" is not a valid reference into "+foreignTable+"."+foreignColumn)
	}
}

// checkFilename validates field's path candidates against the pack
// under diagnosis first, then the dependency index, reporting
// FieldWithPathNotFound only when neither has any candidate (spec.md
// §4.6: "does not exist in the local pack nor dependencies"). Grounded
// on rpfm_extensions/src/diagnostics/table.rs:362-369's
// local_path_list-before-dependencies.file_exists order.
func checkFilename(ctx ruleContext, field schema.Field, row, col int, cell table.Value, add addFunc) {
	display := table.DataToString(cell)
	patterns := field.FilenameRelativePath
	if len(patterns) == 0 {
		patterns = []string{"%"}
	}
	var tried []string
	for _, pattern := range patterns {
		candidate := strings.ReplaceAll(pattern, "%", display)
		tried = append(tried, candidate)
		norm := referenceCandidate(candidate)
		if ctx.localPaths[norm] {
			return
		}
		if ctx.deps != nil && ctx.deps.FileExists(norm) {
			return
		}
	}
	sort.Strings(tried)
	add("FieldWithPathNotFound", field.Name, []Cell{{Row: row, Col: col}}, Warning,
		"none of the candidate paths for "+field.Name+" were found: "+strings.Join(tried, ", "))
}

// referenceCandidate normalises a reference-path candidate read from a
// table cell for lookup: forward slashes, leading slash trimmed, a
// leading "data/" segment stripped, lower-cased. Cell values commonly
// spell paths relative to the vanilla "data" folder, while both the
// local pack's and dependencies' container paths never carry that
// prefix themselves — so the strip belongs here, at reference-path
// resolution, not in container.NormalizePath's pack-addressing scope
// (spec.md §4.5/§4.6; grounded on rpfm_extensions/src/diagnostics/
// table.rs:326-334, which narrows the same strip to reference-path
// candidates rather than rpfm_files/src/lib.rs:259-262's path()/
// path_raw() container accessors).
func referenceCandidate(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "data/") {
		p = p[len("data/"):]
	}
	return strings.ToLower(p)
}
