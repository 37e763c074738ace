// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package diagnostics

import (
	"strings"

	"github.com/totalwarmod/packcore/table"
)

// runLocRules evaluates every Loc-table check against t, decoded from
// file filePath (spec.md §4.6): InvalidLocKey, EmptyKeyField, EmptyRow,
// InvalidEscape, DuplicatedCombinedKeys, DuplicatedRow.
func runLocRules(ctx ruleContext, filePath string, t *table.Table) []Report {
	var out []Report
	add := func(rule string, cells []Cell, sev Severity, msg string) {
		if ctx.ignore.RuleIgnored(rule, t.Name, "") {
			return
		}
		out = append(out, Report{Rule: rule, File: filePath, Cells: cells, Severity: sev, Message: msg})
	}

	seenKeys := map[string]int{}
	seenRows := map[string]int{}
	for ri, row := range t.Rows {
		key := row[0].Str
		value := row[1].Str

		if key == "" && value == "" {
			add("EmptyRow", []Cell{{Row: ri, Col: -1}}, Warning, "row is entirely empty")
			continue
		}
		if key == "" {
			add("EmptyKeyField", []Cell{{Row: ri, Col: 0}}, Error, "key is empty")
		}
		if strings.ContainsAny(key, "\n\t") {
			add("InvalidLocKey", []Cell{{Row: ri, Col: 0}}, Error, "key contains a newline or tab")
		}
		if containsLiteralEscape(value) {
			add("InvalidEscape", []Cell{{Row: ri, Col: 1}}, Warning, "value contains a literal control sequence")
		}

		if key != "" {
			if prev, dup := seenKeys[key]; dup {
				add("DuplicatedCombinedKeys", []Cell{{Row: prev, Col: 0}, {Row: ri, Col: 0}}, Error,
					"duplicated key across rows")
			} else {
				seenKeys[key] = ri
			}
		}

		rowKey := key + "\x00" + value
		if prev, dup := seenRows[rowKey]; dup {
			add("DuplicatedRow", []Cell{{Row: prev, Col: -1}, {Row: ri, Col: -1}}, Warning,
				"identical key/value pair repeated")
		} else {
			seenRows[rowKey] = ri
		}
	}
	return out
}

// containsLiteralEscape reports whether value carries a literal
// backslash-escape sequence rather than the character it denotes (a
// common copy/paste mistake when porting text from another tool).
func containsLiteralEscape(value string) bool {
	for _, seq := range []string{`\n`, `\t`, `\r`} {
		if strings.Contains(value, seq) {
			return true
		}
	}
	return false
}
