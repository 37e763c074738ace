// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package diagnostics runs a rule engine over a container's decoded DB
// and Loc tables, producing a flat, severity-ranked list of typed
// reports (spec.md §4.6). Grounded directly on anomaly.go's GetAnomalies
// shape — a sequence of independent boolean checks appending to a
// findings slice — generalised from untyped []string anomalies to typed
// Reports with affected-cell addressing and a per-row/per-column pass
// over decoded tables rather than a single struct.
package diagnostics

import (
	"strings"

	"github.com/totalwarmod/packcore/container"
	"github.com/totalwarmod/packcore/dependencies"
	"github.com/totalwarmod/packcore/filetype"
	"github.com/totalwarmod/packcore/schema"
)

// Severity ranks a Report's importance.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Info"
	}
}

// Cell addresses one affected cell; -1 in either field means "all rows"
// or "all columns" respectively (spec.md §4.6).
type Cell struct {
	Row int
	Col int
}

// Report is one finding, already rendered into a human message.
type Report struct {
	Rule     string
	File     string
	Cells    []Cell
	Message  string
	Severity Severity
}

// ruleContext bundles everything a rule function needs, so adding a
// rule never changes Run's signature.
type ruleContext struct {
	schema     *schema.Schema
	deps       *dependencies.Index
	ignore     IgnoreConfig
	localPaths map[string]bool
}

// Run evaluates every applicable rule against every decoded DB/Loc file
// in pack, in insertion order, and returns the accumulated reports. Rule
// functions read only already-decoded state and mutate nothing, so they
// are safe to run concurrently (spec.md §5); Run itself is sequential
// for deterministic ordering (spec.md §4.6 "iterate rows in order").
func Run(pack *container.Pack, deps *dependencies.Index, sch *schema.Schema, ignore IgnoreConfig) []Report {
	// FieldWithPathNotFound (spec.md §4.6) must check the pack under
	// diagnosis before falling back to deps: a mod commonly ships both
	// the table and the asset it references in the same pack.
	local := pack.Files()
	localPaths := make(map[string]bool, len(local))
	for p := range local {
		localPaths[p] = true
	}
	ctx := ruleContext{schema: sch, deps: deps, ignore: ignore, localPaths: localPaths}
	var reports []Report

	for _, f := range pack.FilesByPath(container.FullContainer()) {
		kind := filetype.DetectKind(f.Path, nil)
		if ignore.FileIgnored(f.Path) {
			continue
		}
		switch kind {
		case filetype.DB:
			v, err := f.Decoded(filetype.DB, filetype.Extra{Schema: sch, TableName: dbTableName(f.Path)})
			if err != nil {
				continue
			}
			dbv, ok := v.(*filetype.DBValue)
			if !ok || dbv.Table == nil {
				continue
			}
			reports = append(reports, runDBRules(ctx, f.Path, dbv.Table)...)
		case filetype.Loc:
			v, err := f.Decoded(filetype.Loc, filetype.Extra{})
			if err != nil {
				continue
			}
			locv, ok := v.(*filetype.LocValue)
			if !ok || locv.Table == nil {
				continue
			}
			reports = append(reports, runLocRules(ctx, f.Path, locv.Table)...)
		}
	}
	return reports
}

// dbTableName extracts the table-folder segment from a DB file's
// container path ("db/land_units_tables/data" -> "land_units_tables"),
// the convention Total War packs use to name a DB file's owning table.
func dbTableName(path string) string {
	parts := strings.Split(container.NormalizePath(path), "/")
	if len(parts) >= 2 && parts[0] == "db" {
		return parts[1]
	}
	return ""
}
