// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import "strings"

// ContainerPath is the sum type addressed by Remove/FilesByPath: an
// exact file, every file under a folder prefix, or every file in the
// pack (spec.md §4.5).
type ContainerPath struct {
	kind  containerPathKind
	value string
}

type containerPathKind int

const (
	pathKindFile containerPathKind = iota
	pathKindFolder
	pathKindFull
)

// File addresses one exact, normalised path.
func File(p string) ContainerPath { return ContainerPath{kind: pathKindFile, value: NormalizePath(p)} }

// Folder addresses every file whose normalised path starts with prefix.
func Folder(prefix string) ContainerPath {
	p := NormalizePath(prefix)
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return ContainerPath{kind: pathKindFolder, value: p}
}

// FullContainer addresses every file in the pack.
func FullContainer() ContainerPath { return ContainerPath{kind: pathKindFull} }

// Matches reports whether the (already normalised) candidate path
// satisfies this ContainerPath.
func (c ContainerPath) Matches(normalised string) bool {
	switch c.kind {
	case pathKindFile:
		return normalised == c.value
	case pathKindFolder:
		return strings.HasPrefix(normalised, c.value)
	case pathKindFull:
		return true
	default:
		return false
	}
}

// NormalizePath canonicalises a container path for the pack's own
// addressing: forward slashes, leading slash trimmed, lower-cased for
// lookup. It does NOT strip a leading "data/" segment — a pack's own
// inner paths are real storage paths (nested AnimPacks and movie packs
// legitimately keep files under a literal "data/" folder), unlike the
// reference paths stored in table cells, which diagnostics resolves
// against those storage paths after stripping that conventional prefix
// (see diagnostics.referenceCandidate, spec.md §4.6).
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return strings.ToLower(p)
}
