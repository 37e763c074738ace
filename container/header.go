// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import (
	"bufio"
	"io"

	"github.com/totalwarmod/packcore/codec"
)

// magicVariant identifies the PFHx family member a pack declares.
// Newer variants add fields; packcore preserves whichever variant it
// read on Save rather than normalising to the newest (spec.md §6).
type magicVariant [4]byte

var (
	magicPFH0 = magicVariant{'P', 'F', 'H', '0'}
	magicPFH1 = magicVariant{'P', 'F', 'H', '1'}
	magicPFH2 = magicVariant{'P', 'F', 'H', '2'}
	magicPFH3 = magicVariant{'P', 'F', 'H', '3'}
	magicPFH4 = magicVariant{'P', 'F', 'H', '4'}
	magicPFH5 = magicVariant{'P', 'F', 'H', '5'}
	magicPFH6 = magicVariant{'P', 'F', 'H', '6'}
)

var knownMagics = map[magicVariant]bool{
	magicPFH0: true, magicPFH1: true, magicPFH2: true, magicPFH3: true,
	magicPFH4: true, magicPFH5: true, magicPFH6: true,
}

// Header flag bits, per spec.md §6: "flags (presence of an index
// timestamp, index version, extra subheader)".
const (
	flagHasIndexTimestamp uint32 = 1 << iota
	flagHasIndexVersion
	flagHasExtraSubheader
)

// Per-file flag bits packed into the high bits of each index entry's
// size field (spec.md §6: compression/encryption are per-file flags
// "encoded in the index"; the literal three-field entry shape leaves
// no room for a separate flags byte, so packcore follows the same
// high-bit convention real Total War packs use). Bit 31 marks a
// compressed entry, bit 30 an encrypted one, and the low 30 bits
// (fileSizeMask) hold the size; no other per-entry flag bits are kept.
// The header's own Flags word is carried through Save verbatim.
const (
	fileFlagCompressed uint32 = 1 << 31
	fileFlagEncrypted  uint32 = 1 << 30
	fileSizeMask       uint32 = 0x3FFFFFFF
)

// header is the parsed PFHx preamble plus dependency list.
type header struct {
	Magic              magicVariant
	Flags              uint32
	DependencyCount    uint32
	DependencyByteSize uint32
	FileIndexCount     uint32
	FileIndexByteSize  uint32
	ContentTimestamp   uint32
	Dependencies       []string
	IndexVersion       uint32 // valid only if flagHasIndexVersion set
	ExtraSubheader     []byte // opaque, preserved verbatim if flagHasExtraSubheader set
}

func (h *header) hasIndexTimestamp() bool { return h.Flags&flagHasIndexTimestamp != 0 }
func (h *header) hasIndexVersion() bool   { return h.Flags&flagHasIndexVersion != 0 }
func (h *header) hasExtraSubheader() bool { return h.Flags&flagHasExtraSubheader != 0 }

func readHeader(r io.ReadSeeker) (*header, error) {
	cr := codec.NewReader(r)
	magicBytes, err := cr.Bytes(4)
	if err != nil {
		return nil, &ContainerError{Kind: "truncated magic", Cause: err}
	}
	var magic magicVariant
	copy(magic[:], magicBytes)
	if !knownMagics[magic] {
		return nil, &UnknownMagicError{Magic: magic}
	}

	h := &header{Magic: magic}
	if h.Flags, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated flags", Cause: err}
	}
	if h.DependencyCount, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated dependency count", Cause: err}
	}
	if h.DependencyByteSize, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated dependency size", Cause: err}
	}
	if h.FileIndexCount, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated file index count", Cause: err}
	}
	if h.FileIndexByteSize, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated file index size", Cause: err}
	}
	if h.ContentTimestamp, err = cr.U32(); err != nil {
		return nil, &ContainerError{Kind: "truncated content timestamp", Cause: err}
	}

	for i := uint32(0); i < h.DependencyCount; i++ {
		name, err := cr.StringU80Terminated()
		if err != nil {
			return nil, &ContainerError{Kind: "truncated dependency list", Cause: err}
		}
		h.Dependencies = append(h.Dependencies, name)
	}

	if h.hasIndexVersion() {
		if h.IndexVersion, err = cr.U32(); err != nil {
			return nil, &ContainerError{Kind: "truncated index version", Cause: err}
		}
	}
	if h.hasExtraSubheader() {
		n, err := cr.U32()
		if err != nil {
			return nil, &ContainerError{Kind: "truncated extra subheader length", Cause: err}
		}
		h.ExtraSubheader, err = cr.Bytes(int(n))
		if err != nil {
			return nil, &ContainerError{Kind: "truncated extra subheader", Cause: err}
		}
	}
	return h, nil
}

func writeHeader(w io.Writer, h *header) error {
	bw := bufio.NewWriter(w)
	cw := codec.NewWriter(bw)
	if err := cw.Bytes(h.Magic[:]); err != nil {
		return err
	}
	if err := cw.U32(h.Flags); err != nil {
		return err
	}
	if err := cw.U32(uint32(len(h.Dependencies))); err != nil {
		return err
	}
	if err := cw.U32(h.DependencyByteSize); err != nil {
		return err
	}
	if err := cw.U32(h.FileIndexCount); err != nil {
		return err
	}
	if err := cw.U32(h.FileIndexByteSize); err != nil {
		return err
	}
	if err := cw.U32(h.ContentTimestamp); err != nil {
		return err
	}
	for _, dep := range h.Dependencies {
		if err := cw.StringU80Terminated(dep); err != nil {
			return err
		}
	}
	if h.hasIndexVersion() {
		if err := cw.U32(h.IndexVersion); err != nil {
			return err
		}
	}
	if h.hasExtraSubheader() {
		if err := cw.U32(uint32(len(h.ExtraSubheader))); err != nil {
			return err
		}
		if err := cw.Bytes(h.ExtraSubheader); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// indexEntry is one parsed file-index slot.
type indexEntry struct {
	Size       uint32 // raw on-disk payload length, flag bits masked out
	Compressed bool
	Encrypted  bool
	Timestamp  uint32 // valid only when the header carries per-entry timestamps
	Path       string
}

func readIndexEntry(cr *codec.Reader, hasTimestamp bool) (*indexEntry, error) {
	rawSize, err := cr.U32()
	if err != nil {
		return nil, err
	}
	e := &indexEntry{
		Size:       rawSize & fileSizeMask,
		Compressed: rawSize&fileFlagCompressed != 0,
		Encrypted:  rawSize&fileFlagEncrypted != 0,
	}
	if hasTimestamp {
		if e.Timestamp, err = cr.U32(); err != nil {
			return nil, err
		}
	}
	if e.Path, err = cr.StringU80Terminated(); err != nil {
		return nil, err
	}
	return e, nil
}

func writeIndexEntry(cw *codec.Writer, e *indexEntry, hasTimestamp bool) error {
	size := e.Size & fileSizeMask
	if e.Compressed {
		size |= fileFlagCompressed
	}
	if e.Encrypted {
		size |= fileFlagEncrypted
	}
	if err := cw.U32(size); err != nil {
		return err
	}
	if hasTimestamp {
		if err := cw.U32(e.Timestamp); err != nil {
			return err
		}
	}
	return cw.StringU80Terminated(e.Path)
}
