// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package container implements packcore's Pack format: an ordered,
// path-addressable set of inner files with per-file compression,
// encryption and timestamp metadata, lazily materialised on read
// (spec.md §4.5).
package container

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/totalwarmod/packcore/codec"
	"github.com/totalwarmod/packcore/filetype"
)

// Options configures Open/OpenBytes, mirroring the teacher's options
// struct: zero-value Options is fine for ordinary use.
type Options struct {
	// A custom logger; defaults to a std logger filtered to errors.
	Logger log.Logger
}

// Pack is an open Total War Pack container.
type Pack struct {
	Magic            magicVariant
	Flags            uint32
	ContentTimestamp uint32
	IndexVersion     uint32
	ExtraSubheader   []byte
	Dependencies     []string

	mu     sync.RWMutex
	byPath map[string]*InnerFile
	order  []string // insertion order, preserved on Save

	data   mmap.MMap // nil when opened from a byte slice or built fresh
	f      *os.File
	logger *log.Helper
}

func newLogger(opts *Options) *log.Helper {
	if opts != nil && opts.Logger != nil {
		return log.NewHelper(opts.Logger)
	}
	base := log.NewStdLogger(os.Stdout)
	return log.NewHelper(log.NewFilter(base, log.FilterLevel(log.LevelError)))
}

// New creates an empty Pack of the given magic variant, ready for
// Insert + Save; used when authoring a pack from scratch rather than
// opening one.
func New(magic string, opts *Options) *Pack {
	var m magicVariant
	copy(m[:], magic)
	return &Pack{
		Magic:  m,
		byPath: make(map[string]*InnerFile),
		logger: newLogger(opts),
	}
}

// Open memory-maps the pack at path and parses its header and
// directory; inner file payloads stay on disk (StateOnDisk) until
// Decoded or Bytes is called, per spec.md §4.7's lazy-materialization
// model. Grounded on file.go's mmap-backed New constructor.
func Open(path string, opts *Options) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	p, err := parsePack(bytes.NewReader(data), data, opts)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	p.data = data
	p.f = f
	return p, nil
}

// OpenBytes parses a pack already resident in memory, mirroring
// file.go's NewBytes constructor for callers that have already read or
// received the bytes some other way (e.g. from an AnimPack entry).
func OpenBytes(data []byte, opts *Options) (*Pack, error) {
	return parsePack(bytes.NewReader(data), data, opts)
}

func parsePack(r *bytes.Reader, backing []byte, opts *Options) (*Pack, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	p := &Pack{
		Magic:            h.Magic,
		Flags:            h.Flags,
		ContentTimestamp: h.ContentTimestamp,
		IndexVersion:     h.IndexVersion,
		ExtraSubheader:   h.ExtraSubheader,
		Dependencies:     h.Dependencies,
		byPath:           make(map[string]*InnerFile),
		logger:           newLogger(opts),
	}

	cr := codec.NewReader(r)
	entries := make([]*indexEntry, 0, h.FileIndexCount)
	for i := uint32(0); i < h.FileIndexCount; i++ {
		e, err := readIndexEntry(cr, h.hasIndexTimestamp())
		if err != nil {
			return nil, &ContainerError{Kind: "truncated file index", Cause: err}
		}
		entries = append(entries, e)
	}

	offset, err := r.Seek(0, 1)
	if err != nil {
		return nil, &ContainerError{Kind: "seek after index", Cause: err}
	}
	for _, e := range entries {
		norm := NormalizePath(e.Path)
		if _, dup := p.byPath[norm]; dup {
			return nil, &ContainerError{Kind: "duplicate path on load", Cause: &PathNotFoundError{Path: e.Path}}
		}
		inner := &InnerFile{
			Path:       e.Path,
			Compressed: e.Compressed,
			Encrypted:  e.Encrypted,
			state:      StateOnDisk,
			source:     bytes.NewReader(backing),
			offset:     offset,
			size:       int64(e.Size),
		}
		if h.hasIndexTimestamp() {
			t := time.Unix(int64(e.Timestamp), 0).UTC()
			inner.Timestamp = &t
		}
		p.byPath[norm] = inner
		p.order = append(p.order, norm)
		offset += int64(e.Size)
	}
	return p, nil
}

// Close releases the pack's backing mmap and file handle, if any.
func (p *Pack) Close() error {
	if p.data != nil {
		_ = p.data.Unmap()
	}
	if p.f != nil {
		return p.f.Close()
	}
	return nil
}

// Files returns every inner file, keyed by its normalised path.
func (p *Pack) Files() map[string]*InnerFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]*InnerFile, len(p.byPath))
	for k, v := range p.byPath {
		out[k] = v
	}
	return out
}

// FilesByPath returns every inner file matching cp, in insertion order.
func (p *Pack) FilesByPath(cp ContainerPath) []*InnerFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*InnerFile
	for _, path := range p.order {
		if cp.Matches(path) {
			out = append(out, p.byPath[path])
		}
	}
	return out
}

// Insert upserts f by its normalised path, appending to insertion
// order on first insert and preserving position on replace.
func (p *Pack) Insert(f *InnerFile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	norm := NormalizePath(f.Path)
	if _, exists := p.byPath[norm]; !exists {
		p.order = append(p.order, norm)
	}
	p.byPath[norm] = f
}

// Remove deletes every inner file matched by cp.
func (p *Pack) Remove(cp ContainerPath) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.order[:0]
	for _, path := range p.order {
		if cp.Matches(path) {
			delete(p.byPath, path)
			continue
		}
		kept = append(kept, path)
	}
	p.order = kept
}

// Decoded decodes (or returns the already-decoded value for) the
// single file at path, inferring its Kind from the path unless extra
// already knows the table name/schema context.
func (p *Pack) Decoded(path string, extra filetype.Extra) (filetype.Value, error) {
	p.mu.RLock()
	f, ok := p.byPath[NormalizePath(path)]
	p.mu.RUnlock()
	if !ok {
		return nil, &PathNotFoundError{Path: path}
	}
	kind := filetype.DetectKind(path, nil)
	return f.Decoded(kind, extra)
}

// Save re-encodes every file that holds a decoded value (modified or
// not), streams Cached/OnDisk files
// through unchanged, and writes header + directory + payloads in
// insertion order. The header's flags, index version and extra
// subheader are carried through verbatim, and compression/encryption
// per entry matches what each InnerFile reports, so re-saving an
// unmodified pack is byte-for-byte stable (spec.md §8 scenario 6).
func (p *Pack) Save(w io.Writer) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	type payload struct {
		entry indexEntry
		bytes []byte
	}
	payloads := make([]payload, 0, len(p.order))
	for _, path := range p.order {
		f := p.byPath[path]
		f.mu.Lock()
		raw, err := f.bytesLocked()
		f.mu.Unlock()
		if err != nil {
			return err
		}
		onDisk := raw
		if f.Compressed {
			var derr error
			onDisk, derr = deflate(onDisk)
			if derr != nil {
				return &ContainerError{Kind: "save compress", Cause: derr}
			}
		}
		if f.Encrypted {
			onDisk = xorEncrypt(onDisk)
		}
		e := indexEntry{
			Size:       uint32(len(onDisk)),
			Compressed: f.Compressed,
			Encrypted:  f.Encrypted,
			Path:       f.Path,
		}
		if f.Timestamp != nil {
			e.Timestamp = uint32(f.Timestamp.Unix())
		}
		payloads = append(payloads, payload{entry: e, bytes: onDisk})
	}

	var depBuf strings.Builder
	for _, d := range p.Dependencies {
		depBuf.WriteString(d)
		depBuf.WriteByte(0)
	}

	var idxBuf bytes.Buffer
	cw := codec.NewWriter(&idxBuf)
	hasTimestamp := p.Flags&flagHasIndexTimestamp != 0
	for _, pl := range payloads {
		if err := writeIndexEntry(cw, &pl.entry, hasTimestamp); err != nil {
			return err
		}
	}

	h := &header{
		Magic:              p.Magic,
		Flags:              p.Flags,
		DependencyByteSize: uint32(depBuf.Len()),
		FileIndexCount:     uint32(len(payloads)),
		FileIndexByteSize:  uint32(idxBuf.Len()),
		ContentTimestamp:   p.ContentTimestamp,
		Dependencies:       p.Dependencies,
		IndexVersion:       p.IndexVersion,
		ExtraSubheader:     p.ExtraSubheader,
	}
	if err := writeHeader(w, h); err != nil {
		return err
	}
	if _, err := w.Write(idxBuf.Bytes()); err != nil {
		return err
	}
	for _, pl := range payloads {
		if _, err := w.Write(pl.bytes); err != nil {
			return err
		}
	}
	return nil
}
