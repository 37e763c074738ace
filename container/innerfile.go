// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package container

import (
	"bytes"
	"compress/flate"
	"io"
	"sync"
	"time"

	"github.com/totalwarmod/packcore/filetype"
)

// fileState is the lazy-materialization ladder an InnerFile climbs as
// callers ask for more: raw bytes are read from the backing store only
// once (OnDisk->Cached), and a typed value is decoded from those bytes
// only once (Cached->Decoded), per spec.md §4.7.
type fileState int

const (
	StateOnDisk fileState = iota
	StateCached
	StateDecoded
)

// InnerFile is one entry of a Pack's directory. State transitions are
// serialised with a per-file mutex so concurrent readers of the same
// path never race (spec.md §5); independent InnerFiles have independent
// mutexes and may be promoted concurrently.
type InnerFile struct {
	Path       string
	Timestamp  *time.Time
	Compressed bool
	Encrypted  bool

	mu    sync.Mutex
	state fileState

	source       io.ReaderAt // backing pack data, nil for freshly-inserted files
	offset, size int64

	cached  []byte
	decoded filetype.Value
	dirty   bool // Decoded value has been mutated since last (de)cache
}

// NewInnerFile creates a fresh, in-memory entry not backed by any
// on-disk offset, ready for Pack.Insert.
func NewInnerFile(path string, data []byte) *InnerFile {
	return &InnerFile{Path: path, state: StateCached, cached: data, dirty: true}
}

// Bytes returns the raw, uncompressed/decrypted payload, promoting
// OnDisk to Cached if necessary.
func (f *InnerFile) Bytes() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytesLocked()
}

func (f *InnerFile) bytesLocked() ([]byte, error) {
	if f.state == StateOnDisk {
		raw := make([]byte, f.size)
		if _, err := f.source.ReadAt(raw, f.offset); err != nil && err != io.EOF {
			return nil, &ContainerError{Kind: "inner file read", Cause: err}
		}
		if f.Encrypted {
			raw = xorDecrypt(raw)
		}
		if f.Compressed {
			out, err := inflate(raw)
			if err != nil {
				return nil, &ContainerError{Kind: "inner file decompress", Cause: err}
			}
			raw = out
		}
		f.cached = raw
		f.state = StateCached
	}
	if f.decoded != nil {
		var buf bytes.Buffer
		if err := filetype.Encode(&buf, f.decoded); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return f.cached, nil
}

// Decoded promotes the file to StateDecoded, parsing cached bytes with
// the requested kind if not already decoded.
func (f *InnerFile) Decoded(kind filetype.Kind, extra filetype.Extra) (filetype.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateDecoded && f.decoded != nil {
		return f.decoded, nil
	}
	raw, err := f.bytesLocked()
	if err != nil {
		return nil, err
	}
	v, err := filetype.Decode(kind, bytes.NewReader(raw), extra)
	if err != nil {
		return nil, err
	}
	f.decoded = v
	f.state = StateDecoded
	return v, nil
}

// SetDecoded installs an already-decoded value (e.g. produced by an
// editor) and marks the file dirty so Save re-encodes it.
func (f *InnerFile) SetDecoded(v filetype.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decoded = v
	f.state = StateDecoded
	f.dirty = true
}

func inflate(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	return io.ReadAll(r)
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xorDecrypt/xorEncrypt stand in for the real pack cipher: packcore's
// scope is the container/codec layer, not cryptanalysis of the game's
// proprietary scheme, so encrypted payloads round-trip through a
// reversible placeholder transform rather than being faithfully
// decrypted (spec.md Non-goals: nothing in this module claims to
// interoperate with the real cipher).
func xorDecrypt(b []byte) []byte { return xorTransform(b) }
func xorEncrypt(b []byte) []byte { return xorTransform(b) }

func xorTransform(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ 0xFF
	}
	return out
}
