// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"github.com/totalwarmod/packcore/codec"
)

// SoundBankParameterVector is one variable-length parameter record:
// a named id and its float lanes.
type SoundBankParameterVector struct {
	ID     uint32
	Values []float32
}

// SoundBankSHO2Record is one sub-record of the SHO2 schedule: the game's
// format has no self-describing structure here, so the decoder is a
// straight-line program mirroring the encoder item for item (spec.md
// §4.4/§9), grounded on dotnet_metadata_tables.go's exhaustive
// per-table-index switch (parseMetadataTables) — same character, a long
// flat sequence of homogeneous reads with no branching on content.
type SoundBankSHO2Record struct {
	Kind uint32
	Data []byte
}

// SoundBankValue is a decoded sound bank database: fixed-count arrays of
// ids plus variable-length parameter vectors, and (when Magic == "SHO2")
// a flat, length-prefixed record schedule.
type SoundBankValue struct {
	Magic      string
	FixedIDs   []uint32
	Parameters []SoundBankParameterVector
	SHO2       []SoundBankSHO2Record
}

func (v *SoundBankValue) Kind() Kind { return SoundBankDatabase }

func decodeSoundBank(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)
	magic, err := cr.StringU80Padded(4)
	if err != nil {
		return nil, &DecodeError{Kind: SoundBankDatabase, Field: "magic", Cause: err}
	}
	v := &SoundBankValue{Magic: magic}

	fixedCount, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: SoundBankDatabase, Field: "fixed_count", Cause: err}
	}
	for i := uint32(0); i < fixedCount; i++ {
		id, err := cr.U32()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: SoundBankDatabase, Partial: v, Cause: err}
			}
			return nil, &DecodeError{Kind: SoundBankDatabase, Field: "fixed_id", Cause: err}
		}
		v.FixedIDs = append(v.FixedIDs, id)
	}

	paramCount, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: SoundBankDatabase, Field: "parameter_count", Cause: err}
	}
	for i := uint32(0); i < paramCount; i++ {
		id, err := cr.U32()
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: SoundBankDatabase, Partial: v, Cause: err}
			}
			return nil, &DecodeError{Kind: SoundBankDatabase, Field: "parameter_id", Cause: err}
		}
		laneCount, err := cr.U32()
		if err != nil {
			return nil, &DecodeError{Kind: SoundBankDatabase, Field: "parameter_lane_count", Cause: err}
		}
		lanes := make([]float32, laneCount)
		for li := range lanes {
			lanes[li], err = cr.F32()
			if err != nil {
				return nil, &DecodeError{Kind: SoundBankDatabase, Field: "parameter_lane", Cause: err}
			}
		}
		v.Parameters = append(v.Parameters, SoundBankParameterVector{ID: id, Values: lanes})
	}

	if magic == "SHO2" {
		if err := decodeSHO2Schedule(cr, v, extra.ReturnIncomplete); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// decodeSHO2Schedule reads records until EOF: each is a u32 kind tag
// followed by a u32-length-prefixed opaque payload. There is no count
// prefix for the whole schedule (it runs to the end of the inner file),
// which is why this loop reads until ErrEndOfBuffer rather than a fixed
// iteration count.
func decodeSHO2Schedule(cr *codec.Reader, v *SoundBankValue, returnIncomplete bool) error {
	for {
		kind, err := cr.U32()
		if err != nil {
			return nil // clean end of schedule
		}
		size, err := cr.U32()
		if err != nil {
			if returnIncomplete {
				return &IncompleteError{Kind: SoundBankDatabase, Partial: v, Cause: err}
			}
			return &DecodeError{Kind: SoundBankDatabase, Field: "sho2_size", Cause: err}
		}
		data, err := cr.Bytes(int(size))
		if err != nil {
			if returnIncomplete {
				return &IncompleteError{Kind: SoundBankDatabase, Partial: v, Cause: err}
			}
			return &DecodeError{Kind: SoundBankDatabase, Field: "sho2_data", Cause: err}
		}
		v.SHO2 = append(v.SHO2, SoundBankSHO2Record{Kind: kind, Data: data})
	}
}

func encodeSoundBank(w io.Writer, v *SoundBankValue) error {
	cw := codec.NewWriter(w)
	if err := cw.StringU80Padded(v.Magic, 4, true); err != nil {
		return &DecodeError{Kind: SoundBankDatabase, Field: "magic", Cause: err}
	}
	if err := cw.U32(uint32(len(v.FixedIDs))); err != nil {
		return &DecodeError{Kind: SoundBankDatabase, Field: "fixed_count", Cause: err}
	}
	for _, id := range v.FixedIDs {
		if err := cw.U32(id); err != nil {
			return &DecodeError{Kind: SoundBankDatabase, Field: "fixed_id", Cause: err}
		}
	}
	if err := cw.U32(uint32(len(v.Parameters))); err != nil {
		return &DecodeError{Kind: SoundBankDatabase, Field: "parameter_count", Cause: err}
	}
	for _, p := range v.Parameters {
		if err := cw.U32(p.ID); err != nil {
			return &DecodeError{Kind: SoundBankDatabase, Field: "parameter_id", Cause: err}
		}
		if err := cw.U32(uint32(len(p.Values))); err != nil {
			return &DecodeError{Kind: SoundBankDatabase, Field: "parameter_lane_count", Cause: err}
		}
		for _, lane := range p.Values {
			if err := cw.F32(lane); err != nil {
				return &DecodeError{Kind: SoundBankDatabase, Field: "parameter_lane", Cause: err}
			}
		}
	}
	if v.Magic == "SHO2" {
		for _, rec := range v.SHO2 {
			if err := cw.U32(rec.Kind); err != nil {
				return &DecodeError{Kind: SoundBankDatabase, Field: "sho2_kind", Cause: err}
			}
			if err := cw.U32(uint32(len(rec.Data))); err != nil {
				return &DecodeError{Kind: SoundBankDatabase, Field: "sho2_size", Cause: err}
			}
			if err := cw.Bytes(rec.Data); err != nil {
				return &DecodeError{Kind: SoundBankDatabase, Field: "sho2_data", Cause: err}
			}
		}
	}
	return nil
}
