// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAnimPackRoundTrip(t *testing.T) {
	original := &AnimPackValue{
		Version: 3,
		Entries: []AnimPackEntry{
			{Path: "animations/walk.anim", Data: []byte{1, 2, 3}},
			{Path: "animations/run.anim", Data: []byte{}},
		},
	}
	var buf bytes.Buffer
	if err := encodeAnimPack(&buf, original); err != nil {
		t.Fatalf("encodeAnimPack = %v", err)
	}
	decoded, err := decodeAnimPack(bytes.NewReader(buf.Bytes()), Extra{})
	if err != nil {
		t.Fatalf("decodeAnimPack = %v", err)
	}
	got := decoded.(*AnimPackValue)
	if got.Version != original.Version || len(got.Entries) != len(original.Entries) {
		t.Fatalf("decoded = %+v, want %+v", got, original)
	}
	for i := range original.Entries {
		if got.Entries[i].Path != original.Entries[i].Path {
			t.Errorf("entry %d path = %q, want %q", i, got.Entries[i].Path, original.Entries[i].Path)
		}
		if !bytes.Equal(got.Entries[i].Data, original.Entries[i].Data) {
			t.Errorf("entry %d data = % x, want % x", i, got.Entries[i].Data, original.Entries[i].Data)
		}
	}
}

func TestUnitVariantRoundTripVersioned(t *testing.T) {
	tests := []struct {
		name    string
		version uint32
	}{
		{"pre-unknown-value layout", 1},
		{"with unknown-value layout", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := &UnitVariantValue{
				Version: tt.version,
				Categories: []UnitVariantCategory{
					{
						ID:   7,
						Name: "helmets",
						Variants: []UnitVariantEntry{
							{MeshFile: "helmet_01.rigid_model_v2", TextureFolder: "variants/helmets", UnknownValue: 9},
						},
					},
				},
			}
			var buf bytes.Buffer
			if err := encodeUnitVariant(&buf, original); err != nil {
				t.Fatalf("encodeUnitVariant = %v", err)
			}
			decoded, err := decodeUnitVariant(bytes.NewReader(buf.Bytes()), Extra{})
			if err != nil {
				t.Fatalf("decodeUnitVariant = %v", err)
			}
			got := decoded.(*UnitVariantValue)
			wantUnknown := uint16(9)
			if tt.version < 2 {
				wantUnknown = 0 // field absent pre-v2, never written or read
			}
			if got.Categories[0].Variants[0].UnknownValue != wantUnknown {
				t.Errorf("UnknownValue = %d, want %d", got.Categories[0].Variants[0].UnknownValue, wantUnknown)
			}
			if got.Categories[0].Name != "helmets" {
				t.Errorf("category name = %q, want helmets", got.Categories[0].Name)
			}
		})
	}
}

func TestRigidModelRoundTrip(t *testing.T) {
	original := &RigidModelValue{
		Version: 1,
		Lods: []RigidModelLod{
			{
				VisibilityDistance: 100.5,
				AuthoredLodNumber:  0,
				QualityLevel:       1,
				MeshBlocks: []RigidModelMeshBlock{
					{
						MeshName: "body",
						Material: RigidModelMaterial{
							TextureDirectory: "units/textures",
							ShaderFilter:     "default",
							Textures: []RigidModelTexture{
								{TypeCode: 0, Path: "diffuse.dds"},
							},
						},
					},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := encodeRigidModel(&buf, original); err != nil {
		t.Fatalf("encodeRigidModel = %v", err)
	}
	decoded, err := decodeRigidModel(bytes.NewReader(buf.Bytes()), Extra{})
	if err != nil {
		t.Fatalf("decodeRigidModel = %v", err)
	}
	got := decoded.(*RigidModelValue)
	if !reflect.DeepEqual(got, original) {
		t.Errorf("decoded = %+v, want %+v", got, original)
	}
}

func TestSoundBankRoundTripWithSHO2Schedule(t *testing.T) {
	original := &SoundBankValue{
		Magic:    "SHO2",
		FixedIDs: []uint32{1, 2, 3},
		Parameters: []SoundBankParameterVector{
			{ID: 42, Values: []float32{0.1, 0.2, 0.3}},
		},
		SHO2: []SoundBankSHO2Record{
			{Kind: 1, Data: []byte{0xAA, 0xBB}},
			{Kind: 2, Data: []byte{}},
		},
	}
	var buf bytes.Buffer
	if err := encodeSoundBank(&buf, original); err != nil {
		t.Fatalf("encodeSoundBank = %v", err)
	}
	decoded, err := decodeSoundBank(bytes.NewReader(buf.Bytes()), Extra{})
	if err != nil {
		t.Fatalf("decodeSoundBank = %v", err)
	}
	got := decoded.(*SoundBankValue)
	if !reflect.DeepEqual(got, original) {
		t.Errorf("decoded = %+v, want %+v", got, original)
	}
}

func TestSoundBankRoundTripWithoutSHO2(t *testing.T) {
	original := &SoundBankValue{
		Magic:    "BNK1",
		FixedIDs: []uint32{9},
	}
	var buf bytes.Buffer
	if err := encodeSoundBank(&buf, original); err != nil {
		t.Fatalf("encodeSoundBank = %v", err)
	}
	decoded, err := decodeSoundBank(bytes.NewReader(buf.Bytes()), Extra{})
	if err != nil {
		t.Fatalf("decodeSoundBank = %v", err)
	}
	got := decoded.(*SoundBankValue)
	if got.Magic != "BNK1" || len(got.SHO2) != 0 {
		t.Errorf("decoded = %+v, want no SHO2 records", got)
	}
}
