// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package filetype implements packcore's per-kind inner-file
// decoders/encoders: DB, Loc, AnimPack, UnitVariant, RigidModel,
// SoundBankDatabase, Text, Image, and Raw (spec.md §4.4). Each kind is a
// tagged Go type implementing the Value interface; Decode/Encode route by
// tag rather than through a virtual-call hierarchy, so unknown kinds
// pass straight through as Raw and still round-trip.
package filetype

import (
	"io"
	"path"
	"strings"

	"github.com/totalwarmod/packcore/schema"
)

// Kind identifies which grammar an inner file's bytes follow.
type Kind int

const (
	Raw Kind = iota
	DB
	Loc
	AnimPack
	UnitVariant
	RigidModel
	SoundBankDatabase
	Text
	Image
)

func (k Kind) String() string {
	switch k {
	case DB:
		return "DB"
	case Loc:
		return "Loc"
	case AnimPack:
		return "AnimPack"
	case UnitVariant:
		return "UnitVariant"
	case RigidModel:
		return "RigidModel"
	case SoundBankDatabase:
		return "SoundBankDatabase"
	case Text:
		return "Text"
	case Image:
		return "Image"
	default:
		return "Raw"
	}
}

var extensionKinds = map[string]Kind{
	".loc":        Loc,
	".animpack":   AnimPack,
	".variantmeshdefinition": UnitVariant,
	".rigid_model_v2":        RigidModel,
	".bnk":        SoundBankDatabase,
	".txt":        Text,
	".xml":        Text,
	".lua":        Text,
	".png":        Image,
	".jpg":        Image,
	".jpeg":       Image,
	".dds":        Image,
	".tga":        Image,
}

var imageMagics = [][2][]byte{
	{[]byte("\x89PNG"), []byte("png")},
	{[]byte("DDS "), []byte("dds")},
	{[]byte{0xFF, 0xD8, 0xFF}, []byte("jpg")},
}

// DetectKind identifies an inner file's kind: first by extension, then
// by known path prefixes (db/ -> DB), then by a cheap content sniff of
// the first bytes if requested (spec.md §4.4).
func DetectKind(containerPath string, sniff []byte) Kind {
	ext := strings.ToLower(path.Ext(containerPath))
	if k, ok := extensionKinds[ext]; ok {
		return k
	}
	lower := strings.ToLower(containerPath)
	if strings.HasPrefix(lower, "db/") {
		return DB
	}
	if strings.HasPrefix(lower, "text/") {
		return Text
	}
	if len(sniff) >= 4 {
		for _, m := range imageMagics {
			if len(sniff) >= len(m[0]) && string(sniff[:len(m[0])]) == string(m[0]) {
				return Image
			}
		}
	}
	return Raw
}

// Extra carries the context a schema-driven decode needs: the schema
// handle, the table name (DB/Loc only), and whether a partial decode
// should be returned as an *IncompleteError rather than discarded on
// failure (spec.md §4.4).
type Extra struct {
	Schema           *schema.Schema
	TableName        string
	ReturnIncomplete bool
}

// Value is implemented by every decoded file kind.
type Value interface {
	Kind() Kind
}

// Decode dispatches to the kind-specific decoder.
func Decode(kind Kind, r io.ReadSeeker, extra Extra) (Value, error) {
	switch kind {
	case DB:
		return decodeDB(r, extra)
	case Loc:
		return decodeLoc(r, extra)
	case AnimPack:
		return decodeAnimPack(r, extra)
	case UnitVariant:
		return decodeUnitVariant(r, extra)
	case RigidModel:
		return decodeRigidModel(r, extra)
	case SoundBankDatabase:
		return decodeSoundBank(r, extra)
	case Text:
		return decodeText(r, extra)
	case Image:
		return decodeImage(r, extra)
	default:
		return decodeRaw(r, extra)
	}
}

// Encode dispatches to the kind-specific encoder, routing on v's
// concrete (tagged) type.
func Encode(w io.Writer, v Value) error {
	switch val := v.(type) {
	case *DBValue:
		return encodeDB(w, val)
	case *LocValue:
		return encodeLoc(w, val)
	case *AnimPackValue:
		return encodeAnimPack(w, val)
	case *UnitVariantValue:
		return encodeUnitVariant(w, val)
	case *RigidModelValue:
		return encodeRigidModel(w, val)
	case *SoundBankValue:
		return encodeSoundBank(w, val)
	case *TextValue:
		return encodeText(w, val)
	case *ImageValue:
		return encodeImage(w, val)
	case *RawValue:
		return encodeRaw(w, val)
	default:
		return &UnsupportedValueError{}
	}
}
