// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package filetype

import (
	"io"

	"github.com/totalwarmod/packcore/codec"
)

// RigidModelTexture is one (type_code, path) entry of a material block.
type RigidModelTexture struct {
	TypeCode int32
	Path     string
}

// RigidModelMaterial describes one mesh block's shading inputs.
type RigidModelMaterial struct {
	TextureDirectory string
	ShaderFilter     string
	Textures         []RigidModelTexture
}

// RigidModelMeshBlock is one mesh within a lod.
type RigidModelMeshBlock struct {
	MeshName string
	Material RigidModelMaterial
}

// RigidModelLod is one level-of-detail entry, grounded on resource.go's
// recursive directory-of-entries shape (ResourceDirectory ->
// ResourceEntry -> nested ResourceDirectory), here flattened to
// lod -> mesh -> texture (spec.md §4.4).
type RigidModelLod struct {
	VisibilityDistance float32
	AuthoredLodNumber  int32
	QualityLevel       int32
	MeshBlocks         []RigidModelMeshBlock
}

// RigidModelValue is a decoded rigid model: version, then N lods.
type RigidModelValue struct {
	Version uint32
	Lods    []RigidModelLod
}

func (v *RigidModelValue) Kind() Kind { return RigidModel }

func decodeRigidModel(r io.ReadSeeker, extra Extra) (Value, error) {
	cr := codec.NewReader(r)
	version, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: RigidModel, Field: "version", Cause: err}
	}
	lodCount, err := cr.U32()
	if err != nil {
		return nil, &DecodeError{Kind: RigidModel, Field: "lod_count", Cause: err}
	}

	v := &RigidModelValue{Version: version}
	for i := uint32(0); i < lodCount; i++ {
		lod, err := decodeRigidModelLod(cr)
		if err != nil {
			if extra.ReturnIncomplete {
				return nil, &IncompleteError{Kind: RigidModel, Partial: v, Cause: err}
			}
			return nil, err
		}
		v.Lods = append(v.Lods, lod)
	}
	return v, nil
}

func decodeRigidModelLod(cr *codec.Reader) (RigidModelLod, error) {
	var lod RigidModelLod
	var err error
	if lod.VisibilityDistance, err = cr.F32(); err != nil {
		return lod, &DecodeError{Kind: RigidModel, Field: "visibility_distance", Cause: err}
	}
	if lod.AuthoredLodNumber, err = cr.I32(); err != nil {
		return lod, &DecodeError{Kind: RigidModel, Field: "authored_lod_number", Cause: err}
	}
	if lod.QualityLevel, err = cr.I32(); err != nil {
		return lod, &DecodeError{Kind: RigidModel, Field: "quality_level", Cause: err}
	}
	meshCount, err := cr.U32()
	if err != nil {
		return lod, &DecodeError{Kind: RigidModel, Field: "mesh_count", Cause: err}
	}
	for i := uint32(0); i < meshCount; i++ {
		mb, err := decodeRigidModelMeshBlock(cr)
		if err != nil {
			return lod, err
		}
		lod.MeshBlocks = append(lod.MeshBlocks, mb)
	}
	return lod, nil
}

func decodeRigidModelMeshBlock(cr *codec.Reader) (RigidModelMeshBlock, error) {
	var mb RigidModelMeshBlock
	name, err := cr.SizedStringU8()
	if err != nil {
		return mb, &DecodeError{Kind: RigidModel, Field: "mesh_name", Cause: err}
	}
	mb.MeshName = name

	texDir, err := cr.SizedStringU8()
	if err != nil {
		return mb, &DecodeError{Kind: RigidModel, Field: "texture_directory", Cause: err}
	}
	shader, err := cr.SizedStringU8()
	if err != nil {
		return mb, &DecodeError{Kind: RigidModel, Field: "shader_filter", Cause: err}
	}
	mb.Material.TextureDirectory = texDir
	mb.Material.ShaderFilter = shader

	texCount, err := cr.U32()
	if err != nil {
		return mb, &DecodeError{Kind: RigidModel, Field: "texture_count", Cause: err}
	}
	for i := uint32(0); i < texCount; i++ {
		typeCode, err := cr.I32()
		if err != nil {
			return mb, &DecodeError{Kind: RigidModel, Field: "texture_type_code", Cause: err}
		}
		path, err := cr.SizedStringU8()
		if err != nil {
			return mb, &DecodeError{Kind: RigidModel, Field: "texture_path", Cause: err}
		}
		mb.Material.Textures = append(mb.Material.Textures, RigidModelTexture{TypeCode: typeCode, Path: path})
	}
	return mb, nil
}

func encodeRigidModel(w io.Writer, v *RigidModelValue) error {
	cw := codec.NewWriter(w)
	if err := cw.U32(v.Version); err != nil {
		return &DecodeError{Kind: RigidModel, Field: "version", Cause: err}
	}
	if err := cw.U32(uint32(len(v.Lods))); err != nil {
		return &DecodeError{Kind: RigidModel, Field: "lod_count", Cause: err}
	}
	for _, lod := range v.Lods {
		if err := cw.F32(lod.VisibilityDistance); err != nil {
			return &DecodeError{Kind: RigidModel, Field: "visibility_distance", Cause: err}
		}
		if err := cw.I32(lod.AuthoredLodNumber); err != nil {
			return &DecodeError{Kind: RigidModel, Field: "authored_lod_number", Cause: err}
		}
		if err := cw.I32(lod.QualityLevel); err != nil {
			return &DecodeError{Kind: RigidModel, Field: "quality_level", Cause: err}
		}
		if err := cw.U32(uint32(len(lod.MeshBlocks))); err != nil {
			return &DecodeError{Kind: RigidModel, Field: "mesh_count", Cause: err}
		}
		for _, mb := range lod.MeshBlocks {
			if err := cw.SizedStringU8(mb.MeshName); err != nil {
				return &DecodeError{Kind: RigidModel, Field: "mesh_name", Cause: err}
			}
			if err := cw.SizedStringU8(mb.Material.TextureDirectory); err != nil {
				return &DecodeError{Kind: RigidModel, Field: "texture_directory", Cause: err}
			}
			if err := cw.SizedStringU8(mb.Material.ShaderFilter); err != nil {
				return &DecodeError{Kind: RigidModel, Field: "shader_filter", Cause: err}
			}
			if err := cw.U32(uint32(len(mb.Material.Textures))); err != nil {
				return &DecodeError{Kind: RigidModel, Field: "texture_count", Cause: err}
			}
			for _, tex := range mb.Material.Textures {
				if err := cw.I32(tex.TypeCode); err != nil {
					return &DecodeError{Kind: RigidModel, Field: "texture_type_code", Cause: err}
				}
				if err := cw.SizedStringU8(tex.Path); err != nil {
					return &DecodeError{Kind: RigidModel, Field: "texture_path", Cause: err}
				}
			}
		}
	}
	return nil
}
