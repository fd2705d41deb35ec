// Package mesh defines the decoded in-memory representation shared by
// the SRM and TRM codecs. A Data value is produced by one decode call,
// consumed read-only by a scene builder or an encode call, and then
// discarded; it holds no back-references.
package mesh

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when per-vertex arrays disagree on length.
// Encoders check this before writing any bytes.
var ErrShapeMismatch = errors.New("mesh: inconsistent array lengths")

// ShaderRecord is one entry of the shader table shared by the SRM-V1 and
// TRM headers: a type tag, four parameters and three offset/length pairs
// for the opaque, alpha and additive passes.
type ShaderRecord struct {
	Type           uint32
	Params         [4]float32
	OpaqueOffset   uint32
	OpaqueLength   uint32
	AlphaOffset    uint32
	AlphaLength    uint32
	AdditiveOffset uint32
	AdditiveLength uint32
}

// SRMHeader retains the SRM-V1 header fields needed to re-encode a file
// byte-exactly. The unknown blocks are opaque payloads: preserved
// verbatim, never interpreted.
type SRMHeader struct {
	Shaders       []ShaderRecord
	TextureFlags  []uint8 // one flag byte per texture name
	Reserved      [4]byte
	UnknownFloats []float32 // 384 entries
	UnknownBytes  []byte    // 128 entries
	// Constant is the per-vertex constant byte (observed value 2,
	// meaning unknown). Captured once at decode and replayed on every
	// vertex at encode.
	Constant uint8
}

// SRM2Header retains the SRM-V2/V3 header. The reserved regions and the
// version-dependent skip block are kept verbatim for round-trips.
type SRM2Header struct {
	Version    uint32
	Reserved0  [24]byte // repeated/reserved face counts, uninterpreted
	FaceCountA uint32
	FaceCountB uint32
	UnkVal     uint32
	FaceCountC uint32
	Reserved1  [4]byte
	// VersionBlock is the 96-byte (version 2) or 140-byte (version 3)
	// header region the decoder skips over.
	VersionBlock  []byte
	UnknownFloats []float32 // 384 entries, or 684 on the large-block path
	UnknownBytes  []byte    // 128 entries, or 132 on the large-block path
	Constant      uint8
}

// TRMHeader retains the TRM header plus the scan-detected padding
// lengths, so an encode can replay the same zero regions.
type TRMHeader struct {
	Shaders []ShaderRecord
	// TexturePadding is the number of zero bytes found between the
	// texture table and the face count.
	TexturePadding int
	// FacePadding is the number of zero bytes found between the face
	// list and the vertex data.
	FacePadding int
}

// Data is one decoded sub-mesh. Current files are observed to contain
// exactly one sub-mesh each.
type Data struct {
	// Magic is the 4-byte leading tag, preserved as read and never
	// validated against a known value.
	Magic string

	Vertices [][3]float32
	// Normals are decoded from unsigned byte triples via value-127 and
	// kept as raw offsets, not unit vectors.
	Normals [][3]float32
	// Tangents use the same decoding as normals. Nil for TRM meshes.
	Tangents [][3]float32
	// UVs carry the baked-in V flip: U = byte/255, V = 1 - byte/255.
	UVs [][2]float32

	BoneIndices [][3]uint8
	BoneWeights [][3]uint8

	// MaterialIndex holds one 1-based texture reference per vertex.
	MaterialIndex []uint8

	// Faces are triangle index triples, already winding-corrected
	// (each on-disk triple is stored reversed).
	Faces [][3]uint16

	// Textures holds sanitized texture names (SRM) or decimal texture
	// ID strings (TRM).
	Textures []string

	// Exactly one of the following is set, matching the source format.
	SRM  *SRMHeader
	SRM2 *SRM2Header
	TRM  *TRMHeader
}

// VertexCount returns the number of vertices.
func (d *Data) VertexCount() int { return len(d.Vertices) }

// FaceCount returns the number of stored triangles.
func (d *Data) FaceCount() int { return len(d.Faces) }

// Validate checks that every per-vertex array matches the vertex count
// and that face indices stay within it. withTangents is true for the
// SRM variants, which require a tangent per vertex.
func (d *Data) Validate(withTangents bool) error {
	n := len(d.Vertices)
	check := func(name string, got int) error {
		if got != n {
			return fmt.Errorf("%w: %d %s for %d vertices", ErrShapeMismatch, got, name, n)
		}
		return nil
	}
	if err := check("normals", len(d.Normals)); err != nil {
		return err
	}
	if err := check("uv pairs", len(d.UVs)); err != nil {
		return err
	}
	if err := check("bone index triples", len(d.BoneIndices)); err != nil {
		return err
	}
	if err := check("bone weight triples", len(d.BoneWeights)); err != nil {
		return err
	}
	if err := check("material indices", len(d.MaterialIndex)); err != nil {
		return err
	}
	if withTangents {
		if err := check("tangents", len(d.Tangents)); err != nil {
			return err
		}
	}
	for i, f := range d.Faces {
		for _, idx := range f {
			if int(idx) >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrShapeMismatch, i, idx, n)
			}
		}
	}
	return nil
}

// MaterialSlot resolves the 1-based material index of a vertex to a
// 0-based slot into Textures. Index 0 and out-of-range values clamp to
// slot 0; shipped game files contain such vertices and are tolerated.
// ok reports whether the index was in range.
func (d *Data) MaterialSlot(vertex int) (slot int, ok bool) {
	if vertex < 0 || vertex >= len(d.MaterialIndex) {
		return 0, false
	}
	slot = int(d.MaterialIndex[vertex]) - 1
	if slot < 0 || slot >= len(d.Textures) {
		return 0, false
	}
	return slot, true
}
