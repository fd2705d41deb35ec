package formats

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faultbox/remesh/pkg/binio"
	"github.com/Faultbox/remesh/pkg/mesh"
)

// srmVertex is one synthetic on-disk SRM vertex record.
type srmVertex struct {
	pos      [3]float32
	tangent  [3]uint8
	constant uint8
	normal   [3]uint8
	material uint8
	bones    [3]uint8
	u        uint8
	weights  [3]uint8
	v        uint8
}

func writeSRMVertex(w *binio.Writer, v srmVertex) {
	w.Vec3f(v.pos)
	w.Vec3ub(v.tangent)
	w.Uint8(v.constant)
	w.Vec3ub(v.normal)
	w.Uint8(v.material)
	w.Vec3ub(v.bones)
	w.Uint8(v.u)
	w.Vec3ub(v.weights)
	w.Uint8(v.v)
	w.Zeros(4)
}

func writeTestShader(w *binio.Writer) {
	w.Uint32(3)                          // type
	w.Vec4f([4]float32{0.5, 1, 2, 4})    // params
	for _, v := range []uint32{10, 20, 30, 40, 50, 60} {
		w.Uint32(v)
	}
}

// buildSRMV1 assembles a minimal V1 file: one shader, two textures, four
// vertices and faceCount vertex indices worth of face data.
func buildSRMV1(faceCount uint32, faces [][3]uint16) []byte {
	w := binio.NewWriter()
	w.ASCIIString("TEST")

	w.Uint32(1) // shader count
	writeTestShader(w)

	w.Uint32(2) // texture count
	w.FixedString("ROCK_A", srmTextureNameSize)
	w.Uint8(1)
	w.FixedString("ROCK_B", srmTextureNameSize)
	w.Uint8(0)

	w.Bytes([]byte{9, 8, 7, 6}) // reserved

	for i := 0; i < srmUnknownFloats; i++ {
		w.Float32(float32(i) * 0.25)
	}
	for i := 0; i < srmUnknownBytes; i++ {
		w.Uint8(uint8(i))
	}

	w.Uint32(4) // vertex count
	w.Uint32(faceCount)

	verts := []srmVertex{
		{pos: [3]float32{1, 2, 3}, tangent: [3]uint8{127, 127, 127}, constant: 2,
			normal: [3]uint8{0, 127, 255}, material: 1, bones: [3]uint8{0, 1, 2},
			u: 255, weights: [3]uint8{255, 0, 0}, v: 0},
		{pos: [3]float32{-1, 0, 0.5}, tangent: [3]uint8{130, 124, 127}, constant: 2,
			normal: [3]uint8{127, 255, 0}, material: 2, bones: [3]uint8{1, 0, 0},
			u: 51, weights: [3]uint8{128, 127, 0}, v: 102},
		{pos: [3]float32{0, 0, 0}, tangent: [3]uint8{127, 0, 255}, constant: 2,
			normal: [3]uint8{127, 127, 127}, material: 1, bones: [3]uint8{2, 0, 0},
			u: 0, weights: [3]uint8{255, 0, 0}, v: 255},
		{pos: [3]float32{4, 4, 4}, tangent: [3]uint8{255, 127, 0}, constant: 2,
			normal: [3]uint8{64, 64, 64}, material: 2, bones: [3]uint8{0, 0, 0},
			u: 128, weights: [3]uint8{255, 0, 0}, v: 128},
	}
	for _, v := range verts {
		writeSRMVertex(w, v)
	}

	for _, f := range faces {
		w.Vec3us(f)
	}
	return w.Buffer()
}

func TestDecodeSRM(t *testing.T) {
	data := buildSRMV1(6, [][3]uint16{{0, 1, 2}, {1, 2, 3}})

	d, err := DecodeSRM(data)
	if err != nil {
		t.Fatalf("DecodeSRM: %v", err)
	}

	if d.Magic != "TEST" {
		t.Errorf("Magic = %q", d.Magic)
	}
	if d.SRM == nil {
		t.Fatal("SRM header not set")
	}
	if len(d.SRM.Shaders) != 1 {
		t.Fatalf("got %d shaders, want 1", len(d.SRM.Shaders))
	}
	s := d.SRM.Shaders[0]
	if s.Type != 3 || s.Params != [4]float32{0.5, 1, 2, 4} || s.OpaqueOffset != 10 || s.AdditiveLength != 60 {
		t.Errorf("shader = %+v", s)
	}

	wantTex := []string{"ROCK_A", "ROCK_B"}
	if len(d.Textures) != 2 || d.Textures[0] != wantTex[0] || d.Textures[1] != wantTex[1] {
		t.Errorf("Textures = %v, want %v", d.Textures, wantTex)
	}
	if d.SRM.TextureFlags[0] != 1 || d.SRM.TextureFlags[1] != 0 {
		t.Errorf("TextureFlags = %v", d.SRM.TextureFlags)
	}
	if d.SRM.Reserved != [4]byte{9, 8, 7, 6} {
		t.Errorf("Reserved = %v", d.SRM.Reserved)
	}
	if len(d.SRM.UnknownFloats) != srmUnknownFloats || d.SRM.UnknownFloats[4] != 1.0 {
		t.Errorf("UnknownFloats: len %d, [4] = %v", len(d.SRM.UnknownFloats), d.SRM.UnknownFloats[4])
	}
	if len(d.SRM.UnknownBytes) != srmUnknownBytes || d.SRM.UnknownBytes[100] != 100 {
		t.Errorf("UnknownBytes: len %d", len(d.SRM.UnknownBytes))
	}
	if d.SRM.Constant != 2 {
		t.Errorf("Constant = %d, want 2", d.SRM.Constant)
	}

	if d.VertexCount() != 4 {
		t.Fatalf("VertexCount = %d, want 4", d.VertexCount())
	}
	if d.Vertices[0] != [3]float32{1, 2, 3} {
		t.Errorf("Vertices[0] = %v", d.Vertices[0])
	}

	// Byte triples decode via value-127, without normalization.
	if d.Tangents[0] != [3]float32{0, 0, 0} {
		t.Errorf("Tangents[0] = %v, want zero offset", d.Tangents[0])
	}
	if d.Normals[0] != [3]float32{-127, 0, 128} {
		t.Errorf("Normals[0] = %v, want [-127 0 128]", d.Normals[0])
	}
	if d.Tangents[1] != [3]float32{3, -3, 0} {
		t.Errorf("Tangents[1] = %v, want [3 -3 0]", d.Tangents[1])
	}

	// U = byte/255, V = 1 - byte/255.
	if d.UVs[0] != [2]float32{1, 1} {
		t.Errorf("UVs[0] = %v, want [1 1]", d.UVs[0])
	}
	if d.UVs[2] != [2]float32{0, 0} {
		t.Errorf("UVs[2] = %v, want [0 0]", d.UVs[2])
	}

	if d.MaterialIndex[1] != 2 || d.BoneIndices[0] != [3]uint8{0, 1, 2} || d.BoneWeights[1] != [3]uint8{128, 127, 0} {
		t.Errorf("per-vertex attributes: material %v, bones %v, weights %v",
			d.MaterialIndex, d.BoneIndices, d.BoneWeights)
	}

	// Each on-disk triple comes back reversed.
	if d.FaceCount() != 2 {
		t.Fatalf("FaceCount = %d, want 2", d.FaceCount())
	}
	if d.Faces[0] != [3]uint16{2, 1, 0} {
		t.Errorf("Faces[0] = %v, want [2 1 0]", d.Faces[0])
	}
	if d.Faces[1] != [3]uint16{3, 2, 1} {
		t.Errorf("Faces[1] = %v, want [3 2 1]", d.Faces[1])
	}
}

func TestDecodeSRM_FaceCountFloors(t *testing.T) {
	// A count of 10 indices yields 3 whole triangles; the leftover index
	// stays unread. The file carries all 10 indices.
	data := buildSRMV1(10, [][3]uint16{{0, 1, 2}, {1, 2, 3}, {2, 3, 0}})
	data = append(data, 0x01, 0x00) // the dangling tenth index

	d, err := DecodeSRM(data)
	if err != nil {
		t.Fatalf("DecodeSRM: %v", err)
	}
	if d.FaceCount() != 3 {
		t.Errorf("FaceCount = %d, want 3", d.FaceCount())
	}
}

func TestDecodeSRM_Truncated(t *testing.T) {
	full := buildSRMV1(6, [][3]uint16{{0, 1, 2}, {1, 2, 3}})

	for _, cut := range []int{0, 3, 10, 50, 120, len(full) / 2, len(full) - 1} {
		_, err := DecodeSRM(full[:cut])
		if !errors.Is(err, ErrTruncatedData) && !errors.Is(err, ErrMalformedCount) {
			t.Errorf("cut at %d: got %v, want a truncation or count error", cut, err)
		}
	}
}

func TestDecodeSRM_ImplausibleCounts(t *testing.T) {
	w := binio.NewWriter()
	w.ASCIIString("TEST")
	w.Uint32(0xffffffff) // shader count far beyond the buffer
	w.Zeros(64)

	_, err := DecodeSRM(w.Buffer())
	if !errors.Is(err, ErrMalformedCount) {
		t.Errorf("got %v, want ErrMalformedCount", err)
	}
}

func TestSRM_RoundTrip(t *testing.T) {
	original := buildSRMV1(6, [][3]uint16{{0, 1, 2}, {1, 2, 3}})

	d, err := DecodeSRM(original)
	if err != nil {
		t.Fatalf("DecodeSRM: %v", err)
	}
	out, err := EncodeSRM(d)
	if err != nil {
		t.Fatalf("EncodeSRM: %v", err)
	}
	if !bytes.Equal(out, original) {
		t.Fatalf("re-encoded file differs: %d bytes vs %d", len(out), len(original))
	}
}

func TestEncodeSRM_ShapeMismatch(t *testing.T) {
	data := buildSRMV1(6, [][3]uint16{{0, 1, 2}, {1, 2, 3}})
	d, err := DecodeSRM(data)
	if err != nil {
		t.Fatalf("DecodeSRM: %v", err)
	}
	d.Normals = d.Normals[:2]

	w := binio.NewWriter()
	if err := WriteSRM(w, d); !errors.Is(err, mesh.ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
	if w.Len() != 0 {
		t.Errorf("%d bytes written before the shape check", w.Len())
	}
}

func TestEncodeSRM_Defaults(t *testing.T) {
	// A mesh built from scratch, with no retained header, still encodes.
	d := &mesh.Data{
		Magic:         "TEST",
		Vertices:      [][3]float32{{0, 0, 0}},
		Normals:       [][3]float32{{0, 0, 1}},
		Tangents:      [][3]float32{{1, 0, 0}},
		UVs:           [][2]float32{{0, 1}},
		BoneIndices:   [][3]uint8{{0, 0, 0}},
		BoneWeights:   [][3]uint8{{255, 0, 0}},
		MaterialIndex: []uint8{1},
		Textures:      []string{"SKIN"},
	}

	out, err := EncodeSRM(d)
	if err != nil {
		t.Fatalf("EncodeSRM: %v", err)
	}
	back, err := DecodeSRM(out)
	if err != nil {
		t.Fatalf("DecodeSRM after encode: %v", err)
	}
	if back.VertexCount() != 1 || back.Textures[0] != "SKIN" || back.SRM.Constant != srmConstantDefault {
		t.Errorf("round-trip of headerless mesh: %d vertices, textures %v, constant %d",
			back.VertexCount(), back.Textures, back.SRM.Constant)
	}
	if len(back.SRM.UnknownFloats) != srmUnknownFloats {
		t.Errorf("unknown block not normalized: %d floats", len(back.SRM.UnknownFloats))
	}
}
