package mesh

import (
	"errors"
	"testing"
)

// testData returns a consistent two-vertex mesh.
func testData() *Data {
	return &Data{
		Magic:         "TEST",
		Vertices:      [][3]float32{{0, 0, 0}, {1, 1, 1}},
		Normals:       [][3]float32{{0, 0, 1}, {0, 1, 0}},
		Tangents:      [][3]float32{{1, 0, 0}, {1, 0, 0}},
		UVs:           [][2]float32{{0, 0}, {1, 1}},
		BoneIndices:   [][3]uint8{{0, 0, 0}, {1, 0, 0}},
		BoneWeights:   [][3]uint8{{255, 0, 0}, {128, 127, 0}},
		MaterialIndex: []uint8{1, 2},
		Faces:         [][3]uint16{{0, 1, 0}},
		Textures:      []string{"A", "B"},
	}
}

func TestValidate(t *testing.T) {
	if err := testData().Validate(true); err != nil {
		t.Errorf("consistent mesh: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *Data)
	}{
		{"missing normal", func(d *Data) { d.Normals = d.Normals[:1] }},
		{"missing uv", func(d *Data) { d.UVs = nil }},
		{"missing bone indices", func(d *Data) { d.BoneIndices = d.BoneIndices[:1] }},
		{"missing bone weights", func(d *Data) { d.BoneWeights = nil }},
		{"missing material index", func(d *Data) { d.MaterialIndex = d.MaterialIndex[:1] }},
		{"missing tangent", func(d *Data) { d.Tangents = nil }},
		{"face index out of range", func(d *Data) { d.Faces[0][2] = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testData()
			tt.mutate(d)
			if err := d.Validate(true); !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("got %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestValidate_TangentsOptional(t *testing.T) {
	d := testData()
	d.Tangents = nil
	if err := d.Validate(false); err != nil {
		t.Errorf("tangent-less mesh with withTangents=false: %v", err)
	}
}

func TestMaterialSlot(t *testing.T) {
	d := testData()
	d.MaterialIndex = []uint8{1, 2, 0, 9}
	d.Textures = []string{"A", "B"}

	tests := []struct {
		vertex   int
		wantSlot int
		wantOK   bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, 0, false},  // index 0 is below the 1-based range
		{3, 0, false},  // index 9 exceeds the texture table
		{-1, 0, false}, // no such vertex
		{99, 0, false},
	}

	for _, tt := range tests {
		slot, ok := d.MaterialSlot(tt.vertex)
		if slot != tt.wantSlot || ok != tt.wantOK {
			t.Errorf("MaterialSlot(%d) = %d, %v; want %d, %v",
				tt.vertex, slot, ok, tt.wantSlot, tt.wantOK)
		}
	}
}

func TestNormalFromBytes(t *testing.T) {
	tests := []struct {
		in   [3]uint8
		want [3]float32
	}{
		{[3]uint8{127, 127, 127}, [3]float32{0, 0, 0}},
		{[3]uint8{0, 0, 0}, [3]float32{-127, -127, -127}},
		{[3]uint8{255, 255, 255}, [3]float32{128, 128, 128}},
		{[3]uint8{130, 124, 127}, [3]float32{3, -3, 0}},
	}
	for _, tt := range tests {
		if got := NormalFromBytes(tt.in); got != tt.want {
			t.Errorf("NormalFromBytes(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if back := NormalToBytes(tt.want); back != tt.in {
			t.Errorf("NormalToBytes(%v) = %v, want %v", tt.want, back, tt.in)
		}
	}
}

func TestNormalToBytes_Clamps(t *testing.T) {
	if got := NormalToBytes([3]float32{-500, 500, 0}); got != [3]uint8{0, 255, 127} {
		t.Errorf("got %v, want [0 255 127]", got)
	}
}

func TestUVFromBytes(t *testing.T) {
	if got := UVFromBytes(255, 0); got != [2]float32{1, 1} {
		t.Errorf("UVFromBytes(255, 0) = %v, want [1 1]", got)
	}
	if got := UVFromBytes(0, 255); got != [2]float32{0, 0} {
		t.Errorf("UVFromBytes(0, 255) = %v, want [0 0]", got)
	}

	// Every byte pair must survive the float round-trip.
	for b := 0; b < 256; b++ {
		u, v := UVToBytes(UVFromBytes(uint8(b), uint8(b)))
		if u != uint8(b) || v != uint8(b) {
			t.Fatalf("byte %d round-trips to %d, %d", b, u, v)
		}
	}
}

func TestReverseTriple(t *testing.T) {
	if got := ReverseTriple([3]uint16{10, 20, 30}); got != [3]uint16{30, 20, 10} {
		t.Errorf("got %v, want [30 20 10]", got)
	}
}

func TestSkinGroups(t *testing.T) {
	d := &Data{
		BoneIndices: [][3]uint8{
			{0, 1, 0},
			{1, 0, 0},
			{2, 2, 2},
		},
		BoneWeights: [][3]uint8{
			{255, 0, 0}, // slot 1 unused, bone 1 gets nothing from vertex 0
			{128, 127, 0},
			{0, 0, 0}, // fully unused, bone 2 never appears
		},
	}

	groups := d.SkinGroups()
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if _, ok := groups[2]; ok {
		t.Error("bone 2 has only zero weights and should be absent")
	}

	g0 := groups[0]
	if len(g0) != 2 || g0[0].Vertex != 0 || g0[0].Weight != 1.0 {
		t.Errorf("bone 0 = %+v", g0)
	}
	if g0[1].Vertex != 1 || g0[1].Weight != float32(127)/255 {
		t.Errorf("bone 0 vertex 1 = %+v", g0[1])
	}
	g1 := groups[1]
	if len(g1) != 1 || g1[0].Vertex != 1 || g1[0].Weight != float32(128)/255 {
		t.Errorf("bone 1 = %+v", g1)
	}
}
