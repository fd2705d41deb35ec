package formats

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/binio"
	"github.com/Faultbox/remesh/pkg/mesh"
)

// SRM-V1 layout constants.
const (
	srmTextureNameSize  = 31 // fixed-width name, followed by one flag byte
	srmUnknownFloats    = 384
	srmUnknownBytes     = 128
	srmVertexRecordSize = 32
	// srmConstantDefault is the per-vertex constant byte written for
	// meshes built de novo; every observed file carries 2.
	srmConstantDefault = 2
)

// DecodeSRM decodes the first Soul Reaver mesh layout.
func DecodeSRM(data []byte) (*mesh.Data, error) {
	return DecodeSRMWith(data, DecodeOptions{})
}

// DecodeSRMWith decodes SRM-V1 data with explicit options.
func DecodeSRMWith(data []byte, opts DecodeOptions) (*mesh.Data, error) {
	opts = opts.withDefaults()
	r := binio.NewReader(data)
	d := &mesh.Data{}
	h := &mesh.SRMHeader{}
	d.SRM = h

	magic, err := r.FixedString(4)
	if err != nil {
		return nil, fmt.Errorf("%w: magic", ErrTruncatedData)
	}
	d.Magic = magic

	if h.Shaders, err = readShaderTable(r); err != nil {
		return nil, err
	}

	textureCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: texture count", ErrTruncatedData)
	}
	if int64(textureCount)*(srmTextureNameSize+1) > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d texture entries exceed %d remaining bytes", ErrMalformedCount, textureCount, r.Remaining())
	}
	d.Textures = make([]string, textureCount)
	h.TextureFlags = make([]uint8, textureCount)
	for i := range d.Textures {
		name, err := r.FixedString(srmTextureNameSize)
		if err != nil {
			return nil, fmt.Errorf("%w: texture %d name", ErrTruncatedData, i)
		}
		if h.TextureFlags[i], err = r.Uint8(); err != nil {
			return nil, fmt.Errorf("%w: texture %d flag", ErrTruncatedData, i)
		}
		d.Textures[i] = sanitizeName(name)
	}

	reserved, err := r.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("%w: reserved header bytes", ErrTruncatedData)
	}
	copy(h.Reserved[:], reserved)

	if h.UnknownFloats, h.UnknownBytes, err = readUnknownBlock(r, srmUnknownFloats, srmUnknownBytes); err != nil {
		return nil, err
	}

	vertexCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: vertex count", ErrTruncatedData)
	}
	faceCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: face count", ErrTruncatedData)
	}

	if h.Constant, err = readSRMVertices(r, d, vertexCount, opts); err != nil {
		return nil, err
	}
	if d.Faces, err = readFaces(r, faceCount); err != nil {
		return nil, err
	}

	if n := clampedMaterialCount(d); n > 0 {
		opts.Logger.Warn("material indices outside texture table, clamped to slot 0",
			zap.Int("vertices", n),
			zap.Int("textures", len(d.Textures)))
	}
	return d, nil
}

// readUnknownBlock reads the opaque float and byte regions that sit
// between the texture table and the vertex counts. The payload is
// preserved verbatim for re-encoding, never interpreted.
func readUnknownBlock(r *binio.Reader, floats, bytes int) ([]float32, []byte, error) {
	if floats*4+bytes > r.Remaining() {
		return nil, nil, fmt.Errorf("%w: unknown header block (%d floats + %d bytes)", ErrTruncatedData, floats, bytes)
	}
	fs := make([]float32, floats)
	for i := range fs {
		v, err := r.Float32()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: unknown float %d", ErrTruncatedData, i)
		}
		fs[i] = v
	}
	raw, err := r.Bytes(bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unknown byte block", ErrTruncatedData)
	}
	bs := make([]byte, bytes)
	copy(bs, raw)
	return fs, bs, nil
}

// readSRMVertices reads the vertex block shared by both SRM layouts:
// position, tangent, constant byte, normal, material index, bone
// indices, U, bone weights, V, 4 reserved bytes. The constant byte is
// captured from the first vertex and checked against the rest.
func readSRMVertices(r *binio.Reader, d *mesh.Data, vertexCount uint32, opts DecodeOptions) (uint8, error) {
	if int64(vertexCount)*srmVertexRecordSize > int64(r.Remaining()) {
		return 0, fmt.Errorf("%w: %d vertex records exceed %d remaining bytes", ErrMalformedCount, vertexCount, r.Remaining())
	}

	n := int(vertexCount)
	d.Vertices = make([][3]float32, n)
	d.Tangents = make([][3]float32, n)
	d.Normals = make([][3]float32, n)
	d.MaterialIndex = make([]uint8, n)
	d.BoneIndices = make([][3]uint8, n)
	d.BoneWeights = make([][3]uint8, n)
	d.UVs = make([][2]float32, n)

	var constant uint8 = srmConstantDefault
	mismatches := 0
	for i := 0; i < n; i++ {
		pos, err := r.Vec3f()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d position", ErrTruncatedData, i)
		}
		d.Vertices[i] = pos

		tangent, err := r.Vec3ub()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d tangent", ErrTruncatedData, i)
		}
		d.Tangents[i] = mesh.NormalFromBytes(tangent)

		c, err := r.Uint8()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d constant byte", ErrTruncatedData, i)
		}
		if i == 0 {
			constant = c
		} else if c != constant {
			if mismatches == 0 {
				opts.Logger.Warn("vertex constant byte differs within mesh",
					zap.Int("vertex", i),
					zap.Uint8("expected", constant),
					zap.Uint8("got", c))
			}
			mismatches++
		}

		normal, err := r.Vec3ub()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d normal", ErrTruncatedData, i)
		}
		d.Normals[i] = mesh.NormalFromBytes(normal)

		if d.MaterialIndex[i], err = r.Uint8(); err != nil {
			return 0, fmt.Errorf("%w: vertex %d material index", ErrTruncatedData, i)
		}
		if d.BoneIndices[i], err = r.Vec3ub(); err != nil {
			return 0, fmt.Errorf("%w: vertex %d bone indices", ErrTruncatedData, i)
		}
		u, err := r.Uint8()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d U byte", ErrTruncatedData, i)
		}
		if d.BoneWeights[i], err = r.Vec3ub(); err != nil {
			return 0, fmt.Errorf("%w: vertex %d bone weights", ErrTruncatedData, i)
		}
		v, err := r.Uint8()
		if err != nil {
			return 0, fmt.Errorf("%w: vertex %d V byte", ErrTruncatedData, i)
		}
		d.UVs[i] = mesh.UVFromBytes(u, v)

		r.Skip(4) // reserved tail
	}
	if mismatches > 0 {
		opts.Logger.Warn("constant byte mismatches in mesh", zap.Int("count", mismatches))
	}
	return constant, nil
}

// EncodeSRM encodes a mesh back to the SRM-V1 layout in memory.
func EncodeSRM(d *mesh.Data) ([]byte, error) {
	w := binio.NewWriter()
	if err := WriteSRM(w, d); err != nil {
		return nil, err
	}
	return w.Buffer(), nil
}

// WriteSRM encodes a mesh to any writer sink; the shape check runs
// before the first byte is written.
func WriteSRM(w *binio.Writer, d *mesh.Data) error {
	if err := d.Validate(true); err != nil {
		return err
	}
	h := d.SRM
	if h == nil {
		h = &mesh.SRMHeader{Constant: srmConstantDefault}
	}

	if err := w.FixedString(d.Magic, 4); err != nil {
		return err
	}
	if err := writeShaderTable(w, h.Shaders); err != nil {
		return err
	}

	if err := w.Uint32(uint32(len(d.Textures))); err != nil {
		return err
	}
	for i, name := range d.Textures {
		if err := w.FixedString(name, srmTextureNameSize); err != nil {
			return err
		}
		var flag uint8
		if i < len(h.TextureFlags) {
			flag = h.TextureFlags[i]
		}
		if err := w.Uint8(flag); err != nil {
			return err
		}
	}

	if err := w.Bytes(h.Reserved[:]); err != nil {
		return err
	}
	if err := writeUnknownBlock(w, h.UnknownFloats, h.UnknownBytes, srmUnknownFloats, srmUnknownBytes); err != nil {
		return err
	}

	if err := w.Uint32(uint32(len(d.Vertices))); err != nil {
		return err
	}
	if err := w.Uint32(uint32(len(d.Faces) * 3)); err != nil {
		return err
	}
	if err := writeSRMVertices(w, d, h.Constant); err != nil {
		return err
	}
	return writeFaces(w, d.Faces)
}

// writeUnknownBlock replays a preserved opaque block, normalized to the
// declared sizes: short blocks are zero-filled, long ones truncated.
func writeUnknownBlock(w *binio.Writer, fs []float32, bs []byte, floats, bytes int) error {
	for i := 0; i < floats; i++ {
		var v float32
		if i < len(fs) {
			v = fs[i]
		}
		if err := w.Float32(v); err != nil {
			return err
		}
	}
	block := make([]byte, bytes)
	copy(block, bs)
	return w.Bytes(block)
}

// writeSRMVertices writes the shared SRM vertex block.
func writeSRMVertices(w *binio.Writer, d *mesh.Data, constant uint8) error {
	for i := range d.Vertices {
		if err := w.Vec3f(d.Vertices[i]); err != nil {
			return err
		}
		if err := w.Vec3ub(mesh.NormalToBytes(d.Tangents[i])); err != nil {
			return err
		}
		if err := w.Uint8(constant); err != nil {
			return err
		}
		if err := w.Vec3ub(mesh.NormalToBytes(d.Normals[i])); err != nil {
			return err
		}
		if err := w.Uint8(d.MaterialIndex[i]); err != nil {
			return err
		}
		if err := w.Vec3ub(d.BoneIndices[i]); err != nil {
			return err
		}
		u, v := mesh.UVToBytes(d.UVs[i])
		if err := w.Uint8(u); err != nil {
			return err
		}
		if err := w.Vec3ub(d.BoneWeights[i]); err != nil {
			return err
		}
		if err := w.Uint8(v); err != nil {
			return err
		}
		if err := w.Zeros(4); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSRMFile reads and decodes an SRM-V1 file from disk.
func DecodeSRMFile(path string) (*mesh.Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SRM file: %w", err)
	}
	return DecodeSRM(data)
}
