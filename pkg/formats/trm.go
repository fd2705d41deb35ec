package formats

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/binio"
	"github.com/Faultbox/remesh/pkg/mesh"
)

// trmVertexRecordSize is the on-disk vertex size: position, normal,
// material index, bone indices, U, bone weights, V. No tangent, no
// reserved tail.
const trmVertexRecordSize = 24

// DecodeTRM decodes the Tomb Raider mesh layout.
func DecodeTRM(data []byte) (*mesh.Data, error) {
	return DecodeTRMWith(data, DecodeOptions{})
}

// DecodeTRMWith decodes TRM data with explicit options.
func DecodeTRMWith(data []byte, opts DecodeOptions) (*mesh.Data, error) {
	opts = opts.withDefaults()
	r := binio.NewReader(data)
	d := &mesh.Data{}
	h := &mesh.TRMHeader{}
	d.TRM = h

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
	if int64(textureCount)*2 > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d texture ids exceed %d remaining bytes", ErrMalformedCount, textureCount, r.Remaining())
	}
	d.Textures = make([]string, textureCount)
	for i := range d.Textures {
		id, err := r.Uint16()
		if err != nil {
			return nil, fmt.Errorf("%w: texture id %d", ErrTruncatedData, i)
		}
		d.Textures[i] = strconv.Itoa(int(id))
	}

	if h.TexturePadding, err = scanZeroPadding(r, opts.MaxPaddingScan); err != nil {
		return nil, fmt.Errorf("after texture table: %w", err)
	}

	faceCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: face count", ErrTruncatedData)
	}
	vertexCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: vertex count", ErrTruncatedData)
	}

	if d.Faces, err = readFaces(r, faceCount); err != nil {
		return nil, err
	}

	if h.FacePadding, err = scanZeroPadding(r, opts.MaxPaddingScan); err != nil {
		return nil, fmt.Errorf("after face list: %w", err)
	}

	if err = readTRMVertices(r, d, vertexCount); err != nil {
		return nil, err
	}

	if n := clampedMaterialCount(d); n > 0 {
		opts.Logger.Warn("material indices outside texture table, clamped to slot 0",
			zap.Int("vertices", n),
			zap.Int("textures", len(d.Textures)))
	}
	return d, nil
}

// scanZeroPadding consumes consecutive zero bytes, stopping with the
// cursor on the first non-zero byte (one-byte rewind). The format
// declares no padding length, so this is a best-effort heuristic: a
// data region that legitimately begins with zero bytes is
// indistinguishable from padding. The scan is bounded to keep corrupt
// input from being swallowed whole.
func scanZeroPadding(r *binio.Reader, max int) (int, error) {
	count := 0
	for r.Remaining() > 0 {
		b, err := r.Uint8()
		if err != nil {
			return count, err
		}
		if b != 0 {
			r.Seek(r.Tell() - 1)
			break
		}
		count++
		if count > max {
			return count, fmt.Errorf("%w: more than %d zero bytes", ErrPaddingScanExceeded, max)
		}
	}
	return count, nil
}

// readTRMVertices reads the tangent-less TRM vertex block.
func readTRMVertices(r *binio.Reader, d *mesh.Data, vertexCount uint32) error {
	if int64(vertexCount)*trmVertexRecordSize > int64(r.Remaining()) {
		return fmt.Errorf("%w: %d vertex records exceed %d remaining bytes", ErrMalformedCount, vertexCount, r.Remaining())
	}

	n := int(vertexCount)
	d.Vertices = make([][3]float32, n)
	d.Normals = make([][3]float32, n)
	d.MaterialIndex = make([]uint8, n)
	d.BoneIndices = make([][3]uint8, n)
	d.BoneWeights = make([][3]uint8, n)
	d.UVs = make([][2]float32, n)

	for i := 0; i < n; i++ {
		pos, err := r.Vec3f()
		if err != nil {
			return fmt.Errorf("%w: vertex %d position", ErrTruncatedData, i)
		}
		d.Vertices[i] = pos

		normal, err := r.Vec3ub()
		if err != nil {
			return fmt.Errorf("%w: vertex %d normal", ErrTruncatedData, i)
		}
		d.Normals[i] = mesh.NormalFromBytes(normal)

		if d.MaterialIndex[i], err = r.Uint8(); err != nil {
			return fmt.Errorf("%w: vertex %d material index", ErrTruncatedData, i)
		}
		if d.BoneIndices[i], err = r.Vec3ub(); err != nil {
			return fmt.Errorf("%w: vertex %d bone indices", ErrTruncatedData, i)
		}
		u, err := r.Uint8()
		if err != nil {
			return fmt.Errorf("%w: vertex %d U byte", ErrTruncatedData, i)
		}
		if d.BoneWeights[i], err = r.Vec3ub(); err != nil {
			return fmt.Errorf("%w: vertex %d bone weights", ErrTruncatedData, i)
		}
		v, err := r.Uint8()
		if err != nil {
			return fmt.Errorf("%w: vertex %d V byte", ErrTruncatedData, i)
		}
		d.UVs[i] = mesh.UVFromBytes(u, v)
	}
	return nil
}

// EncodeTRM encodes a mesh back to the TRM layout in memory.
func EncodeTRM(d *mesh.Data) ([]byte, error) {
	w := binio.NewWriter()
	if err := WriteTRM(w, d); err != nil {
		return nil, err
	}
	return w.Buffer(), nil
}

// WriteTRM encodes a mesh to any writer sink. TRM carries numeric
// texture IDs, so every texture name must parse as an unsigned 16-bit
// decimal.
func WriteTRM(w *binio.Writer, d *mesh.Data) error {
	if err := d.Validate(false); err != nil {
		return err
	}
	ids := make([]uint16, len(d.Textures))
	for i, name := range d.Textures {
		id, err := strconv.ParseUint(name, 10, 16)
		if err != nil {
			return fmt.Errorf("texture %q is not a numeric TRM texture id: %w", name, err)
		}
		ids[i] = uint16(id)
	}
	h := d.TRM
	if h == nil {
		h = &mesh.TRMHeader{}
	}

	if err := w.FixedString(d.Magic, 4); err != nil {
		return err
	}
	if err := writeShaderTable(w, h.Shaders); err != nil {
		return err
	}
	if err := w.Uint32(uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.Uint16(id); err != nil {
			return err
		}
	}
	if err := w.Zeros(h.TexturePadding); err != nil {
		return err
	}

	if err := w.Uint32(uint32(len(d.Faces) * 3)); err != nil {
		return err
	}
	if err := w.Uint32(uint32(len(d.Vertices))); err != nil {
		return err
	}
	if err := writeFaces(w, d.Faces); err != nil {
		return err
	}
	if err := w.Zeros(h.FacePadding); err != nil {
		return err
	}

	for i := range d.Vertices {
		if err := w.Vec3f(d.Vertices[i]); err != nil {
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
	}
	return nil
}

// DecodeTRMFile reads and decodes a TRM file from disk.
func DecodeTRMFile(path string) (*mesh.Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TRM file: %w", err)
	}
	return DecodeTRM(data)
}
