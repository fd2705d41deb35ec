// Package formats provides codecs for the remastered model formats:
// SRM (Soul Reaver I-II, two header layouts) and TRM (Tomb Raider I-V).
// Each codec decodes a whole in-memory file into a mesh.Data and can
// encode a mesh.Data back to the same on-disk layout.
package formats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/remesh/pkg/binio"
	"github.com/Faultbox/remesh/pkg/mesh"
)

// Shared format errors.
var (
	ErrTruncatedData         = errors.New("truncated model data")
	ErrMalformedCount        = errors.New("implausible count field")
	ErrUnsupportedSRMVersion = errors.New("unsupported SRM version")
	ErrPaddingScanExceeded   = errors.New("zero-padding scan exceeded limit")
	ErrUnknownExtension      = errors.New("unknown model file extension")
)

// shaderRecordSize is the on-disk size of one shader table entry:
// type u32 + 4 float params + 3 offset/length u32 pairs.
const shaderRecordSize = 40

// sanitizeName trims surrounding whitespace and strips control and
// non-ASCII bytes from a fixed-width texture name.
func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// readShaderTable reads the count-prefixed shader table shared by the
// SRM-V1 and TRM headers.
func readShaderTable(r *binio.Reader) ([]mesh.ShaderRecord, error) {
	count, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: shader count", ErrTruncatedData)
	}
	if int64(count)*shaderRecordSize > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d shader records exceed %d remaining bytes", ErrMalformedCount, count, r.Remaining())
	}
	shaders := make([]mesh.ShaderRecord, count)
	for i := range shaders {
		s := &shaders[i]
		if s.Type, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("%w: shader %d type", ErrTruncatedData, i)
		}
		if s.Params, err = r.Vec4f(); err != nil {
			return nil, fmt.Errorf("%w: shader %d params", ErrTruncatedData, i)
		}
		for _, dst := range []*uint32{
			&s.OpaqueOffset, &s.OpaqueLength,
			&s.AlphaOffset, &s.AlphaLength,
			&s.AdditiveOffset, &s.AdditiveLength,
		} {
			if *dst, err = r.Uint32(); err != nil {
				return nil, fmt.Errorf("%w: shader %d pass ranges", ErrTruncatedData, i)
			}
		}
	}
	return shaders, nil
}

// writeShaderTable writes the count-prefixed shader table.
func writeShaderTable(w *binio.Writer, shaders []mesh.ShaderRecord) error {
	if err := w.Uint32(uint32(len(shaders))); err != nil {
		return err
	}
	for i := range shaders {
		s := &shaders[i]
		if err := w.Uint32(s.Type); err != nil {
			return err
		}
		if err := w.Vec4f(s.Params); err != nil {
			return err
		}
		for _, v := range []uint32{
			s.OpaqueOffset, s.OpaqueLength,
			s.AlphaOffset, s.AlphaLength,
			s.AdditiveOffset, s.AdditiveLength,
		} {
			if err := w.Uint32(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// readFaces reads faceCount/3 index triples and reverses each for the
// target winding convention. faceCount counts vertex indices, not
// triangles; a remainder that is not a full triple is left unread,
// matching the shipped data.
func readFaces(r *binio.Reader, faceCount uint32) ([][3]uint16, error) {
	triangles := faceCount / 3
	if int64(triangles)*6 > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d face indices exceed %d remaining bytes", ErrMalformedCount, faceCount, r.Remaining())
	}
	faces := make([][3]uint16, triangles)
	for i := range faces {
		tri, err := r.Vec3us()
		if err != nil {
			return nil, fmt.Errorf("%w: face %d", ErrTruncatedData, i)
		}
		faces[i] = mesh.ReverseTriple(tri)
	}
	return faces, nil
}

// writeFaces writes the stored triangles back in on-disk winding order.
func writeFaces(w *binio.Writer, faces [][3]uint16) error {
	for _, f := range faces {
		if err := w.Vec3us(mesh.ReverseTriple(f)); err != nil {
			return err
		}
	}
	return nil
}

// clampedMaterialCount counts vertices whose 1-based material index
// falls outside the texture list; decoders log a single warning with
// this total rather than one line per vertex.
func clampedMaterialCount(d *mesh.Data) int {
	n := 0
	for v := range d.MaterialIndex {
		if _, ok := d.MaterialSlot(v); !ok {
			n++
		}
	}
	return n
}
