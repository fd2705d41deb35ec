package formats

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/pkg/binio"
	"github.com/Faultbox/remesh/pkg/mesh"
)

// SRM-V2/V3 layout constants. The skip sizes and the large-block face
// count are reverse-engineered from shipped files and carry no
// documented semantics.
const (
	srm2TextureNameSize = 32

	// srm2VersionSkipV2/V3 are the sizes of the header region that
	// follows the reserved fields for versions 2 and 3. Version 1 has
	// no such region. Empirically derived; meaning unknown.
	srm2VersionSkipV2 = 96
	srm2VersionSkipV3 = 140

	// srm2LargeUnknownFaceCount selects the larger unknown-block sizes.
	// Observed in exactly one known file; treated as a policy constant
	// rather than a documented field. Fragile by construction.
	srm2LargeUnknownFaceCount = 88500

	srm2LargeUnknownFloats = 684
	srm2LargeUnknownBytes  = 132
)

// DecodeSRM2 decodes the second Soul Reaver mesh layout (versions 1-3).
func DecodeSRM2(data []byte) (*mesh.Data, error) {
	return DecodeSRM2With(data, DecodeOptions{})
}

// DecodeSRM2With decodes SRM-V2/V3 data with explicit options.
func DecodeSRM2With(data []byte, opts DecodeOptions) (*mesh.Data, error) {
	opts = opts.withDefaults()
	r := binio.NewReader(data)
	d := &mesh.Data{}
	h := &mesh.SRM2Header{}
	d.SRM2 = h

	magic, err := r.FixedString(4)
	if err != nil {
		return nil, fmt.Errorf("%w: magic", ErrTruncatedData)
	}
	d.Magic = magic

	if h.Version, err = r.Uint32(); err != nil {
		return nil, fmt.Errorf("%w: version", ErrTruncatedData)
	}
	versionSkip, err := srm2VersionSkip(h.Version)
	if err != nil {
		return nil, err
	}

	reserved0, err := r.Bytes(24)
	if err != nil {
		return nil, fmt.Errorf("%w: reserved face counts", ErrTruncatedData)
	}
	copy(h.Reserved0[:], reserved0)

	for _, dst := range []*uint32{&h.FaceCountA, &h.FaceCountB, &h.UnkVal, &h.FaceCountC} {
		if *dst, err = r.Uint32(); err != nil {
			return nil, fmt.Errorf("%w: header face counts", ErrTruncatedData)
		}
	}

	reserved1, err := r.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("%w: reserved header bytes", ErrTruncatedData)
	}
	copy(h.Reserved1[:], reserved1)

	block, err := r.Bytes(versionSkip)
	if err != nil {
		return nil, fmt.Errorf("%w: version %d header block", ErrTruncatedData, h.Version)
	}
	h.VersionBlock = append([]byte(nil), block...)

	textureCount, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: texture count", ErrTruncatedData)
	}
	if int64(textureCount)*srm2TextureNameSize > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d texture entries exceed %d remaining bytes", ErrMalformedCount, textureCount, r.Remaining())
	}
	d.Textures = make([]string, textureCount)
	for i := range d.Textures {
		name, err := r.FixedString(srm2TextureNameSize)
		if err != nil {
			return nil, fmt.Errorf("%w: texture %d name", ErrTruncatedData, i)
		}
		d.Textures[i] = sanitizeName(name)
	}

	floats, bytes := srmUnknownFloats, srmUnknownBytes
	if h.FaceCountA == srm2LargeUnknownFaceCount {
		floats, bytes = srm2LargeUnknownFloats, srm2LargeUnknownBytes
	}
	if h.UnknownFloats, h.UnknownBytes, err = readUnknownBlock(r, floats, bytes); err != nil {
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

// srm2VersionSkip maps a version field to its header block size. The
// original tooling silently skipped nothing for unknown versions; here
// that is an error, since the correct skip size is simply not known.
func srm2VersionSkip(version uint32) (int, error) {
	switch version {
	case 1:
		return 0, nil
	case 2:
		return srm2VersionSkipV2, nil
	case 3:
		return srm2VersionSkipV3, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSRMVersion, version)
	}
}

// EncodeSRM2 encodes a mesh back to the SRM-V2/V3 layout for the given
// version (1, 2 or 3).
func EncodeSRM2(d *mesh.Data, version uint32) ([]byte, error) {
	w := binio.NewWriter()
	if err := WriteSRM2(w, d, version); err != nil {
		return nil, err
	}
	return w.Buffer(), nil
}

// WriteSRM2 encodes a mesh to any writer sink in the SRM-V2/V3 layout.
func WriteSRM2(w *binio.Writer, d *mesh.Data, version uint32) error {
	versionSkip, err := srm2VersionSkip(version)
	if err != nil {
		return err
	}
	if err := d.Validate(true); err != nil {
		return err
	}
	h := d.SRM2
	if h == nil {
		h = &mesh.SRM2Header{Constant: srmConstantDefault}
	}

	if err := w.FixedString(d.Magic, 4); err != nil {
		return err
	}
	if err := w.Uint32(version); err != nil {
		return err
	}
	if err := w.Bytes(h.Reserved0[:]); err != nil {
		return err
	}
	for _, v := range []uint32{h.FaceCountA, h.FaceCountB, h.UnkVal, h.FaceCountC} {
		if err := w.Uint32(v); err != nil {
			return err
		}
	}
	if err := w.Bytes(h.Reserved1[:]); err != nil {
		return err
	}
	block := make([]byte, versionSkip)
	copy(block, h.VersionBlock)
	if err := w.Bytes(block); err != nil {
		return err
	}

	if err := w.Uint32(uint32(len(d.Textures))); err != nil {
		return err
	}
	for _, name := range d.Textures {
		if err := w.FixedString(name, srm2TextureNameSize); err != nil {
			return err
		}
	}

	floats, bytes := srmUnknownFloats, srmUnknownBytes
	if h.FaceCountA == srm2LargeUnknownFaceCount {
		floats, bytes = srm2LargeUnknownFloats, srm2LargeUnknownBytes
	}
	if err := writeUnknownBlock(w, h.UnknownFloats, h.UnknownBytes, floats, bytes); err != nil {
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

// DecodeSRM2File reads and decodes an SRM-V2/V3 file from disk.
func DecodeSRM2File(path string) (*mesh.Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SRM file: %w", err)
	}
	return DecodeSRM2(data)
}
