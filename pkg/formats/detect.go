package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/remesh/pkg/mesh"
)

// Variant identifies which grammar a file decoded with.
type Variant int

const (
	VariantSRM  Variant = iota + 1 // first Soul Reaver layout
	VariantSRM2                    // second Soul Reaver layout (versions 1-3)
	VariantTRM                     // Tomb Raider layout
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case VariantSRM:
		return "SRM-V1"
	case VariantSRM2:
		return "SRM-V2/V3"
	case VariantTRM:
		return "TRM"
	default:
		return fmt.Sprintf("Unknown(%d)", int(v))
	}
}

// DecodeSRMAuto decodes an SRM file whose layout variant is not known
// up front; no explicit flag distinguishes the two. The u32 after the
// magic is a version field in the second layout and a shader count in
// the first, so a value of 1-3 there makes the second grammar the
// better first guess. Whichever grammar is tried first, the other is
// the fallback.
func DecodeSRMAuto(data []byte, opts DecodeOptions) (*mesh.Data, Variant, error) {
	tryV2First := false
	if len(data) >= 8 {
		v := binary.LittleEndian.Uint32(data[4:8])
		tryV2First = v >= 1 && v <= 3
	}

	if tryV2First {
		if d, err := DecodeSRM2With(data, opts); err == nil {
			return d, VariantSRM2, nil
		} else if d, err2 := DecodeSRMWith(data, opts); err2 == nil {
			return d, VariantSRM, nil
		} else {
			return nil, 0, fmt.Errorf("SRM variant detection failed: %w", errors.Join(err, err2))
		}
	}
	if d, err := DecodeSRMWith(data, opts); err == nil {
		return d, VariantSRM, nil
	} else if d, err2 := DecodeSRM2With(data, opts); err2 == nil {
		return d, VariantSRM2, nil
	} else {
		return nil, 0, fmt.Errorf("SRM variant detection failed: %w", errors.Join(err, err2))
	}
}

// DecodeFile decodes a model file, dispatching on its extension:
// .SRM with variant auto-detection, or .TRM.
func DecodeFile(path string) (*mesh.Data, Variant, error) {
	return DecodeFileWith(path, DecodeOptions{})
}

// DecodeFileWith decodes a model file with explicit options.
func DecodeFileWith(path string, opts DecodeOptions) (*mesh.Data, Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading model file: %w", err)
	}
	switch strings.ToUpper(filepath.Ext(path)) {
	case ".SRM":
		return DecodeSRMAuto(data, opts)
	case ".TRM":
		d, err := DecodeTRMWith(data, opts)
		if err != nil {
			return nil, 0, err
		}
		return d, VariantTRM, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownExtension, filepath.Ext(path))
	}
}

// ExportVersion selects the on-disk layout for encoding and carries the
// exporter's texture pixel-format tag.
type ExportVersion int

const (
	ExportV1 ExportVersion = 1
	ExportV2 ExportVersion = 2
	ExportV3 ExportVersion = 3
)

// String returns the selector name as presented to users.
func (v ExportVersion) String() string { return fmt.Sprintf("V%d", int(v)) }

// ParseExportVersion accepts "V1".."V3" (case-insensitive) or "1".."3".
func ParseExportVersion(s string) (ExportVersion, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "V1", "1":
		return ExportV1, nil
	case "V2", "2":
		return ExportV2, nil
	case "V3", "3":
		return ExportV3, nil
	default:
		return 0, fmt.Errorf("invalid export version %q (want V1, V2 or V3)", s)
	}
}

// TexturePixelFormat is the pass-through policy tag describing which
// color/precision format re-exported texture references use. Texture
// pixel data itself is never touched.
type TexturePixelFormat int

const (
	PixelR8Unorm TexturePixelFormat = iota + 1
	PixelR16Float
	PixelR32Float
)

// String returns the DXGI-style format name.
func (f TexturePixelFormat) String() string {
	switch f {
	case PixelR8Unorm:
		return "R8_UNORM"
	case PixelR16Float:
		return "R16_FLOAT"
	case PixelR32Float:
		return "R32_FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// PixelFormat returns the texture pixel-format tag tied to an export
// version, mirroring the exporter's selector.
func (v ExportVersion) PixelFormat() TexturePixelFormat {
	switch v {
	case ExportV2:
		return PixelR16Float
	case ExportV3:
		return PixelR32Float
	default:
		return PixelR8Unorm
	}
}

// EncodeModel encodes a mesh using the export version selector. TRM
// meshes always use the TRM layout (the selector only picks the
// texture pixel-format tag there); SRM meshes use the first layout for
// V1 and the second layout otherwise.
func EncodeModel(d *mesh.Data, version ExportVersion) ([]byte, error) {
	if d.TRM != nil {
		return EncodeTRM(d)
	}
	switch version {
	case ExportV1:
		return EncodeSRM(d)
	case ExportV2, ExportV3:
		return EncodeSRM2(d, uint32(version))
	default:
		return nil, fmt.Errorf("invalid export version %d", int(version))
	}
}
