// Package texture resolves the sibling DDS files that accompany a
// decoded model and applies the header patch they need before common
// tooling will open them. Texture pixel data is never decoded here; the
// only inputs are sanitized texture names from the codecs.
package texture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// ddsFlagsOffset is the byte offset of the dwFlags field in a DDS header.
const ddsFlagsOffset = 8

// ddsRequiredFlags is DDSD_CAPS | DDSD_HEIGHT | DDSD_WIDTH |
// DDSD_PIXELFORMAT | DDSD_MIPMAPCOUNT | DDSD_LINEARSIZE. Shipped
// textures omit DDSD_CAPS, which trips strict readers.
const ddsRequiredFlags = 659463

// Set holds the resolved sibling textures of one material. Fields are
// empty when the corresponding file does not exist.
type Set struct {
	Diffuse  string
	Normal   string
	Specular string
}

// DirFor returns the conventional texture directory for a model path:
// the TEX directory next to the model's parent directory.
func DirFor(modelPath string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(modelPath)), "TEX")
}

// ResolveSRM locates the _D/_N/_S suffixed siblings of an SRM texture
// base name under dir.
func ResolveSRM(dir, baseName string) Set {
	var s Set
	if p := filepath.Join(dir, baseName+"_D.DDS"); exists(p) {
		s.Diffuse = p
	}
	if p := filepath.Join(dir, baseName+"_N.DDS"); exists(p) {
		s.Normal = p
	}
	if p := filepath.Join(dir, baseName+"_S.DDS"); exists(p) {
		s.Specular = p
	}
	return s
}

// ResolveTRM locates the single diffuse texture of a TRM texture ID
// under dir. Returns "" when the file does not exist.
func ResolveTRM(dir, id string) string {
	if p := filepath.Join(dir, id+".DDS"); exists(p) {
		return p
	}
	return ""
}

// Paths returns the non-empty paths of the set in D/N/S order.
func (s Set) Paths() []string {
	var out []string
	for _, p := range []string{s.Diffuse, s.Normal, s.Specular} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PatchFlags rewrites the dwFlags field of a DDS file in place so it
// carries the full required flag set.
func PatchFlags(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening DDS file: %w", err)
	}
	defer f.Close()

	var flags [4]byte
	binary.LittleEndian.PutUint32(flags[:], ddsRequiredFlags)
	if _, err := f.WriteAt(flags[:], ddsFlagsOffset); err != nil {
		return fmt.Errorf("patching DDS flags: %w", err)
	}
	return nil
}

// PatchSet patches every resolved texture of a set, returning the
// first error encountered.
func (s Set) PatchSet() error {
	for _, p := range s.Paths() {
		if err := PatchFlags(p); err != nil {
			return err
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
