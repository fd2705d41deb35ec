package mesh

// Byte-level decode laws shared by the codecs. Normals and tangents are
// stored on disk as unsigned byte triples biased by 127; UVs as single
// bytes over 0..255 with the V axis flipped.

// NormalFromBytes decodes a byte triple via value-127. The result is a
// raw offset in -127..128, deliberately not divided to unit range.
func NormalFromBytes(b [3]uint8) [3]float32 {
	return [3]float32{
		float32(b[0]) - 127,
		float32(b[1]) - 127,
		float32(b[2]) - 127,
	}
}

// NormalToBytes is the inverse of NormalFromBytes. Components outside
// -127..128 are clamped to the representable range.
func NormalToBytes(n [3]float32) [3]uint8 {
	var b [3]uint8
	for i, v := range n {
		b[i] = clampByte(v + 127)
	}
	return b
}

// UVFromBytes decodes a U byte and a V byte: U = u/255, V = 1 - v/255.
func UVFromBytes(u, v uint8) [2]float32 {
	return [2]float32{float32(u) / 255.0, 1 - float32(v)/255.0}
}

// UVToBytes is the inverse of UVFromBytes.
func UVToBytes(uv [2]float32) (u, v uint8) {
	return clampByte(uv[0]*255 + 0.5), clampByte((1-uv[1])*255 + 0.5)
}

// ReverseTriple flips the winding order of an index triple.
func ReverseTriple(t [3]uint16) [3]uint16 {
	return [3]uint16{t[2], t[1], t[0]}
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
