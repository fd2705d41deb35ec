package mesh

// VertexWeight is one vertex's contribution to a skinning group.
type VertexWeight struct {
	Vertex int
	Weight float32 // normalized to 0..1
}

// SkinGroups builds per-bone vertex weight lists from the raw bone
// index/weight triples. A raw weight of 0 means "unused" and is
// excluded; stored weights are divided by 255.
func (d *Data) SkinGroups() map[uint8][]VertexWeight {
	groups := make(map[uint8][]VertexWeight)
	for v := range d.BoneIndices {
		if v >= len(d.BoneWeights) {
			break
		}
		for slot := 0; slot < 3; slot++ {
			w := d.BoneWeights[v][slot]
			if w == 0 {
				continue
			}
			bone := d.BoneIndices[v][slot]
			groups[bone] = append(groups[bone], VertexWeight{
				Vertex: v,
				Weight: float32(w) / 255.0,
			})
		}
	}
	return groups
}
