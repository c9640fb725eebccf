package binaryfmt

import "github.com/wyd-tools/gamevault/internal/model"

// DetectResult is the outcome of a structural detection pass.
type DetectResult struct {
	Kind   model.BinaryKind
	Layout model.RecordLayout // zero value if no record layout matched
}

// DetectRecordLayout runs the record-size heuristic: for
// each candidate record layout, test whether the file size is an exact
// multiple of the record size and whether at least 7 of the first 10
// records contain non-trivial bytes (not all zero, not all 0xFF). The
// first layout satisfying both checks wins.
func (a *Analyzer) DetectRecordLayout(data []byte) (model.RecordLayout, bool) {
	for _, candidate := range a.orderedLayouts() {
		if layoutMatches(data, candidate) {
			return candidate, true
		}
	}
	return model.RecordLayout{}, false
}

// orderedLayouts returns the registered layouts whose record sizes appear
// in the configured candidate sizes, in that order, followed by the
// remaining registered layouts in map iteration order. Only one layout
// per record size is returned.
func (a *Analyzer) orderedLayouts() []model.RecordLayout {
	out := make([]model.RecordLayout, 0, len(a.layouts))
	seen := map[int]bool{}
	for _, size := range a.cfg.RecordSizeCandidates {
		for _, l := range a.layouts {
			if l.RecordSize == size && !seen[l.RecordSize] {
				out = append(out, l)
				seen[l.RecordSize] = true
			}
		}
	}
	for _, l := range a.layouts {
		if !seen[l.RecordSize] {
			out = append(out, l)
			seen[l.RecordSize] = true
		}
	}
	return out
}

func layoutMatches(data []byte, layout model.RecordLayout) bool {
	recordSize := layout.RecordSize
	if recordSize <= 0 {
		return false
	}
	if len(data) < recordSize*10 || len(data)%recordSize != 0 {
		return false
	}

	total := len(data) / recordSize
	checkCount := total
	if checkCount > 10 {
		checkCount = 10
	}

	valid := 0
	for i := 0; i < checkCount; i++ {
		offset := i * recordSize
		window := recordSize
		if !allSameByte(data[offset:offset+window], 0x00) && !allSameByte(data[offset:offset+window], 0xFF) {
			valid++
		}
	}
	return valid >= 7
}

func allSameByte(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}

// MeshHeader is the parsed, validated header of a mesh-like file.
type MeshHeader struct {
	VertexCount uint32
	FaceCount   uint32
}

// DetectMesh validates a presumed mesh header: an 8-byte
// offset vertex count, a 12-byte offset face count, counts within sane
// bounds, and a file size within a factor of two of the expected size.
func DetectMesh(data []byte) (MeshHeader, bool) {
	if len(data) < 16 {
		return MeshHeader{}, false
	}
	vertexCount := le32(data[8:12])
	faceCount := le32(data[12:16])

	if !(vertexCount >= 1 && vertexCount < 1_000_000) {
		return MeshHeader{}, false
	}
	if !(faceCount >= 1 && faceCount < 2_000_000) {
		return MeshHeader{}, false
	}

	expected := int64(32) + int64(vertexCount)*32 + int64(faceCount)*12
	actual := int64(len(data))
	if actual < expected/2 || actual > expected*2 {
		return MeshHeader{}, false
	}

	return MeshHeader{VertexCount: vertexCount, FaceCount: faceCount}, true
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
