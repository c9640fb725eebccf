package binaryfmt

import (
	"fmt"

	"github.com/wyd-tools/gamevault/internal/model"
)

// IdentifySections decomposes data into named regions: at
// minimum Header (first 64 bytes or file size) and Data. Format-specific
// expansions produce additional sections when a record layout or mesh
// header is available.
func (a *Analyzer) IdentifySections(data []byte, layout *model.RecordLayout, mesh *MeshHeader) []Section {
	headerSize := 64
	if headerSize > len(data) {
		headerSize = len(data)
	}
	sections := []Section{
		{Name: "Header", Offset: 0, Length: headerSize},
	}
	if headerSize < len(data) {
		sections = append(sections, Section{Name: "Data", Offset: headerSize, Length: len(data) - headerSize})
	}

	switch {
	case mesh != nil:
		sections = append(sections, meshSections(data, *mesh)...)
	case layout != nil:
		sections = append(sections, recordSections(data, *layout)...)
	}

	return sections
}

// recordSections produces one named section per record, up to the first
// 5 records.
func recordSections(data []byte, layout model.RecordLayout) []Section {
	if layout.RecordSize <= 0 {
		return nil
	}
	count := len(data) / layout.RecordSize
	if count > 5 {
		count = 5
	}
	out := make([]Section, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, Section{
			Name:        fmt.Sprintf("Record[%d]", i),
			Offset:      i * layout.RecordSize,
			Length:      layout.RecordSize,
			Description: layout.Name,
		})
	}
	return out
}

// meshSections produces Vertices/Faces/Materials sections from a
// validated mesh header.
func meshSections(data []byte, mesh MeshHeader) []Section {
	const (
		headerSize       = 32
		estimatedVertex  = 32
		estimatedFace    = 12
	)
	vertexOffset := headerSize
	vertexSize := int(mesh.VertexCount) * estimatedVertex
	faceOffset := vertexOffset + vertexSize
	faceSize := int(mesh.FaceCount) * estimatedFace
	materialOffset := faceOffset + faceSize

	sections := []Section{
		{Name: "Vertices", Offset: vertexOffset, Length: clampLen(vertexSize, len(data), vertexOffset), Description: fmt.Sprintf("%d vertices", mesh.VertexCount)},
		{Name: "Faces", Offset: faceOffset, Length: clampLen(faceSize, len(data), faceOffset), Description: fmt.Sprintf("%d faces", mesh.FaceCount)},
	}
	if materialOffset < len(data) {
		sections = append(sections, Section{Name: "Materials", Offset: materialOffset, Length: len(data) - materialOffset})
	}
	return sections
}

func clampLen(length, total, offset int) int {
	if offset >= total {
		return 0
	}
	if offset+length > total {
		return total - offset
	}
	return length
}

// HexDump renders the first window bytes of data as a classic
// offset/hex/ASCII dump, capped by window; callers pass 256 for the
// default window size.
func HexDump(data []byte, window int) string {
	if window <= 0 || window > len(data) {
		window = len(data)
	}
	var out []byte
	for off := 0; off < window; off += 16 {
		end := off + 16
		if end > window {
			end = window
		}
		line := data[off:end]
		out = append(out, []byte(fmt.Sprintf("%08x  ", off))...)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				out = append(out, []byte(fmt.Sprintf("%02x ", line[i]))...)
			} else {
				out = append(out, []byte("   ")...)
			}
		}
		out = append(out, ' ')
		for _, b := range line {
			if isPrintable(b) && b != '\t' && b != '\r' && b != '\n' {
				out = append(out, b)
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
