package binaryfmt

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
)

// Decompile produces a Document describing data. It fails
// with CodeUnknownFormat only when data cannot be classified even as
// GenericBinary, which in practice never happens since GenericBinary is
// the fallback classification for any non-empty byte sequence.
func (a *Analyzer) Decompile(fileName string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, errs.New(errs.CodeUnknownFormat, "binaryfmt: cannot decompile empty file %q", fileName)
	}

	kind := model.BinaryGeneric
	var layoutPtr *model.RecordLayout
	var meshPtr *MeshHeader

	if a.cfg.Formats != nil {
		if desc, ok := a.cfg.Formats.Detect(fileName, data); ok && desc.RecordLayout != nil {
			l := *desc.RecordLayout
			layoutPtr = &l
			kind = desc.BinaryKind
		}
	}

	if layoutPtr == nil {
		if layout, ok := a.DetectRecordLayout(data); ok {
			l := layout
			layoutPtr = &l
			kind = model.BinaryKind(layout.Name)
		} else if mesh, ok := DetectMesh(data); ok {
			m := mesh
			meshPtr = &m
			kind = model.BinaryMesh
		}
	}

	doc := Document{
		Metadata: Metadata{
			FileName:       fileName,
			SizeBytes:      int64(len(data)),
			DetectedFormat: string(kind),
			DetectedAt:     time.Now().UTC(),
		},
		ExtractedStrings: ExtractStrings(data, a.cfg.MinStringLength),
		Sections:         a.IdentifySections(data, layoutPtr, meshPtr),
		HexDump:          HexDump(data, a.cfg.HexDumpWindow),
		Int32Values:      extractInt32s(data),
		FloatValues:      extractFloat32s(data),
	}

	if layoutPtr != nil {
		doc.FormatSpecificData = decodeRecords(data, *layoutPtr)
	}

	return doc, nil
}

// extractInt32s reads every 4-byte-aligned little-endian int32 in data, a
// coarse diagnostic aid for eyeballing unrecognized binary layouts.
func extractInt32s(data []byte) []int32 {
	n := len(data) / 4
	out := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, int32(binary.LittleEndian.Uint32(data[i*4:i*4+4])))
	}
	return out
}

func extractFloat32s(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out = append(out, math.Float32frombits(bits))
	}
	return out
}

// decodeRecords splits data into layout.RecordSize chunks and decodes each
// field per its PrimitiveType, carrying any header bytes before the first
// record as a single leading RawTail-only record would be lossy, so the
// header is excluded here and left to the Sections entry instead.
func decodeRecords(data []byte, layout model.RecordLayout) []Record {
	if layout.RecordSize <= 0 {
		return nil
	}
	start := layout.HeaderSize
	count := (len(data) - start) / layout.RecordSize
	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		offset := start + i*layout.RecordSize
		raw := data[offset : offset+layout.RecordSize]
		records = append(records, decodeRecord(raw, layout))
	}
	return records
}

func decodeRecord(raw []byte, layout model.RecordLayout) Record {
	fields := make(map[string]FieldValue, len(layout.Fields))
	covered := make([]bool, len(raw))
	for _, f := range layout.Fields {
		n := f.ArrayCount
		if n <= 0 {
			n = 1
		}
		length := f.ByteLength * n
		if f.ByteOffset < 0 || f.ByteOffset+length > len(raw) {
			continue
		}
		span := raw[f.ByteOffset : f.ByteOffset+length]
		for i := f.ByteOffset; i < f.ByteOffset+length; i++ {
			covered[i] = true
		}
		fields[f.Name] = decodeField(span, f.Type)
	}

	var tail []byte
	for i, c := range covered {
		if !c {
			tail = append(tail, raw[i])
		}
	}
	return Record{Fields: fields, RawTail: tail}
}

func decodeField(span []byte, t model.PrimitiveType) FieldValue {
	switch t {
	case model.FieldInt8:
		v := int64(int8(span[0]))
		return FieldValue{Int: &v}
	case model.FieldUint8:
		v := int64(span[0])
		return FieldValue{Int: &v}
	case model.FieldInt16:
		v := int64(int16(binary.LittleEndian.Uint16(span)))
		return FieldValue{Int: &v}
	case model.FieldUint16:
		v := int64(binary.LittleEndian.Uint16(span))
		return FieldValue{Int: &v}
	case model.FieldInt32:
		v := int64(int32(binary.LittleEndian.Uint32(span)))
		return FieldValue{Int: &v}
	case model.FieldUint32:
		v := int64(binary.LittleEndian.Uint32(span))
		return FieldValue{Int: &v}
	case model.FieldFloat32:
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(span)))
		return FieldValue{Float: &v}
	case model.FieldString:
		s := cStringTrim(span)
		return FieldValue{String: &s}
	default:
		s := string(span)
		return FieldValue{String: &s}
	}
}

// cStringTrim cuts a fixed-width field at its first NUL byte, the
// convention every WYD-family fixed string field uses.
func cStringTrim(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
