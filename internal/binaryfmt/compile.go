package binaryfmt

import (
	"encoding/binary"
	"math"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
)

// Compile reconstructs a byte sequence from doc: the
// result must be bit-identical to what Decompile of that sequence would
// have produced when no information was dropped. Compile only succeeds
// for formats with a registered, zero-header RecordLayout and a complete
// FormatSpecificData record set — anything else means Decompile already
// discarded bytes (header bytes, a hex-dump-only view, a GenericBinary
// fallback with no record layout), and reproducing them would be a guess,
// so Compile refuses with CodeUnsupportedCompilation rather than emit
// lossy output.
func (a *Analyzer) Compile(doc Document) ([]byte, error) {
	kind := model.BinaryKind(doc.Metadata.DetectedFormat)
	layout, ok := a.layouts[kind]
	if !ok {
		return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: no registered record layout for format %q", doc.Metadata.DetectedFormat)
	}
	if layout.HeaderSize != 0 {
		return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: format %q carries a header Decompile did not preserve", doc.Metadata.DetectedFormat)
	}
	if len(doc.FormatSpecificData) == 0 {
		return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: document for format %q has no records to compile", doc.Metadata.DetectedFormat)
	}

	out := make([]byte, 0, len(doc.FormatSpecificData)*layout.RecordSize)
	for _, rec := range doc.FormatSpecificData {
		raw, err := encodeRecord(rec, layout)
		if err != nil {
			return nil, err
		}
		out = append(out, raw...)
	}
	return out, nil
}

func encodeRecord(rec Record, layout model.RecordLayout) ([]byte, error) {
	raw := make([]byte, layout.RecordSize)

	covered := make([]bool, layout.RecordSize)
	for _, f := range layout.Fields {
		n := f.ArrayCount
		if n <= 0 {
			n = 1
		}
		length := f.ByteLength * n
		if f.ByteOffset < 0 || f.ByteOffset+length > layout.RecordSize {
			continue
		}
		val, ok := rec.Fields[f.Name]
		if !ok {
			return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: record missing field %q required by layout %q", f.Name, layout.Name)
		}
		if err := encodeField(raw[f.ByteOffset:f.ByteOffset+length], f.Type, val); err != nil {
			return nil, err
		}
		for i := f.ByteOffset; i < f.ByteOffset+length; i++ {
			covered[i] = true
		}
	}

	tailIdx := 0
	for i, c := range covered {
		if c {
			continue
		}
		if tailIdx >= len(rec.RawTail) {
			return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: record raw tail shorter than uncovered span for layout %q", layout.Name)
		}
		raw[i] = rec.RawTail[tailIdx]
		tailIdx++
	}
	if tailIdx != len(rec.RawTail) {
		return nil, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: record raw tail longer than uncovered span for layout %q", layout.Name)
	}

	return raw, nil
}

func encodeField(dst []byte, t model.PrimitiveType, val FieldValue) error {
	switch t {
	case model.FieldInt8, model.FieldUint8:
		if val.Int == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected integer field value")
		}
		dst[0] = byte(*val.Int)
	case model.FieldInt16, model.FieldUint16:
		if val.Int == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected integer field value")
		}
		binary.LittleEndian.PutUint16(dst, uint16(*val.Int))
	case model.FieldInt32, model.FieldUint32:
		if val.Int == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected integer field value")
		}
		binary.LittleEndian.PutUint32(dst, uint32(*val.Int))
	case model.FieldFloat32:
		if val.Float == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected float field value")
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(*val.Float)))
	case model.FieldString:
		if val.String == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected string field value")
		}
		s := *val.String
		if len(s) > len(dst) {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: string value %q exceeds field width %d", s, len(dst))
		}
		copy(dst, s)
	default:
		if val.String == nil {
			return errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: expected raw bytes field value")
		}
		copy(dst, *val.String)
	}
	return nil
}
