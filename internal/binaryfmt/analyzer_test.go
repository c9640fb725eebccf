package binaryfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
)

func itemListBytes(n int) []byte {
	rec := make([]byte, 128)
	copy(rec, "Sword of Testing")
	rec[20] = 5 // level
	data := make([]byte, 0, n*128)
	for i := 0; i < n; i++ {
		r := make([]byte, 128)
		copy(r, rec)
		r[16] = byte(i)
		data = append(data, r...)
	}
	return data
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a := New(DefaultConfig())
	require.NoError(t, a.RegisterLayout(model.BinaryKind("ItemList"), model.RecordLayout{
		Name:       "ItemList",
		RecordSize: 128,
		Fields: []model.Field{
			{Name: "name", Type: model.FieldString, ByteOffset: 0, ByteLength: 16},
			{Name: "index", Type: model.FieldUint16, ByteOffset: 16, ByteLength: 2},
			{Name: "level", Type: model.FieldUint16, ByteOffset: 20, ByteLength: 2},
		},
	}))
	return a
}

func TestDetectRecordLayout_MatchesKnownRecordSize(t *testing.T) {
	a := newTestAnalyzer(t)
	data := itemListBytes(12)

	layout, ok := a.DetectRecordLayout(data)
	require.True(t, ok)
	assert.Equal(t, 128, layout.RecordSize)
}

func TestDetectRecordLayout_RejectsAllZeroRecords(t *testing.T) {
	a := newTestAnalyzer(t)
	data := make([]byte, 128*12)

	_, ok := a.DetectRecordLayout(data)
	assert.False(t, ok)
}

func TestDetectMesh_ValidatesCountsAndSize(t *testing.T) {
	vertexCount := uint32(10)
	faceCount := uint32(5)
	size := 32 + int(vertexCount)*32 + int(faceCount)*12
	data := make([]byte, size)
	le32put(data[8:12], vertexCount)
	le32put(data[12:16], faceCount)

	mesh, ok := DetectMesh(data)
	require.True(t, ok)
	assert.Equal(t, vertexCount, mesh.VertexCount)
	assert.Equal(t, faceCount, mesh.FaceCount)
}

func TestDetectMesh_RejectsImplausibleCounts(t *testing.T) {
	data := make([]byte, 64)
	le32put(data[8:12], 0)
	le32put(data[12:16], 5)

	_, ok := DetectMesh(data)
	assert.False(t, ok)
}

func TestExtractStrings_FindsRunsAboveMinLength(t *testing.T) {
	data := append([]byte("HELLOWORLD"), 0x00, 0x00, 0x00)
	out := ExtractStrings(data, 4)
	assert.Equal(t, []string{"HELLOWORLD"}, out)
}

func TestExtractStrings_DropsSingleRepeatedByteRuns(t *testing.T) {
	data := []byte("AAAAAAAAAA")
	out := ExtractStrings(data, 4)
	assert.Empty(t, out)
}

func TestDecompileCompile_RoundTripIsByteIdentical(t *testing.T) {
	a := newTestAnalyzer(t)
	data := itemListBytes(12)

	doc, err := a.Decompile("ItemList.bin", data)
	require.NoError(t, err)
	require.NotEmpty(t, doc.FormatSpecificData)

	out, err := a.Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompile_FailsWithUnsupportedCompilationForUnknownFormat(t *testing.T) {
	a := New(DefaultConfig())
	doc := Document{Metadata: Metadata{DetectedFormat: "GenericBinary"}}

	_, err := a.Compile(doc)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeUnsupportedCompilation))
}

func TestDecompile_FailsOnEmptyInput(t *testing.T) {
	a := New(DefaultConfig())
	_, err := a.Decompile("empty.bin", nil)
	require.Error(t, err)
}

func le32put(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
