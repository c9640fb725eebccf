package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/model"
)

func TestDetect_NamePatternBeatsExtension(t *testing.T) {
	r := New()

	desc, ok := r.Detect("characters/ItemList.bin", []byte{0x00, 0x00, 0x00, 0x00})
	require.True(t, ok)
	require.Equal(t, model.BinaryItemList, desc.BinaryKind)
	require.NotNil(t, desc.RecordLayout)
	require.Equal(t, "ItemList", desc.RecordLayout.Name)
}

func TestDetect_GlobNamePattern(t *testing.T) {
	r := New()

	desc, ok := r.Detect("data/SkillAttack.bin", nil)
	require.True(t, ok)
	require.Equal(t, model.BinarySkillData, desc.BinaryKind)
}

func TestDetect_FallsBackToExtension(t *testing.T) {
	r := New()

	desc, ok := r.Detect("notes/readme.txt", nil)
	require.True(t, ok)
	require.Equal(t, model.TextPlain, desc.TextKind)
}

func TestDetect_FallsBackToSignature(t *testing.T) {
	r := New()

	desc, ok := r.Detect("unknown.dat", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	require.True(t, ok)
	require.Equal(t, ".png", desc.Extension)
}

func TestDetect_NoMatch(t *testing.T) {
	r := New()

	_, ok := r.Detect("mystery", []byte{0x01, 0x02})
	require.False(t, ok)
}

func TestRegisterExtension_OverridesBuiltin(t *testing.T) {
	r := New()
	r.RegisterExtension(".bin", model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryMesh, Extension: ".bin"})

	desc, ok := r.LookupByExtension(".bin")
	require.True(t, ok)
	require.Equal(t, model.BinaryMesh, desc.BinaryKind)
}

func TestRegisterSignature_LaterWinsOverBuiltin(t *testing.T) {
	r := New()
	r.RegisterSignature([]byte("{"), model.FormatDescriptor{Kind: "text", TextKind: model.TextPlain, Extension: ".json"})

	desc, ok := r.LookupBySignature([]byte(`{"a":1}`))
	require.True(t, ok)
	require.Equal(t, model.TextPlain, desc.TextKind)
}

func TestRegisterNamePattern_LiteralIsCaseInsensitive(t *testing.T) {
	r := New()

	desc, ok := r.Detect("itemlist.BIN", nil)
	require.True(t, ok)
	require.Equal(t, model.BinaryItemList, desc.BinaryKind)
}
