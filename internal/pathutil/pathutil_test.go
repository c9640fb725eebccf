package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_StaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shared"), 0o755))

	n, err := Normalize(root, "shared/a.txt")
	require.NoError(t, err)
	require.True(t, IsUnder(n, root))
	require.Equal(t, filepath.ToSlash("shared/a.txt"), RelativeToRoot(n))
}

func TestNormalize_RejectsTraversal(t *testing.T) {
	root := t.TempDir()

	_, err := Normalize(root, "../escape.txt")
	require.Error(t, err)
}

func TestNormalize_RejectsNUL(t *testing.T) {
	root := t.TempDir()

	_, err := Normalize(root, "a\x00b")
	require.Error(t, err)
}

func TestNormalize_AllowsCreateOnMissingFile(t *testing.T) {
	root := t.TempDir()

	n, err := Normalize(root, "new/does/not/exist.txt")
	require.NoError(t, err)
	require.True(t, IsUnder(n, root))
}

func TestNormalize_AbsoluteInputsOutsideRootEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	_, err := Normalize(root, filepath.Join(outside, "x.txt"))
	require.Error(t, err)
}
