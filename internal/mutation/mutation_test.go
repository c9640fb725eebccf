package mutation

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/backupstore"
	"github.com/wyd-tools/gamevault/internal/binaryfmt"
	"github.com/wyd-tools/gamevault/internal/errs"
)

func newTestEngine(t *testing.T) (*Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	backups, err := backupstore.New(fs, "/backups", 10, nil)
	require.NoError(t, err)
	analyzer := binaryfmt.New(binaryfmt.DefaultConfig())
	e := New(fs, backups, analyzer, Config{
		ServerPathPatterns: []string{"server", "Server"},
		ServerExtensions:   []string{".npc"},
		SyncEnabled:        true,
	})
	return e, fs
}

func TestCreate_FailsIfTargetAlreadyExists(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("x"), 0o644))

	_, err := e.Create(context.Background(), "/game/a.txt", []byte("y"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeAlreadyExists))
}

func TestCreate_WritesContentAndSkipsBackup(t *testing.T) {
	e, fs := newTestEngine(t)
	outcome, err := e.Create(context.Background(), "/game/new.txt", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.BackupPath)

	raw, err := afero.ReadFile(fs, "/game/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
}

func TestModify_BacksUpPreImage(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("original"), 0o644))

	outcome, err := e.Modify(context.Background(), "/game/a.txt", []byte("updated"))
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.BackupPath)

	backupContent, err := afero.ReadFile(fs, outcome.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(backupContent))

	current, err := afero.ReadFile(fs, "/game/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(current))
}

func TestModify_FailsIfTargetMissing(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Modify(context.Background(), "/game/missing.txt", []byte("x"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
}

func TestModifyPart_ReplacesFirstLiteralOccurrence(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("foo bar foo"), 0o644))

	_, err := e.ModifyPart(context.Background(), "/game/a.txt", "foo", "baz")
	require.NoError(t, err)

	raw, err := afero.ReadFile(fs, "/game/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "baz bar foo", string(raw))
}

func TestModifyPart_FailsWhenPatternAbsent(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("foo"), 0o644))

	_, err := e.ModifyPart(context.Background(), "/game/a.txt", "missing", "x")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodePatternNotFound))
}

func TestDelete_BacksUpThenRemoves(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("content"), 0o644))

	outcome, err := e.Delete(context.Background(), "/game/a.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.BackupPath)

	exists, err := afero.Exists(fs, "/game/a.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMove_FailsIfDestinationExists(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/game/b.txt", []byte("b"), 0o644))

	_, err := e.Move(context.Background(), "/game/a.txt", "/game/b.txt")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeDestinationExists))
}

func TestMove_RelocatesFile(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("a"), 0o644))

	_, err := e.Move(context.Background(), "/game/a.txt", "/game/sub/b.txt")
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, "/game/a.txt")
	assert.False(t, exists)
	raw, err := afero.ReadFile(fs, "/game/sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(raw))
}

func TestCopy_DuplicatesSourceContent(t *testing.T) {
	e, fs := newTestEngine(t)
	require.NoError(t, afero.WriteFile(fs, "/game/a.txt", []byte("source"), 0o644))

	_, err := e.Copy(context.Background(), "/game/a.txt", "/game/b.txt")
	require.NoError(t, err)

	raw, err := afero.ReadFile(fs, "/game/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "source", string(raw))
}

func TestRequiresServerResync_MatchesConfiguredPatternOrExtension(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.True(t, e.requiresServerResync("/game/TMServer/config.ini"))
	assert.True(t, e.requiresServerResync("/game/npcs/goblin.npc"))
	assert.False(t, e.requiresServerResync("/game/client/readme.txt"))
}

func TestCreate_OutcomeCarriesServerResyncFlagWhenPathMatches(t *testing.T) {
	e, _ := newTestEngine(t)
	outcome, err := e.Create(context.Background(), "/game/server/config.ini", []byte("x"))
	require.NoError(t, err)
	assert.True(t, outcome.RequiresServerResync)
}
