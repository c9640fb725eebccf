package authority

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/audit"
	"github.com/wyd-tools/gamevault/internal/backupstore"
	"github.com/wyd-tools/gamevault/internal/binaryfmt"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/mutation"
	"github.com/wyd-tools/gamevault/internal/policy"
	"github.com/wyd-tools/gamevault/internal/principal"
)

func newTestFacade(t *testing.T) (*Facade, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/game/shared", 0o755))
	require.NoError(t, fs.MkdirAll("/game/admin", 0o755))

	backups, err := backupstore.New(fs, "/backups", 10, nil)
	require.NoError(t, err)
	analyzer := binaryfmt.New(binaryfmt.DefaultConfig())
	mutEngine := mutation.New(fs, backups, analyzer, mutation.Config{SyncEnabled: true})
	pol := policy.New()
	auditLog := audit.New(audit.Config{}, nil)
	principals := principal.New()

	return New("/game", fs, pol, mutEngine, backups, analyzer, auditLog, principals, nil), fs
}

func TestFacade_AdminCreatesInSharedDirectory(t *testing.T) {
	f, fs := newTestFacade(t)
	f.ConfigurePolicy(model.RoleAdmin, model.PolicyDocument{
		AllowedRoots:          []string{"/game/shared"},
		AllowedOperations:     []model.Operation{model.OpCreate},
		IncludeSubdirectories: true,
	})
	admin := f.RegisterPrincipal(model.RoleAdmin, "ops")

	outcome := f.Create(context.Background(), admin.Handle, "shared/a.txt", []byte("hello"))
	require.True(t, outcome.Success)
	assert.Empty(t, outcome.BackupPath)

	raw, err := afero.ReadFile(fs, "/game/shared/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	history := f.History("", 0)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
}

func TestFacade_DeniesGameMasterOutsideAllowedRoots(t *testing.T) {
	f, fs := newTestFacade(t)
	f.ConfigurePolicy(model.RoleGameMaster, model.PolicyDocument{
		AllowedRoots:          []string{"/game/shared"},
		AllowedOperations:     []model.Operation{model.OpCreate},
		IncludeSubdirectories: true,
		DefaultAllow:          false,
	})
	gm := f.RegisterPrincipal(model.RoleGameMaster, "gm-1")

	outcome := f.Create(context.Background(), gm.Handle, "admin/x.txt", []byte("x"))
	assert.False(t, outcome.Success)

	exists, err := afero.Exists(fs, "/game/admin/x.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	history := f.History("", 0)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.NotEmpty(t, history[0].DenialReason)
}

func TestFacade_ModifyProducesBackupAndAuditRecord(t *testing.T) {
	f, fs := newTestFacade(t)
	require.NoError(t, afero.WriteFile(fs, "/game/shared/s.txt", []byte("A"), 0o644))
	f.ConfigurePolicy(model.RoleAdmin, model.PolicyDocument{
		AllowedRoots:          []string{"/game"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
	})
	admin := f.RegisterPrincipal(model.RoleAdmin, "ops")

	outcome := f.Modify(context.Background(), admin.Handle, "shared/s.txt", []byte("B"))
	require.True(t, outcome.Success)
	require.NotEmpty(t, outcome.BackupPath)

	backups := f.ListBackupsFor("/game/shared/s.txt")
	require.Len(t, backups, 1)

	history := f.History("", 0)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, outcome.BackupPath, history[0].BackupPath)

	raw, err := afero.ReadFile(fs, "/game/shared/s.txt")
	require.NoError(t, err)
	assert.Equal(t, "B", string(raw))
}

func TestFacade_RestoreIsReversible(t *testing.T) {
	f, fs := newTestFacade(t)
	require.NoError(t, afero.WriteFile(fs, "/game/shared/s.txt", []byte("A"), 0o644))
	f.ConfigurePolicy(model.RoleAdmin, model.PolicyDocument{
		AllowedRoots:          []string{"/game"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
	})
	admin := f.RegisterPrincipal(model.RoleAdmin, "ops")

	modifyOutcome := f.Modify(context.Background(), admin.Handle, "shared/s.txt", []byte("B"))
	require.True(t, modifyOutcome.Success)

	backups := f.ListBackupsFor("/game/shared/s.txt")
	require.Len(t, backups, 1)
	entry := backups[0]

	restoreOutcome := f.RestoreFromBackup(context.Background(), admin.Handle, entry.BackupPath, entry, true, "")
	require.True(t, restoreOutcome.Success)

	raw, err := afero.ReadFile(fs, "/game/shared/s.txt")
	require.NoError(t, err)
	assert.Equal(t, "A", string(raw))

	assert.Len(t, f.ListBackupsFor("/game/shared/s.txt"), 2)
}

func TestFacade_DenialDoesNotWriteOrBackup(t *testing.T) {
	f, fs := newTestFacade(t)
	f.ConfigurePolicy(model.RolePlayer, model.PolicyDocument{
		AllowedRoots:          []string{"/game/saved_games"},
		AllowedOperations:     []model.Operation{model.OpCreate},
		IncludeSubdirectories: true,
	})
	player := f.RegisterPrincipal(model.RolePlayer, "p1")

	outcome := f.Create(context.Background(), player.Handle, "shared/cheat.txt", []byte("x"))
	assert.False(t, outcome.Success)

	exists, err := afero.Exists(fs, "/game/shared/cheat.txt")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.ListBackupsFor("/game/shared/cheat.txt"))
}
