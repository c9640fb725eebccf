package policy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/model"
)

func TestHasPermission_DeniedRootOverridesEverything(t *testing.T) {
	doc := model.PolicyDocument{
		AllowedRoots:          []string{"/game"},
		DeniedRoots:           []string{"/game/secrets"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
		DefaultAllow:          true,
	}
	assert.False(t, HasPermission(doc, "/game/secrets/key.txt", model.OpModify))
}

func TestHasPermission_DeniedExtensionOverridesAllowedRoot(t *testing.T) {
	doc := model.PolicyDocument{
		AllowedRoots:          []string{"/game"},
		DeniedExtensions:      []string{".exe"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
	}
	assert.False(t, HasPermission(doc, "/game/tool.exe", model.OpModify))
}

func TestHasPermission_PerPathOverrideBeatsPerExtensionOverride(t *testing.T) {
	doc := model.PolicyDocument{
		AllowedRoots:      []string{"/game"},
		AllowedOperations: []model.Operation{},
		PerPathOverrides: map[string][]model.Operation{
			"/game/logs": {model.OpDelete},
		},
		PerExtensionOverrides: map[string][]model.Operation{
			".log": {model.OpModify},
		},
		IncludeSubdirectories: true,
	}
	assert.True(t, HasPermission(doc, "/game/logs/today.log", model.OpDelete))
	assert.False(t, HasPermission(doc, "/game/logs/today.log", model.OpModify))
}

func TestHasPermission_FallsBackToDefaultAllowOutsideAllowedRoots(t *testing.T) {
	doc := model.PolicyDocument{
		AllowedRoots:          []string{"/game/server"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
		DefaultAllow:          false,
	}
	assert.False(t, HasPermission(doc, "/game/client/file.txt", model.OpModify))
}

func TestHasPermission_DeniesWhenOperationNotInEffectiveSet(t *testing.T) {
	doc := model.PolicyDocument{
		AllowedRoots:          []string{"/game"},
		AllowedOperations:     []model.Operation{model.OpModify},
		IncludeSubdirectories: true,
	}
	assert.False(t, HasPermission(doc, "/game/file.txt", model.OpDelete))
}

func TestEngine_HasPermission_DeniesWhenRoleHasNoDocument(t *testing.T) {
	e := New()
	assert.False(t, e.HasPermission(model.RolePlayer, "/game/saved_games/slot1.sav", model.OpCreate))
}

func TestEngine_LoadDefaults_AdminHasFullAccess(t *testing.T) {
	gameRoot := "/srv/game"
	e := New()
	e.LoadDefaults(gameRoot)
	assert.True(t, e.HasPermission(model.RoleAdmin, filepath.Join(gameRoot, "anything/at/all.bin"), model.OpDelete))
}

// Exercises defaults the way the Facade actually calls HasPermission:
// with the absolute, normalized path, never a root-relative one.
func TestEngine_LoadDefaults_PlayerLimitedToSavedGamesAndScreenshots(t *testing.T) {
	gameRoot := "/srv/game"
	e := New()
	e.LoadDefaults(gameRoot)
	assert.True(t, e.HasPermission(model.RolePlayer, filepath.Join(gameRoot, "saved_games/slot1.sav"), model.OpCreate))
	assert.False(t, e.HasPermission(model.RolePlayer, filepath.Join(gameRoot, "saved_games/slot1.sav"), model.OpDelete))
	assert.False(t, e.HasPermission(model.RolePlayer, filepath.Join(gameRoot, "Server/config.ini"), model.OpCreate))
}

func TestEngine_LoadDefaults_GameMasterCanManageServerAndLogsSubtrees(t *testing.T) {
	gameRoot := "/srv/game"
	e := New()
	e.LoadDefaults(gameRoot)
	assert.True(t, e.HasPermission(model.RoleGameMaster, filepath.Join(gameRoot, "Server/TMSrv.ini"), model.OpModify))
	assert.True(t, e.HasPermission(model.RoleGameMaster, filepath.Join(gameRoot, "logs/today.log"), model.OpDelete))
	assert.False(t, e.HasPermission(model.RoleGameMaster, filepath.Join(gameRoot, "client/readme.txt"), model.OpModify))
}

func TestEngine_SaveAndLoad_RoundTripsDocuments(t *testing.T) {
	e := New()
	e.LoadDefaults("/srv/game")

	path := t.TempDir() + "/policy.json"
	require.NoError(t, e.Save(path))

	reloaded := New()
	require.NoError(t, reloaded.Load(path))

	doc, ok := reloaded.Document(model.RoleAdmin)
	require.True(t, ok)
	assert.True(t, doc.DefaultAllow)
}

func TestPatternSet_MatchesGlobAndSubstring(t *testing.T) {
	ps := NewPatternSet([]string{"Server", "Skill*.bin", ".npc"})
	assert.True(t, ps.Matches("/game/TMServer/config.ini"))
	assert.True(t, ps.Matches("Skill001.bin"))
	assert.True(t, ps.Matches("npcs/goblin.npc"))
	assert.False(t, ps.Matches("client/readme.txt"))
}
