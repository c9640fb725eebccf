package backupstore

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/model"
)

func newTestStore(t *testing.T, maxPerFile int) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New(fs, "/backups", maxPerFile, nil)
	require.NoError(t, err)
	return s
}

func TestOriginHash_IsDeterministicAcrossCalls(t *testing.T) {
	a := OriginHash("/game/ItemList.bin")
	b := OriginHash("/game/ItemList.bin")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, OriginHash("/game/ItemName.bin"))
}

func TestCreateBackup_RecordsEntryAndWritesFile(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	entry, err := s.CreateBackup(ctx, "/game/ItemList.bin", []byte("original content"), model.OpModify, "pre-modify")
	require.NoError(t, err)
	assert.Equal(t, "/game/ItemList.bin", entry.OriginPath)

	raw, err := s.Restore(entry.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("original content"), raw)

	list := s.ListBackupsFor("/game/ItemList.bin")
	require.Len(t, list, 1)
}

func TestCreateBackup_PrunesOldestBeyondMaxPerFile(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.CreateBackup(ctx, "/game/ItemList.bin", []byte{byte(i)}, model.OpModify, "")
		require.NoError(t, err)
	}

	list := s.ListBackupsFor("/game/ItemList.bin")
	assert.Len(t, list, 2)
}

func TestListBackupsMatching_FiltersByDescriptionSubstring(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	_, err := s.CreateBackup(ctx, "/game/ItemList.bin", []byte("a"), model.OpModify, "before nerf patch")
	require.NoError(t, err)
	_, err = s.CreateBackup(ctx, "/game/ItemList.bin", []byte("b"), model.OpModify, "routine snapshot")
	require.NoError(t, err)

	matches := s.ListBackupsMatching("/game/ItemList.bin", "nerf")
	require.Len(t, matches, 1)
	assert.Equal(t, "before nerf patch", matches[0].Description)
}

func TestPrune_RemovesEntriesOlderThanCutoff(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	_, err := s.CreateBackup(ctx, "/game/ItemList.bin", []byte("a"), model.OpModify, "")
	require.NoError(t, err)

	cutoff := time.Now().Add(time.Hour)
	removed := s.Prune(0, cutoff)
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.ListBackupsFor("/game/ItemList.bin"))
}

func TestRestore_FailsForUnknownBackupPath(t *testing.T) {
	s := newTestStore(t, 10)
	_, err := s.Restore("/backups/files/missing/never-written.bin")
	require.Error(t, err)
}
