// Package backupstore implements a content-addressed backup tree under
// a configured root, a single backup-registry.json index, and
// count/age retention pruning.
//
// Writes go through a temp-file-then-rename discipline over an injected
// afero.Fs so the retention logic is unit-testable against an
// in-memory filesystem.
package backupstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/reporter"
)

const registryFileName = "backup-registry.json"

// Store owns every file under root/files and the registry at
// root/backup-registry.json; callers never touch either directly.
type Store struct {
	fs       afero.Fs
	root     string
	maxPerFile int
	report   reporter.Reporter

	mu       sync.Mutex
	entries  map[string][]model.BackupEntry // keyed by origin_hash
}

// New opens (or initializes) a Store rooted at root. maxPerFile <= 0
// falls back to a default of 10.
func New(fs afero.Fs, root string, maxPerFile int, report reporter.Reporter) (*Store, error) {
	if maxPerFile <= 0 {
		maxPerFile = 10
	}
	if report == nil {
		report = reporter.NoOp()
	}
	s := &Store{fs: fs, root: root, maxPerFile: maxPerFile, report: report, entries: map[string][]model.BackupEntry{}}
	if err := fs.MkdirAll(filepath.Join(root, "files"), 0o755); err != nil {
		return nil, errs.Wrap(errs.CodeBackupFailure, err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) registryPath() string {
	return filepath.Join(s.root, registryFileName)
}

func (s *Store) load() error {
	exists, err := afero.Exists(s.fs, s.registryPath())
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	if !exists {
		return nil
	}
	raw, err := afero.ReadFile(s.fs, s.registryPath())
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	if len(raw) == 0 {
		return nil
	}
	var entries map[string][]model.BackupEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	s.entries = entries
	return nil
}

// persist writes the registry atomically: a temp file in root, synced,
// then renamed over backup-registry.json.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	return writeFileAtomic(s.fs, s.registryPath(), raw)
}

// writeFileAtomic writes data to path via a sibling temp file and rename.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".gamevault-%d.tmp", time.Now().UnixNano()))
	f, err := fs.Create(tmp)
	if err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = fs.Remove(tmp)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	if syncer, canSync := f.(interface{ Sync() error }); canSync {
		_ = syncer.Sync()
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	ok = true
	return nil
}

// OriginHash returns the deterministic, restart-stable fingerprint of a
// normalized origin path.
func OriginHash(normalizedOriginPath string) string {
	sum := xxhash.Sum64String(normalizedOriginPath)
	return strconv.FormatUint(sum, 16)
}

// CreateBackup writes content (the caller-supplied current contents of
// originPath) into the backup tree and records a BackupEntry, enforcing
// the per-origin retention cap afterward.
func (s *Store) CreateBackup(ctx context.Context, originPath string, content []byte, op model.Operation, description string) (model.BackupEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	originHash := OriginHash(originPath)
	dir := filepath.Join(s.root, "files", originHash)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return model.BackupEntry{}, errs.Wrap(errs.CodeBackupFailure, err)
	}

	base := filepath.Base(originPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	timestampMs := time.Now().UnixMilli()
	backupName := fmt.Sprintf("%s_%d_%s%s", stem, timestampMs, op.String(), ext)
	backupPath := filepath.Join(dir, backupName)

	if err := retryableWrite(ctx, s.fs, backupPath, content); err != nil {
		return model.BackupEntry{}, errs.Wrap(errs.CodeBackupFailure, err)
	}

	entry := model.BackupEntry{
		BackupPath:          backupPath,
		OriginPath:          originPath,
		CreatedAt:           time.Now().UTC(),
		TriggeringOperation: op,
		OperationName:       op.String(),
		Description:         description,
		OriginHash:          originHash,
	}
	s.entries[originHash] = append(s.entries[originHash], entry)
	s.pruneLocked(originHash, s.maxPerFile, time.Time{})

	if err := s.persist(); err != nil {
		return model.BackupEntry{}, err
	}
	return entry, nil
}

// ListBackupsFor returns every backup entry for originPath, oldest first.
func (s *Store) ListBackupsFor(originPath string) []model.BackupEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.BackupEntry(nil), s.entries[OriginHash(originPath)]...)
	sortByCreatedAt(out)
	return out
}

// ListAll returns every tracked backup, grouped by origin path.
func (s *Store) ListAll() map[string][]model.BackupEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string][]model.BackupEntry{}
	for _, bucket := range s.entries {
		for _, e := range bucket {
			out[e.OriginPath] = append(out[e.OriginPath], e)
		}
	}
	for origin := range out {
		sortByCreatedAt(out[origin])
	}
	return out
}

// ListBackupsMatching searches descriptions for origin's bucket
// containing substr, case-insensitively.
func (s *Store) ListBackupsMatching(originPath, substr string) []model.BackupEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(substr)
	var out []model.BackupEntry
	for _, e := range s.entries[OriginHash(originPath)] {
		if strings.Contains(strings.ToLower(e.Description), needle) {
			out = append(out, e)
		}
	}
	sortByCreatedAt(out)
	return out
}

// Restore reads backupPath's content and returns it for the caller (the
// Mutation Engine) to write atomically to target; the Backup Store
// never writes outside its own tree.
func (s *Store) Restore(backupPath string) ([]byte, error) {
	exists, err := afero.Exists(s.fs, backupPath)
	if err != nil {
		return nil, errs.Wrap(errs.CodeBackupFailure, err)
	}
	if !exists {
		return nil, errs.New(errs.CodeNotFound, "backupstore: backup %q does not exist", backupPath)
	}
	raw, err := afero.ReadFile(s.fs, backupPath)
	if err != nil {
		return nil, errs.Wrap(errs.CodeBackupFailure, err)
	}
	return raw, nil
}

// Prune removes entries exceeding keepCount per origin (when keepCount >
// 0) and/or older than olderThan (when non-zero), across every tracked
// origin. It returns the number of entries removed.
func (s *Store) Prune(keepCount int, olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for originHash := range s.entries {
		removed += s.pruneLocked(originHash, keepCount, olderThan)
	}
	if err := s.persist(); err != nil {
		s.report.Error("backupstore: failed to persist registry after prune", reporter.Fields{"error": err})
	}
	return removed
}

// pruneLocked must be called with s.mu held. keepCount <= 0 disables the
// count cap; a zero olderThan disables the age cap.
func (s *Store) pruneLocked(originHash string, keepCount int, olderThan time.Time) int {
	bucket := s.entries[originHash]
	sortByCreatedAt(bucket)

	var kept []model.BackupEntry
	removed := 0
	for i, e := range bucket {
		ageExpired := !olderThan.IsZero() && e.CreatedAt.Before(olderThan)
		countExpired := keepCount > 0 && len(bucket)-i > keepCount
		if ageExpired || countExpired {
			if err := s.fs.Remove(e.BackupPath); err != nil && !isNotExist(s.fs, e.BackupPath) {
				s.report.Warn("backupstore: failed to remove pruned backup file", reporter.Fields{"path": e.BackupPath, "error": err})
			}
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(s.entries, originHash)
	} else {
		s.entries[originHash] = kept
	}
	return removed
}

func isNotExist(fs afero.Fs, path string) bool {
	exists, err := afero.Exists(fs, path)
	return err == nil && !exists
}

func sortByCreatedAt(entries []model.BackupEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
}
