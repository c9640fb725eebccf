// Package mutation implements atomic create/modify/delete/move/copy/
// compile/decompile/restore operations, each wrapped in an automatic
// pre-image backup and a per-origin-path lock.
//
// Atomic writes go through a sibling temp file and rename, generalized
// to arbitrary content over an injected afero.Fs.
package mutation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/wyd-tools/gamevault/internal/backupstore"
	"github.com/wyd-tools/gamevault/internal/binaryfmt"
	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/policy"
)

// Engine performs mutations against fs, backing up pre-images to backups
// and flagging server resync via patterns/extensions.
type Engine struct {
	fs       afero.Fs
	backups  *backupstore.Store
	analyzer *binaryfmt.Analyzer

	serverPatterns   policy.PatternSet
	serverExtensions map[string]bool
	syncEnabled      bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Config controls server-resync detection.
type Config struct {
	ServerPathPatterns []string
	ServerExtensions   []string
	SyncEnabled        bool
}

// New returns an Engine writing through fs, backing up through backups,
// and delegating compile/decompile to analyzer.
func New(fs afero.Fs, backups *backupstore.Store, analyzer *binaryfmt.Analyzer, cfg Config) *Engine {
	extSet := make(map[string]bool, len(cfg.ServerExtensions))
	for _, e := range cfg.ServerExtensions {
		extSet[strings.ToLower(e)] = true
	}
	return &Engine{
		fs:               fs,
		backups:          backups,
		analyzer:         analyzer,
		serverPatterns:   policy.NewPatternSet(cfg.ServerPathPatterns),
		serverExtensions: extSet,
		syncEnabled:      cfg.SyncEnabled,
		locks:            map[string]*sync.Mutex{},
	}
}

// lockFor returns the (created on demand) mutex serializing mutations on
// path: mutations on the same path are serialized by a per-origin-path
// lock, while mutations on distinct paths interleave freely.
func (e *Engine) lockFor(path string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	m, ok := e.locks[path]
	if !ok {
		m = &sync.Mutex{}
		e.locks[path] = m
	}
	return m
}

func (e *Engine) exists(path string) bool {
	ok, err := afero.Exists(e.fs, path)
	return err == nil && ok
}

func (e *Engine) readFile(path string) ([]byte, error) {
	return afero.ReadFile(e.fs, path)
}

// requiresServerResync reports whether path should set the
// requires-server-resync flag on the returned outcome.
func (e *Engine) requiresServerResync(path string) bool {
	if !e.syncEnabled {
		return false
	}
	if e.serverPatterns.Matches(path) {
		return true
	}
	return e.serverExtensions[strings.ToLower(filepath.Ext(path))]
}

func (e *Engine) outcome(success bool, message, originPath, newPath, backupPath string) model.OperationOutcome {
	state := model.SyncNotApplicable
	if success && e.requiresServerResync(originPath) {
		state = model.SyncModifiedLocally
	}
	return model.OperationOutcome{
		Success:              success,
		Message:              message,
		Timestamp:            time.Now().UTC(),
		OriginPath:           originPath,
		NewPath:              newPath,
		BackupPath:           backupPath,
		RequiresServerResync: state != model.SyncNotApplicable,
		ServerSyncState:      state,
		ServerSyncStateName:  state.String(),
	}
}

// backupIfExists takes a pre-image backup of path if it currently
// exists.
func (e *Engine) backupIfExists(ctx context.Context, path string, op model.Operation, description string) (string, error) {
	if !e.exists(path) {
		return "", nil
	}
	content, err := e.readFile(path)
	if err != nil {
		return "", errs.Wrap(errs.CodeBackupFailure, err)
	}
	entry, err := e.backups.CreateBackup(ctx, path, content, op, description)
	if err != nil {
		return "", err
	}
	return entry.BackupPath, nil
}

// writeAtomic writes data to path via a sibling temp file and rename,
// creating parent directories first.
func (e *Engine) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".gamevault-%d.tmp", time.Now().UnixNano()))
	f, err := e.fs.Create(tmp)
	if err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = e.fs.Remove(tmp)
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
	if err := e.fs.Rename(tmp, path); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	ok = true
	return nil
}

// Create writes content to path, failing with CodeAlreadyExists if it is
// already present.
func (e *Engine) Create(ctx context.Context, path string, content []byte) (model.OperationOutcome, error) {
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if e.exists(path) {
		return model.OperationOutcome{}, errs.New(errs.CodeAlreadyExists, "mutation: %q already exists", path)
	}
	if err := e.writeAtomic(path, content); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "created", path, "", ""), nil
}

// Modify overwrites path's content, backing up the pre-image first.
func (e *Engine) Modify(ctx context.Context, path string, content []byte) (model.OperationOutcome, error) {
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if !e.exists(path) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", path)
	}
	backupPath, err := e.backupIfExists(ctx, path, model.OpModify, "pre-modify")
	if err != nil {
		return model.OperationOutcome{}, err
	}
	if err := e.writeAtomic(path, content); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "modified", path, "", backupPath), nil
}

// ModifyPart replaces the first literal occurrence of oldText with
// newText in path's content, failing with CodePatternNotFound if oldText
// is absent.
func (e *Engine) ModifyPart(ctx context.Context, path, oldText, newText string) (model.OperationOutcome, error) {
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if !e.exists(path) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", path)
	}
	content, err := e.readFile(path)
	if err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	idx := strings.Index(string(content), oldText)
	if idx < 0 {
		return model.OperationOutcome{}, errs.New(errs.CodePatternNotFound, "mutation: pattern not found in %q", path)
	}

	backupPath, err := e.backupIfExists(ctx, path, model.OpModify, "pre-modify-part")
	if err != nil {
		return model.OperationOutcome{}, err
	}

	updated := string(content[:idx]) + newText + string(content[idx+len(oldText):])
	if err := e.writeAtomic(path, []byte(updated)); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "modified part", path, "", backupPath), nil
}

// Delete removes path, backing up its content first.
func (e *Engine) Delete(ctx context.Context, path string) (model.OperationOutcome, error) {
	lock := e.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if !e.exists(path) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", path)
	}
	backupPath, err := e.backupIfExists(ctx, path, model.OpDelete, "pre-delete")
	if err != nil {
		return model.OperationOutcome{}, err
	}
	if err := e.fs.Remove(path); err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	return e.outcome(true, "deleted", path, "", backupPath), nil
}

// Move relocates src to dst, failing with CodeNotFound if src is absent
// and CodeDestinationExists if dst is already present.
func (e *Engine) Move(ctx context.Context, src, dst string) (model.OperationOutcome, error) {
	srcLock, dstLock := e.lockFor(src), e.lockFor(dst)
	srcLock.Lock()
	defer srcLock.Unlock()
	if dst != src {
		dstLock.Lock()
		defer dstLock.Unlock()
	}

	if !e.exists(src) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", src)
	}
	if e.exists(dst) {
		return model.OperationOutcome{}, errs.New(errs.CodeDestinationExists, "mutation: %q already exists", dst)
	}
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	if err := e.fs.Rename(src, dst); err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	return e.outcome(true, "moved", src, dst, ""), nil
}

// Copy duplicates src's content to dst, failing with CodeNotFound if src
// is absent and CodeDestinationExists if dst is already present.
func (e *Engine) Copy(ctx context.Context, src, dst string) (model.OperationOutcome, error) {
	srcLock, dstLock := e.lockFor(src), e.lockFor(dst)
	srcLock.Lock()
	defer srcLock.Unlock()
	if dst != src {
		dstLock.Lock()
		defer dstLock.Unlock()
	}

	if !e.exists(src) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", src)
	}
	if e.exists(dst) {
		return model.OperationOutcome{}, errs.New(errs.CodeDestinationExists, "mutation: %q already exists", dst)
	}
	content, err := e.readFile(src)
	if err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	if err := e.writeAtomic(dst, content); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "copied", src, dst, ""), nil
}

// destinationFor computes dst when the caller supplies none: same stem,
// swapped extension.
func destinationFor(src, dst, newExt string) string {
	if dst != "" {
		return dst
	}
	ext := filepath.Ext(src)
	stem := strings.TrimSuffix(src, ext)
	return stem + newExt
}

// CompileJSONToBinary delegates to the Binary Analyzer, writing the
// reconstructed bytes to dst (or a computed default).
func (e *Engine) CompileJSONToBinary(ctx context.Context, src, dst string) (model.OperationOutcome, error) {
	if !e.exists(src) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", src)
	}
	raw, err := e.readFile(src)
	if err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	doc, err := binaryfmt.DocumentFromJSON(raw)
	if err != nil {
		return model.OperationOutcome{}, err
	}
	data, err := e.analyzer.Compile(doc)
	if err != nil {
		return model.OperationOutcome{}, err
	}

	target := destinationFor(src, dst, binaryExtensionFor(doc))
	lock := e.lockFor(target)
	lock.Lock()
	defer lock.Unlock()

	backupPath, err := e.backupIfExists(ctx, target, model.OpCompile, "pre-compile")
	if err != nil {
		return model.OperationOutcome{}, err
	}
	if err := e.writeAtomic(target, data); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "compiled", src, target, backupPath), nil
}

// DecompileBinaryToJSON delegates to the Binary Analyzer, writing the
// resulting Document as JSON to dst (or a computed default).
func (e *Engine) DecompileBinaryToJSON(ctx context.Context, src, dst string) (model.OperationOutcome, error) {
	if !e.exists(src) {
		return model.OperationOutcome{}, errs.New(errs.CodeNotFound, "mutation: %q does not exist", src)
	}
	raw, err := e.readFile(src)
	if err != nil {
		return model.OperationOutcome{}, errs.Wrap(errs.CodeWriteFailure, err)
	}
	doc, err := e.analyzer.Decompile(filepath.Base(src), raw)
	if err != nil {
		return model.OperationOutcome{}, err
	}
	data, err := binaryfmt.DocumentToJSON(doc)
	if err != nil {
		return model.OperationOutcome{}, err
	}

	target := destinationFor(src, dst, ".json")
	lock := e.lockFor(target)
	lock.Lock()
	defer lock.Unlock()

	backupPath, err := e.backupIfExists(ctx, target, model.OpDecompile, "pre-decompile")
	if err != nil {
		return model.OperationOutcome{}, err
	}
	if err := e.writeAtomic(target, data); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "decompiled", src, target, backupPath), nil
}

func binaryExtensionFor(doc binaryfmt.Document) string {
	switch model.BinaryKind(doc.Metadata.DetectedFormat) {
	case model.BinaryMesh, model.BinaryStaticMesh:
		return ".msh"
	case model.BinaryAnimation:
		return ".ani"
	default:
		return ".bin"
	}
}

// RestoreFromBackup writes backupPath's content to target (the recorded
// origin when restoreToOriginalPath is true, otherwise the caller's
// alternative target), itself backing up target first if it exists, so
// restore is reversible.
func (e *Engine) RestoreFromBackup(ctx context.Context, backupPath string, origin model.BackupEntry, restoreToOriginalPath bool, altTarget string) (model.OperationOutcome, error) {
	target := altTarget
	if restoreToOriginalPath {
		target = origin.OriginPath
	}
	if target == "" {
		return model.OperationOutcome{}, errs.New(errs.CodeInvalidPath, "mutation: restore requires a target path")
	}

	lock := e.lockFor(target)
	lock.Lock()
	defer lock.Unlock()

	content, err := e.backups.Restore(backupPath)
	if err != nil {
		return model.OperationOutcome{}, err
	}

	backupOfTarget, err := e.backupIfExists(ctx, target, model.OpModify, "pre-restore")
	if err != nil {
		return model.OperationOutcome{}, err
	}
	if err := e.writeAtomic(target, content); err != nil {
		return model.OperationOutcome{}, err
	}
	return e.outcome(true, "restored", target, "", backupOfTarget), nil
}
