// Package authority implements the Authority Facade: the single public
// surface composing the Path Normalizer, Policy Engine and Mutation
// Engine behind one fixed call template, auditing every call, allowed
// or denied.
package authority

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/wyd-tools/gamevault/internal/audit"
	"github.com/wyd-tools/gamevault/internal/backupstore"
	"github.com/wyd-tools/gamevault/internal/binaryfmt"
	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/mutation"
	"github.com/wyd-tools/gamevault/internal/pathutil"
	"github.com/wyd-tools/gamevault/internal/policy"
	"github.com/wyd-tools/gamevault/internal/principal"
	"github.com/wyd-tools/gamevault/internal/reporter"
)

// Facade is the mediated file authority's single entry point.
type Facade struct {
	gameRoot   string
	fs         afero.Fs
	policy     *policy.Engine
	mutation   *mutation.Engine
	backups    *backupstore.Store
	analyzer   *binaryfmt.Analyzer
	audit      *audit.Log
	principals *principal.Registry
	report     reporter.Reporter
	watcher    *Watcher
}

// New assembles a Facade from its already-constructed components.
func New(gameRoot string, fs afero.Fs, pol *policy.Engine, mut *mutation.Engine, backups *backupstore.Store, analyzer *binaryfmt.Analyzer, auditLog *audit.Log, principals *principal.Registry, report reporter.Reporter) *Facade {
	if report == nil {
		report = reporter.NoOp()
	}
	return &Facade{
		gameRoot:   gameRoot,
		fs:         fs,
		policy:     pol,
		mutation:   mut,
		backups:    backups,
		analyzer:   analyzer,
		audit:      auditLog,
		principals: principals,
		report:     report,
	}
}

// AttachWatcher installs the optional external-modification collaborator.
// Without one, ServerSyncState queries always answer NotApplicable.
func (f *Facade) AttachWatcher(w *Watcher) {
	f.watcher = w
}

// ServerSyncState reports the last known sync state for rawPath as seen
// by the attached Watcher. It never blocks on or triggers a filesystem
// scan; it only reads the Watcher's cached view.
func (f *Facade) ServerSyncState(rawPath string) model.ServerSyncState {
	if f.watcher == nil {
		return model.SyncNotApplicable
	}
	normalized, err := pathutil.Normalize(f.gameRoot, rawPath)
	if err != nil {
		return model.SyncUnknown
	}
	return f.watcher.State(normalized.String())
}

// denied records an audit entry for a refused request and returns the
// uniform failure outcome.
func (f *Facade) denied(principalHandle model.PrincipalHandle, role model.Role, op model.Operation, targetPath, reason string) model.OperationOutcome {
	now := time.Now().UTC()
	f.audit.Record(model.AuditRecord{
		PrincipalHandle: string(principalHandle),
		Role:            role.String(),
		Operation:       op.String(),
		TargetPath:      targetPath,
		Timestamp:       now,
		Success:         false,
		DenialReason:    reason,
	})
	return model.OperationOutcome{
		Success:    false,
		Message:    reason,
		Timestamp:  now,
		OriginPath: targetPath,
	}
}

func (f *Facade) auditOutcome(principalHandle model.PrincipalHandle, role model.Role, op model.Operation, targetPath string, outcome model.OperationOutcome, engineErr error) model.OperationOutcome {
	if engineErr != nil {
		rec := model.AuditRecord{
			PrincipalHandle: string(principalHandle),
			Role:            role.String(),
			Operation:       op.String(),
			TargetPath:      targetPath,
			Timestamp:       time.Now().UTC(),
			Success:         false,
			DenialReason:    engineErr.Error(),
		}
		f.audit.Record(rec)
		return model.OperationOutcome{
			Success:    false,
			Message:    engineErr.Error(),
			Timestamp:  rec.Timestamp,
			OriginPath: targetPath,
		}
	}
	f.audit.Record(model.AuditRecord{
		PrincipalHandle: string(principalHandle),
		Role:            role.String(),
		Operation:       op.String(),
		TargetPath:      outcome.OriginPath,
		Timestamp:       outcome.Timestamp,
		Success:         outcome.Success,
		BackupPath:      outcome.BackupPath,
	})
	if outcome.Success && f.watcher != nil {
		f.watcher.NoteSelfWrite(outcome.OriginPath)
		if outcome.NewPath != "" {
			f.watcher.NoteSelfWrite(outcome.NewPath)
		}
	}
	return outcome
}

// authorize resolves the caller, normalizes path, and checks policy. It
// returns the resolved principal, the normalized absolute path, and a
// non-nil deny outcome when the request should stop here.
func (f *Facade) authorize(handle model.PrincipalHandle, rawPath string, op model.Operation) (model.Principal, string, *model.OperationOutcome) {
	p, err := f.principals.Lookup(handle)
	if err != nil {
		outcome := f.denied(handle, model.RoleUnknown, op, rawPath, "unknown principal")
		return model.Principal{}, "", &outcome
	}

	normalized, err := pathutil.Normalize(f.gameRoot, rawPath)
	if err != nil {
		outcome := f.denied(handle, p.Role, op, rawPath, err.Error())
		return p, "", &outcome
	}
	target := normalized.String()

	if !f.policy.HasPermission(p.Role, target, op) {
		outcome := f.denied(handle, p.Role, op, target, "policy denied")
		return p, target, &outcome
	}
	return p, target, nil
}

// Create stores content at rawPath, requiring Create permission.
func (f *Facade) Create(ctx context.Context, handle model.PrincipalHandle, rawPath string, content []byte) model.OperationOutcome {
	p, target, deny := f.authorize(handle, rawPath, model.OpCreate)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.Create(ctx, target, content)
	return f.auditOutcome(handle, p.Role, model.OpCreate, target, outcome, err)
}

// Modify overwrites content at rawPath, requiring Modify permission.
func (f *Facade) Modify(ctx context.Context, handle model.PrincipalHandle, rawPath string, content []byte) model.OperationOutcome {
	p, target, deny := f.authorize(handle, rawPath, model.OpModify)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.Modify(ctx, target, content)
	return f.auditOutcome(handle, p.Role, model.OpModify, target, outcome, err)
}

// ModifyPart replaces the first literal occurrence of oldText with
// newText at rawPath, requiring Modify permission.
func (f *Facade) ModifyPart(ctx context.Context, handle model.PrincipalHandle, rawPath, oldText, newText string) model.OperationOutcome {
	p, target, deny := f.authorize(handle, rawPath, model.OpModify)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.ModifyPart(ctx, target, oldText, newText)
	return f.auditOutcome(handle, p.Role, model.OpModify, target, outcome, err)
}

// Delete removes rawPath, requiring Delete permission.
func (f *Facade) Delete(ctx context.Context, handle model.PrincipalHandle, rawPath string) model.OperationOutcome {
	p, target, deny := f.authorize(handle, rawPath, model.OpDelete)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.Delete(ctx, target)
	return f.auditOutcome(handle, p.Role, model.OpDelete, target, outcome, err)
}

// Move relocates rawSrc to rawDst: Delete permission on the source,
// Create permission on the destination.
func (f *Facade) Move(ctx context.Context, handle model.PrincipalHandle, rawSrc, rawDst string) model.OperationOutcome {
	p, src, deny := f.authorize(handle, rawSrc, model.OpDelete)
	if deny != nil {
		return *deny
	}
	dst, deny := f.authorizeSecondPath(handle, p, rawDst, model.OpCreate)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.Move(ctx, src, dst)
	return f.auditOutcome(handle, p.Role, model.OpMove, src, outcome, err)
}

// Copy duplicates rawSrc to rawDst: Modify permission on the source,
// Create permission on the destination.
func (f *Facade) Copy(ctx context.Context, handle model.PrincipalHandle, rawSrc, rawDst string) model.OperationOutcome {
	p, src, deny := f.authorize(handle, rawSrc, model.OpModify)
	if deny != nil {
		return *deny
	}
	dst, deny := f.authorizeSecondPath(handle, p, rawDst, model.OpCreate)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.Copy(ctx, src, dst)
	return f.auditOutcome(handle, p.Role, model.OpCopy, src, outcome, err)
}

// CompileJSONToBinary requires Modify on the source document and, when
// rawDst is given, Create on it. When rawDst is empty the Mutation Engine
// computes the destination binary from the document's detected format,
// and that computed path is not policy-checked.
func (f *Facade) CompileJSONToBinary(ctx context.Context, handle model.PrincipalHandle, rawSrc, rawDst string) model.OperationOutcome {
	p, src, deny := f.authorize(handle, rawSrc, model.OpModify)
	if deny != nil {
		return *deny
	}
	dst := ""
	if rawDst != "" {
		var d *model.OperationOutcome
		dst, d = f.authorizeSecondPath(handle, p, rawDst, model.OpCreate)
		if d != nil {
			return *d
		}
	}
	outcome, err := f.mutation.CompileJSONToBinary(ctx, src, dst)
	return f.auditOutcome(handle, p.Role, model.OpCompile, src, outcome, err)
}

// DecompileBinaryToJSON requires Modify on the source binary and Create
// on the destination document (computed automatically when rawDst is
// empty).
func (f *Facade) DecompileBinaryToJSON(ctx context.Context, handle model.PrincipalHandle, rawSrc, rawDst string) model.OperationOutcome {
	p, src, deny := f.authorize(handle, rawSrc, model.OpModify)
	if deny != nil {
		return *deny
	}
	if rawDst == "" {
		// Same default the Mutation Engine uses: same stem, ".json".
		rawDst = src[:len(src)-len(filepath.Ext(src))] + ".json"
	}
	dst, d := f.authorizeSecondPath(handle, p, rawDst, model.OpCreate)
	if d != nil {
		return *d
	}
	outcome, err := f.mutation.DecompileBinaryToJSON(ctx, src, dst)
	return f.auditOutcome(handle, p.Role, model.OpDecompile, src, outcome, err)
}

// RestoreFromBackup restores backupPath's content, requiring Modify
// permission on the resolved target.
func (f *Facade) RestoreFromBackup(ctx context.Context, handle model.PrincipalHandle, backupPath string, origin model.BackupEntry, restoreToOriginalPath bool, rawAltTarget string) model.OperationOutcome {
	target := rawAltTarget
	if restoreToOriginalPath {
		target = origin.OriginPath
	}
	p, normalizedTarget, deny := f.authorize(handle, target, model.OpModify)
	if deny != nil {
		return *deny
	}
	outcome, err := f.mutation.RestoreFromBackup(ctx, backupPath, origin, restoreToOriginalPath, normalizedTarget)
	return f.auditOutcome(handle, p.Role, model.OpModify, normalizedTarget, outcome, err)
}

// authorizeSecondPath normalizes and policy-checks a second path against
// an already-resolved principal, for the dual-path operations.
func (f *Facade) authorizeSecondPath(handle model.PrincipalHandle, p model.Principal, rawPath string, op model.Operation) (string, *model.OperationOutcome) {
	normalized, err := pathutil.Normalize(f.gameRoot, rawPath)
	if err != nil {
		outcome := f.denied(handle, p.Role, op, rawPath, err.Error())
		return "", &outcome
	}
	target := normalized.String()
	if !f.policy.HasPermission(p.Role, target, op) {
		outcome := f.denied(handle, p.Role, op, target, "policy denied")
		return "", &outcome
	}
	return target, nil
}

// ReadAsText reads rawPath as text, mapped to a nominal Modify policy
// check: reading counts as a general access grant.
func (f *Facade) ReadAsText(handle model.PrincipalHandle, rawPath string) (string, model.OperationOutcome) {
	p, target, deny := f.authorize(handle, rawPath, model.OpModify)
	if deny != nil {
		return "", *deny
	}
	raw, err := afero.ReadFile(f.fs, target)
	now := time.Now().UTC()
	if err != nil {
		outcome := model.OperationOutcome{Success: false, Message: errs.Wrap(errs.CodeNotFound, err).Error(), OriginPath: target, Timestamp: now}
		f.audit.Record(model.AuditRecord{
			PrincipalHandle: string(handle), Role: p.Role.String(), Operation: model.OpModify.String(),
			TargetPath: target, Timestamp: now, Success: false, DenialReason: outcome.Message,
		})
		return "", outcome
	}
	outcome := model.OperationOutcome{Success: true, OriginPath: target, Timestamp: now, ServerSyncState: model.SyncNotApplicable, ServerSyncStateName: model.SyncNotApplicable.String()}
	f.audit.Record(model.AuditRecord{
		PrincipalHandle: string(handle), Role: p.Role.String(), Operation: model.OpModify.String(),
		TargetPath: target, Timestamp: now, Success: true,
	})
	return string(raw), outcome
}

// ListDirectory lists the entries directly under rawPath, mapped to a
// nominal Modify policy check.
func (f *Facade) ListDirectory(handle model.PrincipalHandle, rawPath string) ([]string, model.OperationOutcome) {
	p, target, deny := f.authorize(handle, rawPath, model.OpModify)
	if deny != nil {
		return nil, *deny
	}
	infos, err := afero.ReadDir(f.fs, target)
	now := time.Now().UTC()
	if err != nil {
		outcome := model.OperationOutcome{Success: false, Message: errs.Wrap(errs.CodeNotFound, err).Error(), OriginPath: target, Timestamp: now}
		f.audit.Record(model.AuditRecord{
			PrincipalHandle: string(handle), Role: p.Role.String(), Operation: model.OpModify.String(),
			TargetPath: target, Timestamp: now, Success: false, DenialReason: outcome.Message,
		})
		return nil, outcome
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, filepath.Join(target, fi.Name()))
	}
	f.audit.Record(model.AuditRecord{
		PrincipalHandle: string(handle), Role: p.Role.String(), Operation: model.OpModify.String(),
		TargetPath: target, Timestamp: now, Success: true,
	})
	return names, model.OperationOutcome{Success: true, OriginPath: target, Timestamp: now}
}

// ListBackupsFor proxies to the Backup Store.
func (f *Facade) ListBackupsFor(originPath string) []model.BackupEntry {
	return f.backups.ListBackupsFor(originPath)
}

// ListAllBackups proxies to the Backup Store, returning every tracked
// entry grouped by origin path.
func (f *Facade) ListAllBackups() map[string][]model.BackupEntry {
	return f.backups.ListAll()
}

// Prune proxies to the Backup Store's retention sweep.
func (f *Facade) Prune(keepCount int, olderThan time.Time) int {
	return f.backups.Prune(keepCount, olderThan)
}

// History proxies to the Audit Log.
func (f *Facade) History(roleFilter string, maxEntries int) []model.AuditRecord {
	return f.audit.History(roleFilter, maxEntries)
}

// RegisterPrincipal declares a new principal, delegating to the
// Principal registry.
func (f *Facade) RegisterPrincipal(role model.Role, displayName string) model.Principal {
	return f.principals.Register(role, displayName)
}

// ConfigurePolicy installs the policy document for role, delegating to
// the Policy Engine.
func (f *Facade) ConfigurePolicy(role model.Role, doc model.PolicyDocument) {
	f.policy.Configure(role, doc)
}

// PolicyDocument returns the configured document for role, if any.
func (f *Facade) PolicyDocument(role model.Role) (model.PolicyDocument, bool) {
	return f.policy.Document(role)
}

// SavePolicy persists every configured role document to path, delegating
// to the Policy Engine.
func (f *Facade) SavePolicy(path string) error {
	return f.policy.Save(path)
}

// LoadPolicy replaces configured role documents with the ones read from
// path, delegating to the Policy Engine.
func (f *Facade) LoadPolicy(path string) error {
	return f.policy.Load(path)
}

// Analyzer exposes the Binary Analyzer for read-only inspection (e.g. a
// host CLI printing a hex dump without performing a mutation).
func (f *Facade) Analyzer() *binaryfmt.Analyzer {
	return f.analyzer
}

// FlushAudit forces an immediate audit flush, for host shutdown paths.
func (f *Facade) FlushAudit() error {
	return f.audit.Flush()
}
