// Package policy implements per-role policy documents, the permission
// decision algorithm, and load/save persistence.
package policy

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/wyd-tools/gamevault/internal/model"
)

// Engine owns every policy document, one per role, protected by its own
// mutex so document reads never block on a mutation elsewhere.
type Engine struct {
	mu   sync.RWMutex
	docs map[model.Role]model.PolicyDocument
}

// New returns an Engine with no documents configured. Callers typically
// follow with Configure for every role, or LoadDefaults.
func New() *Engine {
	return &Engine{docs: map[model.Role]model.PolicyDocument{}}
}

// Configure installs or replaces the policy document for role.
func (e *Engine) Configure(role model.Role, doc model.PolicyDocument) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[role] = doc
}

// Document returns the configured document for role, if any.
func (e *Engine) Document(role model.Role) (model.PolicyDocument, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.docs[role]
	return d, ok
}

// LoadDefaults installs the shipped default document for every known
// role, anchoring each document's roots under gameRoot.
func (e *Engine) LoadDefaults(gameRoot string) {
	for _, role := range []model.Role{model.RoleAdmin, model.RoleGameMaster, model.RoleDeveloper, model.RoleSupport, model.RolePlayer} {
		e.Configure(role, DefaultDocument(role, gameRoot))
	}
}

// HasPermission runs the seven-step decision algorithm against the
// normalized path and the requested operation.
func (e *Engine) HasPermission(role model.Role, normalizedPath string, op model.Operation) bool {
	doc, ok := e.Document(role)
	if !ok {
		return false
	}
	return HasPermission(doc, normalizedPath, op)
}

// HasPermission is the pure decision function, exported so callers that
// already hold a document (e.g. diffing a candidate against the shipped
// default) can evaluate it without an Engine.
func HasPermission(doc model.PolicyDocument, path string, op model.Operation) bool {
	// Step 2: denied_roots prefix match always wins.
	if matchesAnyRoot(doc.DeniedRoots, path, doc.IncludeSubdirectories) {
		return false
	}

	// Step 3: denied extension.
	ext := normalizedExt(path)
	if containsFold(doc.DeniedExtensions, ext) {
		return false
	}

	// Step 4: effective operation set, per-path overrides beating
	// per-extension overrides when both match.
	effective := doc.AllowedOperations
	if ops, ok := nearestPathOverride(doc.PerPathOverrides, path); ok {
		effective = ops
	} else if ops, ok := doc.PerExtensionOverrides[ext]; ok {
		effective = ops
	}

	// Step 5.
	if !model.HasOperation(effective, op) {
		return false
	}

	// Step 6: allowed_roots prefix, falling back to default_allow.
	if !matchesAnyRoot(doc.AllowedRoots, path, doc.IncludeSubdirectories) {
		return doc.DefaultAllow
	}

	// Step 7.
	return true
}

func matchesAnyRoot(roots []string, path string, includeSubdirectories bool) bool {
	for _, root := range roots {
		if pathHasPrefix(path, root, includeSubdirectories) {
			return true
		}
	}
	return false
}

// pathHasPrefix reports whether path is root itself, or (when
// includeSubdirectories) a descendant of root, using path-segment
// comparison so "/game/ServerX" does not falsely match root "/game/Server".
func pathHasPrefix(path, root string, includeSubdirectories bool) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if !includeSubdirectories {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

// nearestPathOverride returns the override for the longest configured
// path prefix enclosing path, if any.
func nearestPathOverride(overrides map[string][]model.Operation, path string) ([]model.Operation, bool) {
	best := ""
	var bestOps []model.Operation
	found := false
	for prefix, ops := range overrides {
		if pathHasPrefix(path, prefix, true) && len(prefix) >= len(best) {
			best = prefix
			bestOps = ops
			found = true
		}
	}
	return bestOps, found
}

func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func containsFold(list []string, needle string) bool {
	for _, s := range list {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
