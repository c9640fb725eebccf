// Package principal implements the registry of declared callers: a role
// plus a display name, referenced thereafter by a stable opaque handle.
// The authority sees principals only as opaque references with a
// declared role; authenticating the caller behind a handle is a host
// concern.
package principal

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
)

// Registry tracks every declared principal by its handle.
type Registry struct {
	mu         sync.RWMutex
	principals map[model.PrincipalHandle]model.Principal
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{principals: map[model.PrincipalHandle]model.Principal{}}
}

// Register declares a new principal with role and displayName, returning
// its freshly minted handle.
func (r *Registry) Register(role model.Role, displayName string) model.Principal {
	p := model.Principal{
		Handle:      model.PrincipalHandle(uuid.NewString()),
		Role:        role,
		DisplayName: displayName,
	}
	r.mu.Lock()
	r.principals[p.Handle] = p
	r.mu.Unlock()
	return p
}

// Lookup resolves a handle to its Principal.
func (r *Registry) Lookup(handle model.PrincipalHandle) (model.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.principals[handle]
	if !ok {
		return model.Principal{}, errs.New(errs.CodeNotFound, "principal: unknown handle %q", handle)
	}
	return p, nil
}

// Revoke removes a principal so its handle can no longer authorize
// mutations.
func (r *Registry) Revoke(handle model.PrincipalHandle) {
	r.mu.Lock()
	delete(r.principals, handle)
	r.mu.Unlock()
}
