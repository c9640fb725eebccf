package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyd-tools/gamevault/internal/model"
)

func TestRegister_ReturnsResolvableHandle(t *testing.T) {
	r := New()
	p := r.Register(model.RoleAdmin, "ops-console")

	resolved, err := r.Lookup(p.Handle)
	require.NoError(t, err)
	assert.Equal(t, "ops-console", resolved.DisplayName)
	assert.Equal(t, model.RoleAdmin, resolved.Role)
}

func TestLookup_FailsForUnknownHandle(t *testing.T) {
	r := New()
	_, err := r.Lookup(model.PrincipalHandle("does-not-exist"))
	require.Error(t, err)
}

func TestRevoke_InvalidatesHandle(t *testing.T) {
	r := New()
	p := r.Register(model.RolePlayer, "player-1")
	r.Revoke(p.Handle)

	_, err := r.Lookup(p.Handle)
	require.Error(t, err)
}
