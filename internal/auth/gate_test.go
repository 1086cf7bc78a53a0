package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	t.Run("no identity is unauthenticated", func(t *testing.T) {
		_, err := RequireAdmin(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.False(t, errors.Is(err, ErrForbidden))
	})

	t.Run("mentor is forbidden", func(t *testing.T) {
		ctx := SetIdentity(context.Background(), &Identity{ID: "u1", Role: constants.RoleMentor})
		_, err := RequireAdmin(ctx)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.False(t, errors.Is(err, ErrUnauthenticated))
	})

	t.Run("admin passes", func(t *testing.T) {
		admin := &Identity{ID: "a1", Role: constants.RoleAdmin}
		ctx := SetIdentity(context.Background(), admin)
		got, err := RequireAdmin(ctx)
		require.NoError(t, err)
		assert.Same(t, admin, got)
	})
}

func TestRequireAuth(t *testing.T) {
	ctx := SetIdentity(context.Background(), &Identity{ID: "m1", Role: constants.RoleMentee})
	id, err := RequireAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", id.ID)

	_, err = RequireAuth(SetIdentity(context.Background(), &Identity{}))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
