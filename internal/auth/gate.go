package auth

import (
	"context"
	"errors"

	"github.com/So-lol/ace-website-sub001/internal/constants"
)

var (
	// ErrUnauthenticated: no identity could be resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden: an identity exists but lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// RequireAuth returns the identity verified for this request.
func RequireAuth(ctx context.Context) (*Identity, error) {
	id := GetIdentity(ctx)
	if id == nil || id.ID == "" {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

// RequireAdmin must run before an admin operation touches any store.
func RequireAdmin(ctx context.Context) (*Identity, error) {
	id, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	return RequireRole(id, constants.RoleAdmin)
}

func RequireRole(id *Identity, role constants.Role) (*Identity, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if id.Role != role {
		return nil, ErrForbidden
	}
	return id, nil
}
