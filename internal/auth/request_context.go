package auth

import (
	"context"
)

type contextKey string

var identityKey contextKey = "identity"

func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(ctx context.Context) *Identity {
	val := ctx.Value(identityKey)
	if id, ok := val.(*Identity); ok {
		return id
	}
	return nil
}
