package auth

import (
	"context"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/logging"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
)

// TokenClaims is what the identity provider vouches for.
type TokenClaims struct {
	Subject string
	Email   string
	Claims  map[string]any
}

type IdentityProvider interface {
	VerifySessionToken(ctx context.Context, token string) (*TokenClaims, error)
}

// SessionIssuer exchanges a freshly minted sign-in token for a session token.
type SessionIssuer interface {
	CreateSessionToken(ctx context.Context, idToken string, ttl time.Duration) (string, error)
}

// Provisioner is the administrative hook into the identity provider.
type Provisioner interface {
	CreateUser(ctx context.Context, email, name string) (subject string, err error)
	DeleteUser(ctx context.Context, subject string) error
}

type UserLookup interface {
	GetByExternalUID(ctx context.Context, uid string) (*gormModels.User, error)
	GetByEmail(ctx context.Context, email string) (*gormModels.User, error)
}

type Verifier struct {
	provider IdentityProvider
	users    UserLookup
}

func NewVerifier(provider IdentityProvider, users UserLookup) *Verifier {
	return &Verifier{provider: provider, users: users}
}

// Verify resolves a credential to a local identity. Every failure looks the
// same to the caller: an invalid token and an absent one both yield false.
func (v *Verifier) Verify(ctx context.Context, credential string) (*Identity, bool) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, false
	}

	claims, err := v.provider.VerifySessionToken(ctx, credential)
	if err != nil || claims == nil || claims.Subject == "" {
		if err != nil {
			logging.Debug("session verification failed", "error", err.Error())
		}
		return nil, false
	}

	user, err := v.users.GetByExternalUID(ctx, claims.Subject)
	if err != nil && claims.Email != "" {
		// profile not linked to the provider subject yet
		user, err = v.users.GetByEmail(ctx, claims.Email)
	}
	if err != nil || user == nil {
		logging.Debug("no local profile for verified subject", "subject", claims.Subject)
		return nil, false
	}
	return FromUser(user), true
}
