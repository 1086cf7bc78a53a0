package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedSubjectsKey = "auth:revoked_subjects"

var ErrRevoked = errors.New("subject revoked")

type providerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider signs and verifies HS256 tokens for the identity provider.
// Deleted subjects are kept in a Redis set so their live tokens stop
// verifying.
type JWTProvider struct {
	secretKey []byte
	issuer    string
	redis     *redis.Client
	now       func() time.Time
}

var (
	_ IdentityProvider = (*JWTProvider)(nil)
	_ SessionIssuer    = (*JWTProvider)(nil)
	_ Provisioner      = (*JWTProvider)(nil)
)

// NewJWTProvider creates a provider; client may be nil, which disables
// revocation.
func NewJWTProvider(secretKey []byte, issuer string, client *redis.Client) *JWTProvider {
	return &JWTProvider{
		secretKey: secretKey,
		issuer:    issuer,
		redis:     client,
		now:       time.Now,
	}
}

// WithClock overrides the time source used for issuing and validating.
func (p *JWTProvider) WithClock(now func() time.Time) *JWTProvider {
	p.now = now
	return p
}

// IssueToken signs a token for subject valid for ttl.
func (p *JWTProvider) IssueToken(subject, email, name string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := providerClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) VerifySessionToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims := &providerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	if p.redis != nil {
		revoked, err := p.redis.SIsMember(ctx, revokedSubjectsKey, claims.Subject).Result()
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	return &TokenClaims{
		Subject: claims.Subject,
		Email:   strings.ToLower(claims.Email),
		Claims: map[string]any{
			"name": claims.Name,
			"iss":  claims.Issuer,
			"jti":  claims.ID,
		},
	}, nil
}

func (p *JWTProvider) CreateSessionToken(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	claims, err := p.VerifySessionToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	name, _ := claims.Claims["name"].(string)
	return p.IssueToken(claims.Subject, claims.Email, name, ttl)
}

func (p *JWTProvider) CreateUser(ctx context.Context, email, name string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is required")
	}
	return uuid.NewString(), nil
}

func (p *JWTProvider) DeleteUser(ctx context.Context, subject string) error {
	if p.redis == nil || subject == "" {
		return nil
	}
	if err := p.redis.SAdd(ctx, revokedSubjectsKey, subject).Err(); err != nil {
		return fmt.Errorf("revoke subject: %w", err)
	}
	return nil
}
