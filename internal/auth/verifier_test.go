package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoUser = errors.New("user not found")

type fakeLookup struct {
	byUID   map[string]*gormModels.User
	byEmail map[string]*gormModels.User
}

func (f *fakeLookup) GetByExternalUID(_ context.Context, uid string) (*gormModels.User, error) {
	if u, ok := f.byUID[uid]; ok {
		return u, nil
	}
	return nil, errNoUser
}

func (f *fakeLookup) GetByEmail(_ context.Context, email string) (*gormModels.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, errNoUser
}

func newProvider(t *testing.T) (*JWTProvider, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJWTProvider([]byte("test-secret"), "ace-test", client), client
}

func TestVerifier_Verify(t *testing.T) {
	provider, _ := newProvider(t)
	uid := "subject-1"
	linked := &gormModels.User{ID: "u1", ExternalUID: &uid, Email: "linked@example.org", Role: constants.RoleAdmin}
	unlinked := &gormModels.User{ID: "u2", Email: "new@example.org", Role: constants.RoleMentee}
	lookup := &fakeLookup{
		byUID:   map[string]*gormModels.User{uid: linked},
		byEmail: map[string]*gormModels.User{unlinked.Email: unlinked},
	}
	v := NewVerifier(provider, lookup)
	ctx := context.Background()

	token, err := provider.IssueToken(uid, "linked@example.org", "Linked", time.Hour)
	require.NoError(t, err)
	id, ok := v.Verify(ctx, token)
	require.True(t, ok)
	assert.Equal(t, "u1", id.ID)
	assert.True(t, id.IsAdmin())

	token, err = provider.IssueToken("subject-2", "NEW@example.org", "", time.Hour)
	require.NoError(t, err)
	id, ok = v.Verify(ctx, token)
	require.True(t, ok, "falls back to email lookup")
	assert.Equal(t, "u2", id.ID)

	token, err = provider.IssueToken("subject-3", "ghost@example.org", "", time.Hour)
	require.NoError(t, err)
	_, ok = v.Verify(ctx, token)
	assert.False(t, ok)

	_, ok = v.Verify(ctx, "")
	assert.False(t, ok)
	_, ok = v.Verify(ctx, "not-a-jwt")
	assert.False(t, ok)
}

func TestJWTProvider_Rejects(t *testing.T) {
	provider, _ := newProvider(t)
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		old := NewJWTProvider([]byte("test-secret"), "ace-test", nil).WithClock(func() time.Time { return past })
		token, err := old.IssueToken("s", "s@example.org", "", time.Hour)
		require.NoError(t, err)
		_, err = provider.VerifySessionToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTProvider([]byte("test-secret"), "someone-else", nil)
		token, err := other.IssueToken("s", "s@example.org", "", time.Hour)
		require.NoError(t, err)
		_, err = provider.VerifySessionToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewJWTProvider([]byte("wrong"), "ace-test", nil)
		token, err := other.IssueToken("s", "s@example.org", "", time.Hour)
		require.NoError(t, err)
		_, err = provider.VerifySessionToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("revoked subject", func(t *testing.T) {
		token, err := provider.IssueToken("doomed", "d@example.org", "", time.Hour)
		require.NoError(t, err)
		_, err = provider.VerifySessionToken(ctx, token)
		require.NoError(t, err)

		require.NoError(t, provider.DeleteUser(ctx, "doomed"))
		_, err = provider.VerifySessionToken(ctx, token)
		assert.ErrorIs(t, err, ErrRevoked)
	})
}

func TestJWTProvider_CreateSessionToken(t *testing.T) {
	provider, _ := newProvider(t)
	ctx := context.Background()

	idToken, err := provider.IssueToken("s1", "s1@example.org", "Sam", 5*time.Minute)
	require.NoError(t, err)

	session, err := provider.CreateSessionToken(ctx, idToken, constants.SessionMaxAge)
	require.NoError(t, err)
	claims, err := provider.VerifySessionToken(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.Subject)
	assert.Equal(t, "Sam", claims.Claims["name"])

	_, err = provider.CreateSessionToken(ctx, "garbage", constants.SessionMaxAge)
	assert.Error(t, err)
}

func TestSessionCookieAndCredential(t *testing.T) {
	c := SessionCookie("tok", true)
	assert.Equal(t, "firebase-session", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(SessionCookie("from-cookie", false))
	assert.Equal(t, "from-cookie", CredentialFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", CredentialFromRequest(r))

	assert.Equal(t, -1, ClearSessionCookie(false).MaxAge)
}
