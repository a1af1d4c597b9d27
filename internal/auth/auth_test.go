package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nodereg/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{Username: "alice"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = issuer.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)

	// Correctly signed with the issuer's secret but carrying no exp claim
	unbounded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "alice"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = issuer.Verify(unbounded)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenPayload(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.NotContains(t, claims, "sub")
	assert.Contains(t, claims, "exp")
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	issuer := NewTokenIssuer("s3cret", time.Hour)
	a := NewAuthenticator([]domain.Credential{{Username: "alice", PasswordHash: string(hash)}}, issuer)

	token, err := a.Login("alice", "hunter2")
	require.NoError(t, err)
	claims, err := a.Tokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = a.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login("bob", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestSetUsers(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	issuer := NewTokenIssuer("s3cret", time.Hour)
	a := NewAuthenticator([]domain.Credential{{Username: "alice", PasswordHash: string(hash)}}, issuer)
	token, err := a.Login("alice", "hunter2")
	require.NoError(t, err)

	a.SetUsers([]domain.Credential{{Username: "bob", PasswordHash: string(hash)}})
	assert.Equal(t, 1, a.UserCount())

	_, err = a.Login("alice", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("bob", "hunter2")
	assert.NoError(t, err)

	// previously issued tokens survive a reload
	_, err = issuer.Verify(token)
	assert.NoError(t, err)
}
