package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"

	"nodereg/internal/domain"
)

// dummyHash is compared against for unknown users so that lookups of
// missing and existing users take similar time
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3HKrJHPBAhvF8tyQkLm/5eS")

// Authenticator checks credentials against the configured users and issues
// a session token on success
type Authenticator struct {
	mu     sync.RWMutex
	users  map[string][]byte
	tokens *TokenIssuer
}

// NewAuthenticator creates an authenticator for the given users
func NewAuthenticator(users []domain.Credential, tokens *TokenIssuer) *Authenticator {
	a := &Authenticator{tokens: tokens}
	a.SetUsers(users)
	return a
}

// SetUsers replaces the user table. Tokens already issued stay valid.
func (a *Authenticator) SetUsers(users []domain.Credential) {
	m := make(map[string][]byte, len(users))
	for _, u := range users {
		m[u.Username] = []byte(u.PasswordHash)
	}

	a.mu.Lock()
	a.users = m
	a.mu.Unlock()
}

// UserCount returns the number of configured users
func (a *Authenticator) UserCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.users)
}

// Login returns a token when password matches the stored hash for username
func (a *Authenticator) Login(username, password string) (string, error) {
	a.mu.RLock()
	hash, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.tokens.Issue(username)
}

// Tokens returns the issuer used for verification
func (a *Authenticator) Tokens() *TokenIssuer {
	return a.tokens
}

// HashPassword returns a bcrypt hash suitable for configuration
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
