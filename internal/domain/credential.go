package domain

// Credential is a statically configured user record.
// PasswordHash is a bcrypt hash; the plain password is never stored.
type Credential struct {
	Username     string `json:"username" yaml:"username"`
	PasswordHash string `json:"-" yaml:"password_hash"`
}
