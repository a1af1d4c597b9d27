package domain

import "strings"

// ContentHash identifies published content by its digest.
// The string form is a base58 encoded sha2-256 multihash ("Qm...").
type ContentHash string

// String returns the hash in its textual form
func (h ContentHash) String() string {
	return string(h)
}

// IsZero reports whether the hash is unset
func (h ContentHash) IsZero() bool {
	return strings.TrimSpace(string(h)) == ""
}
