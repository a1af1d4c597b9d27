package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"nodereg/internal/domain"
)

const (
	// multihash code and digest length for sha2-256
	mhSHA256    = 0x12
	mhSHA256Len = 0x20
)

// ErrInvalidHash is returned for strings that are not sha2-256 multihashes
var ErrInvalidHash = errors.New("invalid content hash")

// HashBlock returns the content hash of data
func HashBlock(data []byte) domain.ContentHash {
	sum := sha256.Sum256(data)
	mh := make([]byte, 0, 2+len(sum))
	mh = append(mh, mhSHA256, mhSHA256Len)
	mh = append(mh, sum[:]...)
	return domain.ContentHash(base58.Encode(mh))
}

// ParseHash validates s and returns it as a content hash
func ParseHash(s string) (domain.ContentHash, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if len(raw) != 2+mhSHA256Len || raw[0] != mhSHA256 || raw[1] != mhSHA256Len {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return domain.ContentHash(s), nil
}

// Verify reports whether data hashes to h
func Verify(h domain.ContentHash, data []byte) bool {
	return HashBlock(data) == h
}
