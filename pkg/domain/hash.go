package domain

import (
	"encoding/hex"

	dErrors "fides/pkg/domain-errors"
)

// Hash is an opaque fixed-size digest supplied by callers (document hashes,
// credential data hashes, hashed IP addresses). The registries never interpret
// or verify the content; they store and return it as-is.
type Hash [32]byte

// ParseHash decodes a 64-character hex string into a Hash.
//
// Errors: returns CodeInvalidInput for wrong length or non-hex input.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(len(h)) {
		return Hash{}, dErrors.New(dErrors.CodeInvalidInput, "hash must be 64 hex characters")
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "hash is not valid hex")
	}
	return h, nil
}

// IsZero reports whether the hash is all zero bytes.
func (h Hash) IsZero() bool { return h == Hash{} }

// String returns the lowercase hex encoding.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }
