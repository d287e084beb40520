package groups

import (
	"crypto/rand"
	"math/big"
)

const (
	// CodeLength is the length of a group join code
	CodeLength = 6
	// codeAlphabet is uppercase alphanumeric; codes are matched
	// case-insensitively so users can type them however they like
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxCodeAttempts bounds the regeneration loop when a freshly
	// generated code collides with an existing group
	maxCodeAttempts = 5
)

// GenerateCode generates a random join code. Uniqueness is not checked
// here: the unique index on groups.code is the authority, and Create
// retries on collision.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
