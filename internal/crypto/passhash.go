// Package crypto implements seller credential hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// scheme prefixes every encoded credential. The encoding uses only
// characters that are safe inside a delimited record.
const scheme = "argon2id"

var b64 = base64.RawStdEncoding

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

func hash(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashCredential returns "argon2id$<salt>$<hash>" for secret using a fresh salt.
func HashCredential(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty credential")
	}
	salt, err := RandBytes(saltLen)
	if err != nil {
		return "", err
	}
	return scheme + "$" + b64.EncodeToString(salt) + "$" + b64.EncodeToString(hash([]byte(secret), salt)), nil
}

// IsHashed reports whether encoded looks like a HashCredential result.
func IsHashed(encoded string) bool {
	_, _, ok := split(encoded)
	return ok
}

// VerifyCredential checks secret against an encoded credential in constant time.
func VerifyCredential(secret, encoded string) bool {
	salt, want, ok := split(encoded)
	if !ok {
		return false
	}
	got := hash([]byte(secret), salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func split(encoded string) (salt, sum []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != scheme {
		return nil, nil, false
	}
	salt, err := b64.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return nil, nil, false
	}
	sum, err = b64.DecodeString(parts[2])
	if err != nil || len(sum) != int(argonKeyLen) {
		return nil, nil, false
	}
	return salt, sum, true
}
