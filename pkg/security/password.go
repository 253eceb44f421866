package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// MaxPasswordLength bounds the hashing cost. Anything longer is
// rejected before a single PBKDF2 round runs.
const MaxPasswordLength = 128

var ErrPasswordTooLong = errors.New("password is too long")

type PBKDF2Hash struct {
	Iterations int
	SaltLength uint32
	KeyLength  int
}

func NewHasher() *PBKDF2Hash {
	return &PBKDF2Hash{
		Iterations: 600_000,
		SaltLength: 16,
		KeyLength:  32,
	}
}

// GenerateFromPassword produces a self-describing PHC-style hash so
// verification needs nothing beyond the stored string itself.
func (h *PBKDF2Hash) GenerateFromPassword(p string) (encoded string, err error) {
	if len(p) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	salt, err := genRandByt(h.SaltLength)
	if err != nil {
		return "", err
	}

	hash := pbkdf2.Key([]byte(p), salt, h.Iterations, h.KeyLength, sha256.New)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded = fmt.Sprintf("$pbkdf2-sha256$i=%d$%s$%s", h.Iterations, b64Salt, b64Hash)

	return encoded, nil
}

// VerifyPasswd compares a password p with the stored PHC-style encoded
// hash e. A wrong password is (false, nil), an error only means the
// stored hash itself is unusable.
func (h *PBKDF2Hash) VerifyPasswd(p, e string) (ok bool, err error) {
	parts := strings.Split(e, "$")
	if len(parts) != 5 || parts[1] != "pbkdf2-sha256" {
		return false, errors.New("invalid hash format")
	}

	var iterations int

	_, err = fmt.Sscanf(parts[2], "i=%d", &iterations)
	if err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, err
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}

	calcHash := pbkdf2.Key([]byte(p), salt, iterations, len(hash), sha256.New)

	return subtle.ConstantTimeCompare(hash, calcHash) == 1, nil
}

func genRandByt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}

	return b, nil
}
