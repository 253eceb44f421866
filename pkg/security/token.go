// Package security contains everything related to the security of user data
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// IdentityClaims is the fixed shape every token this service signs
// carries. Anything outside of it is dropped on decode instead of
// being poked at through untyped map lookups.
type IdentityClaims struct {
	Guest bool `json:"guest"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies identity tokens. The secret is read from
// the config exactly once at construction and never from ambient state
// inside request handling.
type Tokens struct {
	secret   []byte
	userTTL  time.Duration
	guestTTL time.Duration
}

func NewTokens(secret string, userTTL, guestTTL time.Duration) *Tokens {
	return &Tokens{
		secret:   []byte(secret),
		userTTL:  userTTL,
		guestTTL: guestTTL,
	}
}

// GuestTTL is exposed so cookie max-ages can match token expiry
func (t *Tokens) GuestTTL() time.Duration {
	return t.guestTTL
}

func (t *Tokens) IssueUser(userID uint) (string, error) {
	return t.issue(strconv.FormatUint(uint64(userID), 10), false, t.userTTL)
}

func (t *Tokens) IssueGuest(guestID string) (string, error) {
	return t.issue(guestID, true, t.guestTTL)
}

func (t *Tokens) issue(subject string, guest bool, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &IdentityClaims{
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify decodes and validates a token. There is no soft-fail result,
// callers must treat any error as "no identity".
func (t *Tokens) Verify(raw string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
