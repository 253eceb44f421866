package security

import (
	"errors"
	"strconv"
)

var (
	ErrNoToken         = errors.New("no token provided")
	ErrGuestNotAllowed = errors.New("guest token not allowed")
)

// Identity is what a request's credentials resolve to. The zero value
// is anonymous.
type Identity struct {
	UserID  uint
	GuestID string
}

func (i Identity) IsUser() bool { return i.UserID != 0 }

func (i Identity) IsGuest() bool { return i.GuestID != "" }

func (i Identity) IsAnonymous() bool { return !i.IsUser() && !i.IsGuest() }

type Resolver struct {
	tokens *Tokens
}

func NewResolver(t *Tokens) *Resolver {
	return &Resolver{tokens: t}
}

// Resolve turns an inbound bearer token and/or guest cookie into an
// Identity. The bearer token wins when both are present. Every failure
// degrades to anonymous rather than erroring: identity only scopes
// history here, it never gates access.
func (r *Resolver) Resolve(bearer, guestCookie string) Identity {
	raw := bearer
	if raw == "" {
		raw = guestCookie
	}

	if raw == "" {
		return Identity{}
	}

	claims, err := r.tokens.Verify(raw)
	if err != nil {
		return Identity{}
	}

	if claims.Guest {
		return Identity{GuestID: claims.Subject}
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}
	}

	return Identity{UserID: uint(id)}
}

// RequireUser is the strict variant used where guest access must be
// rejected. Missing, invalid, expired and guest tokens all error.
func (r *Resolver) RequireUser(bearer string) (uint, error) {
	if bearer == "" {
		return 0, ErrNoToken
	}

	claims, err := r.tokens.Verify(bearer)
	if err != nil {
		return 0, err
	}

	if claims.Guest {
		return 0, ErrGuestNotAllowed
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}

	return uint(id), nil
}
