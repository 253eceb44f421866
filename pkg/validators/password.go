package validators

import (
	"bitwise74/caption-api/pkg/security"
	"errors"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password can't be longer than 128 characters")
	ErrPasswordEmpty    = errors.New("no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 6 {
		return ErrPasswordTooShort
	}

	// Same bound the hasher enforces, rejected here for a nicer error
	if len(p) > security.MaxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
