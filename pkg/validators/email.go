// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
)

// RFC 5321 caps a mailbox path at 254 octets, anything longer
// can't receive mail anyway
const maxEmailLength = 254

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailTooLong = errors.New("email address is too long")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

// EmailValidator only checks the address syntactically. A parseable
// address is good enough to register with, deliverability is the
// user's problem
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > maxEmailLength {
		return ErrEmailTooLong
	}

	if _, err := mail.ParseAddress(e); err != nil {
		return ErrEmailInvalid
	}

	return nil
}
