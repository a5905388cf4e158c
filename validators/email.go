// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
)

// Longest address SMTP can deliver to
const maxEmailLength = 254

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
	ErrEmailTooLong = errors.New("email address is too long")
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > maxEmailLength {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(e)
	if err != nil {
		return ErrEmailInvalid
	}

	// "Name <a@b.c>" parses fine but isn't what we want to store
	if addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
