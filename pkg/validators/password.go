package validators

import (
	"errors"
	"unicode"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 255
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordWeak     = errors.New("password must contain a lowercase letter, an uppercase letter and a digit")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < PasswordMinLength {
		return ErrPasswordTooShort
	}

	if len(p) > PasswordMaxLength {
		return ErrPasswordTooLong
	}

	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !lower || !upper || !digit {
		return ErrPasswordWeak
	}

	return nil
}
