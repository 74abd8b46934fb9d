package validation

import "errors"

const (
	MinPasswordLength = 6
	// bcrypt silently truncates anything longer.
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 characters")
)

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
