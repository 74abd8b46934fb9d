package validation

import (
	"errors"
	"regexp"
)

var (
	ErrIdentifierRequired = errors.New("id is required")
	ErrInvalidIdentifier  = errors.New("ID must be a valid email or phone number")
)

// Whitespace covers ASCII \s, Unicode separators (\p{Z}) and the BOM.
var (
	emailPattern = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\p{Z}\x{FEFF}-]{10,}$`)
)

// IdentifierKind tells which pattern an identifier matched.
type IdentifierKind int

const (
	IdentifierEmail IdentifierKind = iota + 1
	IdentifierPhone
)

// ValidateIdentifier checks that id is an email address or a phone number.
func ValidateIdentifier(id string) (IdentifierKind, error) {
	if id == "" {
		return 0, ErrIdentifierRequired
	}
	if len(id) > 255 {
		return 0, ErrInvalidIdentifier
	}
	if emailPattern.MatchString(id) {
		return IdentifierEmail, nil
	}
	if phonePattern.MatchString(id) {
		return IdentifierPhone, nil
	}
	return 0, ErrInvalidIdentifier
}
