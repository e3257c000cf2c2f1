package domain

import (
	"fmt"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// UserType classifies community members for expiry scheduling.
type UserType string

const (
	// UserNatural is an individual member.
	UserNatural UserType = "natural"
	// UserJuridical is an organizational member.
	UserJuridical UserType = "juridical"
)

// ParseUserType validates and returns a member classification.
func ParseUserType(value string) (UserType, error) {
	switch UserType(value) {
	case UserNatural:
		return UserNatural, nil
	case UserJuridical:
		return UserJuridical, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeUnsupportedType,
			fmt.Sprintf("user type must be %q or %q, got %q", UserNatural, UserJuridical, value),
			map[string]string{"Type": value})
	}
}
