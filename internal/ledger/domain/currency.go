package domain

import (
	"fmt"
	"time"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// CurrencyType distinguishes the two supported currency behaviors.
type CurrencyType string

const (
	// CurrencyMCC is a mutual-credit-clearing currency with a negative
	// balance floor (overdraft allowance).
	CurrencyMCC CurrencyType = "mcc"
	// CurrencyExpiry is a currency subject to periodic renewal grants and
	// scheduled mass retirement.
	CurrencyExpiry CurrencyType = "expiry"
)

// ParseCurrencyType validates and returns a currency type.
func ParseCurrencyType(value string) (CurrencyType, error) {
	switch CurrencyType(value) {
	case CurrencyMCC:
		return CurrencyMCC, nil
	case CurrencyExpiry:
		return CurrencyExpiry, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeUnsupportedType,
			fmt.Sprintf("currency type must be %q or %q, got %q", CurrencyMCC, CurrencyExpiry, value),
			map[string]string{"Type": value})
	}
}

// CurrencyStats is the registry row for one community-scoped currency.
type CurrencyStats struct {
	Symbol     Symbol
	Issuer     string
	Type       CurrencyType
	Supply     Amount
	MaxSupply  Amount
	MinBalance Amount
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCurrency validates creation input and returns a registry row with zero
// circulating supply. The min-balance floor rule (<= 0) applies to mcc only;
// expiry currencies keep whatever floor they were given.
func NewCurrency(issuer string, maxSupply, minBalance Amount, currencyType CurrencyType, now time.Time) (CurrencyStats, error) {
	if _, err := ParseCurrencyType(string(currencyType)); err != nil {
		return CurrencyStats{}, err
	}
	if err := ValidateLimits(maxSupply, minBalance); err != nil {
		return CurrencyStats{}, err
	}
	if currencyType == CurrencyMCC && minBalance.Units > 0 {
		return CurrencyStats{}, apperrors.New(apperrors.CodeInvalidAmount,
			fmt.Sprintf("min balance %s must be equal or less than zero", minBalance))
	}

	createdAt := now.UTC()
	return CurrencyStats{
		Symbol:     maxSupply.Symbol,
		Issuer:     issuer,
		Type:       currencyType,
		Supply:     Zero(maxSupply.Symbol),
		MaxSupply:  maxSupply,
		MinBalance: minBalance,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}, nil
}

// ValidateLimits checks the shared max-supply/min-balance rules used by both
// create and update: matching valid symbols and a strictly positive cap.
func ValidateLimits(maxSupply, minBalance Amount) error {
	if err := maxSupply.Validate(); err != nil {
		return err
	}
	if err := minBalance.Validate(); err != nil {
		return err
	}
	if !maxSupply.SameSymbol(minBalance) {
		return apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("max supply %s and min balance %s must share one symbol", maxSupply, minBalance))
	}
	if maxSupply.Units <= 0 {
		return apperrors.New(apperrors.CodeInvalidAmount,
			fmt.Sprintf("max supply %s must be positive", maxSupply))
	}
	return nil
}

// SetLimits overwrites the mutable cap and floor. Supply and type are
// untouched.
func (c *CurrencyStats) SetLimits(maxSupply, minBalance Amount, now time.Time) error {
	if err := ValidateLimits(maxSupply, minBalance); err != nil {
		return err
	}
	if !maxSupply.SameSymbol(c.Supply) {
		return apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("limits %s do not match currency symbol %s", maxSupply.Symbol, c.Symbol))
	}
	c.MaxSupply = maxSupply
	c.MinBalance = minBalance
	c.UpdatedAt = now.UTC()
	return nil
}

// Available returns the un-issued portion of the supply cap in raw units.
func (c CurrencyStats) Available() int64 {
	return c.MaxSupply.Units - c.Supply.Units
}
