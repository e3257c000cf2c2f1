package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// maxAmountUnits caps raw units so sums of two amounts cannot overflow int64.
const maxAmountUnits = int64(1) << 62

// Amount is a signed quantity of one currency, held as raw integer units at
// the symbol's precision. "100.00 TEST" is {Units: 10000, Symbol: TEST,2}.
type Amount struct {
	Units  int64
	Symbol Symbol
}

// Zero returns the zero amount of a currency.
func Zero(symbol Symbol) Amount {
	return Amount{Units: 0, Symbol: symbol}
}

// ParseAmount parses the "decimal CODE" form, e.g. "100.00 TEST" or
// "-50.00 TEST". The number of decimal places fixes the symbol precision.
func ParseAmount(value string) (Amount, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return Amount{}, apperrors.New(apperrors.CodeInvalidAmount, fmt.Sprintf("malformed amount %q", value))
	}
	number, code := fields[0], fields[1]

	negative := false
	switch {
	case strings.HasPrefix(number, "-"):
		negative = true
		number = number[1:]
	case strings.HasPrefix(number, "+"):
		number = number[1:]
	}

	whole, frac, _ := strings.Cut(number, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > maxPrecision {
		return Amount{}, apperrors.New(apperrors.CodeInvalidAmount, fmt.Sprintf("amount %q has too many decimal places", value))
	}

	symbol := Symbol{Code: code, Precision: uint8(len(frac))}
	if err := symbol.Validate(); err != nil {
		return Amount{}, err
	}

	digits := whole + frac
	units, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Amount{}, apperrors.Wrap(apperrors.CodeInvalidAmount, fmt.Sprintf("malformed amount %q", value), err)
	}
	if negative {
		units = -units
	}

	amount := Amount{Units: units, Symbol: symbol}
	if err := amount.Validate(); err != nil {
		return Amount{}, err
	}
	return amount, nil
}

// String renders the "decimal CODE" form at the symbol's precision.
func (a Amount) String() string {
	units := a.Units
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	digits := strconv.FormatInt(units, 10)
	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%s%s %s", sign, digits, a.Symbol.Code)
	}
	precision := int(a.Symbol.Precision)
	for len(digits) <= precision {
		digits = "0" + digits
	}
	split := len(digits) - precision
	return fmt.Sprintf("%s%s.%s %s", sign, digits[:split], digits[split:], a.Symbol.Code)
}

// Validate checks the symbol and the unit magnitude bound.
func (a Amount) Validate() error {
	if err := a.Symbol.Validate(); err != nil {
		return err
	}
	if a.Units > maxAmountUnits || a.Units < -maxAmountUnits {
		return apperrors.New(apperrors.CodeInvalidAmount, fmt.Sprintf("amount %d out of range", a.Units))
	}
	return nil
}

// ValidatePositive checks the amount is valid and strictly positive.
func (a Amount) ValidatePositive() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Units <= 0 {
		return apperrors.New(apperrors.CodeInvalidAmount, fmt.Sprintf("amount %s must be positive", a))
	}
	return nil
}

// SameSymbol reports whether two amounts share one currency symbol.
func (a Amount) SameSymbol(other Amount) bool {
	return a.Symbol.Equal(other.Symbol)
}

// Add returns a + other. Callers must have checked symbol equality.
func (a Amount) Add(other Amount) Amount {
	return Amount{Units: a.Units + other.Units, Symbol: a.Symbol}
}

// Sub returns a - other. Callers must have checked symbol equality.
func (a Amount) Sub(other Amount) Amount {
	return Amount{Units: a.Units - other.Units, Symbol: a.Symbol}
}
