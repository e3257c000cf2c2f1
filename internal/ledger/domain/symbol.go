package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// MaxSymbolCodeLen bounds currency codes to seven uppercase letters.
const MaxSymbolCodeLen = 7

// maxPrecision bounds the number of decimal places a symbol may carry.
const maxPrecision = 12

// Symbol identifies a currency: an uppercase code plus a decimal precision.
// Its textual form is "CODE,precision", e.g. "TEST,2".
type Symbol struct {
	Code      string
	Precision uint8
}

// ParseSymbol parses the "CODE,precision" form.
func ParseSymbol(value string) (Symbol, error) {
	code, precisionStr, ok := strings.Cut(strings.TrimSpace(value), ",")
	if !ok {
		return Symbol{}, apperrors.New(apperrors.CodeInvalidSymbol, fmt.Sprintf("malformed symbol %q", value))
	}
	precision, err := strconv.ParseUint(strings.TrimSpace(precisionStr), 10, 8)
	if err != nil {
		return Symbol{}, apperrors.Wrap(apperrors.CodeInvalidSymbol, fmt.Sprintf("malformed symbol precision %q", value), err)
	}
	symbol := Symbol{Code: strings.TrimSpace(code), Precision: uint8(precision)}
	if err := symbol.Validate(); err != nil {
		return Symbol{}, err
	}
	return symbol, nil
}

// String renders the "CODE,precision" form.
func (s Symbol) String() string {
	return fmt.Sprintf("%s,%d", s.Code, s.Precision)
}

// Validate checks the code shape and precision bounds.
func (s Symbol) Validate() error {
	if s.Code == "" || len(s.Code) > MaxSymbolCodeLen {
		return apperrors.New(apperrors.CodeInvalidSymbol, fmt.Sprintf("invalid symbol code %q", s.Code))
	}
	for _, r := range s.Code {
		if r < 'A' || r > 'Z' {
			return apperrors.New(apperrors.CodeInvalidSymbol, fmt.Sprintf("invalid symbol code %q", s.Code))
		}
	}
	if s.Precision > maxPrecision {
		return apperrors.New(apperrors.CodeInvalidSymbol, fmt.Sprintf("symbol precision %d out of range", s.Precision))
	}
	return nil
}

// Equal reports whether two symbols share code and precision.
func (s Symbol) Equal(other Symbol) bool {
	return s.Code == other.Code && s.Precision == other.Precision
}
