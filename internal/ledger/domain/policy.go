package domain

import (
	"fmt"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// ExpiryPolicy is the renewal/expiration configuration for one expiry-type
// currency. Periods are in seconds, one per member classification.
type ExpiryPolicy struct {
	Symbol              Symbol
	NaturalPeriodSecs   uint32
	JuridicalPeriodSecs uint32
	RenovationAmount    Amount
}

// NewExpiryPolicy validates an expiry configuration against its currency.
func NewExpiryPolicy(stats CurrencyStats, naturalPeriodSecs, juridicalPeriodSecs uint32, renovation Amount) (ExpiryPolicy, error) {
	if stats.Type == CurrencyMCC {
		return ExpiryPolicy{}, apperrors.WithMetadata(apperrors.CodeUnsupportedType,
			fmt.Sprintf("currency %s is %q; only expiry currencies are configurable", stats.Symbol, stats.Type),
			map[string]string{"Type": string(stats.Type)})
	}
	if err := renovation.Validate(); err != nil {
		return ExpiryPolicy{}, err
	}
	if !renovation.Symbol.Equal(stats.Symbol) || !stats.Supply.Symbol.Equal(stats.Symbol) {
		return ExpiryPolicy{}, apperrors.New(apperrors.CodeSymbolMismatch,
			fmt.Sprintf("renovation amount %s does not match currency %s", renovation, stats.Symbol))
	}
	return ExpiryPolicy{
		Symbol:              stats.Symbol,
		NaturalPeriodSecs:   naturalPeriodSecs,
		JuridicalPeriodSecs: juridicalPeriodSecs,
		RenovationAmount:    renovation,
	}, nil
}

// Period returns the expiration period in seconds for a classification.
func (p ExpiryPolicy) Period(userType UserType) uint32 {
	if userType == UserJuridical {
		return p.JuridicalPeriodSecs
	}
	return p.NaturalPeriodSecs
}
