package domain

import (
	"time"

	"github.com/communis/ledger/internal/platform/id"
)

// RetirementTrigger is an armed future retirement sweep for one currency and
// one member classification. Its identifier is deterministic, so re-arming
// the same (currency, classification) replaces the pending trigger.
type RetirementTrigger struct {
	ID        string
	Symbol    Symbol
	UserType  UserType
	Memo      string
	RunAt     time.Time
	CreatedAt time.Time
}

// TriggerID returns the deterministic schedule identifier for a currency and
// classification.
func TriggerID(symbol Symbol, userType UserType) string {
	return id.Deterministic("retire", symbol.String(), string(userType))
}

// NewRetirementTrigger arms a retirement sweep delaySecs seconds after now.
func NewRetirementTrigger(symbol Symbol, userType UserType, memo string, delaySecs uint32, now time.Time) RetirementTrigger {
	createdAt := now.UTC()
	return RetirementTrigger{
		ID:        TriggerID(symbol, userType),
		Symbol:    symbol,
		UserType:  userType,
		Memo:      memo,
		RunAt:     createdAt.Add(time.Duration(delaySecs) * time.Second),
		CreatedAt: createdAt,
	}
}
