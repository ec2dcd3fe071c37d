// Package risk computes the composite fraud risk score for an authorization
// attempt.
//
// The ruleset is additive: every matching rule contributes its points and the
// rules are not mutually exclusive, so a single condition (a Dead card, a
// pile of CVV misses) can be counted by more than one rule. That overlap is
// intentional domain behavior and must not be "fixed".
package risk

import (
	"slices"

	"github.com/cardmint/cardmint/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultThreshold is the score at or above which an attempt is rejected and
// the card invalidated.
const DefaultThreshold = 10

// DefaultHighRiskCountries matches the original ruleset.
var DefaultHighRiskCountries = []string{"Israel", "Russia"}

var (
	largeAmount   = decimal.NewFromInt(1000)
	sizableAmount = decimal.NewFromInt(500)
)

// Input carries everything Score needs. It is assembled by the caller from
// card state and ledger queries; Score itself performs no I/O and never logs.
type Input struct {
	CardStatus  domain.CardStatus
	FraudFlag   bool
	Country     string
	Age         int
	Amount      decimal.Decimal
	CVVAttempts int
	Velocity    int // transactions for this card in the trailing window
}

// Score returns the additive risk score for in. highRiskCountries defaults to
// DefaultHighRiskCountries when nil.
func Score(in Input, highRiskCountries []string) int {
	if highRiskCountries == nil {
		highRiskCountries = DefaultHighRiskCountries
	}

	score := 0

	// Repeated CVV misses on a card still marked Active.
	if in.CVVAttempts >= 3 && in.CardStatus == domain.CardActive {
		score += 12
	}

	// Dead card, or more than one CVV miss.
	if in.CardStatus == domain.CardDead || in.CVVAttempts > 1 {
		score += 5
	}

	// Large amount combined with high transaction velocity.
	if in.Amount.GreaterThan(largeAmount) && in.Velocity > 3 {
		score += 15
	}

	// High-risk country combined with repeated CVV misses.
	if slices.Contains(highRiskCountries, in.Country) && in.CVVAttempts > 2 {
		score += 12
	}

	// Underage cardholder or dead card, spending a sizable amount.
	if (in.Age < 18 || in.CardStatus == domain.CardDead) && in.Amount.GreaterThan(sizableAmount) {
		score += 10
	}

	// Flagged by the fraud detection system.
	if in.FraudFlag {
		score += 20
	}

	return score
}
