// Package domain defines the core models for the card platform.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus represents the current state of an issued card.
//
// Live and Dead are the two states the lifecycle actually moves between.
// Active exists as a third nominal value checked by the risk ruleset; whether
// it is ever assigned is decided by the issuing configuration, not merged
// into Live.
type CardStatus string

const (
	CardLive   CardStatus = "Live"
	CardActive CardStatus = "Active"
	CardDead   CardStatus = "Dead"
)

// Card is an issued payment card. The card number is its identity.
type Card struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	Name        string
	NationalID  string
	PhoneNumber string
	BINNumber   string

	Status      CardStatus
	Balance     decimal.Decimal
	CVVAttempts int
	Country     string
	Age         int
	FraudFlag   bool

	CreatedAt time.Time
}

// NewCard creates a freshly issued card with a zero balance.
func NewCard(number, cvv string, expiryMonth, expiryYear int, status CardStatus) (*Card, error) {
	if number == "" {
		return nil, NewMissingRequiredFieldError("card number")
	}
	if cvv == "" {
		return nil, NewMissingRequiredFieldError("cvv")
	}
	if expiryMonth < 1 || expiryMonth > 12 {
		return nil, &DomainError{
			Code:    ErrCodeInvalidExpiry,
			Message: fmt.Sprintf("expiry month must be 01..12, got %d", expiryMonth),
		}
	}
	switch status {
	case CardLive, CardActive:
	default:
		return nil, &DomainError{
			Code:    ErrCodeInvalidStatus,
			Message: fmt.Sprintf("cards cannot be issued with status %q", status),
		}
	}

	return &Card{
		Number:      number,
		CVV:         cvv,
		ExpiryMonth: expiryMonth,
		ExpiryYear:  expiryYear,
		Status:      status,
		Balance:     decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IsDead reports whether the card has been permanently blocked.
func (c *Card) IsDead() bool {
	return c.Status == CardDead
}

// Kill transitions the card to Dead. The transition is one-way; reinstating a
// card is an administrative action outside this model.
func (c *Card) Kill() {
	c.Status = CardDead
}

// IsExpired reports whether the card's expiry month has passed at the given
// instant. A card expires at the end of its expiry month.
func (c *Card) IsExpired(at time.Time) bool {
	if c.ExpiryYear < at.Year() {
		return true
	}
	return c.ExpiryYear == at.Year() && c.ExpiryMonth < int(at.Month())
}

// Debit subtracts amount from the balance. The caller is expected to have
// checked funds beforehand; a negative result is still refused here so the
// non-negative balance invariant cannot be broken by a racing caller.
func (c *Card) Debit(amount decimal.Decimal) error {
	next := c.Balance.Sub(amount)
	if next.IsNegative() {
		return NewInsufficientFundsError()
	}
	c.Balance = next
	return nil
}

// Credit adds amount to the balance.
func (c *Card) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewInvalidAmountError(amount)
	}
	c.Balance = c.Balance.Add(amount)
	return nil
}

// ExpiryDate returns the card-face expiry as MM/YY.
func (c *Card) ExpiryDate() string {
	return fmt.Sprintf("%02d/%02d", c.ExpiryMonth, c.ExpiryYear%100)
}
