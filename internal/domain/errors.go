package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DomainError represents a business rule violation.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeCardNotFound         = "CARD_NOT_FOUND"
	ErrCodeInvalidCVV           = "INVALID_CVV"
	ErrCodeCardBlocked          = "CARD_BLOCKED"
	ErrCodeCardDead             = "CARD_DEAD"
	ErrCodeCardExpired          = "CARD_EXPIRED"
	ErrCodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	ErrCodeVelocityExceeded     = "VELOCITY_EXCEEDED"
	ErrCodeHighRisk             = "HIGH_RISK"
	ErrCodeSuspiciousActivity   = "SUSPICIOUS_ACTIVITY"
	ErrCodeMaxCVVAttempts       = "MAX_CVV_ATTEMPTS"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidExpiry        = "INVALID_EXPIRY"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeDuplicateBIN         = "DUPLICATE_BIN"
	ErrCodeBINNotFound          = "BIN_NOT_FOUND"
	ErrCodeDuplicateCard        = "DUPLICATE_CARD"
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

func NewCardNotFoundError(number string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCardNotFound,
		Message: fmt.Sprintf("card not found for card_number: %s", number),
	}
}

func NewInvalidCVVError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCVV,
		Message: "invalid CVV",
	}
}

func NewCardBlockedError() *DomainError {
	return &DomainError{
		Code:    ErrCodeCardBlocked,
		Message: "card blocked due to multiple invalid CVV attempts",
	}
}

func NewCardDeadError() *DomainError {
	return &DomainError{
		Code:    ErrCodeCardDead,
		Message: "card status is Dead, transaction failed",
	}
}

func NewCardExpiredError() *DomainError {
	return &DomainError{
		Code:    ErrCodeCardExpired,
		Message: "card is expired, transaction failed",
	}
}

func NewInsufficientFundsError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientFunds,
		Message: "insufficient funds, transaction failed",
	}
}

func NewVelocityExceededError() *DomainError {
	return &DomainError{
		Code:    ErrCodeVelocityExceeded,
		Message: "exceeded maximum transactions in window, card status changed to Dead",
	}
}

func NewHighRiskError(score int) *DomainError {
	return &DomainError{
		Code:    ErrCodeHighRisk,
		Message: fmt.Sprintf("high risk transaction (score %d), card status changed to Dead", score),
	}
}

func NewSuspiciousActivityError() *DomainError {
	return &DomainError{
		Code:    ErrCodeSuspiciousActivity,
		Message: "suspicious activity detected, card status changed to Dead",
	}
}

func NewMaxCVVAttemptsError() *DomainError {
	return &DomainError{
		Code:    ErrCodeMaxCVVAttempts,
		Message: "exceeded maximum CVV attempts, card status changed to Dead",
	}
}

func NewInvalidAmountError(amount decimal.Decimal) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %s", amount),
	}
}

func NewDuplicateBINError(number string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateBIN,
		Message: fmt.Sprintf("bin %s already exists", number),
	}
}

func NewBINNotFoundError(number string) *DomainError {
	return &DomainError{
		Code:    ErrCodeBINNotFound,
		Message: fmt.Sprintf("bin %s not found", number),
	}
}

func NewDuplicateCardError(number string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateCard,
		Message: fmt.Sprintf("card %s already exists", number),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
