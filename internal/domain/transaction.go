package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the terminal outcome recorded for a ledger entry.
type TransactionStatus string

const (
	TxnCompleted TransactionStatus = "Completed"
	TxnFailed    TransactionStatus = "Failed"
)

// Transaction is an append-only ledger entry for one authorization attempt
// that reached the record step. The ID is assigned by the ledger; the status
// is fixed at creation and never updated afterwards.
type Transaction struct {
	ID             int64
	CardNumber     string
	CardholderName string
	ExpiryDate     string // MM/YY as submitted
	CVV            string
	Amount         decimal.Decimal
	Status         TransactionStatus
	Timestamp      time.Time
	IPAddress      string
}

// NewTransaction builds a ledger entry bound for the given status.
func NewTransaction(cardNumber, cardholderName, expiryDate, cvv string, amount decimal.Decimal, status TransactionStatus, at time.Time, ip string) *Transaction {
	return &Transaction{
		CardNumber:     cardNumber,
		CardholderName: cardholderName,
		ExpiryDate:     expiryDate,
		CVV:            cvv,
		Amount:         amount,
		Status:         status,
		Timestamp:      at,
		IPAddress:      ip,
	}
}
