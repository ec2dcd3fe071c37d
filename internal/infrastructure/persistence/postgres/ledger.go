package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cardmint/cardmint/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository stores transactions in the transactions table. Rows are
// insert-only; ids come from a bigserial, so List in id order is append
// order.
type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, txn *domain.Transaction) (int64, error) {
	query := `
		INSERT INTO transactions (
			card_number, cardholder_name, expiry_date, cvv, amount, status,
			timestamp, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := r.db.Pool.QueryRow(ctx, query,
		txn.CardNumber,
		txn.CardholderName,
		txn.ExpiryDate,
		txn.CVV,
		txn.Amount.String(),
		string(txn.Status),
		txn.Timestamp,
		txn.IPAddress,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}
	return id, nil
}

func (r *LedgerRepository) CountSince(ctx context.Context, cardNumber string, since time.Time) (int, error) {
	query := `SELECT count(*) FROM transactions WHERE card_number = $1 AND timestamp >= $2`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, cardNumber, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions in window: %w", err)
	}
	return count, nil
}

func (r *LedgerRepository) CountByStatus(ctx context.Context, cardNumber string, status domain.TransactionStatus) (int, error) {
	query := `SELECT count(*) FROM transactions WHERE card_number = $1 AND status = $2`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, cardNumber, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions by status: %w", err)
	}
	return count, nil
}

func (r *LedgerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, card_number, cardholder_name, expiry_date, cvv,
		       amount::text, status, timestamp, ip_address
		FROM transactions
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		var (
			txn    domain.Transaction
			amount string
			status string
		)
		err := rows.Scan(
			&txn.ID,
			&txn.CardNumber,
			&txn.CardholderName,
			&txn.ExpiryDate,
			&txn.CVV,
			&amount,
			&status,
			&txn.Timestamp,
			&txn.IPAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Status = domain.TransactionStatus(status)
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		out = append(out, &txn)
	}
	return out, rows.Err()
}

func (r *LedgerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}
