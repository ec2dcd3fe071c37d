package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardmint/cardmint/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CardRepository stores cards in the cards table. Per-card serialization uses
// a session-scoped advisory lock on the card number, so two pipelines for the
// same card queue up while different cards run concurrently.
type CardRepository struct {
	db *DB
}

func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `
	card_number, expiry_month, expiry_year, cvv, name, national_id,
	phone_number, bin_number, status, balance::text, cvv_attempts, country,
	age, fraud_flag, created_at
`

func (r *CardRepository) Find(ctx context.Context, number string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1`

	card, err := scanCard(r.db.Pool.QueryRow(ctx, query, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewCardNotFoundError(number)
	}
	if err != nil {
		return nil, fmt.Errorf("find card: %w", err)
	}
	return card, nil
}

func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO cards (
			card_number, expiry_month, expiry_year, cvv, name, national_id,
			phone_number, bin_number, status, balance, cvv_attempts, country,
			age, fraud_flag, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		card.Number,
		card.ExpiryMonth,
		card.ExpiryYear,
		card.CVV,
		card.Name,
		card.NationalID,
		card.PhoneNumber,
		card.BINNumber,
		string(card.Status),
		card.Balance.String(),
		card.CVVAttempts,
		card.Country,
		card.Age,
		card.FraudFlag,
		card.CreatedAt,
	)
	if IsUniqueViolation(err) {
		return domain.NewDuplicateCardError(card.Number)
	}
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

func (r *CardRepository) Save(ctx context.Context, card *domain.Card) error {
	query := `
		UPDATE cards SET
			status = $2, balance = $3, cvv_attempts = $4, fraud_flag = $5,
			name = $6, national_id = $7, phone_number = $8
		WHERE card_number = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		card.Number,
		string(card.Status),
		card.Balance.String(),
		card.CVVAttempts,
		card.FraudFlag,
		card.Name,
		card.NationalID,
		card.PhoneNumber,
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewCardNotFoundError(card.Number)
	}
	return nil
}

func (r *CardRepository) Acquire(ctx context.Context, number string) (func(), error) {
	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, number); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire card lock: %w", err)
	}

	release := func() {
		// The lock is session-scoped; unlock on a fresh context so a
		// cancelled request cannot leak it.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, number)
		conn.Release()
	}
	return release, nil
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		card    domain.Card
		status  string
		balance string
		created time.Time
	)
	err := row.Scan(
		&card.Number,
		&card.ExpiryMonth,
		&card.ExpiryYear,
		&card.CVV,
		&card.Name,
		&card.NationalID,
		&card.PhoneNumber,
		&card.BINNumber,
		&status,
		&balance,
		&card.CVVAttempts,
		&card.Country,
		&card.Age,
		&card.FraudFlag,
		&created,
	)
	if err != nil {
		return nil, err
	}

	card.Status = domain.CardStatus(status)
	card.CreatedAt = created
	card.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	return &card, nil
}
