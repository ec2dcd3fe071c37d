package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardmint/cardmint/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BINRepository struct {
	db *DB
}

func NewBINRepository(db *DB) *BINRepository {
	return &BINRepository{db: db}
}

func (r *BINRepository) Create(ctx context.Context, bin *domain.BIN) error {
	query := `
		INSERT INTO bins (bin_number, country, card_vendor, bin_name)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Pool.Exec(ctx, query, bin.Number, bin.Country, bin.CardVendor, bin.Name)
	if IsUniqueViolation(err) {
		return domain.NewDuplicateBINError(bin.Number)
	}
	if err != nil {
		return fmt.Errorf("create bin: %w", err)
	}
	return nil
}

func (r *BINRepository) Find(ctx context.Context, number string) (*domain.BIN, error) {
	query := `SELECT bin_number, country, card_vendor, bin_name FROM bins WHERE bin_number = $1`

	var bin domain.BIN
	err := r.db.Pool.QueryRow(ctx, query, number).
		Scan(&bin.Number, &bin.Country, &bin.CardVendor, &bin.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewBINNotFoundError(number)
	}
	if err != nil {
		return nil, fmt.Errorf("find bin: %w", err)
	}
	return &bin, nil
}

func (r *BINRepository) List(ctx context.Context) ([]*domain.BIN, error) {
	query := `SELECT bin_number, country, card_vendor, bin_name FROM bins ORDER BY bin_number`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	defer rows.Close()

	var out []*domain.BIN
	for rows.Next() {
		var bin domain.BIN
		if err := rows.Scan(&bin.Number, &bin.Country, &bin.CardVendor, &bin.Name); err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		out = append(out, &bin)
	}
	return out, rows.Err()
}
