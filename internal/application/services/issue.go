package services

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"time"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/cardmint/cardmint/internal/cardgen"
	"github.com/cardmint/cardmint/internal/domain"
	"github.com/shopspring/decimal"
)

// IssueConfig controls card minting. InitialStatus decides whether the risk
// scorer's "Active" status is ever reachable; the default keeps new cards
// Live. ExpiryYears is the forward window expiry dates are drawn from.
type IssueConfig struct {
	InitialStatus domain.CardStatus
	ExpiryYears   int
}

func DefaultIssueConfig() IssueConfig {
	return IssueConfig{
		InitialStatus: domain.CardLive,
		ExpiryYears:   7,
	}
}

// IssueService registers BINs, mints cards against them, and funds balances.
type IssueService struct {
	bins   application.BINRegistry
	cards  application.CardRegistry
	ledger application.TransactionLedger
	cfg    IssueConfig
	logger *slog.Logger
	clock  func() time.Time
}

func NewIssueService(
	bins application.BINRegistry,
	cards application.CardRegistry,
	ledger application.TransactionLedger,
	cfg IssueConfig,
	logger *slog.Logger,
) *IssueService {
	return &IssueService{
		bins:   bins,
		cards:  cards,
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's clock for tests.
func (s *IssueService) WithClock(clock func() time.Time) *IssueService {
	s.clock = clock
	return s
}

// RegisterBIN stores a new card-generation prefix.
func (s *IssueService) RegisterBIN(ctx context.Context, number, country, cardVendor, name string) (*domain.BIN, error) {
	if err := cardgen.ValidateBIN(number); err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	bin, err := domain.NewBIN(number, country, cardVendor, name)
	if err != nil {
		return nil, err
	}
	if err := s.bins.Create(ctx, bin); err != nil {
		return nil, err
	}

	s.logger.Info("bin registered", "bin_number", bin.Number, "bin_name", bin.Name)
	return bin, nil
}

// ListBINs returns all registered prefixes.
func (s *IssueService) ListBINs(ctx context.Context) ([]*domain.BIN, error) {
	return s.bins.List(ctx)
}

// IssueCard mints a Luhn-valid card against a BIN. Expiry and CVV are random;
// the card's country comes from the BIN.
func (s *IssueService) IssueCard(ctx context.Context, binNumber, name, nationalID, phoneNumber string, age int) (*domain.Card, error) {
	bin, err := s.bins.Find(ctx, binNumber)
	if err != nil {
		return nil, err
	}

	pan, err := cardgen.GeneratePAN(bin.Number)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	cvv, err := cardgen.RandomDigits(3)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	now := s.clock()
	month, year, err := randomExpiry(now, s.cfg.ExpiryYears)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	card, err := domain.NewCard(pan, cvv, month, year, s.cfg.InitialStatus)
	if err != nil {
		return nil, err
	}
	card.Name = name
	card.NationalID = nationalID
	card.PhoneNumber = phoneNumber
	card.BINNumber = bin.Number
	card.Country = bin.Country
	card.Age = age

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logger.Info("card issued",
		"card_number", cardgen.MaskPAN(card.Number),
		"bin_number", bin.Number,
		"expiry", card.ExpiryDate(),
	)
	return card, nil
}

// GetCard returns the card's current state.
func (s *IssueService) GetCard(ctx context.Context, number string) (*domain.Card, error) {
	return s.cards.Find(ctx, number)
}

// FundCard adds amount to a card's balance and records the top-up as a
// Completed ledger entry, the way the source system's balance form did.
func (s *IssueService) FundCard(ctx context.Context, number, nationalID string, amount decimal.Decimal) (*domain.Card, error) {
	if !amount.IsPositive() {
		return nil, domain.NewInvalidAmountError(amount)
	}

	release, err := s.cards.Acquire(ctx, number)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	defer release()

	card, err := s.cards.Find(ctx, number)
	if err != nil {
		return nil, err
	}
	if nationalID != "" && card.NationalID != nationalID {
		return nil, domain.NewCardNotFoundError(number)
	}

	if err := card.Credit(amount); err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, application.NewInternalError(err)
	}

	txn := domain.NewTransaction(
		card.Number,
		card.Name,
		card.ExpiryDate(),
		card.CVV,
		amount,
		domain.TxnCompleted,
		s.clock(),
		"",
	)
	if _, err := s.ledger.Append(ctx, txn); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("card funded",
		"card_number", cardgen.MaskPAN(card.Number),
		"amount", amount,
		"balance", card.Balance,
	)
	return card, nil
}

// randomExpiry draws a month in 01..12 and a year in (now, now+years].
func randomExpiry(now time.Time, years int) (int, int, error) {
	if years < 1 {
		years = 1
	}
	m, err := rand.Int(rand.Reader, big.NewInt(12))
	if err != nil {
		return 0, 0, err
	}
	y, err := rand.Int(rand.Reader, big.NewInt(int64(years)))
	if err != nil {
		return 0, 0, err
	}
	return int(m.Int64()) + 1, now.Year() + 1 + int(y.Int64()), nil
}
