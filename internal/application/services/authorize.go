package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/cardmint/cardmint/internal/cardgen"
	"github.com/cardmint/cardmint/internal/domain"
	"github.com/cardmint/cardmint/internal/risk"
	"github.com/shopspring/decimal"
)

// AuthorizeConfig tunes the pipeline's checks. Defaults: 1-second velocity
// window, at most 3 transactions inside it, 3 tolerated CVV misses, 3
// tolerated failed transactions, risk threshold of 10. PreflagFraud raises
// the card's fraud flag on every attempt before scoring; since the flag alone
// scores past the threshold, enabling it rejects every attempt, so it is off
// unless an operator wants that behavior.
type AuthorizeConfig struct {
	PreflagFraud      bool
	VelocityWindow    time.Duration
	MaxPerWindow      int
	MaxCVVAttempts    int
	MaxFailed         int
	RiskThreshold     int
	HighRiskCountries []string
}

func DefaultAuthorizeConfig() AuthorizeConfig {
	return AuthorizeConfig{
		PreflagFraud:      false,
		VelocityWindow:    time.Second,
		MaxPerWindow:      3,
		MaxCVVAttempts:    3,
		MaxFailed:         3,
		RiskThreshold:     risk.DefaultThreshold,
		HighRiskCountries: risk.DefaultHighRiskCountries,
	}
}

// AuthorizeRequest is one proposed charge.
type AuthorizeRequest struct {
	CardNumber     string
	CardholderName string
	ExpiryDate     string
	CVV            string
	Amount         decimal.Decimal
	ClientIP       string
}

// AuthorizeService runs the authorization pipeline. It holds no state of its
// own; every durable effect goes through the registry or the ledger.
type AuthorizeService struct {
	cards  application.CardRegistry
	ledger application.TransactionLedger
	cfg    AuthorizeConfig
	logger *slog.Logger
	clock  func() time.Time
}

func NewAuthorizeService(
	cards application.CardRegistry,
	ledger application.TransactionLedger,
	cfg AuthorizeConfig,
	logger *slog.Logger,
) *AuthorizeService {
	return &AuthorizeService{
		cards:  cards,
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's clock. Tests use it to pin "now" for the
// expiry and velocity checks.
func (s *AuthorizeService) WithClock(clock func() time.Time) *AuthorizeService {
	s.clock = clock
	return s
}

// Authorize runs the ordered pipeline for one attempt. The check order is
// load-bearing: it decides which rejection reason wins, and earlier steps
// mutate state that later steps read. Checks before the record step never
// touch the ledger; a rejection after it leaves the just-recorded Completed
// entry (and its balance debit) in place.
func (s *AuthorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*domain.Transaction, error) {
	if err := validateFields(req); err != nil {
		return nil, err
	}

	release, err := s.cards.Acquire(ctx, req.CardNumber)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	defer release()

	card, err := s.cards.Find(ctx, req.CardNumber)
	if err != nil {
		return nil, err
	}

	now := s.clock()

	// Optionally raise the fraud flag before scoring. With the flag's +20
	// contribution this rejects the attempt at the risk step, so the hook
	// effectively quarantines every card it touches.
	if s.cfg.PreflagFraud && !card.FraudFlag {
		card.FraudFlag = true
		if err := s.cards.Save(ctx, card); err != nil {
			return nil, application.NewInternalError(err)
		}
	}

	if err := s.checkCVV(ctx, card, req.CVV); err != nil {
		return nil, err
	}

	if card.IsDead() {
		return nil, domain.NewCardDeadError()
	}

	if card.IsExpired(now) {
		return nil, domain.NewCardExpiredError()
	}

	if req.Amount.GreaterThan(card.Balance) {
		return nil, domain.NewInsufficientFundsError()
	}

	velocity, err := s.checkVelocity(ctx, card, now)
	if err != nil {
		return nil, err
	}

	if err := s.checkRisk(ctx, card, req.Amount, velocity); err != nil {
		return nil, err
	}

	txn, err := s.record(ctx, card, req, now)
	if err != nil {
		return nil, err
	}

	if err := s.checkSuspicious(ctx, card); err != nil {
		return nil, err
	}

	if card.CVVAttempts >= s.cfg.MaxCVVAttempts {
		if err := s.kill(ctx, card); err != nil {
			return nil, err
		}
		return nil, domain.NewMaxCVVAttemptsError()
	}

	s.logger.Info("transaction completed",
		"card_number", cardgen.MaskPAN(card.Number),
		"amount", req.Amount,
		"transaction_id", txn.ID,
	)
	return txn, nil
}

func validateFields(req AuthorizeRequest) error {
	switch {
	case req.CardNumber == "":
		return domain.NewMissingRequiredFieldError("card_number")
	case req.CardholderName == "":
		return domain.NewMissingRequiredFieldError("cardholder_name")
	case req.ExpiryDate == "":
		return domain.NewMissingRequiredFieldError("expiry_date")
	case req.CVV == "":
		return domain.NewMissingRequiredFieldError("cvv")
	}
	if !req.Amount.IsPositive() {
		return domain.NewInvalidAmountError(req.Amount)
	}
	return nil
}

// checkCVV increments the miss counter on a mismatch; crossing the limit on
// the mismatching call itself kills the card.
func (s *AuthorizeService) checkCVV(ctx context.Context, card *domain.Card, cvv string) error {
	if card.CVV == cvv {
		return nil
	}

	card.CVVAttempts++
	blocked := card.CVVAttempts > s.cfg.MaxCVVAttempts
	if blocked {
		card.Kill()
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return application.NewInternalError(err)
	}

	s.logger.Warn("cvv mismatch",
		"card_number", cardgen.MaskPAN(card.Number),
		"cvv_attempts", card.CVVAttempts,
	)
	if blocked {
		return domain.NewCardBlockedError()
	}
	return domain.NewInvalidCVVError()
}

func (s *AuthorizeService) checkVelocity(ctx context.Context, card *domain.Card, now time.Time) (int, error) {
	velocity, err := s.ledger.CountSince(ctx, card.Number, now.Add(-s.cfg.VelocityWindow))
	if err != nil {
		return 0, application.NewInternalError(err)
	}

	if velocity > s.cfg.MaxPerWindow {
		if err := s.kill(ctx, card); err != nil {
			return 0, err
		}
		return 0, domain.NewVelocityExceededError()
	}
	return velocity, nil
}

func (s *AuthorizeService) checkRisk(ctx context.Context, card *domain.Card, amount decimal.Decimal, velocity int) error {
	score := risk.Score(risk.Input{
		CardStatus:  card.Status,
		FraudFlag:   card.FraudFlag,
		Country:     card.Country,
		Age:         card.Age,
		Amount:      amount,
		CVVAttempts: card.CVVAttempts,
		Velocity:    velocity,
	}, s.cfg.HighRiskCountries)

	// The scorer stays pure; logging the score is our job.
	s.logger.Info("transaction risk score",
		"card_number", cardgen.MaskPAN(card.Number),
		"score", score,
	)

	if score >= s.cfg.RiskThreshold {
		if err := s.kill(ctx, card); err != nil {
			return err
		}
		return domain.NewHighRiskError(score)
	}
	return nil
}

// record debits the balance and appends the Completed entry. The two writes
// belong to the same pipeline step; the card is saved before the append so an
// append failure never leaves an undebited Completed entry.
func (s *AuthorizeService) record(ctx context.Context, card *domain.Card, req AuthorizeRequest, now time.Time) (*domain.Transaction, error) {
	if err := card.Debit(req.Amount); err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, application.NewInternalError(err)
	}

	txn := domain.NewTransaction(
		req.CardNumber,
		req.CardholderName,
		req.ExpiryDate,
		req.CVV,
		req.Amount,
		domain.TxnCompleted,
		now,
		req.ClientIP,
	)
	id, err := s.ledger.Append(ctx, txn)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	txn.ID = id
	return txn, nil
}

func (s *AuthorizeService) checkSuspicious(ctx context.Context, card *domain.Card) error {
	failed, err := s.ledger.CountByStatus(ctx, card.Number, domain.TxnFailed)
	if err != nil {
		return application.NewInternalError(err)
	}
	if failed >= s.cfg.MaxFailed {
		if err := s.kill(ctx, card); err != nil {
			return err
		}
		return domain.NewSuspiciousActivityError()
	}
	return nil
}

func (s *AuthorizeService) kill(ctx context.Context, card *domain.Card) error {
	card.Kill()
	if err := s.cards.Save(ctx, card); err != nil {
		return application.NewInternalError(err)
	}
	s.logger.Warn("card invalidated", "card_number", cardgen.MaskPAN(card.Number))
	return nil
}
