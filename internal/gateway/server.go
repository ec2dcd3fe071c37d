// Package gateway implements the front-end service that sanitizes
// user-submitted transaction requests before they reach the issuer.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/cardmint/cardmint/internal/infrastructure/upstream"
	"github.com/cardmint/cardmint/internal/interfaces/rest"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
)

type Server struct {
	client *upstream.Client
	logger *slog.Logger
}

func NewServer(client *upstream.Client, logger *slog.Logger) *Server {
	return &Server{
		client: client,
		logger: logger,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/issue_transaction", s.issueTransaction)
	return r
}

type issueTransactionRequest struct {
	CardNumber     string          `json:"card_number"`
	CardholderName string          `json:"cardholder_name"`
	ExpiryDate     string          `json:"expiry_date"`
	CVV            string          `json:"cvv"`
	Amount         decimal.Decimal `json:"amount"`
}

// issueTransaction validates the shape of the client's input, forwards it
// unchanged to the issuer, and surfaces the upstream status and body
// verbatim. There is no retry; a transport failure is reported as a network
// error, distinct from any business rejection.
func (s *Server) issueTransaction(w http.ResponseWriter, r *http.Request) {
	var req issueTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg, ok := validateCardInfo(req); !ok {
		s.logger.Warn("input validation error", "error", msg)
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: msg})
		return
	}

	result, err := s.client.CreateTransaction(r.Context(), upstream.TransactionRequest{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
		Amount:         req.Amount,
	})
	if err != nil {
		s.logger.Error("forwarding transaction failed", "error", err)
		if upstream.IsNetworkError(err) {
			rest.WriteJSON(w, http.StatusBadGateway, rest.ErrorResponse{Error: err.Error()})
			return
		}
		rest.WriteJSON(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "internal server error"})
		return
	}

	if result.StatusCode == http.StatusCreated {
		s.logger.Info("transaction issued successfully")
		rest.WriteJSON(w, http.StatusOK, map[string]string{"message": "transaction issued successfully"})
		return
	}

	s.logger.Warn("failed to issue transaction",
		"status_code", result.StatusCode,
		"detail", string(result.Body),
	)
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	w.WriteHeader(result.StatusCode)
	_, _ = w.Write(result.Body)
}

// validateCardInfo applies the gateway's format contract: 16-digit card
// number, MM/YY expiry, 3-digit CVV.
func validateCardInfo(req issueTransactionRequest) (string, bool) {
	switch {
	case !cardNumberPattern.MatchString(req.CardNumber):
		return "invalid card number format", false
	case !expiryPattern.MatchString(req.ExpiryDate):
		return "invalid expiry date format", false
	case !cvvPattern.MatchString(req.CVV):
		return "invalid CVV format", false
	}
	return "", true
}
