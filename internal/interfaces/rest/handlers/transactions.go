package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/cardmint/cardmint/internal/application/services"
	"github.com/cardmint/cardmint/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	CardNumber     string          `json:"card_number"`
	CardholderName string          `json:"cardholder_name"`
	ExpiryDate     string          `json:"expiry_date"`
	CVV            string          `json:"cvv"`
	Amount         decimal.Decimal `json:"amount"`
}

type createTransactionResponse struct {
	Message string `json:"message"`
}

type transactionHistoryResponse struct {
	TransactionHistory []services.HistoryEntry `json:"transaction_history"`
	TotalPages         int                     `json:"total_pages"`
	CurrentPage        int                     `json:"current_page"`
}

func (h *Handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	_, err := h.authorize.Authorize(r.Context(), services.AuthorizeRequest{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
		Amount:         req.Amount,
		ClientIP:       clientIP(r),
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, createTransactionResponse{
		Message: "transaction created successfully",
	})
}

func (h *Handlers) transactionHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", services.DefaultPage)
	perPage := queryInt(r, "per_page", services.DefaultPerPage)

	history, err := h.query.History(r.Context(), page, perPage)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, transactionHistoryResponse{
		TransactionHistory: history.Entries,
		TotalPages:         history.TotalPages,
		CurrentPage:        history.CurrentPage,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
