package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cardmint/cardmint/internal/application"
	"github.com/cardmint/cardmint/internal/domain"
	"github.com/cardmint/cardmint/internal/interfaces/rest"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type registerBINRequest struct {
	BINNumber  string `json:"bin_number"`
	Country    string `json:"country"`
	CardVendor string `json:"card_vendor"`
	BINName    string `json:"bin_name"`
}

type binResponse struct {
	BINNumber  string `json:"bin_number"`
	Country    string `json:"country"`
	CardVendor string `json:"card_vendor"`
	BINName    string `json:"bin_name"`
}

type issueCardRequest struct {
	BINNumber   string `json:"bin_number"`
	Name        string `json:"name"`
	NationalID  string `json:"national_id"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

// cardResponse is returned once, at issuance, and is the only place the CVV
// crosses the wire.
type cardResponse struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	Status     string `json:"status"`
	Country    string `json:"country"`
}

// cardStateResponse is the CVV-free view served by reads.
type cardStateResponse struct {
	CardNumber  string          `json:"card_number"`
	ExpiryDate  string          `json:"expiry_date"`
	Status      string          `json:"status"`
	Balance     decimal.Decimal `json:"balance"`
	CVVAttempts int             `json:"cvv_attempts"`
	Country     string          `json:"country"`
	FraudFlag   bool            `json:"fraud_flag"`
}

type fundCardRequest struct {
	NationalID string          `json:"national_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func (h *Handlers) registerBIN(w http.ResponseWriter, r *http.Request) {
	var req registerBINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	bin, err := h.issue.RegisterBIN(r.Context(), req.BINNumber, req.Country, req.CardVendor, req.BINName)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, toBINResponse(bin))
}

func (h *Handlers) listBINs(w http.ResponseWriter, r *http.Request) {
	bins, err := h.issue.ListBINs(r.Context())
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	out := make([]binResponse, 0, len(bins))
	for _, bin := range bins {
		out = append(out, toBINResponse(bin))
	}
	rest.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) issueCard(w http.ResponseWriter, r *http.Request) {
	var req issueCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	card, err := h.issue.IssueCard(r.Context(), req.BINNumber, req.Name, req.NationalID, req.PhoneNumber, req.Age)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, cardResponse{
		CardNumber: card.Number,
		ExpiryDate: card.ExpiryDate(),
		CVV:        card.CVV,
		Status:     string(card.Status),
		Country:    card.Country,
	})
}

func (h *Handlers) getCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.issue.GetCard(r.Context(), chi.URLParam(r, "cardNumber"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toCardStateResponse(card))
}

func (h *Handlers) fundCard(w http.ResponseWriter, r *http.Request) {
	var req fundCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	card, err := h.issue.FundCard(r.Context(), chi.URLParam(r, "cardNumber"), req.NationalID, req.Amount)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toCardStateResponse(card))
}

func toBINResponse(bin *domain.BIN) binResponse {
	return binResponse{
		BINNumber:  bin.Number,
		Country:    bin.Country,
		CardVendor: bin.CardVendor,
		BINName:    bin.Name,
	}
}

func toCardStateResponse(card *domain.Card) cardStateResponse {
	return cardStateResponse{
		CardNumber:  card.Number,
		ExpiryDate:  card.ExpiryDate(),
		Status:      string(card.Status),
		Balance:     card.Balance,
		CVVAttempts: card.CVVAttempts,
		Country:     card.Country,
		FraudFlag:   card.FraudFlag,
	}
}
