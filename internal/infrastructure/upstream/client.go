// Package upstream is the gateway's HTTP client for the issuer's
// authorization endpoint.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cardmint/cardmint/internal/config"
	"github.com/shopspring/decimal"
)

// TransactionRequest mirrors the issuer's authorization contract.
type TransactionRequest struct {
	CardNumber     string          `json:"card_number"`
	CardholderName string          `json:"cardholder_name"`
	ExpiryDate     string          `json:"expiry_date"`
	CVV            string          `json:"cvv"`
	Amount         decimal.Decimal `json:"amount"`
}

// Result carries the upstream status and body verbatim. The gateway never
// reinterprets a business rejection; it surfaces both to its caller.
type Result struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client with the configured bounded timeout. A timeout is
// reported as a network error, never as a business rejection.
func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateTransaction posts req to the issuer. Any transport failure comes back
// as a *NetworkError; an HTTP response of any status is a valid Result.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*Result, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	url := fmt.Sprintf("%s/api/transactions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
