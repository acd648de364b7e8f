package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storekit/checkout-engine/internal/checkout/application"
	"github.com/storekit/checkout-engine/internal/checkout/domain"
)

// Client talks to the card processor's sandbox API. Every non-approved
// outcome, transport errors and timeouts included, comes back as a
// *domain.PaymentRejectedError carrying a readable reason.
type Client struct {
	log        *slog.Logger
	http       *http.Client
	baseURL    string
	privateKey string
}

func NewClient(log *slog.Logger, baseURL, privateKey string) *Client {
	return &Client{
		log:        log,
		http:       &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		privateKey: privateKey,
	}
}

type chargeBody struct {
	AmountInCents int64         `json:"amount_in_cents"`
	Currency      string        `json:"currency"`
	Reference     string        `json:"reference"`
	PaymentMethod paymentMethod `json:"payment_method"`
}

type paymentMethod struct {
	Type         string `json:"type"`
	Token        string `json:"token"`
	Installments int    `json:"installments"`
}

type chargeResponse struct {
	Data struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		StatusMessage string `json:"status_message"`
	} `json:"data"`
	Error struct {
		Reason   string   `json:"reason"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

func (c *Client) Charge(ctx context.Context, req application.ChargeRequest) (string, error) {
	if c.privateKey == "" {
		return "", &domain.PaymentRejectedError{
			TransactionID: req.TransactionID,
			Reason:        "payment provider private key is not configured",
		}
	}

	body, err := json.Marshal(chargeBody{
		AmountInCents: req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency:      req.Currency,
		Reference:     req.TransactionID,
		PaymentMethod: paymentMethod{Type: "CARD", Token: req.CardToken, Installments: 1},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.privateKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &domain.PaymentRejectedError{TransactionID: req.TransactionID, Reason: err.Error()}
	}
	defer resp.Body.Close()

	var parsed chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &domain.PaymentRejectedError{
			TransactionID: req.TransactionID,
			Reason:        fmt.Sprintf("HTTP %d - unreadable provider response", resp.StatusCode),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := parsed.Error.Reason
		if reason == "" && len(parsed.Error.Messages) > 0 {
			reason = parsed.Error.Messages[0]
		}
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return "", &domain.PaymentRejectedError{
			TransactionID: req.TransactionID,
			Reason:        fmt.Sprintf("HTTP %d - %s", resp.StatusCode, reason),
		}
	}

	if parsed.Data.ID == "" {
		return "", &domain.PaymentRejectedError{
			TransactionID: req.TransactionID,
			Reason:        "missing transaction id in provider response",
		}
	}
	if parsed.Data.Status != "APPROVED" {
		reason := parsed.Data.StatusMessage
		if reason == "" {
			reason = fmt.Sprintf("unexpected status %s", parsed.Data.Status)
		}
		return "", &domain.PaymentRejectedError{TransactionID: req.TransactionID, Reason: reason}
	}

	c.log.Debug("charge approved", "transaction_id", req.TransactionID, "payment_id", parsed.Data.ID)
	return parsed.Data.ID, nil
}
