// Package invoice talks to the external payment processor that issues hosted
// payment pages and reports payment status back over a webhook.
package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUpstream marks transport or non-2xx failures from the issuer. Callers
// surface it as a gateway error.
var ErrUpstream = errors.New("invoice issuer request failed")

// Issuer creates hosted invoices for a given amount and redirect targets.
type Issuer interface {
	CreateInvoice(ctx context.Context, req CreateRequest) (Invoice, error)
}

type CreateRequest struct {
	ExternalID         string
	Amount             int
	Description        string
	SuccessRedirectURL string
	FailureRedirectURL string
	CustomerEmail      string
	CustomerPhone      string
}

type Invoice struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
}

type Client struct {
	apiURL    string
	secretKey string
	http      *http.Client
}

func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		apiURL:    apiURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type createInvoiceBody struct {
	ExternalID         string           `json:"external_id"`
	Amount             int              `json:"amount"`
	Description        string           `json:"description"`
	SuccessRedirectURL string           `json:"success_redirect_url"`
	FailureRedirectURL string           `json:"failure_redirect_url"`
	Customer           *invoiceCustomer `json:"customer,omitempty"`
}

type invoiceCustomer struct {
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

func (c *Client) CreateInvoice(ctx context.Context, req CreateRequest) (Invoice, error) {
	body := createInvoiceBody{
		ExternalID:         req.ExternalID,
		Amount:             req.Amount,
		Description:        req.Description,
		SuccessRedirectURL: req.SuccessRedirectURL,
		FailureRedirectURL: req.FailureRedirectURL,
	}
	if req.CustomerEmail != "" || req.CustomerPhone != "" {
		body.Customer = &invoiceCustomer{Email: req.CustomerEmail, MobileNumber: req.CustomerPhone}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return Invoice{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(b))
	if err != nil {
		return Invoice{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// the issuer expects basic auth with the secret key as username
	httpReq.SetBasicAuth(c.secretKey, "")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return Invoice{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Invoice{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, res.StatusCode, detail)
	}

	var inv Invoice
	if err := json.NewDecoder(res.Body).Decode(&inv); err != nil {
		return Invoice{}, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if inv.ID == "" || inv.InvoiceURL == "" {
		return Invoice{}, fmt.Errorf("%w: response missing id or invoice_url", ErrUpstream)
	}
	return inv, nil
}
