// internal/domain/payment/client.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/basket"
)

// ErrUpstreamUnavailable is returned when the payment gateway cannot produce
// a redirect URL. The attempt fails; basket and checkout session are kept.
var ErrUpstreamUnavailable = errors.New("payment gateway unavailable")

// Client initiates checkout payments against the external gateway
type Client struct {
	httpClient *http.Client
	baseURL    string
	merchantID string
	logger     *logrus.Logger
}

// NewClient creates a new payment gateway client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Payment.Timeout,
		},
		baseURL:    cfg.Payment.BaseURL,
		merchantID: cfg.Payment.MerchantID,
		logger:     logger,
	}
}

type initiationRequest struct {
	MerchantID      string `json:"merchant_id"`
	AmountMinor     int64  `json:"amount"`
	ShipmentMethod  string `json:"shipment_method"`
	DiscountPercent int    `json:"discount_percent"`
}

type initiationResponse struct {
	PaymentURL     string `json:"payment_url"`
	FailureMessage string `json:"failure_message"`
}

// CreateCheckoutPayment asks the gateway for a payment redirect URL for the
// final payable amount. A missing URL is a failed attempt.
func (c *Client) CreateCheckoutPayment(ctx context.Context, method basket.ShipmentMethod, discountPercent int, amountMinor int64) (string, error) {
	body, err := json.Marshal(initiationRequest{
		MerchantID:      c.merchantID,
		AmountMinor:     amountMinor,
		ShipmentMethod:  string(method),
		DiscountPercent: discountPercent,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded initiationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: invalid gateway response: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decoded.PaymentURL == "" {
		c.logger.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"failure": decoded.FailureMessage,
		}).Warn("Payment initiation failed")

		if decoded.FailureMessage != "" {
			return "", fmt.Errorf("%w: %s", ErrUpstreamUnavailable, decoded.FailureMessage)
		}
		return "", fmt.Errorf("%w: gateway returned no payment URL", ErrUpstreamUnavailable)
	}

	return decoded.PaymentURL, nil
}
