package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"clientcard-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MobileMoneyGateway)(nil)

// MobileMoneyGateway implements adapter.PaymentGateway over the
// provider's checkout HTTP API.
type MobileMoneyGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMobileMoneyGateway(baseURL, apiKey string, sandbox bool) *MobileMoneyGateway {
	if baseURL == "" {
		if sandbox {
			baseURL = "https://sandbox.paiement-mobile.example/v1"
		} else {
			baseURL = "https://api.paiement-mobile.example/v1"
		}
	}
	return &MobileMoneyGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

func (g *MobileMoneyGateway) Name() string { return "mobile_money" }

type checkoutResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

// RequestPayment registers a checkout with the provider and returns the
// redirect URL. The outcome arrives asynchronously on the webhook.
func (g *MobileMoneyGateway) RequestPayment(ctx context.Context, amountFcfa int64, reference, description, callbackURL string) (string, error) {
	requestData := map[string]interface{}{
		"amount":       amountFcfa,
		"currency":     "XOF",
		"reference":    reference,
		"description":  description,
		"callback_url": callbackURL,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/checkout"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var out checkoutResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.PaymentURL == "" {
		return "", fmt.Errorf("checkout rejected: status=%d code=%d message=%s", resp.StatusCode, out.Code, out.Message)
	}
	return out.PaymentURL, nil
}
