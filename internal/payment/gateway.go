package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-booking/internal/config"
	"ms-booking/internal/models"
)

// GatewayClient talks to the payment gateway's REST API with basic auth
// (key id / key secret).
type GatewayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig) *GatewayClient {
	return &GatewayClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder registers an order with the gateway. Amount is in minor units;
// the returned id is what the checkout widget and the verify callback carry.
func (g *GatewayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*models.GatewayOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(payload))
	}

	var gatewayOrder models.GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&gatewayOrder); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &gatewayOrder, nil
}
