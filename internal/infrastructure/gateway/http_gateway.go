// Package gateway adapts external disbursement providers to the
// application's PaymentGateway port. Bank file batches and cash
// distribution never touch a gateway; only e-wallet and direct bank API
// payments are dispatched here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	disbursementapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/infrastructure/config"
)

const disbursePath = "/v1/disbursements"

// HTTPGateway dispatches payments to a provider over its REST API.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGateway creates a gateway client for the configured provider.
func NewHTTPGateway(cfg config.GatewayConfig, logger *zap.Logger) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}

	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// disburseRequest is the provider wire format for one outbound payment.
// The payment number doubles as the provider-side idempotency reference,
// so a retried dispatch of the same payment never pays twice.
type disburseRequest struct {
	Reference      string `json:"reference"`
	EmployeeNumber string `json:"employee_number"`
	MethodCode     string `json:"method_code"`
	MethodType     string `json:"method_type"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
}

type disburseResponse struct {
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code"`
	Message          string `json:"message"`
}

// Disburse sends one payment to the provider and returns its receipt.
// Any transport or provider-side failure is returned as an error and
// counts against the payment's retry budget.
func (g *HTTPGateway) Disburse(ctx context.Context, payment *disbursement.PayrollPayment, method *disbursement.PaymentMethod) (*disbursementapp.GatewayReceipt, error) {
	reqBody := disburseRequest{
		Reference:      payment.PaymentNumber,
		EmployeeNumber: payment.EmployeeNumber,
		MethodCode:     method.Code,
		MethodType:     string(method.MethodType),
		Amount:         payment.NetPay.StringFixed(2),
		Currency:       "PHP",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+disbursePath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Idempotency-Key", payment.PaymentNumber)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to read response: %w", err)
	}

	g.logger.Debug("Gateway dispatch completed",
		zap.String("payment_number", payment.PaymentNumber),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway: provider returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var parsed disburseResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("gateway: failed to parse response: %w", err)
	}
	if parsed.Status != "accepted" && parsed.Status != "processing" {
		return nil, fmt.Errorf("gateway: provider rejected payment: %s", parsed.Message)
	}

	return &disbursementapp.GatewayReceipt{
		ConfirmationCode: parsed.ConfirmationCode,
		ProviderResponse: string(respBytes),
	}, nil
}
