package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	disbursementapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/infrastructure/config"
)

// SandboxGateway accepts every dispatch without calling a provider.
// Development and test environments only; config validation rejects it
// in production.
type SandboxGateway struct {
	logger *zap.Logger
}

func NewSandboxGateway(logger *zap.Logger) *SandboxGateway {
	return &SandboxGateway{logger: logger}
}

// Disburse acknowledges the payment with a synthetic confirmation code.
func (g *SandboxGateway) Disburse(ctx context.Context, payment *disbursement.PayrollPayment, method *disbursement.PaymentMethod) (*disbursementapp.GatewayReceipt, error) {
	code := fmt.Sprintf("SBX-%s-%d", payment.PaymentNumber, time.Now().Unix())

	raw, _ := json.Marshal(map[string]string{
		"status":            "accepted",
		"confirmation_code": code,
	})

	g.logger.Debug("Sandbox gateway accepted payment",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("method_code", method.Code),
	)

	return &disbursementapp.GatewayReceipt{
		ConfirmationCode: code,
		ProviderResponse: string(raw),
	}, nil
}

// NewGateway builds the gateway named by the config driver.
func NewGateway(cfg config.GatewayConfig, logger *zap.Logger) (disbursementapp.PaymentGateway, error) {
	switch cfg.Driver {
	case "http":
		return NewHTTPGateway(cfg, logger)
	case "sandbox":
		return NewSandboxGateway(logger), nil
	default:
		return nil, fmt.Errorf("gateway: unknown driver %q", cfg.Driver)
	}
}
