package disbursement

import (
	"context"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// EventPublisher delivers domain events raised by disbursement aggregates.
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}

// GatewayReceipt is the provider's acknowledgement of a disbursement
type GatewayReceipt struct {
	ConfirmationCode string
	ProviderResponse string
}

// PaymentGateway sends one payment out through a provider rail (e-wallet or
// direct bank API). Bank file batches bypass the gateway entirely; cash is
// settled by hand. A returned error means the attempt failed and counts
// against the payment's retry budget.
type PaymentGateway interface {
	Disburse(ctx context.Context, payment *disbursement.PayrollPayment, method *disbursement.PaymentMethod) (*GatewayReceipt, error)
}

// FileStore persists generated bank files. Backed by S3 in production.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}
