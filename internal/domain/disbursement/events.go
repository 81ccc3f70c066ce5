package disbursement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PaymentCreatedEvent is raised when a payment is materialized from a
// locked calculation
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	PeriodID      uuid.UUID       `json:"period_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	NetPay        decimal.Decimal `json:"net_pay"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *PayrollPayment, now time.Time) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPaymentCreated", "PayrollPayment", p.ID, uuid.Nil, now),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PeriodID:        p.PeriodID,
		EmployeeID:      p.EmployeeID,
		NetPay:          p.NetPay,
	}
}

// PaymentPaidEvent is raised when a payment settles
type PaymentPaidEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentNumber    string          `json:"payment_number"`
	EmployeeID       uuid.UUID       `json:"employee_id"`
	NetPay           decimal.Decimal `json:"net_pay"`
	ConfirmationCode string          `json:"confirmation_code"`
}

// NewPaymentPaidEvent creates a new PaymentPaidEvent
func NewPaymentPaidEvent(p *PayrollPayment, now time.Time) *PaymentPaidEvent {
	return &PaymentPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PayrollPaymentPaid", "PayrollPayment", p.ID, uuid.Nil, now),
		PaymentID:        p.ID,
		PaymentNumber:    p.PaymentNumber,
		EmployeeID:       p.EmployeeID,
		NetPay:           p.NetPay,
		ConfirmationCode: p.ConfirmationCode,
	}
}

// PaymentFailedEvent is raised on a provider failure
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID `json:"payment_id"`
	PaymentNumber string    `json:"payment_number"`
	EmployeeID    uuid.UUID `json:"employee_id"`
	RetryCount    int       `json:"retry_count"`
	Reason        string    `json:"reason"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *PayrollPayment, reason string, now time.Time) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPaymentFailed", "PayrollPayment", p.ID, uuid.Nil, now),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		EmployeeID:      p.EmployeeID,
		RetryCount:      p.RetryCount,
		Reason:          reason,
	}
}

// PaymentUnclaimedEvent is raised when a cash envelope is never picked up
type PaymentUnclaimedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID `json:"payment_id"`
	PaymentNumber string    `json:"payment_number"`
	EmployeeID    uuid.UUID `json:"employee_id"`
}

// NewPaymentUnclaimedEvent creates a new PaymentUnclaimedEvent
func NewPaymentUnclaimedEvent(p *PayrollPayment, now time.Time) *PaymentUnclaimedEvent {
	return &PaymentUnclaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PayrollPaymentUnclaimed", "PayrollPayment", p.ID, uuid.Nil, now),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		EmployeeID:      p.EmployeeID,
	}
}

// BankBatchSubmittedEvent is raised when a validated batch goes to the bank
type BankBatchSubmittedEvent struct {
	shared.BaseDomainEvent
	BatchID      uuid.UUID       `json:"batch_id"`
	BatchNumber  string          `json:"batch_number"`
	PeriodID     uuid.UUID       `json:"period_id"`
	BankCode     string          `json:"bank_code"`
	PaymentCount int             `json:"payment_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	FileHash     string          `json:"file_hash"`
}

// NewBankBatchSubmittedEvent creates a new BankBatchSubmittedEvent
func NewBankBatchSubmittedEvent(b *BankFileBatch, actor uuid.UUID, now time.Time) *BankBatchSubmittedEvent {
	return &BankBatchSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BankFileBatchSubmitted", "BankFileBatch", b.ID, actor, now),
		BatchID:         b.ID,
		BatchNumber:     b.BatchNumber,
		PeriodID:        b.PeriodID,
		BankCode:        b.BankCode,
		PaymentCount:    b.PaymentCount,
		TotalAmount:     b.TotalAmount,
		FileHash:        b.FileHash,
	}
}
