package disbursement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// maxRetries is the hard cap on automatic retries. Beyond it the payment is
// terminal-failed and must be reissued as a new payment record.
const maxRetries = 3

// PaymentStatus is the disbursement state of one payment
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusUnclaimed  PaymentStatus = "unclaimed"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusPaid,
		PaymentStatusFailed, PaymentStatusUnclaimed:
		return true
	}
	return false
}

// PayrollPayment is one employee's disbursement for one period via one
// payment method. The nine itemized deduction fields must reconcile with the
// source calculation before the payment may enter a batch.
type PayrollPayment struct {
	shared.BaseAggregateRoot
	PaymentNumber  string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	PeriodID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CalculationID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeNumber string    `gorm:"type:varchar(30);not null"`
	MethodID       uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchID        *uuid.UUID `gorm:"type:uuid;index"`

	GrossPay decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	// Itemized deductions, carried over from the source calculation
	SSSContribution        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PhilHealthContribution decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PagIbigContribution    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithholdingTax         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LoanDeductions         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AdvanceDeductions      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TardinessDeduction     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AbsenceDeduction       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OtherDeductions        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetPay          decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	Status     PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	RetryCount int           `gorm:"not null;default:0"`

	// Provider confirmation on settlement
	ConfirmationCode string `gorm:"type:varchar(100)"`
	ProviderResponse string `gorm:"type:text"`
	FailureReason    string `gorm:"type:varchar(500)"`

	ProcessedAt *time.Time
	PaidAt      *time.Time
	FailedAt    *time.Time
	UnclaimedAt *time.Time

	// Set on manual reissue after the retry cap is hit
	ReissuedFromID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PayrollPayment) TableName() string {
	return "payroll_payments"
}

// NewPayrollPayment materializes a payment from a locked calculation
func NewPayrollPayment(
	paymentNumber string,
	periodID, calculationID, employeeID uuid.UUID,
	employeeNumber string,
	methodID uuid.UUID,
	gross decimal.Decimal,
	sss, philHealth, pagIbig, tax, loans, advances, tardiness, absence, other decimal.Decimal,
	now time.Time,
) (*PayrollPayment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if periodID == uuid.Nil || calculationID == uuid.Nil || employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Period, calculation and employee IDs are required")
	}
	if methodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method is required")
	}

	total := sss.Add(philHealth).Add(pagIbig).Add(tax).
		Add(loans).Add(advances).Add(tardiness).Add(absence).Add(other)

	p := &PayrollPayment{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(now),
		PaymentNumber:          paymentNumber,
		PeriodID:               periodID,
		CalculationID:          calculationID,
		EmployeeID:             employeeID,
		EmployeeNumber:         employeeNumber,
		MethodID:               methodID,
		GrossPay:               gross,
		SSSContribution:        sss,
		PhilHealthContribution: philHealth,
		PagIbigContribution:    pagIbig,
		WithholdingTax:         tax,
		LoanDeductions:         loans,
		AdvanceDeductions:      advances,
		TardinessDeduction:     tardiness,
		AbsenceDeduction:       absence,
		OtherDeductions:        other,
		TotalDeductions:        total,
		NetPay:                 gross.Sub(total),
		Status:                 PaymentStatusPending,
	}
	p.AddDomainEvent(NewPaymentCreatedEvent(p, now))
	return p, nil
}

// Reconcile verifies net pay against the nine itemized deduction fields
func (p *PayrollPayment) Reconcile() error {
	itemized := p.SSSContribution.Add(p.PhilHealthContribution).Add(p.PagIbigContribution).
		Add(p.WithholdingTax).Add(p.LoanDeductions).Add(p.AdvanceDeductions).
		Add(p.TardinessDeduction).Add(p.AbsenceDeduction).Add(p.OtherDeductions)
	if !p.TotalDeductions.Round(2).Equal(itemized.Round(2)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Payment %s total deductions %s does not match itemized sum %s", p.PaymentNumber, p.TotalDeductions, itemized))
	}
	if !p.NetPay.Round(2).Equal(p.GrossPay.Sub(p.TotalDeductions).Round(2)) {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Payment %s net pay %s does not reconcile with gross %s minus deductions %s", p.PaymentNumber, p.NetPay, p.GrossPay, p.TotalDeductions))
	}
	return nil
}

// AssignToBatch places the payment into a disbursement batch
func (p *PayrollPayment) AssignToBatch(batchID uuid.UUID, now time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot batch a %s payment", p.Status))
	}
	if batchID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Batch ID is required")
	}
	p.BatchID = &batchID
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// StartProcessing moves the payment to processing when its batch submits.
// Allowed from pending, and from failed after RecordRetry has consumed a
// retry; the retry budget is enforced by RecordRetry, not here.
func (p *PayrollPayment) StartProcessing(now time.Time) error {
	switch p.Status {
	case PaymentStatusPending, PaymentStatusFailed:
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot process a %s payment", p.Status))
	}
	p.Status = PaymentStatusProcessing
	p.ProcessedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// MarkAsPaid settles the payment with the provider confirmation
func (p *PayrollPayment) MarkAsPaid(confirmationCode, providerResponse string, now time.Time) error {
	if p.Status != PaymentStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle a %s payment", p.Status))
	}
	p.Status = PaymentStatusPaid
	p.PaidAt = &now
	p.ConfirmationCode = confirmationCode
	p.ProviderResponse = providerResponse
	p.FailureReason = ""
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentPaidEvent(p, now))
	return nil
}

// MarkAsFailed records a provider failure. The caller increments RetryCount
// via RecordRetry before re-attempting; failing alone does not consume a retry.
func (p *PayrollPayment) MarkAsFailed(reason, providerResponse string, now time.Time) error {
	if p.Status != PaymentStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail a %s payment", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason is required")
	}
	p.Status = PaymentStatusFailed
	p.FailedAt = &now
	p.FailureReason = reason
	p.ProviderResponse = providerResponse
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentFailedEvent(p, reason, now))
	return nil
}

// CanRetry reports whether automatic retry is still permitted
func (p *PayrollPayment) CanRetry() bool {
	return p.Status == PaymentStatusFailed && p.RetryCount < maxRetries
}

// RecordRetry consumes one retry attempt ahead of reprocessing
func (p *PayrollPayment) RecordRetry(now time.Time) error {
	if !p.CanRetry() {
		return shared.ErrRetryExhausted
	}
	p.RetryCount++
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// MarkAsUnclaimed flags a cash payment whose envelope was never picked up
func (p *PayrollPayment) MarkAsUnclaimed(now time.Time) error {
	if p.Status != PaymentStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark a %s payment unclaimed", p.Status))
	}
	p.Status = PaymentStatusUnclaimed
	p.UnclaimedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentUnclaimedEvent(p, now))
	return nil
}

// Reissue creates a replacement payment for a terminally failed or unclaimed
// one, on a possibly different method. The original row stays as the failure
// record; the new row starts its own retry budget.
func (p *PayrollPayment) Reissue(paymentNumber string, methodID uuid.UUID, now time.Time) (*PayrollPayment, error) {
	if p.Status != PaymentStatusFailed && p.Status != PaymentStatusUnclaimed {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reissue a %s payment", p.Status))
	}
	if p.Status == PaymentStatusFailed && p.CanRetry() {
		return nil, shared.NewDomainError("RETRY_AVAILABLE", "Payment still has retries left; reissue is for exhausted payments")
	}

	next, err := NewPayrollPayment(
		paymentNumber,
		p.PeriodID, p.CalculationID, p.EmployeeID, p.EmployeeNumber,
		methodID,
		p.GrossPay,
		p.SSSContribution, p.PhilHealthContribution, p.PagIbigContribution,
		p.WithholdingTax, p.LoanDeductions, p.AdvanceDeductions,
		p.TardinessDeduction, p.AbsenceDeduction, p.OtherDeductions,
		now,
	)
	if err != nil {
		return nil, err
	}
	origID := p.ID
	next.ReissuedFromID = &origID
	return next, nil
}
