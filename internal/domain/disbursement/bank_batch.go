package disbursement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// BankBatchStatus tracks a bank file batch from assembly to confirmation
type BankBatchStatus string

const (
	BankBatchStatusDraft     BankBatchStatus = "draft"
	BankBatchStatusGenerated BankBatchStatus = "generated"
	BankBatchStatusReady     BankBatchStatus = "ready"
	BankBatchStatusSubmitted BankBatchStatus = "submitted"
	BankBatchStatusConfirmed BankBatchStatus = "confirmed"
	BankBatchStatusRejected  BankBatchStatus = "rejected"
)

// BankFileBatch groups bank payments for one period into one upload file.
// The file is rendered per the method's template, hashed for integrity, and
// must be validated before submission.
type BankFileBatch struct {
	shared.BaseAggregateRoot
	BatchNumber string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	PeriodID    uuid.UUID `gorm:"type:uuid;not null;index"`
	MethodID    uuid.UUID `gorm:"type:uuid;not null"`
	BankCode    string    `gorm:"type:varchar(20);not null"`

	PaymentCount int             `gorm:"not null;default:0"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Status BankBatchStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	// File artifact, generated once per batch
	FileName    string `gorm:"type:varchar(200)"`
	FileFormat  string `gorm:"type:varchar(10)"`
	FileHash    string `gorm:"type:varchar(64)"` // sha256 hex
	StorageKey  string `gorm:"type:varchar(300)"`
	IsValidated bool   `gorm:"not null;default:false"`

	GeneratedAt *time.Time
	ValidatedAt *time.Time
	ValidatedBy *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt *time.Time
	SubmittedBy *uuid.UUID `gorm:"type:uuid"`
	ConfirmedAt *time.Time
	// Bank acknowledgement reference
	BankReference   string `gorm:"type:varchar(100)"`
	RejectionReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BankFileBatch) TableName() string {
	return "bank_file_batches"
}

// NewBankFileBatch opens a draft batch for one period and bank channel
func NewBankFileBatch(batchNumber string, periodID, methodID uuid.UUID, bankCode string, now time.Time) (*BankFileBatch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if periodID == uuid.Nil || methodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Period and method IDs are required")
	}
	if bankCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank code is required")
	}
	return &BankFileBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		BatchNumber:       batchNumber,
		PeriodID:          periodID,
		MethodID:          methodID,
		BankCode:          bankCode,
		TotalAmount:       decimal.Zero,
		Status:            BankBatchStatusDraft,
	}, nil
}

// AddPayment folds one payment into the batch totals. Only while drafting.
func (b *BankFileBatch) AddPayment(netPay decimal.Decimal, now time.Time) error {
	if b.Status != BankBatchStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add payments to a %s batch", b.Status))
	}
	b.PaymentCount++
	b.TotalAmount = b.TotalAmount.Add(netPay)
	b.UpdatedAt = now
	return nil
}

// RecordFileGenerated attaches the rendered file artifact and its hash
func (b *BankFileBatch) RecordFileGenerated(fileName, fileFormat, fileHash, storageKey string, now time.Time) error {
	if b.Status != BankBatchStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot generate a file for a %s batch", b.Status))
	}
	if b.PaymentCount == 0 {
		return shared.NewDomainError("EMPTY_BATCH", "Cannot generate a file for an empty batch")
	}
	if fileHash == "" {
		return shared.NewDomainError("INVALID_INPUT", "File hash is required")
	}

	b.Status = BankBatchStatusGenerated
	b.FileName = fileName
	b.FileFormat = fileFormat
	b.FileHash = fileHash
	b.StorageKey = storageKey
	b.GeneratedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// MarkValidated records a successful integrity check and readies the batch.
// Validation re-hashes the stored file against FileHash.
func (b *BankFileBatch) MarkValidated(actor uuid.UUID, now time.Time) error {
	if b.Status != BankBatchStatusGenerated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate a %s batch", b.Status))
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Validating actor is required")
	}
	b.IsValidated = true
	b.Status = BankBatchStatusReady
	b.ValidatedAt = &now
	b.ValidatedBy = &actor
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// CanSubmit gates submission on validation and readiness, both required
func (b *BankFileBatch) CanSubmit() bool {
	return b.IsValidated && b.Status == BankBatchStatusReady
}

// Submit hands the batch to the bank channel
func (b *BankFileBatch) Submit(actor uuid.UUID, now time.Time) error {
	if !b.CanSubmit() {
		return shared.NewDomainError("INVALID_STATE", "Batch must be validated and ready before submission")
	}
	if actor == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Submitting actor is required")
	}
	b.Status = BankBatchStatusSubmitted
	b.SubmittedAt = &now
	b.SubmittedBy = &actor
	b.UpdatedAt = now
	b.IncrementVersion()
	b.AddDomainEvent(NewBankBatchSubmittedEvent(b, actor, now))
	return nil
}

// Confirm records the bank's acknowledgement of the whole batch
func (b *BankFileBatch) Confirm(bankReference string, now time.Time) error {
	if b.Status != BankBatchStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm a %s batch", b.Status))
	}
	if bankReference == "" {
		return shared.NewDomainError("INVALID_INPUT", "Bank reference is required")
	}
	b.Status = BankBatchStatusConfirmed
	b.ConfirmedAt = &now
	b.BankReference = bankReference
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// RecordRejection records a bank-side rejection of the batch
func (b *BankFileBatch) RecordRejection(reason string, now time.Time) error {
	if b.Status != BankBatchStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject a %s batch", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	b.Status = BankBatchStatusRejected
	b.RejectionReason = reason
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}
