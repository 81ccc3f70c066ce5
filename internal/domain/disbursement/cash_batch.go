package disbursement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// CashBatchStatus tracks a cash distribution batch
type CashBatchStatus string

const (
	CashBatchStatusDraft        CashBatchStatus = "draft"
	CashBatchStatusReady        CashBatchStatus = "ready"
	CashBatchStatusDistributing CashBatchStatus = "distributing"
	CashBatchStatusClosed       CashBatchStatus = "closed"
)

// CashDistributionBatch groups cash payments for envelope distribution.
// Distribution is gated behind dual verification: a counter AND a distinct
// witness must both sign off on the envelope count. Two-person integrity,
// not a single-approver gate.
type CashDistributionBatch struct {
	shared.BaseAggregateRoot
	BatchNumber string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	PeriodID    uuid.UUID `gorm:"type:uuid;not null;index"`
	MethodID    uuid.UUID `gorm:"type:uuid;not null"`

	EnvelopeCount int             `gorm:"not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Status CashBatchStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	CountedBy   *uuid.UUID `gorm:"type:uuid"`
	CountedAt   *time.Time
	WitnessedBy *uuid.UUID `gorm:"type:uuid"`
	WitnessedAt *time.Time

	DistributionStartedAt *time.Time
	ClosedAt              *time.Time

	ClaimedCount   int `gorm:"not null;default:0"`
	UnclaimedCount int `gorm:"not null;default:0"`

	// Envelopes unclaimed past this deadline are flagged for redeposit
	UnclaimedDeadline  *time.Time
	RedepositReference string `gorm:"type:varchar(50)"`
	RedepositedAt      *time.Time
}

// TableName returns the table name for GORM
func (CashDistributionBatch) TableName() string {
	return "cash_distribution_batches"
}

// NewCashDistributionBatch opens a draft cash batch
func NewCashDistributionBatch(batchNumber string, periodID, methodID uuid.UUID, unclaimedDeadline time.Time, now time.Time) (*CashDistributionBatch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if periodID == uuid.Nil || methodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Period and method IDs are required")
	}
	return &CashDistributionBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		BatchNumber:       batchNumber,
		PeriodID:          periodID,
		MethodID:          methodID,
		TotalAmount:       decimal.Zero,
		Status:            CashBatchStatusDraft,
		UnclaimedDeadline: &unclaimedDeadline,
	}, nil
}

// AddEnvelope adds one employee payment envelope while drafting
func (b *CashDistributionBatch) AddEnvelope(netPay decimal.Decimal, now time.Time) error {
	if b.Status != CashBatchStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add envelopes to a %s batch", b.Status))
	}
	b.EnvelopeCount++
	b.TotalAmount = b.TotalAmount.Add(netPay)
	b.UpdatedAt = now
	return nil
}

// RecordCount records the cash counter's verification
func (b *CashDistributionBatch) RecordCount(counter uuid.UUID, now time.Time) error {
	if b.Status != CashBatchStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot count a %s batch", b.Status))
	}
	if counter == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Counting actor is required")
	}
	b.CountedBy = &counter
	b.CountedAt = &now
	b.UpdatedAt = now
	b.markReadyIfVerified(now)
	return nil
}

// RecordWitness records the independent witness. The witness must be a
// different person from the counter.
func (b *CashDistributionBatch) RecordWitness(witness uuid.UUID, now time.Time) error {
	if b.Status != CashBatchStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot witness a %s batch", b.Status))
	}
	if witness == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Witnessing actor is required")
	}
	if b.CountedBy != nil && *b.CountedBy == witness {
		return shared.NewDomainError("DUAL_CONTROL_VIOLATION", "Witness must be distinct from the counter")
	}
	b.WitnessedBy = &witness
	b.WitnessedAt = &now
	b.UpdatedAt = now
	b.markReadyIfVerified(now)
	return nil
}

func (b *CashDistributionBatch) markReadyIfVerified(now time.Time) {
	if b.CountedBy != nil && b.WitnessedBy != nil {
		b.Status = CashBatchStatusReady
		b.IncrementVersion()
	}
}

// CanStartDistribution requires dual verification and a ready batch
func (b *CashDistributionBatch) CanStartDistribution() bool {
	return b.CountedBy != nil && b.WitnessedBy != nil && b.Status == CashBatchStatusReady
}

// StartDistribution begins handing out envelopes
func (b *CashDistributionBatch) StartDistribution(now time.Time) error {
	if !b.CanStartDistribution() {
		return shared.NewDomainError("DUAL_CONTROL_VIOLATION", "Distribution requires both counter and witness sign-off on a ready batch")
	}
	b.Status = CashBatchStatusDistributing
	b.DistributionStartedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// RecordClaim counts one claimed envelope
func (b *CashDistributionBatch) RecordClaim(now time.Time) error {
	if b.Status != CashBatchStatusDistributing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record a claim on a %s batch", b.Status))
	}
	if b.ClaimedCount+b.UnclaimedCount >= b.EnvelopeCount {
		return shared.NewDomainError("INVALID_STATE", "All envelopes already accounted for")
	}
	b.ClaimedCount++
	b.UpdatedAt = now
	return nil
}

// RecordUnclaimed counts one envelope left unclaimed past the deadline
func (b *CashDistributionBatch) RecordUnclaimed(now time.Time) error {
	if b.Status != CashBatchStatusDistributing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record unclaimed on a %s batch", b.Status))
	}
	if b.ClaimedCount+b.UnclaimedCount >= b.EnvelopeCount {
		return shared.NewDomainError("INVALID_STATE", "All envelopes already accounted for")
	}
	b.UnclaimedCount++
	b.UpdatedAt = now
	return nil
}

// PastUnclaimedDeadline reports whether unclaimed envelopes are due redeposit
func (b *CashDistributionBatch) PastUnclaimedDeadline(at time.Time) bool {
	return b.UnclaimedDeadline != nil && at.After(*b.UnclaimedDeadline)
}

// Close ends distribution once every envelope is claimed or unclaimed.
// Unclaimed amounts get a generated redeposit reference.
func (b *CashDistributionBatch) Close(redepositReference string, now time.Time) error {
	if b.Status != CashBatchStatusDistributing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close a %s batch", b.Status))
	}
	if b.ClaimedCount+b.UnclaimedCount != b.EnvelopeCount {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("%d of %d envelopes unaccounted for", b.EnvelopeCount-b.ClaimedCount-b.UnclaimedCount, b.EnvelopeCount))
	}
	if b.UnclaimedCount > 0 {
		if redepositReference == "" {
			return shared.NewDomainError("INVALID_INPUT", "Redeposit reference is required when envelopes are unclaimed")
		}
		b.RedepositReference = redepositReference
		b.RedepositedAt = &now
	}
	b.Status = CashBatchStatusClosed
	b.ClosedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}
