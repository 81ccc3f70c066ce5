package disbursement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	Status     *PaymentStatus
	EmployeeID *uuid.UUID
	MethodID   *uuid.UUID
	BatchID    *uuid.UUID
}

// PaymentRepository defines the interface for payroll payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollPayment, error)

	// FindByPaymentNumber finds a payment by its number
	FindByPaymentNumber(ctx context.Context, paymentNumber string) (*PayrollPayment, error)

	// FindByPeriod finds payments for a period with filtering
	FindByPeriod(ctx context.Context, periodID uuid.UUID, filter PaymentFilter) ([]PayrollPayment, error)

	// FindByCalculation finds the payment issued for a calculation, if any
	FindByCalculation(ctx context.Context, calculationID uuid.UUID) (*PayrollPayment, error)

	// FindByBatch finds payments assigned to a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]PayrollPayment, error)

	// FindRetryable finds failed payments that can still retry
	FindRetryable(ctx context.Context, periodID uuid.UUID) ([]PayrollPayment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *PayrollPayment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *PayrollPayment, expectedVersion int) error

	// CountByStatus counts a period's payments per status for batch summaries
	CountByStatus(ctx context.Context, periodID uuid.UUID) (map[PaymentStatus]int64, error)
}

// MethodRepository defines the interface for payment method persistence
type MethodRepository interface {
	// FindByID finds a method by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)

	// FindByCode finds a method by its code
	FindByCode(ctx context.Context, code string) (*PaymentMethod, error)

	// FindEnabled finds all enabled methods
	FindEnabled(ctx context.Context) ([]PaymentMethod, error)

	// FindByType finds enabled methods of a channel class
	FindByType(ctx context.Context, methodType MethodType) ([]PaymentMethod, error)

	// Save creates or updates a method
	Save(ctx context.Context, method *PaymentMethod) error
}

// BankBatchRepository defines the interface for bank file batch persistence
type BankBatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankFileBatch, error)

	// FindByBatchNumber finds a batch by its number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*BankFileBatch, error)

	// FindByPeriod finds batches for a period
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]BankFileBatch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *BankFileBatch) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, batch *BankFileBatch, expectedVersion int) error
}

// CashBatchRepository defines the interface for cash batch persistence
type CashBatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashDistributionBatch, error)

	// FindByBatchNumber finds a batch by its number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*CashDistributionBatch, error)

	// FindByPeriod finds batches for a period
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]CashDistributionBatch, error)

	// FindPastDeadline finds distributing batches whose unclaimed deadline
	// has lapsed, for the redeposit sweep
	FindPastDeadline(ctx context.Context, asOf time.Time) ([]CashDistributionBatch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *CashDistributionBatch) error
}

// AuditLogRepository defines the interface for the append-only payment audit
// trail. There is no update or delete.
type AuditLogRepository interface {
	// Append persists an audit row
	Append(ctx context.Context, entry *PaymentAuditLog) error

	// FindByEntity finds audit rows for one entity, oldest first
	FindByEntity(ctx context.Context, entityType AuditEntityType, entityID uuid.UUID) ([]PaymentAuditLog, error)

	// FindByActor finds audit rows recorded for one actor
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]PaymentAuditLog, error)
}
