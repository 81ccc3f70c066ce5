package event

import (
	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// RegisterAllEvents registers all domain event types with the serializer
// so persisted events can be deserialized back into their concrete types.
func RegisterAllEvents(serializer *EventSerializer) {
	// Payroll period lifecycle
	serializer.Register("PayrollPeriodCreated", &payroll.PeriodCreatedEvent{})
	serializer.Register("PayrollPeriodCalculated", &payroll.PeriodCalculatedEvent{})
	serializer.Register("PayrollPeriodSubmitted", &payroll.PeriodSubmittedEvent{})
	serializer.Register("PayrollPeriodApproved", &payroll.PeriodApprovedEvent{})
	serializer.Register("PayrollPeriodRejected", &payroll.PeriodRejectedEvent{})
	serializer.Register("PayrollPeriodLocked", &payroll.PeriodLockedEvent{})
	serializer.Register("PayrollPeriodUnlocked", &payroll.PeriodUnlockedEvent{})
	serializer.Register("PayrollPeriodCompleted", &payroll.PeriodCompletedEvent{})

	// Adjustment workflow
	serializer.Register("PayrollAdjustmentProposed", &payroll.AdjustmentProposedEvent{})
	serializer.Register("PayrollAdjustmentApproved", &payroll.AdjustmentApprovedEvent{})
	serializer.Register("PayrollAdjustmentRejected", &payroll.AdjustmentRejectedEvent{})
	serializer.Register("PayrollAdjustmentApplied", &payroll.AdjustmentAppliedEvent{})

	// Employee loans
	serializer.Register("EmployeeLoanOpened", &loan.LoanOpenedEvent{})
	serializer.Register("EmployeeLoanCompleted", &loan.LoanCompletedEvent{})
	serializer.Register("EmployeeLoanDefaulted", &loan.LoanDefaultedEvent{})
	serializer.Register("EmployeeLoanWaived", &loan.LoanWaivedEvent{})

	// Disbursement
	serializer.Register("PayrollPaymentCreated", &disbursement.PaymentCreatedEvent{})
	serializer.Register("PayrollPaymentPaid", &disbursement.PaymentPaidEvent{})
	serializer.Register("PayrollPaymentFailed", &disbursement.PaymentFailedEvent{})
	serializer.Register("PayrollPaymentUnclaimed", &disbursement.PaymentUnclaimedEvent{})
	serializer.Register("BankFileBatchSubmitted", &disbursement.BankBatchSubmittedEvent{})
}

// AllEventTypes returns every event type name this service publishes.
// Handlers that want the full stream (such as the audit trail) subscribe
// with this list.
func AllEventTypes() []string {
	return []string{
		"PayrollPeriodCreated",
		"PayrollPeriodCalculated",
		"PayrollPeriodSubmitted",
		"PayrollPeriodApproved",
		"PayrollPeriodRejected",
		"PayrollPeriodLocked",
		"PayrollPeriodUnlocked",
		"PayrollPeriodCompleted",
		"PayrollAdjustmentProposed",
		"PayrollAdjustmentApproved",
		"PayrollAdjustmentRejected",
		"PayrollAdjustmentApplied",
		"EmployeeLoanOpened",
		"EmployeeLoanCompleted",
		"EmployeeLoanDefaulted",
		"EmployeeLoanWaived",
		"PayrollPaymentCreated",
		"PayrollPaymentPaid",
		"PayrollPaymentFailed",
		"PayrollPaymentUnclaimed",
		"BankFileBatchSubmitted",
	}
}
