package payslip

import (
	"context"

	"github.com/google/uuid"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// Repository defines the interface for payslip persistence. Payslips are
// write-once; there is no update path.
type Repository interface {
	// FindByID finds a payslip by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payslip, error)

	// FindByPayslipNumber finds a payslip by its number
	FindByPayslipNumber(ctx context.Context, payslipNumber string) (*Payslip, error)

	// FindByPayment finds the payslip issued for a payment, if any
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*Payslip, error)

	// FindByEmployee finds payslips for an employee, newest first
	FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]Payslip, error)

	// FindByPeriod finds payslips issued for a period
	FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]Payslip, error)

	// Save persists a newly issued payslip
	Save(ctx context.Context, payslip *Payslip) error
}
