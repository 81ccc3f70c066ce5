package payslip

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payslip"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

type MockPayslipRepository struct {
	mock.Mock
}

func (m *MockPayslipRepository) FindByID(ctx context.Context, id uuid.UUID) (*payslip.Payslip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payslip.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) FindByPayslipNumber(ctx context.Context, payslipNumber string) (*payslip.Payslip, error) {
	args := m.Called(ctx, payslipNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payslip.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*payslip.Payslip, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payslip.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]payslip.Payslip, error) {
	args := m.Called(ctx, employeeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payslip.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]payslip.Payslip, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payslip.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) Save(ctx context.Context, slip *payslip.Payslip) error {
	args := m.Called(ctx, slip)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.PayrollPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPaymentNumber(ctx context.Context, paymentNumber string) (*disbursement.PayrollPayment, error) {
	args := m.Called(ctx, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter disbursement.PaymentFilter) ([]disbursement.PayrollPayment, error) {
	args := m.Called(ctx, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCalculation(ctx context.Context, calculationID uuid.UUID) (*disbursement.PayrollPayment, error) {
	args := m.Called(ctx, calculationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]disbursement.PayrollPayment, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) FindRetryable(ctx context.Context, periodID uuid.UUID) ([]disbursement.PayrollPayment, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PayrollPayment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *disbursement.PayrollPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *disbursement.PayrollPayment, expectedVersion int) error {
	args := m.Called(ctx, payment, expectedVersion)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountByStatus(ctx context.Context, periodID uuid.UUID) (map[disbursement.PaymentStatus]int64, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[disbursement.PaymentStatus]int64), args.Error(1)
}

type MockCalculationRepository struct {
	mock.Mock
}

func (m *MockCalculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) FindCurrent(ctx context.Context, periodID, employeeID uuid.UUID) (*payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, periodID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) ([]payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) FindVersionChain(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, periodID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) FindExceptions(ctx context.Context, periodID uuid.UUID) ([]payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) FindPaidYearToDate(ctx context.Context, employeeID uuid.UUID, year int, cutoff time.Time) ([]payroll.EmployeePayrollCalculation, error) {
	args := m.Called(ctx, employeeID, year, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.EmployeePayrollCalculation), args.Error(1)
}

func (m *MockCalculationRepository) Save(ctx context.Context, calc *payroll.EmployeePayrollCalculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockCalculationRepository) SaveWithLock(ctx context.Context, calc *payroll.EmployeePayrollCalculation, expectedVersion int) error {
	args := m.Called(ctx, calc, expectedVersion)
	return args.Error(0)
}

func (m *MockCalculationRepository) SaveNewVersion(ctx context.Context, previous, next *payroll.EmployeePayrollCalculation) error {
	args := m.Called(ctx, previous, next)
	return args.Error(0)
}

func (m *MockCalculationRepository) Count(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (int64, error) {
	args := m.Called(ctx, periodID, filter)
	return args.Get(0).(int64), args.Error(1)
}
