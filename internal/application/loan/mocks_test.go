package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.EmployeeLoan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.EmployeeLoan), args.Error(1)
}

func (m *MockLoanRepository) FindByLoanNumber(ctx context.Context, loanNumber string) (*loan.EmployeeLoan, error) {
	args := m.Called(ctx, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.EmployeeLoan), args.Error(1)
}

func (m *MockLoanRepository) FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) ([]loan.EmployeeLoan, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.EmployeeLoan), args.Error(1)
}

func (m *MockLoanRepository) FindAll(ctx context.Context, filter loan.LoanFilter) ([]loan.EmployeeLoan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.EmployeeLoan), args.Error(1)
}

func (m *MockLoanRepository) FindStale(ctx context.Context, cutoff time.Time) ([]loan.EmployeeLoan, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.EmployeeLoan), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, l *loan.EmployeeLoan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveWithLock(ctx context.Context, l *loan.EmployeeLoan, expectedVersion int) error {
	args := m.Called(ctx, l, expectedVersion)
	return args.Error(0)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.LoanDeduction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.LoanDeduction), args.Error(1)
}

func (m *MockInstallmentRepository) FindByLoan(ctx context.Context, loanID uuid.UUID, filter loan.DeductionFilter) ([]loan.LoanDeduction, error) {
	args := m.Called(ctx, loanID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.LoanDeduction), args.Error(1)
}

func (m *MockInstallmentRepository) FindDueForEmployee(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]loan.LoanDeduction, error) {
	args := m.Called(ctx, employeeID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.LoanDeduction), args.Error(1)
}

func (m *MockInstallmentRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]loan.LoanDeduction, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]loan.LoanDeduction), args.Error(1)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, d *loan.LoanDeduction) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockInstallmentRepository) SaveBatch(ctx context.Context, deductions []loan.LoanDeduction) error {
	args := m.Called(ctx, deductions)
	return args.Error(0)
}

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PayrollPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindByPeriodNumber(ctx context.Context, periodNumber string) (*payroll.PayrollPeriod, error) {
	args := m.Called(ctx, periodNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PayrollPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindContainingDate(ctx context.Context, date time.Time) (*payroll.PayrollPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PayrollPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindOverlapping(ctx context.Context, startDate, endDate time.Time) ([]payroll.PayrollPeriod, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindAll(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollPeriod), args.Error(1)
}

func (m *MockPeriodRepository) Save(ctx context.Context, period *payroll.PayrollPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) SaveWithLock(ctx context.Context, period *payroll.PayrollPeriod, expectedVersion int) error {
	args := m.Called(ctx, period, expectedVersion)
	return args.Error(0)
}

func (m *MockPeriodRepository) Count(ctx context.Context, filter payroll.PeriodFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
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

func (m *MockCalculationRepository) SaveNewVersion(ctx context.Context, current, next *payroll.EmployeePayrollCalculation) error {
	args := m.Called(ctx, current, next)
	return args.Error(0)
}

func (m *MockCalculationRepository) Count(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (int64, error) {
	args := m.Called(ctx, periodID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
