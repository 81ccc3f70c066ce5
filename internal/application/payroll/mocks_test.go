package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// =============================================================================
// Mock repositories and ports shared by the payroll application tests
// =============================================================================

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

func (m *MockPeriodRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]payroll.PayrollPeriod, error) {
	args := m.Called(ctx, start, end)
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

func (m *MockCalculationRepository) SaveNewVersion(ctx context.Context, previous, next *payroll.EmployeePayrollCalculation) error {
	args := m.Called(ctx, previous, next)
	return args.Error(0)
}

func (m *MockCalculationRepository) Count(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (int64, error) {
	args := m.Called(ctx, periodID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.PayrollAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter payroll.AdjustmentFilter) ([]payroll.PayrollAdjustment, error) {
	args := m.Called(ctx, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindPendingByPeriod(ctx context.Context, periodID uuid.UUID) ([]payroll.PayrollAdjustment, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) Save(ctx context.Context, adjustment *payroll.PayrollAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.EmployeePayrollProfile), args.Error(1)
}

func (m *MockProfileRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) (*payroll.EmployeePayrollProfile, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.EmployeePayrollProfile), args.Error(1)
}

func (m *MockProfileRepository) FindActive(ctx context.Context, filter shared.Filter) ([]payroll.EmployeePayrollProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.EmployeePayrollProfile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *payroll.EmployeePayrollProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *payroll.PayrollApprovalHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]payroll.PayrollApprovalHistory, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollApprovalHistory), args.Error(1)
}

type MockCalculationLogRepository struct {
	mock.Mock
}

func (m *MockCalculationLogRepository) Append(ctx context.Context, entry *payroll.PayrollCalculationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCalculationLogRepository) AppendBatch(ctx context.Context, entries []payroll.PayrollCalculationLog) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockCalculationLogRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID, filter shared.Filter) ([]payroll.PayrollCalculationLog, error) {
	args := m.Called(ctx, periodID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollCalculationLog), args.Error(1)
}

func (m *MockCalculationLogRepository) FindByEmployee(ctx context.Context, periodID, employeeID uuid.UUID) ([]payroll.PayrollCalculationLog, error) {
	args := m.Called(ctx, periodID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.PayrollCalculationLog), args.Error(1)
}

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

func (m *MockInstallmentRepository) Save(ctx context.Context, deduction *loan.LoanDeduction) error {
	args := m.Called(ctx, deduction)
	return args.Error(0)
}

func (m *MockInstallmentRepository) SaveBatch(ctx context.Context, deductions []loan.LoanDeduction) error {
	args := m.Called(ctx, deductions)
	return args.Error(0)
}

type MockAttendanceProvider struct {
	mock.Mock
}

func (m *MockAttendanceProvider) Snapshot(ctx context.Context, employeeID uuid.UUID, period *payroll.PayrollPeriod) (payroll.AttendanceSummary, payroll.LeaveSummary, error) {
	args := m.Called(ctx, employeeID, period)
	return args.Get(0).(payroll.AttendanceSummary), args.Get(1).(payroll.LeaveSummary), args.Error(2)
}

type MockTablesProvider struct {
	mock.Mock
}

func (m *MockTablesProvider) Tables(ctx context.Context) (payroll.StatutoryTables, error) {
	args := m.Called(ctx)
	return args.Get(0).(payroll.StatutoryTables), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockComponentRepository struct {
	mock.Mock
}

func (m *MockComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalaryComponent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryComponent), args.Error(1)
}

func (m *MockComponentRepository) FindByCode(ctx context.Context, code string) (*payroll.SalaryComponent, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryComponent), args.Error(1)
}

func (m *MockComponentRepository) FindActive(ctx context.Context) ([]payroll.SalaryComponent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payroll.SalaryComponent), args.Error(1)
}

func (m *MockComponentRepository) Save(ctx context.Context, component *payroll.SalaryComponent) error {
	args := m.Called(ctx, component)
	return args.Error(0)
}
