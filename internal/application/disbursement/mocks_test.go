package disbursement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

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

type MockMethodRepository struct {
	mock.Mock
}

func (m *MockMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.PaymentMethod), args.Error(1)
}

func (m *MockMethodRepository) FindByCode(ctx context.Context, code string) (*disbursement.PaymentMethod, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.PaymentMethod), args.Error(1)
}

func (m *MockMethodRepository) FindEnabled(ctx context.Context) ([]disbursement.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PaymentMethod), args.Error(1)
}

func (m *MockMethodRepository) FindByType(ctx context.Context, methodType disbursement.MethodType) ([]disbursement.PaymentMethod, error) {
	args := m.Called(ctx, methodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PaymentMethod), args.Error(1)
}

func (m *MockMethodRepository) Save(ctx context.Context, method *disbursement.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

type MockBankBatchRepository struct {
	mock.Mock
}

func (m *MockBankBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.BankFileBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.BankFileBatch), args.Error(1)
}

func (m *MockBankBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*disbursement.BankFileBatch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.BankFileBatch), args.Error(1)
}

func (m *MockBankBatchRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.BankFileBatch, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.BankFileBatch), args.Error(1)
}

func (m *MockBankBatchRepository) Save(ctx context.Context, batch *disbursement.BankFileBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBankBatchRepository) SaveWithLock(ctx context.Context, batch *disbursement.BankFileBatch, expectedVersion int) error {
	args := m.Called(ctx, batch, expectedVersion)
	return args.Error(0)
}

type MockCashBatchRepository struct {
	mock.Mock
}

func (m *MockCashBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*disbursement.CashDistributionBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.CashDistributionBatch), args.Error(1)
}

func (m *MockCashBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*disbursement.CashDistributionBatch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*disbursement.CashDistributionBatch), args.Error(1)
}

func (m *MockCashBatchRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.CashDistributionBatch, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.CashDistributionBatch), args.Error(1)
}

func (m *MockCashBatchRepository) FindPastDeadline(ctx context.Context, asOf time.Time) ([]disbursement.CashDistributionBatch, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.CashDistributionBatch), args.Error(1)
}

func (m *MockCashBatchRepository) Save(ctx context.Context, batch *disbursement.CashDistributionBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *disbursement.PaymentAuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindByEntity(ctx context.Context, entityType disbursement.AuditEntityType, entityID uuid.UUID) ([]disbursement.PaymentAuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PaymentAuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]disbursement.PaymentAuditLog, error) {
	args := m.Called(ctx, actorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]disbursement.PaymentAuditLog), args.Error(1)
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

func (m *MockCalculationRepository) SaveNewVersion(ctx context.Context, previous, next *payroll.EmployeePayrollCalculation) error {
	args := m.Called(ctx, previous, next)
	return args.Error(0)
}

func (m *MockCalculationRepository) Count(ctx context.Context, periodID uuid.UUID, filter payroll.CalculationFilter) (int64, error) {
	args := m.Called(ctx, periodID, filter)
	return args.Get(0).(int64), args.Error(1)
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

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Disburse(ctx context.Context, payment *disbursement.PayrollPayment, method *disbursement.PaymentMethod) (*GatewayReceipt, error) {
	args := m.Called(ctx, payment, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayReceipt), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockFileStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
