package payslip

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payslip"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// PayslipService issues immutable payslips from settled payments and serves
// authenticity checks against their signature hashes.
type PayslipService struct {
	payslipRepo payslip.Repository
	paymentRepo disbursement.PaymentRepository
	calcRepo    payroll.CalculationRepository
	clock       shared.Clock
	logger      *zap.Logger
}

// NewPayslipService creates a new PayslipService
func NewPayslipService(
	payslipRepo payslip.Repository,
	paymentRepo disbursement.PaymentRepository,
	calcRepo payroll.CalculationRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *PayslipService {
	return &PayslipService{
		payslipRepo: payslipRepo,
		paymentRepo: paymentRepo,
		calcRepo:    calcRepo,
		clock:       clock,
		logger:      logger,
	}
}

// IssueForPayment issues the payslip for one settled payment. Issuing twice
// returns the existing slip; payslips are write-once.
func (s *PayslipService) IssueForPayment(ctx context.Context, paymentID uuid.UUID) (*payslip.Payslip, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payslip", "issue")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, paymentID.String())

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		err := shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	slip, err := s.issue(ctx, payment)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPayslipNumber, slip.PayslipNumber)
	return slip, nil
}

// IssueForPeriodResult summarizes a period-wide issuance run
type IssueForPeriodResult struct {
	PeriodID uuid.UUID `json:"period_id"`
	Issued   int       `json:"issued"`
	Existing int       `json:"existing"`
}

// IssueForPeriod issues payslips for every paid payment in a period. The run
// is re-runnable; already-issued payments are counted, not re-issued.
func (s *PayslipService) IssueForPeriod(ctx context.Context, periodID uuid.UUID) (*IssueForPeriodResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payslip", "issue_period")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, periodID.String())

	paid := disbursement.PaymentStatusPaid
	payments, err := s.paymentRepo.FindByPeriod(ctx, periodID, disbursement.PaymentFilter{Status: &paid})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load paid payments: %w", err)
	}

	result := &IssueForPeriodResult{PeriodID: periodID}
	for i := range payments {
		payment := &payments[i]
		existing, err := s.payslipRepo.FindByPayment(ctx, payment.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check existing payslip: %w", err)
		}
		if existing != nil {
			result.Existing++
			continue
		}
		if _, err := s.issue(ctx, payment); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		result.Issued++
	}

	s.logger.Info("period payslips issued",
		zap.String("period_id", periodID.String()),
		zap.Int("issued", result.Issued),
		zap.Int("existing", result.Existing))
	return result, nil
}

func (s *PayslipService) issue(ctx context.Context, payment *disbursement.PayrollPayment) (*payslip.Payslip, error) {
	if payment.Status != disbursement.PaymentStatusPaid || payment.PaidAt == nil {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot issue a payslip for a %s payment", payment.Status))
	}

	existing, err := s.payslipRepo.FindByPayment(ctx, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payslip: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	calc, err := s.calcRepo.FindByID(ctx, payment.CalculationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation: %w", err)
	}
	if calc == nil {
		return nil, shared.NewDomainError("CALCULATION_NOT_FOUND", "Source calculation not found")
	}

	paymentDate := *payment.PaidAt
	ytd, err := s.yearToDate(ctx, payment.EmployeeID, paymentDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	slip, err := payslip.NewPayslip(
		s.generatePayslipNumber(now),
		payment.ID, payment.PeriodID, payment.EmployeeID,
		payment.EmployeeNumber,
		paymentDate,
		payment.GrossPay, payment.TotalDeductions, payment.NetPay,
		payslip.EarningsBreakdown{
			BasicPay:            calc.BasicPay,
			LeavePay:            calc.LeavePay,
			OvertimePay:         calc.TotalOvertimePay,
			TaxableAllowances:   calc.TaxableAllowances,
			DeMinimisAllowances: calc.DeMinimisAllowances,
			Bonuses:             calc.TotalBonuses,
		},
		payslip.DeductionsBreakdown{
			SSS:        payment.SSSContribution,
			PhilHealth: payment.PhilHealthContribution,
			PagIbig:    payment.PagIbigContribution,
			Tax:        payment.WithholdingTax,
			Loans:      payment.LoanDeductions,
			Advances:   payment.AdvanceDeductions,
			Tardiness:  payment.TardinessDeduction,
			Absences:   payment.AbsenceDeduction,
			Others:     payment.OtherDeductions,
		},
		ytd,
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := s.payslipRepo.Save(ctx, slip); err != nil {
		return nil, fmt.Errorf("failed to save payslip: %w", err)
	}
	telemetry.RecordPayslipIssued(ctx)

	s.logger.Info("payslip issued",
		zap.String("payslip_number", slip.PayslipNumber),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("employee_number", slip.EmployeeNumber),
		zap.String("net_pay", slip.NetPay.String()))
	return slip, nil
}

// yearToDate folds the employee's locked calculations for the payment year
// into running annual figures, adjustments included.
func (s *PayslipService) yearToDate(ctx context.Context, employeeID uuid.UUID, paymentDate time.Time) (payslip.YearToDate, error) {
	calcs, err := s.calcRepo.FindPaidYearToDate(ctx, employeeID, paymentDate.Year(), paymentDate)
	if err != nil {
		return payslip.YearToDate{}, fmt.Errorf("failed to load year-to-date calculations: %w", err)
	}

	ytd := payslip.YearToDate{
		GrossPay:   decimal.Zero,
		Deductions: decimal.Zero,
		NetPay:     decimal.Zero,
		Tax:        decimal.Zero,
	}
	for i := range calcs {
		c := &calcs[i]
		ytd.GrossPay = ytd.GrossPay.Add(c.GrossPay).Add(c.AdjustmentsTotal)
		ytd.Deductions = ytd.Deductions.Add(c.TotalDeductions)
		ytd.NetPay = ytd.NetPay.Add(c.FinalNetPay)
		ytd.Tax = ytd.Tax.Add(c.WithholdingTax)
	}
	return ytd, nil
}

// GetPayslip loads a payslip by ID
func (s *PayslipService) GetPayslip(ctx context.Context, id uuid.UUID) (*payslip.Payslip, error) {
	slip, err := s.payslipRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payslip: %w", err)
	}
	if slip == nil {
		return nil, shared.NewDomainError("PAYSLIP_NOT_FOUND", "Payslip not found")
	}
	return slip, nil
}

// GetByNumber loads a payslip by its number
func (s *PayslipService) GetByNumber(ctx context.Context, payslipNumber string) (*payslip.Payslip, error) {
	slip, err := s.payslipRepo.FindByPayslipNumber(ctx, payslipNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load payslip: %w", err)
	}
	if slip == nil {
		return nil, shared.NewDomainError("PAYSLIP_NOT_FOUND", "Payslip not found")
	}
	return slip, nil
}

// ListByEmployee lists an employee's payslips, newest first
func (s *PayslipService) ListByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]payslip.Payslip, error) {
	return s.payslipRepo.FindByEmployee(ctx, employeeID, filter)
}

// ListByPeriod lists payslips issued for a period
func (s *PayslipService) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]payslip.Payslip, error) {
	return s.payslipRepo.FindByPeriod(ctx, periodID)
}

// VerificationResult reports an authenticity check outcome
type VerificationResult struct {
	Valid         bool             `json:"valid"`
	Reason        string           `json:"reason,omitempty"`
	PayslipNumber string           `json:"payslip_number"`
	Payslip       *payslip.Payslip `json:"payslip,omitempty"`
}

// Verify recomputes the signature of a stored payslip
func (s *PayslipService) Verify(ctx context.Context, payslipNumber string) (*VerificationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payslip", "verify")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPayslipNumber, payslipNumber)

	slip, err := s.GetByNumber(ctx, payslipNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := slip.Verify(); err != nil {
		s.logger.Warn("payslip signature mismatch",
			zap.String("payslip_number", payslipNumber))
		return &VerificationResult{
			Valid:         false,
			Reason:        shared.IsDomainError(err).Message,
			PayslipNumber: payslipNumber,
		}, nil
	}
	return &VerificationResult{
		Valid:         true,
		PayslipNumber: payslipNumber,
		Payslip:       slip,
	}, nil
}

// VerifyQR checks a scanned QR payload against the stored payslip. The
// payload's own signature hash must match the recomputed one, so a forged
// payload cannot vouch for altered figures.
func (s *PayslipService) VerifyQR(ctx context.Context, payload string) (*VerificationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payslip", "verify_qr")
	defer span.End()

	var qr payslip.QRPayload
	if err := json.Unmarshal([]byte(payload), &qr); err != nil {
		err = shared.NewDomainError("INVALID_QR_PAYLOAD", "QR payload is not valid verification JSON")
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPayslipNumber, qr.PayslipNumber)

	slip, err := s.GetByNumber(ctx, qr.PayslipNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := slip.Verify(); err != nil {
		return &VerificationResult{
			Valid:         false,
			Reason:        shared.IsDomainError(err).Message,
			PayslipNumber: qr.PayslipNumber,
		}, nil
	}
	if qr.SignatureHash != slip.SignatureHash {
		return &VerificationResult{
			Valid:         false,
			Reason:        "QR signature does not match the issued payslip",
			PayslipNumber: qr.PayslipNumber,
		}, nil
	}
	if qr.EmployeeNumber != slip.EmployeeNumber || !qr.NetPay.Equal(slip.NetPay) {
		return &VerificationResult{
			Valid:         false,
			Reason:        "QR contents do not match the issued payslip",
			PayslipNumber: qr.PayslipNumber,
		}, nil
	}
	return &VerificationResult{
		Valid:         true,
		PayslipNumber: qr.PayslipNumber,
		Payslip:       slip,
	}, nil
}

func (s *PayslipService) generatePayslipNumber(now time.Time) string {
	return fmt.Sprintf("PS-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}
