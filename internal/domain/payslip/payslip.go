package payslip

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// EarningsBreakdown is the itemized earnings snapshot carried on a payslip
type EarningsBreakdown struct {
	BasicPay            decimal.Decimal `json:"basic_pay"`
	LeavePay            decimal.Decimal `json:"leave_pay"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	TaxableAllowances   decimal.Decimal `json:"taxable_allowances"`
	DeMinimisAllowances decimal.Decimal `json:"de_minimis_allowances"`
	Bonuses             decimal.Decimal `json:"bonuses"`
}

// DeductionsBreakdown is the itemized deductions snapshot
type DeductionsBreakdown struct {
	SSS        decimal.Decimal `json:"sss"`
	PhilHealth decimal.Decimal `json:"philhealth"`
	PagIbig    decimal.Decimal `json:"pagibig"`
	Tax        decimal.Decimal `json:"tax"`
	Loans      decimal.Decimal `json:"loans"`
	Advances   decimal.Decimal `json:"advances"`
	Tardiness  decimal.Decimal `json:"tardiness"`
	Absences   decimal.Decimal `json:"absences"`
	Others     decimal.Decimal `json:"others"`
}

// YearToDate carries running annual figures as of the payment date
type YearToDate struct {
	GrossPay   decimal.Decimal `json:"gross_pay"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"net_pay"`
	Tax        decimal.Decimal `json:"tax"`
}

// QRPayload is the verification payload rendered as a QR code on the slip
type QRPayload struct {
	PayslipNumber  string          `json:"payslip_number"`
	SignatureHash  string          `json:"signature_hash"`
	EmployeeNumber string          `json:"employee_number"`
	PaymentDate    string          `json:"payment_date"`
	NetPay         decimal.Decimal `json:"net_pay"`
}

// Payslip is an immutable snapshot derived from a settled payment. It has no
// mutating methods; authenticity is verifiable through the signature hash.
type Payslip struct {
	shared.BaseEntity
	PayslipNumber  string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	PaymentID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PeriodID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeNumber string    `gorm:"type:varchar(30);not null"`
	PaymentDate    time.Time `gorm:"not null"`

	GrossPay        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetPay          decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	// Itemized snapshots, serialized once at issue time
	EarningsJSON   []byte `gorm:"type:jsonb;not null"`
	DeductionsJSON []byte `gorm:"type:jsonb;not null"`
	YTDJSON        []byte `gorm:"type:jsonb;not null"`

	// sha256 over the canonical payslip fields
	SignatureHash string `gorm:"type:varchar(64);not null"`
	// JSON verification payload for QR rendering
	QRPayload string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Payslip) TableName() string {
	return "payslips"
}

// signatureInput is the canonical byte layout hashed into SignatureHash.
// Field order is part of the verification contract and must not change.
func signatureInput(payslipNumber, employeeNumber string, paymentDate time.Time, gross, deductions, net decimal.Decimal) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		payslipNumber, employeeNumber, paymentDate.Format("2006-01-02"),
		gross.StringFixed(2), deductions.StringFixed(2), net.StringFixed(2))
}

// NewPayslip issues a payslip for a settled payment. All inputs are copied;
// the resulting record never changes.
func NewPayslip(
	payslipNumber string,
	paymentID, periodID, employeeID uuid.UUID,
	employeeNumber string,
	paymentDate time.Time,
	gross, totalDeductions, net decimal.Decimal,
	earnings EarningsBreakdown,
	deductions DeductionsBreakdown,
	ytd YearToDate,
	now time.Time,
) (*Payslip, error) {
	if payslipNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYSLIP_NUMBER", "Payslip number cannot be empty")
	}
	if paymentID == uuid.Nil || periodID == uuid.Nil || employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment, period and employee IDs are required")
	}
	if employeeNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Employee number is required")
	}
	if !net.Round(2).Equal(gross.Sub(totalDeductions).Round(2)) {
		return nil, shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Payslip net %s does not reconcile with gross %s minus deductions %s", net, gross, totalDeductions))
	}

	earningsJSON, err := json.Marshal(earnings)
	if err != nil {
		return nil, fmt.Errorf("marshal earnings breakdown: %w", err)
	}
	deductionsJSON, err := json.Marshal(deductions)
	if err != nil {
		return nil, fmt.Errorf("marshal deductions breakdown: %w", err)
	}
	ytdJSON, err := json.Marshal(ytd)
	if err != nil {
		return nil, fmt.Errorf("marshal YTD figures: %w", err)
	}

	sum := sha256.Sum256([]byte(signatureInput(payslipNumber, employeeNumber, paymentDate, gross, totalDeductions, net)))
	signature := hex.EncodeToString(sum[:])

	qr, err := json.Marshal(QRPayload{
		PayslipNumber:  payslipNumber,
		SignatureHash:  signature,
		EmployeeNumber: employeeNumber,
		PaymentDate:    paymentDate.Format("2006-01-02"),
		NetPay:         net,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal QR payload: %w", err)
	}

	return &Payslip{
		BaseEntity:      shared.NewBaseEntity(now),
		PayslipNumber:   payslipNumber,
		PaymentID:       paymentID,
		PeriodID:        periodID,
		EmployeeID:      employeeID,
		EmployeeNumber:  employeeNumber,
		PaymentDate:     paymentDate,
		GrossPay:        gross,
		TotalDeductions: totalDeductions,
		NetPay:          net,
		EarningsJSON:    earningsJSON,
		DeductionsJSON:  deductionsJSON,
		YTDJSON:         ytdJSON,
		SignatureHash:   signature,
		QRPayload:       string(qr),
	}, nil
}

// Verify recomputes the signature over the stored fields and compares it.
// A mismatch means the record was altered after issue.
func (p *Payslip) Verify() error {
	sum := sha256.Sum256([]byte(signatureInput(p.PayslipNumber, p.EmployeeNumber, p.PaymentDate, p.GrossPay, p.TotalDeductions, p.NetPay)))
	if hex.EncodeToString(sum[:]) != p.SignatureHash {
		return shared.NewDomainError("INTEGRITY_VIOLATION",
			fmt.Sprintf("Payslip %s signature does not match its contents", p.PayslipNumber))
	}
	return nil
}

// Earnings deserializes the stored earnings breakdown
func (p *Payslip) Earnings() (EarningsBreakdown, error) {
	var e EarningsBreakdown
	if err := json.Unmarshal(p.EarningsJSON, &e); err != nil {
		return EarningsBreakdown{}, fmt.Errorf("unmarshal earnings breakdown: %w", err)
	}
	return e, nil
}

// Deductions deserializes the stored deductions breakdown
func (p *Payslip) Deductions() (DeductionsBreakdown, error) {
	var d DeductionsBreakdown
	if err := json.Unmarshal(p.DeductionsJSON, &d); err != nil {
		return DeductionsBreakdown{}, fmt.Errorf("unmarshal deductions breakdown: %w", err)
	}
	return d, nil
}

// YTD deserializes the stored year-to-date figures
func (p *Payslip) YTD() (YearToDate, error) {
	var y YearToDate
	if err := json.Unmarshal(p.YTDJSON, &y); err != nil {
		return YearToDate{}, fmt.Errorf("unmarshal YTD figures: %w", err)
	}
	return y, nil
}
