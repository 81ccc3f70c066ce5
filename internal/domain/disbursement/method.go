package disbursement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// MethodType is the disbursement channel class
type MethodType string

const (
	MethodTypeCash    MethodType = "cash"
	MethodTypeBank    MethodType = "bank"
	MethodTypeEWallet MethodType = "ewallet"
)

// IsValid checks if the method type is valid
func (t MethodType) IsValid() bool {
	return t == MethodTypeCash || t == MethodTypeBank || t == MethodTypeEWallet
}

// SettlementSpeed distinguishes real-time rails (InstaPay) from batch
// next-day rails (PESONet)
type SettlementSpeed string

const (
	SettlementRealTime SettlementSpeed = "real_time"
	SettlementNextDay  SettlementSpeed = "next_day"
)

// PaymentMethod configures one disbursement channel. Eligibility checks run
// before a payment is assigned to a batch; violations route the payment to
// the cash fallback rather than failing silently.
type PaymentMethod struct {
	shared.BaseAggregateRoot
	Code       string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name       string     `gorm:"type:varchar(100);not null"`
	MethodType MethodType `gorm:"type:varchar(20);not null;index"`

	Enabled bool `gorm:"not null"`

	Fee       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MinAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// Zero max means no upper limit
	MaxAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	SettlementSpeed SettlementSpeed `gorm:"type:varchar(20);not null;default:'next_day'"`
	// Same-day cutoff as minutes from midnight in local payroll time;
	// nil means no cutoff applies
	CutoffMinutes *int

	// Bank file rendering, bank channels only
	BankCode     string `gorm:"type:varchar(20)"`
	FileFormat   string `gorm:"type:varchar(10)"` // csv or xlsx
	FileTemplate string `gorm:"type:varchar(50)"` // column layout name

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// NewPaymentMethod creates an enabled payment channel
func NewPaymentMethod(code, name string, methodType MethodType, now time.Time) (*PaymentMethod, error) {
	if code == "" || name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Method code and name are required")
	}
	if !methodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Method type is not valid")
	}
	return &PaymentMethod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Code:              code,
		Name:              name,
		MethodType:        methodType,
		Enabled:           true,
		SettlementSpeed:   SettlementNextDay,
	}, nil
}

// SupportsAmount checks the net pay against the channel's min/max limits
func (m *PaymentMethod) SupportsAmount(amount decimal.Decimal) bool {
	if amount.LessThan(m.MinAmount) {
		return false
	}
	if !m.MaxAmount.IsZero() && amount.GreaterThan(m.MaxAmount) {
		return false
	}
	return true
}

// IsAvailableForPayment checks the channel can take a payment at the given
// instant: enabled, and within the same-day cutoff for real-time rails.
func (m *PaymentMethod) IsAvailableForPayment(at time.Time) bool {
	if !m.Enabled {
		return false
	}
	if m.SettlementSpeed == SettlementRealTime && m.CutoffMinutes != nil {
		minutes := at.Hour()*60 + at.Minute()
		if minutes >= *m.CutoffMinutes {
			return false
		}
	}
	return true
}

// Disable takes the channel out of rotation
func (m *PaymentMethod) Disable(now time.Time) {
	m.Enabled = false
	m.UpdatedAt = now
	m.IncrementVersion()
}

// Enable returns the channel to rotation
func (m *PaymentMethod) Enable(now time.Time) {
	m.Enabled = true
	m.UpdatedAt = now
	m.IncrementVersion()
}
