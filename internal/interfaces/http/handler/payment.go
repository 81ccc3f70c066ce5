package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	disbapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PaymentHandler handles payroll payment endpoints, including the provider
// settlement callback
type PaymentHandler struct {
	BaseHandler
	service *disbapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *disbapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// PaymentResponse represents a payroll payment in API responses
type PaymentResponse struct {
	ID               string                `json:"id"`
	PaymentNumber    string                `json:"payment_number"`
	PeriodID         string                `json:"period_id"`
	CalculationID    string                `json:"calculation_id"`
	EmployeeID       string                `json:"employee_id"`
	EmployeeNumber   string                `json:"employee_number"`
	MethodID         string                `json:"method_id"`
	BatchID          *string               `json:"batch_id,omitempty"`
	GrossPay         float64               `json:"gross_pay"`
	Deductions       CalculationDeductions `json:"deductions"`
	NetPay           float64               `json:"net_pay"`
	Status           string                `json:"status"`
	RetryCount       int                   `json:"retry_count"`
	ConfirmationCode string                `json:"confirmation_code,omitempty"`
	FailureReason    string                `json:"failure_reason,omitempty"`
	ProcessedAt      *time.Time            `json:"processed_at,omitempty"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	FailedAt         *time.Time            `json:"failed_at,omitempty"`
	UnclaimedAt      *time.Time            `json:"unclaimed_at,omitempty"`
	ReissuedFromID   *string               `json:"reissued_from_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// CreatePaymentsResponse summarizes a payment materialization run
type CreatePaymentsResponse struct {
	PeriodID        string `json:"period_id"`
	PaymentsCreated int    `json:"payments_created"`
	Skipped         int    `json:"skipped"`
	CashFallbacks   int    `json:"cash_fallbacks"`
}

// RetryFailedResponse summarizes a retry pass over failed payments
type RetryFailedResponse struct {
	Attempted int `json:"attempted"`
	Paid      int `json:"paid"`
	Failed    int `json:"failed"`
}

// ReissuePaymentRequest selects the replacement disbursement method
type ReissuePaymentRequest struct {
	MethodID uuid.UUID `json:"method_id" binding:"required"`
}

// PaymentAuditLogResponse represents one audit trail entry
type PaymentAuditLogResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	ActorID    string          `json:"actor_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty"`
	NewValues  json.RawMessage `json:"new_values,omitempty"`
	Remarks    string          `json:"remarks,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaymentListFilter represents filter parameters for the payment list
type PaymentListFilter struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	MethodID   string `form:"method_id"`
	BatchID    string `form:"batch_id"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Handlers =====================

// CreatePeriodPayments materializes payments from a locked period's
// calculations
func (h *PaymentHandler) CreatePeriodPayments(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	result, err := h.service.CreatePeriodPayments(c.Request.Context(), periodID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, CreatePaymentsResponse{
		PeriodID:        result.PeriodID.String(),
		PaymentsCreated: result.PaymentsCreated,
		Skipped:         result.Skipped,
		CashFallbacks:   result.CashFallbacks,
	})
}

// GetPayment returns a payment by ID
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// ListPayments lists payments for a period
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	var filter PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	paymentFilter := disbursement.PaymentFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		paymentFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		paymentFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := disbursement.PaymentStatus(filter.Status)
		paymentFilter.Status = &status
	}
	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
			return
		}
		paymentFilter.EmployeeID = &id
	}
	if filter.MethodID != "" {
		id, err := uuid.Parse(filter.MethodID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid method ID")
			return
		}
		paymentFilter.MethodID = &id
	}
	if filter.BatchID != "" {
		id, err := uuid.Parse(filter.BatchID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
			return
		}
		paymentFilter.BatchID = &id
	}

	payments, err := h.service.ListByPeriod(c.Request.Context(), periodID, paymentFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]PaymentResponse, len(payments))
	for i := range payments {
		response[i] = toPaymentResponse(&payments[i])
	}
	h.Success(c, response)
}

// GetStatusSummary counts a period's payments per status
func (h *PaymentHandler) GetStatusSummary(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	summary, err := h.service.StatusSummary(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make(map[string]int64, len(summary))
	for status, count := range summary {
		response[string(status)] = count
	}
	h.Success(c, response)
}

// DispatchPayment sends one pending payment through the gateway
func (h *PaymentHandler) DispatchPayment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	payment, err := h.service.DispatchPayment(c.Request.Context(), paymentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// RetryFailed re-dispatches every retryable failed payment in a period
func (h *PaymentHandler) RetryFailed(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	result, err := h.service.RetryFailed(c.Request.Context(), periodID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, RetryFailedResponse{
		Attempted: result.Attempted,
		Paid:      result.Paid,
		Failed:    result.Failed,
	})
}

// ReissuePayment replaces a retry-exhausted payment with a fresh one on a
// different method
func (h *PaymentHandler) ReissuePayment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	var req ReissuePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	payment, err := h.service.Reissue(c.Request.Context(), paymentID, req.MethodID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// ConfirmSettlement is the provider callback that settles a processing
// payment. Replayed callbacks with the same idempotency key are absorbed.
func (h *PaymentHandler) ConfirmSettlement(c *gin.Context) {
	var req disbapp.ConfirmSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	payment, err := h.service.ConfirmSettlement(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// GetAuditTrail returns the append-only audit trail for a payment
func (h *PaymentHandler) GetAuditTrail(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	entries, err := h.service.AuditTrail(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]PaymentAuditLogResponse, len(entries))
	for i, e := range entries {
		response[i] = PaymentAuditLogResponse{
			ID:         e.ID.String(),
			EntityType: string(e.EntityType),
			EntityID:   e.EntityID.String(),
			Action:     e.Action,
			ActorID:    e.ActorID.String(),
			OldValues:  e.OldValues,
			NewValues:  e.NewValues,
			Remarks:    e.Remarks,
			CreatedAt:  e.CreatedAt,
		}
	}
	h.Success(c, response)
}

func toPaymentResponse(p *disbursement.PayrollPayment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID.String(),
		PaymentNumber:  p.PaymentNumber,
		PeriodID:       p.PeriodID.String(),
		CalculationID:  p.CalculationID.String(),
		EmployeeID:     p.EmployeeID.String(),
		EmployeeNumber: p.EmployeeNumber,
		MethodID:       p.MethodID.String(),
		BatchID:        uuidPtrString(p.BatchID),
		GrossPay:       decimalFloat(p.GrossPay),
		Deductions: CalculationDeductions{
			SSS:             decimalFloat(p.SSSContribution),
			PhilHealth:      decimalFloat(p.PhilHealthContribution),
			PagIbig:         decimalFloat(p.PagIbigContribution),
			WithholdingTax:  decimalFloat(p.WithholdingTax),
			Loans:           decimalFloat(p.LoanDeductions),
			Advances:        decimalFloat(p.AdvanceDeductions),
			Tardiness:       decimalFloat(p.TardinessDeduction),
			Absences:        decimalFloat(p.AbsenceDeduction),
			Other:           decimalFloat(p.OtherDeductions),
			TotalDeductions: decimalFloat(p.TotalDeductions),
		},
		NetPay:           decimalFloat(p.NetPay),
		Status:           string(p.Status),
		RetryCount:       p.RetryCount,
		ConfirmationCode: p.ConfirmationCode,
		FailureReason:    p.FailureReason,
		ProcessedAt:      p.ProcessedAt,
		PaidAt:           p.PaidAt,
		FailedAt:         p.FailedAt,
		UnclaimedAt:      p.UnclaimedAt,
		ReissuedFromID:   uuidPtrString(p.ReissuedFromID),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

// RegisterRoutes registers payment routes. The settlement callback sits under
// /webhooks so the gateway can be allow-listed separately.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("/:id", h.GetPayment)
		payments.GET("/:id/audit-trail", h.GetAuditTrail)
		payments.POST("/:id/dispatch", h.DispatchPayment)
		payments.POST("/:id/reissue", h.ReissuePayment)
	}

	periods := rg.Group("/periods")
	{
		periods.GET("/:id/payments", h.ListPayments)
		periods.GET("/:id/payments/summary", h.GetStatusSummary)
		periods.POST("/:id/payments", h.CreatePeriodPayments)
		periods.POST("/:id/payments/retry-failed", h.RetryFailed)
	}

	rg.POST("/webhooks/settlements", h.ConfirmSettlement)
}
