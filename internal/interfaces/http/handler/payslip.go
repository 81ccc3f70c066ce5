package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payslipapp "github.com/suweldo/payroll-backend/internal/application/payslip"
	"github.com/suweldo/payroll-backend/internal/domain/payslip"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/dto"
)

// PayslipHandler serves payslip issuance and verification endpoints
type PayslipHandler struct {
	BaseHandler
	service *payslipapp.PayslipService
}

func NewPayslipHandler(service *payslipapp.PayslipService) *PayslipHandler {
	return &PayslipHandler{service: service}
}

// PayslipResponse renders an issued payslip with its JSON snapshots
type PayslipResponse struct {
	ID              string          `json:"id"`
	PayslipNumber   string          `json:"payslip_number"`
	PaymentID       string          `json:"payment_id"`
	PeriodID        string          `json:"period_id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeNumber  string          `json:"employee_number"`
	PaymentDate     time.Time       `json:"payment_date"`
	GrossPay        float64         `json:"gross_pay"`
	TotalDeductions float64         `json:"total_deductions"`
	NetPay          float64         `json:"net_pay"`
	Earnings        json.RawMessage `json:"earnings"`
	Deductions      json.RawMessage `json:"deductions"`
	YearToDate      json.RawMessage `json:"year_to_date"`
	SignatureHash   string          `json:"signature_hash"`
	QRPayload       string          `json:"qr_payload"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IssueForPeriodResponse summarizes a period-wide issuance run
type IssueForPeriodResponse struct {
	PeriodID string `json:"period_id"`
	Issued   int    `json:"issued"`
	Existing int    `json:"existing"`
}

// VerificationResponse reports an authenticity check outcome
type VerificationResponse struct {
	Valid         bool             `json:"valid"`
	Reason        string           `json:"reason,omitempty"`
	PayslipNumber string           `json:"payslip_number"`
	Payslip       *PayslipResponse `json:"payslip,omitempty"`
}

// VerifyQRRequest carries a scanned QR payload
type VerifyQRRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// IssueForPayment issues a payslip for a single settled payment
func (h *PayslipHandler) IssueForPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	slip, err := h.service.IssueForPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPayslipResponse(slip))
}

// IssueForPeriod issues payslips for every settled payment in a period
func (h *PayslipHandler) IssueForPeriod(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	result, err := h.service.IssueForPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, IssueForPeriodResponse{
		PeriodID: result.PeriodID.String(),
		Issued:   result.Issued,
		Existing: result.Existing,
	})
}

// GetPayslip returns a payslip by ID
func (h *PayslipHandler) GetPayslip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payslip ID")
		return
	}

	slip, err := h.service.GetPayslip(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPayslipResponse(slip))
}

// GetByNumber returns a payslip by its public number
func (h *PayslipHandler) GetByNumber(c *gin.Context) {
	slip, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPayslipResponse(slip))
}

// ListByPeriod lists payslips issued for a period
func (h *PayslipHandler) ListByPeriod(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	slips, err := h.service.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPayslipResponses(slips))
}

// ListByEmployee lists an employee's payslips, newest first
func (h *PayslipHandler) ListByEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employee_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
		return
	}

	var list dto.ListRequest
	_ = c.ShouldBindQuery(&list)

	slips, err := h.service.ListByEmployee(c.Request.Context(), employeeID, list.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPayslipResponses(slips))
}

// Verify recomputes the signature of a stored payslip
func (h *PayslipHandler) Verify(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVerificationResponse(result))
}

// VerifyQR checks a scanned QR payload against the stored payslip
func (h *PayslipHandler) VerifyQR(c *gin.Context) {
	var req VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.VerifyQR(c.Request.Context(), req.Payload)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVerificationResponse(result))
}

func toPayslipResponse(slip *payslip.Payslip) *PayslipResponse {
	return &PayslipResponse{
		ID:              slip.ID.String(),
		PayslipNumber:   slip.PayslipNumber,
		PaymentID:       slip.PaymentID.String(),
		PeriodID:        slip.PeriodID.String(),
		EmployeeID:      slip.EmployeeID.String(),
		EmployeeNumber:  slip.EmployeeNumber,
		PaymentDate:     slip.PaymentDate,
		GrossPay:        decimalFloat(slip.GrossPay),
		TotalDeductions: decimalFloat(slip.TotalDeductions),
		NetPay:          decimalFloat(slip.NetPay),
		Earnings:        json.RawMessage(slip.EarningsJSON),
		Deductions:      json.RawMessage(slip.DeductionsJSON),
		YearToDate:      json.RawMessage(slip.YTDJSON),
		SignatureHash:   slip.SignatureHash,
		QRPayload:       slip.QRPayload,
		CreatedAt:       slip.CreatedAt,
	}
}

func toPayslipResponses(slips []payslip.Payslip) []PayslipResponse {
	responses := make([]PayslipResponse, len(slips))
	for i := range slips {
		responses[i] = *toPayslipResponse(&slips[i])
	}
	return responses
}

func toVerificationResponse(result *payslipapp.VerificationResult) *VerificationResponse {
	resp := &VerificationResponse{
		Valid:         result.Valid,
		Reason:        result.Reason,
		PayslipNumber: result.PayslipNumber,
	}
	if result.Payslip != nil {
		resp.Payslip = toPayslipResponse(result.Payslip)
	}
	return resp
}

// RegisterRoutes registers payslip endpoints
func (h *PayslipHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payslips := rg.Group("/payslips")
	{
		payslips.GET("/:id", h.GetPayslip)
		payslips.GET("/by-number/:number", h.GetByNumber)
		payslips.GET("/verify/:number", h.Verify)
		payslips.POST("/verify-qr", h.VerifyQR)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("/:id/payslip", h.IssueForPayment)
	}

	periods := rg.Group("/periods")
	{
		periods.POST("/:id/payslips", h.IssueForPeriod)
		periods.GET("/:id/payslips", h.ListByPeriod)
	}

	employees := rg.Group("/employees")
	{
		employees.GET("/:employee_id/payslips", h.ListByEmployee)
	}
}
