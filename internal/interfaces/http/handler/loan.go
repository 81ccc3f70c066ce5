package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	loanapp "github.com/suweldo/payroll-backend/internal/application/loan"
	"github.com/suweldo/payroll-backend/internal/domain/loan"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// LoanHandler handles employee loan endpoints
type LoanHandler struct {
	BaseHandler
	service *loanapp.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(service *loanapp.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// LoanResponse represents an employee loan in API responses
type LoanResponse struct {
	ID                   string     `json:"id"`
	LoanNumber           string     `json:"loan_number"`
	EmployeeID           string     `json:"employee_id"`
	LoanType             string     `json:"loan_type"`
	PrincipalAmount      float64    `json:"principal_amount"`
	TotalLoanAmount      float64    `json:"total_loan_amount"`
	InstallmentAmount    float64    `json:"installment_amount"`
	NumberOfInstallments int        `json:"number_of_installments"`
	InstallmentsPaid     int        `json:"installments_paid"`
	TotalPaid            float64    `json:"total_paid"`
	RemainingBalance     float64    `json:"remaining_balance"`
	Status               string     `json:"status"`
	StartDate            time.Time  `json:"start_date"`
	LastDeductionDate    *time.Time `json:"last_deduction_date,omitempty"`
	CompletionDate       *time.Time `json:"completion_date,omitempty"`
	CompletionReason     string     `json:"completion_reason,omitempty"`
	DefaultedAt          *time.Time `json:"defaulted_at,omitempty"`
	DefaultReason        string     `json:"default_reason,omitempty"`
	WaivedAt             *time.Time `json:"waived_at,omitempty"`
	WaivedBy             *string    `json:"waived_by,omitempty"`
	WaiveReason          string     `json:"waive_reason,omitempty"`
	SuspendedAt          *time.Time `json:"suspended_at,omitempty"`
	SuspendReason        string     `json:"suspend_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Version              int        `json:"version"`
}

// InstallmentResponse represents one scheduled loan installment
type InstallmentResponse struct {
	ID                string     `json:"id"`
	LoanID            string     `json:"loan_id"`
	EmployeeID        string     `json:"employee_id"`
	PeriodID          *string    `json:"period_id,omitempty"`
	InstallmentNumber int        `json:"installment_number"`
	DueDate           time.Time  `json:"due_date"`
	TotalDeduction    float64    `json:"total_deduction"`
	Penalty           float64    `json:"penalty"`
	AmountPaid        float64    `json:"amount_paid"`
	Status            string     `json:"status"`
	DeductedAt        *time.Time `json:"deducted_at,omitempty"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// CreateLoanResponse returns the opened loan and its full schedule
type CreateLoanResponse struct {
	Loan     LoanResponse          `json:"loan"`
	Schedule []InstallmentResponse `json:"schedule"`
}

// LoanReasonRequest carries the reason on suspend and waive operations
type LoanReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LoanListFilter represents filter parameters for the loan list
type LoanListFilter struct {
	EmployeeID string `form:"employee_id"`
	LoanType   string `form:"loan_type"`
	Status     string `form:"status"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PostDeductionsResponse summarizes an installment posting run
type PostDeductionsResponse struct {
	PeriodID           string  `json:"period_id"`
	InstallmentsPosted int     `json:"installments_posted"`
	LoansCompleted     int     `json:"loans_completed"`
	TotalPosted        float64 `json:"total_posted"`
}

// ===================== Handlers =====================

// CreateLoan opens a loan with a level amortization schedule
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req loanapp.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.service.CreateLoan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, CreateLoanResponse{
		Loan:     toLoanResponse(result.Loan),
		Schedule: toInstallmentResponses(result.Schedule),
	})
}

// GetLoan returns a loan by ID
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}

	l, err := h.service.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLoanResponse(l))
}

// ListLoans lists loans with filters
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var filter LoanListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	loanFilter := loan.LoanFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		loanFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		loanFilter.PageSize = filter.PageSize
	}
	if filter.EmployeeID != "" {
		employeeID, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
			return
		}
		loanFilter.EmployeeID = &employeeID
	}
	if filter.LoanType != "" {
		loanType := loan.LoanType(filter.LoanType)
		loanFilter.LoanType = &loanType
	}
	if filter.Status != "" {
		status := loan.LoanStatus(filter.Status)
		loanFilter.Status = &status
	}

	loans, err := h.service.ListLoans(c.Request.Context(), loanFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]LoanResponse, len(loans))
	for i := range loans {
		response[i] = toLoanResponse(&loans[i])
	}
	h.Success(c, response)
}

// GetSchedule returns the installment schedule for a loan
func (h *LoanHandler) GetSchedule(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}

	schedule, err := h.service.Schedule(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toInstallmentResponses(schedule))
}

// SuspendLoan pauses deductions on an active loan
func (h *LoanHandler) SuspendLoan(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}

	var req LoanReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	l, err := h.service.Suspend(c.Request.Context(), loanID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLoanResponse(l))
}

// ResumeLoan reactivates a suspended loan
func (h *LoanHandler) ResumeLoan(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}

	l, err := h.service.Resume(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLoanResponse(l))
}

// WaiveLoan forgives the remaining balance of a loan
func (h *LoanHandler) WaiveLoan(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid loan ID")
		return
	}

	var req LoanReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	l, err := h.service.Waive(c.Request.Context(), loanID, actorID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toLoanResponse(l))
}

// PostDeductions settles due installments against a locked period
func (h *LoanHandler) PostDeductions(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	result, err := h.service.PostPeriodDeductions(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, PostDeductionsResponse{
		PeriodID:           result.PeriodID.String(),
		InstallmentsPosted: result.InstallmentsPosted,
		LoansCompleted:     result.LoansCompleted,
		TotalPosted:        decimalFloat(result.TotalPosted),
	})
}

func toLoanResponse(l *loan.EmployeeLoan) LoanResponse {
	return LoanResponse{
		ID:                   l.ID.String(),
		LoanNumber:           l.LoanNumber,
		EmployeeID:           l.EmployeeID.String(),
		LoanType:             string(l.LoanType),
		PrincipalAmount:      decimalFloat(l.PrincipalAmount),
		TotalLoanAmount:      decimalFloat(l.TotalLoanAmount),
		InstallmentAmount:    decimalFloat(l.InstallmentAmount),
		NumberOfInstallments: l.NumberOfInstallments,
		InstallmentsPaid:     l.InstallmentsPaid,
		TotalPaid:            decimalFloat(l.TotalPaid),
		RemainingBalance:     decimalFloat(l.RemainingBalance),
		Status:               string(l.Status),
		StartDate:            l.StartDate,
		LastDeductionDate:    l.LastDeductionDate,
		CompletionDate:       l.CompletionDate,
		CompletionReason:     l.CompletionReason,
		DefaultedAt:          l.DefaultedAt,
		DefaultReason:        l.DefaultReason,
		WaivedAt:             l.WaivedAt,
		WaivedBy:             uuidPtrString(l.WaivedBy),
		WaiveReason:          l.WaiveReason,
		SuspendedAt:          l.SuspendedAt,
		SuspendReason:        l.SuspendReason,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
		Version:              l.Version,
	}
}

func toInstallmentResponses(installments []loan.LoanDeduction) []InstallmentResponse {
	response := make([]InstallmentResponse, len(installments))
	for i, d := range installments {
		response[i] = InstallmentResponse{
			ID:                d.ID.String(),
			LoanID:            d.LoanID.String(),
			EmployeeID:        d.EmployeeID.String(),
			PeriodID:          uuidPtrString(d.PeriodID),
			InstallmentNumber: d.InstallmentNumber,
			DueDate:           d.DueDate,
			TotalDeduction:    decimalFloat(d.TotalDeduction),
			Penalty:           decimalFloat(d.Penalty),
			AmountPaid:        decimalFloat(d.AmountPaid),
			Status:            string(d.Status),
			DeductedAt:        d.DeductedAt,
			SettledAt:         d.SettledAt,
			Notes:             d.Notes,
		}
	}
	return response
}

// RegisterRoutes registers loan routes
func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loans := rg.Group("/loans")
	{
		loans.GET("", h.ListLoans)
		loans.GET("/:id", h.GetLoan)
		loans.GET("/:id/schedule", h.GetSchedule)
		loans.POST("", h.CreateLoan)
		loans.POST("/:id/suspend", h.SuspendLoan)
		loans.POST("/:id/resume", h.ResumeLoan)
		loans.POST("/:id/waive", h.WaiveLoan)
	}

	rg.POST("/periods/:id/post-loan-deductions", h.PostDeductions)
}
