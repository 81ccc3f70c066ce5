package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// AdjustmentHandler handles post-calculation correction endpoints
type AdjustmentHandler struct {
	BaseHandler
	service *payrollapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(service *payrollapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// AdjustmentResponse represents a payroll adjustment in API responses
type AdjustmentResponse struct {
	ID                   string     `json:"id"`
	PeriodID             string     `json:"period_id"`
	CalculationID        string     `json:"calculation_id"`
	EmployeeID           string     `json:"employee_id"`
	Type                 string     `json:"type"`
	Amount               float64    `json:"amount"`
	OriginalAmount       float64    `json:"original_amount"`
	AdjustedAmount       float64    `json:"adjusted_amount"`
	Reason               string     `json:"reason"`
	Status               string     `json:"status"`
	RequestedBy          string     `json:"requested_by"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	ApprovedBy           *string    `json:"approved_by,omitempty"`
	RejectedAt           *time.Time `json:"rejected_at,omitempty"`
	RejectedBy           *string    `json:"rejected_by,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	AppliedAt            *time.Time `json:"applied_at,omitempty"`
	AppliedCalculationID *string    `json:"applied_calculation_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Version              int        `json:"version"`
}

// ApplyAdjustmentResponse carries the adjustment and the calculation version
// it produced
type ApplyAdjustmentResponse struct {
	Adjustment  AdjustmentResponse  `json:"adjustment"`
	Calculation CalculationResponse `json:"calculation"`
}

// RejectAdjustmentRequest carries the mandatory rejection reason
type RejectAdjustmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdjustmentListFilter represents filter parameters for the adjustment list
type AdjustmentListFilter struct {
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Handlers =====================

// ProposeAdjustment proposes a correction against a calculation
func (h *AdjustmentHandler) ProposeAdjustment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	var req payrollapp.ProposeAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.RequestedBy = actorID

	adjustment, err := h.service.ProposeAdjustment(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toAdjustmentResponse(adjustment))
}

// ApproveAdjustment approves a pending adjustment
func (h *AdjustmentHandler) ApproveAdjustment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid adjustment ID")
		return
	}

	adjustment, err := h.service.ApproveAdjustment(c.Request.Context(), adjustmentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toAdjustmentResponse(adjustment))
}

// RejectAdjustment rejects a pending adjustment with a reason
func (h *AdjustmentHandler) RejectAdjustment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid adjustment ID")
		return
	}

	var req RejectAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	adjustment, err := h.service.RejectAdjustment(c.Request.Context(), adjustmentID, actorID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toAdjustmentResponse(adjustment))
}

// ApplyAdjustment folds an approved adjustment into the calculation chain
func (h *AdjustmentHandler) ApplyAdjustment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	adjustmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid adjustment ID")
		return
	}

	result, err := h.service.ApplyAdjustment(c.Request.Context(), adjustmentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ApplyAdjustmentResponse{
		Adjustment:  toAdjustmentResponse(result.Adjustment),
		Calculation: toCalculationResponse(result.NewCalculation),
	})
}

// ListAdjustments lists adjustments for a period
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	var filter AdjustmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	adjFilter := payroll.AdjustmentFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		adjFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		adjFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := payroll.AdjustmentStatus(filter.Status)
		adjFilter.Status = &status
	}
	if filter.EmployeeID != "" {
		employeeID, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
			return
		}
		adjFilter.EmployeeID = &employeeID
	}

	adjustments, err := h.service.ListByPeriod(c.Request.Context(), periodID, adjFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		response[i] = toAdjustmentResponse(&adjustments[i])
	}
	h.Success(c, response)
}

func toAdjustmentResponse(a *payroll.PayrollAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:                   a.ID.String(),
		PeriodID:             a.PeriodID.String(),
		CalculationID:        a.CalculationID.String(),
		EmployeeID:           a.EmployeeID.String(),
		Type:                 string(a.Type),
		Amount:               decimalFloat(a.Amount),
		OriginalAmount:       decimalFloat(a.OriginalAmount),
		AdjustedAmount:       decimalFloat(a.AdjustedAmount),
		Reason:               a.Reason,
		Status:               string(a.Status),
		RequestedBy:          a.RequestedBy.String(),
		ApprovedAt:           a.ApprovedAt,
		ApprovedBy:           uuidPtrString(a.ApprovedBy),
		RejectedAt:           a.RejectedAt,
		RejectedBy:           uuidPtrString(a.RejectedBy),
		RejectionReason:      a.RejectionReason,
		AppliedAt:            a.AppliedAt,
		AppliedCalculationID: uuidPtrString(a.AppliedCalculationID),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
		Version:              a.Version,
	}
}

// RegisterRoutes registers adjustment routes
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adjustments := rg.Group("/adjustments")
	{
		adjustments.POST("", h.ProposeAdjustment)
		adjustments.POST("/:id/approve", h.ApproveAdjustment)
		adjustments.POST("/:id/reject", h.RejectAdjustment)
		adjustments.POST("/:id/apply", h.ApplyAdjustment)
	}

	rg.GET("/periods/:id/adjustments", h.ListAdjustments)
}
