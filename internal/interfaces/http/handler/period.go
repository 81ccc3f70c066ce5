package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
)

// PeriodHandler handles payroll period lifecycle endpoints
type PeriodHandler struct {
	BaseHandler
	service *payrollapp.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(service *payrollapp.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// PeriodResponse represents a payroll period in API responses
type PeriodResponse struct {
	ID                 string     `json:"id"`
	PeriodNumber       string     `json:"period_number"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	TimekeepingCutoff  time.Time  `json:"timekeeping_cutoff"`
	PayDate            time.Time  `json:"pay_date"`
	Status             string     `json:"status"`
	TotalGross         float64    `json:"total_gross"`
	TotalDeductions    float64    `json:"total_deductions"`
	TotalNet           float64    `json:"total_net"`
	EmployeesProcessed int        `json:"employees_processed"`
	EmployeesFailed    int        `json:"employees_failed"`
	ExceptionsCount    int        `json:"exceptions_count"`
	TimekeepingLocked  bool       `json:"timekeeping_locked"`
	LeaveLocked        bool       `json:"leave_locked"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	SubmittedBy        *string    `json:"submitted_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	ApprovedBy         *string    `json:"approved_by,omitempty"`
	FinalizedAt        *time.Time `json:"finalized_at,omitempty"`
	FinalizedBy        *string    `json:"finalized_by,omitempty"`
	LockedAt           *time.Time `json:"locked_at,omitempty"`
	LockedBy           *string    `json:"locked_by,omitempty"`
	UnlockedAt         *time.Time `json:"unlocked_at,omitempty"`
	UnlockedBy         *string    `json:"unlocked_by,omitempty"`
	UnlockReason       string     `json:"unlock_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Version            int        `json:"version"`
}

// ApprovalHistoryResponse represents one approval trail entry
type ApprovalHistoryResponse struct {
	ID              string    `json:"id"`
	PeriodID        string    `json:"period_id"`
	Action          string    `json:"action"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	ActorID         string    `json:"actor_id"`
	ActorRole       string    `json:"actor_role"`
	Comments        string    `json:"comments,omitempty"`
	TotalGross      float64   `json:"total_gross"`
	TotalDeductions float64   `json:"total_deductions"`
	TotalNet        float64   `json:"total_net"`
	EmployeeCount   int       `json:"employee_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// PeriodTransitionRequest carries the optional or mandatory comment on a
// lifecycle transition. Rejections and unlocks require one; the state
// machine enforces that.
type PeriodTransitionRequest struct {
	Comments string `json:"comments"`
}

// PeriodListFilter represents filter parameters for the period list
type PeriodListFilter struct {
	Status   string `form:"status"`
	Year     int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Handlers =====================

// CreatePeriod creates a payroll period
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	var req payrollapp.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.ActorID = actorID
	req.ActorRole = getActorRole(c)

	period, err := h.service.CreatePeriod(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toPeriodResponse(period))
}

// ListPeriods lists payroll periods with filters
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	var filter PeriodListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	periodFilter := payroll.PeriodFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		periodFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		periodFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := payroll.PeriodStatus(filter.Status)
		periodFilter.Status = &status
	}
	if filter.Year > 0 {
		year := filter.Year
		periodFilter.Year = &year
	}
	if t, err := time.Parse("2006-01-02", filter.FromDate); filter.FromDate != "" && err == nil {
		periodFilter.FromDate = &t
	}
	if t, err := time.Parse("2006-01-02", filter.ToDate); filter.ToDate != "" && err == nil {
		end := t.Add(24*time.Hour - time.Second)
		periodFilter.ToDate = &end
	}

	page, err := h.service.ListPeriods(c.Request.Context(), periodFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]PeriodResponse, len(page.Items))
	for i := range page.Items {
		response[i] = toPeriodResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// GetPeriod returns a payroll period by ID
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	period, err := h.service.GetPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPeriodResponse(period))
}

// GetHistory returns the approval trail for a period
func (h *PeriodHandler) GetHistory(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	entries, err := h.service.History(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]ApprovalHistoryResponse, len(entries))
	for i, e := range entries {
		response[i] = ApprovalHistoryResponse{
			ID:              e.ID.String(),
			PeriodID:        e.PeriodID.String(),
			Action:          e.Action,
			FromStatus:      string(e.FromStatus),
			ToStatus:        string(e.ToStatus),
			ActorID:         e.ActorID.String(),
			ActorRole:       string(e.ActorRole),
			Comments:        e.Comments,
			TotalGross:      decimalFloat(e.TotalGross),
			TotalDeductions: decimalFloat(e.TotalDeductions),
			TotalNet:        decimalFloat(e.TotalNet),
			EmployeeCount:   e.EmployeeCount,
			CreatedAt:       e.CreatedAt,
		}
	}
	h.Success(c, response)
}

// SubmitPeriod submits a calculated period for review
func (h *PeriodHandler) SubmitPeriod(c *gin.Context) {
	h.transition(c, h.service.SubmitForReview)
}

// ApprovePeriod approves a period under review
func (h *PeriodHandler) ApprovePeriod(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// RejectPeriod sends a period back to draft with a reason
func (h *PeriodHandler) RejectPeriod(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// FinalizePeriod finalizes an approved period
func (h *PeriodHandler) FinalizePeriod(c *gin.Context) {
	h.transition(c, h.service.Finalize)
}

// LockPeriod locks a finalized period for disbursement
func (h *PeriodHandler) LockPeriod(c *gin.Context) {
	h.transition(c, h.service.Lock)
}

// UnlockPeriod reopens a locked period; admin only, reason required
func (h *PeriodHandler) UnlockPeriod(c *gin.Context) {
	h.transition(c, h.service.Unlock)
}

// CompletePeriod closes out a locked period after settlement
func (h *PeriodHandler) CompletePeriod(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *PeriodHandler) transition(c *gin.Context, fn func(ctx context.Context, req payrollapp.TransitionRequest) (*payroll.PayrollPeriod, error)) {
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

	var req PeriodTransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	period, err := fn(c.Request.Context(), payrollapp.TransitionRequest{
		PeriodID:  periodID,
		ActorID:   actorID,
		ActorRole: getActorRole(c),
		Comments:  req.Comments,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPeriodResponse(period))
}

func toPeriodResponse(p *payroll.PayrollPeriod) PeriodResponse {
	return PeriodResponse{
		ID:                 p.ID.String(),
		PeriodNumber:       p.PeriodNumber,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		TimekeepingCutoff:  p.TimekeepingCutoff,
		PayDate:            p.PayDate,
		Status:             string(p.Status),
		TotalGross:         decimalFloat(p.TotalGross),
		TotalDeductions:    decimalFloat(p.TotalDeductions),
		TotalNet:           decimalFloat(p.TotalNet),
		EmployeesProcessed: p.EmployeesProcessed,
		EmployeesFailed:    p.EmployeesFailed,
		ExceptionsCount:    p.ExceptionsCount,
		TimekeepingLocked:  p.TimekeepingDataLocked,
		LeaveLocked:        p.LeaveDataLocked,
		SubmittedAt:        p.SubmittedAt,
		SubmittedBy:        uuidPtrString(p.SubmittedBy),
		ApprovedAt:         p.ApprovedAt,
		ApprovedBy:         uuidPtrString(p.ApprovedBy),
		FinalizedAt:        p.FinalizedAt,
		FinalizedBy:        uuidPtrString(p.FinalizedBy),
		LockedAt:           p.LockedAt,
		LockedBy:           uuidPtrString(p.LockedBy),
		UnlockedAt:         p.UnlockedAt,
		UnlockedBy:         uuidPtrString(p.UnlockedBy),
		UnlockReason:       p.UnlockReason,
		CompletedAt:        p.CompletedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Version:            p.Version,
	}
}

// RegisterRoutes registers all period lifecycle routes
func (h *PeriodHandler) RegisterRoutes(rg *gin.RouterGroup) {
	periods := rg.Group("/periods")
	{
		periods.GET("", h.ListPeriods)
		periods.GET("/:id", h.GetPeriod)
		periods.GET("/:id/history", h.GetHistory)
		periods.POST("", h.CreatePeriod)
		periods.POST("/:id/submit", h.SubmitPeriod)
		periods.POST("/:id/approve", h.ApprovePeriod)
		periods.POST("/:id/reject", h.RejectPeriod)
		periods.POST("/:id/finalize", h.FinalizePeriod)
		periods.POST("/:id/lock", h.LockPeriod)
		periods.POST("/:id/unlock", h.UnlockPeriod)
		periods.POST("/:id/complete", h.CompletePeriod)
	}
}
