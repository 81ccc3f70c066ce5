package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/dto"
)

// CalculationHandler handles calculation run and read endpoints
type CalculationHandler struct {
	BaseHandler
	service *payrollapp.CalculationService
}

// NewCalculationHandler creates a new CalculationHandler
func NewCalculationHandler(service *payrollapp.CalculationService) *CalculationHandler {
	return &CalculationHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// CalculationResponse represents one employee calculation version
type CalculationResponse struct {
	ID                string   `json:"id"`
	PeriodID          string   `json:"period_id"`
	EmployeeID        string   `json:"employee_id"`
	EmployeeNumber    string   `json:"employee_number"`
	PreviousVersionID *string  `json:"previous_version_id,omitempty"`
	Status            string   `json:"status"`
	HasException      bool     `json:"has_exception"`
	ExceptionReasons  []string `json:"exception_reasons,omitempty"`
	HasAdjustment     bool     `json:"has_adjustment"`

	Earnings   CalculationEarnings   `json:"earnings"`
	Deductions CalculationDeductions `json:"deductions"`

	NetPay           float64 `json:"net_pay"`
	AdjustmentsTotal float64 `json:"adjustments_total"`
	FinalNetPay      float64 `json:"final_net_pay"`

	LockedAt  *time.Time `json:"locked_at,omitempty"`
	LockedBy  *string    `json:"locked_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CalculationEarnings itemizes the earnings side of a calculation
type CalculationEarnings struct {
	BasicPay            float64 `json:"basic_pay"`
	LeavePay            float64 `json:"leave_pay"`
	OvertimeRegularPay  float64 `json:"overtime_regular_pay"`
	OvertimeRestDayPay  float64 `json:"overtime_rest_day_pay"`
	OvertimeDoublePay   float64 `json:"overtime_double_pay"`
	OvertimeTriplePay   float64 `json:"overtime_triple_pay"`
	TotalOvertimePay    float64 `json:"total_overtime_pay"`
	TaxableAllowances   float64 `json:"taxable_allowances"`
	DeMinimisAllowances float64 `json:"de_minimis_allowances"`
	TotalAllowances     float64 `json:"total_allowances"`
	TotalBonuses        float64 `json:"total_bonuses"`
	GrossPay            float64 `json:"gross_pay"`
}

// CalculationDeductions itemizes the deduction side of a calculation
type CalculationDeductions struct {
	SSS             float64 `json:"sss"`
	PhilHealth      float64 `json:"philhealth"`
	PagIbig         float64 `json:"pagibig"`
	WithholdingTax  float64 `json:"withholding_tax"`
	Loans           float64 `json:"loans"`
	Advances        float64 `json:"advances"`
	Tardiness       float64 `json:"tardiness"`
	Absences        float64 `json:"absences"`
	Other           float64 `json:"other"`
	TotalDeductions float64 `json:"total_deductions"`
}

// CalculationRunResponse summarizes one calculation batch run
type CalculationRunResponse struct {
	PeriodID           string  `json:"period_id"`
	EmployeesProcessed int     `json:"employees_processed"`
	EmployeesFailed    int     `json:"employees_failed"`
	ExceptionsCount    int     `json:"exceptions_count"`
	SkippedLocked      int     `json:"skipped_locked"`
	TotalGross         float64 `json:"total_gross"`
	TotalDeductions    float64 `json:"total_deductions"`
	TotalNet           float64 `json:"total_net"`
}

// CalculationLogResponse represents one engine log line
type CalculationLogResponse struct {
	ID            string    `json:"id"`
	PeriodID      string    `json:"period_id"`
	EmployeeID    *string   `json:"employee_id,omitempty"`
	CalculationID *string   `json:"calculation_id,omitempty"`
	Severity      string    `json:"severity"`
	Step          string    `json:"step"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// CalculationListFilter represents filter parameters for the calculation list
type CalculationListFilter struct {
	Status       string `form:"status"`
	HasException *bool  `form:"has_exception"`
	CurrentOnly  bool   `form:"current_only"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Handlers =====================

// CalculatePeriod runs payroll calculation for every active employee
func (h *CalculationHandler) CalculatePeriod(c *gin.Context) {
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

	result, err := h.service.CalculatePeriod(c.Request.Context(), payrollapp.CalculatePeriodRequest{
		PeriodID: periodID,
		ActorID:  actorID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CalculationRunResponse{
		PeriodID:           result.PeriodID.String(),
		EmployeesProcessed: result.EmployeesProcessed,
		EmployeesFailed:    result.EmployeesFailed,
		ExceptionsCount:    result.ExceptionsCount,
		SkippedLocked:      result.SkippedLocked,
		TotalGross:         decimalFloat(result.TotalGross),
		TotalDeductions:    decimalFloat(result.TotalDeductions),
		TotalNet:           decimalFloat(result.TotalNet),
	})
}

// ListCalculations lists calculations for a period
func (h *CalculationHandler) ListCalculations(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	var filter CalculationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	calcFilter := payroll.CalculationFilter{
		Filter:       shared.DefaultFilter(),
		HasException: filter.HasException,
		CurrentOnly:  filter.CurrentOnly,
	}
	if filter.Page > 0 {
		calcFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		calcFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := payroll.CalculationStatus(filter.Status)
		calcFilter.Status = &status
	}

	page, err := h.service.ListByPeriod(c.Request.Context(), periodID, calcFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]CalculationResponse, len(page.Items))
	for i := range page.Items {
		response[i] = toCalculationResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, response, page.Total, page.Page, page.PageSize)
}

// ListExceptions lists current calculations flagged with exceptions
func (h *CalculationHandler) ListExceptions(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	calcs, err := h.service.ListExceptions(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]CalculationResponse, len(calcs))
	for i := range calcs {
		response[i] = toCalculationResponse(&calcs[i])
	}
	h.Success(c, response)
}

// GetCalculation returns one calculation version by ID
func (h *CalculationHandler) GetCalculation(c *gin.Context) {
	calcID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid calculation ID")
		return
	}

	calc, err := h.service.GetCalculation(c.Request.Context(), calcID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCalculationResponse(calc))
}

// GetVersionChain returns every version of an employee's calculation in a
// period, oldest first
func (h *CalculationHandler) GetVersionChain(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}
	employeeID, err := uuid.Parse(c.Param("employee_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
		return
	}

	chain, err := h.service.VersionChain(c.Request.Context(), periodID, employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]CalculationResponse, len(chain))
	for i := range chain {
		response[i] = toCalculationResponse(&chain[i])
	}
	h.Success(c, response)
}

// GetPeriodLogs returns engine log lines for a period
func (h *CalculationHandler) GetPeriodLogs(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	var list dto.ListRequest
	_ = c.ShouldBindQuery(&list)

	logs, err := h.service.PeriodLogs(c.Request.Context(), periodID, list.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCalculationLogResponses(logs))
}

// GetEmployeeLogs returns engine log lines for one employee in a period
func (h *CalculationHandler) GetEmployeeLogs(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}
	employeeID, err := uuid.Parse(c.Param("employee_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
		return
	}

	logs, err := h.service.EmployeeLogs(c.Request.Context(), periodID, employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCalculationLogResponses(logs))
}

func toCalculationResponse(calc *payroll.EmployeePayrollCalculation) CalculationResponse {
	var reasons []string
	if calc.ExceptionReasons != "" {
		reasons = strings.Split(calc.ExceptionReasons, "\n")
	}
	return CalculationResponse{
		ID:                calc.ID.String(),
		PeriodID:          calc.PeriodID.String(),
		EmployeeID:        calc.EmployeeID.String(),
		EmployeeNumber:    calc.EmployeeNumber,
		PreviousVersionID: uuidPtrString(calc.PreviousVersionID),
		Status:            string(calc.CalculationStatus),
		HasException:      calc.HasException,
		ExceptionReasons:  reasons,
		HasAdjustment:     calc.HasAdjustment,
		Earnings: CalculationEarnings{
			BasicPay:            decimalFloat(calc.BasicPay),
			LeavePay:            decimalFloat(calc.LeavePay),
			OvertimeRegularPay:  decimalFloat(calc.OvertimeRegularPay),
			OvertimeRestDayPay:  decimalFloat(calc.OvertimeRestDayPay),
			OvertimeDoublePay:   decimalFloat(calc.OvertimeDoublePay),
			OvertimeTriplePay:   decimalFloat(calc.OvertimeTriplePay),
			TotalOvertimePay:    decimalFloat(calc.TotalOvertimePay),
			TaxableAllowances:   decimalFloat(calc.TaxableAllowances),
			DeMinimisAllowances: decimalFloat(calc.DeMinimisAllowances),
			TotalAllowances:     decimalFloat(calc.TotalAllowances),
			TotalBonuses:        decimalFloat(calc.TotalBonuses),
			GrossPay:            decimalFloat(calc.GrossPay),
		},
		Deductions: CalculationDeductions{
			SSS:             decimalFloat(calc.SSSContribution),
			PhilHealth:      decimalFloat(calc.PhilHealthContribution),
			PagIbig:         decimalFloat(calc.PagIbigContribution),
			WithholdingTax:  decimalFloat(calc.WithholdingTax),
			Loans:           decimalFloat(calc.LoanDeductions),
			Advances:        decimalFloat(calc.AdvanceDeductions),
			Tardiness:       decimalFloat(calc.TardinessDeduction),
			Absences:        decimalFloat(calc.AbsenceDeduction),
			Other:           decimalFloat(calc.OtherDeductions),
			TotalDeductions: decimalFloat(calc.TotalDeductions),
		},
		NetPay:           decimalFloat(calc.NetPay),
		AdjustmentsTotal: decimalFloat(calc.AdjustmentsTotal),
		FinalNetPay:      decimalFloat(calc.FinalNetPay),
		LockedAt:         calc.LockedAt,
		LockedBy:         uuidPtrString(calc.LockedBy),
		CreatedAt:        calc.CreatedAt,
		UpdatedAt:        calc.UpdatedAt,
		Version:          calc.Version,
	}
}

func toCalculationLogResponses(logs []payroll.PayrollCalculationLog) []CalculationLogResponse {
	response := make([]CalculationLogResponse, len(logs))
	for i, entry := range logs {
		response[i] = CalculationLogResponse{
			ID:            entry.ID.String(),
			PeriodID:      entry.PeriodID.String(),
			EmployeeID:    uuidPtrString(entry.EmployeeID),
			CalculationID: uuidPtrString(entry.CalculationID),
			Severity:      string(entry.Severity),
			Step:          entry.Step,
			Message:       entry.Message,
			CreatedAt:     entry.CreatedAt,
		}
	}
	return response
}

// RegisterRoutes registers calculation routes. Period-scoped reads hang off
// the periods group; direct lookups off /calculations.
func (h *CalculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	periods := rg.Group("/periods")
	{
		periods.POST("/:id/calculate", h.CalculatePeriod)
		periods.GET("/:id/calculations", h.ListCalculations)
		periods.GET("/:id/exceptions", h.ListExceptions)
		periods.GET("/:id/calculations/:employee_id/versions", h.GetVersionChain)
		periods.GET("/:id/logs", h.GetPeriodLogs)
		periods.GET("/:id/calculations/:employee_id/logs", h.GetEmployeeLogs)
	}

	calculations := rg.Group("/calculations")
	{
		calculations.GET("/:id", h.GetCalculation)
	}
}
