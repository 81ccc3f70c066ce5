package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/dto"
)

// ProfileHandler handles employee payroll profile endpoints
type ProfileHandler struct {
	BaseHandler
	service *payrollapp.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service *payrollapp.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// ProfileResponse represents an employee payroll profile. Bank accounts only
// ever leave the API masked.
type ProfileResponse struct {
	ID                string              `json:"id"`
	EmployeeID        string              `json:"employee_id"`
	EmployeeNumber    string              `json:"employee_number"`
	SalaryType        string              `json:"salary_type"`
	MonthlySalary     float64             `json:"monthly_salary"`
	DailyRate         float64             `json:"daily_rate"`
	HourlyRate        float64             `json:"hourly_rate"`
	PaymentMethodID   *string             `json:"payment_method_id,omitempty"`
	BankAccountMasked string              `json:"bank_account_masked,omitempty"`
	TaxExempt         bool                `json:"tax_exempt"`
	Active            bool                `json:"active"`
	Allowances        []AllowanceResponse `json:"allowances,omitempty"`
	Deductions        []DeductionResponse `json:"deductions,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// AllowanceResponse represents one recurring allowance grant
type AllowanceResponse struct {
	ID            string     `json:"id"`
	ComponentID   string     `json:"component_id"`
	ComponentCode string     `json:"component_code"`
	Amount        float64    `json:"amount"`
	Taxable       bool       `json:"taxable"`
	DeMinimis     bool       `json:"de_minimis"`
	EffectiveDate time.Time  `json:"effective_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// DeductionResponse represents one recurring employee-level deduction
type DeductionResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Description   string     `json:"description"`
	Amount        float64    `json:"amount"`
	EffectiveDate time.Time  `json:"effective_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// ===================== Handlers =====================

// CreateProfile registers payroll inputs for an employee
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req payrollapp.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toProfileResponse(profile))
}

// GetProfile returns a profile by ID
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// GetByEmployee returns the profile for an employee
func (h *ProfileHandler) GetByEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employee_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid employee ID")
		return
	}

	profile, err := h.service.GetByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// ListProfiles lists active profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	filter := list.ToFilter()

	profiles, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]ProfileResponse, len(profiles))
	for i := range profiles {
		response[i] = toProfileResponse(&profiles[i])
	}
	h.Success(c, response)
}

// SetRates updates the base rates for a profile
func (h *ProfileHandler) SetRates(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	var req payrollapp.SetRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.service.SetRates(c.Request.Context(), profileID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// SetDisbursement updates the payment method and bank account
func (h *ProfileHandler) SetDisbursement(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	var req payrollapp.SetDisbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.service.SetDisbursement(c.Request.Context(), profileID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// AddAllowance grants a catalog component to an employee
func (h *ProfileHandler) AddAllowance(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	var req payrollapp.AddAllowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.service.AddAllowance(c.Request.Context(), profileID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// AddDeduction attaches a recurring deduction to a profile
func (h *ProfileHandler) AddDeduction(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	var req payrollapp.AddDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.service.AddDeduction(c.Request.Context(), profileID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// DeactivateProfile removes a profile from future payroll runs
func (h *ProfileHandler) DeactivateProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID")
		return
	}

	profile, err := h.service.Deactivate(c.Request.Context(), profileID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

func toProfileResponse(p *payroll.EmployeePayrollProfile) ProfileResponse {
	masked := ""
	if p.BankAccountLastFour != "" {
		masked = "****" + p.BankAccountLastFour
	}
	allowances := make([]AllowanceResponse, len(p.Allowances))
	for i, a := range p.Allowances {
		allowances[i] = AllowanceResponse{
			ID:            a.ID.String(),
			ComponentID:   a.ComponentID.String(),
			ComponentCode: a.ComponentCode,
			Amount:        decimalFloat(a.Amount),
			Taxable:       a.Taxable,
			DeMinimis:     a.DeMinimis,
			EffectiveDate: a.EffectiveDate,
			EndDate:       a.EndDate,
		}
	}
	deductions := make([]DeductionResponse, len(p.Deductions))
	for i, d := range p.Deductions {
		deductions[i] = DeductionResponse{
			ID:            d.ID.String(),
			Kind:          string(d.Kind),
			Description:   d.Description,
			Amount:        decimalFloat(d.Amount),
			EffectiveDate: d.EffectiveDate,
			EndDate:       d.EndDate,
		}
	}
	return ProfileResponse{
		ID:                p.ID.String(),
		EmployeeID:        p.EmployeeID.String(),
		EmployeeNumber:    p.EmployeeNumber,
		SalaryType:        string(p.SalaryType),
		MonthlySalary:     decimalFloat(p.MonthlySalary),
		DailyRate:         decimalFloat(p.DailyRate),
		HourlyRate:        decimalFloat(p.HourlyRate),
		PaymentMethodID:   uuidPtrString(p.PaymentMethodID),
		BankAccountMasked: masked,
		TaxExempt:         p.TaxExempt,
		Active:            p.Active,
		Allowances:        allowances,
		Deductions:        deductions,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// RegisterRoutes registers profile routes
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profiles := rg.Group("/profiles")
	{
		profiles.GET("", h.ListProfiles)
		profiles.GET("/:id", h.GetProfile)
		profiles.GET("/by-employee/:employee_id", h.GetByEmployee)
		profiles.POST("", h.CreateProfile)
		profiles.PUT("/:id/rates", h.SetRates)
		profiles.PUT("/:id/disbursement", h.SetDisbursement)
		profiles.POST("/:id/allowances", h.AddAllowance)
		profiles.POST("/:id/deductions", h.AddDeduction)
		profiles.POST("/:id/deactivate", h.DeactivateProfile)
	}
}
