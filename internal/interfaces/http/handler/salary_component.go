package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
)

// SalaryComponentHandler handles the pay/deduction component catalog
type SalaryComponentHandler struct {
	BaseHandler
	service *payrollapp.SalaryComponentService
}

// NewSalaryComponentHandler creates a new SalaryComponentHandler
func NewSalaryComponentHandler(service *payrollapp.SalaryComponentService) *SalaryComponentHandler {
	return &SalaryComponentHandler{service: service}
}

// SalaryComponentResponse represents a catalog component in API responses
type SalaryComponentResponse struct {
	ID                   string    `json:"id"`
	Code                 string    `json:"code"`
	Name                 string    `json:"name"`
	ComponentType        string    `json:"component_type"`
	CalcMethod           string    `json:"calc_method"`
	Amount               float64   `json:"amount"`
	Percentage           float64   `json:"percentage"`
	ReferenceComponentID *string   `json:"reference_component_id,omitempty"`
	OTCategory           string    `json:"ot_category,omitempty"`
	Taxable              bool      `json:"taxable"`
	DeMinimis            bool      `json:"de_minimis"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CreateComponent adds a component to the catalog
func (h *SalaryComponentHandler) CreateComponent(c *gin.Context) {
	var req payrollapp.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	component, err := h.service.CreateComponent(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toComponentResponse(component))
}

// GetComponent returns a component by ID
func (h *SalaryComponentHandler) GetComponent(c *gin.Context) {
	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid component ID")
		return
	}

	component, err := h.service.GetComponent(c.Request.Context(), componentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toComponentResponse(component))
}

// GetByCode returns a component by its unique code
func (h *SalaryComponentHandler) GetByCode(c *gin.Context) {
	component, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toComponentResponse(component))
}

// ListComponents lists the active catalog
func (h *SalaryComponentHandler) ListComponents(c *gin.Context) {
	components, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]SalaryComponentResponse, len(components))
	for i := range components {
		response[i] = toComponentResponse(&components[i])
	}
	h.Success(c, response)
}

// DeactivateComponent retires a component from the catalog
func (h *SalaryComponentHandler) DeactivateComponent(c *gin.Context) {
	componentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid component ID")
		return
	}

	component, err := h.service.DeactivateComponent(c.Request.Context(), componentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toComponentResponse(component))
}

func toComponentResponse(sc *payroll.SalaryComponent) SalaryComponentResponse {
	return SalaryComponentResponse{
		ID:                   sc.ID.String(),
		Code:                 sc.Code,
		Name:                 sc.Name,
		ComponentType:        string(sc.ComponentType),
		CalcMethod:           string(sc.CalcMethod),
		Amount:               decimalFloat(sc.Amount),
		Percentage:           decimalFloat(sc.Percentage),
		ReferenceComponentID: uuidPtrString(sc.ReferenceComponentID),
		OTCategory:           string(sc.OTCategory),
		Taxable:              sc.Taxable,
		DeMinimis:            sc.DeMinimis,
		Active:               sc.Active,
		CreatedAt:            sc.CreatedAt,
		UpdatedAt:            sc.UpdatedAt,
	}
}

// RegisterRoutes registers component catalog routes
func (h *SalaryComponentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	components := rg.Group("/salary-components")
	{
		components.GET("", h.ListComponents)
		components.GET("/:id", h.GetComponent)
		components.GET("/by-code/:code", h.GetByCode)
		components.POST("", h.CreateComponent)
		components.POST("/:id/deactivate", h.DeactivateComponent)
	}
}
