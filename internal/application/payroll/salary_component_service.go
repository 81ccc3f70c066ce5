package payroll

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// SalaryComponentService manages the catalog of named pay and deduction
// components that profiles reference.
type SalaryComponentService struct {
	componentRepo payroll.SalaryComponentRepository
	clock         shared.Clock
	logger        *zap.Logger
}

// NewSalaryComponentService creates a new SalaryComponentService
func NewSalaryComponentService(
	componentRepo payroll.SalaryComponentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *SalaryComponentService {
	return &SalaryComponentService{
		componentRepo: componentRepo,
		clock:         clock,
		logger:        logger,
	}
}

// CreateComponentRequest carries a new catalog component
type CreateComponentRequest struct {
	Code                 string                    `json:"code" binding:"required"`
	Name                 string                    `json:"name" binding:"required"`
	ComponentType        payroll.ComponentType     `json:"component_type" binding:"required"`
	CalcMethod           payroll.CalculationMethod `json:"calc_method" binding:"required"`
	Amount               decimal.Decimal           `json:"amount"`
	Percentage           decimal.Decimal           `json:"percentage"`
	ReferenceComponentID *uuid.UUID                `json:"reference_component_id"`
	OTCategory           payroll.OvertimeCategory  `json:"ot_category"`
	Taxable              *bool                     `json:"taxable"`
	DeMinimis            bool                      `json:"de_minimis"`
}

// CreateComponent adds a component to the catalog. Codes are unique; a
// duplicate code fails.
func (s *SalaryComponentService) CreateComponent(ctx context.Context, req CreateComponentRequest) (*payroll.SalaryComponent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary_component", "create")
	defer span.End()

	existing, err := s.componentRepo.FindByCode(ctx, req.Code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check existing component: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("COMPONENT_EXISTS", "A component with this code already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	component, err := payroll.NewSalaryComponent(req.Code, req.Name, req.ComponentType, req.CalcMethod, s.clock.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	component.Amount = req.Amount
	component.Percentage = req.Percentage
	component.ReferenceComponentID = req.ReferenceComponentID
	component.OTCategory = req.OTCategory
	component.DeMinimis = req.DeMinimis
	if req.Taxable != nil {
		component.Taxable = *req.Taxable
	}

	if err := s.componentRepo.Save(ctx, component); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save component: %w", err)
	}

	s.logger.Info("salary component created",
		zap.String("component_id", component.ID.String()),
		zap.String("code", component.Code),
		zap.String("method", string(component.CalcMethod)))
	return component, nil
}

// GetComponent returns a component by ID
func (s *SalaryComponentService) GetComponent(ctx context.Context, id uuid.UUID) (*payroll.SalaryComponent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary_component", "get")
	defer span.End()

	component, err := s.componentRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load component: %w", err)
	}
	if component == nil {
		err := shared.NewDomainError("COMPONENT_NOT_FOUND", "Salary component not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	return component, nil
}

// GetByCode returns a component by its unique code
func (s *SalaryComponentService) GetByCode(ctx context.Context, code string) (*payroll.SalaryComponent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary_component", "get_by_code")
	defer span.End()

	component, err := s.componentRepo.FindByCode(ctx, code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load component: %w", err)
	}
	if component == nil {
		err := shared.NewDomainError("COMPONENT_NOT_FOUND", "Salary component not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	return component, nil
}

// ListActive returns the active catalog
func (s *SalaryComponentService) ListActive(ctx context.Context) ([]payroll.SalaryComponent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary_component", "list_active")
	defer span.End()

	components, err := s.componentRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return components, nil
}

// DeactivateComponent retires a component. Existing allowance assignments
// keep their copied attributes; new grants against the code are refused.
func (s *SalaryComponentService) DeactivateComponent(ctx context.Context, id uuid.UUID) (*payroll.SalaryComponent, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "salary_component", "deactivate")
	defer span.End()

	component, err := s.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	component.Deactivate(s.clock.Now())

	if err := s.componentRepo.Save(ctx, component); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save component: %w", err)
	}

	s.logger.Info("salary component deactivated", zap.String("code", component.Code))
	return component, nil
}
