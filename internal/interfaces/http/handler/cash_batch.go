package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	disbapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
)

// CashBatchHandler handles cash envelope distribution endpoints
type CashBatchHandler struct {
	BaseHandler
	service *disbapp.CashBatchService
}

// NewCashBatchHandler creates a new CashBatchHandler
func NewCashBatchHandler(service *disbapp.CashBatchService) *CashBatchHandler {
	return &CashBatchHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// CashBatchResponse represents a cash distribution batch in API responses
type CashBatchResponse struct {
	ID                    string     `json:"id"`
	BatchNumber           string     `json:"batch_number"`
	PeriodID              string     `json:"period_id"`
	MethodID              string     `json:"method_id"`
	EnvelopeCount         int        `json:"envelope_count"`
	TotalAmount           float64    `json:"total_amount"`
	Status                string     `json:"status"`
	CountedBy             *string    `json:"counted_by,omitempty"`
	CountedAt             *time.Time `json:"counted_at,omitempty"`
	WitnessedBy           *string    `json:"witnessed_by,omitempty"`
	WitnessedAt           *time.Time `json:"witnessed_at,omitempty"`
	DistributionStartedAt *time.Time `json:"distribution_started_at,omitempty"`
	ClosedAt              *time.Time `json:"closed_at,omitempty"`
	ClaimedCount          int        `json:"claimed_count"`
	UnclaimedCount        int        `json:"unclaimed_count"`
	UnclaimedDeadline     *time.Time `json:"unclaimed_deadline,omitempty"`
	RedepositReference    string     `json:"redeposit_reference,omitempty"`
	RedepositedAt         *time.Time `json:"redeposited_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Version               int        `json:"version"`
}

// RecordClaimRequest identifies the envelope being claimed
type RecordClaimRequest struct {
	PaymentID uuid.UUID `json:"payment_id" binding:"required"`
}

// CloseCashBatchRequest carries the redeposit slip reference for any
// unclaimed envelopes
type CloseCashBatchRequest struct {
	RedepositReference string `json:"redeposit_reference"`
}

// ===================== Handlers =====================

// BuildBatch groups a period's pending cash payments into one envelope batch
func (h *CashBatchHandler) BuildBatch(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}

	var req disbapp.BuildBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	req.ActorID = actorID

	batch, err := h.service.BuildBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toCashBatchResponse(batch))
}

// GetBatch returns a cash batch by ID
func (h *CashBatchHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCashBatchResponse(batch))
}

// ListBatches lists a period's cash batches
func (h *CashBatchHandler) ListBatches(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid period ID")
		return
	}

	batches, err := h.service.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response := make([]CashBatchResponse, len(batches))
	for i := range batches {
		response[i] = toCashBatchResponse(&batches[i])
	}
	h.Success(c, response)
}

// RecordCount books the counter's envelope verification. The counter and the
// witness must be different people.
func (h *CashBatchHandler) RecordCount(c *gin.Context) {
	h.batchAction(c, h.service.RecordCount)
}

// RecordWitness books the independent witness sign-off
func (h *CashBatchHandler) RecordWitness(c *gin.Context) {
	h.batchAction(c, h.service.RecordWitness)
}

// StartDistribution begins handing out envelopes
func (h *CashBatchHandler) StartDistribution(c *gin.Context) {
	h.batchAction(c, h.service.StartDistribution)
}

// RecordClaim marks one envelope as claimed by its employee
func (h *CashBatchHandler) RecordClaim(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return
	}

	var req RecordClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	payment, err := h.service.RecordClaim(c.Request.Context(), batchID, req.PaymentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// CloseBatch closes a distributed batch, recording the redeposit of any
// unclaimed envelopes
func (h *CashBatchHandler) CloseBatch(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return
	}

	var req CloseCashBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	batch, err := h.service.Close(c.Request.Context(), batchID, actorID, req.RedepositReference)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCashBatchResponse(batch))
}

func (h *CashBatchHandler) batchAction(c *gin.Context, fn func(ctx context.Context, batchID, actorID uuid.UUID) (*disbursement.CashDistributionBatch, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return
	}

	batch, err := fn(c.Request.Context(), batchID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toCashBatchResponse(batch))
}

func toCashBatchResponse(b *disbursement.CashDistributionBatch) CashBatchResponse {
	return CashBatchResponse{
		ID:                    b.ID.String(),
		BatchNumber:           b.BatchNumber,
		PeriodID:              b.PeriodID.String(),
		MethodID:              b.MethodID.String(),
		EnvelopeCount:         b.EnvelopeCount,
		TotalAmount:           decimalFloat(b.TotalAmount),
		Status:                string(b.Status),
		CountedBy:             uuidPtrString(b.CountedBy),
		CountedAt:             b.CountedAt,
		WitnessedBy:           uuidPtrString(b.WitnessedBy),
		WitnessedAt:           b.WitnessedAt,
		DistributionStartedAt: b.DistributionStartedAt,
		ClosedAt:              b.ClosedAt,
		ClaimedCount:          b.ClaimedCount,
		UnclaimedCount:        b.UnclaimedCount,
		UnclaimedDeadline:     b.UnclaimedDeadline,
		RedepositReference:    b.RedepositReference,
		RedepositedAt:         b.RedepositedAt,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
		Version:               b.Version,
	}
}

// RegisterRoutes registers cash batch routes
func (h *CashBatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/cash-batches")
	{
		batches.GET("/:id", h.GetBatch)
		batches.POST("", h.BuildBatch)
		batches.POST("/:id/count", h.RecordCount)
		batches.POST("/:id/witness", h.RecordWitness)
		batches.POST("/:id/start-distribution", h.StartDistribution)
		batches.POST("/:id/claims", h.RecordClaim)
		batches.POST("/:id/close", h.CloseBatch)
	}

	rg.GET("/periods/:id/cash-batches", h.ListBatches)
}
