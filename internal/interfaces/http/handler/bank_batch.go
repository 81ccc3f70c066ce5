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

// BankBatchHandler handles bank transfer file batch endpoints
type BankBatchHandler struct {
	BaseHandler
	service *disbapp.BankBatchService
}

// NewBankBatchHandler creates a new BankBatchHandler
func NewBankBatchHandler(service *disbapp.BankBatchService) *BankBatchHandler {
	return &BankBatchHandler{service: service}
}

// ===================== Request/Response DTOs =====================

// BankBatchResponse represents a bank file batch in API responses
type BankBatchResponse struct {
	ID              string     `json:"id"`
	BatchNumber     string     `json:"batch_number"`
	PeriodID        string     `json:"period_id"`
	MethodID        string     `json:"method_id"`
	BankCode        string     `json:"bank_code"`
	PaymentCount    int        `json:"payment_count"`
	TotalAmount     float64    `json:"total_amount"`
	Status          string     `json:"status"`
	FileName        string     `json:"file_name,omitempty"`
	FileFormat      string     `json:"file_format,omitempty"`
	FileHash        string     `json:"file_hash,omitempty"`
	IsValidated     bool       `json:"is_validated"`
	GeneratedAt     *time.Time `json:"generated_at,omitempty"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty"`
	ValidatedBy     *string    `json:"validated_by,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	SubmittedBy     *string    `json:"submitted_by,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	BankReference   string     `json:"bank_reference,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// BuildBatchesResponse returns the batches built for a period
type BuildBatchesResponse struct {
	PeriodID string              `json:"period_id"`
	Batches  []BankBatchResponse `json:"batches"`
}

// ConfirmBatchRequest carries the bank acknowledgement reference
type ConfirmBatchRequest struct {
	BankReference string `json:"bank_reference" binding:"required"`
}

// RejectBatchRequest carries the bank rejection reason
type RejectBatchRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ===================== Handlers =====================

// BuildBatches groups a period's pending bank payments per bank and renders
// the transfer files
func (h *BankBatchHandler) BuildBatches(c *gin.Context) {
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

	result, err := h.service.BuildBatches(c.Request.Context(), periodID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	batches := make([]BankBatchResponse, len(result.Batches))
	for i, batch := range result.Batches {
		batches[i] = toBankBatchResponse(batch)
	}
	h.Created(c, BuildBatchesResponse{
		PeriodID: result.PeriodID.String(),
		Batches:  batches,
	})
}

// GetBatch returns a bank batch by ID
func (h *BankBatchHandler) GetBatch(c *gin.Context) {
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
	h.Success(c, toBankBatchResponse(batch))
}

// ListBatches lists a period's bank batches
func (h *BankBatchHandler) ListBatches(c *gin.Context) {
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

	response := make([]BankBatchResponse, len(batches))
	for i := range batches {
		response[i] = toBankBatchResponse(&batches[i])
	}
	h.Success(c, response)
}

// DownloadFile streams the generated transfer file
func (h *BankBatchHandler) DownloadFile(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return
	}

	data, fileName, err := h.service.DownloadFile(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ValidateBatch records the pre-submission validation check
func (h *BankBatchHandler) ValidateBatch(c *gin.Context) {
	h.batchAction(c, h.service.Validate)
}

// SubmitBatch marks a validated batch as submitted to the bank
func (h *BankBatchHandler) SubmitBatch(c *gin.Context) {
	h.batchAction(c, h.service.Submit)
}

// ConfirmBatch settles a submitted batch on bank acknowledgement
func (h *BankBatchHandler) ConfirmBatch(c *gin.Context) {
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

	var req ConfirmBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	batch, err := h.service.Confirm(c.Request.Context(), batchID, actorID, req.BankReference)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toBankBatchResponse(batch))
}

// RejectBatch fails a submitted batch back for correction
func (h *BankBatchHandler) RejectBatch(c *gin.Context) {
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

	var req RejectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	batch, err := h.service.Reject(c.Request.Context(), batchID, actorID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toBankBatchResponse(batch))
}

func (h *BankBatchHandler) batchAction(c *gin.Context, fn func(ctx context.Context, batchID, actorID uuid.UUID) (*disbursement.BankFileBatch, error)) {
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
	h.Success(c, toBankBatchResponse(batch))
}

func toBankBatchResponse(b *disbursement.BankFileBatch) BankBatchResponse {
	return BankBatchResponse{
		ID:              b.ID.String(),
		BatchNumber:     b.BatchNumber,
		PeriodID:        b.PeriodID.String(),
		MethodID:        b.MethodID.String(),
		BankCode:        b.BankCode,
		PaymentCount:    b.PaymentCount,
		TotalAmount:     decimalFloat(b.TotalAmount),
		Status:          string(b.Status),
		FileName:        b.FileName,
		FileFormat:      b.FileFormat,
		FileHash:        b.FileHash,
		IsValidated:     b.IsValidated,
		GeneratedAt:     b.GeneratedAt,
		ValidatedAt:     b.ValidatedAt,
		ValidatedBy:     uuidPtrString(b.ValidatedBy),
		SubmittedAt:     b.SubmittedAt,
		SubmittedBy:     uuidPtrString(b.SubmittedBy),
		ConfirmedAt:     b.ConfirmedAt,
		BankReference:   b.BankReference,
		RejectionReason: b.RejectionReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.Version,
	}
}

// RegisterRoutes registers bank batch routes
func (h *BankBatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/bank-batches")
	{
		batches.GET("/:id", h.GetBatch)
		batches.GET("/:id/file", h.DownloadFile)
		batches.POST("/:id/validate", h.ValidateBatch)
		batches.POST("/:id/submit", h.SubmitBatch)
		batches.POST("/:id/confirm", h.ConfirmBatch)
		batches.POST("/:id/reject", h.RejectBatch)
	}

	periods := rg.Group("/periods")
	{
		periods.GET("/:id/bank-batches", h.ListBatches)
		periods.POST("/:id/bank-batches", h.BuildBatches)
	}
}
