package disbursement

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suweldo/payroll-backend/internal/domain/disbursement"
	"github.com/suweldo/payroll-backend/internal/domain/payroll"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/domain/shared/valueobject"
	"github.com/suweldo/payroll-backend/internal/infrastructure/telemetry"
)

// BankBatchService builds per-bank upload files from pending bank payments
// and drives them through validation, submission and bank acknowledgement.
type BankBatchService struct {
	batchRepo   disbursement.BankBatchRepository
	paymentRepo disbursement.PaymentRepository
	methodRepo  disbursement.MethodRepository
	profileRepo payroll.ProfileRepository
	auditRepo   disbursement.AuditLogRepository
	files       FileStore
	publisher   EventPublisher
	clock       shared.Clock
	logger      *zap.Logger
	// Key for revealing bank account ciphertext during file rendering
	encryptionKey string
}

// NewBankBatchService creates a new BankBatchService
func NewBankBatchService(
	batchRepo disbursement.BankBatchRepository,
	paymentRepo disbursement.PaymentRepository,
	methodRepo disbursement.MethodRepository,
	profileRepo payroll.ProfileRepository,
	auditRepo disbursement.AuditLogRepository,
	files FileStore,
	publisher EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
	encryptionKey string,
) *BankBatchService {
	return &BankBatchService{
		batchRepo:     batchRepo,
		paymentRepo:   paymentRepo,
		methodRepo:    methodRepo,
		profileRepo:   profileRepo,
		auditRepo:     auditRepo,
		files:         files,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
		encryptionKey: encryptionKey,
	}
}

// BuildBatchesResult summarizes batch construction for a period
type BuildBatchesResult struct {
	PeriodID uuid.UUID                    `json:"period_id"`
	Batches  []*disbursement.BankFileBatch `json:"batches"`
}

// BuildBatches groups a period's pending bank payments by method, renders a
// file per group, and assigns the payments to their batch. Payments already
// assigned to a batch are not picked up again.
func (s *BankBatchService) BuildBatches(ctx context.Context, periodID, actorID uuid.UUID) (*BuildBatchesResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_batch", "build")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriodID, periodID.String())

	now := s.clock.Now()

	pending := disbursement.PaymentStatusPending
	payments, err := s.paymentRepo.FindByPeriod(ctx, periodID, disbursement.PaymentFilter{Status: &pending})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load pending payments: %w", err)
	}

	byMethod := make(map[uuid.UUID][]*disbursement.PayrollPayment)
	for i := range payments {
		p := &payments[i]
		if p.BatchID != nil {
			continue
		}
		byMethod[p.MethodID] = append(byMethod[p.MethodID], p)
	}

	result := &BuildBatchesResult{PeriodID: periodID}
	for methodID, group := range byMethod {
		method, err := s.methodRepo.FindByID(ctx, methodID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load method: %w", err)
		}
		if method == nil || method.MethodType != disbursement.MethodTypeBank {
			continue
		}

		batch, err := s.buildBatch(ctx, periodID, method, group, actorID, now)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		result.Batches = append(result.Batches, batch)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBatchID, fmt.Sprintf("%d batches", len(result.Batches)))
	return result, nil
}

func (s *BankBatchService) buildBatch(ctx context.Context, periodID uuid.UUID, method *disbursement.PaymentMethod, group []*disbursement.PayrollPayment, actorID uuid.UUID, now time.Time) (*disbursement.BankFileBatch, error) {
	batch, err := disbursement.NewBankFileBatch(
		s.generateBatchNumber(method.BankCode, now), periodID, method.ID, method.BankCode, now)
	if err != nil {
		return nil, err
	}

	for _, p := range group {
		if err := batch.AddPayment(p.NetPay, now); err != nil {
			return nil, err
		}
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	for _, p := range group {
		observed := p.Version
		if err := p.AssignToBatch(batch.ID, now); err != nil {
			return nil, err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, p, observed); err != nil {
			return nil, fmt.Errorf("failed to assign payment to batch: %w", err)
		}
	}

	if err := s.generateFile(ctx, batch, method, group, now); err != nil {
		return nil, err
	}
	s.audit(ctx, batch.ID, actorID, "batch_created", "", now)

	s.logger.Info("bank batch built",
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("bank_code", batch.BankCode),
		zap.Int("payments", batch.PaymentCount),
		zap.String("total", batch.TotalAmount.String()))
	return batch, nil
}

// generateFile renders the upload file, hashes it, pushes it to storage and
// records the artifact on the batch.
func (s *BankBatchService) generateFile(ctx context.Context, batch *disbursement.BankFileBatch, method *disbursement.PaymentMethod, group []*disbursement.PayrollPayment, now time.Time) error {
	data, err := s.renderCSV(ctx, group)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(data)
	fileHash := hex.EncodeToString(hash[:])
	format := method.FileFormat
	if format == "" {
		format = "csv"
	}
	fileName := fmt.Sprintf("%s.%s", batch.BatchNumber, format)
	storageKey := fmt.Sprintf("bank-files/%s/%s", now.Format("2006/01"), fileName)

	if err := s.files.Put(ctx, storageKey, data, "text/csv"); err != nil {
		return fmt.Errorf("failed to store bank file: %w", err)
	}
	if err := batch.RecordFileGenerated(fileName, format, fileHash, storageKey, now); err != nil {
		return err
	}
	return s.batchRepo.Save(ctx, batch)
}

// renderCSV lays out one row per payment: employee number, account number,
// amount, payment number. Account numbers come out of the encrypted profile
// store only for this rendering path.
func (s *BankBatchService) renderCSV(ctx context.Context, group []*disbursement.PayrollPayment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"employee_number", "account_number", "amount", "payment_number"}); err != nil {
		return nil, err
	}

	for _, p := range group {
		account, err := s.revealAccount(ctx, p.EmployeeID)
		if err != nil {
			return nil, err
		}
		if err := w.Write([]string{
			p.EmployeeNumber,
			account,
			p.NetPay.StringFixed(2),
			p.PaymentNumber,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *BankBatchService) revealAccount(ctx context.Context, employeeID uuid.UUID) (string, error) {
	profile, err := s.profileRepo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || profile.BankAccountCiphertext == "" {
		return "", shared.NewDomainError("MISSING_BANK_ACCOUNT",
			fmt.Sprintf("Employee %s has no bank account on file", employeeID))
	}
	enc := valueobject.EncryptedStringFromStored(profile.BankAccountCiphertext, profile.BankAccountLastFour)
	account, err := enc.Reveal(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt bank account: %w", err)
	}
	return account, nil
}

// GetBatch loads a batch by ID
func (s *BankBatchService) GetBatch(ctx context.Context, id uuid.UUID) (*disbursement.BankFileBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, shared.NewDomainError("BATCH_NOT_FOUND", "Bank batch not found")
	}
	return batch, nil
}

// ListByPeriod lists bank batches for a period
func (s *BankBatchService) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]disbursement.BankFileBatch, error) {
	return s.batchRepo.FindByPeriod(ctx, periodID)
}

// DownloadFile fetches the rendered upload file and re-verifies its hash
func (s *BankBatchService) DownloadFile(ctx context.Context, batchID uuid.UUID) ([]byte, string, error) {
	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return nil, "", err
	}
	if batch.StorageKey == "" {
		return nil, "", shared.NewDomainError("INVALID_STATE", "Batch has no generated file")
	}
	data, err := s.files.Get(ctx, batch.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch bank file: %w", err)
	}
	hash := sha256.Sum256(data)
	if hex.EncodeToString(hash[:]) != batch.FileHash {
		return nil, "", shared.NewDomainError("INTEGRITY_VIOLATION", "Stored bank file does not match its recorded hash")
	}
	return data, batch.FileName, nil
}

// Validate marks the generated file as checked by a second set of eyes
func (s *BankBatchService) Validate(ctx context.Context, batchID, actorID uuid.UUID) (*disbursement.BankFileBatch, error) {
	return s.transition(ctx, batchID, actorID, "batch_validated", func(b *disbursement.BankFileBatch, now time.Time) error {
		return b.MarkValidated(actorID, now)
	})
}

// Submit hands the validated file to the bank and moves its payments into
// processing
func (s *BankBatchService) Submit(ctx context.Context, batchID, actorID uuid.UUID) (*disbursement.BankFileBatch, error) {
	batch, err := s.transition(ctx, batchID, actorID, "batch_submitted", func(b *disbursement.BankFileBatch, now time.Time) error {
		return b.Submit(actorID, now)
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.forEachBatchPayment(ctx, batch.ID, func(p *disbursement.PayrollPayment) error {
		return p.StartProcessing(now)
	}); err != nil {
		return nil, err
	}
	return batch, nil
}

// Confirm records the bank's acknowledgement and settles the batch payments
func (s *BankBatchService) Confirm(ctx context.Context, batchID, actorID uuid.UUID, bankReference string) (*disbursement.BankFileBatch, error) {
	batch, err := s.transition(ctx, batchID, actorID, "batch_confirmed", func(b *disbursement.BankFileBatch, now time.Time) error {
		return b.Confirm(bankReference, now)
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.forEachBatchPayment(ctx, batch.ID, func(p *disbursement.PayrollPayment) error {
		err := p.MarkAsPaid(bankReference, "", now)
		if err == nil {
			telemetry.RecordPaymentTransition(ctx, string(disbursement.MethodTypeBank), string(p.Status))
		}
		return err
	}); err != nil {
		return nil, err
	}
	return batch, nil
}

// Reject records a bank rejection and fails the batch payments, putting them
// on the retry path
func (s *BankBatchService) Reject(ctx context.Context, batchID, actorID uuid.UUID, reason string) (*disbursement.BankFileBatch, error) {
	batch, err := s.transition(ctx, batchID, actorID, "batch_rejected", func(b *disbursement.BankFileBatch, now time.Time) error {
		return b.RecordRejection(reason, now)
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.forEachBatchPayment(ctx, batch.ID, func(p *disbursement.PayrollPayment) error {
		err := p.MarkAsFailed(reason, "", now)
		if err == nil {
			telemetry.RecordPaymentTransition(ctx, string(disbursement.MethodTypeBank), string(p.Status))
		}
		return err
	}); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *BankBatchService) transition(ctx context.Context, batchID, actorID uuid.UUID, action string, fn func(*disbursement.BankFileBatch, time.Time) error) (*disbursement.BankFileBatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_batch", strings.TrimPrefix(action, "batch_"))
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBatchID, batchID.String())

	now := s.clock.Now()

	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observed := batch.Version
	if err := fn(batch, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.batchRepo.SaveWithLock(ctx, batch, observed); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}
	s.audit(ctx, batch.ID, actorID, action, string(batch.Status), now)
	s.publishBatchEvents(ctx, batch)

	s.logger.Info("bank batch transitioned",
		zap.String("batch_id", batch.ID.String()),
		zap.String("action", action),
		zap.String("status", string(batch.Status)))
	return batch, nil
}

func (s *BankBatchService) forEachBatchPayment(ctx context.Context, batchID uuid.UUID, fn func(*disbursement.PayrollPayment) error) error {
	payments, err := s.paymentRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch payments: %w", err)
	}
	for i := range payments {
		p := &payments[i]
		observed := p.Version
		if err := fn(p); err != nil {
			return err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, p, observed); err != nil {
			return fmt.Errorf("failed to save batch payment: %w", err)
		}
	}
	return nil
}

func (s *BankBatchService) audit(ctx context.Context, batchID, actorID uuid.UUID, action, remarks string, now time.Time) {
	entry, err := disbursement.NewPaymentAuditLog(
		disbursement.AuditEntityBankBatch, batchID, actorID, action, nil, nil, remarks, now)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry", zap.Error(err))
	}
}

func (s *BankBatchService) publishBatchEvents(ctx context.Context, batch *disbursement.BankFileBatch) {
	events := batch.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish batch events",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err))
	}
	batch.ClearDomainEvents()
}

func (s *BankBatchService) generateBatchNumber(bankCode string, now time.Time) string {
	return fmt.Sprintf("BF-%s-%s-%s", bankCode, now.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}
