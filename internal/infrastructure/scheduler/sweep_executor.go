package scheduler

import (
	"context"

	"go.uber.org/zap"

	disbursementapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	loanapp "github.com/suweldo/payroll-backend/internal/application/loan"
)

// LoanDefaultSweeper marks stale loans as defaulted
type LoanDefaultSweeper interface {
	SweepDefaults(ctx context.Context, graceDays int) (*loanapp.SweepResult, error)
}

// EnvelopeSweeper flags unclaimed cash envelopes past their deadline
type EnvelopeSweeper interface {
	SweepUnclaimed(ctx context.Context) (*disbursementapp.SweepResult, error)
}

// SweepExecutor dispatches sweep jobs to the owning application services
type SweepExecutor struct {
	loans         LoanDefaultSweeper
	envelopes     EnvelopeSweeper
	loanGraceDays int
	logger        *zap.Logger
}

// NewSweepExecutor creates a new SweepExecutor
func NewSweepExecutor(loans LoanDefaultSweeper, envelopes EnvelopeSweeper, loanGraceDays int, logger *zap.Logger) *SweepExecutor {
	return &SweepExecutor{
		loans:         loans,
		envelopes:     envelopes,
		loanGraceDays: loanGraceDays,
		logger:        logger,
	}
}

// Execute runs the sweep named by the job
func (e *SweepExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.SweepType {
	case SweepTypeLoanDefaults:
		result, err := e.loans.SweepDefaults(ctx, e.loanGraceDays)
		if err != nil {
			return err
		}
		e.logger.Info("Loan default sweep finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("loans_defaulted", result.LoansDefaulted),
		)
		return nil
	case SweepTypeUnclaimedEnvelopes:
		result, err := e.envelopes.SweepUnclaimed(ctx)
		if err != nil {
			return err
		}
		e.logger.Info("Unclaimed envelope sweep finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("batches_swept", result.BatchesSwept),
			zap.Int("envelopes_unclaimed", result.EnvelopesUnclaimed),
		)
		return nil
	}
	return ErrInvalidSweepType
}
