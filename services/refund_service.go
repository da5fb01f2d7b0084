package services

import (
	"context"

	"runclub-backend/errs"
	"runclub-backend/models"
	"runclub-backend/queue"
	"runclub-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefundResult is the caller-visible outcome of a refund. Warning is set to
// errs.WarnReconciliationPending when the processor refunded the money but
// one of the local writes failed and was queued for retry.
type RefundResult struct {
	RefundID string
	Status   string
	Warning  string
}

// RefundService drives a refund across the payment processor, the
// transaction ledger and the registration projection. No distributed
// transaction exists across the three, so the sequence is a best-effort
// saga: the processor call always comes first, then ledger, then
// projection, so the source of truth is never behind its projection.
type RefundService interface {
	Refund(ctx context.Context, transactionID uuid.UUID, reason string) (*RefundResult, *errs.Error)
}

type refundService struct {
	ledger    repository.TransactionLedger
	processor PaymentProcessor
	projector ProjectionService
	queue     queue.ReconcileQueue
	logger    *zap.Logger
}

func NewRefundService(
	ledger repository.TransactionLedger,
	processor PaymentProcessor,
	projector ProjectionService,
	q queue.ReconcileQueue,
	logger *zap.Logger,
) RefundService {
	return &refundService{
		ledger:    ledger,
		processor: processor,
		projector: projector,
		queue:     q,
		logger:    logger,
	}
}

func (s *refundService) Refund(ctx context.Context, transactionID uuid.UUID, reason string) (*RefundResult, *errs.Error) {
	tx, err := s.ledger.FindByID(ctx, transactionID)
	if err != nil {
		if errs.HasCode(err, errs.CodeNotFound) {
			return nil, errs.NotFound("transaction not found")
		}
		s.logger.Error("Failed to load transaction", zap.String("transaction_id", transactionID.String()), zap.Error(err))
		return nil, errs.Internal("failed to load transaction")
	}

	// Fast reject before touching the processor. The authoritative guard is
	// still the conditional write in MarkRefunded.
	if tx.Status != models.TxSucceeded {
		return nil, errs.InvalidState("transaction is " + tx.Status + ", only succeeded transactions can be refunded")
	}

	outcome, err := s.processor.Refund(ctx, tx.StripePaymentID, reason)
	if err != nil {
		// No money moved, nothing local changed. Safe to report outright failure.
		s.logger.Error("Processor refund failed",
			zap.String("transaction_id", transactionID.String()),
			zap.String("processor_ref", tx.StripePaymentID),
			zap.Error(err),
		)
		return nil, errs.ProcessorError("payment processor refund failed").Wrap(err)
	}

	result := &RefundResult{RefundID: outcome.ID, Status: outcome.Status}
	payer := tx.Payer()

	// Money has moved. From here on, nothing is allowed to turn into a
	// caller-visible failure: a failed local write becomes a queued
	// reconciliation task plus a warning on the success payload.
	if err := s.ledger.MarkRefunded(ctx, tx.ID, reason); err != nil {
		if errs.HasCode(err, errs.CodeInvalidState) {
			// A concurrent reconciliation already flipped the row; the ledger
			// is terminal, carry on to the projection.
			s.logger.Warn("Ledger already refunded", zap.String("transaction_id", tx.ID.String()))
		} else {
			s.logger.Error("Ledger refund write failed after processor success",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err),
			)
			s.enqueueReconcile(ctx, tx, payer, reason, false)
			result.Warning = errs.WarnReconciliationPending
			return result, nil
		}
	}

	if err := s.projector.Project(ctx, tx.EventID, payer, models.PaymentRefunded); err != nil {
		s.enqueueReconcile(ctx, tx, payer, reason, true)
		result.Warning = errs.WarnReconciliationPending
		return result, nil
	}

	s.logger.Info("Refund completed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("refund_id", outcome.ID),
		zap.String("reason", reason),
	)
	return result, nil
}

func (s *refundService) enqueueReconcile(ctx context.Context, tx *models.PaymentTransaction, payer models.Payer, reason string, ledgerDone bool) {
	task := queue.ReconcileTask{
		TransactionID: tx.ID,
		EventID:       tx.EventID,
		PayerKind:     payer.Kind,
		PayerID:       payer.ID,
		Reason:        reason,
		LedgerDone:    ledgerDone,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// Last resort: the task is lost from the queue, so the log line is
		// what an operator reconciles from.
		s.logger.Error("Failed to enqueue reconciliation task",
			zap.String("transaction_id", tx.ID.String()),
			zap.Bool("ledger_done", ledgerDone),
			zap.Error(err),
		)
	}
}
