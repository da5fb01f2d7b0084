package services

import (
	"context"
	"time"

	"runclub-backend/errs"
	"runclub-backend/models"
	"runclub-backend/queue"
	"runclub-backend/repository"

	"go.uber.org/zap"
)

const maxReconcileAttempts = 10

// ReconcileWorker drains the reconciliation queue: refunds whose processor
// call succeeded but whose local writes did not all land. It keeps retrying
// until the ledger and the projection agree with the money, parking tasks
// that exhaust their attempts for an operator.
type ReconcileWorker struct {
	queue     queue.ReconcileQueue
	ledger    repository.TransactionLedger
	projector ProjectionService
	logger    *zap.Logger
}

func NewReconcileWorker(q queue.ReconcileQueue, ledger repository.TransactionLedger, projector ProjectionService, logger *zap.Logger) *ReconcileWorker {
	return &ReconcileWorker{queue: q, ledger: ledger, projector: projector, logger: logger}
}

// Start runs the worker loop until ctx is cancelled.
func (w *ReconcileWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("Reconcile worker started")
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Reconcile worker stopping")
				return
			default:
			}

			task, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("Reconcile queue read failed", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if task == nil {
				continue
			}

			w.ProcessTask(ctx, *task)
		}
	}()
}

// ProcessTask retries the outstanding local writes for one refund. An
// InvalidState from the ledger means another writer already flipped the row
// to refunded, which is the state we want.
func (w *ReconcileWorker) ProcessTask(ctx context.Context, task queue.ReconcileTask) {
	if !task.LedgerDone {
		err := w.ledger.MarkRefunded(ctx, task.TransactionID, task.Reason)
		switch {
		case err == nil, errs.HasCode(err, errs.CodeInvalidState):
			task.LedgerDone = true
		case errs.HasCode(err, errs.CodeNotFound):
			w.logger.Error("Reconcile task references missing transaction, dropping",
				zap.String("transaction_id", task.TransactionID.String()),
			)
			return
		default:
			w.logger.Warn("Ledger reconcile write failed",
				zap.String("transaction_id", task.TransactionID.String()),
				zap.Error(err),
			)
			w.requeue(ctx, task)
			return
		}
	}

	if err := w.projector.Project(ctx, task.EventID, task.Payer(), models.PaymentRefunded); err != nil {
		w.requeue(ctx, task)
		return
	}

	w.logger.Info("Refund reconciled",
		zap.String("transaction_id", task.TransactionID.String()),
		zap.Int("attempts", task.Attempts),
	)
}

func (w *ReconcileWorker) requeue(ctx context.Context, task queue.ReconcileTask) {
	task.Attempts++
	if task.Attempts >= maxReconcileAttempts {
		w.logger.Error("Reconcile task exhausted retries, manual intervention required",
			zap.String("transaction_id", task.TransactionID.String()),
			zap.Bool("ledger_done", task.LedgerDone),
			zap.Int("attempts", task.Attempts),
		)
		return
	}
	time.Sleep(time.Duration(task.Attempts) * time.Second)
	if err := w.queue.Enqueue(ctx, task); err != nil {
		w.logger.Error("Failed to requeue reconcile task",
			zap.String("transaction_id", task.TransactionID.String()),
			zap.Error(err),
		)
	}
}
