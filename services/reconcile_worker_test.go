package services_test

import (
	"context"
	"errors"
	"testing"

	"runclub-backend/errs"
	"runclub-backend/models"
	"runclub-backend/queue"
	"runclub-backend/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newWorker(ledger *mockLedger, proj *mockProjector, q *mockQueue) *services.ReconcileWorker {
	logger, _ := zap.NewDevelopment()
	return services.NewReconcileWorker(q, ledger, proj, logger)
}

func reconcileTask(ledgerDone bool) queue.ReconcileTask {
	return queue.ReconcileTask{
		TransactionID: uuid.New(),
		EventID:       uuid.New(),
		PayerKind:     models.PayerMember,
		PayerID:       uuid.New(),
		Reason:        "requested_by_customer",
		LedgerDone:    ledgerDone,
	}
}

func TestProcessTask_RetriesBothSteps(t *testing.T) {
	ledger := &mockLedger{}
	proj := &mockProjector{}
	q := &mockQueue{}
	w := newWorker(ledger, proj, q)

	task := reconcileTask(false)
	w.ProcessTask(context.Background(), task)

	assert.Equal(t, 1, ledger.refundCalls)
	assert.Equal(t, task.TransactionID, ledger.refundedID)
	assert.Equal(t, 1, proj.calls)
	assert.Equal(t, models.PaymentRefunded, proj.status)
	assert.Empty(t, q.tasks)
}

func TestProcessTask_AlreadyRefundedLedgerIsDone(t *testing.T) {
	ledger := &mockLedger{markRefundedErr: errs.InvalidState("transaction is refunded")}
	proj := &mockProjector{}
	q := &mockQueue{}
	w := newWorker(ledger, proj, q)

	w.ProcessTask(context.Background(), reconcileTask(false))

	assert.Equal(t, 1, proj.calls)
	assert.Empty(t, q.tasks)
}

func TestProcessTask_MissingTransactionIsDropped(t *testing.T) {
	ledger := &mockLedger{markRefundedErr: errs.NotFound("transaction not found")}
	proj := &mockProjector{}
	q := &mockQueue{}
	w := newWorker(ledger, proj, q)

	w.ProcessTask(context.Background(), reconcileTask(false))

	assert.Equal(t, 0, proj.calls)
	assert.Empty(t, q.tasks)
}

func TestProcessTask_LedgerFailureRequeues(t *testing.T) {
	ledger := &mockLedger{markRefundedErr: errors.New("storage unavailable")}
	proj := &mockProjector{}
	q := &mockQueue{}
	w := newWorker(ledger, proj, q)

	w.ProcessTask(context.Background(), reconcileTask(false))

	assert.Equal(t, 0, proj.calls)
	if assert.Len(t, q.tasks, 1) {
		assert.Equal(t, 1, q.tasks[0].Attempts)
		assert.False(t, q.tasks[0].LedgerDone)
	}
}

func TestProcessTask_ProjectionFailureRequeuesWithLedgerDone(t *testing.T) {
	ledger := &mockLedger{}
	proj := &mockProjector{err: errors.New("storage unavailable")}
	q := &mockQueue{}
	w := newWorker(ledger, proj, q)

	w.ProcessTask(context.Background(), reconcileTask(true))

	assert.Equal(t, 0, ledger.refundCalls)
	if assert.Len(t, q.tasks, 1) {
		assert.True(t, q.tasks[0].LedgerDone)
	}
}

func TestProcessTask_ExhaustedAttemptsAreParked(t *testing.T) {
	ledger := &mockLedger{markRefundedErr: errors.New("storage unavailable")}
	q := &mockQueue{}
	w := newWorker(ledger, &mockProjector{}, q)

	task := reconcileTask(false)
	task.Attempts = 9
	w.ProcessTask(context.Background(), task)

	// Dropped for manual intervention, not requeued forever.
	assert.Empty(t, q.tasks)
}
