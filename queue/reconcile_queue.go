package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"runclub-backend/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReconcileTask records the local writes still owed for a refund whose
// processor call already succeeded. Money has moved; these steps must
// eventually land.
type ReconcileTask struct {
	TransactionID uuid.UUID        `json:"transaction_id"`
	EventID       uuid.UUID        `json:"event_id"`
	PayerKind     models.PayerKind `json:"payer_kind"`
	PayerID       uuid.UUID        `json:"payer_id"`
	Reason        string           `json:"reason"`
	LedgerDone    bool             `json:"ledger_done"`
	Attempts      int              `json:"attempts"`
}

// Payer rebuilds the tagged payer variant carried by the task.
func (t ReconcileTask) Payer() models.Payer {
	if t.PayerKind == models.PayerMember {
		return models.MemberPayer(t.PayerID)
	}
	return models.GuestPayer(t.PayerID)
}

type ReconcileQueue interface {
	Enqueue(ctx context.Context, task ReconcileTask) error
	// Dequeue blocks until a task is available or the timeout elapses;
	// a nil task with nil error means the timeout hit.
	Dequeue(ctx context.Context, timeout time.Duration) (*ReconcileTask, error)
}

const reconcileQueueKey = "refund_reconcile:queue"

type redisReconcileQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisReconcileQueue(rdb *redis.Client) ReconcileQueue {
	return &redisReconcileQueue{rdb: rdb, key: reconcileQueueKey}
}

func (q *redisReconcileQueue) Enqueue(ctx context.Context, task ReconcileTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.key, data).Err()
}

func (q *redisReconcileQueue) Dequeue(ctx context.Context, timeout time.Duration) (*ReconcileTask, error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	var task ReconcileTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, err
	}
	return &task, nil
}
