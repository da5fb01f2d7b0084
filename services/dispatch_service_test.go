package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"runclub-backend/models"
	"runclub-backend/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// ---- mock subscription repository ----

type mockSubRepo struct {
	subs    []models.PushSubscription
	listErr error

	removed   []string // endpoints
	removeErr error
}

func (m *mockSubRepo) Upsert(_ context.Context, _ uuid.UUID, _ string, _ models.SubscriptionKeys) error {
	return nil
}
func (m *mockSubRepo) Remove(_ context.Context, _ uuid.UUID, endpoint string) error {
	m.removed = append(m.removed, endpoint)
	return m.removeErr
}
func (m *mockSubRepo) Exists(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}
func (m *mockSubRepo) ListAll(_ context.Context) ([]models.PushSubscription, error) {
	return m.subs, m.listErr
}

// ---- mock transport ----

type mockTransport struct {
	// errByEndpoint maps an endpoint to the error its delivery returns.
	errByEndpoint map[string]error
	sent          []string
}

func (m *mockTransport) Send(_ context.Context, sub *models.PushSubscription, _ []byte) error {
	m.sent = append(m.sent, sub.Endpoint)
	return m.errByEndpoint[sub.Endpoint]
}

// ---- helpers ----

func makeSubs(n int) []models.PushSubscription {
	subs := make([]models.PushSubscription, 0, n)
	for i := 1; i <= n; i++ {
		subs = append(subs, models.PushSubscription{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Endpoint: fmt.Sprintf("https://push.example/%d", i),
			P256dh:   "p256dh-key",
			Auth:     "auth-key",
		})
	}
	return subs
}

func newDispatchService(repo *mockSubRepo, transport *mockTransport) services.DispatchService {
	logger, _ := zap.NewDevelopment()
	return services.NewDispatchService(repo, transport, logger)
}

// ---- tests ----

func TestDispatch_AllDelivered(t *testing.T) {
	repo := &mockSubRepo{subs: makeSubs(3)}
	transport := &mockTransport{}
	svc := newDispatchService(repo, transport)

	result, err := svc.Dispatch(context.Background(), services.PushMessage{Title: "New event"})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Delivered)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Pruned)
	assert.Len(t, transport.sent, 3)
}

func TestDispatch_GoneEndpointIsPruned(t *testing.T) {
	subs := makeSubs(5)
	repo := &mockSubRepo{subs: subs}
	transport := &mockTransport{
		errByEndpoint: map[string]error{
			subs[2].Endpoint: services.ErrEndpointGone,
		},
	}
	svc := newDispatchService(repo, transport)

	result, err := svc.Dispatch(context.Background(), services.PushMessage{Title: "New event"})

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Delivered)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Pruned)
	assert.Equal(t, []string{subs[2].Endpoint}, repo.removed)
	// All five endpoints were attempted; the gone one did not abort the rest.
	assert.Len(t, transport.sent, 5)
}

func TestDispatch_TransientFailureIsIsolated(t *testing.T) {
	subs := makeSubs(3)
	repo := &mockSubRepo{subs: subs}
	transport := &mockTransport{
		errByEndpoint: map[string]error{
			subs[0].Endpoint: errors.New("push service responded 500"),
		},
	}
	svc := newDispatchService(repo, transport)

	result, err := svc.Dispatch(context.Background(), services.PushMessage{Title: "New event"})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Pruned)
	assert.Empty(t, repo.removed)
}

func TestDispatch_StoreReadFailureIsHard(t *testing.T) {
	repo := &mockSubRepo{listErr: errors.New("connection refused")}
	svc := newDispatchService(repo, &mockTransport{})

	result, err := svc.Dispatch(context.Background(), services.PushMessage{Title: "New event"})

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestDispatch_PruneFailureStillCounts(t *testing.T) {
	subs := makeSubs(2)
	repo := &mockSubRepo{subs: subs, removeErr: errors.New("storage unavailable")}
	transport := &mockTransport{
		errByEndpoint: map[string]error{
			subs[1].Endpoint: services.ErrEndpointGone,
		},
	}
	svc := newDispatchService(repo, transport)

	result, err := svc.Dispatch(context.Background(), services.PushMessage{Title: "New event"})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 1, result.Pruned)
}
