package services

import (
	"context"
	"encoding/json"
	"errors"

	"runclub-backend/errs"
	"runclub-backend/repository"

	"go.uber.org/zap"
)

// PushMessage is one logical notification fanned out to every stored
// subscription.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// DispatchResult aggregates the fan-out: a partial failure never bubbles up
// as an error, only the counts tell the story.
type DispatchResult struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Pruned    int `json:"pruned"`
}

type DispatchService interface {
	Dispatch(ctx context.Context, msg PushMessage) (*DispatchResult, error)
}

type dispatchService struct {
	subs      repository.SubscriptionRepository
	transport PushTransport
	logger    *zap.Logger
}

func NewDispatchService(subs repository.SubscriptionRepository, transport PushTransport, logger *zap.Logger) DispatchService {
	return &dispatchService{subs: subs, transport: transport, logger: logger}
}

// Dispatch fans msg out to every stored subscription. Each delivery fails or
// succeeds on its own: a gone endpoint is pruned from the store, any other
// failure is logged and counted. Only being unable to read the store at all
// is a hard error.
func (s *dispatchService) Dispatch(ctx context.Context, msg PushMessage) (*DispatchResult, error) {
	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to read push subscriptions", zap.Error(err))
		return nil, errs.Internal("failed to read push subscriptions").Wrap(err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, errs.Internal("failed to encode push payload").Wrap(err)
	}

	result := &DispatchResult{}
	for i := range subs {
		sub := &subs[i]
		err := s.transport.Send(ctx, sub, payload)
		switch {
		case err == nil:
			result.Delivered++
		case errors.Is(err, ErrEndpointGone):
			// Self-healing cleanup: the push service told us this endpoint
			// is dead for good.
			if rmErr := s.subs.Remove(ctx, sub.UserID, sub.Endpoint); rmErr != nil {
				s.logger.Warn("Failed to prune gone subscription",
					zap.String("endpoint", sub.Endpoint),
					zap.Error(rmErr),
				)
			}
			result.Pruned++
		default:
			s.logger.Warn("Push delivery failed",
				zap.String("endpoint", sub.Endpoint),
				zap.String("user_id", sub.UserID.String()),
				zap.Error(err),
			)
			result.Failed++
		}
	}

	s.logger.Info("Push dispatch finished",
		zap.String("title", msg.Title),
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed),
		zap.Int("pruned", result.Pruned),
	)
	return result, nil
}
