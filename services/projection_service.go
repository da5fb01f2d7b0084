package services

import (
	"context"

	"runclub-backend/models"
	"runclub-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectionService keeps the registration/attendee payment_status columns
// in step with the transaction ledger for one (event, payer) pair. The payer
// variant selects which table is touched; never both. Writing the same
// status twice is a no-op.
type ProjectionService interface {
	Project(ctx context.Context, eventID uuid.UUID, payer models.Payer, paymentStatus string) error
}

type projectionService struct {
	repo   repository.RegistrationRepository
	logger *zap.Logger
}

func NewProjectionService(repo repository.RegistrationRepository, logger *zap.Logger) ProjectionService {
	return &projectionService{repo: repo, logger: logger}
}

func (s *projectionService) Project(ctx context.Context, eventID uuid.UUID, payer models.Payer, paymentStatus string) error {
	var err error
	switch payer.Kind {
	case models.PayerMember:
		err = s.repo.UpdateMemberPaymentStatus(ctx, eventID, payer.ID, paymentStatus)
	case models.PayerGuest:
		err = s.repo.UpdateAttendeePaymentStatus(ctx, eventID, payer.ID, paymentStatus)
	}
	if err != nil {
		s.logger.Error("Projection update failed",
			zap.String("event_id", eventID.String()),
			zap.String("payer_kind", string(payer.Kind)),
			zap.String("payer_id", payer.ID.String()),
			zap.String("payment_status", paymentStatus),
			zap.Error(err),
		)
		return err
	}
	return nil
}
