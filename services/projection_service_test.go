package services_test

import (
	"context"
	"errors"
	"testing"

	"runclub-backend/models"
	"runclub-backend/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockRegistrationRepo struct {
	memberCalls   int
	attendeeCalls int
	lastEventID   uuid.UUID
	lastPayerID   uuid.UUID
	lastStatus    string
	updateErr     error
}

func (m *mockRegistrationRepo) CreateRegistration(_ context.Context, _ *models.EventRegistration) error {
	return nil
}
func (m *mockRegistrationRepo) FindRegistration(_ context.Context, _, _ uuid.UUID) (*models.EventRegistration, error) {
	return nil, nil
}
func (m *mockRegistrationRepo) UpdateMemberPaymentStatus(_ context.Context, eventID, memberID uuid.UUID, status string) error {
	m.memberCalls++
	m.lastEventID = eventID
	m.lastPayerID = memberID
	m.lastStatus = status
	return m.updateErr
}
func (m *mockRegistrationRepo) CreateAttendee(_ context.Context, _ *models.Attendee) error { return nil }
func (m *mockRegistrationRepo) FindAttendeeByID(_ context.Context, _ uuid.UUID) (*models.Attendee, error) {
	return nil, nil
}
func (m *mockRegistrationRepo) UpdateAttendeePaymentStatus(_ context.Context, eventID, attendeeID uuid.UUID, status string) error {
	m.attendeeCalls++
	m.lastEventID = eventID
	m.lastPayerID = attendeeID
	m.lastStatus = status
	return m.updateErr
}
func (m *mockRegistrationRepo) CheckInAttendee(_ context.Context, _ uuid.UUID) (*models.Attendee, error) {
	return nil, nil
}

func newProjector(repo *mockRegistrationRepo) services.ProjectionService {
	logger, _ := zap.NewDevelopment()
	return services.NewProjectionService(repo, logger)
}

func TestProject_MemberTouchesOnlyRegistrations(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newProjector(repo)

	eventID, memberID := uuid.New(), uuid.New()
	err := svc.Project(context.Background(), eventID, models.MemberPayer(memberID), models.PaymentRefunded)

	assert.NoError(t, err)
	assert.Equal(t, 1, repo.memberCalls)
	assert.Equal(t, 0, repo.attendeeCalls)
	assert.Equal(t, eventID, repo.lastEventID)
	assert.Equal(t, memberID, repo.lastPayerID)
	assert.Equal(t, models.PaymentRefunded, repo.lastStatus)
}

func TestProject_GuestTouchesOnlyAttendees(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newProjector(repo)

	eventID, attendeeID := uuid.New(), uuid.New()
	err := svc.Project(context.Background(), eventID, models.GuestPayer(attendeeID), models.PaymentPaid)

	assert.NoError(t, err)
	assert.Equal(t, 0, repo.memberCalls)
	assert.Equal(t, 1, repo.attendeeCalls)
	assert.Equal(t, models.PaymentPaid, repo.lastStatus)
}

func TestProject_LastWriteWins(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newProjector(repo)

	eventID, memberID := uuid.New(), uuid.New()
	payer := models.MemberPayer(memberID)

	assert.NoError(t, svc.Project(context.Background(), eventID, payer, models.PaymentPaid))
	assert.NoError(t, svc.Project(context.Background(), eventID, payer, models.PaymentRefunded))

	assert.Equal(t, 2, repo.memberCalls)
	assert.Equal(t, models.PaymentRefunded, repo.lastStatus)
}

func TestProject_ErrorPropagates(t *testing.T) {
	repo := &mockRegistrationRepo{updateErr: errors.New("storage unavailable")}
	svc := newProjector(repo)

	err := svc.Project(context.Background(), uuid.New(), models.MemberPayer(uuid.New()), models.PaymentRefunded)
	assert.Error(t, err)
}
