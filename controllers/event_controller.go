package controllers

import (
	"context"
	"net/http"
	"time"

	"runclub-backend/errs"
	"runclub-backend/kafka"
	"runclub-backend/middleware"
	"runclub-backend/models"
	"runclub-backend/repository"
	"runclub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventController struct {
	Events        repository.EventRepository
	Registrations repository.RegistrationRepository
	Ledger        repository.TransactionLedger
	Stripe        *services.StripeService
	Producer      *kafka.EventProducer
	Currency      string
	SuccessURL    string
	CancelURL     string
	Logger        *zap.Logger
}

type createEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	Price       int64     `json:"price" binding:"min=0"`
}

// CreateEvent persists the event and hands the push fan-out to the queue.
// The creation result never depends on the publish outcome.
func (ec *EventController) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	createdBy, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid user ID"))
		return
	}

	event := &models.ClubEvent{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Price:       req.Price,
		CreatedBy:   createdBy,
	}

	if err := ec.Events.Create(c.Request.Context(), event); err != nil {
		ec.Logger.Error("Failed to create event", zap.Error(err))
		errs.Respond(c, errs.Internal("failed to create event"))
		return
	}

	if err := ec.Producer.SendEventCreated(context.Background(), models.EventCreatedMessage{
		EventID:   event.ID.String(),
		Title:     event.Title,
		Location:  event.Location,
		StartsAt:  event.StartsAt,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		// The event exists either way; the fan-out is best-effort.
		ec.Logger.Warn("event_created publish failed, push dispatch skipped",
			zap.String("event_id", event.ID.String()),
		)
	}

	c.JSON(http.StatusCreated, event)
}

func (ec *EventController) ListEvents(c *gin.Context) {
	events, err := ec.Events.FindAll(c.Request.Context())
	if err != nil {
		ec.Logger.Error("Failed to list events", zap.Error(err))
		errs.Respond(c, errs.Internal("failed to list events"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (ec *EventController) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid event ID"))
		return
	}
	event, err := ec.Events.FindByID(c.Request.Context(), id)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Register creates a member registration and, for paid events, a checkout
// session plus the matching ledger attempt.
func (ec *EventController) Register(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid event ID"))
		return
	}
	memberID, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid user ID"))
		return
	}

	ctx := c.Request.Context()
	event, err := ec.Events.FindByID(ctx, eventID)
	if err != nil {
		errs.Respond(c, err)
		return
	}

	if _, err := ec.Registrations.FindRegistration(ctx, eventID, memberID); err == nil {
		errs.Respond(c, errs.InvalidState("already registered for this event"))
		return
	}

	status := models.PaymentPending
	if event.Price == 0 {
		status = models.PaymentPaid
	}
	reg := &models.EventRegistration{
		EventID:       eventID,
		MemberID:      memberID,
		PaymentStatus: status,
	}
	if err := ec.Registrations.CreateRegistration(ctx, reg); err != nil {
		ec.Logger.Error("Failed to create registration", zap.Error(err))
		errs.Respond(c, errs.Internal("failed to create registration"))
		return
	}

	if event.Price == 0 {
		c.JSON(http.StatusCreated, gin.H{"registration": reg})
		return
	}

	sess, err := ec.Stripe.CreateCheckoutSession(
		event.Price, ec.Currency,
		eventID.String(), memberID.String(), string(models.PayerMember),
		event.Title, ec.SuccessURL, ec.CancelURL,
	)
	if err != nil {
		ec.Logger.Error("Checkout session creation failed",
			zap.String("event_id", eventID.String()),
			zap.Error(err),
		)
		errs.Respond(c, errs.ProcessorError("failed to create checkout session"))
		return
	}

	if _, err := ec.Ledger.RecordAttempt(ctx, eventID, models.MemberPayer(memberID), event.Price, ec.Currency, sess.ID); err != nil {
		ec.Logger.Error("Failed to record payment attempt",
			zap.String("event_id", eventID.String()),
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		errs.Respond(c, errs.Internal("failed to record payment attempt"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"registration": reg, "checkout_url": sess.URL})
}

type createAttendeeRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
}

// CreateAttendee adds a guest to an event's roster, payment pending.
func (ec *EventController) CreateAttendee(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid event ID"))
		return
	}

	var req createAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if _, err := ec.Events.FindByID(ctx, eventID); err != nil {
		errs.Respond(c, err)
		return
	}

	att := &models.Attendee{
		EventID:       eventID,
		Name:          req.Name,
		Contact:       req.Contact,
		PaymentStatus: models.PaymentPending,
		Status:        models.AttendeePending,
	}
	if err := ec.Registrations.CreateAttendee(ctx, att); err != nil {
		ec.Logger.Error("Failed to create attendee", zap.Error(err))
		errs.Respond(c, errs.Internal("failed to create attendee"))
		return
	}

	c.JSON(http.StatusCreated, att)
}

// CheckIn flips an attendee's check-in state. Payment state is untouched;
// staff can check in an unpaid guest.
func (ec *EventController) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid attendee ID"))
		return
	}

	att, err := ec.Registrations.CheckInAttendee(c.Request.Context(), id)
	if err != nil {
		errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, att)
}
