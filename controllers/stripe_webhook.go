package controllers

import (
	"encoding/json"
	"net/http"

	"runclub-backend/errs"
	"runclub-backend/models"
	"runclub-backend/repository"
	"runclub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// WebhookController is the processor's success callback path: Stripe tells
// us a payment completed, we flip the ledger and project the paid status.
type WebhookController struct {
	Stripe    *services.StripeService
	Ledger    repository.TransactionLedger
	Projector services.ProjectionService
	Logger    *zap.Logger
}

// StripeWebhook receives and dispatches Stripe webhook events.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		wc.Logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	wc.Logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
			break
		}
		wc.handleSucceeded(c, sess.ID)
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			wc.Logger.Error("Failed to unmarshal payment intent", zap.Error(err))
			break
		}
		wc.handleSucceeded(c, pi.ID)
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			wc.Logger.Error("Failed to unmarshal payment intent", zap.Error(err))
			break
		}
		if err := wc.Ledger.MarkFailed(c.Request.Context(), pi.ID); err != nil && !errs.HasCode(err, errs.CodeNotFound) {
			wc.Logger.Error("Failed to mark transaction failed",
				zap.String("payment_intent_id", pi.ID),
				zap.Error(err),
			)
		}
	default:
		wc.Logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// handleSucceeded flips the ledger row and projects paid. MarkSucceeded is
// idempotent, so Stripe retrying the same webhook is harmless.
func (wc *WebhookController) handleSucceeded(c *gin.Context, processorRef string) {
	ctx := c.Request.Context()

	tx, err := wc.Ledger.MarkSucceeded(ctx, processorRef)
	if err != nil {
		wc.Logger.Error("No transaction for processor reference",
			zap.String("processor_ref", processorRef),
			zap.Error(err),
		)
		return
	}
	if tx.Status != models.TxSucceeded {
		// Out-of-order callback on a refunded or failed row; the ledger is
		// terminal and wins.
		wc.Logger.Info("Skipping success callback on terminal transaction",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("status", tx.Status),
		)
		return
	}

	if err := wc.Projector.Project(ctx, tx.EventID, tx.Payer(), models.PaymentPaid); err != nil {
		// Stripe retries the webhook; the next delivery re-projects.
		wc.Logger.Error("Failed to project paid status",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
	}
}
