package controllers

import (
	"net/http"

	"runclub-backend/errs"
	"runclub-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentController exposes read-only pass-throughs to the payment
// processor. These share the Stripe client with the refund saga but play no
// part in reconciliation.
type PaymentController struct {
	Stripe *services.StripeService
	Logger *zap.Logger
}

func (pc *PaymentController) ListHistory(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		errs.Respond(c, errs.BadRequest("customer query parameter required"))
		return
	}

	intents, err := pc.Stripe.ListPaymentHistory(customer)
	if err != nil {
		pc.Logger.Error("Failed to list payment history", zap.String("customer", customer), zap.Error(err))
		errs.Respond(c, errs.ProcessorError("failed to list payment history"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": intents})
}

func (pc *PaymentController) ListMethods(c *gin.Context) {
	customer := c.Query("customer")
	if customer == "" {
		errs.Respond(c, errs.BadRequest("customer query parameter required"))
		return
	}

	methods, err := pc.Stripe.ListPaymentMethods(customer)
	if err != nil {
		pc.Logger.Error("Failed to list payment methods", zap.String("customer", customer), zap.Error(err))
		errs.Respond(c, errs.ProcessorError("failed to list payment methods"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": methods})
}
