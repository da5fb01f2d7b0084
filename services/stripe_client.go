package services

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/paymentmethod"
	"github.com/stripe/stripe-go/v80/refund"
	"github.com/stripe/stripe-go/v80/webhook"
)

// RefundOutcome is the processor's answer to a refund request.
type RefundOutcome struct {
	ID     string
	Status string
}

// PaymentProcessor is the slice of the Stripe client the refund saga needs.
type PaymentProcessor interface {
	Refund(ctx context.Context, processorRef, reason string) (*RefundOutcome, error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

// Refund asks Stripe to return the money for a payment intent. Stripe is
// the source of truth for monetary state; a failure here means no money
// moved.
func (s *StripeService) Refund(ctx context.Context, processorRef, reason string) (*RefundOutcome, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(processorRef),
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, err
	}
	return &RefundOutcome{ID: r.ID, Status: string(r.Status)}, nil
}

// CreateCheckoutSession builds a hosted checkout page for an event fee.
// The event and payer ids ride in the session metadata so the webhook can
// route the success back to the right rows.
func (s *StripeService) CreateCheckoutSession(amount int64, currency, eventID, payerID, payerKind, title, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("event_id", eventID)
	params.AddMetadata("payer_id", payerID)
	params.AddMetadata("payer_kind", payerKind)

	return session.New(params)
}

// ListPaymentHistory returns the customer's payment intents, read-only.
func (s *StripeService) ListPaymentHistory(customerRef string) ([]*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerRef),
	}
	var intents []*stripe.PaymentIntent
	iter := paymentintent.List(params)
	for iter.Next() {
		intents = append(intents, iter.PaymentIntent())
	}
	return intents, iter.Err()
}

// ListPaymentMethods returns the customer's saved cards, read-only.
func (s *StripeService) ListPaymentMethods(customerRef string) ([]*stripe.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerRef),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	var methods []*stripe.PaymentMethod
	iter := paymentmethod.List(params)
	for iter.Next() {
		methods = append(methods, iter.PaymentMethod())
	}
	return methods, iter.Err()
}

// ParseWebhook verifies the Stripe signature and decodes the event.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
