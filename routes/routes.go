package routes

import (
	"net/http"

	"runclub-backend/controllers"
	"runclub-backend/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	rc *controllers.RefundController,
	pushc *controllers.PushController,
	ec *controllers.EventController,
	payc *controllers.PaymentController,
	wc *controllers.WebhookController,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "runclub-backend"})
	})

	// Stripe webhook (signature-verified, no auth)
	r.POST("/stripe/webhook", wc.StripeWebhook)

	// Public event pages
	r.GET("/events", ec.ListEvents)
	r.GET("/events/:id", ec.GetEvent)

	auth := r.Group("/", middleware.AuthMiddleware())
	{
		auth.POST("/events/:id/register", ec.Register)

		push := auth.Group("/push")
		{
			push.POST("/subscribe", pushc.Subscribe)
			push.POST("/unsubscribe", pushc.Unsubscribe)
			push.POST("/check-subscription", pushc.CheckSubscription)
		}
	}

	admin := r.Group("/", middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.POST("/refund", rc.Refund)
		admin.POST("/events", ec.CreateEvent)
		admin.POST("/events/:id/attendees", ec.CreateAttendee)
		admin.POST("/attendees/:id/checkin", ec.CheckIn)
		admin.GET("/payments/history", payc.ListHistory)
		admin.GET("/payments/methods", payc.ListMethods)
	}
}
