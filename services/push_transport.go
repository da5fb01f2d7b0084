package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"runclub-backend/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrEndpointGone means the push service confirmed the endpoint can never
// receive messages again (uninstalled browser, rotated subscription). The
// dispatcher prunes the subscription when it sees this.
var ErrEndpointGone = errors.New("push endpoint gone")

// PushTransport delivers one payload to one subscription endpoint.
type PushTransport interface {
	Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error
}

type webPushTransport struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

func NewWebPushTransport(vapidPublicKey, vapidPrivateKey, subscriber string) PushTransport {
	return &webPushTransport{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
	}
}

func (t *webPushTransport) Send(ctx context.Context, sub *models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      t.subscriber,
		VAPIDPublicKey:  t.vapidPublicKey,
		VAPIDPrivateKey: t.vapidPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrEndpointGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}
