package notify

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"chathub/domain"
	apperrors "chathub/errors"
)

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	subscriber string // contact mailto for the push service
	publicKey  string
	privateKey string
	ttl        int
}

func NewWebPushSender(subscriber, publicKey, privateKey string, ttlSeconds int) *WebPushSender {
	return &WebPushSender{
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        ttlSeconds,
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return apperrors.ErrSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
