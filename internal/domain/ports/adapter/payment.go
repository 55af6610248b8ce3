package adapter

import "context"

// PaymentGateway abstracts the mobile-money provider. RequestPayment
// registers a checkout with the provider and returns the URL the user
// is sent to; the outcome arrives later on the webhook.
type PaymentGateway interface {
	Name() string
	RequestPayment(ctx context.Context, amountFcfa int64, reference, description, callbackURL string) (payURL string, err error)
}
