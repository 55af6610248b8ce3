package payment

import (
	"context"

	"clientcard-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is used in dev mode and tests; every checkout "succeeds"
// with a fake redirect URL.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) RequestPayment(ctx context.Context, amountFcfa int64, reference, description, callbackURL string) (string, error) {
	return "https://pay.invalid/checkout/" + reference, nil
}
