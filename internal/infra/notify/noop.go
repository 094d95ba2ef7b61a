package notify

import (
	"context"

	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/notify"
)

var _ notify.Notifier = (*NoopNotifier)(nil)

// NoopNotifier is used when no Telegram token is configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (*NoopNotifier) ReconcileFinished(ctx context.Context, period model.Period, processed int) error {
	return nil
}
