package notify

import (
	"context"

	"fitstudio-backend/internal/domain/model"
)

// Notifier pushes operational notices to the studio administrators.
// Failures are logged by callers and never abort the triggering operation.
type Notifier interface {
	ReconcileFinished(ctx context.Context, period model.Period, processed int) error
}
