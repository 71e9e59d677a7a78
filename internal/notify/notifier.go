// Package notify delivers movement outcomes to an external sink. Delivery is
// best-effort: the balances have already committed by the time a notifier
// runs, so failures are logged and never propagated.
package notify

import (
	"context"

	"github.com/joonsp/bankcore/internal/domain"
)

type Notifier interface {
	DepositSettled(ctx context.Context, d *domain.Deposit)
	TransferSettled(ctx context.Context, t *domain.Transfer)
}
