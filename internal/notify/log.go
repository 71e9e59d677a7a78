package notify

import (
	"context"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/logging"
)

// LogNotifier backs deployments with no webhook sink configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) DepositSettled(ctx context.Context, d *domain.Deposit) {
	logging.FromContext(ctx).Info("deposit settled",
		"deposit_id", d.ID,
		"account_id", d.AccountID,
		"amount", d.Amount,
		"status", d.Status,
	)
}

func (LogNotifier) TransferSettled(ctx context.Context, t *domain.Transfer) {
	logging.FromContext(ctx).Info("transfer settled",
		"transfer_id", t.ID,
		"source_account_id", t.SourceAccountID,
		"destination_account_id", t.DestinationAccountID,
		"amount", t.Amount,
		"status", t.Status,
	)
}
