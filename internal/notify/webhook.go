package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/logging"
)

// WebhookNotifier POSTs movement outcomes as JSON to a configured URL. A slow
// receiver must not block callers indefinitely, so the client carries a short
// timeout.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type depositEvent struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	DepositID int64     `json:"deposit_id"`
	AccountID int64     `json:"account_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type transferEvent struct {
	EventID              string    `json:"event_id"`
	Kind                 string    `json:"kind"`
	TransferID           int64     `json:"transfer_id"`
	SourceAccountID      int64     `json:"source_account_id"`
	DestinationAccountID int64     `json:"destination_account_id"`
	Amount               int64     `json:"amount"`
	Status               string    `json:"status"`
	Message              string    `json:"message"`
	CreatedAt            time.Time `json:"created_at"`
}

func (n *WebhookNotifier) DepositSettled(ctx context.Context, d *domain.Deposit) {
	event := depositEvent{
		EventID:   uuid.NewString(),
		Kind:      "deposit",
		DepositID: d.ID,
		AccountID: d.AccountID,
		Amount:    d.Amount,
		Status:    string(d.Status),
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
	if err := n.post(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("deposit notification failed",
			"deposit_id", d.ID,
			"error", err,
		)
	}
}

func (n *WebhookNotifier) TransferSettled(ctx context.Context, t *domain.Transfer) {
	event := transferEvent{
		EventID:              uuid.NewString(),
		Kind:                 "transfer",
		TransferID:           t.ID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Status:               string(t.Status),
		Message:              t.Message,
		CreatedAt:            t.CreatedAt,
	}
	if err := n.post(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("transfer notification failed",
			"transfer_id", t.ID,
			"error", err,
		)
	}
}

func (n *WebhookNotifier) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("post: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post: sink returned status %d", resp.StatusCode)
	}
	return nil
}
